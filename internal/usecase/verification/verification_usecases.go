package verification

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/workmatch/marketplace-backend/internal/domain/entity"
	"github.com/workmatch/marketplace-backend/internal/domain/repository"
	"github.com/workmatch/marketplace-backend/internal/domain/valueobject"
	"github.com/workmatch/marketplace-backend/internal/logger"
	"github.com/workmatch/marketplace-backend/internal/pkg/apperror"
	"github.com/workmatch/marketplace-backend/internal/usecase/common"
)

// DocumentStorage сохраняет файл, проверив его тип и размер.
type DocumentStorage interface {
	Save(ctx context.Context, userID uuid.UUID, kind, originalName string, r io.Reader) (*entity.Document, error)
	Delete(ctx context.Context, relativePath string) error
}

// Upload загружаемый файл.
type Upload struct {
	Name   string
	Reader io.Reader
}

type SubmitVerificationInput struct {
	UserID         uuid.UUID
	Identity       Upload
	ProofOfAddress Upload
}

type SubmitVerificationUseCase struct {
	uow      repository.UnitOfWork
	storage  DocumentStorage
	notifier common.Notifier
}

func NewSubmitVerificationUseCase(uow repository.UnitOfWork, storage DocumentStorage, notifier common.Notifier) *SubmitVerificationUseCase {
	return &SubmitVerificationUseCase{uow: uow, storage: storage, notifier: notifier}
}

func (uc *SubmitVerificationUseCase) Execute(ctx context.Context, input SubmitVerificationInput) (*entity.Verification, error) {
	if input.Identity.Reader == nil || input.ProofOfAddress.Reader == nil {
		var details []apperror.FieldError
		if input.Identity.Reader == nil {
			details = append(details, apperror.FieldError{Field: entity.DocumentIdentity, Message: "обязательный файл"})
		}
		if input.ProofOfAddress.Reader == nil {
			details = append(details, apperror.FieldError{Field: entity.DocumentProofOfAddress, Message: "обязательный файл"})
		}
		return nil, apperror.Validation("нужны оба документа", details...)
	}

	// Проверка до записи файлов, чтобы не копить файлы от повторных отправок.
	err := uc.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		return checkCanSubmit(ctx, repos, input.UserID)
	})
	if err != nil {
		return nil, err
	}

	identity, err := uc.storage.Save(ctx, input.UserID, entity.DocumentIdentity, input.Identity.Name, input.Identity.Reader)
	if err != nil {
		return nil, err
	}
	address, err := uc.storage.Save(ctx, input.UserID, entity.DocumentProofOfAddress, input.ProofOfAddress.Name, input.ProofOfAddress.Reader)
	if err != nil {
		uc.discard(ctx, identity)
		return nil, err
	}

	var created *entity.Verification
	err = uc.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := checkCanSubmit(ctx, repos, input.UserID); err != nil {
			return err
		}
		if err := repos.Verifications.CreateDocument(ctx, identity); err != nil {
			return err
		}
		if err := repos.Verifications.CreateDocument(ctx, address); err != nil {
			return err
		}
		created = entity.NewVerification(input.UserID, identity.ID, address.ID)
		return repos.Verifications.Create(ctx, created)
	})
	if err != nil {
		uc.discard(ctx, identity, address)
		return nil, err
	}

	uc.notifier.Notify(ctx, entity.NotificationRequest{
		Role:    valueobject.RoleAdmin,
		Kind:    valueobject.NotificationVerificationSent,
		Title:   "Новая заявка на верификацию",
		Message: "Заявка " + created.ID.String() + " ожидает проверки документов",
	})
	return created, nil
}

func checkCanSubmit(ctx context.Context, repos repository.Repositories, userID uuid.UUID) error {
	user, err := repos.Users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.Role == valueobject.RoleAdmin {
		return apperror.New(apperror.ErrCodeForbidden, "администратору верификация не нужна")
	}
	latest, err := repos.Verifications.FindLatestByUser(ctx, userID)
	if apperror.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}
	switch latest.Status {
	case valueobject.VerificationStatusPending:
		return apperror.New(apperror.ErrCodeConflict, "заявка на верификацию уже ожидает рассмотрения")
	case valueobject.VerificationStatusApproved:
		return apperror.New(apperror.ErrCodeConflict, "пользователь уже верифицирован")
	}
	return nil
}

func (uc *SubmitVerificationUseCase) discard(ctx context.Context, docs ...*entity.Document) {
	for _, doc := range docs {
		if err := uc.storage.Delete(ctx, doc.Path); err != nil {
			logger.WithComponent("verification").WithError(err).
				WithField("path", doc.Path).Warn("не удалось удалить файл отклонённой заявки")
		}
	}
}

// canView: пользователь видит только свои данные, администратор любые.
func canView(targetUserID, callerID uuid.UUID, role valueobject.Role) error {
	if role == valueobject.RoleAdmin || targetUserID == callerID {
		return nil
	}
	return apperror.ErrForbidden
}

// Status итог верификации пользователя. Verification пуст, если заявок не было.
type Status struct {
	UserID       uuid.UUID
	Status       string
	Verification *entity.Verification
}

const StatusNone = "none"

type GetStatusUseCase struct {
	verifications repository.VerificationRepository
}

func NewGetStatusUseCase(verifications repository.VerificationRepository) *GetStatusUseCase {
	return &GetStatusUseCase{verifications: verifications}
}

func (uc *GetStatusUseCase) Execute(ctx context.Context, targetUserID, callerID uuid.UUID, role valueobject.Role) (*Status, error) {
	if err := canView(targetUserID, callerID, role); err != nil {
		return nil, err
	}
	latest, err := uc.verifications.FindLatestByUser(ctx, targetUserID)
	if apperror.IsNotFound(err) {
		return &Status{UserID: targetUserID, Status: StatusNone}, nil
	}
	if err != nil {
		return nil, err
	}
	return &Status{UserID: targetUserID, Status: string(latest.Status), Verification: latest}, nil
}

type ListDocumentsUseCase struct {
	verifications repository.VerificationRepository
}

func NewListDocumentsUseCase(verifications repository.VerificationRepository) *ListDocumentsUseCase {
	return &ListDocumentsUseCase{verifications: verifications}
}

func (uc *ListDocumentsUseCase) Execute(ctx context.Context, targetUserID, callerID uuid.UUID, role valueobject.Role) ([]*entity.Document, error) {
	if err := canView(targetUserID, callerID, role); err != nil {
		return nil, err
	}
	return uc.verifications.FindDocumentsByUser(ctx, targetUserID)
}

type ListVerificationsInput struct {
	Status string
	Page   int
	Limit  int
}

type ListVerificationsUseCase struct {
	verifications repository.VerificationRepository
}

func NewListVerificationsUseCase(verifications repository.VerificationRepository) *ListVerificationsUseCase {
	return &ListVerificationsUseCase{verifications: verifications}
}

func (uc *ListVerificationsUseCase) Execute(ctx context.Context, input ListVerificationsInput) (common.PageResult[*entity.Verification], error) {
	page := common.NewPage(input.Page, input.Limit)
	var status *valueobject.VerificationStatus
	if input.Status != "" {
		s := valueobject.VerificationStatus(input.Status)
		if !s.IsValid() {
			return common.PageResult[*entity.Verification]{}, apperror.Validation("некорректный статус верификации",
				apperror.FieldError{Field: "status", Message: "допустимые значения: pending, approved, rejected"})
		}
		status = &s
	}
	items, total, err := uc.verifications.List(ctx, status, page.Limit, page.Offset())
	if err != nil {
		return common.PageResult[*entity.Verification]{}, err
	}
	return common.NewPageResult(items, total, page), nil
}
