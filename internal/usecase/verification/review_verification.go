package verification

import (
	"context"

	"github.com/google/uuid"

	"github.com/workmatch/marketplace-backend/internal/domain/entity"
	"github.com/workmatch/marketplace-backend/internal/domain/repository"
	"github.com/workmatch/marketplace-backend/internal/domain/valueobject"
	"github.com/workmatch/marketplace-backend/internal/usecase/common"
)

type ApproveVerificationUseCase struct {
	uow      repository.UnitOfWork
	notifier common.Notifier
}

func NewApproveVerificationUseCase(uow repository.UnitOfWork, notifier common.Notifier) *ApproveVerificationUseCase {
	return &ApproveVerificationUseCase{uow: uow, notifier: notifier}
}

// Execute одобряет заявку; исполнитель получает отметку о верификации.
func (uc *ApproveVerificationUseCase) Execute(ctx context.Context, verificationID, adminID uuid.UUID) (*entity.Verification, error) {
	var approved *entity.Verification
	err := uc.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		v, err := repos.Verifications.FindByID(ctx, verificationID)
		if err != nil {
			return err
		}
		if err := v.Approve(adminID); err != nil {
			return err
		}
		if err := repos.Verifications.Update(ctx, v); err != nil {
			return err
		}

		user, err := repos.Users.FindByID(ctx, v.UserID)
		if err != nil {
			return err
		}
		if user.Role == valueobject.RoleProvider {
			if err := repos.Providers.SetVerifiedByUserID(ctx, user.ID, true); err != nil {
				return err
			}
		}
		approved = v
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.notifier.Notify(ctx, entity.NotificationRequest{
		Recipients: []uuid.UUID{approved.UserID},
		Kind:       valueobject.NotificationVerificationApproved,
		Title:      "Верификация пройдена",
		Message:    "Ваши документы проверены и одобрены",
	})
	return approved, nil
}

type RejectVerificationUseCase struct {
	uow      repository.UnitOfWork
	notifier common.Notifier
}

func NewRejectVerificationUseCase(uow repository.UnitOfWork, notifier common.Notifier) *RejectVerificationUseCase {
	return &RejectVerificationUseCase{uow: uow, notifier: notifier}
}

func (uc *RejectVerificationUseCase) Execute(ctx context.Context, verificationID, adminID uuid.UUID, reason string) (*entity.Verification, error) {
	var rejected *entity.Verification
	err := uc.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		v, err := repos.Verifications.FindByID(ctx, verificationID)
		if err != nil {
			return err
		}
		if err := v.Reject(adminID, reason); err != nil {
			return err
		}
		if err := repos.Verifications.Update(ctx, v); err != nil {
			return err
		}
		rejected = v
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.notifier.Notify(ctx, entity.NotificationRequest{
		Recipients: []uuid.UUID{rejected.UserID},
		Kind:       valueobject.NotificationVerificationRejected,
		Title:      "Верификация отклонена",
		Message:    *rejected.RejectionReason,
	})
	return rejected, nil
}
