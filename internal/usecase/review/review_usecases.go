package review

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/workmatch/marketplace-backend/internal/domain/entity"
	"github.com/workmatch/marketplace-backend/internal/domain/repository"
	"github.com/workmatch/marketplace-backend/internal/domain/valueobject"
	"github.com/workmatch/marketplace-backend/internal/pkg/apperror"
	"github.com/workmatch/marketplace-backend/internal/usecase/common"
)

type CreateReviewInput struct {
	UserID    uuid.UUID
	ServiceID uuid.UUID
	Rating    int
	Comment   string
}

type CreateReviewUseCase struct {
	uow      repository.UnitOfWork
	notifier common.Notifier
}

func NewCreateReviewUseCase(uow repository.UnitOfWork, notifier common.Notifier) *CreateReviewUseCase {
	return &CreateReviewUseCase{uow: uow, notifier: notifier}
}

// Execute оставляет отзыв о второй стороне завершённой услуги.
func (uc *CreateReviewUseCase) Execute(ctx context.Context, input CreateReviewInput) (*entity.Review, error) {
	var created *entity.Review
	err := uc.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		service, err := repos.Services.FindByID(ctx, input.ServiceID)
		if err != nil {
			return err
		}
		if service.Status != valueobject.ServiceStatusCompleted {
			return apperror.New(apperror.ErrCodeInvalidState, "отзыв можно оставить только по завершённой услуге")
		}

		revieweeID, err := counterpartOf(ctx, repos, service, input.UserID)
		if err != nil {
			return err
		}

		exists, err := repos.Reviews.ExistsForReviewer(ctx, service.ID, input.UserID)
		if err != nil {
			return err
		}
		if exists {
			return apperror.New(apperror.ErrCodeConflict, "вы уже оставили отзыв по этой услуге")
		}

		created, err = entity.NewReview(service.ID, input.UserID, revieweeID, input.Rating, input.Comment)
		if err != nil {
			return err
		}
		if err := repos.Reviews.Create(ctx, created); err != nil {
			return err
		}
		return recomputeRating(ctx, repos, revieweeID)
	})
	if err != nil {
		return nil, err
	}

	serviceID := created.ServiceID
	uc.notifier.Notify(ctx, entity.NotificationRequest{
		Recipients: []uuid.UUID{created.RevieweeID},
		Kind:       valueobject.NotificationNewReview,
		Title:      "Новый отзыв",
		Message:    "Вам поставили оценку " + ratingStars(created.Rating),
		ServiceID:  &serviceID,
	})
	return created, nil
}

// counterpartOf возвращает пользователя второй стороны услуги.
// Вызывающий должен быть заказчиком или назначенным исполнителем.
func counterpartOf(ctx context.Context, repos repository.Repositories, service *entity.Service, userID uuid.UUID) (uuid.UUID, error) {
	notParticipant := apperror.New(apperror.ErrCodeForbidden, "отзыв может оставить только участник услуги")
	if service.ProviderID == nil {
		return uuid.Nil, notParticipant
	}

	client, err := repos.Clients.FindByID(ctx, service.ClientID)
	if err != nil {
		return uuid.Nil, err
	}
	provider, err := repos.Providers.FindByID(ctx, *service.ProviderID)
	if err != nil {
		return uuid.Nil, err
	}

	switch userID {
	case client.UserID:
		return provider.UserID, nil
	case provider.UserID:
		return client.UserID, nil
	}
	return uuid.Nil, notParticipant
}

// recomputeRating пересчитывает средний рейтинг, если оценённый пользователь исполнитель.
func recomputeRating(ctx context.Context, repos repository.Repositories, userID uuid.UUID) error {
	provider, err := repos.Providers.FindByUserID(ctx, userID)
	if apperror.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}
	average, count, err := repos.Reviews.RatingOf(ctx, userID)
	if err != nil {
		return err
	}
	return repos.Providers.UpdateRating(ctx, provider.ID, average, count)
}

func ratingStars(rating int) string {
	stars := make([]rune, 0, 5)
	for i := 0; i < 5; i++ {
		if i < rating {
			stars = append(stars, '★')
		} else {
			stars = append(stars, '☆')
		}
	}
	return string(stars)
}

type UpdateReviewInput struct {
	ReviewID uuid.UUID
	UserID   uuid.UUID
	Rating   int
	Comment  string
}

type UpdateReviewUseCase struct {
	uow repository.UnitOfWork
	now func() time.Time
}

func NewUpdateReviewUseCase(uow repository.UnitOfWork) *UpdateReviewUseCase {
	return &UpdateReviewUseCase{uow: uow, now: time.Now}
}

func (uc *UpdateReviewUseCase) Execute(ctx context.Context, input UpdateReviewInput) (*entity.Review, error) {
	var updated *entity.Review
	err := uc.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		review, err := repos.Reviews.FindByID(ctx, input.ReviewID)
		if err != nil {
			return err
		}
		if err := review.CanEdit(input.UserID, uc.now()); err != nil {
			return err
		}
		if err := review.Update(input.Rating, input.Comment); err != nil {
			return err
		}
		if err := repos.Reviews.Update(ctx, review); err != nil {
			return err
		}
		updated = review
		return recomputeRating(ctx, repos, review.RevieweeID)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

type DeleteReviewUseCase struct {
	uow repository.UnitOfWork
	now func() time.Time
}

func NewDeleteReviewUseCase(uow repository.UnitOfWork) *DeleteReviewUseCase {
	return &DeleteReviewUseCase{uow: uow, now: time.Now}
}

func (uc *DeleteReviewUseCase) Execute(ctx context.Context, reviewID, userID uuid.UUID) error {
	return uc.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		review, err := repos.Reviews.FindByID(ctx, reviewID)
		if err != nil {
			return err
		}
		if err := review.CanEdit(userID, uc.now()); err != nil {
			return err
		}
		if err := repos.Reviews.Delete(ctx, review.ID); err != nil {
			return err
		}
		return recomputeRating(ctx, repos, review.RevieweeID)
	})
}

type ListServiceReviewsUseCase struct {
	reviews repository.ReviewRepository
}

func NewListServiceReviewsUseCase(reviews repository.ReviewRepository) *ListServiceReviewsUseCase {
	return &ListServiceReviewsUseCase{reviews: reviews}
}

func (uc *ListServiceReviewsUseCase) Execute(ctx context.Context, serviceID uuid.UUID) ([]*entity.Review, error) {
	return uc.reviews.ListByService(ctx, serviceID)
}

const (
	ListReceived = "received"
	ListGiven    = "given"
)

type ListUserReviewsUseCase struct {
	reviews repository.ReviewRepository
}

func NewListUserReviewsUseCase(reviews repository.ReviewRepository) *ListUserReviewsUseCase {
	return &ListUserReviewsUseCase{reviews: reviews}
}

// Execute отдаёт отзывы о пользователе (received, по умолчанию) или написанные им (given).
func (uc *ListUserReviewsUseCase) Execute(ctx context.Context, userID uuid.UUID, kind string) ([]*entity.Review, error) {
	switch kind {
	case "", ListReceived:
		return uc.reviews.ListByReviewee(ctx, userID)
	case ListGiven:
		return uc.reviews.ListByReviewer(ctx, userID)
	}
	return nil, apperror.Validation("некорректный тип выборки",
		apperror.FieldError{Field: "type", Message: "допустимые значения: received, given"})
}
