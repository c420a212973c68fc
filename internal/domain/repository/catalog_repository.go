package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/workmatch/marketplace-backend/internal/domain/entity"
	"github.com/workmatch/marketplace-backend/internal/domain/valueobject"
)

type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	Update(ctx context.Context, category *entity.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Category, error)
	List(ctx context.Context, onlyActive bool) ([]*entity.Category, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, notification *entity.Notification) error
	List(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit, offset int) ([]*entity.Notification, int, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int, error)
}

type VerificationRepository interface {
	CreateDocument(ctx context.Context, doc *entity.Document) error
	FindDocumentsByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Document, error)
	Create(ctx context.Context, verification *entity.Verification) error
	Update(ctx context.Context, verification *entity.Verification) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Verification, error)
	FindLatestByUser(ctx context.Context, userID uuid.UUID) (*entity.Verification, error)
	HasPending(ctx context.Context, userID uuid.UUID) (bool, error)
	List(ctx context.Context, status *valueobject.VerificationStatus, limit, offset int) ([]*entity.Verification, int, error)
}

type ReviewRepository interface {
	Create(ctx context.Context, review *entity.Review) error
	Update(ctx context.Context, review *entity.Review) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Review, error)
	ExistsForReviewer(ctx context.Context, serviceID, reviewerID uuid.UUID) (bool, error)
	ListByService(ctx context.Context, serviceID uuid.UUID) ([]*entity.Review, error)
	ListByReviewee(ctx context.Context, userID uuid.UUID) ([]*entity.Review, error)
	ListByReviewer(ctx context.Context, userID uuid.UUID) ([]*entity.Review, error)
	// RatingOf средняя оценка и количество отзывов о пользователе.
	RatingOf(ctx context.Context, userID uuid.UUID) (decimal.Decimal, int, error)
}
