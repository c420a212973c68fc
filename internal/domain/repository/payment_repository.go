package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/workmatch/marketplace-backend/internal/domain/entity"
	"github.com/workmatch/marketplace-backend/internal/domain/valueobject"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	Update(ctx context.Context, payment *entity.Payment) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Payment, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Payment, error)
	List(ctx context.Context, filter PaymentFilter) ([]*entity.Payment, int, error)
}

type PaymentFilter struct {
	ClientID   *uuid.UUID
	ProviderID *uuid.UUID
	Status     *valueobject.PaymentStatus
	Limit      int
	Offset     int
}

type RefundRepository interface {
	Create(ctx context.Context, refund *entity.Refund) error
	Update(ctx context.Context, refund *entity.Refund) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Refund, error)
	FindByPaymentID(ctx context.Context, paymentID uuid.UUID) (*entity.Refund, error)
	List(ctx context.Context, status *valueobject.RefundStatus, limit, offset int) ([]*entity.Refund, int, error)
}

type GatewayRepository interface {
	Create(ctx context.Context, gateway *entity.PaymentGateway) error
	// FindActive возвращает apperror.ErrGatewayNotFound, если активной записи нет.
	FindActive(ctx context.Context) (*entity.PaymentGateway, error)
	DeactivateAll(ctx context.Context) error
	List(ctx context.Context) ([]*entity.PaymentGateway, error)
}
