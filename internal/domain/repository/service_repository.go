package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/workmatch/marketplace-backend/internal/domain/entity"
	"github.com/workmatch/marketplace-backend/internal/domain/valueobject"
)

type ServiceRepository interface {
	Create(ctx context.Context, service *entity.Service) error
	Update(ctx context.Context, service *entity.Service) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Service, error)
	// FindByIDForUpdate блокирует строку услуги до конца транзакции.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Service, error)
	Search(ctx context.Context, filter ServiceFilter) ([]*entity.Service, int, error)
}

type ServiceFilter struct {
	CategoryID *uuid.UUID
	Status     *valueobject.ServiceStatus
	ClientID   *uuid.UUID
	ProviderID *uuid.UUID
	Locality   string
	PriceMin   *decimal.Decimal
	PriceMax   *decimal.Decimal
	Search     string
	Limit      int
	Offset     int
}
