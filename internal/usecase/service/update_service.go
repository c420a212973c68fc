package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/workmatch/marketplace-backend/internal/domain/entity"
	"github.com/workmatch/marketplace-backend/internal/domain/repository"
	"github.com/workmatch/marketplace-backend/internal/domain/valueobject"
	"github.com/workmatch/marketplace-backend/internal/pkg/apperror"
	"github.com/workmatch/marketplace-backend/internal/usecase/common"
)

// UpdateServiceInput nil-поля не меняются. Бюджет передаётся парой.
type UpdateServiceInput struct {
	ServiceID    uuid.UUID
	UserID       uuid.UUID
	Title        *string
	Description  *string
	CategoryID   *uuid.UUID
	BudgetMin    *decimal.Decimal
	BudgetMax    *decimal.Decimal
	LocationType *string
	Address      *valueobject.Address
}

type UpdateServiceUseCase struct {
	uow        repository.UnitOfWork
	categories CategoryLookup
}

func NewUpdateServiceUseCase(uow repository.UnitOfWork, categories CategoryLookup) *UpdateServiceUseCase {
	return &UpdateServiceUseCase{uow: uow, categories: categories}
}

func (uc *UpdateServiceUseCase) Execute(ctx context.Context, input UpdateServiceInput) (*entity.Service, error) {
	changes := entity.ServiceChanges{
		Title:       input.Title,
		Description: input.Description,
		CategoryID:  input.CategoryID,
	}

	if input.CategoryID != nil {
		if err := requireActiveCategory(ctx, uc.categories, *input.CategoryID); err != nil {
			return nil, err
		}
	}

	var updated *entity.Service
	err := uc.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		client, err := common.ClientOf(ctx, repos.Clients, input.UserID)
		if err != nil {
			return err
		}
		service, err := repos.Services.FindByIDForUpdate(ctx, input.ServiceID)
		if err != nil {
			return err
		}
		if !service.IsOwnedBy(client.ID) {
			return apperror.ErrForbidden
		}

		if input.BudgetMin != nil || input.BudgetMax != nil {
			lower, upper := service.Budget.Min, service.Budget.Max
			if input.BudgetMin != nil {
				lower = *input.BudgetMin
			}
			if input.BudgetMax != nil {
				upper = *input.BudgetMax
			}
			budget, err := valueobject.NewBudget(lower, upper)
			if err != nil {
				return err
			}
			changes.Budget = &budget
		}
		if input.LocationType != nil || input.Address != nil {
			locationType := string(service.Location.Type)
			if input.LocationType != nil {
				locationType = *input.LocationType
			}
			address := service.Location.Address
			if input.Address != nil {
				address = input.Address
			}
			location, err := valueobject.NewLocation(locationType, address)
			if err != nil {
				return err
			}
			changes.Location = &location
		}

		if err := service.Apply(changes); err != nil {
			return err
		}
		if err := repos.Services.Update(ctx, service); err != nil {
			return err
		}
		updated = service
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
