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

// CategoryLookup источник категорий; в проде это кэш поверх репозитория.
type CategoryLookup interface {
	Get(ctx context.Context, id uuid.UUID) (*entity.Category, error)
}

type CreateServiceInput struct {
	UserID       uuid.UUID
	Title        string
	Description  string
	CategoryID   uuid.UUID
	BudgetMin    decimal.Decimal
	BudgetMax    decimal.Decimal
	LocationType string
	Address      *valueobject.Address
}

type CreateServiceUseCase struct {
	uow        repository.UnitOfWork
	categories CategoryLookup
	notifier   common.Notifier
}

func NewCreateServiceUseCase(uow repository.UnitOfWork, categories CategoryLookup, notifier common.Notifier) *CreateServiceUseCase {
	return &CreateServiceUseCase{uow: uow, categories: categories, notifier: notifier}
}

func (uc *CreateServiceUseCase) Execute(ctx context.Context, input CreateServiceInput) (*entity.Service, error) {
	if err := requireActiveCategory(ctx, uc.categories, input.CategoryID); err != nil {
		return nil, err
	}

	budget, err := valueobject.NewBudget(input.BudgetMin, input.BudgetMax)
	if err != nil {
		return nil, err
	}
	location, err := valueobject.NewLocation(input.LocationType, input.Address)
	if err != nil {
		return nil, err
	}

	var (
		created   *entity.Service
		providers []uuid.UUID
	)
	err = uc.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		client, err := common.ClientOf(ctx, repos.Clients, input.UserID)
		if err != nil {
			return err
		}

		created, err = entity.NewService(client.ID, input.CategoryID, input.Title, input.Description, budget, location)
		if err != nil {
			return err
		}
		if err := repos.Services.Create(ctx, created); err != nil {
			return err
		}

		providers, err = repos.Providers.ListUserIDsByCategory(ctx, input.CategoryID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if len(providers) > 0 {
		serviceID := created.ID
		uc.notifier.Notify(ctx, entity.NotificationRequest{
			Recipients: providers,
			Kind:       valueobject.NotificationNewService,
			Title:      "Новая услуга в вашей категории",
			Message:    created.Title,
			ServiceID:  &serviceID,
		})
	}

	return created, nil
}

func requireActiveCategory(ctx context.Context, categories CategoryLookup, id uuid.UUID) error {
	category, err := categories.Get(ctx, id)
	if err != nil {
		return err
	}
	if !category.IsActive() {
		return apperror.New(apperror.ErrCodeInvalidState, "категория неактивна")
	}
	return nil
}
