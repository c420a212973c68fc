package category

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/workmatch/marketplace-backend/internal/domain/entity"
	"github.com/workmatch/marketplace-backend/internal/domain/repository"
	"github.com/workmatch/marketplace-backend/internal/domain/valueobject"
	"github.com/workmatch/marketplace-backend/internal/pkg/apperror"
)

type CreateCategoryInput struct {
	Name        string
	Description *string
	Icon        *string
}

type CreateCategoryUseCase struct {
	repo  repository.CategoryRepository
	cache *Cache
}

func NewCreateCategoryUseCase(repo repository.CategoryRepository, cache *Cache) *CreateCategoryUseCase {
	return &CreateCategoryUseCase{repo: repo, cache: cache}
}

func (uc *CreateCategoryUseCase) Execute(ctx context.Context, input CreateCategoryInput) (*entity.Category, error) {
	category, err := entity.NewCategory(input.Name, input.Description, input.Icon)
	if err != nil {
		return nil, err
	}
	if err := uc.repo.Create(ctx, category); err != nil {
		return nil, err
	}
	uc.cache.Invalidate(category.ID)
	return category, nil
}

// UpdateCategoryInput частичное обновление: nil поля не меняются.
type UpdateCategoryInput struct {
	ID          uuid.UUID
	Name        *string
	Description *string
	Icon        *string
}

type UpdateCategoryUseCase struct {
	repo  repository.CategoryRepository
	cache *Cache
}

func NewUpdateCategoryUseCase(repo repository.CategoryRepository, cache *Cache) *UpdateCategoryUseCase {
	return &UpdateCategoryUseCase{repo: repo, cache: cache}
}

func (uc *UpdateCategoryUseCase) Execute(ctx context.Context, input UpdateCategoryInput) (*entity.Category, error) {
	category, err := uc.repo.FindByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperror.Validation("название категории обязательно",
				apperror.FieldError{Field: "name", Message: "обязательное поле"})
		}
		category.Name = name
	}
	if input.Description != nil {
		category.Description = input.Description
	}
	if input.Icon != nil {
		category.Icon = input.Icon
	}
	category.UpdatedAt = time.Now().UTC()

	if err := uc.repo.Update(ctx, category); err != nil {
		return nil, err
	}
	uc.cache.Invalidate(category.ID)
	return category, nil
}

type SetCategoryStatusUseCase struct {
	repo  repository.CategoryRepository
	cache *Cache
}

func NewSetCategoryStatusUseCase(repo repository.CategoryRepository, cache *Cache) *SetCategoryStatusUseCase {
	return &SetCategoryStatusUseCase{repo: repo, cache: cache}
}

// Execute меняет статус категории. Услуги в неактивной категории остаются, но новые не создаются.
func (uc *SetCategoryStatusUseCase) Execute(ctx context.Context, id uuid.UUID, status string) (*entity.Category, error) {
	next, err := valueobject.NewCategoryStatus(status)
	if err != nil {
		return nil, err
	}
	category, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if category.Status == next {
		return category, nil
	}

	category.Status = next
	category.UpdatedAt = time.Now().UTC()
	if err := uc.repo.Update(ctx, category); err != nil {
		return nil, err
	}
	uc.cache.Invalidate(category.ID)
	return category, nil
}

type DeleteCategoryUseCase struct {
	repo  repository.CategoryRepository
	cache *Cache
}

func NewDeleteCategoryUseCase(repo repository.CategoryRepository, cache *Cache) *DeleteCategoryUseCase {
	return &DeleteCategoryUseCase{repo: repo, cache: cache}
}

func (uc *DeleteCategoryUseCase) Execute(ctx context.Context, id uuid.UUID) error {
	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}
	uc.cache.Invalidate(id)
	return nil
}

type ListCategoriesUseCase struct {
	cache *Cache
}

func NewListCategoriesUseCase(cache *Cache) *ListCategoriesUseCase {
	return &ListCategoriesUseCase{cache: cache}
}

// Execute отдаёт активные категории; includeInactive доступен администратору.
func (uc *ListCategoriesUseCase) Execute(ctx context.Context, includeInactive bool) ([]*entity.Category, error) {
	return uc.cache.List(ctx, !includeInactive)
}

type GetCategoryUseCase struct {
	cache *Cache
}

func NewGetCategoryUseCase(cache *Cache) *GetCategoryUseCase {
	return &GetCategoryUseCase{cache: cache}
}

func (uc *GetCategoryUseCase) Execute(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	return uc.cache.Get(ctx, id)
}
