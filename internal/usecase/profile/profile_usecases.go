package profile

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/workmatch/marketplace-backend/internal/domain/entity"
	"github.com/workmatch/marketplace-backend/internal/domain/repository"
	"github.com/workmatch/marketplace-backend/internal/pkg/apperror"
	"github.com/workmatch/marketplace-backend/internal/usecase/common"
	"github.com/workmatch/marketplace-backend/internal/usecase/service"
	"github.com/workmatch/marketplace-backend/internal/validation"
)

// MaxProviderCategories ограничивает число категорий исполнителя.
const MaxProviderCategories = 10

// UpdateProviderProfileInput частичное обновление: nil поля не меняются.
type UpdateProviderProfileInput struct {
	UserID      uuid.UUID
	Name        *string
	Description *string
	Experience  *string
	CategoryIDs *[]uuid.UUID
}

type UpdateProviderProfileUseCase struct {
	providers  repository.ProviderRepository
	categories service.CategoryLookup
}

func NewUpdateProviderProfileUseCase(providers repository.ProviderRepository, categories service.CategoryLookup) *UpdateProviderProfileUseCase {
	return &UpdateProviderProfileUseCase{providers: providers, categories: categories}
}

func (uc *UpdateProviderProfileUseCase) Execute(ctx context.Context, in UpdateProviderProfileInput) (*entity.Provider, error) {
	provider, err := common.ProviderOf(ctx, uc.providers, in.UserID)
	if err != nil {
		return nil, err
	}

	var details []apperror.FieldError
	if in.Name != nil {
		if err := validation.ValidateName(*in.Name); err != nil {
			details = append(details, apperror.FieldError{Field: "name", Message: err.Error()})
		}
	}
	if err := validation.ValidateProfileText("описание", in.Description); err != nil {
		details = append(details, apperror.FieldError{Field: "description", Message: err.Error()})
	}
	if err := validation.ValidateProfileText("опыт", in.Experience); err != nil {
		details = append(details, apperror.FieldError{Field: "experience", Message: err.Error()})
	}
	if len(details) > 0 {
		return nil, apperror.Validation("некорректные данные профиля", details...)
	}

	if in.CategoryIDs != nil {
		ids, err := uc.checkCategories(ctx, *in.CategoryIDs)
		if err != nil {
			return nil, err
		}
		provider.CategoryIDs = ids
	}
	if in.Name != nil {
		provider.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		provider.Description = trimmedOrNil(*in.Description)
	}
	if in.Experience != nil {
		provider.Experience = trimmedOrNil(*in.Experience)
	}
	provider.UpdatedAt = time.Now().UTC()

	if err := uc.providers.Update(ctx, provider); err != nil {
		return nil, err
	}
	return provider, nil
}

// checkCategories убирает дубликаты и требует, чтобы все категории были активны.
func (uc *UpdateProviderProfileUseCase) checkCategories(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	result := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	if len(result) > MaxProviderCategories {
		return nil, apperror.Validation("слишком много категорий",
			apperror.FieldError{Field: "category_ids", Message: "не более 10 категорий"})
	}

	for _, id := range result {
		category, err := uc.categories.Get(ctx, id)
		if apperror.IsNotFound(err) {
			return nil, apperror.Validation("категория не найдена",
				apperror.FieldError{Field: "category_ids", Message: "неизвестная категория " + id.String()})
		}
		if err != nil {
			return nil, err
		}
		if !category.IsActive() {
			return nil, apperror.Validation("категория неактивна",
				apperror.FieldError{Field: "category_ids", Message: "категория " + category.Name + " неактивна"})
		}
	}
	return result, nil
}

func trimmedOrNil(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

type GetProviderUseCase struct {
	providers repository.ProviderRepository
}

func NewGetProviderUseCase(providers repository.ProviderRepository) *GetProviderUseCase {
	return &GetProviderUseCase{providers: providers}
}

func (uc *GetProviderUseCase) Execute(ctx context.Context, id uuid.UUID) (*entity.Provider, error) {
	return uc.providers.FindByID(ctx, id)
}
