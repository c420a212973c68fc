package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/workmatch/marketplace-backend/internal/domain/entity"
	"github.com/workmatch/marketplace-backend/internal/domain/repository"
	"github.com/workmatch/marketplace-backend/internal/usecase/common"
)

type GetServiceUseCase struct {
	serviceRepo repository.ServiceRepository
}

func NewGetServiceUseCase(serviceRepo repository.ServiceRepository) *GetServiceUseCase {
	return &GetServiceUseCase{serviceRepo: serviceRepo}
}

func (uc *GetServiceUseCase) Execute(ctx context.Context, id uuid.UUID) (*entity.Service, error) {
	return uc.serviceRepo.FindByID(ctx, id)
}

type SearchServicesInput struct {
	Filter repository.ServiceFilter
	Page   int
	Limit  int
}

type SearchServicesUseCase struct {
	serviceRepo repository.ServiceRepository
}

func NewSearchServicesUseCase(serviceRepo repository.ServiceRepository) *SearchServicesUseCase {
	return &SearchServicesUseCase{serviceRepo: serviceRepo}
}

func (uc *SearchServicesUseCase) Execute(ctx context.Context, input SearchServicesInput) (common.PageResult[*entity.Service], error) {
	page := common.NewPage(input.Page, input.Limit)
	filter := input.Filter
	filter.Limit = page.Limit
	filter.Offset = page.Offset()

	services, total, err := uc.serviceRepo.Search(ctx, filter)
	if err != nil {
		return common.PageResult[*entity.Service]{}, err
	}
	return common.NewPageResult(services, total, page), nil
}
