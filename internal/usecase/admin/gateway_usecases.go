package admin

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/workmatch/marketplace-backend/internal/domain/entity"
	"github.com/workmatch/marketplace-backend/internal/domain/repository"
	"github.com/workmatch/marketplace-backend/internal/domain/valueobject"
	"github.com/workmatch/marketplace-backend/internal/logger"
)

type CreateGatewayInput struct {
	Name        string
	Environment string
	FeePercent  decimal.Decimal
	FeeFixed    decimal.Decimal
	MinAmount   decimal.Decimal
	MaxAmount   decimal.Decimal
	Methods     []string
}

type CreateGatewayUseCase struct {
	uow repository.UnitOfWork
}

func NewCreateGatewayUseCase(uow repository.UnitOfWork) *CreateGatewayUseCase {
	return &CreateGatewayUseCase{uow: uow}
}

// Execute сохраняет новую активную конфигурацию; предыдущие деактивируются в той же транзакции.
func (uc *CreateGatewayUseCase) Execute(ctx context.Context, input CreateGatewayInput) (*entity.PaymentGateway, error) {
	env, err := valueobject.NewGatewayEnvironment(input.Environment)
	if err != nil {
		return nil, err
	}
	methods := make([]valueobject.PaymentMethod, 0, len(input.Methods))
	for _, m := range input.Methods {
		method, err := valueobject.NewPaymentMethod(m)
		if err != nil {
			return nil, err
		}
		methods = append(methods, method)
	}

	gateway, err := entity.NewPaymentGateway(entity.GatewaySettings{
		Name:        input.Name,
		Environment: env,
		FeePercent:  input.FeePercent,
		FeeFixed:    input.FeeFixed,
		MinAmount:   input.MinAmount,
		MaxAmount:   input.MaxAmount,
		Methods:     methods,
	})
	if err != nil {
		return nil, err
	}

	err = uc.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := repos.Gateways.DeactivateAll(ctx); err != nil {
			return err
		}
		return repos.Gateways.Create(ctx, gateway)
	})
	if err != nil {
		return nil, err
	}

	logger.WithComponent("admin").WithField("gateway_id", gateway.ID).
		WithField("name", gateway.Name).Info("активирован платёжный шлюз")
	return gateway, nil
}

type ListGatewaysUseCase struct {
	gateways repository.GatewayRepository
}

func NewListGatewaysUseCase(gateways repository.GatewayRepository) *ListGatewaysUseCase {
	return &ListGatewaysUseCase{gateways: gateways}
}

func (uc *ListGatewaysUseCase) Execute(ctx context.Context) ([]*entity.PaymentGateway, error) {
	return uc.gateways.List(ctx)
}
