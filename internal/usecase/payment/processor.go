package payment

import (
	"context"
	"errors"

	"github.com/workmatch/marketplace-backend/internal/domain/entity"
	"github.com/workmatch/marketplace-backend/internal/domain/repository"
	"github.com/workmatch/marketplace-backend/internal/pkg/apperror"
)

// Processor внешний платёжный процессор. Шлюз передаётся в каждый вызов,
// общего состояния между вызовами нет.
type Processor interface {
	// Process авторизует сумму в эскроу. Отказ банка не ошибка: Approved=false.
	Process(ctx context.Context, gw *entity.PaymentGateway, req entity.ChargeRequest) (*entity.ChargeResult, error)
	// Release переводит удержанные средства исполнителю.
	Release(ctx context.Context, gw *entity.PaymentGateway, payment *entity.Payment) error
	Refund(ctx context.Context, gw *entity.PaymentGateway, payment *entity.Payment) error
}

// activeGateway читает активную запись шлюза или возвращает шлюз по умолчанию.
func activeGateway(ctx context.Context, gateways repository.GatewayRepository) (*entity.PaymentGateway, error) {
	gw, err := gateways.FindActive(ctx)
	if errors.Is(err, apperror.ErrGatewayNotFound) {
		return entity.DefaultPaymentGateway(), nil
	}
	if err != nil {
		return nil, err
	}
	return gw, nil
}

// gatewayOf возвращает шлюз, через который прошёл платёж.
func gatewayOf(ctx context.Context, gateways repository.GatewayRepository, payment *entity.Payment) (*entity.PaymentGateway, error) {
	if payment.GatewayID == nil {
		return entity.DefaultPaymentGateway(), nil
	}
	list, err := gateways.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, gw := range list {
		if gw.ID == *payment.GatewayID {
			return gw, nil
		}
	}
	return activeGateway(ctx, gateways)
}

func processorError(err error) error {
	return apperror.Wrap(err, apperror.ErrCodeInternal, "платёжный провайдер недоступен")
}
