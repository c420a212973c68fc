package payments

import (
	"context"
	"fmt"

	"github.com/workmatch/marketplace-backend/internal/domain/entity"
	"github.com/workmatch/marketplace-backend/internal/logger"
	"github.com/workmatch/marketplace-backend/internal/usecase/payment"
)

// Router выбирает процессор по имени шлюза из записи, переданной в вызов.
type Router struct {
	processors map[string]payment.Processor
}

// NewRouter регистрирует симулятор и, если задан токен, Mercado Pago.
// В режиме mock шлюз mercadopago обслуживается симулятором.
func NewRouter(mock bool, mercadoPagoToken string) (*Router, error) {
	simulated := NewSimulatedProcessor()
	r := &Router{processors: map[string]payment.Processor{
		entity.GatewaySimulated:   simulated,
		entity.GatewayMercadoPago: simulated,
	}}
	if mock {
		logger.WithComponent("payments").Info("платёжный шлюз в режиме симуляции")
		return r, nil
	}

	mp, err := NewMercadoPagoProcessor(mercadoPagoToken)
	if err != nil {
		return nil, err
	}
	r.processors[entity.GatewayMercadoPago] = mp
	return r, nil
}

func (r *Router) pick(gw *entity.PaymentGateway) (payment.Processor, error) {
	p, ok := r.processors[gw.Name]
	if !ok {
		return nil, fmt.Errorf("payments: неизвестный шлюз %q", gw.Name)
	}
	return p, nil
}

func (r *Router) Process(ctx context.Context, gw *entity.PaymentGateway, req entity.ChargeRequest) (*entity.ChargeResult, error) {
	p, err := r.pick(gw)
	if err != nil {
		return nil, err
	}
	return p.Process(ctx, gw, req)
}

func (r *Router) Release(ctx context.Context, gw *entity.PaymentGateway, pmt *entity.Payment) error {
	p, err := r.pick(gw)
	if err != nil {
		return err
	}
	return p.Release(ctx, gw, pmt)
}

func (r *Router) Refund(ctx context.Context, gw *entity.PaymentGateway, pmt *entity.Payment) error {
	p, err := r.pick(gw)
	if err != nil {
		return err
	}
	return p.Refund(ctx, gw, pmt)
}
