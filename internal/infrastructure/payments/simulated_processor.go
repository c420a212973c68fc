package payments

import (
	"context"
	"crypto/rand"
	"encoding/hex"

	"github.com/sirupsen/logrus"

	"github.com/workmatch/marketplace-backend/internal/domain/entity"
	"github.com/workmatch/marketplace-backend/internal/logger"
)

// DeclinedCardToken токен карты, который симулятор всегда отклоняет.
const DeclinedCardToken = "tok_declined"

// SimulatedProcessor подменяет внешний процессор в разработке и без учётных данных.
// Все операции успешны, кроме карты с DeclinedCardToken.
type SimulatedProcessor struct {
	log *logrus.Entry
}

func NewSimulatedProcessor() *SimulatedProcessor {
	return &SimulatedProcessor{log: logger.WithComponent("payments.simulated")}
}

func (p *SimulatedProcessor) Process(_ context.Context, gw *entity.PaymentGateway, req entity.ChargeRequest) (*entity.ChargeResult, error) {
	log := p.log.WithFields(logrus.Fields{
		"payment_id": req.PaymentID,
		"amount":     req.Amount.StringFixed(2),
		"method":     req.Method,
		"gateway":    gw.Name,
	})
	if req.Details.CardToken != nil && *req.Details.CardToken == DeclinedCardToken {
		log.Info("симуляция: платёж отклонён")
		return &entity.ChargeResult{Approved: false, ProviderStatus: "rejected", DeclineReason: "карта отклонена"}, nil
	}

	id := "txn_" + randomSuffix()
	log.WithField("transaction_id", id).Info("симуляция: средства зарезервированы")
	return &entity.ChargeResult{Approved: true, TransactionID: id, ProviderStatus: "authorized"}, nil
}

func (p *SimulatedProcessor) Release(_ context.Context, _ *entity.PaymentGateway, payment *entity.Payment) error {
	p.log.WithFields(logrus.Fields{
		"payment_id":  payment.ID,
		"transfer_id": "transfer_" + randomSuffix(),
		"net_amount":  payment.NetAmount().StringFixed(2),
	}).Info("симуляция: средства переведены исполнителю")
	return nil
}

func (p *SimulatedProcessor) Refund(_ context.Context, _ *entity.PaymentGateway, payment *entity.Payment) error {
	p.log.WithFields(logrus.Fields{
		"payment_id": payment.ID,
		"refund_id":  "refund_" + randomSuffix(),
		"amount":     payment.Amount.StringFixed(2),
	}).Info("симуляция: средства возвращены заказчику")
	return nil
}

func randomSuffix() string {
	b := make([]byte, 5)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)[:9]
}
