package payments

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/payment"
	"github.com/mercadopago/sdk-go/pkg/refund"
	"github.com/sirupsen/logrus"

	"github.com/workmatch/marketplace-backend/internal/domain/entity"
	"github.com/workmatch/marketplace-backend/internal/domain/valueobject"
	"github.com/workmatch/marketplace-backend/internal/logger"
)

var ErrMissingMercadoPagoAccessToken = errors.New("payments: не задан MERCADOPAGO_ACCESS_TOKEN")

// Статусы платежа Mercado Pago, которые означают, что деньги удержаны.
const (
	mpStatusApproved   = "approved"
	mpStatusAuthorized = "authorized"
	mpStatusPending    = "pending"
	mpStatusInProcess  = "in_process"
)

// paymentAPI операции с платежами, которые использует процессор.
type paymentAPI interface {
	Create(ctx context.Context, request payment.Request) (*payment.Response, error)
	Authorize(ctx context.Context, request payment.Request) (*payment.Response, error)
	Get(ctx context.Context, id int) (*payment.Response, error)
	Capture(ctx context.Context, id int) (*payment.Response, error)
}

type refundAPI interface {
	Create(ctx context.Context, paymentID int) (*refund.Response, error)
}

// MercadoPagoProcessor авторизует карту без списания при инициализации и
// списывает средства при release. Pix и boleto Mercado Pago проводит сразу,
// для них release только фиксирует выплату в учёте.
type MercadoPagoProcessor struct {
	payments paymentAPI
	refunds  refundAPI
	log      *logrus.Entry
}

func NewMercadoPagoProcessor(accessToken string) (*MercadoPagoProcessor, error) {
	if accessToken == "" {
		return nil, ErrMissingMercadoPagoAccessToken
	}
	cfg, err := config.New(accessToken)
	if err != nil {
		return nil, fmt.Errorf("payments: конфигурация mercadopago: %w", err)
	}
	return newMercadoPagoProcessor(newPaymentClient(cfg), refund.NewClient(cfg)), nil
}

func newMercadoPagoProcessor(payments paymentAPI, refunds refundAPI) *MercadoPagoProcessor {
	return &MercadoPagoProcessor{
		payments: payments,
		refunds:  refunds,
		log:      logger.WithComponent("payments.mercadopago"),
	}
}

func (p *MercadoPagoProcessor) Process(ctx context.Context, gw *entity.PaymentGateway, req entity.ChargeRequest) (*entity.ChargeResult, error) {
	request := payment.Request{
		TransactionAmount: req.Amount.InexactFloat64(),
		Description:       req.Description,
		Installments:      req.Installments,
		PaymentMethodID:   methodID(req),
		ExternalReference: req.PaymentID.String(),
		BinaryMode:        req.Method == valueobject.PaymentMethodCard,
		Payer:             &payment.PayerRequest{Email: req.PayerEmail},
	}
	if req.Details.CardToken != nil {
		request.Token = *req.Details.CardToken
	}

	log := p.log.WithFields(logrus.Fields{
		"payment_id":  req.PaymentID,
		"method":      req.Method,
		"environment": gw.Environment,
	})
	create := p.payments.Create
	if req.Method == valueobject.PaymentMethodCard {
		create = p.payments.Authorize
	}
	resp, err := create(ctx, request)
	if err != nil {
		log.WithError(err).Error("mercadopago: создание платежа не удалось")
		return nil, fmt.Errorf("payments: mercadopago create: %w", err)
	}

	log = log.WithFields(logrus.Fields{"provider_payment_id": resp.ID, "provider_status": resp.Status})
	switch resp.Status {
	case mpStatusApproved, mpStatusAuthorized, mpStatusPending, mpStatusInProcess:
		log.Info("mercadopago: платёж принят")
		return &entity.ChargeResult{
			Approved:       true,
			TransactionID:  strconv.Itoa(resp.ID),
			ProviderStatus: resp.Status,
		}, nil
	default:
		log.WithField("status_detail", resp.StatusDetail).Info("mercadopago: платёж отклонён")
		return &entity.ChargeResult{
			Approved:       false,
			TransactionID:  strconv.Itoa(resp.ID),
			ProviderStatus: resp.Status,
			DeclineReason:  resp.StatusDetail,
		}, nil
	}
}

// Release списывает авторизованные средства. Уже списанный платёж не трогаем.
func (p *MercadoPagoProcessor) Release(ctx context.Context, _ *entity.PaymentGateway, pmt *entity.Payment) error {
	id, err := providerID(pmt)
	if err != nil {
		return err
	}
	current, err := p.payments.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("payments: mercadopago get %d: %w", id, err)
	}
	switch current.Status {
	case mpStatusApproved:
		return nil
	case mpStatusAuthorized:
		if _, err := p.payments.Capture(ctx, id); err != nil {
			return fmt.Errorf("payments: mercadopago capture %d: %w", id, err)
		}
		p.log.WithField("provider_payment_id", id).Info("mercadopago: средства списаны")
		return nil
	default:
		return fmt.Errorf("payments: платёж %d в статусе %s нельзя освободить", id, current.Status)
	}
}

func (p *MercadoPagoProcessor) Refund(ctx context.Context, _ *entity.PaymentGateway, pmt *entity.Payment) error {
	id, err := providerID(pmt)
	if err != nil {
		return err
	}
	resp, err := p.refunds.Create(ctx, id)
	if err != nil {
		return fmt.Errorf("payments: mercadopago refund %d: %w", id, err)
	}
	p.log.WithFields(logrus.Fields{"provider_payment_id": id, "refund_id": resp.ID}).Info("mercadopago: возврат создан")
	return nil
}

func providerID(pmt *entity.Payment) (int, error) {
	if pmt.TransactionID == nil {
		return 0, fmt.Errorf("payments: у платежа %s нет идентификатора транзакции", pmt.ID)
	}
	id, err := strconv.Atoi(*pmt.TransactionID)
	if err != nil {
		return 0, fmt.Errorf("payments: некорректный идентификатор транзакции %q: %w", *pmt.TransactionID, err)
	}
	return id, nil
}

func methodID(req entity.ChargeRequest) string {
	switch req.Method {
	case valueobject.PaymentMethodPix:
		return "pix"
	case valueobject.PaymentMethodBoleto:
		return "bolbradesco"
	}
	if req.Details.CardBrand != nil && *req.Details.CardBrand != "" {
		return *req.Details.CardBrand
	}
	return "master"
}
