package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/workmatch/marketplace-backend/internal/domain/valueobject"
	"github.com/workmatch/marketplace-backend/internal/pkg/apperror"
)

// PaymentDetails реквизиты выбранного способа оплаты. Полный номер карты не хранится.
type PaymentDetails struct {
	CardLastDigits *string
	CardBrand      *string
	CardToken      *string
	PixCode        *string
	BoletoCode     *string
}

type Payment struct {
	ID               uuid.UUID
	ServiceID        uuid.UUID
	ClientID         uuid.UUID
	ProviderID       uuid.UUID
	GatewayID        *uuid.UUID
	Amount           decimal.Decimal
	ServiceFee       decimal.Decimal
	Status           valueobject.PaymentStatus
	Method           valueobject.PaymentMethod
	Details          PaymentDetails
	Installments     int
	InstallmentValue decimal.Decimal
	TransactionID    *string
	PaidAt           *time.Time
	ProcessedAt      *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewEscrowPayment создаёт платёж в статусе pending; в БД он попадает только после ответа процессора.
func NewEscrowPayment(service *Service, accepted *Proposal, method valueobject.PaymentMethod, details PaymentDetails, installments int, fee valueobject.FeePolicy) (*Payment, error) {
	if service.ProviderID == nil {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "у услуги нет назначенного исполнителя")
	}
	if installments <= 0 {
		installments = 1
	}
	if installments > 1 && method != valueobject.PaymentMethodCard {
		return nil, apperror.Validation("рассрочка доступна только для карт",
			apperror.FieldError{Field: "installments", Message: "допустимо только для method=card"})
	}

	amount := valueobject.RoundMoney(accepted.Value)
	now := time.Now().UTC()
	return &Payment{
		ID:               uuid.New(),
		ServiceID:        service.ID,
		ClientID:         service.ClientID,
		ProviderID:       *service.ProviderID,
		Amount:           amount,
		ServiceFee:       fee.Fee(amount),
		Status:           valueobject.PaymentStatusPending,
		Method:           method,
		Details:          details,
		Installments:     installments,
		InstallmentValue: valueobject.RoundMoney(amount.Div(decimal.NewFromInt(int64(installments)))),
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// MarkProcessing фиксирует успешную авторизацию средств в эскроу.
func (p *Payment) MarkProcessing(transactionID string) error {
	if err := p.transition(valueobject.PaymentStatusProcessing, "платёж уже обработан"); err != nil {
		return err
	}
	p.TransactionID = &transactionID
	now := p.UpdatedAt
	p.PaidAt = &now
	return nil
}

func (p *Payment) Release() error {
	if err := p.transition(valueobject.PaymentStatusCompleted, "освободить можно только платёж в статусе processing"); err != nil {
		return err
	}
	now := p.UpdatedAt
	p.ProcessedAt = &now
	return nil
}

func (p *Payment) MarkRefunded() error {
	return p.transition(valueobject.PaymentStatusRefunded, "платёж нельзя вернуть в текущем статусе")
}

// IsRefundable сообщает, можно ли запросить возврат по платежу.
func (p *Payment) IsRefundable() bool {
	return p.Status == valueobject.PaymentStatusProcessing || p.Status == valueobject.PaymentStatusCompleted
}

// NetAmount сумма к перечислению исполнителю.
func (p *Payment) NetAmount() decimal.Decimal {
	return p.Amount.Sub(p.ServiceFee)
}

func (p *Payment) IsPayer(clientID uuid.UUID) bool {
	return p.ClientID == clientID
}

func (p *Payment) transition(next valueobject.PaymentStatus, message string) error {
	if !p.Status.CanTransitionTo(next) {
		return apperror.New(apperror.ErrCodeInvalidState, message)
	}
	p.Status = next
	p.UpdatedAt = time.Now().UTC()
	return nil
}
