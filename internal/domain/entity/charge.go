package entity

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/workmatch/marketplace-backend/internal/domain/valueobject"
)

// ChargeRequest данные для авторизации платежа у процессора.
// Details.CardToken передаётся только сюда и нигде не сохраняется.
type ChargeRequest struct {
	PaymentID    uuid.UUID
	ServiceID    uuid.UUID
	Amount       decimal.Decimal
	Method       valueobject.PaymentMethod
	Details      PaymentDetails
	Installments int
	Description  string
	PayerEmail   string
}

// ChargeResult ответ процессора на авторизацию.
type ChargeResult struct {
	Approved       bool
	TransactionID  string
	ProviderStatus string
	DeclineReason  string
}
