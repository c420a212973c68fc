package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/workmatch/marketplace-backend/internal/domain/entity"
)

// CardDetails данные карты. Токен уходит процессору и не сохраняется.
type CardDetails struct {
	Token      string `json:"token"`
	LastDigits string `json:"last_digits" binding:"omitempty,len=4,numeric"`
	Brand      string `json:"brand"`
}

type InitiatePaymentRequest struct {
	ServiceID    uuid.UUID    `json:"service_id" binding:"required"`
	Method       string       `json:"method" binding:"required"`
	Installments int          `json:"installments" binding:"omitempty,gte=1,lte=12"`
	Card         *CardDetails `json:"card"`
}

type RefundRequest struct {
	Reason string `json:"reason" binding:"required,max=1000"`
}

type ApproveRefundRequest struct {
	Notes string `json:"notes" binding:"max=1000"`
}

type RejectReasonRequest struct {
	Reason string `json:"reason" binding:"required,max=1000"`
}

type PaymentResponse struct {
	ID               uuid.UUID  `json:"id"`
	ServiceID        uuid.UUID  `json:"service_id"`
	ClientID         uuid.UUID  `json:"client_id"`
	ProviderID       uuid.UUID  `json:"provider_id"`
	Amount           string     `json:"amount"`
	ServiceFee       string     `json:"service_fee"`
	Status           string     `json:"status"`
	Method           string     `json:"method"`
	Installments     int        `json:"installments"`
	InstallmentValue string     `json:"installment_value"`
	CardLastDigits   *string    `json:"card_last_digits,omitempty"`
	CardBrand        *string    `json:"card_brand,omitempty"`
	PixCode          *string    `json:"pix_code,omitempty"`
	BoletoCode       *string    `json:"boleto_code,omitempty"`
	TransactionID    *string    `json:"transaction_id,omitempty"`
	PaidAt           *time.Time `json:"paid_at,omitempty"`
	ProcessedAt      *time.Time `json:"processed_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

type RefundResponse struct {
	ID              uuid.UUID  `json:"id"`
	PaymentID       uuid.UUID  `json:"payment_id"`
	ServiceID       uuid.UUID  `json:"service_id"`
	RequesterID     uuid.UUID  `json:"requester_id"`
	Reason          string     `json:"reason"`
	Amount          string     `json:"amount"`
	Status          string     `json:"status"`
	RejectionReason *string    `json:"rejection_reason,omitempty"`
	Notes           *string    `json:"notes,omitempty"`
	RequestedAt     time.Time  `json:"requested_at"`
	ProcessedAt     *time.Time `json:"processed_at,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
}

// ToPaymentDetails собирает реквизиты из запроса; пустые поля остаются nil.
func (r InitiatePaymentRequest) ToPaymentDetails() entity.PaymentDetails {
	var details entity.PaymentDetails
	if r.Card == nil {
		return details
	}
	details.CardToken = nonEmpty(r.Card.Token)
	details.CardLastDigits = nonEmpty(r.Card.LastDigits)
	details.CardBrand = nonEmpty(r.Card.Brand)
	return details
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func ToPaymentResponse(p *entity.Payment) PaymentResponse {
	return PaymentResponse{
		ID:               p.ID,
		ServiceID:        p.ServiceID,
		ClientID:         p.ClientID,
		ProviderID:       p.ProviderID,
		Amount:           money(p.Amount),
		ServiceFee:       money(p.ServiceFee),
		Status:           string(p.Status),
		Method:           string(p.Method),
		Installments:     p.Installments,
		InstallmentValue: money(p.InstallmentValue),
		CardLastDigits:   p.Details.CardLastDigits,
		CardBrand:        p.Details.CardBrand,
		PixCode:          p.Details.PixCode,
		BoletoCode:       p.Details.BoletoCode,
		TransactionID:    p.TransactionID,
		PaidAt:           p.PaidAt,
		ProcessedAt:      p.ProcessedAt,
		CreatedAt:        p.CreatedAt,
	}
}

func ToRefundResponse(r *entity.Refund) RefundResponse {
	return RefundResponse{
		ID:              r.ID,
		PaymentID:       r.PaymentID,
		ServiceID:       r.ServiceID,
		RequesterID:     r.RequesterID,
		Reason:          r.Reason,
		Amount:          money(r.Amount),
		Status:          string(r.Status),
		RejectionReason: r.RejectionReason,
		Notes:           r.Notes,
		RequestedAt:     r.RequestedAt,
		ProcessedAt:     r.ProcessedAt,
		CompletedAt:     r.CompletedAt,
	}
}
