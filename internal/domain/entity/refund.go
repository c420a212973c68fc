package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/workmatch/marketplace-backend/internal/domain/valueobject"
	"github.com/workmatch/marketplace-backend/internal/pkg/apperror"
)

// Refund заявка на возврат; на один платёж допускается одна заявка.
type Refund struct {
	ID              uuid.UUID
	PaymentID       uuid.UUID
	ServiceID       uuid.UUID
	RequesterID     uuid.UUID
	Reason          string
	Amount          decimal.Decimal
	Status          valueobject.RefundStatus
	ReviewedBy      *uuid.UUID
	RejectionReason *string
	Notes           *string
	RequestedAt     time.Time
	ProcessedAt     *time.Time
	CompletedAt     *time.Time
	UpdatedAt       time.Time
}

func NewRefund(payment *Payment, requesterUserID uuid.UUID, reason string) (*Refund, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperror.Validation("причина возврата обязательна",
			apperror.FieldError{Field: "reason", Message: "обязательное поле"})
	}

	now := time.Now().UTC()
	return &Refund{
		ID:          uuid.New(),
		PaymentID:   payment.ID,
		ServiceID:   payment.ServiceID,
		RequesterID: requesterUserID,
		Reason:      reason,
		Amount:      valueobject.RoundMoney(payment.Amount),
		Status:      valueobject.RefundStatusPending,
		RequestedAt: now,
		UpdatedAt:   now,
	}, nil
}

// Complete фиксирует одобрение администратором и успешный возврат средств.
func (r *Refund) Complete(adminID uuid.UUID, notes string) error {
	if !r.Status.IsOpen() {
		return apperror.New(apperror.ErrCodeInvalidState, "заявка на возврат уже рассмотрена")
	}
	now := time.Now().UTC()
	r.Status = valueobject.RefundStatusCompleted
	r.ReviewedBy = &adminID
	r.ProcessedAt = &now
	r.CompletedAt = &now
	r.UpdatedAt = now
	if notes = strings.TrimSpace(notes); notes != "" {
		r.Notes = &notes
	}
	return nil
}

func (r *Refund) Reject(adminID uuid.UUID, reason string) error {
	if !r.Status.CanTransitionTo(valueobject.RefundStatusRejected) {
		return apperror.New(apperror.ErrCodeInvalidState, "заявка на возврат уже рассмотрена")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return apperror.Validation("причина отказа обязательна",
			apperror.FieldError{Field: "reason", Message: "обязательное поле"})
	}
	now := time.Now().UTC()
	r.Status = valueobject.RefundStatusRejected
	r.ReviewedBy = &adminID
	r.RejectionReason = &reason
	r.ProcessedAt = &now
	r.UpdatedAt = now
	return nil
}
