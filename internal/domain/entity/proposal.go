package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/workmatch/marketplace-backend/internal/domain/valueobject"
	"github.com/workmatch/marketplace-backend/internal/pkg/apperror"
)

type Proposal struct {
	ID                uuid.UUID
	ServiceID         uuid.UUID
	ProviderID        uuid.UUID
	Value             decimal.Decimal
	EstimatedDays     int
	Description       string
	PaymentForm       valueobject.PaymentForm
	Status            valueobject.ProposalStatus
	SpecialConditions *string
	Warranty          *string
	Notes             *string
	RejectionReason   *string
	SubmittedAt       time.Time
	RespondedAt       *time.Time
	UpdatedAt         time.Time
}

// ProposalTerms условия, которые исполнитель указывает при подаче.
type ProposalTerms struct {
	Value             decimal.Decimal
	EstimatedDays     int
	Description       string
	PaymentForm       valueobject.PaymentForm
	SpecialConditions *string
	Warranty          *string
	Notes             *string
}

func NewProposal(serviceID, providerID uuid.UUID, terms ProposalTerms) (*Proposal, error) {
	var details []apperror.FieldError
	value, err := valueobject.NewAmount(terms.Value, "value")
	if err != nil {
		details = append(details, apperror.FieldError{Field: "value", Message: "сумма должна быть положительной"})
	}
	if terms.EstimatedDays <= 0 {
		details = append(details, apperror.FieldError{Field: "estimated_days", Message: "срок должен быть положительным"})
	}
	description := strings.TrimSpace(terms.Description)
	if description == "" {
		details = append(details, apperror.FieldError{Field: "description", Message: "обязательное поле"})
	}
	if len(details) > 0 {
		return nil, apperror.Validation("некорректные данные предложения", details...)
	}

	form := terms.PaymentForm
	if form == "" {
		form = valueobject.PaymentFormFull
	}

	now := time.Now().UTC()
	return &Proposal{
		ID:                uuid.New(),
		ServiceID:         serviceID,
		ProviderID:        providerID,
		Value:             value,
		EstimatedDays:     terms.EstimatedDays,
		Description:       description,
		PaymentForm:       form,
		Status:            valueobject.ProposalStatusPending,
		SpecialConditions: terms.SpecialConditions,
		Warranty:          terms.Warranty,
		Notes:             terms.Notes,
		SubmittedAt:       now,
		UpdatedAt:         now,
	}, nil
}

func (p *Proposal) Accept() error {
	return p.respond(valueobject.ProposalStatusAccepted, "можно принять только ожидающее предложение")
}

func (p *Proposal) Reject(reason string) error {
	if err := p.respond(valueobject.ProposalStatusRejected, "можно отклонить только ожидающее предложение"); err != nil {
		return err
	}
	if reason = strings.TrimSpace(reason); reason != "" {
		p.RejectionReason = &reason
	}
	return nil
}

// Withdraw отзыв предложения самим исполнителем.
func (p *Proposal) Withdraw() error {
	return p.respond(valueobject.ProposalStatusCanceled, "отозвать можно только ожидающее предложение")
}

func (p *Proposal) respond(next valueobject.ProposalStatus, message string) error {
	if !p.Status.CanTransitionTo(next) {
		return apperror.New(apperror.ErrCodeInvalidState, message)
	}
	now := time.Now().UTC()
	p.Status = next
	p.RespondedAt = &now
	p.UpdatedAt = now
	return nil
}

func (p *Proposal) IsOwnedBy(providerID uuid.UUID) bool {
	return p.ProviderID == providerID
}

func (p *Proposal) IsPending() bool {
	return p.Status == valueobject.ProposalStatusPending
}

func (p *Proposal) IsAccepted() bool {
	return p.Status == valueobject.ProposalStatusAccepted
}
