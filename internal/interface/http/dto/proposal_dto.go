package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/workmatch/marketplace-backend/internal/domain/entity"
)

type SubmitProposalRequest struct {
	ServiceID         uuid.UUID       `json:"service_id" binding:"required"`
	Value             decimal.Decimal `json:"value"`
	EstimatedDays     int             `json:"estimated_days" binding:"required,gt=0"`
	Description       string          `json:"description" binding:"required,max=5000"`
	PaymentForm       string          `json:"payment_form" binding:"omitempty,oneof=full installments"`
	SpecialConditions *string         `json:"special_conditions"`
	Warranty          *string         `json:"warranty"`
	Notes             *string         `json:"notes"`
}

type RejectProposalRequest struct {
	Reason string `json:"reason" binding:"max=1000"`
}

type ProposalResponse struct {
	ID                uuid.UUID  `json:"id"`
	ServiceID         uuid.UUID  `json:"service_id"`
	ProviderID        uuid.UUID  `json:"provider_id"`
	Value             string     `json:"value"`
	EstimatedDays     int        `json:"estimated_days"`
	Description       string     `json:"description"`
	PaymentForm       string     `json:"payment_form"`
	Status            string     `json:"status"`
	SpecialConditions *string    `json:"special_conditions,omitempty"`
	Warranty          *string    `json:"warranty,omitempty"`
	Notes             *string    `json:"notes,omitempty"`
	RejectionReason   *string    `json:"rejection_reason,omitempty"`
	SubmittedAt       time.Time  `json:"submitted_at"`
	RespondedAt       *time.Time `json:"responded_at,omitempty"`
}

func ToProposalResponse(p *entity.Proposal) ProposalResponse {
	return ProposalResponse{
		ID:                p.ID,
		ServiceID:         p.ServiceID,
		ProviderID:        p.ProviderID,
		Value:             money(p.Value),
		EstimatedDays:     p.EstimatedDays,
		Description:       p.Description,
		PaymentForm:       string(p.PaymentForm),
		Status:            string(p.Status),
		SpecialConditions: p.SpecialConditions,
		Warranty:          p.Warranty,
		Notes:             p.Notes,
		RejectionReason:   p.RejectionReason,
		SubmittedAt:       p.SubmittedAt,
		RespondedAt:       p.RespondedAt,
	}
}

func ToProposalResponses(proposals []*entity.Proposal) []ProposalResponse {
	return convertAll(proposals, ToProposalResponse)
}
