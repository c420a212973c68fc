package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/workmatch/marketplace-backend/internal/domain/entity"
	"github.com/workmatch/marketplace-backend/internal/domain/valueobject"
)

type CreateServiceRequest struct {
	Title        string               `json:"title" binding:"required,max=200"`
	Description  string               `json:"description" binding:"required,max=5000"`
	CategoryID   uuid.UUID            `json:"category_id" binding:"required"`
	BudgetMin    decimal.Decimal      `json:"budget_min"`
	BudgetMax    decimal.Decimal      `json:"budget_max"`
	LocationType string               `json:"location_type" binding:"required,oneof=on_site remote hybrid"`
	Address      *valueobject.Address `json:"address"`
}

type UpdateServiceRequest struct {
	Title        *string              `json:"title" binding:"omitempty,max=200"`
	Description  *string              `json:"description" binding:"omitempty,max=5000"`
	CategoryID   *uuid.UUID           `json:"category_id"`
	BudgetMin    *decimal.Decimal     `json:"budget_min"`
	BudgetMax    *decimal.Decimal     `json:"budget_max"`
	LocationType *string              `json:"location_type" binding:"omitempty,oneof=on_site remote hybrid"`
	Address      *valueobject.Address `json:"address"`
}

type BudgetResponse struct {
	Min string `json:"min"`
	Max string `json:"max"`
}

type ServiceResponse struct {
	ID          uuid.UUID            `json:"id"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	CategoryID  uuid.UUID            `json:"category_id"`
	ClientID    uuid.UUID            `json:"client_id"`
	ProviderID  *uuid.UUID           `json:"provider_id,omitempty"`
	Status      string               `json:"status"`
	Budget      BudgetResponse       `json:"budget"`
	Location    valueobject.Location `json:"location"`
	ProposalIDs []uuid.UUID          `json:"proposal_ids"`
	PublishedAt time.Time            `json:"published_at"`
	CompletedAt *time.Time           `json:"completed_at,omitempty"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

func ToServiceResponse(s *entity.Service) ServiceResponse {
	ids := s.ProposalIDs
	if ids == nil {
		ids = []uuid.UUID{}
	}
	return ServiceResponse{
		ID:          s.ID,
		Title:       s.Title,
		Description: s.Description,
		CategoryID:  s.CategoryID,
		ClientID:    s.ClientID,
		ProviderID:  s.ProviderID,
		Status:      string(s.Status),
		Budget:      BudgetResponse{Min: money(s.Budget.Min), Max: money(s.Budget.Max)},
		Location:    s.Location,
		ProposalIDs: ids,
		PublishedAt: s.PublishedAt,
		CompletedAt: s.CompletedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}
