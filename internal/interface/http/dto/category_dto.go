package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/workmatch/marketplace-backend/internal/domain/entity"
)

type CreateCategoryRequest struct {
	Name        string  `json:"name" binding:"required,max=100"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
	Icon        *string `json:"icon" binding:"omitempty,max=100"`
}

type UpdateCategoryRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=100"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
	Icon        *string `json:"icon" binding:"omitempty,max=100"`
}

type CategoryStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active inactive"`
}

type CategoryResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Icon        *string   `json:"icon,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

func ToCategoryResponse(c *entity.Category) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Icon:        c.Icon,
		Status:      string(c.Status),
		CreatedAt:   c.CreatedAt,
	}
}

func ToCategoryResponses(categories []*entity.Category) []CategoryResponse {
	return convertAll(categories, ToCategoryResponse)
}
