package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/workmatch/marketplace-backend/internal/domain/entity"
)

type CreateReviewRequest struct {
	ServiceID uuid.UUID `json:"service_id" binding:"required"`
	Rating    int       `json:"rating" binding:"required,gte=1,lte=5"`
	Comment   *string   `json:"comment" binding:"omitempty,max=2000"`
}

type UpdateReviewRequest struct {
	Rating  int     `json:"rating" binding:"required,gte=1,lte=5"`
	Comment *string `json:"comment" binding:"omitempty,max=2000"`
}

type ReviewResponse struct {
	ID         uuid.UUID `json:"id"`
	ServiceID  uuid.UUID `json:"service_id"`
	ReviewerID uuid.UUID `json:"reviewer_id"`
	RevieweeID uuid.UUID `json:"reviewee_id"`
	Rating     int       `json:"rating"`
	Comment    *string   `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func ToReviewResponse(r *entity.Review) ReviewResponse {
	return ReviewResponse{
		ID:         r.ID,
		ServiceID:  r.ServiceID,
		ReviewerID: r.ReviewerID,
		RevieweeID: r.RevieweeID,
		Rating:     r.Rating,
		Comment:    r.Comment,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

func ToReviewResponses(reviews []*entity.Review) []ReviewResponse {
	return convertAll(reviews, ToReviewResponse)
}
