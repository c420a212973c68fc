package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/workmatch/marketplace-backend/internal/domain/entity"
)

type NotificationResponse struct {
	ID         uuid.UUID  `json:"id"`
	Kind       string     `json:"kind"`
	Title      string     `json:"title"`
	Message    string     `json:"message"`
	IsRead     bool       `json:"is_read"`
	ReadAt     *time.Time `json:"read_at,omitempty"`
	ServiceID  *uuid.UUID `json:"service_id,omitempty"`
	ProposalID *uuid.UUID `json:"proposal_id,omitempty"`
	PaymentID  *uuid.UUID `json:"payment_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

func ToNotificationResponse(n *entity.Notification) NotificationResponse {
	return NotificationResponse{
		ID:         n.ID,
		Kind:       string(n.Kind),
		Title:      n.Title,
		Message:    n.Message,
		IsRead:     n.IsRead,
		ReadAt:     n.ReadAt,
		ServiceID:  n.ServiceID,
		ProposalID: n.ProposalID,
		PaymentID:  n.PaymentID,
		CreatedAt:  n.CreatedAt,
	}
}

type UnreadCountResponse struct {
	Count int `json:"count"`
}

type MarkedReadResponse struct {
	Updated int64 `json:"updated"`
}
