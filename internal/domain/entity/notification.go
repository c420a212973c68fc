package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/workmatch/marketplace-backend/internal/domain/valueobject"
)

type Notification struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	Kind       valueobject.NotificationKind
	Title      string
	Message    string
	IsRead     bool
	ReadAt     *time.Time
	ServiceID  *uuid.UUID
	ProposalID *uuid.UUID
	PaymentID  *uuid.UUID
	CreatedAt  time.Time
}

// NotificationRequest описывает, кого и о чём уведомить.
// Получатели задаются явным списком, ролью или тем и другим;
// роль раскрывается в список пользователей в момент отправки.
type NotificationRequest struct {
	Recipients []uuid.UUID
	Role       valueobject.Role
	Kind       valueobject.NotificationKind
	Title      string
	Message    string
	ServiceID  *uuid.UUID
	ProposalID *uuid.UUID
	PaymentID  *uuid.UUID
}

// For создаёт уведомление для конкретного получателя.
func (r NotificationRequest) For(userID uuid.UUID) *Notification {
	return &Notification{
		ID:         uuid.New(),
		UserID:     userID,
		Kind:       r.Kind,
		Title:      r.Title,
		Message:    r.Message,
		ServiceID:  r.ServiceID,
		ProposalID: r.ProposalID,
		PaymentID:  r.PaymentID,
		CreatedAt:  time.Now().UTC(),
	}
}

// DeadLetter уведомление, которое не удалось доставить ни с одной попытки.
// UserID пуст, если не удалось даже определить получателей роли.
type DeadLetter struct {
	ID        uuid.UUID
	UserID    *uuid.UUID
	Request   NotificationRequest
	Attempts  int
	LastError string
	FailedAt  time.Time
}
