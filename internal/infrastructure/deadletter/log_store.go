package deadletter

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/workmatch/marketplace-backend/internal/domain/entity"
	"github.com/workmatch/marketplace-backend/internal/logger"
)

// LogStore используется, когда таблица dead-letter не настроена:
// недоставленное уведомление остаётся только в логе.
type LogStore struct {
	log *logrus.Entry
}

func NewLogStore() *LogStore {
	return &LogStore{log: logger.WithComponent("deadletter")}
}

func (s *LogStore) Put(_ context.Context, letter entity.DeadLetter) error {
	it := toItem(letter)
	s.log.WithFields(logrus.Fields{
		"id":         it.ID,
		"user_id":    it.UserID,
		"role":       it.Role,
		"recipients": it.Recipients,
		"kind":       it.Kind,
		"attempts":   it.Attempts,
		"last_error": it.LastError,
		"failed_at":  it.FailedAt,
	}).Error("уведомление не доставлено")
	return nil
}

func uuidString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}
