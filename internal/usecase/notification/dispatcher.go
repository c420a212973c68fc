package notification

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/workmatch/marketplace-backend/internal/domain/entity"
	"github.com/workmatch/marketplace-backend/internal/domain/repository"
	"github.com/workmatch/marketplace-backend/internal/goroutine"
	"github.com/workmatch/marketplace-backend/internal/logger"
)

// Pusher доставляет событие подключённому пользователю.
type Pusher interface {
	PushToUser(userID uuid.UUID, event string, data any) error
}

// DeadLetterStore хранит уведомления, исчерпавшие все попытки.
type DeadLetterStore interface {
	Put(ctx context.Context, letter entity.DeadLetter) error
}

type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
}

// Dispatcher рассылает уведомления после фиксации транзакции.
// Ошибки доставки не возвращаются вызывающему: запись повторяется
// с линейной задержкой, после последней попытки уходит в dead-letter.
type Dispatcher struct {
	users         repository.UserRepository
	notifications repository.NotificationRepository
	pusher        Pusher
	deadLetters   DeadLetterStore
	retry         RetryPolicy
	wg            sync.WaitGroup
	log           *logrus.Entry
}

func NewDispatcher(users repository.UserRepository, notifications repository.NotificationRepository, pusher Pusher, deadLetters DeadLetterStore, retry RetryPolicy) *Dispatcher {
	if retry.MaxAttempts < 1 {
		retry.MaxAttempts = 1
	}
	return &Dispatcher{
		users:         users,
		notifications: notifications,
		pusher:        pusher,
		deadLetters:   deadLetters,
		retry:         retry,
		log:           logger.WithComponent("notification"),
	}
}

// Notify запускает доставку в фоне и сразу возвращает управление.
func (d *Dispatcher) Notify(ctx context.Context, req entity.NotificationRequest) {
	d.wg.Add(1)
	goroutine.SafeGoWithContext(context.WithoutCancel(ctx), func(ctx context.Context) {
		defer d.wg.Done()
		d.Deliver(ctx, req)
	})
}

// Wait дожидается завершения фоновых доставок (используется при остановке).
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Deliver синхронно раскрывает получателей и сохраняет уведомление для каждого.
func (d *Dispatcher) Deliver(ctx context.Context, req entity.NotificationRequest) {
	log := d.log.WithFields(logrus.Fields{"kind": req.Kind, "role": req.Role})

	recipients, attempts, err := d.resolveRecipients(ctx, req)
	if err != nil {
		log.WithError(err).Error("не удалось определить получателей уведомления")
		d.bury(ctx, entity.DeadLetter{Request: req, Attempts: attempts, LastError: err.Error()})
		return
	}
	if len(recipients) == 0 {
		log.Debug("у уведомления нет получателей")
		return
	}

	for _, userID := range recipients {
		n := req.For(userID)
		attempts, err := d.withRetry(ctx, func() error {
			return d.notifications.Create(ctx, n)
		})
		if err != nil {
			log.WithError(err).WithField("user_id", userID).Error("уведомление не сохранено")
			uid := userID
			d.bury(ctx, entity.DeadLetter{UserID: &uid, Request: req, Attempts: attempts, LastError: err.Error()})
			continue
		}

		if d.pusher == nil {
			continue
		}
		if err := d.pusher.PushToUser(userID, "notification", n); err != nil {
			log.WithError(err).WithField("user_id", userID).Warn("не удалось отправить уведомление по websocket")
		}
	}
}

// resolveRecipients объединяет явный список и пользователей роли на момент отправки.
func (d *Dispatcher) resolveRecipients(ctx context.Context, req entity.NotificationRequest) ([]uuid.UUID, int, error) {
	seen := make(map[uuid.UUID]struct{}, len(req.Recipients))
	var result []uuid.UUID
	add := func(ids []uuid.UUID) {
		for _, id := range ids {
			if id == uuid.Nil {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			result = append(result, id)
		}
	}
	add(req.Recipients)

	if req.Role == "" {
		return result, 0, nil
	}
	var byRole []uuid.UUID
	attempts, err := d.withRetry(ctx, func() error {
		var err error
		byRole, err = d.users.ListIDsByRole(ctx, req.Role)
		return err
	})
	if err != nil {
		return nil, attempts, err
	}
	add(byRole)
	return result, attempts, nil
}

func (d *Dispatcher) withRetry(ctx context.Context, fn func() error) (int, error) {
	var err error
	for attempt := 1; attempt <= d.retry.MaxAttempts; attempt++ {
		if err = fn(); err == nil {
			return attempt, nil
		}
		if attempt == d.retry.MaxAttempts {
			return attempt, err
		}
		select {
		case <-ctx.Done():
			return attempt, ctx.Err()
		case <-time.After(d.retry.Backoff * time.Duration(attempt)):
		}
	}
	return d.retry.MaxAttempts, err
}

func (d *Dispatcher) bury(ctx context.Context, letter entity.DeadLetter) {
	if d.deadLetters == nil {
		return
	}
	letter.ID = uuid.New()
	letter.FailedAt = time.Now().UTC()
	if err := d.deadLetters.Put(ctx, letter); err != nil {
		d.log.WithError(err).WithField("kind", letter.Request.Kind).Error("не удалось записать уведомление в dead-letter")
	}
}
