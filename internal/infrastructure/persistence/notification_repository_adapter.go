package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/workmatch/marketplace-backend/internal/domain/entity"
	"github.com/workmatch/marketplace-backend/internal/domain/valueobject"
	"github.com/workmatch/marketplace-backend/internal/pkg/apperror"
)

const notificationColumns = `id, user_id, kind, title, message, is_read, read_at, service_id, proposal_id, payment_id, created_at`

type NotificationRepositoryAdapter struct {
	db sqlx.ExtContext
}

func NewNotificationRepositoryAdapter(db sqlx.ExtContext) *NotificationRepositoryAdapter {
	return &NotificationRepositoryAdapter{db: db}
}

func (r *NotificationRepositoryAdapter) Create(ctx context.Context, n *entity.Notification) error {
	query := `INSERT INTO notifications (` + notificationColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.db.ExecContext(ctx, query,
		n.ID, n.UserID, string(n.Kind), n.Title, n.Message, n.IsRead, n.ReadAt,
		n.ServiceID, n.ProposalID, n.PaymentID, n.CreatedAt,
	)
	if err != nil {
		return writeError(err, "не удалось сохранить уведомление", "уведомление уже сохранено")
	}
	return nil
}

func (r *NotificationRepositoryAdapter) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit, offset int) ([]*entity.Notification, int, error) {
	where := ` WHERE user_id = $1`
	if unreadOnly {
		where += ` AND is_read = FALSE`
	}

	var total int
	if err := sqlx.GetContext(ctx, r.db, &total, `SELECT COUNT(*) FROM notifications`+where, userID); err != nil {
		return nil, 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось посчитать уведомления")
	}

	limit, offset = pageArgs(limit, offset)
	query := `SELECT ` + notificationColumns + ` FROM notifications` + where + ` ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	var rows []notificationRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, userID, limit, offset); err != nil {
		return nil, 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить уведомления")
	}
	items := make([]*entity.Notification, len(rows))
	for i := range rows {
		items[i] = rows[i].toEntity()
	}
	return items, total, nil
}

// MarkRead отмечает уведомление прочитанным; чужое уведомление считается ненайденным.
func (r *NotificationRepositoryAdapter) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	query := `UPDATE notifications SET is_read = TRUE, read_at = COALESCE(read_at, NOW()) WHERE id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось отметить уведомление")
	}
	return expectAffected(res, apperror.ErrNotificationNotFound)
}

func (r *NotificationRepositoryAdapter) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	query := `UPDATE notifications SET is_read = TRUE, read_at = NOW() WHERE user_id = $1 AND is_read = FALSE`
	res, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось отметить уведомления")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить число отмеченных уведомлений")
	}
	return n, nil
}

func (r *NotificationRepositoryAdapter) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE`
	if err := sqlx.GetContext(ctx, r.db, &count, query, userID); err != nil {
		return 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось посчитать непрочитанные уведомления")
	}
	return count, nil
}

type notificationRow struct {
	ID         uuid.UUID  `db:"id"`
	UserID     uuid.UUID  `db:"user_id"`
	Kind       string     `db:"kind"`
	Title      string     `db:"title"`
	Message    string     `db:"message"`
	IsRead     bool       `db:"is_read"`
	ReadAt     *time.Time `db:"read_at"`
	ServiceID  *uuid.UUID `db:"service_id"`
	ProposalID *uuid.UUID `db:"proposal_id"`
	PaymentID  *uuid.UUID `db:"payment_id"`
	CreatedAt  time.Time  `db:"created_at"`
}

func (row *notificationRow) toEntity() *entity.Notification {
	return &entity.Notification{
		ID:         row.ID,
		UserID:     row.UserID,
		Kind:       valueobject.NotificationKind(row.Kind),
		Title:      row.Title,
		Message:    row.Message,
		IsRead:     row.IsRead,
		ReadAt:     row.ReadAt,
		ServiceID:  row.ServiceID,
		ProposalID: row.ProposalID,
		PaymentID:  row.PaymentID,
		CreatedAt:  row.CreatedAt,
	}
}
