package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/workmatch/marketplace-backend/internal/domain/entity"
	"github.com/workmatch/marketplace-backend/internal/domain/valueobject"
	"github.com/workmatch/marketplace-backend/internal/pkg/apperror"
)

const refundColumns = `id, payment_id, service_id, requester_id, reason, amount, status, reviewed_by,
	rejection_reason, notes, requested_at, processed_at, completed_at, updated_at`

type RefundRepositoryAdapter struct {
	db sqlx.ExtContext
}

func NewRefundRepositoryAdapter(db sqlx.ExtContext) *RefundRepositoryAdapter {
	return &RefundRepositoryAdapter{db: db}
}

func (r *RefundRepositoryAdapter) Create(ctx context.Context, refund *entity.Refund) error {
	query := `
		INSERT INTO refunds (` + refundColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := r.db.ExecContext(ctx, query,
		refund.ID, refund.PaymentID, refund.ServiceID, refund.RequesterID, refund.Reason,
		valueobject.RoundMoney(refund.Amount), string(refund.Status), refund.ReviewedBy,
		refund.RejectionReason, refund.Notes, refund.RequestedAt, refund.ProcessedAt,
		refund.CompletedAt, refund.UpdatedAt,
	)
	if err != nil {
		return writeError(err, "не удалось создать заявку на возврат", "по платежу уже есть заявка на возврат")
	}
	return nil
}

func (r *RefundRepositoryAdapter) Update(ctx context.Context, refund *entity.Refund) error {
	query := `
		UPDATE refunds SET status = $2, reviewed_by = $3, rejection_reason = $4, notes = $5,
			processed_at = $6, completed_at = $7, updated_at = $8
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query,
		refund.ID, string(refund.Status), refund.ReviewedBy, refund.RejectionReason, refund.Notes,
		refund.ProcessedAt, refund.CompletedAt, refund.UpdatedAt,
	)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось обновить заявку на возврат")
	}
	return expectAffected(res, apperror.ErrRefundNotFound)
}

func (r *RefundRepositoryAdapter) FindByID(ctx context.Context, id uuid.UUID) (*entity.Refund, error) {
	var row refundRow
	query := `SELECT ` + refundColumns + ` FROM refunds WHERE id = $1`
	if err := sqlx.GetContext(ctx, r.db, &row, query, id); err != nil {
		return nil, readError(err, apperror.ErrRefundNotFound, "не удалось получить заявку на возврат")
	}
	return row.toEntity(), nil
}

func (r *RefundRepositoryAdapter) FindByPaymentID(ctx context.Context, paymentID uuid.UUID) (*entity.Refund, error) {
	var row refundRow
	query := `SELECT ` + refundColumns + ` FROM refunds WHERE payment_id = $1`
	if err := sqlx.GetContext(ctx, r.db, &row, query, paymentID); err != nil {
		return nil, readError(err, apperror.ErrRefundNotFound, "не удалось получить заявку на возврат")
	}
	return row.toEntity(), nil
}

func (r *RefundRepositoryAdapter) List(ctx context.Context, status *valueobject.RefundStatus, limit, offset int) ([]*entity.Refund, int, error) {
	baseQuery := `FROM refunds WHERE 1=1`
	args := []interface{}{}
	argNum := 1
	if status != nil {
		baseQuery += fmt.Sprintf(" AND status = $%d", argNum)
		args = append(args, string(*status))
		argNum++
	}

	var total int
	if err := sqlx.GetContext(ctx, r.db, &total, "SELECT COUNT(*) "+baseQuery, args...); err != nil {
		return nil, 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось посчитать заявки на возврат")
	}

	limit, offset = pageArgs(limit, offset)
	query := fmt.Sprintf(`SELECT %s %s ORDER BY requested_at DESC LIMIT $%d OFFSET $%d`, refundColumns, baseQuery, argNum, argNum+1)
	args = append(args, limit, offset)

	var rows []refundRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить заявки на возврат")
	}
	refunds := make([]*entity.Refund, len(rows))
	for i := range rows {
		refunds[i] = rows[i].toEntity()
	}
	return refunds, total, nil
}

type refundRow struct {
	ID              uuid.UUID       `db:"id"`
	PaymentID       uuid.UUID       `db:"payment_id"`
	ServiceID       uuid.UUID       `db:"service_id"`
	RequesterID     uuid.UUID       `db:"requester_id"`
	Reason          string          `db:"reason"`
	Amount          decimal.Decimal `db:"amount"`
	Status          string          `db:"status"`
	ReviewedBy      *uuid.UUID      `db:"reviewed_by"`
	RejectionReason *string         `db:"rejection_reason"`
	Notes           *string         `db:"notes"`
	RequestedAt     time.Time       `db:"requested_at"`
	ProcessedAt     *time.Time      `db:"processed_at"`
	CompletedAt     *time.Time      `db:"completed_at"`
	UpdatedAt       time.Time       `db:"updated_at"`
}

func (row *refundRow) toEntity() *entity.Refund {
	return &entity.Refund{
		ID:              row.ID,
		PaymentID:       row.PaymentID,
		ServiceID:       row.ServiceID,
		RequesterID:     row.RequesterID,
		Reason:          row.Reason,
		Amount:          row.Amount,
		Status:          valueobject.RefundStatus(row.Status),
		ReviewedBy:      row.ReviewedBy,
		RejectionReason: row.RejectionReason,
		Notes:           row.Notes,
		RequestedAt:     row.RequestedAt,
		ProcessedAt:     row.ProcessedAt,
		CompletedAt:     row.CompletedAt,
		UpdatedAt:       row.UpdatedAt,
	}
}
