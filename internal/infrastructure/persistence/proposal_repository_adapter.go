package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/workmatch/marketplace-backend/internal/domain/entity"
	"github.com/workmatch/marketplace-backend/internal/domain/valueobject"
	"github.com/workmatch/marketplace-backend/internal/pkg/apperror"
)

const proposalColumns = `id, service_id, provider_id, value, estimated_days, description, payment_form, status,
	special_conditions, warranty, notes, rejection_reason, submitted_at, responded_at, updated_at`

type ProposalRepositoryAdapter struct {
	db sqlx.ExtContext
}

func NewProposalRepositoryAdapter(db sqlx.ExtContext) *ProposalRepositoryAdapter {
	return &ProposalRepositoryAdapter{db: db}
}

func (r *ProposalRepositoryAdapter) Create(ctx context.Context, p *entity.Proposal) error {
	query := `
		INSERT INTO proposals (` + proposalColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.ServiceID, p.ProviderID, p.Value, p.EstimatedDays, p.Description, string(p.PaymentForm),
		string(p.Status), p.SpecialConditions, p.Warranty, p.Notes, p.RejectionReason,
		p.SubmittedAt, p.RespondedAt, p.UpdatedAt,
	)
	if err != nil {
		return writeError(err, "не удалось создать предложение", "вы уже отправили предложение на эту услугу")
	}
	return nil
}

// Update фиксирует ответ на предложение. Меняется только строка в статусе pending,
// иначе InvalidState.
func (r *ProposalRepositoryAdapter) Update(ctx context.Context, p *entity.Proposal) error {
	query := `
		UPDATE proposals SET status = $2, rejection_reason = $3, responded_at = $4, updated_at = $5
		WHERE id = $1 AND status = $6
	`
	res, err := r.db.ExecContext(ctx, query, p.ID, string(p.Status), p.RejectionReason, p.RespondedAt, p.UpdatedAt,
		string(valueobject.ProposalStatusPending))
	if err != nil {
		return writeError(err, "не удалось обновить предложение", "у услуги уже есть принятое предложение")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить число изменённых строк")
	}
	if n > 0 {
		return nil
	}

	var exists bool
	if err := sqlx.GetContext(ctx, r.db, &exists, `SELECT EXISTS(SELECT 1 FROM proposals WHERE id = $1)`, p.ID); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось проверить предложение")
	}
	if !exists {
		return apperror.ErrProposalNotFound
	}
	return apperror.ErrProposalNotPending
}

func (r *ProposalRepositoryAdapter) FindByID(ctx context.Context, id uuid.UUID) (*entity.Proposal, error) {
	var row proposalRow
	query := `SELECT ` + proposalColumns + ` FROM proposals WHERE id = $1`
	if err := sqlx.GetContext(ctx, r.db, &row, query, id); err != nil {
		return nil, readError(err, apperror.ErrProposalNotFound, "не удалось получить предложение")
	}
	return row.toEntity(), nil
}

func (r *ProposalRepositoryAdapter) FindByServiceID(ctx context.Context, serviceID uuid.UUID) ([]*entity.Proposal, error) {
	var rows []proposalRow
	query := `SELECT ` + proposalColumns + ` FROM proposals WHERE service_id = $1 ORDER BY submitted_at DESC`
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, serviceID); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить предложения")
	}
	return toProposalEntities(rows), nil
}

func (r *ProposalRepositoryAdapter) FindByProviderID(ctx context.Context, providerID uuid.UUID) ([]*entity.Proposal, error) {
	var rows []proposalRow
	query := `SELECT ` + proposalColumns + ` FROM proposals WHERE provider_id = $1 ORDER BY submitted_at DESC`
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, providerID); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить предложения")
	}
	return toProposalEntities(rows), nil
}

func (r *ProposalRepositoryAdapter) ExistsForProvider(ctx context.Context, serviceID, providerID uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM proposals WHERE service_id = $1 AND provider_id = $2)`
	if err := sqlx.GetContext(ctx, r.db, &exists, query, serviceID, providerID); err != nil {
		return false, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось проверить предложение")
	}
	return exists, nil
}

func (r *ProposalRepositoryAdapter) CountByStatus(ctx context.Context, serviceID uuid.UUID, status valueobject.ProposalStatus) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM proposals WHERE service_id = $1 AND status = $2`
	if err := sqlx.GetContext(ctx, r.db, &count, query, serviceID, string(status)); err != nil {
		return 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось посчитать предложения")
	}
	return count, nil
}

func (r *ProposalRepositoryAdapter) FindAccepted(ctx context.Context, serviceID uuid.UUID) ([]*entity.Proposal, error) {
	var rows []proposalRow
	query := `SELECT ` + proposalColumns + ` FROM proposals WHERE service_id = $1 AND status = $2`
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, serviceID, string(valueobject.ProposalStatusAccepted)); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить принятые предложения")
	}
	return toProposalEntities(rows), nil
}

func (r *ProposalRepositoryAdapter) RejectSiblings(ctx context.Context, serviceID, acceptedID uuid.UUID, at time.Time) (int64, error) {
	query := `
		UPDATE proposals SET status = $3, responded_at = $4, updated_at = $4
		WHERE service_id = $1 AND id <> $2
	`
	res, err := r.db.ExecContext(ctx, query, serviceID, acceptedID, string(valueobject.ProposalStatusRejected), at)
	if err != nil {
		return 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось отклонить остальные предложения")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить число отклонённых предложений")
	}
	return n, nil
}

// CancelPending закрывает все ожидающие предложения отменённой услуги.
func (r *ProposalRepositoryAdapter) CancelPending(ctx context.Context, serviceID uuid.UUID, at time.Time) (int64, error) {
	query := `
		UPDATE proposals SET status = $2, responded_at = $3, updated_at = $3
		WHERE service_id = $1 AND status = $4
	`
	res, err := r.db.ExecContext(ctx, query, serviceID, string(valueobject.ProposalStatusCanceled), at,
		string(valueobject.ProposalStatusPending))
	if err != nil {
		return 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось закрыть предложения услуги")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить число закрытых предложений")
	}
	return n, nil
}

type proposalRow struct {
	ID                uuid.UUID       `db:"id"`
	ServiceID         uuid.UUID       `db:"service_id"`
	ProviderID        uuid.UUID       `db:"provider_id"`
	Value             decimal.Decimal `db:"value"`
	EstimatedDays     int             `db:"estimated_days"`
	Description       string          `db:"description"`
	PaymentForm       string          `db:"payment_form"`
	Status            string          `db:"status"`
	SpecialConditions *string         `db:"special_conditions"`
	Warranty          *string         `db:"warranty"`
	Notes             *string         `db:"notes"`
	RejectionReason   *string         `db:"rejection_reason"`
	SubmittedAt       time.Time       `db:"submitted_at"`
	RespondedAt       *time.Time      `db:"responded_at"`
	UpdatedAt         time.Time       `db:"updated_at"`
}

func (row *proposalRow) toEntity() *entity.Proposal {
	return &entity.Proposal{
		ID:                row.ID,
		ServiceID:         row.ServiceID,
		ProviderID:        row.ProviderID,
		Value:             row.Value,
		EstimatedDays:     row.EstimatedDays,
		Description:       row.Description,
		PaymentForm:       valueobject.PaymentForm(row.PaymentForm),
		Status:            valueobject.ProposalStatus(row.Status),
		SpecialConditions: row.SpecialConditions,
		Warranty:          row.Warranty,
		Notes:             row.Notes,
		RejectionReason:   row.RejectionReason,
		SubmittedAt:       row.SubmittedAt,
		RespondedAt:       row.RespondedAt,
		UpdatedAt:         row.UpdatedAt,
	}
}

func toProposalEntities(rows []proposalRow) []*entity.Proposal {
	result := make([]*entity.Proposal, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result
}
