package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/workmatch/marketplace-backend/internal/domain/entity"
	"github.com/workmatch/marketplace-backend/internal/domain/valueobject"
	"github.com/workmatch/marketplace-backend/internal/pkg/apperror"
)

const verificationColumns = `id, user_id, identity_doc_id, address_doc_id, status, reviewed_by, rejection_reason, submitted_at, reviewed_at`

// VerificationRepositoryAdapter хранит заявки на верификацию и загруженные документы.
type VerificationRepositoryAdapter struct {
	db sqlx.ExtContext
}

func NewVerificationRepositoryAdapter(db sqlx.ExtContext) *VerificationRepositoryAdapter {
	return &VerificationRepositoryAdapter{db: db}
}

func (r *VerificationRepositoryAdapter) CreateDocument(ctx context.Context, d *entity.Document) error {
	query := `
		INSERT INTO documents (id, user_id, kind, path, original_name, mime_type, size_bytes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query, d.ID, d.UserID, d.Kind, d.Path, d.OriginalName, d.MimeType, d.SizeBytes, d.CreatedAt)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось сохранить документ")
	}
	return nil
}

func (r *VerificationRepositoryAdapter) FindDocumentsByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Document, error) {
	var rows []documentRow
	query := `
		SELECT id, user_id, kind, path, original_name, mime_type, size_bytes, created_at
		FROM documents WHERE user_id = $1 ORDER BY created_at DESC
	`
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, userID); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить документы")
	}
	docs := make([]*entity.Document, len(rows))
	for i := range rows {
		row := rows[i]
		docs[i] = &entity.Document{
			ID:           row.ID,
			UserID:       row.UserID,
			Kind:         row.Kind,
			Path:         row.Path,
			OriginalName: row.OriginalName,
			MimeType:     row.MimeType,
			SizeBytes:    row.SizeBytes,
			CreatedAt:    row.CreatedAt,
		}
	}
	return docs, nil
}

func (r *VerificationRepositoryAdapter) Create(ctx context.Context, v *entity.Verification) error {
	query := `INSERT INTO verifications (` + verificationColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.db.ExecContext(ctx, query,
		v.ID, v.UserID, v.IdentityDocID, v.AddressDocID, string(v.Status), v.ReviewedBy,
		v.RejectionReason, v.SubmittedAt, v.ReviewedAt,
	)
	if err != nil {
		return writeError(err, "не удалось создать заявку на верификацию", "заявка на верификацию уже ожидает рассмотрения")
	}
	return nil
}

func (r *VerificationRepositoryAdapter) Update(ctx context.Context, v *entity.Verification) error {
	query := `UPDATE verifications SET status = $2, reviewed_by = $3, rejection_reason = $4, reviewed_at = $5 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, v.ID, string(v.Status), v.ReviewedBy, v.RejectionReason, v.ReviewedAt)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось обновить заявку на верификацию")
	}
	return expectAffected(res, apperror.ErrVerificationNotFound)
}

func (r *VerificationRepositoryAdapter) FindByID(ctx context.Context, id uuid.UUID) (*entity.Verification, error) {
	var row verificationRow
	query := `SELECT ` + verificationColumns + ` FROM verifications WHERE id = $1`
	if err := sqlx.GetContext(ctx, r.db, &row, query, id); err != nil {
		return nil, readError(err, apperror.ErrVerificationNotFound, "не удалось получить заявку на верификацию")
	}
	return row.toEntity(), nil
}

func (r *VerificationRepositoryAdapter) FindLatestByUser(ctx context.Context, userID uuid.UUID) (*entity.Verification, error) {
	var row verificationRow
	query := `SELECT ` + verificationColumns + ` FROM verifications WHERE user_id = $1 ORDER BY submitted_at DESC LIMIT 1`
	if err := sqlx.GetContext(ctx, r.db, &row, query, userID); err != nil {
		return nil, readError(err, apperror.ErrVerificationNotFound, "не удалось получить заявку на верификацию")
	}
	return row.toEntity(), nil
}

func (r *VerificationRepositoryAdapter) HasPending(ctx context.Context, userID uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM verifications WHERE user_id = $1 AND status = $2)`
	if err := sqlx.GetContext(ctx, r.db, &exists, query, userID, string(valueobject.VerificationStatusPending)); err != nil {
		return false, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось проверить заявки на верификацию")
	}
	return exists, nil
}

func (r *VerificationRepositoryAdapter) List(ctx context.Context, status *valueobject.VerificationStatus, limit, offset int) ([]*entity.Verification, int, error) {
	baseQuery := `FROM verifications WHERE 1=1`
	args := []interface{}{}
	argNum := 1
	if status != nil {
		baseQuery += fmt.Sprintf(" AND status = $%d", argNum)
		args = append(args, string(*status))
		argNum++
	}

	var total int
	if err := sqlx.GetContext(ctx, r.db, &total, "SELECT COUNT(*) "+baseQuery, args...); err != nil {
		return nil, 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось посчитать заявки на верификацию")
	}

	limit, offset = pageArgs(limit, offset)
	query := fmt.Sprintf(`SELECT %s %s ORDER BY submitted_at LIMIT $%d OFFSET $%d`, verificationColumns, baseQuery, argNum, argNum+1)
	args = append(args, limit, offset)

	var rows []verificationRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить заявки на верификацию")
	}
	items := make([]*entity.Verification, len(rows))
	for i := range rows {
		items[i] = rows[i].toEntity()
	}
	return items, total, nil
}

type documentRow struct {
	ID           uuid.UUID `db:"id"`
	UserID       uuid.UUID `db:"user_id"`
	Kind         string    `db:"kind"`
	Path         string    `db:"path"`
	OriginalName string    `db:"original_name"`
	MimeType     string    `db:"mime_type"`
	SizeBytes    int64     `db:"size_bytes"`
	CreatedAt    time.Time `db:"created_at"`
}

type verificationRow struct {
	ID              uuid.UUID  `db:"id"`
	UserID          uuid.UUID  `db:"user_id"`
	IdentityDocID   uuid.UUID  `db:"identity_doc_id"`
	AddressDocID    uuid.UUID  `db:"address_doc_id"`
	Status          string     `db:"status"`
	ReviewedBy      *uuid.UUID `db:"reviewed_by"`
	RejectionReason *string    `db:"rejection_reason"`
	SubmittedAt     time.Time  `db:"submitted_at"`
	ReviewedAt      *time.Time `db:"reviewed_at"`
}

func (row *verificationRow) toEntity() *entity.Verification {
	return &entity.Verification{
		ID:              row.ID,
		UserID:          row.UserID,
		IdentityDocID:   row.IdentityDocID,
		AddressDocID:    row.AddressDocID,
		Status:          valueobject.VerificationStatus(row.Status),
		ReviewedBy:      row.ReviewedBy,
		RejectionReason: row.RejectionReason,
		SubmittedAt:     row.SubmittedAt,
		ReviewedAt:      row.ReviewedAt,
	}
}
