package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/workmatch/marketplace-backend/internal/domain/entity"
	"github.com/workmatch/marketplace-backend/internal/pkg/apperror"
)

const reviewColumns = `id, service_id, reviewer_id, reviewee_id, rating, comment, created_at, updated_at`

type ReviewRepositoryAdapter struct {
	db sqlx.ExtContext
}

func NewReviewRepositoryAdapter(db sqlx.ExtContext) *ReviewRepositoryAdapter {
	return &ReviewRepositoryAdapter{db: db}
}

func (r *ReviewRepositoryAdapter) Create(ctx context.Context, rv *entity.Review) error {
	query := `INSERT INTO reviews (` + reviewColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.ExecContext(ctx, query,
		rv.ID, rv.ServiceID, rv.ReviewerID, rv.RevieweeID, rv.Rating, rv.Comment, rv.CreatedAt, rv.UpdatedAt,
	)
	if err != nil {
		return writeError(err, "не удалось сохранить отзыв", "вы уже оставили отзыв по этой услуге")
	}
	return nil
}

func (r *ReviewRepositoryAdapter) Update(ctx context.Context, rv *entity.Review) error {
	query := `UPDATE reviews SET rating = $2, comment = $3, updated_at = $4 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, rv.ID, rv.Rating, rv.Comment, rv.UpdatedAt)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось обновить отзыв")
	}
	return expectAffected(res, apperror.ErrReviewNotFound)
}

func (r *ReviewRepositoryAdapter) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось удалить отзыв")
	}
	return expectAffected(res, apperror.ErrReviewNotFound)
}

func (r *ReviewRepositoryAdapter) FindByID(ctx context.Context, id uuid.UUID) (*entity.Review, error) {
	var row reviewRow
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1`
	if err := sqlx.GetContext(ctx, r.db, &row, query, id); err != nil {
		return nil, readError(err, apperror.ErrReviewNotFound, "не удалось получить отзыв")
	}
	return row.toEntity(), nil
}

func (r *ReviewRepositoryAdapter) ExistsForReviewer(ctx context.Context, serviceID, reviewerID uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM reviews WHERE service_id = $1 AND reviewer_id = $2)`
	if err := sqlx.GetContext(ctx, r.db, &exists, query, serviceID, reviewerID); err != nil {
		return false, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось проверить отзыв")
	}
	return exists, nil
}

func (r *ReviewRepositoryAdapter) ListByService(ctx context.Context, serviceID uuid.UUID) ([]*entity.Review, error) {
	return r.list(ctx, `service_id`, serviceID)
}

func (r *ReviewRepositoryAdapter) ListByReviewee(ctx context.Context, userID uuid.UUID) ([]*entity.Review, error) {
	return r.list(ctx, `reviewee_id`, userID)
}

func (r *ReviewRepositoryAdapter) ListByReviewer(ctx context.Context, userID uuid.UUID) ([]*entity.Review, error) {
	return r.list(ctx, `reviewer_id`, userID)
}

// list column подставляется только из констант выше.
func (r *ReviewRepositoryAdapter) list(ctx context.Context, column string, id uuid.UUID) ([]*entity.Review, error) {
	var rows []reviewRow
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE ` + column + ` = $1 ORDER BY created_at DESC`
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, id); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить отзывы")
	}
	reviews := make([]*entity.Review, len(rows))
	for i := range rows {
		reviews[i] = rows[i].toEntity()
	}
	return reviews, nil
}

func (r *ReviewRepositoryAdapter) RatingOf(ctx context.Context, userID uuid.UUID) (decimal.Decimal, int, error) {
	var result struct {
		Average decimal.Decimal `db:"average"`
		Count   int             `db:"count"`
	}
	query := `SELECT COALESCE(AVG(rating), 0) AS average, COUNT(*) AS count FROM reviews WHERE reviewee_id = $1`
	if err := sqlx.GetContext(ctx, r.db, &result, query, userID); err != nil {
		return decimal.Zero, 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось посчитать рейтинг")
	}
	return result.Average.Round(2), result.Count, nil
}

type reviewRow struct {
	ID         uuid.UUID `db:"id"`
	ServiceID  uuid.UUID `db:"service_id"`
	ReviewerID uuid.UUID `db:"reviewer_id"`
	RevieweeID uuid.UUID `db:"reviewee_id"`
	Rating     int       `db:"rating"`
	Comment    *string   `db:"comment"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (row *reviewRow) toEntity() *entity.Review {
	return &entity.Review{
		ID:         row.ID,
		ServiceID:  row.ServiceID,
		ReviewerID: row.ReviewerID,
		RevieweeID: row.RevieweeID,
		Rating:     row.Rating,
		Comment:    row.Comment,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
}
