package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/workmatch/marketplace-backend/internal/domain/entity"
	"github.com/workmatch/marketplace-backend/internal/pkg/apperror"
)

type ClientRepositoryAdapter struct {
	db sqlx.ExtContext
}

func NewClientRepositoryAdapter(db sqlx.ExtContext) *ClientRepositoryAdapter {
	return &ClientRepositoryAdapter{db: db}
}

func (r *ClientRepositoryAdapter) Create(ctx context.Context, c *entity.Client) error {
	query := `INSERT INTO clients (id, user_id, name, phone, created_at) VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.db.ExecContext(ctx, query, c.ID, c.UserID, c.Name, c.Phone, c.CreatedAt); err != nil {
		return writeError(err, "не удалось создать профиль заказчика", "профиль заказчика уже существует")
	}
	return nil
}

func (r *ClientRepositoryAdapter) FindByID(ctx context.Context, id uuid.UUID) (*entity.Client, error) {
	var row clientRow
	query := `SELECT id, user_id, name, phone, created_at FROM clients WHERE id = $1`
	if err := sqlx.GetContext(ctx, r.db, &row, query, id); err != nil {
		return nil, readError(err, apperror.ErrClientNotFound, "не удалось получить профиль заказчика")
	}
	return row.toEntity(), nil
}

func (r *ClientRepositoryAdapter) FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.Client, error) {
	var row clientRow
	query := `SELECT id, user_id, name, phone, created_at FROM clients WHERE user_id = $1`
	if err := sqlx.GetContext(ctx, r.db, &row, query, userID); err != nil {
		return nil, readError(err, apperror.ErrClientNotFound, "не удалось получить профиль заказчика")
	}
	return row.toEntity(), nil
}

type clientRow struct {
	ID        uuid.UUID `db:"id"`
	UserID    uuid.UUID `db:"user_id"`
	Name      string    `db:"name"`
	Phone     *string   `db:"phone"`
	CreatedAt time.Time `db:"created_at"`
}

func (row *clientRow) toEntity() *entity.Client {
	return &entity.Client{ID: row.ID, UserID: row.UserID, Name: row.Name, Phone: row.Phone, CreatedAt: row.CreatedAt}
}

const providerColumns = `p.id, p.user_id, p.name, p.description, p.experience, p.rating_average, p.rating_count,
	p.is_verified, p.created_at, p.updated_at,
	ARRAY(SELECT pc.category_id::text FROM provider_categories pc WHERE pc.provider_id = p.id) AS category_ids`

// ProviderRepositoryAdapter хранит профиль исполнителя и его категории.
type ProviderRepositoryAdapter struct {
	db sqlx.ExtContext
}

func NewProviderRepositoryAdapter(db sqlx.ExtContext) *ProviderRepositoryAdapter {
	return &ProviderRepositoryAdapter{db: db}
}

func (r *ProviderRepositoryAdapter) Create(ctx context.Context, p *entity.Provider) error {
	query := `
		INSERT INTO providers (id, user_id, name, description, experience, rating_average, rating_count, is_verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.UserID, p.Name, p.Description, p.Experience, p.RatingAverage, p.RatingCount,
		p.IsVerified, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return writeError(err, "не удалось создать профиль исполнителя", "профиль исполнителя уже существует")
	}
	return r.replaceCategories(ctx, p.ID, p.CategoryIDs)
}

// Update меняет описание профиля и заменяет список категорий целиком.
func (r *ProviderRepositoryAdapter) Update(ctx context.Context, p *entity.Provider) error {
	query := `
		UPDATE providers SET name = $2, description = $3, experience = $4, updated_at = $5
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, p.ID, p.Name, p.Description, p.Experience, p.UpdatedAt)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось обновить профиль исполнителя")
	}
	if err := expectAffected(res, apperror.ErrProviderNotFound); err != nil {
		return err
	}
	return r.replaceCategories(ctx, p.ID, p.CategoryIDs)
}

func (r *ProviderRepositoryAdapter) replaceCategories(ctx context.Context, providerID uuid.UUID, categoryIDs []uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM provider_categories WHERE provider_id = $1`, providerID); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось обновить категории исполнителя")
	}
	if len(categoryIDs) == 0 {
		return nil
	}
	ids := make(pq.StringArray, len(categoryIDs))
	for i, id := range categoryIDs {
		ids[i] = id.String()
	}
	query := `
		INSERT INTO provider_categories (provider_id, category_id)
		SELECT $1, UNNEST($2::uuid[])
		ON CONFLICT DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, query, providerID, ids); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось обновить категории исполнителя")
	}
	return nil
}

func (r *ProviderRepositoryAdapter) FindByID(ctx context.Context, id uuid.UUID) (*entity.Provider, error) {
	var row providerRow
	query := `SELECT ` + providerColumns + ` FROM providers p WHERE p.id = $1`
	if err := sqlx.GetContext(ctx, r.db, &row, query, id); err != nil {
		return nil, readError(err, apperror.ErrProviderNotFound, "не удалось получить профиль исполнителя")
	}
	return row.toEntity()
}

func (r *ProviderRepositoryAdapter) FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.Provider, error) {
	var row providerRow
	query := `SELECT ` + providerColumns + ` FROM providers p WHERE p.user_id = $1`
	if err := sqlx.GetContext(ctx, r.db, &row, query, userID); err != nil {
		return nil, readError(err, apperror.ErrProviderNotFound, "не удалось получить профиль исполнителя")
	}
	return row.toEntity()
}

func (r *ProviderRepositoryAdapter) ListUserIDsByCategory(ctx context.Context, categoryID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	query := `
		SELECT p.user_id
		FROM provider_categories pc
		JOIN providers p ON p.id = pc.provider_id
		JOIN users u ON u.id = p.user_id
		WHERE pc.category_id = $1 AND u.is_blocked = FALSE
	`
	if err := sqlx.SelectContext(ctx, r.db, &ids, query, categoryID); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить исполнителей категории")
	}
	return ids, nil
}

func (r *ProviderRepositoryAdapter) UpdateRating(ctx context.Context, providerID uuid.UUID, average decimal.Decimal, count int) error {
	query := `UPDATE providers SET rating_average = $2, rating_count = $3, updated_at = NOW() WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, providerID, average.Round(2), count)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось обновить рейтинг")
	}
	return expectAffected(res, apperror.ErrProviderNotFound)
}

func (r *ProviderRepositoryAdapter) SetVerifiedByUserID(ctx context.Context, userID uuid.UUID, verified bool) error {
	query := `UPDATE providers SET is_verified = $2, updated_at = NOW() WHERE user_id = $1`
	if _, err := r.db.ExecContext(ctx, query, userID, verified); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось обновить признак верификации")
	}
	return nil
}

type providerRow struct {
	ID            uuid.UUID       `db:"id"`
	UserID        uuid.UUID       `db:"user_id"`
	Name          string          `db:"name"`
	Description   *string         `db:"description"`
	Experience    *string         `db:"experience"`
	RatingAverage decimal.Decimal `db:"rating_average"`
	RatingCount   int             `db:"rating_count"`
	IsVerified    bool            `db:"is_verified"`
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at"`
	CategoryIDs   pq.StringArray  `db:"category_ids"`
}

func (row *providerRow) toEntity() (*entity.Provider, error) {
	categoryIDs := make([]uuid.UUID, 0, len(row.CategoryIDs))
	for _, raw := range row.CategoryIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "некорректный идентификатор категории")
		}
		categoryIDs = append(categoryIDs, id)
	}
	return &entity.Provider{
		ID:            row.ID,
		UserID:        row.UserID,
		Name:          row.Name,
		Description:   row.Description,
		Experience:    row.Experience,
		CategoryIDs:   categoryIDs,
		RatingAverage: row.RatingAverage,
		RatingCount:   row.RatingCount,
		IsVerified:    row.IsVerified,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}, nil
}
