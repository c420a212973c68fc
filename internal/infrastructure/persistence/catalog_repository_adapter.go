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

const categoryColumns = `id, name, description, icon, status, created_at, updated_at`

type CategoryRepositoryAdapter struct {
	db sqlx.ExtContext
}

func NewCategoryRepositoryAdapter(db sqlx.ExtContext) *CategoryRepositoryAdapter {
	return &CategoryRepositoryAdapter{db: db}
}

func (r *CategoryRepositoryAdapter) Create(ctx context.Context, c *entity.Category) error {
	query := `INSERT INTO categories (` + categoryColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.ExecContext(ctx, query, c.ID, c.Name, c.Description, c.Icon, string(c.Status), c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return writeError(err, "не удалось создать категорию", "категория с таким названием уже существует")
	}
	return nil
}

func (r *CategoryRepositoryAdapter) Update(ctx context.Context, c *entity.Category) error {
	query := `UPDATE categories SET name = $2, description = $3, icon = $4, status = $5, updated_at = $6 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, c.ID, c.Name, c.Description, c.Icon, string(c.Status), c.UpdatedAt)
	if err != nil {
		return writeError(err, "не удалось обновить категорию", "категория с таким названием уже существует")
	}
	return expectAffected(res, apperror.ErrCategoryNotFound)
}

// Delete удаляет категорию, если на неё не ссылаются услуги.
func (r *CategoryRepositoryAdapter) Delete(ctx context.Context, id uuid.UUID) error {
	var inUse bool
	if err := sqlx.GetContext(ctx, r.db, &inUse, `SELECT EXISTS (SELECT 1 FROM services WHERE category_id = $1)`, id); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось проверить использование категории")
	}
	if inUse {
		return apperror.New(apperror.ErrCodeConflict, "категория используется услугами, деактивируйте её")
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось удалить категорию")
	}
	return expectAffected(res, apperror.ErrCategoryNotFound)
}

func (r *CategoryRepositoryAdapter) FindByID(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	var row categoryRow
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`
	if err := sqlx.GetContext(ctx, r.db, &row, query, id); err != nil {
		return nil, readError(err, apperror.ErrCategoryNotFound, "не удалось получить категорию")
	}
	return row.toEntity(), nil
}

func (r *CategoryRepositoryAdapter) List(ctx context.Context, onlyActive bool) ([]*entity.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories`
	args := []interface{}{}
	if onlyActive {
		query += ` WHERE status = $1`
		args = append(args, string(valueobject.CategoryStatusActive))
	}
	query += ` ORDER BY name`

	var rows []categoryRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить категории")
	}
	categories := make([]*entity.Category, len(rows))
	for i := range rows {
		categories[i] = rows[i].toEntity()
	}
	return categories, nil
}

type categoryRow struct {
	ID          uuid.UUID `db:"id"`
	Name        string    `db:"name"`
	Description *string   `db:"description"`
	Icon        *string   `db:"icon"`
	Status      string    `db:"status"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (row *categoryRow) toEntity() *entity.Category {
	return &entity.Category{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		Icon:        row.Icon,
		Status:      valueobject.CategoryStatus(row.Status),
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}
