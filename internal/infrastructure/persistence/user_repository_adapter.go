package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/workmatch/marketplace-backend/internal/domain/entity"
	"github.com/workmatch/marketplace-backend/internal/domain/repository"
	"github.com/workmatch/marketplace-backend/internal/domain/valueobject"
	"github.com/workmatch/marketplace-backend/internal/pkg/apperror"
)

const userColumns = `id, email, name, phone, password_hash, role, is_blocked, block_reason, last_login_at, created_at, updated_at`

// UserRepositoryAdapter отвечает за таблицы users и sessions.
type UserRepositoryAdapter struct {
	db sqlx.ExtContext
}

func NewUserRepositoryAdapter(db sqlx.ExtContext) *UserRepositoryAdapter {
	return &UserRepositoryAdapter{db: db}
}

func (r *UserRepositoryAdapter) Create(ctx context.Context, u *entity.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.ExecContext(ctx, query,
		u.ID, u.Email, u.Name, u.Phone, u.PasswordHash, string(u.Role), u.IsBlocked, u.BlockReason,
		u.LastLoginAt, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		return writeError(err, "не удалось создать пользователя", "пользователь с таким email уже существует")
	}
	return nil
}

func (r *UserRepositoryAdapter) Update(ctx context.Context, u *entity.User) error {
	query := `
		UPDATE users SET name = $2, phone = $3, password_hash = $4, is_blocked = $5, block_reason = $6, updated_at = $7
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, u.ID, u.Name, u.Phone, u.PasswordHash, u.IsBlocked, u.BlockReason, u.UpdatedAt)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось обновить пользователя")
	}
	return expectAffected(res, apperror.ErrUserNotFound)
}

func (r *UserRepositoryAdapter) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var row userRow
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	if err := sqlx.GetContext(ctx, r.db, &row, query, id); err != nil {
		return nil, readError(err, apperror.ErrUserNotFound, "не удалось получить пользователя")
	}
	return row.toEntity(), nil
}

func (r *UserRepositoryAdapter) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var row userRow
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	if err := sqlx.GetContext(ctx, r.db, &row, query, email); err != nil {
		return nil, readError(err, apperror.ErrUserNotFound, "не удалось получить пользователя")
	}
	return row.toEntity(), nil
}

func (r *UserRepositoryAdapter) ListIDsByRole(ctx context.Context, role valueobject.Role) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	query := `SELECT id FROM users WHERE role = $1 AND is_blocked = FALSE ORDER BY created_at`
	if err := sqlx.SelectContext(ctx, r.db, &ids, query, string(role)); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить пользователей по роли")
	}
	return ids, nil
}

func (r *UserRepositoryAdapter) List(ctx context.Context, filter repository.UserFilter) ([]*entity.User, int, error) {
	baseQuery := `FROM users WHERE 1=1`
	args := []interface{}{}
	argNum := 1
	if filter.Role != nil {
		baseQuery += fmt.Sprintf(" AND role = $%d", argNum)
		args = append(args, string(*filter.Role))
		argNum++
	}
	if filter.Blocked != nil {
		baseQuery += fmt.Sprintf(" AND is_blocked = $%d", argNum)
		args = append(args, *filter.Blocked)
		argNum++
	}

	var total int
	if err := sqlx.GetContext(ctx, r.db, &total, "SELECT COUNT(*) "+baseQuery, args...); err != nil {
		return nil, 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось посчитать пользователей")
	}

	limit, offset := pageArgs(filter.Limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, userColumns, baseQuery, argNum, argNum+1)
	args = append(args, limit, offset)

	var rows []userRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить пользователей")
	}
	users := make([]*entity.User, len(rows))
	for i := range rows {
		users[i] = rows[i].toEntity()
	}
	return users, total, nil
}

func (r *UserRepositoryAdapter) TouchLastLogin(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE users SET last_login_at = NOW() WHERE id = $1`, id); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось обновить время входа")
	}
	return nil
}

type userRow struct {
	ID           uuid.UUID  `db:"id"`
	Email        string     `db:"email"`
	Name         string     `db:"name"`
	Phone        *string    `db:"phone"`
	PasswordHash string     `db:"password_hash"`
	Role         string     `db:"role"`
	IsBlocked    bool       `db:"is_blocked"`
	BlockReason  *string    `db:"block_reason"`
	LastLoginAt  *time.Time `db:"last_login_at"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
}

func (row *userRow) toEntity() *entity.User {
	return &entity.User{
		ID:           row.ID,
		Email:        row.Email,
		Name:         row.Name,
		Phone:        row.Phone,
		PasswordHash: row.PasswordHash,
		Role:         valueobject.Role(row.Role),
		IsBlocked:    row.IsBlocked,
		BlockReason:  row.BlockReason,
		LastLoginAt:  row.LastLoginAt,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

type SessionRepositoryAdapter struct {
	db sqlx.ExtContext
}

func NewSessionRepositoryAdapter(db sqlx.ExtContext) *SessionRepositoryAdapter {
	return &SessionRepositoryAdapter{db: db}
}

func (r *SessionRepositoryAdapter) Create(ctx context.Context, s *entity.Session) error {
	query := `
		INSERT INTO sessions (id, user_id, refresh_token, user_agent, ip_address, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query, s.ID, s.UserID, s.RefreshToken, s.UserAgent, s.IPAddress, s.ExpiresAt, s.CreatedAt)
	if err != nil {
		return writeError(err, "не удалось сохранить сессию", "сессия уже существует")
	}
	return nil
}

// DeleteByToken удаляет сессию; отсутствие сессии означает недействительный токен.
func (r *SessionRepositoryAdapter) DeleteByToken(ctx context.Context, refreshToken string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE refresh_token = $1 AND expires_at > NOW()`, refreshToken)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось удалить сессию")
	}
	return expectAffected(res, apperror.ErrUnauthorized)
}

func (r *SessionRepositoryAdapter) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось удалить сессии пользователя")
	}
	return nil
}
