package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/workmatch/marketplace-backend/internal/domain/entity"
	"github.com/workmatch/marketplace-backend/internal/domain/valueobject"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	Update(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	// ListIDsByRole возвращает активных (незаблокированных) пользователей с ролью.
	ListIDsByRole(ctx context.Context, role valueobject.Role) ([]uuid.UUID, error)
	List(ctx context.Context, filter UserFilter) ([]*entity.User, int, error)
	TouchLastLogin(ctx context.Context, id uuid.UUID) error
}

type UserFilter struct {
	Role    *valueobject.Role
	Blocked *bool
	Limit   int
	Offset  int
}

type SessionRepository interface {
	Create(ctx context.Context, session *entity.Session) error
	DeleteByToken(ctx context.Context, refreshToken string) error
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
}

type ClientRepository interface {
	Create(ctx context.Context, client *entity.Client) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Client, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.Client, error)
}

type ProviderRepository interface {
	Create(ctx context.Context, provider *entity.Provider) error
	Update(ctx context.Context, provider *entity.Provider) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Provider, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.Provider, error)
	// ListUserIDsByCategory пользователи-исполнители, работающие в категории.
	ListUserIDsByCategory(ctx context.Context, categoryID uuid.UUID) ([]uuid.UUID, error)
	UpdateRating(ctx context.Context, providerID uuid.UUID, average decimal.Decimal, count int) error
	SetVerifiedByUserID(ctx context.Context, userID uuid.UUID, verified bool) error
}
