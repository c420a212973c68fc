package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/workmatch/marketplace-backend/internal/domain/valueobject"
	"github.com/workmatch/marketplace-backend/internal/pkg/apperror"
)

// User учётная запись платформы.
type User struct {
	ID           uuid.UUID
	Email        string
	Name         string
	Phone        *string
	PasswordHash string
	Role         valueobject.Role
	IsBlocked    bool
	BlockReason  *string
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func NewUser(email, name, passwordHash string, role valueobject.Role) *User {
	now := time.Now().UTC()
	return &User{
		ID:           uuid.New(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Name:         strings.TrimSpace(name),
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (u *User) Block(reason string) error {
	if u.Role == valueobject.RoleAdmin {
		return apperror.New(apperror.ErrCodeForbidden, "нельзя заблокировать администратора")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return apperror.Validation("причина блокировки обязательна",
			apperror.FieldError{Field: "reason", Message: "обязательное поле"})
	}
	u.IsBlocked = true
	u.BlockReason = &reason
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (u *User) Unblock() {
	u.IsBlocked = false
	u.BlockReason = nil
	u.UpdatedAt = time.Now().UTC()
}

// Session сохранённый refresh токен.
type Session struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	RefreshToken string
	UserAgent    *string
	IPAddress    *string
	ExpiresAt    time.Time
	CreatedAt    time.Time
}
