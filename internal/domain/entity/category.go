package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/workmatch/marketplace-backend/internal/domain/valueobject"
	"github.com/workmatch/marketplace-backend/internal/pkg/apperror"
)

type Category struct {
	ID          uuid.UUID
	Name        string
	Description *string
	Icon        *string
	Status      valueobject.CategoryStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func NewCategory(name string, description, icon *string) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.Validation("название категории обязательно",
			apperror.FieldError{Field: "name", Message: "обязательное поле"})
	}
	now := time.Now().UTC()
	return &Category{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		Icon:        icon,
		Status:      valueobject.CategoryStatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (c *Category) IsActive() bool {
	return c.Status == valueobject.CategoryStatusActive
}
