package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Client профиль заказчика, связанный с пользователем один к одному.
type Client struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Name      string
	Phone     *string
	CreatedAt time.Time
}

// Provider профиль исполнителя.
type Provider struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	Name          string
	Description   *string
	Experience    *string
	CategoryIDs   []uuid.UUID
	RatingAverage decimal.Decimal
	RatingCount   int
	IsVerified    bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func NewClient(userID uuid.UUID, name string) *Client {
	return &Client{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
}

func NewProvider(userID uuid.UUID, name string) *Provider {
	now := time.Now().UTC()
	return &Provider{
		ID:            uuid.New(),
		UserID:        userID,
		Name:          name,
		CategoryIDs:   []uuid.UUID{},
		RatingAverage: decimal.Zero,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// ServesCategory проверяет, работает ли исполнитель в категории.
func (p *Provider) ServesCategory(categoryID uuid.UUID) bool {
	for _, id := range p.CategoryIDs {
		if id == categoryID {
			return true
		}
	}
	return false
}
