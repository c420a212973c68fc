package common

import (
	"context"

	"github.com/google/uuid"

	"github.com/workmatch/marketplace-backend/internal/domain/entity"
	"github.com/workmatch/marketplace-backend/internal/domain/repository"
	"github.com/workmatch/marketplace-backend/internal/pkg/apperror"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// Notifier отправляет уведомление после фиксации транзакции. Ошибки не возвращаются.
type Notifier interface {
	Notify(ctx context.Context, req entity.NotificationRequest)
}

// ClientOf находит профиль заказчика пользователя; без профиля действие запрещено.
func ClientOf(ctx context.Context, clients repository.ClientRepository, userID uuid.UUID) (*entity.Client, error) {
	client, err := clients.FindByUserID(ctx, userID)
	if apperror.IsNotFound(err) {
		return nil, apperror.New(apperror.ErrCodeForbidden, "действие доступно только заказчику")
	}
	if err != nil {
		return nil, err
	}
	return client, nil
}

// ProviderOf находит профиль исполнителя пользователя; без профиля действие запрещено.
func ProviderOf(ctx context.Context, providers repository.ProviderRepository, userID uuid.UUID) (*entity.Provider, error) {
	provider, err := providers.FindByUserID(ctx, userID)
	if apperror.IsNotFound(err) {
		return nil, apperror.New(apperror.ErrCodeForbidden, "действие доступно только исполнителю")
	}
	if err != nil {
		return nil, err
	}
	return provider, nil
}

// Page параметры постраничной выдачи; Page начинается с 1.
type Page struct {
	Page  int
	Limit int
}

func NewPage(page, limit int) Page {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return Page{Page: page, Limit: limit}
}

func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

// TotalPages ceil(total / limit).
func (p Page) TotalPages(total int) int {
	if total == 0 {
		return 0
	}
	return (total + p.Limit - 1) / p.Limit
}

// PageResult страница элементов с метаданными.
type PageResult[T any] struct {
	Items      []T
	Total      int
	Page       int
	Limit      int
	TotalPages int
}

func NewPageResult[T any](items []T, total int, page Page) PageResult[T] {
	return PageResult[T]{
		Items:      items,
		Total:      total,
		Page:       page.Page,
		Limit:      page.Limit,
		TotalPages: page.TotalPages(total),
	}
}
