package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/workmatch/marketplace-backend/internal/domain/entity"
	"github.com/workmatch/marketplace-backend/internal/domain/valueobject"
)

type ProposalRepository interface {
	Create(ctx context.Context, proposal *entity.Proposal) error
	// Update применяет ответ к ожидающему предложению. Если строка уже не в pending,
	// возвращает apperror.ErrProposalNotPending.
	Update(ctx context.Context, proposal *entity.Proposal) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Proposal, error)
	// FindByServiceID возвращает предложения от новых к старым.
	FindByServiceID(ctx context.Context, serviceID uuid.UUID) ([]*entity.Proposal, error)
	FindByProviderID(ctx context.Context, providerID uuid.UUID) ([]*entity.Proposal, error)
	ExistsForProvider(ctx context.Context, serviceID, providerID uuid.UUID) (bool, error)
	CountByStatus(ctx context.Context, serviceID uuid.UUID, status valueobject.ProposalStatus) (int, error)
	FindAccepted(ctx context.Context, serviceID uuid.UUID) ([]*entity.Proposal, error)
	// RejectSiblings одним UPDATE переводит все прочие предложения услуги в rejected.
	RejectSiblings(ctx context.Context, serviceID, acceptedID uuid.UUID, at time.Time) (int64, error)
	// CancelPending переводит все ожидающие предложения услуги в canceled.
	CancelPending(ctx context.Context, serviceID uuid.UUID, at time.Time) (int64, error)
}
