package proposal

import (
	"context"

	"github.com/google/uuid"

	"github.com/workmatch/marketplace-backend/internal/domain/entity"
	"github.com/workmatch/marketplace-backend/internal/domain/repository"
	"github.com/workmatch/marketplace-backend/internal/domain/valueobject"
	"github.com/workmatch/marketplace-backend/internal/pkg/apperror"
	"github.com/workmatch/marketplace-backend/internal/usecase/common"
)

// ListServiceProposalsUseCase список предложений услуги для её владельца.
type ListServiceProposalsUseCase struct {
	repos repository.Repositories
}

func NewListServiceProposalsUseCase(repos repository.Repositories) *ListServiceProposalsUseCase {
	return &ListServiceProposalsUseCase{repos: repos}
}

func (uc *ListServiceProposalsUseCase) Execute(ctx context.Context, serviceID, userID uuid.UUID) ([]*entity.Proposal, error) {
	client, err := common.ClientOf(ctx, uc.repos.Clients, userID)
	if err != nil {
		return nil, err
	}
	service, err := uc.repos.Services.FindByID(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	if !service.IsOwnedBy(client.ID) {
		return nil, apperror.ErrForbidden
	}
	return uc.repos.Proposals.FindByServiceID(ctx, serviceID)
}

type GetProposalUseCase struct {
	repos repository.Repositories
}

func NewGetProposalUseCase(repos repository.Repositories) *GetProposalUseCase {
	return &GetProposalUseCase{repos: repos}
}

// Execute доступен владельцу услуги, автору предложения и администратору.
func (uc *GetProposalUseCase) Execute(ctx context.Context, proposalID, userID uuid.UUID, role valueobject.Role) (*entity.Proposal, error) {
	proposal, err := uc.repos.Proposals.FindByID(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	switch role {
	case valueobject.RoleAdmin:
		return proposal, nil
	case valueobject.RoleProvider:
		provider, err := common.ProviderOf(ctx, uc.repos.Providers, userID)
		if err != nil {
			return nil, err
		}
		if proposal.IsOwnedBy(provider.ID) {
			return proposal, nil
		}
	case valueobject.RoleClient:
		client, err := common.ClientOf(ctx, uc.repos.Clients, userID)
		if err != nil {
			return nil, err
		}
		service, err := uc.repos.Services.FindByID(ctx, proposal.ServiceID)
		if err != nil {
			return nil, err
		}
		if service.IsOwnedBy(client.ID) {
			return proposal, nil
		}
	}
	return nil, apperror.ErrForbidden
}

type ListMyProposalsUseCase struct {
	repos repository.Repositories
}

func NewListMyProposalsUseCase(repos repository.Repositories) *ListMyProposalsUseCase {
	return &ListMyProposalsUseCase{repos: repos}
}

func (uc *ListMyProposalsUseCase) Execute(ctx context.Context, userID uuid.UUID) ([]*entity.Proposal, error) {
	provider, err := common.ProviderOf(ctx, uc.repos.Providers, userID)
	if err != nil {
		return nil, err
	}
	return uc.repos.Proposals.FindByProviderID(ctx, provider.ID)
}
