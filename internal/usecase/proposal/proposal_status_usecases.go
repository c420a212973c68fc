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

// AcceptProposalUseCase принимает предложение, назначает исполнителя
// и одним UPDATE отклоняет все остальные предложения услуги.
type AcceptProposalUseCase struct {
	uow      repository.UnitOfWork
	notifier common.Notifier
}

func NewAcceptProposalUseCase(uow repository.UnitOfWork, notifier common.Notifier) *AcceptProposalUseCase {
	return &AcceptProposalUseCase{uow: uow, notifier: notifier}
}

func (uc *AcceptProposalUseCase) Execute(ctx context.Context, proposalID, userID uuid.UUID) (*entity.Proposal, error) {
	var (
		accepted      *entity.Proposal
		service       *entity.Service
		acceptedUser  uuid.UUID
		rejectedUsers []uuid.UUID
	)
	err := uc.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		client, err := common.ClientOf(ctx, repos.Clients, userID)
		if err != nil {
			return err
		}
		accepted, service, err = lockProposal(ctx, repos, proposalID)
		if err != nil {
			return err
		}
		if !service.IsOwnedBy(client.ID) {
			return apperror.ErrForbidden
		}

		if err := accepted.Accept(); err != nil {
			return err
		}

		siblings, err := repos.Proposals.FindByServiceID(ctx, service.ID)
		if err != nil {
			return err
		}

		if _, err := repos.Proposals.RejectSiblings(ctx, service.ID, accepted.ID, *accepted.RespondedAt); err != nil {
			return err
		}
		if err := repos.Proposals.Update(ctx, accepted); err != nil {
			return err
		}

		if err := service.Confirm(accepted.ProviderID); err != nil {
			return err
		}
		if err := repos.Services.Update(ctx, service); err != nil {
			return err
		}

		provider, err := repos.Providers.FindByID(ctx, accepted.ProviderID)
		if err != nil {
			return err
		}
		acceptedUser = provider.UserID

		for _, sibling := range siblings {
			if sibling.ID == accepted.ID || !sibling.IsPending() {
				continue
			}
			other, err := repos.Providers.FindByID(ctx, sibling.ProviderID)
			if err != nil {
				return err
			}
			rejectedUsers = append(rejectedUsers, other.UserID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	serviceID, acceptedID := service.ID, accepted.ID
	uc.notifier.Notify(ctx, entity.NotificationRequest{
		Recipients: []uuid.UUID{acceptedUser},
		Kind:       valueobject.NotificationProposalAccepted,
		Title:      "Предложение принято",
		Message:    "Заказчик принял ваше предложение по услуге «" + service.Title + "»",
		ServiceID:  &serviceID,
		ProposalID: &acceptedID,
	})
	if len(rejectedUsers) > 0 {
		uc.notifier.Notify(ctx, entity.NotificationRequest{
			Recipients: rejectedUsers,
			Kind:       valueobject.NotificationProposalRejected,
			Title:      "Предложение отклонено",
			Message:    "Заказчик выбрал другого исполнителя для услуги «" + service.Title + "»",
			ServiceID:  &serviceID,
		})
	}
	return accepted, nil
}

type RejectProposalUseCase struct {
	uow      repository.UnitOfWork
	notifier common.Notifier
}

func NewRejectProposalUseCase(uow repository.UnitOfWork, notifier common.Notifier) *RejectProposalUseCase {
	return &RejectProposalUseCase{uow: uow, notifier: notifier}
}

func (uc *RejectProposalUseCase) Execute(ctx context.Context, proposalID, userID uuid.UUID, reason string) (*entity.Proposal, error) {
	var (
		rejected     *entity.Proposal
		service      *entity.Service
		providerUser uuid.UUID
	)
	err := uc.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		client, err := common.ClientOf(ctx, repos.Clients, userID)
		if err != nil {
			return err
		}
		rejected, service, err = lockProposal(ctx, repos, proposalID)
		if err != nil {
			return err
		}
		if !service.IsOwnedBy(client.ID) {
			return apperror.ErrForbidden
		}

		if err := rejected.Reject(reason); err != nil {
			return err
		}
		if err := repos.Proposals.Update(ctx, rejected); err != nil {
			return err
		}
		if err := reopenIfIdle(ctx, repos, service); err != nil {
			return err
		}

		provider, err := repos.Providers.FindByID(ctx, rejected.ProviderID)
		if err != nil {
			return err
		}
		providerUser = provider.UserID
		return nil
	})
	if err != nil {
		return nil, err
	}

	message := "Заказчик отклонил ваше предложение по услуге «" + service.Title + "»"
	if rejected.RejectionReason != nil {
		message += ": " + *rejected.RejectionReason
	}
	serviceID, id := service.ID, rejected.ID
	uc.notifier.Notify(ctx, entity.NotificationRequest{
		Recipients: []uuid.UUID{providerUser},
		Kind:       valueobject.NotificationProposalRejected,
		Title:      "Предложение отклонено",
		Message:    message,
		ServiceID:  &serviceID,
		ProposalID: &id,
	})
	return rejected, nil
}

// CancelProposalUseCase отзыв ожидающего предложения исполнителем.
type CancelProposalUseCase struct {
	uow      repository.UnitOfWork
	notifier common.Notifier
}

func NewCancelProposalUseCase(uow repository.UnitOfWork, notifier common.Notifier) *CancelProposalUseCase {
	return &CancelProposalUseCase{uow: uow, notifier: notifier}
}

func (uc *CancelProposalUseCase) Execute(ctx context.Context, proposalID, userID uuid.UUID) (*entity.Proposal, error) {
	var (
		canceled   *entity.Proposal
		service    *entity.Service
		clientUser uuid.UUID
	)
	err := uc.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		provider, err := common.ProviderOf(ctx, repos.Providers, userID)
		if err != nil {
			return err
		}
		canceled, service, err = lockProposal(ctx, repos, proposalID)
		if err != nil {
			return err
		}
		if !canceled.IsOwnedBy(provider.ID) {
			return apperror.ErrForbidden
		}

		if err := canceled.Withdraw(); err != nil {
			return err
		}
		if err := repos.Proposals.Update(ctx, canceled); err != nil {
			return err
		}
		if err := reopenIfIdle(ctx, repos, service); err != nil {
			return err
		}

		client, err := repos.Clients.FindByID(ctx, service.ClientID)
		if err != nil {
			return err
		}
		clientUser = client.UserID
		return nil
	})
	if err != nil {
		return nil, err
	}

	serviceID, id := service.ID, canceled.ID
	uc.notifier.Notify(ctx, entity.NotificationRequest{
		Recipients: []uuid.UUID{clientUser},
		Kind:       valueobject.NotificationProposalCanceled,
		Title:      "Предложение отозвано",
		Message:    "Исполнитель отозвал предложение по услуге «" + service.Title + "»",
		ServiceID:  &serviceID,
		ProposalID: &id,
	})
	return canceled, nil
}

// lockProposal блокирует строку услуги и перечитывает предложение уже под блокировкой.
// Статус, прочитанный до блокировки, мог устареть.
func lockProposal(ctx context.Context, repos repository.Repositories, proposalID uuid.UUID) (*entity.Proposal, *entity.Service, error) {
	stale, err := repos.Proposals.FindByID(ctx, proposalID)
	if err != nil {
		return nil, nil, err
	}
	service, err := repos.Services.FindByIDForUpdate(ctx, stale.ServiceID)
	if err != nil {
		return nil, nil, err
	}
	proposal, err := repos.Proposals.FindByID(ctx, proposalID)
	if err != nil {
		return nil, nil, err
	}
	return proposal, service, nil
}

// reopenIfIdle возвращает услугу в open, если ожидающих предложений не осталось.
func reopenIfIdle(ctx context.Context, repos repository.Repositories, service *entity.Service) error {
	if service.Status != valueobject.ServiceStatusNegotiating {
		return nil
	}
	pending, err := repos.Proposals.CountByStatus(ctx, service.ID, valueobject.ProposalStatusPending)
	if err != nil {
		return err
	}
	if pending > 0 {
		return nil
	}
	if err := service.Reopen(); err != nil {
		return err
	}
	return repos.Services.Update(ctx, service)
}
