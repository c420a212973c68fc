package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/workmatch/marketplace-backend/internal/domain/entity"
	"github.com/workmatch/marketplace-backend/internal/domain/repository"
	"github.com/workmatch/marketplace-backend/internal/domain/valueobject"
	"github.com/workmatch/marketplace-backend/internal/pkg/apperror"
	"github.com/workmatch/marketplace-backend/internal/usecase/common"
)

type CancelServiceUseCase struct {
	uow      repository.UnitOfWork
	notifier common.Notifier
}

func NewCancelServiceUseCase(uow repository.UnitOfWork, notifier common.Notifier) *CancelServiceUseCase {
	return &CancelServiceUseCase{uow: uow, notifier: notifier}
}

// Execute отменяет услугу по запросу заказчика-владельца или назначенного исполнителя.
func (uc *CancelServiceUseCase) Execute(ctx context.Context, serviceID, userID uuid.UUID) (*entity.Service, error) {
	var (
		canceled     *entity.Service
		counterparts []uuid.UUID
	)
	err := uc.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		service, err := repos.Services.FindByIDForUpdate(ctx, serviceID)
		if err != nil {
			return err
		}

		isOwner, isProvider, err := actorRoles(ctx, repos, service, userID)
		if err != nil {
			return err
		}
		if !isOwner && !isProvider {
			return apperror.ErrForbidden
		}

		if err := service.Cancel(); err != nil {
			return err
		}
		if err := repos.Services.Update(ctx, service); err != nil {
			return err
		}

		counterparts, err = cancelRecipients(ctx, repos, service, isOwner)
		if err != nil {
			return err
		}
		if _, err := repos.Proposals.CancelPending(ctx, service.ID, time.Now().UTC()); err != nil {
			return err
		}
		canceled = service
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(counterparts) > 0 {
		id := canceled.ID
		uc.notifier.Notify(ctx, entity.NotificationRequest{
			Recipients: counterparts,
			Kind:       valueobject.NotificationServiceCanceled,
			Title:      "Услуга отменена",
			Message:    canceled.Title,
			ServiceID:  &id,
		})
	}
	return canceled, nil
}

func actorRoles(ctx context.Context, repos repository.Repositories, service *entity.Service, userID uuid.UUID) (bool, bool, error) {
	client, err := repos.Clients.FindByUserID(ctx, userID)
	if err != nil && !apperror.IsNotFound(err) {
		return false, false, err
	}
	if client != nil && service.IsOwnedBy(client.ID) {
		return true, false, nil
	}

	provider, err := repos.Providers.FindByUserID(ctx, userID)
	if err != nil && !apperror.IsNotFound(err) {
		return false, false, err
	}
	return false, provider != nil && service.IsAssignedTo(provider.ID), nil
}

// cancelRecipients возвращает пользователей другой стороны.
// Если отменяет заказчик, уведомляются исполнители с ожидающими предложениями.
func cancelRecipients(ctx context.Context, repos repository.Repositories, service *entity.Service, byOwner bool) ([]uuid.UUID, error) {
	if !byOwner {
		client, err := repos.Clients.FindByID(ctx, service.ClientID)
		if err != nil {
			return nil, err
		}
		return []uuid.UUID{client.UserID}, nil
	}

	proposals, err := repos.Proposals.FindByServiceID(ctx, service.ID)
	if err != nil {
		return nil, err
	}
	var recipients []uuid.UUID
	for _, p := range proposals {
		if !p.IsPending() {
			continue
		}
		provider, err := repos.Providers.FindByID(ctx, p.ProviderID)
		if err != nil {
			return nil, err
		}
		recipients = append(recipients, provider.UserID)
	}
	return recipients, nil
}
