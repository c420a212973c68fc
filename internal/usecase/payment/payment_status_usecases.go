package payment

import (
	"context"

	"github.com/google/uuid"

	"github.com/workmatch/marketplace-backend/internal/domain/entity"
	"github.com/workmatch/marketplace-backend/internal/domain/repository"
	"github.com/workmatch/marketplace-backend/internal/domain/valueobject"
	"github.com/workmatch/marketplace-backend/internal/pkg/apperror"
	"github.com/workmatch/marketplace-backend/internal/usecase/common"
)

// ReleasePaymentUseCase переводит средства исполнителю и завершает услугу.
// Строки платежа и услуги заблокированы на время вызова процессора,
// поэтому повторный release не пройдёт дважды.
type ReleasePaymentUseCase struct {
	uow       repository.UnitOfWork
	processor Processor
	notifier  common.Notifier
}

func NewReleasePaymentUseCase(uow repository.UnitOfWork, processor Processor, notifier common.Notifier) *ReleasePaymentUseCase {
	return &ReleasePaymentUseCase{uow: uow, processor: processor, notifier: notifier}
}

func (uc *ReleasePaymentUseCase) Execute(ctx context.Context, paymentID, userID uuid.UUID) (*entity.Payment, error) {
	var (
		payment      *entity.Payment
		service      *entity.Service
		providerUser uuid.UUID
	)
	err := uc.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		client, err := common.ClientOf(ctx, repos.Clients, userID)
		if err != nil {
			return err
		}
		payment, err = repos.Payments.FindByIDForUpdate(ctx, paymentID)
		if err != nil {
			return err
		}
		if !payment.IsPayer(client.ID) {
			return apperror.ErrForbidden
		}
		if payment.Status != valueobject.PaymentStatusProcessing {
			return apperror.New(apperror.ErrCodeInvalidState, "освободить можно только платёж в статусе processing")
		}
		service, err = repos.Services.FindByIDForUpdate(ctx, payment.ServiceID)
		if err != nil {
			return err
		}
		if service.Status != valueobject.ServiceStatusInProgress {
			return apperror.New(apperror.ErrCodeInvalidState, "услуга не находится в работе")
		}

		gw, err := gatewayOf(ctx, repos.Gateways, payment)
		if err != nil {
			return err
		}
		if err := uc.processor.Release(ctx, gw, payment); err != nil {
			return processorError(err)
		}

		if err := payment.Release(); err != nil {
			return err
		}
		if err := service.Complete(); err != nil {
			return err
		}
		if err := repos.Payments.Update(ctx, payment); err != nil {
			return err
		}
		if err := repos.Services.Update(ctx, service); err != nil {
			return err
		}

		provider, err := repos.Providers.FindByID(ctx, payment.ProviderID)
		if err != nil {
			return err
		}
		providerUser = provider.UserID
		return nil
	})
	if err != nil {
		return nil, err
	}

	id, serviceID := payment.ID, service.ID
	uc.notifier.Notify(ctx, entity.NotificationRequest{
		Recipients: []uuid.UUID{providerUser},
		Kind:       valueobject.NotificationPaymentReleased,
		Title:      "Оплата переведена",
		Message:    "Средства за услугу «" + service.Title + "» переведены: " + payment.NetAmount().StringFixed(2),
		ServiceID:  &serviceID,
		PaymentID:  &id,
	})
	return payment, nil
}

type RequestRefundUseCase struct {
	uow      repository.UnitOfWork
	notifier common.Notifier
}

func NewRequestRefundUseCase(uow repository.UnitOfWork, notifier common.Notifier) *RequestRefundUseCase {
	return &RequestRefundUseCase{uow: uow, notifier: notifier}
}

// Execute создаёт заявку в pending. Решение принимает администратор.
func (uc *RequestRefundUseCase) Execute(ctx context.Context, paymentID, userID uuid.UUID, reason string) (*entity.Refund, error) {
	var refund *entity.Refund
	err := uc.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		client, err := common.ClientOf(ctx, repos.Clients, userID)
		if err != nil {
			return err
		}
		payment, err := repos.Payments.FindByIDForUpdate(ctx, paymentID)
		if err != nil {
			return err
		}
		if !payment.IsPayer(client.ID) {
			return apperror.ErrForbidden
		}

		refund, err = entity.NewRefund(payment, userID, reason)
		if err != nil {
			return err
		}

		// Одобренный возврат переводит платёж в refunded, поэтому повтор проверяем раньше статуса.
		_, err = repos.Refunds.FindByPaymentID(ctx, payment.ID)
		switch {
		case err == nil:
			return apperror.New(apperror.ErrCodeConflict, "по платежу уже есть заявка на возврат")
		case !apperror.IsNotFound(err):
			return err
		}
		if !payment.IsRefundable() {
			return apperror.New(apperror.ErrCodeInvalidState, "по платежу в статусе "+string(payment.Status)+" возврат невозможен")
		}
		return repos.Refunds.Create(ctx, refund)
	})
	if err != nil {
		return nil, err
	}

	serviceID, id := refund.ServiceID, refund.PaymentID
	uc.notifier.Notify(ctx, entity.NotificationRequest{
		Role:      valueobject.RoleAdmin,
		Kind:      valueobject.NotificationRefundRequested,
		Title:     "Новая заявка на возврат",
		Message:   "Запрошен возврат " + refund.Amount.StringFixed(2) + ": " + refund.Reason,
		ServiceID: &serviceID,
		PaymentID: &id,
	})
	return refund, nil
}
