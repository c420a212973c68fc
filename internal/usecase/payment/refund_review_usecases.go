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

type ListRefundsInput struct {
	Status string
	Page   int
	Limit  int
}

type ListRefundsUseCase struct {
	refunds repository.RefundRepository
}

func NewListRefundsUseCase(refunds repository.RefundRepository) *ListRefundsUseCase {
	return &ListRefundsUseCase{refunds: refunds}
}

func (uc *ListRefundsUseCase) Execute(ctx context.Context, input ListRefundsInput) (common.PageResult[*entity.Refund], error) {
	var status *valueobject.RefundStatus
	if input.Status != "" {
		parsed, err := valueobject.NewRefundStatus(input.Status)
		if err != nil {
			return common.PageResult[*entity.Refund]{}, err
		}
		status = &parsed
	}
	page := common.NewPage(input.Page, input.Limit)
	items, total, err := uc.refunds.List(ctx, status, page.Limit, page.Offset())
	if err != nil {
		return common.PageResult[*entity.Refund]{}, err
	}
	return common.NewPageResult(items, total, page), nil
}

// ApproveRefundUseCase возвращает средства через процессор.
// Услуга в работе отменяется, завершённая остаётся завершённой.
type ApproveRefundUseCase struct {
	uow       repository.UnitOfWork
	processor Processor
	notifier  common.Notifier
}

func NewApproveRefundUseCase(uow repository.UnitOfWork, processor Processor, notifier common.Notifier) *ApproveRefundUseCase {
	return &ApproveRefundUseCase{uow: uow, processor: processor, notifier: notifier}
}

func (uc *ApproveRefundUseCase) Execute(ctx context.Context, refundID, adminID uuid.UUID, notes string) (*entity.Refund, error) {
	var (
		refund       *entity.Refund
		providerUser uuid.UUID
	)
	err := uc.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		refund, err = repos.Refunds.FindByID(ctx, refundID)
		if err != nil {
			return err
		}
		if !refund.Status.IsOpen() {
			return apperror.New(apperror.ErrCodeInvalidState, "заявка на возврат уже рассмотрена")
		}
		payment, err := repos.Payments.FindByIDForUpdate(ctx, refund.PaymentID)
		if err != nil {
			return err
		}
		if !payment.IsRefundable() {
			return apperror.New(apperror.ErrCodeInvalidState, "по платежу в статусе "+string(payment.Status)+" возврат невозможен")
		}
		service, err := repos.Services.FindByIDForUpdate(ctx, payment.ServiceID)
		if err != nil {
			return err
		}

		gw, err := gatewayOf(ctx, repos.Gateways, payment)
		if err != nil {
			return err
		}
		if err := uc.processor.Refund(ctx, gw, payment); err != nil {
			return processorError(err)
		}

		if err := payment.MarkRefunded(); err != nil {
			return err
		}
		if err := refund.Complete(adminID, notes); err != nil {
			return err
		}
		if service.Status == valueobject.ServiceStatusInProgress {
			if err := service.CancelAfterRefund(); err != nil {
				return err
			}
			if err := repos.Services.Update(ctx, service); err != nil {
				return err
			}
		}
		if err := repos.Payments.Update(ctx, payment); err != nil {
			return err
		}
		if err := repos.Refunds.Update(ctx, refund); err != nil {
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

	serviceID, paymentID := refund.ServiceID, refund.PaymentID
	uc.notifier.Notify(ctx, entity.NotificationRequest{
		Recipients: []uuid.UUID{refund.RequesterID, providerUser},
		Kind:       valueobject.NotificationRefundApproved,
		Title:      "Возврат одобрен",
		Message:    "Возврат " + refund.Amount.StringFixed(2) + " одобрен администратором",
		ServiceID:  &serviceID,
		PaymentID:  &paymentID,
	})
	return refund, nil
}

type RejectRefundUseCase struct {
	uow      repository.UnitOfWork
	notifier common.Notifier
}

func NewRejectRefundUseCase(uow repository.UnitOfWork, notifier common.Notifier) *RejectRefundUseCase {
	return &RejectRefundUseCase{uow: uow, notifier: notifier}
}

func (uc *RejectRefundUseCase) Execute(ctx context.Context, refundID, adminID uuid.UUID, reason string) (*entity.Refund, error) {
	var refund *entity.Refund
	err := uc.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		refund, err = repos.Refunds.FindByID(ctx, refundID)
		if err != nil {
			return err
		}
		if err := refund.Reject(adminID, reason); err != nil {
			return err
		}
		return repos.Refunds.Update(ctx, refund)
	})
	if err != nil {
		return nil, err
	}

	serviceID, paymentID := refund.ServiceID, refund.PaymentID
	uc.notifier.Notify(ctx, entity.NotificationRequest{
		Recipients: []uuid.UUID{refund.RequesterID},
		Kind:       valueobject.NotificationRefundRejected,
		Title:      "В возврате отказано",
		Message:    "Заявка на возврат отклонена: " + *refund.RejectionReason,
		ServiceID:  &serviceID,
		PaymentID:  &paymentID,
	})
	return refund, nil
}
