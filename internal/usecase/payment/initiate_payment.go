package payment

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/workmatch/marketplace-backend/internal/domain/entity"
	"github.com/workmatch/marketplace-backend/internal/domain/repository"
	"github.com/workmatch/marketplace-backend/internal/domain/valueobject"
	"github.com/workmatch/marketplace-backend/internal/logger"
	"github.com/workmatch/marketplace-backend/internal/pkg/apperror"
	"github.com/workmatch/marketplace-backend/internal/usecase/common"
)

type InitiatePaymentInput struct {
	UserID       uuid.UUID
	ServiceID    uuid.UUID
	Method       string
	Details      entity.PaymentDetails
	Installments int
}

// InitiatePaymentUseCase резервирует оплату принятого предложения в эскроу.
//
// Процессор вызывается вне транзакции: сначала проверки и расчёт суммы,
// затем авторизация, затем запись платежа и перевод услуги в in_progress.
// Если запись не удалась, авторизация отменяется возвратом.
type InitiatePaymentUseCase struct {
	uow       repository.UnitOfWork
	gateways  repository.GatewayRepository
	processor Processor
	notifier  common.Notifier
}

func NewInitiatePaymentUseCase(uow repository.UnitOfWork, gateways repository.GatewayRepository, processor Processor, notifier common.Notifier) *InitiatePaymentUseCase {
	return &InitiatePaymentUseCase{uow: uow, gateways: gateways, processor: processor, notifier: notifier}
}

func (uc *InitiatePaymentUseCase) Execute(ctx context.Context, input InitiatePaymentInput) (*entity.Payment, error) {
	method, err := valueobject.NewPaymentMethod(input.Method)
	if err != nil {
		return nil, err
	}
	gw, err := activeGateway(ctx, uc.gateways)
	if err != nil {
		return nil, err
	}

	var (
		payment    *entity.Payment
		service    *entity.Service
		payerEmail string
	)
	err = uc.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		client, err := common.ClientOf(ctx, repos.Clients, input.UserID)
		if err != nil {
			return err
		}
		service, err = repos.Services.FindByID(ctx, input.ServiceID)
		if err != nil {
			return err
		}
		if !service.IsOwnedBy(client.ID) {
			return apperror.ErrForbidden
		}
		if service.Status != valueobject.ServiceStatusConfirmed {
			return apperror.New(apperror.ErrCodeInvalidState, "оплатить можно только подтверждённую услугу")
		}

		accepted, err := acceptedProposal(ctx, repos, service.ID)
		if err != nil {
			return err
		}
		if err := gw.CheckAmount(accepted.Value, method); err != nil {
			return err
		}
		payment, err = entity.NewEscrowPayment(service, accepted, method, input.Details, input.Installments, gw.FeePolicy())
		if err != nil {
			return err
		}
		if gw.IsPersisted() {
			gatewayID := gw.ID
			payment.GatewayID = &gatewayID
		}

		user, err := repos.Users.FindByID(ctx, input.UserID)
		if err != nil {
			return err
		}
		payerEmail = user.Email
		return nil
	})
	if err != nil {
		return nil, err
	}

	result, err := uc.processor.Process(ctx, gw, entity.ChargeRequest{
		PaymentID:    payment.ID,
		ServiceID:    service.ID,
		Amount:       payment.Amount,
		Method:       payment.Method,
		Details:      input.Details,
		Installments: payment.Installments,
		Description:  service.Title,
		PayerEmail:   payerEmail,
	})
	if err != nil {
		return nil, processorError(err)
	}
	if !result.Approved {
		message := "платёж отклонён"
		if result.DeclineReason != "" {
			message += ": " + result.DeclineReason
		}
		return nil, apperror.New(apperror.ErrCodeInvalidState, message)
	}
	if err := payment.MarkProcessing(result.TransactionID); err != nil {
		return nil, err
	}

	var providerUser uuid.UUID
	err = uc.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		locked, err := repos.Services.FindByIDForUpdate(ctx, service.ID)
		if err != nil {
			return err
		}
		if err := locked.Start(); err != nil {
			return err
		}
		if err := repos.Payments.Create(ctx, payment); err != nil {
			return err
		}
		if err := repos.Services.Update(ctx, locked); err != nil {
			return err
		}
		service = locked

		provider, err := repos.Providers.FindByID(ctx, payment.ProviderID)
		if err != nil {
			return err
		}
		providerUser = provider.UserID
		return nil
	})
	if err != nil {
		uc.compensate(ctx, gw, payment, err)
		return nil, err
	}

	payment.Details.CardToken = nil
	paymentID, serviceID := payment.ID, service.ID
	uc.notifier.Notify(ctx, entity.NotificationRequest{
		Recipients: []uuid.UUID{providerUser},
		Kind:       valueobject.NotificationPaymentReceived,
		Title:      "Оплата зарезервирована",
		Message:    "Заказчик оплатил услугу «" + service.Title + "» на " + payment.Amount.StringFixed(2) + ". Можно приступать к работе",
		ServiceID:  &serviceID,
		PaymentID:  &paymentID,
	})
	return payment, nil
}

// compensate отменяет авторизацию, которую не удалось зафиксировать в БД.
func (uc *InitiatePaymentUseCase) compensate(ctx context.Context, gw *entity.PaymentGateway, payment *entity.Payment, cause error) {
	log := logger.WithComponent("payment").WithFields(logrus.Fields{
		"payment_id":     payment.ID,
		"service_id":     payment.ServiceID,
		"transaction_id": *payment.TransactionID,
		"cause":          cause.Error(),
	})
	if err := uc.processor.Refund(context.WithoutCancel(ctx), gw, payment); err != nil {
		log.WithError(err).Error("не удалось отменить авторизацию после ошибки записи платежа")
		return
	}
	log.Warn("авторизация отменена: платёж не записан")
}

// acceptedProposal требует ровно одно принятое предложение по услуге.
func acceptedProposal(ctx context.Context, repos repository.Repositories, serviceID uuid.UUID) (*entity.Proposal, error) {
	accepted, err := repos.Proposals.FindAccepted(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	if len(accepted) != 1 {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "у услуги должно быть ровно одно принятое предложение")
	}
	return accepted[0], nil
}
