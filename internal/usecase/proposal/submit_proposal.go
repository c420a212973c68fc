package proposal

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/workmatch/marketplace-backend/internal/domain/entity"
	"github.com/workmatch/marketplace-backend/internal/domain/repository"
	"github.com/workmatch/marketplace-backend/internal/domain/valueobject"
	"github.com/workmatch/marketplace-backend/internal/pkg/apperror"
	"github.com/workmatch/marketplace-backend/internal/usecase/common"
)

type SubmitProposalInput struct {
	UserID            uuid.UUID
	ServiceID         uuid.UUID
	Value             decimal.Decimal
	EstimatedDays     int
	Description       string
	PaymentForm       string
	SpecialConditions *string
	Warranty          *string
	Notes             *string
}

type SubmitProposalUseCase struct {
	uow      repository.UnitOfWork
	notifier common.Notifier
}

func NewSubmitProposalUseCase(uow repository.UnitOfWork, notifier common.Notifier) *SubmitProposalUseCase {
	return &SubmitProposalUseCase{uow: uow, notifier: notifier}
}

func (uc *SubmitProposalUseCase) Execute(ctx context.Context, input SubmitProposalInput) (*entity.Proposal, error) {
	form := valueobject.PaymentFormFull
	if input.PaymentForm != "" {
		parsed, err := valueobject.NewPaymentForm(input.PaymentForm)
		if err != nil {
			return nil, err
		}
		form = parsed
	}

	var (
		created      *entity.Proposal
		service      *entity.Service
		clientUserID uuid.UUID
	)
	err := uc.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		provider, err := common.ProviderOf(ctx, repos.Providers, input.UserID)
		if err != nil {
			return err
		}

		service, err = repos.Services.FindByIDForUpdate(ctx, input.ServiceID)
		if err != nil {
			return err
		}
		if !service.AcceptsProposals() {
			return apperror.New(apperror.ErrCodeInvalidState, "услуга не принимает предложения")
		}

		exists, err := repos.Proposals.ExistsForProvider(ctx, service.ID, provider.ID)
		if err != nil {
			return err
		}
		if exists {
			return apperror.New(apperror.ErrCodeConflict, "вы уже отправили предложение на эту услугу")
		}

		created, err = entity.NewProposal(service.ID, provider.ID, entity.ProposalTerms{
			Value:             input.Value,
			EstimatedDays:     input.EstimatedDays,
			Description:       input.Description,
			PaymentForm:       form,
			SpecialConditions: input.SpecialConditions,
			Warranty:          input.Warranty,
			Notes:             input.Notes,
		})
		if err != nil {
			return err
		}
		if err := repos.Proposals.Create(ctx, created); err != nil {
			return err
		}

		if err := service.AddProposal(created.ID); err != nil {
			return err
		}
		if err := repos.Services.Update(ctx, service); err != nil {
			return err
		}

		client, err := repos.Clients.FindByID(ctx, service.ClientID)
		if err != nil {
			return err
		}
		clientUserID = client.UserID
		return nil
	})
	if err != nil {
		return nil, err
	}

	serviceID, proposalID := service.ID, created.ID
	uc.notifier.Notify(ctx, entity.NotificationRequest{
		Recipients: []uuid.UUID{clientUserID},
		Kind:       valueobject.NotificationNewProposal,
		Title:      "Новое предложение",
		Message:    "На услугу «" + service.Title + "» поступило предложение на " + created.Value.StringFixed(2),
		ServiceID:  &serviceID,
		ProposalID: &proposalID,
	})
	return created, nil
}
