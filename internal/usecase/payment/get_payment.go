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

// ListPaymentsInput Role выбирает сторону сделки: платежи как заказчика или как исполнителя.
type ListPaymentsInput struct {
	UserID uuid.UUID
	Role   valueobject.Role
	Status string
	Page   int
	Limit  int
}

type ListPaymentsUseCase struct {
	repos repository.Repositories
}

func NewListPaymentsUseCase(repos repository.Repositories) *ListPaymentsUseCase {
	return &ListPaymentsUseCase{repos: repos}
}

func (uc *ListPaymentsUseCase) Execute(ctx context.Context, input ListPaymentsInput) (common.PageResult[*entity.Payment], error) {
	var empty common.PageResult[*entity.Payment]
	page := common.NewPage(input.Page, input.Limit)
	filter := repository.PaymentFilter{Limit: page.Limit, Offset: page.Offset()}

	if input.Status != "" {
		status, err := valueobject.NewPaymentStatus(input.Status)
		if err != nil {
			return empty, err
		}
		filter.Status = &status
	}

	switch input.Role {
	case valueobject.RoleClient:
		client, err := common.ClientOf(ctx, uc.repos.Clients, input.UserID)
		if err != nil {
			return empty, err
		}
		filter.ClientID = &client.ID
	case valueobject.RoleProvider:
		provider, err := common.ProviderOf(ctx, uc.repos.Providers, input.UserID)
		if err != nil {
			return empty, err
		}
		filter.ProviderID = &provider.ID
	default:
		return empty, apperror.Validation("некорректная роль",
			apperror.FieldError{Field: "role", Message: "допустимые значения: client, provider"})
	}

	items, total, err := uc.repos.Payments.List(ctx, filter)
	if err != nil {
		return empty, err
	}
	return common.NewPageResult(items, total, page), nil
}

type GetPaymentUseCase struct {
	repos repository.Repositories
}

func NewGetPaymentUseCase(repos repository.Repositories) *GetPaymentUseCase {
	return &GetPaymentUseCase{repos: repos}
}

// Execute доступен участникам сделки и администратору.
func (uc *GetPaymentUseCase) Execute(ctx context.Context, paymentID, userID uuid.UUID, role valueobject.Role) (*entity.Payment, error) {
	payment, err := uc.repos.Payments.FindByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	switch role {
	case valueobject.RoleAdmin:
		return payment, nil
	case valueobject.RoleClient:
		client, err := common.ClientOf(ctx, uc.repos.Clients, userID)
		if err != nil {
			return nil, err
		}
		if payment.IsPayer(client.ID) {
			return payment, nil
		}
	case valueobject.RoleProvider:
		provider, err := common.ProviderOf(ctx, uc.repos.Providers, userID)
		if err != nil {
			return nil, err
		}
		if payment.ProviderID == provider.ID {
			return payment, nil
		}
	}
	return nil, apperror.ErrForbidden
}
