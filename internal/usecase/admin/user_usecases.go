package admin

import (
	"context"

	"github.com/google/uuid"

	"github.com/workmatch/marketplace-backend/internal/domain/entity"
	"github.com/workmatch/marketplace-backend/internal/domain/repository"
	"github.com/workmatch/marketplace-backend/internal/domain/valueobject"
	"github.com/workmatch/marketplace-backend/internal/pkg/apperror"
	"github.com/workmatch/marketplace-backend/internal/usecase/common"
)

type ListUsersInput struct {
	Role    string
	Blocked *bool
	Page    int
	Limit   int
}

type ListUsersUseCase struct {
	users repository.UserRepository
}

func NewListUsersUseCase(users repository.UserRepository) *ListUsersUseCase {
	return &ListUsersUseCase{users: users}
}

func (uc *ListUsersUseCase) Execute(ctx context.Context, input ListUsersInput) (common.PageResult[*entity.User], error) {
	page := common.NewPage(input.Page, input.Limit)
	filter := repository.UserFilter{Blocked: input.Blocked, Limit: page.Limit, Offset: page.Offset()}
	if input.Role != "" {
		role := valueobject.Role(input.Role)
		if !role.IsValid() {
			return common.PageResult[*entity.User]{}, apperror.Validation("некорректная роль",
				apperror.FieldError{Field: "role", Message: "допустимые значения: client, provider, admin"})
		}
		filter.Role = &role
	}

	users, total, err := uc.users.List(ctx, filter)
	if err != nil {
		return common.PageResult[*entity.User]{}, err
	}
	return common.NewPageResult(users, total, page), nil
}

type BlockUserUseCase struct {
	uow repository.UnitOfWork
}

func NewBlockUserUseCase(uow repository.UnitOfWork) *BlockUserUseCase {
	return &BlockUserUseCase{uow: uow}
}

// Execute блокирует пользователя и отзывает его refresh-сессии.
func (uc *BlockUserUseCase) Execute(ctx context.Context, userID uuid.UUID, reason string) (*entity.User, error) {
	var blocked *entity.User
	err := uc.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		user, err := repos.Users.FindByID(ctx, userID)
		if err != nil {
			return err
		}
		if err := user.Block(reason); err != nil {
			return err
		}
		if err := repos.Users.Update(ctx, user); err != nil {
			return err
		}
		if err := repos.Sessions.DeleteByUserID(ctx, user.ID); err != nil {
			return err
		}
		blocked = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return blocked, nil
}

type UnblockUserUseCase struct {
	users repository.UserRepository
}

func NewUnblockUserUseCase(users repository.UserRepository) *UnblockUserUseCase {
	return &UnblockUserUseCase{users: users}
}

func (uc *UnblockUserUseCase) Execute(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := uc.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsBlocked {
		return user, nil
	}
	user.Unblock()
	if err := uc.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
