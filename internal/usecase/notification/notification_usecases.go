package notification

import (
	"context"

	"github.com/google/uuid"

	"github.com/workmatch/marketplace-backend/internal/domain/entity"
	"github.com/workmatch/marketplace-backend/internal/domain/repository"
	"github.com/workmatch/marketplace-backend/internal/usecase/common"
)

type ListNotificationsInput struct {
	UserID     uuid.UUID
	UnreadOnly bool
	Page       int
	Limit      int
}

type ListNotificationsUseCase struct {
	repo repository.NotificationRepository
}

func NewListNotificationsUseCase(repo repository.NotificationRepository) *ListNotificationsUseCase {
	return &ListNotificationsUseCase{repo: repo}
}

func (uc *ListNotificationsUseCase) Execute(ctx context.Context, input ListNotificationsInput) (common.PageResult[*entity.Notification], error) {
	page := common.NewPage(input.Page, input.Limit)
	items, total, err := uc.repo.List(ctx, input.UserID, input.UnreadOnly, page.Limit, page.Offset())
	if err != nil {
		return common.PageResult[*entity.Notification]{}, err
	}
	return common.NewPageResult(items, total, page), nil
}

// MarkReadUseCase чужое уведомление неотличимо от несуществующего.
type MarkReadUseCase struct {
	repo repository.NotificationRepository
}

func NewMarkReadUseCase(repo repository.NotificationRepository) *MarkReadUseCase {
	return &MarkReadUseCase{repo: repo}
}

func (uc *MarkReadUseCase) Execute(ctx context.Context, id, userID uuid.UUID) error {
	return uc.repo.MarkRead(ctx, id, userID)
}

type MarkAllReadUseCase struct {
	repo repository.NotificationRepository
}

func NewMarkAllReadUseCase(repo repository.NotificationRepository) *MarkAllReadUseCase {
	return &MarkAllReadUseCase{repo: repo}
}

func (uc *MarkAllReadUseCase) Execute(ctx context.Context, userID uuid.UUID) (int64, error) {
	return uc.repo.MarkAllRead(ctx, userID)
}

type UnreadCountUseCase struct {
	repo repository.NotificationRepository
}

func NewUnreadCountUseCase(repo repository.NotificationRepository) *UnreadCountUseCase {
	return &UnreadCountUseCase{repo: repo}
}

func (uc *UnreadCountUseCase) Execute(ctx context.Context, userID uuid.UUID) (int, error) {
	return uc.repo.CountUnread(ctx, userID)
}
