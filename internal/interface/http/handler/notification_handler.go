package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/workmatch/marketplace-backend/internal/interface/http/dto"
	"github.com/workmatch/marketplace-backend/internal/interface/http/response"
	"github.com/workmatch/marketplace-backend/internal/usecase/notification"
)

type NotificationHandler struct {
	listUC    *notification.ListNotificationsUseCase
	readUC    *notification.MarkReadUseCase
	readAllUC *notification.MarkAllReadUseCase
	unreadUC  *notification.UnreadCountUseCase
}

func NewNotificationHandler(
	listUC *notification.ListNotificationsUseCase,
	readUC *notification.MarkReadUseCase,
	readAllUC *notification.MarkAllReadUseCase,
	unreadUC *notification.UnreadCountUseCase,
) *NotificationHandler {
	return &NotificationHandler{listUC: listUC, readUC: readUC, readAllUC: readAllUC, unreadUC: unreadUC}
}

// List godoc
// @Summary      Notifications of the current user, newest first
// @Tags         notifications
// @Produce      json
// @Security     Bearer
// @Param        unread  query  bool  false  "Only unread"
// @Param        page    query  int   false  "Page"
// @Param        limit   query  int   false  "Page size"
// @Success      200  {object}  response.Response{data=response.Page{items=[]dto.NotificationResponse}}
// @Router       /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	unread, err := queryBool(c, "unread")
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.listUC.Execute(c.Request.Context(), notification.ListNotificationsInput{
		UserID:     userID,
		UnreadOnly: unread != nil && *unread,
		Page:       queryInt(c, "page", 1),
		Limit:      queryInt(c, "limit", 0),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, result, dto.ToNotificationResponse)
}

// UnreadCount godoc
// @Summary      Number of unread notifications
// @Tags         notifications
// @Produce      json
// @Security     Bearer
// @Success      200  {object}  response.Response{data=dto.UnreadCountResponse}
// @Router       /notifications/unread-count [get]
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	count, err := h.unreadUC.Execute(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.UnreadCountResponse{Count: count})
}

// MarkRead godoc
// @Summary      Mark a notification as read
// @Tags         notifications
// @Produce      json
// @Security     Bearer
// @Param        id   path      string  true  "Notification ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /notifications/{id}/read [put]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.readUC.Execute(c.Request.Context(), id, userID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"id": id})
}

// MarkAllRead godoc
// @Summary      Mark all notifications as read
// @Tags         notifications
// @Produce      json
// @Security     Bearer
// @Success      200  {object}  response.Response{data=dto.MarkedReadResponse}
// @Router       /notifications/read-all [put]
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	updated, err := h.readAllUC.Execute(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.MarkedReadResponse{Updated: updated})
}
