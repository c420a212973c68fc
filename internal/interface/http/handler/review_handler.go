package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/workmatch/marketplace-backend/internal/interface/http/dto"
	"github.com/workmatch/marketplace-backend/internal/interface/http/response"
	"github.com/workmatch/marketplace-backend/internal/usecase/review"
)

type ReviewHandler struct {
	createUC    *review.CreateReviewUseCase
	updateUC    *review.UpdateReviewUseCase
	deleteUC    *review.DeleteReviewUseCase
	byServiceUC *review.ListServiceReviewsUseCase
	byUserUC    *review.ListUserReviewsUseCase
}

func NewReviewHandler(
	createUC *review.CreateReviewUseCase,
	updateUC *review.UpdateReviewUseCase,
	deleteUC *review.DeleteReviewUseCase,
	byServiceUC *review.ListServiceReviewsUseCase,
	byUserUC *review.ListUserReviewsUseCase,
) *ReviewHandler {
	return &ReviewHandler{
		createUC:    createUC,
		updateUC:    updateUC,
		deleteUC:    deleteUC,
		byServiceUC: byServiceUC,
		byUserUC:    byUserUC,
	}
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Create godoc
// @Summary      Review a completed service
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        request body dto.CreateReviewRequest true "Review"
// @Success      201  {object}  response.Response{data=dto.ReviewResponse}
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /reviews [post]
func (h *ReviewHandler) Create(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	created, err := h.createUC.Execute(c.Request.Context(), review.CreateReviewInput{
		UserID:    userID,
		ServiceID: req.ServiceID,
		Rating:    req.Rating,
		Comment:   derefString(req.Comment),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.ToReviewResponse(created))
}

// ByService godoc
// @Summary      Reviews of a service
// @Tags         reviews
// @Produce      json
// @Param        id   path      string  true  "Service ID"
// @Success      200  {object}  response.Response{data=[]dto.ReviewResponse}
// @Router       /reviews/service/{id} [get]
func (h *ReviewHandler) ByService(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	reviews, err := h.byServiceUC.Execute(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToReviewResponses(reviews))
}

// ByUser godoc
// @Summary      Reviews received or given by a user
// @Tags         reviews
// @Produce      json
// @Param        id    path   string  true   "User ID"
// @Param        type  query  string  false  "received (default) or given"
// @Success      200  {object}  response.Response{data=[]dto.ReviewResponse}
// @Router       /reviews/user/{id} [get]
func (h *ReviewHandler) ByUser(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	reviews, err := h.byUserUC.Execute(c.Request.Context(), id, c.Query("type"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToReviewResponses(reviews))
}

// Update godoc
// @Summary      Edit own review within 24 hours
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        id       path  string                   true  "Review ID"
// @Param        request  body  dto.UpdateReviewRequest  true  "Review"
// @Success      200  {object}  response.Response{data=dto.ReviewResponse}
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /reviews/{id} [put]
func (h *ReviewHandler) Update(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	updated, err := h.updateUC.Execute(c.Request.Context(), review.UpdateReviewInput{
		ReviewID: id,
		UserID:   userID,
		Rating:   req.Rating,
		Comment:  derefString(req.Comment),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToReviewResponse(updated))
}

// Delete godoc
// @Summary      Delete own review within 24 hours
// @Tags         reviews
// @Produce      json
// @Security     Bearer
// @Param        id   path      string  true  "Review ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /reviews/{id} [delete]
func (h *ReviewHandler) Delete(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.deleteUC.Execute(c.Request.Context(), id, userID); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "отзыв удалён")
}
