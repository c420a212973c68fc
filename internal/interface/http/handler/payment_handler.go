package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/workmatch/marketplace-backend/internal/domain/valueobject"
	"github.com/workmatch/marketplace-backend/internal/interface/http/dto"
	"github.com/workmatch/marketplace-backend/internal/interface/http/response"
	"github.com/workmatch/marketplace-backend/internal/usecase/payment"
)

type PaymentHandler struct {
	initiateUC *payment.InitiatePaymentUseCase
	listUC     *payment.ListPaymentsUseCase
	getUC      *payment.GetPaymentUseCase
	releaseUC  *payment.ReleasePaymentUseCase
	refundUC   *payment.RequestRefundUseCase
}

func NewPaymentHandler(
	initiateUC *payment.InitiatePaymentUseCase,
	listUC *payment.ListPaymentsUseCase,
	getUC *payment.GetPaymentUseCase,
	releaseUC *payment.ReleasePaymentUseCase,
	refundUC *payment.RequestRefundUseCase,
) *PaymentHandler {
	return &PaymentHandler{
		initiateUC: initiateUC,
		listUC:     listUC,
		getUC:      getUC,
		releaseUC:  releaseUC,
		refundUC:   refundUC,
	}
}

// Initiate godoc
// @Summary      Pay for a confirmed service into escrow
// @Tags         payments
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        request body dto.InitiatePaymentRequest true "Payment"
// @Success      201  {object}  response.Response{data=dto.PaymentResponse}
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /payments/escrow [post]
func (h *PaymentHandler) Initiate(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.InitiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	p, err := h.initiateUC.Execute(c.Request.Context(), payment.InitiatePaymentInput{
		UserID:       userID,
		ServiceID:    req.ServiceID,
		Method:       req.Method,
		Details:      req.ToPaymentDetails(),
		Installments: req.Installments,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToPaymentResponse(p))
}

// List godoc
// @Summary      Payments of the current user
// @Description  role selects the side of the deal; defaults to the role from the token
// @Tags         payments
// @Produce      json
// @Security     Bearer
// @Param        role    query  string  false  "client or provider"
// @Param        status  query  string  false  "Payment status"
// @Param        page    query  int     false  "Page"
// @Param        limit   query  int     false  "Page size"
// @Success      200  {object}  response.Response{data=response.Page{items=[]dto.PaymentResponse}}
// @Router       /payments [get]
func (h *PaymentHandler) List(c *gin.Context) {
	userID, role, ok := currentUser(c)
	if !ok {
		return
	}
	if raw := strings.TrimSpace(c.Query("role")); raw != "" {
		role = valueobject.Role(raw)
	}

	result, err := h.listUC.Execute(c.Request.Context(), payment.ListPaymentsInput{
		UserID: userID,
		Role:   role,
		Status: strings.TrimSpace(c.Query("status")),
		Page:   queryInt(c, "page", 1),
		Limit:  queryInt(c, "limit", 0),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result, dto.ToPaymentResponse)
}

// Get godoc
// @Summary      Get a payment
// @Tags         payments
// @Produce      json
// @Security     Bearer
// @Param        id   path      string  true  "Payment ID"
// @Success      200  {object}  response.Response{data=dto.PaymentResponse}
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /payments/{id} [get]
func (h *PaymentHandler) Get(c *gin.Context) {
	userID, role, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	p, err := h.getUC.Execute(c.Request.Context(), id, userID, role)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToPaymentResponse(p))
}

// Release godoc
// @Summary      Release escrow to the provider and complete the service
// @Tags         payments
// @Produce      json
// @Security     Bearer
// @Param        id   path      string  true  "Payment ID"
// @Success      200  {object}  response.Response{data=dto.PaymentResponse}
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      502  {object}  response.Response
// @Router       /payments/{id}/release [put]
func (h *PaymentHandler) Release(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	p, err := h.releaseUC.Execute(c.Request.Context(), id, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToPaymentResponse(p))
}

// RequestRefund godoc
// @Summary      Request a refund
// @Tags         payments
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        id       path  string             true  "Payment ID"
// @Param        request  body  dto.RefundRequest  true  "Reason"
// @Success      201  {object}  response.Response{data=dto.RefundResponse}
// @Failure      400  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /payments/{id}/refund [post]
func (h *PaymentHandler) RequestRefund(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req dto.RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	refund, err := h.refundUC.Execute(c.Request.Context(), id, userID, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToRefundResponse(refund))
}
