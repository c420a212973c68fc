package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/workmatch/marketplace-backend/internal/interface/http/dto"
	"github.com/workmatch/marketplace-backend/internal/interface/http/response"
	"github.com/workmatch/marketplace-backend/internal/usecase/admin"
	"github.com/workmatch/marketplace-backend/internal/usecase/payment"
	"github.com/workmatch/marketplace-backend/internal/usecase/verification"
)

// AdminHandler операции администратора. Роль проверяется в роутере.
type AdminHandler struct {
	listUsersUC         *admin.ListUsersUseCase
	blockUserUC         *admin.BlockUserUseCase
	unblockUserUC       *admin.UnblockUserUseCase
	createGatewayUC     *admin.CreateGatewayUseCase
	listGatewaysUC      *admin.ListGatewaysUseCase
	dashboardUC         *admin.DashboardUseCase
	financialReportUC   *admin.FinancialReportUseCase
	listRefundsUC       *payment.ListRefundsUseCase
	approveRefundUC     *payment.ApproveRefundUseCase
	rejectRefundUC      *payment.RejectRefundUseCase
	listVerificationsUC *verification.ListVerificationsUseCase
}

type AdminDeps struct {
	ListUsers         *admin.ListUsersUseCase
	BlockUser         *admin.BlockUserUseCase
	UnblockUser       *admin.UnblockUserUseCase
	CreateGateway     *admin.CreateGatewayUseCase
	ListGateways      *admin.ListGatewaysUseCase
	Dashboard         *admin.DashboardUseCase
	FinancialReport   *admin.FinancialReportUseCase
	ListRefunds       *payment.ListRefundsUseCase
	ApproveRefund     *payment.ApproveRefundUseCase
	RejectRefund      *payment.RejectRefundUseCase
	ListVerifications *verification.ListVerificationsUseCase
}

func NewAdminHandler(deps AdminDeps) *AdminHandler {
	return &AdminHandler{
		listUsersUC:         deps.ListUsers,
		blockUserUC:         deps.BlockUser,
		unblockUserUC:       deps.UnblockUser,
		createGatewayUC:     deps.CreateGateway,
		listGatewaysUC:      deps.ListGateways,
		dashboardUC:         deps.Dashboard,
		financialReportUC:   deps.FinancialReport,
		listRefundsUC:       deps.ListRefunds,
		approveRefundUC:     deps.ApproveRefund,
		rejectRefundUC:      deps.RejectRefund,
		listVerificationsUC: deps.ListVerifications,
	}
}

// ListRefunds godoc
// @Summary      List refund requests
// @Tags         admin
// @Produce      json
// @Security     Bearer
// @Param        status  query  string  false  "pending, approved, rejected, completed"
// @Param        page    query  int     false  "Page"
// @Param        limit   query  int     false  "Page size"
// @Success      200  {object}  response.Response{data=response.Page{items=[]dto.RefundResponse}}
// @Router       /admin/refunds [get]
func (h *AdminHandler) ListRefunds(c *gin.Context) {
	result, err := h.listRefundsUC.Execute(c.Request.Context(), payment.ListRefundsInput{
		Status: strings.TrimSpace(c.Query("status")),
		Page:   queryInt(c, "page", 1),
		Limit:  queryInt(c, "limit", 0),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, result, dto.ToRefundResponse)
}

// ApproveRefund godoc
// @Summary      Approve a refund and return the money to the client
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        id       path  string                    true   "Refund ID"
// @Param        request  body  dto.ApproveRefundRequest  false  "Notes"
// @Success      200  {object}  response.Response{data=dto.RefundResponse}
// @Failure      400  {object}  response.Response
// @Failure      502  {object}  response.Response
// @Router       /admin/refunds/{id}/approve [put]
func (h *AdminHandler) ApproveRefund(c *gin.Context) {
	adminID, _, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req dto.ApproveRefundRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BindError(c, err)
			return
		}
	}

	refund, err := h.approveRefundUC.Execute(c.Request.Context(), id, adminID, req.Notes)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToRefundResponse(refund))
}

// RejectRefund godoc
// @Summary      Reject a refund
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        id       path  string                   true  "Refund ID"
// @Param        request  body  dto.RejectReasonRequest  true  "Reason"
// @Success      200  {object}  response.Response{data=dto.RefundResponse}
// @Failure      400  {object}  response.Response
// @Router       /admin/refunds/{id}/reject [put]
func (h *AdminHandler) RejectRefund(c *gin.Context) {
	adminID, _, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req dto.RejectReasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	refund, err := h.rejectRefundUC.Execute(c.Request.Context(), id, adminID, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToRefundResponse(refund))
}

// ListUsers godoc
// @Summary      List users
// @Tags         admin
// @Produce      json
// @Security     Bearer
// @Param        role     query  string  false  "client, provider, admin"
// @Param        blocked  query  bool    false  "Blocked flag"
// @Param        page     query  int     false  "Page"
// @Param        limit    query  int     false  "Page size"
// @Success      200  {object}  response.Response{data=response.Page{items=[]dto.UserResponse}}
// @Router       /admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	blocked, err := queryBool(c, "blocked")
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.listUsersUC.Execute(c.Request.Context(), admin.ListUsersInput{
		Role:    strings.TrimSpace(c.Query("role")),
		Blocked: blocked,
		Page:    queryInt(c, "page", 1),
		Limit:   queryInt(c, "limit", 0),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, result, dto.ToUserResponse)
}

// BlockUser godoc
// @Summary      Block a user and revoke their sessions
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        id       path  string                true  "User ID"
// @Param        request  body  dto.BlockUserRequest  true  "Reason"
// @Success      200  {object}  response.Response{data=dto.UserResponse}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /admin/users/{id}/block [put]
func (h *AdminHandler) BlockUser(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req dto.BlockUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	user, err := h.blockUserUC.Execute(c.Request.Context(), id, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToUserResponse(user))
}

// UnblockUser godoc
// @Summary      Unblock a user
// @Tags         admin
// @Produce      json
// @Security     Bearer
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  response.Response{data=dto.UserResponse}
// @Failure      404  {object}  response.Response
// @Router       /admin/users/{id}/unblock [put]
func (h *AdminHandler) UnblockUser(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	user, err := h.unblockUserUC.Execute(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToUserResponse(user))
}

// Dashboard godoc
// @Summary      Platform counters
// @Tags         admin
// @Produce      json
// @Security     Bearer
// @Success      200  {object}  response.Response{data=dto.DashboardResponse}
// @Router       /admin/dashboard [get]
func (h *AdminHandler) Dashboard(c *gin.Context) {
	stats, err := h.dashboardUC.Execute(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToDashboardResponse(stats))
}

// CreateGateway godoc
// @Summary      Register a payment gateway
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        request body dto.CreateGatewayRequest true "Gateway"
// @Success      201  {object}  response.Response{data=dto.GatewayResponse}
// @Failure      400  {object}  response.Response
// @Router       /admin/gateway [post]
func (h *AdminHandler) CreateGateway(c *gin.Context) {
	var req dto.CreateGatewayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	gw, err := h.createGatewayUC.Execute(c.Request.Context(), admin.CreateGatewayInput{
		Name:        req.Name,
		Environment: req.Environment,
		FeePercent:  req.FeePercent,
		FeeFixed:    req.FeeFixed,
		MinAmount:   req.MinAmount,
		MaxAmount:   req.MaxAmount,
		Methods:     req.Methods,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.ToGatewayResponse(gw))
}

// ListGateways godoc
// @Summary      List payment gateways
// @Tags         admin
// @Produce      json
// @Security     Bearer
// @Success      200  {object}  response.Response{data=[]dto.GatewayResponse}
// @Router       /admin/gateway [get]
func (h *AdminHandler) ListGateways(c *gin.Context) {
	gateways, err := h.listGatewaysUC.Execute(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToGatewayResponses(gateways))
}

// FinancialReport godoc
// @Summary      Monthly totals of completed payments
// @Tags         admin
// @Produce      json
// @Security     Bearer
// @Param        from  query  string  false  "YYYY-MM-DD"
// @Param        to    query  string  false  "YYYY-MM-DD"
// @Success      200  {object}  response.Response{data=dto.FinancialReportResponse}
// @Failure      400  {object}  response.Response
// @Router       /admin/reports/financial [get]
func (h *AdminHandler) FinancialReport(c *gin.Context) {
	from, err := queryDate(c, "from")
	if err != nil {
		response.Error(c, err)
		return
	}
	to, err := queryDate(c, "to")
	if err != nil {
		response.Error(c, err)
		return
	}

	report, err := h.financialReportUC.Execute(c.Request.Context(), from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToFinancialReportResponse(report))
}

// ListVerifications godoc
// @Summary      List verification requests
// @Tags         admin
// @Produce      json
// @Security     Bearer
// @Param        status  query  string  false  "pending, approved, rejected"
// @Param        page    query  int     false  "Page"
// @Param        limit   query  int     false  "Page size"
// @Success      200  {object}  response.Response{data=response.Page{items=[]dto.VerificationResponse}}
// @Router       /admin/verifications [get]
func (h *AdminHandler) ListVerifications(c *gin.Context) {
	result, err := h.listVerificationsUC.Execute(c.Request.Context(), verification.ListVerificationsInput{
		Status: strings.TrimSpace(c.Query("status")),
		Page:   queryInt(c, "page", 1),
		Limit:  queryInt(c, "limit", 0),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, result, dto.ToVerificationResponse)
}
