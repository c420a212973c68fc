package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/workmatch/marketplace-backend/internal/interface/http/dto"
	"github.com/workmatch/marketplace-backend/internal/interface/http/response"
	"github.com/workmatch/marketplace-backend/internal/usecase/proposal"
)

type ProposalHandler struct {
	submitUC *proposal.SubmitProposalUseCase
	acceptUC *proposal.AcceptProposalUseCase
	rejectUC *proposal.RejectProposalUseCase
	cancelUC *proposal.CancelProposalUseCase
	listUC   *proposal.ListServiceProposalsUseCase
	getUC    *proposal.GetProposalUseCase
	mineUC   *proposal.ListMyProposalsUseCase
}

func NewProposalHandler(
	submitUC *proposal.SubmitProposalUseCase,
	acceptUC *proposal.AcceptProposalUseCase,
	rejectUC *proposal.RejectProposalUseCase,
	cancelUC *proposal.CancelProposalUseCase,
	listUC *proposal.ListServiceProposalsUseCase,
	getUC *proposal.GetProposalUseCase,
	mineUC *proposal.ListMyProposalsUseCase,
) *ProposalHandler {
	return &ProposalHandler{
		submitUC: submitUC,
		acceptUC: acceptUC,
		rejectUC: rejectUC,
		cancelUC: cancelUC,
		listUC:   listUC,
		getUC:    getUC,
		mineUC:   mineUC,
	}
}

// Submit godoc
// @Summary      Submit a proposal
// @Tags         proposals
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        request body dto.SubmitProposalRequest true "Proposal"
// @Success      201  {object}  response.Response{data=dto.ProposalResponse}
// @Failure      400  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /proposals [post]
func (h *ProposalHandler) Submit(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.SubmitProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	created, err := h.submitUC.Execute(c.Request.Context(), proposal.SubmitProposalInput{
		UserID:            userID,
		ServiceID:         req.ServiceID,
		Value:             req.Value,
		EstimatedDays:     req.EstimatedDays,
		Description:       req.Description,
		PaymentForm:       req.PaymentForm,
		SpecialConditions: req.SpecialConditions,
		Warranty:          req.Warranty,
		Notes:             req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToProposalResponse(created))
}

// ListByService godoc
// @Summary      Proposals of a service (owner only)
// @Tags         proposals
// @Produce      json
// @Security     Bearer
// @Param        service  query  string  true  "Service ID"
// @Success      200  {object}  response.Response{data=[]dto.ProposalResponse}
// @Failure      403  {object}  response.Response
// @Router       /proposals [get]
func (h *ProposalHandler) ListByService(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	serviceID, err := queryUUID(c, "service")
	if err != nil {
		response.Error(c, err)
		return
	}
	if serviceID == nil {
		response.BadRequest(c, "параметр service обязателен")
		return
	}

	proposals, err := h.listUC.Execute(c.Request.Context(), *serviceID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToProposalResponses(proposals))
}

// Mine godoc
// @Summary      Proposals submitted by the current provider
// @Tags         proposals
// @Produce      json
// @Security     Bearer
// @Success      200  {object}  response.Response{data=[]dto.ProposalResponse}
// @Router       /proposals/mine [get]
func (h *ProposalHandler) Mine(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}

	proposals, err := h.mineUC.Execute(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToProposalResponses(proposals))
}

// Get godoc
// @Summary      Get a proposal
// @Tags         proposals
// @Produce      json
// @Security     Bearer
// @Param        id   path      string  true  "Proposal ID"
// @Success      200  {object}  response.Response{data=dto.ProposalResponse}
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /proposals/{id} [get]
func (h *ProposalHandler) Get(c *gin.Context) {
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

	response.Success(c, dto.ToProposalResponse(p))
}

// Accept godoc
// @Summary      Accept a proposal
// @Tags         proposals
// @Produce      json
// @Security     Bearer
// @Param        id   path      string  true  "Proposal ID"
// @Success      200  {object}  response.Response{data=dto.ProposalResponse}
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /proposals/{id}/accept [put]
func (h *ProposalHandler) Accept(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	accepted, err := h.acceptUC.Execute(c.Request.Context(), id, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToProposalResponse(accepted))
}

// Reject godoc
// @Summary      Reject a proposal
// @Tags         proposals
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        id       path  string                     true   "Proposal ID"
// @Param        request  body  dto.RejectProposalRequest  false  "Reason"
// @Success      200  {object}  response.Response{data=dto.ProposalResponse}
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /proposals/{id}/reject [put]
func (h *ProposalHandler) Reject(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req dto.RejectProposalRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BindError(c, err)
			return
		}
	}

	rejected, err := h.rejectUC.Execute(c.Request.Context(), id, userID, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToProposalResponse(rejected))
}

// Cancel godoc
// @Summary      Withdraw a pending proposal
// @Tags         proposals
// @Produce      json
// @Security     Bearer
// @Param        id   path      string  true  "Proposal ID"
// @Success      200  {object}  response.Response{data=dto.ProposalResponse}
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /proposals/{id}/cancel [put]
func (h *ProposalHandler) Cancel(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	canceled, err := h.cancelUC.Execute(c.Request.Context(), id, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToProposalResponse(canceled))
}
