package handler

import (
	"mime/multipart"

	"github.com/gin-gonic/gin"

	"github.com/workmatch/marketplace-backend/internal/domain/entity"
	"github.com/workmatch/marketplace-backend/internal/interface/http/dto"
	"github.com/workmatch/marketplace-backend/internal/interface/http/response"
	"github.com/workmatch/marketplace-backend/internal/usecase/verification"
)

type VerificationHandler struct {
	submitUC    *verification.SubmitVerificationUseCase
	statusUC    *verification.GetStatusUseCase
	documentsUC *verification.ListDocumentsUseCase
	approveUC   *verification.ApproveVerificationUseCase
	rejectUC    *verification.RejectVerificationUseCase
}

func NewVerificationHandler(
	submitUC *verification.SubmitVerificationUseCase,
	statusUC *verification.GetStatusUseCase,
	documentsUC *verification.ListDocumentsUseCase,
	approveUC *verification.ApproveVerificationUseCase,
	rejectUC *verification.RejectVerificationUseCase,
) *VerificationHandler {
	return &VerificationHandler{
		submitUC:    submitUC,
		statusUC:    statusUC,
		documentsUC: documentsUC,
		approveUC:   approveUC,
		rejectUC:    rejectUC,
	}
}

// Submit godoc
// @Summary      Submit identity documents
// @Tags         verification
// @Accept       multipart/form-data
// @Produce      json
// @Security     Bearer
// @Param        identity          formData  file  true  "Identity document (JPEG, PNG, WEBP or PDF)"
// @Param        proof_of_address  formData  file  true  "Proof of address"
// @Success      201  {object}  response.Response{data=dto.VerificationResponse}
// @Failure      400  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /verification/documents [post]
func (h *VerificationHandler) Submit(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}

	identity, closeIdentity := openFormFile(c, entity.DocumentIdentity)
	defer closeIdentity()
	address, closeAddress := openFormFile(c, entity.DocumentProofOfAddress)
	defer closeAddress()

	v, err := h.submitUC.Execute(c.Request.Context(), verification.SubmitVerificationInput{
		UserID:         userID,
		Identity:       identity,
		ProofOfAddress: address,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.ToVerificationResponse(v))
}

// openFormFile открывает файл из multipart формы. Отсутствующий файл даёт пустой Upload,
// обязательность проверяет use case.
func openFormFile(c *gin.Context, field string) (verification.Upload, func()) {
	header, err := c.FormFile(field)
	if err != nil {
		return verification.Upload{}, func() {}
	}
	var f multipart.File
	if f, err = header.Open(); err != nil {
		return verification.Upload{}, func() {}
	}
	return verification.Upload{Name: header.Filename, Reader: f}, func() { _ = f.Close() }
}

// Status godoc
// @Summary      Verification status of a user
// @Tags         verification
// @Produce      json
// @Security     Bearer
// @Param        userId  path  string  true  "User ID"
// @Success      200  {object}  response.Response{data=dto.VerificationStatusResponse}
// @Failure      403  {object}  response.Response
// @Router       /verification/status/{userId} [get]
func (h *VerificationHandler) Status(c *gin.Context) {
	callerID, role, ok := currentUser(c)
	if !ok {
		return
	}
	target, ok := pathUUID(c, "userId")
	if !ok {
		return
	}

	status, err := h.statusUC.Execute(c.Request.Context(), target, callerID, role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToVerificationStatusResponse(status))
}

// Documents godoc
// @Summary      Documents uploaded by a user
// @Tags         verification
// @Produce      json
// @Security     Bearer
// @Param        userId  path  string  true  "User ID"
// @Success      200  {object}  response.Response{data=[]dto.DocumentResponse}
// @Failure      403  {object}  response.Response
// @Router       /verification/documents/{userId} [get]
func (h *VerificationHandler) Documents(c *gin.Context) {
	callerID, role, ok := currentUser(c)
	if !ok {
		return
	}
	target, ok := pathUUID(c, "userId")
	if !ok {
		return
	}

	docs, err := h.documentsUC.Execute(c.Request.Context(), target, callerID, role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToDocumentResponses(docs))
}

// Approve godoc
// @Summary      Approve a verification request
// @Tags         admin
// @Produce      json
// @Security     Bearer
// @Param        id   path      string  true  "Verification ID"
// @Success      200  {object}  response.Response{data=dto.VerificationResponse}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /verification/documents/{id}/approve [put]
func (h *VerificationHandler) Approve(c *gin.Context) {
	adminID, _, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	v, err := h.approveUC.Execute(c.Request.Context(), id, adminID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToVerificationResponse(v))
}

// Reject godoc
// @Summary      Reject a verification request
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        id       path  string                   true  "Verification ID"
// @Param        request  body  dto.RejectReasonRequest  true  "Reason"
// @Success      200  {object}  response.Response{data=dto.VerificationResponse}
// @Failure      400  {object}  response.Response
// @Router       /verification/documents/{id}/reject [put]
func (h *VerificationHandler) Reject(c *gin.Context) {
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

	v, err := h.rejectUC.Execute(c.Request.Context(), id, adminID, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToVerificationResponse(v))
}
