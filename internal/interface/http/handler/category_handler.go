package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/workmatch/marketplace-backend/internal/interface/http/dto"
	"github.com/workmatch/marketplace-backend/internal/interface/http/response"
	"github.com/workmatch/marketplace-backend/internal/usecase/category"
)

type CategoryHandler struct {
	listUC   *category.ListCategoriesUseCase
	getUC    *category.GetCategoryUseCase
	createUC *category.CreateCategoryUseCase
	updateUC *category.UpdateCategoryUseCase
	statusUC *category.SetCategoryStatusUseCase
	deleteUC *category.DeleteCategoryUseCase
}

func NewCategoryHandler(
	listUC *category.ListCategoriesUseCase,
	getUC *category.GetCategoryUseCase,
	createUC *category.CreateCategoryUseCase,
	updateUC *category.UpdateCategoryUseCase,
	statusUC *category.SetCategoryStatusUseCase,
	deleteUC *category.DeleteCategoryUseCase,
) *CategoryHandler {
	return &CategoryHandler{
		listUC:   listUC,
		getUC:    getUC,
		createUC: createUC,
		updateUC: updateUC,
		statusUC: statusUC,
		deleteUC: deleteUC,
	}
}

// List godoc
// @Summary      List active categories
// @Tags         categories
// @Produce      json
// @Success      200  {object}  response.Response{data=[]dto.CategoryResponse}
// @Router       /categories [get]
func (h *CategoryHandler) List(c *gin.Context) {
	h.list(c, false)
}

// ListAll godoc
// @Summary      List all categories including inactive
// @Tags         admin
// @Produce      json
// @Security     Bearer
// @Success      200  {object}  response.Response{data=[]dto.CategoryResponse}
// @Router       /admin/categories [get]
func (h *CategoryHandler) ListAll(c *gin.Context) {
	h.list(c, true)
}

func (h *CategoryHandler) list(c *gin.Context, includeInactive bool) {
	categories, err := h.listUC.Execute(c.Request.Context(), includeInactive)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToCategoryResponses(categories))
}

// Get godoc
// @Summary      Get a category
// @Tags         categories
// @Produce      json
// @Param        id   path      string  true  "Category ID"
// @Success      200  {object}  response.Response{data=dto.CategoryResponse}
// @Failure      404  {object}  response.Response
// @Router       /categories/{id} [get]
func (h *CategoryHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	cat, err := h.getUC.Execute(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToCategoryResponse(cat))
}

// Create godoc
// @Summary      Create a category
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        request body dto.CreateCategoryRequest true "Category"
// @Success      201  {object}  response.Response{data=dto.CategoryResponse}
// @Failure      400  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /admin/categories [post]
func (h *CategoryHandler) Create(c *gin.Context) {
	var req dto.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	cat, err := h.createUC.Execute(c.Request.Context(), category.CreateCategoryInput{
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.ToCategoryResponse(cat))
}

// Update godoc
// @Summary      Update a category
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        id       path  string                     true  "Category ID"
// @Param        request  body  dto.UpdateCategoryRequest  true  "Fields to change"
// @Success      200  {object}  response.Response{data=dto.CategoryResponse}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /admin/categories/{id} [put]
func (h *CategoryHandler) Update(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	cat, err := h.updateUC.Execute(c.Request.Context(), category.UpdateCategoryInput{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToCategoryResponse(cat))
}

// SetStatus godoc
// @Summary      Activate or deactivate a category
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        id       path  string                     true  "Category ID"
// @Param        request  body  dto.CategoryStatusRequest  true  "Status"
// @Success      200  {object}  response.Response{data=dto.CategoryResponse}
// @Router       /admin/categories/{id}/status [put]
func (h *CategoryHandler) SetStatus(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req dto.CategoryStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	cat, err := h.statusUC.Execute(c.Request.Context(), id, req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToCategoryResponse(cat))
}

// Delete godoc
// @Summary      Delete an unused category
// @Tags         admin
// @Produce      json
// @Security     Bearer
// @Param        id   path      string  true  "Category ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /admin/categories/{id} [delete]
func (h *CategoryHandler) Delete(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.deleteUC.Execute(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "категория удалена")
}
