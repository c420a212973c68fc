package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/workmatch/marketplace-backend/internal/domain/repository"
	"github.com/workmatch/marketplace-backend/internal/domain/valueobject"
	"github.com/workmatch/marketplace-backend/internal/interface/http/dto"
	"github.com/workmatch/marketplace-backend/internal/interface/http/response"
	"github.com/workmatch/marketplace-backend/internal/usecase/service"
)

type ServiceHandler struct {
	createUC *service.CreateServiceUseCase
	updateUC *service.UpdateServiceUseCase
	cancelUC *service.CancelServiceUseCase
	getUC    *service.GetServiceUseCase
	searchUC *service.SearchServicesUseCase
}

func NewServiceHandler(
	createUC *service.CreateServiceUseCase,
	updateUC *service.UpdateServiceUseCase,
	cancelUC *service.CancelServiceUseCase,
	getUC *service.GetServiceUseCase,
	searchUC *service.SearchServicesUseCase,
) *ServiceHandler {
	return &ServiceHandler{
		createUC: createUC,
		updateUC: updateUC,
		cancelUC: cancelUC,
		getUC:    getUC,
		searchUC: searchUC,
	}
}

// Create godoc
// @Summary      Publish a service request
// @Tags         services
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        request body dto.CreateServiceRequest true "Service"
// @Success      201  {object}  response.Response{data=dto.ServiceResponse}
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /services [post]
func (h *ServiceHandler) Create(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	created, err := h.createUC.Execute(c.Request.Context(), service.CreateServiceInput{
		UserID:       userID,
		Title:        req.Title,
		Description:  req.Description,
		CategoryID:   req.CategoryID,
		BudgetMin:    req.BudgetMin,
		BudgetMax:    req.BudgetMax,
		LocationType: req.LocationType,
		Address:      req.Address,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToServiceResponse(created))
}

// Search godoc
// @Summary      Search services
// @Tags         services
// @Produce      json
// @Param        category  query  string  false  "Category ID"
// @Param        status    query  string  false  "Status"
// @Param        client    query  string  false  "Client ID"
// @Param        provider  query  string  false  "Provider ID"
// @Param        priceMin  query  number  false  "Minimum budget"
// @Param        priceMax  query  number  false  "Maximum budget"
// @Param        locality  query  string  false  "City substring"
// @Param        search    query  string  false  "Text in title or description"
// @Param        page      query  int     false  "Page"
// @Param        limit     query  int     false  "Page size"
// @Success      200  {object}  response.Response{data=response.Page{items=[]dto.ServiceResponse}}
// @Router       /services [get]
func (h *ServiceHandler) Search(c *gin.Context) {
	filter, err := parseServiceFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.searchUC.Execute(c.Request.Context(), service.SearchServicesInput{
		Filter: filter,
		Page:   queryInt(c, "page", 1),
		Limit:  queryInt(c, "limit", 0),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result, dto.ToServiceResponse)
}

func parseServiceFilter(c *gin.Context) (repository.ServiceFilter, error) {
	var (
		filter repository.ServiceFilter
		err    error
	)
	if filter.CategoryID, err = queryUUID(c, "category"); err != nil {
		return filter, err
	}
	if filter.ClientID, err = queryUUID(c, "client"); err != nil {
		return filter, err
	}
	if filter.ProviderID, err = queryUUID(c, "provider"); err != nil {
		return filter, err
	}
	if filter.PriceMin, err = queryDecimal(c, "priceMin"); err != nil {
		return filter, err
	}
	if filter.PriceMax, err = queryDecimal(c, "priceMax"); err != nil {
		return filter, err
	}
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status, err := valueobject.NewServiceStatus(raw)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}
	filter.Locality = strings.TrimSpace(c.Query("locality"))
	filter.Search = strings.TrimSpace(c.Query("search"))
	return filter, nil
}

// Get godoc
// @Summary      Get a service
// @Tags         services
// @Produce      json
// @Param        id   path      string  true  "Service ID"
// @Success      200  {object}  response.Response{data=dto.ServiceResponse}
// @Failure      404  {object}  response.Response
// @Router       /services/{id} [get]
func (h *ServiceHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	svc, err := h.getUC.Execute(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToServiceResponse(svc))
}

// Update godoc
// @Summary      Update an open service
// @Tags         services
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        id       path  string                    true  "Service ID"
// @Param        request  body  dto.UpdateServiceRequest  true  "Fields to change"
// @Success      200  {object}  response.Response{data=dto.ServiceResponse}
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /services/{id} [put]
func (h *ServiceHandler) Update(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	updated, err := h.updateUC.Execute(c.Request.Context(), service.UpdateServiceInput{
		ServiceID:    id,
		UserID:       userID,
		Title:        req.Title,
		Description:  req.Description,
		CategoryID:   req.CategoryID,
		BudgetMin:    req.BudgetMin,
		BudgetMax:    req.BudgetMax,
		LocationType: req.LocationType,
		Address:      req.Address,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToServiceResponse(updated))
}

// Cancel godoc
// @Summary      Cancel a service
// @Tags         services
// @Produce      json
// @Security     Bearer
// @Param        id   path      string  true  "Service ID"
// @Success      200  {object}  response.Response{data=dto.ServiceResponse}
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /services/{id}/cancel [put]
func (h *ServiceHandler) Cancel(c *gin.Context) {
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

	response.Success(c, dto.ToServiceResponse(canceled))
}
