package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/workmatch/marketplace-backend/internal/interface/http/dto"
	"github.com/workmatch/marketplace-backend/internal/interface/http/response"
	"github.com/workmatch/marketplace-backend/internal/service"
	"github.com/workmatch/marketplace-backend/internal/usecase/profile"
)

// AuthHandler регистрация, вход и профиль текущего пользователя.
type AuthHandler struct {
	auth           *service.AuthService
	updateProvider *profile.UpdateProviderProfileUseCase
	getProvider    *profile.GetProviderUseCase
}

func NewAuthHandler(
	auth *service.AuthService,
	updateProvider *profile.UpdateProviderProfileUseCase,
	getProvider *profile.GetProviderUseCase,
) *AuthHandler {
	return &AuthHandler{auth: auth, updateProvider: updateProvider, getProvider: getProvider}
}

func sessionMeta(c *gin.Context) service.SessionMeta {
	return service.SessionMeta{UserAgent: c.GetHeader("User-Agent"), IP: c.ClientIP()}
}

// Register godoc
// @Summary      Register
// @Description  Creates a client or provider account with its profile and returns tokens
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body dto.RegisterRequest true "Registration data"
// @Success      201  {object}  response.Response{data=dto.AuthResponse}
// @Failure      400  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.auth.Register(c.Request.Context(), service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Phone:    req.Phone,
		Role:     req.Role,
	}, sessionMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToAuthResponse(result))
}

// Login godoc
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body dto.LoginRequest true "Credentials"
// @Success      200  {object}  response.Response{data=dto.AuthResponse}
// @Failure      401  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.auth.Login(c.Request.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	}, sessionMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToAuthResponse(result))
}

// Refresh godoc
// @Summary      Refresh tokens
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body dto.RefreshRequest true "Refresh token"
// @Success      200  {object}  response.Response{data=dto.TokensResponse}
// @Failure      401  {object}  response.Response
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	pair, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken, sessionMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToTokensResponse(pair))
}

// Logout godoc
// @Summary      Logout
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body dto.RefreshRequest true "Refresh token"
// @Success      200  {object}  response.Response
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	if err := h.auth.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		response.Error(c, err)
		return
	}

	response.Message(c, http.StatusOK, "сессия завершена")
}

// Me godoc
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     Bearer
// @Success      200  {object}  response.Response{data=dto.AccountResponse}
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}

	account, err := h.auth.Me(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToAccountResponse(account))
}

// UpdateProviderProfile godoc
// @Summary      Update own provider profile
// @Tags         providers
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        request body dto.UpdateProviderRequest true "Profile fields"
// @Success      200  {object}  response.Response{data=dto.ProviderResponse}
// @Router       /providers/me [put]
func (h *AuthHandler) UpdateProviderProfile(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.UpdateProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	provider, err := h.updateProvider.Execute(c.Request.Context(), profile.UpdateProviderProfileInput{
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
		Experience:  req.Experience,
		CategoryIDs: req.CategoryIDs,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToProviderResponse(provider))
}

// GetProvider godoc
// @Summary      Provider public profile
// @Tags         providers
// @Produce      json
// @Param        id   path      string  true  "Provider ID"
// @Success      200  {object}  response.Response{data=dto.ProviderResponse}
// @Failure      404  {object}  response.Response
// @Router       /providers/{id} [get]
func (h *AuthHandler) GetProvider(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	provider, err := h.getProvider.Execute(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToProviderResponse(provider))
}
