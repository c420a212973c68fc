package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/workmatch/marketplace-backend/internal/domain/entity"
	"github.com/workmatch/marketplace-backend/internal/service"
)

type RegisterRequest struct {
	Email    string  `json:"email" binding:"required"`
	Password string  `json:"password" binding:"required"`
	Name     string  `json:"name" binding:"required"`
	Phone    *string `json:"phone"`
	Role     string  `json:"role" binding:"required,oneof=client provider"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type TokensResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

type UserResponse struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Phone       *string    `json:"phone,omitempty"`
	Role        string     `json:"role"`
	IsBlocked   bool       `json:"is_blocked"`
	BlockReason *string    `json:"block_reason,omitempty"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type ClientResponse struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"user_id"`
	Name   string    `json:"name"`
	Phone  *string   `json:"phone,omitempty"`
}

type ProviderResponse struct {
	ID            uuid.UUID   `json:"id"`
	UserID        uuid.UUID   `json:"user_id"`
	Name          string      `json:"name"`
	Description   *string     `json:"description,omitempty"`
	Experience    *string     `json:"experience,omitempty"`
	CategoryIDs   []uuid.UUID `json:"category_ids"`
	RatingAverage string      `json:"rating_average"`
	RatingCount   int         `json:"rating_count"`
	IsVerified    bool        `json:"is_verified"`
}

type AccountResponse struct {
	User     UserResponse      `json:"user"`
	Client   *ClientResponse   `json:"client,omitempty"`
	Provider *ProviderResponse `json:"provider,omitempty"`
}

type AuthResponse struct {
	AccountResponse
	Tokens TokensResponse `json:"tokens"`
}

type UpdateProviderRequest struct {
	Name        *string      `json:"name"`
	Description *string      `json:"description"`
	Experience  *string      `json:"experience"`
	CategoryIDs *[]uuid.UUID `json:"category_ids"`
}

func ToUserResponse(u *entity.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Phone:       u.Phone,
		Role:        string(u.Role),
		IsBlocked:   u.IsBlocked,
		BlockReason: u.BlockReason,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}

func ToUserResponses(users []*entity.User) []UserResponse {
	return convertAll(users, ToUserResponse)
}

func ToProviderResponse(p *entity.Provider) ProviderResponse {
	ids := p.CategoryIDs
	if ids == nil {
		ids = []uuid.UUID{}
	}
	return ProviderResponse{
		ID:            p.ID,
		UserID:        p.UserID,
		Name:          p.Name,
		Description:   p.Description,
		Experience:    p.Experience,
		CategoryIDs:   ids,
		RatingAverage: money(p.RatingAverage),
		RatingCount:   p.RatingCount,
		IsVerified:    p.IsVerified,
	}
}

func ToAccountResponse(a *service.Account) AccountResponse {
	resp := AccountResponse{User: ToUserResponse(a.User)}
	if a.Client != nil {
		resp.Client = &ClientResponse{
			ID:     a.Client.ID,
			UserID: a.Client.UserID,
			Name:   a.Client.Name,
			Phone:  a.Client.Phone,
		}
	}
	if a.Provider != nil {
		provider := ToProviderResponse(a.Provider)
		resp.Provider = &provider
	}
	return resp
}

func ToTokensResponse(pair *service.TokenPair) TokensResponse {
	return TokensResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    int64(pair.ExpiresIn.Seconds()),
	}
}

func ToAuthResponse(r *service.AuthResult) AuthResponse {
	return AuthResponse{
		AccountResponse: ToAccountResponse(&r.Account),
		Tokens:          ToTokensResponse(r.TokenPair),
	}
}
