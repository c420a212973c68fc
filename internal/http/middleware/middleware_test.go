package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workmatch/marketplace-backend/internal/domain/entity"
	"github.com/workmatch/marketplace-backend/internal/domain/valueobject"
	"github.com/workmatch/marketplace-backend/internal/service"
)

func newTokens() *service.TokenManager {
	return service.NewTokenManager("access-secret-access-secret-0001", "refresh-secret-refresh-secret-01", time.Minute, time.Hour)
}

// echoIdentity отдаёт то, что middleware положил в контекст.
func echoIdentity(c *gin.Context) {
	userID, _ := c.Get(ContextUserIDKey)
	role, _ := c.Get(ContextRoleKey)
	c.JSON(http.StatusOK, gin.H{"user": userID, "role": role})
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokens := newTokens()
	user := entity.NewUser("ana@example.com", "Ana", "hash", valueobject.RoleProvider)
	pair, _, err := tokens.GeneratePair(user)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", AuthMiddleware(tokens), echoIdentity)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer garbage", http.StatusUnauthorized},
		{"refresh token", "Bearer " + pair.RefreshToken, http.StatusUnauthorized},
		{"access token", "Bearer " + pair.AccessToken, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := serve(r, req)
			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusOK {
				assert.Contains(t, w.Body.String(), user.ID.String())
				assert.Contains(t, w.Body.String(), `"role":"provider"`)
			}
		})
	}
}

func TestRequireRoles(t *testing.T) {
	gin.SetMode(gin.TestMode)

	withRole := func(role valueobject.Role) gin.HandlerFunc {
		return func(c *gin.Context) {
			if role != "" {
				c.Set(ContextUserIDKey, uuid.New())
				c.Set(ContextRoleKey, role)
			}
			c.Next()
		}
	}

	tests := []struct {
		name string
		role valueobject.Role
		want int
	}{
		{"anonymous", "", http.StatusUnauthorized},
		{"wrong role", valueobject.RoleProvider, http.StatusForbidden},
		{"client", valueobject.RoleClient, http.StatusOK},
		{"admin", valueobject.RoleAdmin, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/x", withRole(tt.role), RequireRoles(valueobject.RoleClient, valueobject.RoleAdmin), echoIdentity)
			w := serve(r, httptest.NewRequest(http.MethodGet, "/x", nil))
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestUUIDValidator(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/services/:id", UUIDValidator("id"), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/services/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = serve(r, httptest.NewRequest(http.MethodGet, "/services/123", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION")
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/login", RateLimitMiddleware(2, time.Minute), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		w := serve(r, httptest.NewRequest(http.MethodPost, "/login", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}
	w := serve(r, httptest.NewRequest(http.MethodPost, "/login", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
}
