package handler

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/workmatch/marketplace-backend/internal/domain/valueobject"
	"github.com/workmatch/marketplace-backend/internal/http/middleware"
	"github.com/workmatch/marketplace-backend/internal/interface/http/response"
	"github.com/workmatch/marketplace-backend/internal/pkg/apperror"
)

// currentUser достаёт пользователя, положенного AuthMiddleware. Без него отвечает 401.
func currentUser(c *gin.Context) (uuid.UUID, valueobject.Role, bool) {
	rawID, exists := c.Get(middleware.ContextUserIDKey)
	if !exists {
		response.Unauthorized(c, "требуется авторизация")
		return uuid.Nil, "", false
	}
	userID, ok := rawID.(uuid.UUID)
	if !ok {
		response.Unauthorized(c, "требуется авторизация")
		return uuid.Nil, "", false
	}
	role, _ := c.Get(middleware.ContextRoleKey)
	r, _ := role.(valueobject.Role)
	return userID, r, true
}

// pathUUID разбирает параметр пути. UUIDValidator обычно уже проверил его.
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.BadRequest(c, "параметр "+name+" должен быть валидным UUID")
		return uuid.Nil, false
	}
	return id, true
}

func queryInt(c *gin.Context, key string, defaultValue int) int {
	value, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return defaultValue
	}
	return value
}

// queryUUID возвращает nil для пустого параметра и ошибку валидации для некорректного.
func queryUUID(c *gin.Context, key string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apperror.Validation("некорректный параметр "+key,
			apperror.FieldError{Field: key, Message: "должен быть UUID"})
	}
	return &id, nil
}

func queryDecimal(c *gin.Context, key string) (*decimal.Decimal, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, apperror.Validation("некорректный параметр "+key,
			apperror.FieldError{Field: key, Message: "должно быть числом"})
	}
	return &d, nil
}

func queryBool(c *gin.Context, key string) (*bool, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apperror.Validation("некорректный параметр "+key,
			apperror.FieldError{Field: key, Message: "ожидается true или false"})
	}
	return &b, nil
}

// queryDate принимает YYYY-MM-DD или RFC3339.
func queryDate(c *gin.Context, key string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, apperror.Validation("некорректный параметр "+key,
		apperror.FieldError{Field: key, Message: "ожидается дата YYYY-MM-DD"})
}
