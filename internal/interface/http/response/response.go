package response

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/workmatch/marketplace-backend/internal/logger"
	"github.com/workmatch/marketplace-backend/internal/pkg/apperror"
	"github.com/workmatch/marketplace-backend/internal/usecase/common"
)

// Response общий конверт ответа API.
type Response struct {
	Success bool                  `json:"success"`
	Data    interface{}           `json:"data,omitempty"`
	Message string                `json:"message,omitempty"`
	Code    string                `json:"code,omitempty"`
	Errors  []apperror.FieldError `json:"errors,omitempty"`
}

// Page страница списка.
type Page struct {
	Items      interface{} `json:"items"`
	Total      int         `json:"total"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	TotalPages int         `json:"total_pages"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Success: true, Data: data})
}

// Message ответ без данных, только с текстом.
func Message(c *gin.Context, status int, message string) {
	c.JSON(status, Response{Success: status < http.StatusBadRequest, Message: message})
}

// Paginated оборачивает страницу, уже преобразованную в DTO.
func Paginated[T, D any](c *gin.Context, result common.PageResult[T], convert func(T) D) {
	items := make([]D, 0, len(result.Items))
	for _, item := range result.Items {
		items = append(items, convert(item))
	}
	Success(c, Page{
		Items:      items,
		Total:      result.Total,
		Page:       result.Page,
		Limit:      result.Limit,
		TotalPages: result.TotalPages,
	})
}

// Error отдаёт ошибку приложения. Посторонние ошибки логируются и скрываются.
func Error(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		appErr = apperror.Wrap(err, apperror.ErrCodeInternal, "внутренняя ошибка сервера")
	}

	if appErr.HTTPStatus >= http.StatusInternalServerError {
		logger.Log.WithFields(logrus.Fields{
			"code":   appErr.Code,
			"error":  err.Error(),
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).Error("ошибка обработки запроса")
		c.AbortWithStatusJSON(appErr.HTTPStatus, Response{
			Success: false,
			Code:    string(appErr.Code),
			Message: "внутренняя ошибка сервера",
		})
		return
	}

	c.AbortWithStatusJSON(appErr.HTTPStatus, Response{
		Success: false,
		Code:    string(appErr.Code),
		Message: appErr.Message,
		Errors:  appErr.Details,
	})
}

// BindError переводит ошибки gin binding в список полей.
func BindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]apperror.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, apperror.FieldError{
				Field:   fieldName(fe),
				Message: ruleMessage(fe),
			})
		}
		Error(c, apperror.Validation("некорректные данные запроса", details...))
		return
	}
	Error(c, apperror.Validation("некорректное тело запроса"))
}

func BadRequest(c *gin.Context, message string) {
	Error(c, apperror.Validation(message))
}

func Unauthorized(c *gin.Context, message string) {
	Error(c, apperror.New(apperror.ErrCodeUnauthorized, message))
}

func Forbidden(c *gin.Context, message string) {
	Error(c, apperror.New(apperror.ErrCodeForbidden, message))
}

// fieldName возвращает имя поля в snake_case, как в JSON тегах запросов.
func fieldName(fe validator.FieldError) string {
	name := fe.Field()
	var b strings.Builder
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "обязательное поле"
	case "min":
		return "значение меньше допустимого: " + fe.Param()
	case "max":
		return "значение больше допустимого: " + fe.Param()
	case "gt":
		return "должно быть больше " + fe.Param()
	case "gte":
		return "должно быть не меньше " + fe.Param()
	case "lte":
		return "должно быть не больше " + fe.Param()
	case "oneof":
		return "допустимые значения: " + fe.Param()
	case "email":
		return "некорректный email"
	case "uuid":
		return "должен быть UUID"
	default:
		return "некорректное значение"
	}
}
