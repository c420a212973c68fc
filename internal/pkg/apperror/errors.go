package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrCodeNotFound      ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized  ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden     ErrorCode = "FORBIDDEN"
	ErrCodeInvalidState  ErrorCode = "INVALID_STATE"
	ErrCodeConflict      ErrorCode = "CONFLICT"
	ErrCodeValidation    ErrorCode = "VALIDATION_ERROR"
	ErrCodeInternal      ErrorCode = "INTERNAL_ERROR"
	ErrCodeDatabaseError ErrorCode = "DATABASE_ERROR"
)

// FieldError описывает ошибку конкретного поля запроса.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Cause      error
	Details    []FieldError
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is сравнивает ошибки по коду и сообщению, чтобы errors.Is работал с сентинелами.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Cause:      err,
	}
}

// Validation собирает ошибку валидации со списком полей.
func Validation(message string, details ...FieldError) *AppError {
	err := New(ErrCodeValidation, message)
	err.Details = details
	return err
}

func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeInvalidState, ErrCodeValidation:
		return http.StatusBadRequest
	case ErrCodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// CodeOf возвращает код ошибки или INTERNAL_ERROR для посторонних ошибок.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}

func IsNotFound(err error) bool {
	return CodeOf(err) == ErrCodeNotFound
}

func IsUnauthorized(err error) bool {
	return CodeOf(err) == ErrCodeUnauthorized
}

func IsForbidden(err error) bool {
	return CodeOf(err) == ErrCodeForbidden
}

func IsValidation(err error) bool {
	return CodeOf(err) == ErrCodeValidation
}

func IsInvalidState(err error) bool {
	return CodeOf(err) == ErrCodeInvalidState
}

func IsConflict(err error) bool {
	return CodeOf(err) == ErrCodeConflict
}

var (
	ErrServiceNotFound      = New(ErrCodeNotFound, "услуга не найдена")
	ErrProposalNotFound     = New(ErrCodeNotFound, "предложение не найдено")
	ErrPaymentNotFound      = New(ErrCodeNotFound, "платёж не найден")
	ErrRefundNotFound       = New(ErrCodeNotFound, "возврат не найден")
	ErrCategoryNotFound     = New(ErrCodeNotFound, "категория не найдена")
	ErrClientNotFound       = New(ErrCodeNotFound, "профиль клиента не найден")
	ErrProviderNotFound     = New(ErrCodeNotFound, "профиль исполнителя не найден")
	ErrUserNotFound         = New(ErrCodeNotFound, "пользователь не найден")
	ErrNotificationNotFound = New(ErrCodeNotFound, "уведомление не найдено")
	ErrVerificationNotFound = New(ErrCodeNotFound, "заявка на верификацию не найдена")
	ErrReviewNotFound       = New(ErrCodeNotFound, "отзыв не найден")
	ErrGatewayNotFound      = New(ErrCodeNotFound, "платёжный шлюз не настроен")
	ErrUnauthorized         = New(ErrCodeUnauthorized, "требуется авторизация")
	ErrInvalidCredentials   = New(ErrCodeUnauthorized, "неверные учетные данные")
	ErrForbidden            = New(ErrCodeForbidden, "недостаточно прав")
	ErrProposalNotPending   = New(ErrCodeInvalidState, "предложение уже не ожидает ответа")
)
