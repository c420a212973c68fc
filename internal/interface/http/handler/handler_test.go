package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/workmatch/marketplace-backend/internal/domain/entity"
	"github.com/workmatch/marketplace-backend/internal/domain/valueobject"
	"github.com/workmatch/marketplace-backend/internal/http/middleware"
	"github.com/workmatch/marketplace-backend/internal/infrastructure/payments"
	"github.com/workmatch/marketplace-backend/internal/pkg/apperror"
	"github.com/workmatch/marketplace-backend/internal/usecase/category"
	"github.com/workmatch/marketplace-backend/internal/usecase/memrepo"
	"github.com/workmatch/marketplace-backend/internal/usecase/notification"
	"github.com/workmatch/marketplace-backend/internal/usecase/payment"
	"github.com/workmatch/marketplace-backend/internal/usecase/proposal"
	serviceuc "github.com/workmatch/marketplace-backend/internal/usecase/service"
)

const (
	testUserHeader = "X-Test-User"
	testRoleHeader = "X-Test-Role"
)

type recordingNotifier struct {
	mu   sync.Mutex
	reqs []entity.NotificationRequest
}

func (n *recordingNotifier) Notify(_ context.Context, req entity.NotificationRequest) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reqs = append(n.reqs, req)
}

func (n *recordingNotifier) kinds() []valueobject.NotificationKind {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]valueobject.NotificationKind, 0, len(n.reqs))
	for _, r := range n.reqs {
		out = append(out, r.Kind)
	}
	return out
}

type envelope struct {
	Success bool                  `json:"success"`
	Data    json.RawMessage       `json:"data"`
	Message string                `json:"message"`
	Code    string                `json:"code"`
	Errors  []apperror.FieldError `json:"errors"`
}

type testEnv struct {
	store    *memrepo.Store
	notifier *recordingNotifier
	engine   *gin.Engine
}

// newTestEnv собирает обработчики поверх хранилища в памяти.
// Пользователь запроса берётся из тестовых заголовков, как это сделал бы AuthMiddleware.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memrepo.NewStore()
	uow := memrepo.NewUnitOfWork(store)
	repos := store.Repositories()
	notifier := &recordingNotifier{}
	categories := category.NewCache(repos.Categories, time.Minute)
	processor := payments.NewSimulatedProcessor()

	services := NewServiceHandler(
		serviceuc.NewCreateServiceUseCase(uow, categories, notifier),
		serviceuc.NewUpdateServiceUseCase(uow, categories),
		serviceuc.NewCancelServiceUseCase(uow, notifier),
		serviceuc.NewGetServiceUseCase(repos.Services),
		serviceuc.NewSearchServicesUseCase(repos.Services),
	)
	proposals := NewProposalHandler(
		proposal.NewSubmitProposalUseCase(uow, notifier),
		proposal.NewAcceptProposalUseCase(uow, notifier),
		proposal.NewRejectProposalUseCase(uow, notifier),
		proposal.NewCancelProposalUseCase(uow, notifier),
		proposal.NewListServiceProposalsUseCase(repos),
		proposal.NewGetProposalUseCase(repos),
		proposal.NewListMyProposalsUseCase(repos),
	)
	paymentsHandler := NewPaymentHandler(
		payment.NewInitiatePaymentUseCase(uow, repos.Gateways, processor, notifier),
		payment.NewListPaymentsUseCase(repos),
		payment.NewGetPaymentUseCase(repos),
		payment.NewReleasePaymentUseCase(uow, processor, notifier),
		payment.NewRequestRefundUseCase(uow, notifier),
	)
	notifications := NewNotificationHandler(
		notification.NewListNotificationsUseCase(repos.Notifications),
		notification.NewMarkReadUseCase(repos.Notifications),
		notification.NewMarkAllReadUseCase(repos.Notifications),
		notification.NewUnreadCountUseCase(repos.Notifications),
	)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if raw := c.GetHeader(testUserHeader); raw != "" {
			c.Set(middleware.ContextUserIDKey, uuid.MustParse(raw))
			c.Set(middleware.ContextRoleKey, valueobject.Role(c.GetHeader(testRoleHeader)))
		}
		c.Next()
	})

	r.POST("/services", services.Create)
	r.GET("/services", services.Search)
	r.GET("/services/:id", services.Get)
	r.PUT("/services/:id", services.Update)
	r.PUT("/services/:id/cancel", services.Cancel)

	r.POST("/proposals", proposals.Submit)
	r.GET("/proposals", proposals.ListByService)
	r.GET("/proposals/mine", proposals.Mine)
	r.GET("/proposals/:id", proposals.Get)
	r.PUT("/proposals/:id/accept", proposals.Accept)
	r.PUT("/proposals/:id/reject", proposals.Reject)
	r.PUT("/proposals/:id/cancel", proposals.Cancel)

	r.POST("/payments/escrow", paymentsHandler.Initiate)
	r.GET("/payments", paymentsHandler.List)
	r.GET("/payments/:id", paymentsHandler.Get)
	r.PUT("/payments/:id/release", paymentsHandler.Release)
	r.POST("/payments/:id/refund", paymentsHandler.RequestRefund)

	r.GET("/notifications", notifications.List)
	r.GET("/notifications/unread-count", notifications.UnreadCount)
	r.PUT("/notifications/read-all", notifications.MarkAllRead)
	r.PUT("/notifications/:id/read", notifications.MarkRead)

	return &testEnv{store: store, notifier: notifier, engine: r}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, user *entity.User) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != nil {
		req.Header.Set(testUserHeader, user.ID.String())
		req.Header.Set(testRoleHeader, string(user.Role))
	}

	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func remoteServiceBody(categoryID uuid.UUID) map[string]any {
	return map[string]any{
		"title":         "Pintar sala",
		"description":   "Sala de 20m2, duas demãos",
		"category_id":   categoryID,
		"budget_min":    "100",
		"budget_max":    "250.5",
		"location_type": "remote",
	}
}

func proposalBody(serviceID uuid.UUID, value string) map[string]any {
	return map[string]any{
		"service_id":     serviceID,
		"value":          value,
		"estimated_days": 3,
		"description":    "Material incluso",
	}
}

func assertStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, w.Code, w.Body.String())
	}
}
