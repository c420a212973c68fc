package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workmatch/marketplace-backend/internal/domain/valueobject"
	"github.com/workmatch/marketplace-backend/internal/interface/http/dto"
	"github.com/workmatch/marketplace-backend/internal/interface/http/response"
)

// confirmedFixture доводит услугу до подтверждения с предложением на 200.
func confirmedFixture(t *testing.T) *marketplaceFixture {
	t.Helper()
	f := newMarketplaceFixture(t)
	p := f.submit(t, f.provider, "200")
	w, _ := f.env.do(t, http.MethodPut, "/proposals/"+p.ID.String()+"/accept", nil, f.client)
	assertStatus(t, w, http.StatusOK)
	return f
}

func (f *marketplaceFixture) pay(t *testing.T, method string) dto.PaymentResponse {
	t.Helper()
	w, body := f.env.do(t, http.MethodPost, "/payments/escrow", map[string]any{
		"service_id": f.service.ID,
		"method":     method,
	}, f.client)
	assertStatus(t, w, http.StatusCreated)
	return decodeData[dto.PaymentResponse](t, body)
}

func TestEscrowPaymentLifecycle(t *testing.T) {
	f := confirmedFixture(t)

	p := f.pay(t, "pix")
	assert.Equal(t, "200.00", p.Amount)
	assert.Equal(t, "20.00", p.ServiceFee)
	assert.Equal(t, "processing", p.Status)
	assert.Equal(t, 1, p.Installments)
	require.NotNil(t, p.TransactionID)
	assert.Equal(t, valueobject.ServiceStatusInProgress, f.env.store.Service(f.service.ID).Status)
	assert.Contains(t, f.env.notifier.kinds(), valueobject.NotificationPaymentReceived)

	w, _ := f.env.do(t, http.MethodPost, "/payments/escrow", map[string]any{
		"service_id": f.service.ID,
		"method":     "pix",
	}, f.client)
	assertStatus(t, w, http.StatusBadRequest)

	w, body := f.env.do(t, http.MethodGet, "/payments/"+p.ID.String(), nil, f.provider)
	assertStatus(t, w, http.StatusOK)
	assert.Equal(t, p.ID, decodeData[dto.PaymentResponse](t, body).ID)

	w, body = f.env.do(t, http.MethodPut, "/payments/"+p.ID.String()+"/release", nil, f.client)
	assertStatus(t, w, http.StatusOK)
	assert.Equal(t, "completed", decodeData[dto.PaymentResponse](t, body).Status)
	assert.Equal(t, valueobject.ServiceStatusCompleted, f.env.store.Service(f.service.ID).Status)
	assert.Contains(t, f.env.notifier.kinds(), valueobject.NotificationPaymentReleased)

	w, _ = f.env.do(t, http.MethodPut, "/payments/"+p.ID.String()+"/release", nil, f.client)
	assertStatus(t, w, http.StatusBadRequest)
}

func TestEscrowPaymentRequiresConfirmedService(t *testing.T) {
	f := newMarketplaceFixture(t)

	w, _ := f.env.do(t, http.MethodPost, "/payments/escrow", map[string]any{
		"service_id": f.service.ID,
		"method":     "pix",
	}, f.client)
	assertStatus(t, w, http.StatusBadRequest)

	w, _ = f.env.do(t, http.MethodPost, "/payments/escrow", map[string]any{
		"service_id": f.service.ID,
		"method":     "cheque",
	}, f.client)
	assertStatus(t, w, http.StatusBadRequest)
	assert.Equal(t, 0, f.env.store.Count("payments"))
}

func TestEscrowPaymentDeclinedCard(t *testing.T) {
	f := confirmedFixture(t)

	w, _ := f.env.do(t, http.MethodPost, "/payments/escrow", map[string]any{
		"service_id": f.service.ID,
		"method":     "card",
		"card":       map[string]any{"token": "tok_declined", "last_digits": "4242", "brand": "visa"},
	}, f.client)
	assertStatus(t, w, http.StatusBadRequest)
	assert.Equal(t, 0, f.env.store.Count("payments"))
	assert.Equal(t, valueobject.ServiceStatusConfirmed, f.env.store.Service(f.service.ID).Status)
}

func TestRequestRefundEndpoint(t *testing.T) {
	f := confirmedFixture(t)
	p := f.pay(t, "pix")

	w, _ := f.env.do(t, http.MethodPost, "/payments/"+p.ID.String()+"/refund", map[string]any{}, f.client)
	assertStatus(t, w, http.StatusBadRequest)

	w, body := f.env.do(t, http.MethodPost, "/payments/"+p.ID.String()+"/refund", map[string]any{
		"reason": "serviço não iniciado",
	}, f.client)
	assertStatus(t, w, http.StatusCreated)
	refund := decodeData[dto.RefundResponse](t, body)
	assert.Equal(t, "pending", refund.Status)
	assert.Equal(t, 1, f.env.store.Count("refunds"))
	assert.Contains(t, f.env.notifier.kinds(), valueobject.NotificationRefundRequested)
}

func TestListPaymentsByRole(t *testing.T) {
	f := confirmedFixture(t)
	f.pay(t, "boleto")

	w, body := f.env.do(t, http.MethodGet, "/payments", nil, f.client)
	assertStatus(t, w, http.StatusOK)
	assert.Equal(t, 1, decodeData[response.Page](t, body).Total)

	w, body = f.env.do(t, http.MethodGet, "/payments", nil, f.provider)
	assertStatus(t, w, http.StatusOK)
	assert.Equal(t, 1, decodeData[response.Page](t, body).Total)

	w, body = f.env.do(t, http.MethodGet, "/payments?status=completed", nil, f.client)
	assertStatus(t, w, http.StatusOK)
	assert.Equal(t, 0, decodeData[response.Page](t, body).Total)

	w, _ = f.env.do(t, http.MethodGet, "/payments?role=admin", nil, f.client)
	assertStatus(t, w, http.StatusBadRequest)

	w, _ = f.env.do(t, http.MethodGet, "/payments?role=provider", nil, f.client)
	assertStatus(t, w, http.StatusForbidden)
}
