package payments

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/payment"
	"github.com/mercadopago/sdk-go/pkg/refund"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workmatch/marketplace-backend/internal/domain/entity"
	"github.com/workmatch/marketplace-backend/internal/domain/valueobject"
)

type fakePaymentAPI struct {
	created    []payment.Request
	authorized []payment.Request
	status   string
	detail   string
	captured []int
	err      error
}

func (f *fakePaymentAPI) Create(_ context.Context, req payment.Request) (*payment.Response, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, req)
	return &payment.Response{ID: 987654, Status: f.status, StatusDetail: f.detail}, nil
}

func (f *fakePaymentAPI) Authorize(_ context.Context, req payment.Request) (*payment.Response, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.authorized = append(f.authorized, req)
	return &payment.Response{ID: 987654, Status: f.status, StatusDetail: f.detail}, nil
}

func (f *fakePaymentAPI) Get(_ context.Context, id int) (*payment.Response, error) {
	return &payment.Response{ID: id, Status: f.status}, nil
}

func (f *fakePaymentAPI) Capture(_ context.Context, id int) (*payment.Response, error) {
	f.captured = append(f.captured, id)
	return &payment.Response{ID: id, Status: mpStatusApproved}, nil
}

type fakeRefundAPI struct {
	refunded []int
}

func (f *fakeRefundAPI) Create(_ context.Context, paymentID int) (*refund.Response, error) {
	f.refunded = append(f.refunded, paymentID)
	return &refund.Response{ID: 1}, nil
}

func charge(method valueobject.PaymentMethod, token string) entity.ChargeRequest {
	req := entity.ChargeRequest{
		PaymentID:    uuid.New(),
		Amount:       decimal.RequireFromString("150.75"),
		Method:       method,
		Installments: 1,
		Description:  "Pintar sala",
		PayerEmail:   "ana@example.com",
	}
	if token != "" {
		req.Details.CardToken = &token
	}
	return req
}

func txPayment(id string) *entity.Payment {
	return &entity.Payment{ID: uuid.New(), Amount: decimal.NewFromInt(100), TransactionID: &id}
}

func TestSimulatedProcessorApprovesAndDeclines(t *testing.T) {
	p := NewSimulatedProcessor()
	gw := entity.DefaultPaymentGateway()

	ok, err := p.Process(context.Background(), gw, charge(valueobject.PaymentMethodPix, ""))
	require.NoError(t, err)
	assert.True(t, ok.Approved)
	assert.Contains(t, ok.TransactionID, "txn_")

	declined, err := p.Process(context.Background(), gw, charge(valueobject.PaymentMethodCard, DeclinedCardToken))
	require.NoError(t, err)
	assert.False(t, declined.Approved)
	assert.Empty(t, declined.TransactionID)
}

func TestMercadoPagoProcessBuildsRequest(t *testing.T) {
	api := &fakePaymentAPI{status: mpStatusAuthorized}
	p := newMercadoPagoProcessor(api, &fakeRefundAPI{})
	req := charge(valueobject.PaymentMethodCard, "card-token")
	brand := "visa"
	req.Details.CardBrand = &brand

	result, err := p.Process(context.Background(), entity.DefaultPaymentGateway(), req)
	require.NoError(t, err)
	assert.True(t, result.Approved)
	assert.Equal(t, "987654", result.TransactionID)

	assert.Empty(t, api.created)
	require.Len(t, api.authorized, 1)
	sent := api.authorized[0]
	assert.InDelta(t, 150.75, sent.TransactionAmount, 0.0001)
	assert.Equal(t, "card-token", sent.Token)
	assert.Equal(t, "visa", sent.PaymentMethodID)
	assert.Equal(t, req.PaymentID.String(), sent.ExternalReference)
	require.NotNil(t, sent.Payer)
	assert.Equal(t, "ana@example.com", sent.Payer.Email)
}

func TestMercadoPagoPixIsCapturedAtOnce(t *testing.T) {
	api := &fakePaymentAPI{status: mpStatusPending}
	p := newMercadoPagoProcessor(api, &fakeRefundAPI{})

	result, err := p.Process(context.Background(), entity.DefaultPaymentGateway(), charge(valueobject.PaymentMethodPix, ""))
	require.NoError(t, err)
	assert.True(t, result.Approved)
	assert.Empty(t, api.authorized)
	require.Len(t, api.created, 1)
	assert.Equal(t, "pix", api.created[0].PaymentMethodID)
}

func TestPaymentClientAuthorizeSendsCaptureFalse(t *testing.T) {
	var (
		body   map[string]any
		header http.Header
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header = r.Header.Clone()
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":555,"status":"authorized","captured":false}`))
	}))
	defer srv.Close()

	cfg, err := config.New("test-token", config.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	client := newPaymentClient(cfg)
	client.url = srv.URL

	resp, err := client.Authorize(context.Background(), payment.Request{
		TransactionAmount: 150.75,
		Token:             "card-token",
		ExternalReference: "ref-1",
	})
	require.NoError(t, err)
	assert.Equal(t, 555, resp.ID)
	assert.Equal(t, mpStatusAuthorized, resp.Status)

	capture, ok := body["capture"]
	require.True(t, ok, "capture должен присутствовать в теле")
	assert.Equal(t, false, capture)
	assert.Equal(t, "card-token", body["token"])
	assert.Equal(t, "Bearer test-token", header.Get("Authorization"))
	assert.Equal(t, "ref-1", header.Get("X-Idempotency-Key"))
}

func TestPaymentClientAuthorizeSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"invalid token"}`))
	}))
	defer srv.Close()

	cfg, err := config.New("test-token", config.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	client := newPaymentClient(cfg)
	client.url = srv.URL

	_, err = client.Authorize(context.Background(), payment.Request{ExternalReference: "ref-2"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token")
}

func TestMercadoPagoRejectedIsDeclineNotError(t *testing.T) {
	api := &fakePaymentAPI{status: "rejected", detail: "cc_rejected_insufficient_amount"}
	p := newMercadoPagoProcessor(api, &fakeRefundAPI{})

	result, err := p.Process(context.Background(), entity.DefaultPaymentGateway(), charge(valueobject.PaymentMethodCard, "t"))
	require.NoError(t, err)
	assert.False(t, result.Approved)
	assert.Equal(t, "cc_rejected_insufficient_amount", result.DeclineReason)
}

func TestMercadoPagoTransportErrorPropagates(t *testing.T) {
	api := &fakePaymentAPI{err: errors.New("dial tcp: timeout")}
	p := newMercadoPagoProcessor(api, &fakeRefundAPI{})

	_, err := p.Process(context.Background(), entity.DefaultPaymentGateway(), charge(valueobject.PaymentMethodPix, ""))
	require.Error(t, err)
}

func TestMercadoPagoReleaseCapturesOnlyAuthorized(t *testing.T) {
	api := &fakePaymentAPI{status: mpStatusAuthorized}
	p := newMercadoPagoProcessor(api, &fakeRefundAPI{})
	require.NoError(t, p.Release(context.Background(), nil, txPayment("42")))
	assert.Equal(t, []int{42}, api.captured)

	api.status = mpStatusApproved
	api.captured = nil
	require.NoError(t, p.Release(context.Background(), nil, txPayment("43")))
	assert.Empty(t, api.captured)

	api.status = "cancelled"
	assert.Error(t, p.Release(context.Background(), nil, txPayment("44")))
}

func TestMercadoPagoRefund(t *testing.T) {
	refunds := &fakeRefundAPI{}
	p := newMercadoPagoProcessor(&fakePaymentAPI{}, refunds)

	require.NoError(t, p.Refund(context.Background(), nil, txPayment("77")))
	assert.Equal(t, []int{77}, refunds.refunded)

	assert.Error(t, p.Refund(context.Background(), nil, txPayment("txn_abc")))
}

func TestRouterPicksByGatewayName(t *testing.T) {
	r, err := NewRouter(true, "")
	require.NoError(t, err)

	gw := entity.DefaultPaymentGateway()
	gw.Name = entity.GatewayMercadoPago
	result, err := r.Process(context.Background(), gw, charge(valueobject.PaymentMethodPix, ""))
	require.NoError(t, err)
	assert.True(t, result.Approved)

	gw.Name = "stripe"
	_, err = r.Process(context.Background(), gw, charge(valueobject.PaymentMethodPix, ""))
	assert.Error(t, err)
}

func TestRouterRequiresTokenOutsideMock(t *testing.T) {
	_, err := NewRouter(false, "")
	assert.ErrorIs(t, err, ErrMissingMercadoPagoAccessToken)
}
