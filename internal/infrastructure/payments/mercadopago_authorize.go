package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/mperror"
	"github.com/mercadopago/sdk-go/pkg/payment"
)

const mpPaymentsURL = "https://api.mercadopago.com/v1/payments"

// authorizationRequest тело POST /v1/payments с явным capture=false.
// В payment.Request флаг объявлен с omitempty, и false туда не попадает.
type authorizationRequest struct {
	payment.Request
	Capture bool `json:"capture"`
}

// paymentClient дополняет клиент SDK созданием платежа без списания.
type paymentClient struct {
	payment.Client
	cfg *config.Config
	url string
}

func newPaymentClient(cfg *config.Config) *paymentClient {
	return &paymentClient{Client: payment.NewClient(cfg), cfg: cfg, url: mpPaymentsURL}
}

// Authorize создаёт карточный платёж в статусе authorized. Списание делает Capture.
func (c *paymentClient) Authorize(ctx context.Context, request payment.Request) (*payment.Response, error) {
	body, err := json.Marshal(authorizationRequest{Request: request})
	if err != nil {
		return nil, fmt.Errorf("payments: сериализация авторизации: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	req.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)
	req.Header.Set("X-Idempotency-Key", request.ExternalReference)

	res, err := c.cfg.Requester.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transport level error: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &mperror.ResponseError{StatusCode: res.StatusCode, Message: "error reading response body: " + err.Error(), Headers: res.Header}
	}
	if res.StatusCode > 399 {
		return nil, &mperror.ResponseError{StatusCode: res.StatusCode, Message: string(raw), Headers: res.Header}
	}

	var resp payment.Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("payments: ответ авторизации: %w", err)
	}
	return &resp, nil
}
