package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/workmatch/marketplace-backend/internal/domain/valueobject"
	"github.com/workmatch/marketplace-backend/internal/pkg/apperror"
)

// Имена провайдеров, которые умеет вызывать платёжный роутер.
const (
	GatewaySimulated   = "simulated"
	GatewayMercadoPago = "mercadopago"
)

// PaymentGateway запись конфигурации шлюза. Активной может быть только одна.
type PaymentGateway struct {
	ID          uuid.UUID
	Name        string
	Environment valueobject.GatewayEnvironment
	FeePercent  decimal.Decimal
	FeeFixed    decimal.Decimal
	MinAmount   decimal.Decimal
	MaxAmount   decimal.Decimal
	Methods     []valueobject.PaymentMethod
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DefaultPaymentGateway используется, если в БД нет активной записи.
// ID нулевой: такой шлюз не сохраняется и не попадает в платёж.
// Лимитов по сумме у него нет, действует только комиссия по умолчанию.
func DefaultPaymentGateway() *PaymentGateway {
	return &PaymentGateway{
		Name:        GatewaySimulated,
		Environment: valueobject.GatewayEnvironmentSandbox,
		FeePercent:  valueobject.DefaultFeePercent,
		FeeFixed:    decimal.Zero,
		Methods: []valueobject.PaymentMethod{
			valueobject.PaymentMethodCard,
			valueobject.PaymentMethodPix,
			valueobject.PaymentMethodBoleto,
		},
		IsActive: true,
	}
}

type GatewaySettings struct {
	Name        string
	Environment valueobject.GatewayEnvironment
	FeePercent  decimal.Decimal
	FeeFixed    decimal.Decimal
	MinAmount   decimal.Decimal
	MaxAmount   decimal.Decimal
	Methods     []valueobject.PaymentMethod
}

func NewPaymentGateway(s GatewaySettings) (*PaymentGateway, error) {
	var details []apperror.FieldError
	name := strings.ToLower(strings.TrimSpace(s.Name))
	if name != GatewaySimulated && name != GatewayMercadoPago {
		details = append(details, apperror.FieldError{Field: "name", Message: "допустимые значения: simulated, mercadopago"})
	}
	if s.FeePercent.IsNegative() || s.FeePercent.GreaterThan(decimal.NewFromInt(100)) {
		details = append(details, apperror.FieldError{Field: "fee_percent", Message: "должен быть в диапазоне 0..100"})
	}
	if s.FeeFixed.IsNegative() {
		details = append(details, apperror.FieldError{Field: "fee_fixed", Message: "не может быть отрицательной"})
	}
	if !s.MinAmount.IsPositive() || s.MaxAmount.LessThan(s.MinAmount) {
		details = append(details, apperror.FieldError{Field: "max_amount", Message: "должен быть не меньше min_amount"})
	}
	if len(s.Methods) == 0 {
		details = append(details, apperror.FieldError{Field: "methods", Message: "нужен хотя бы один способ оплаты"})
	}
	if len(details) > 0 {
		return nil, apperror.Validation("некорректная конфигурация шлюза", details...)
	}

	now := time.Now().UTC()
	return &PaymentGateway{
		ID:          uuid.New(),
		Name:        name,
		Environment: s.Environment,
		FeePercent:  s.FeePercent,
		FeeFixed:    valueobject.RoundMoney(s.FeeFixed),
		MinAmount:   valueobject.RoundMoney(s.MinAmount),
		MaxAmount:   valueobject.RoundMoney(s.MaxAmount),
		Methods:     s.Methods,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// FeePolicy строит политику комиссии из настроек шлюза.
func (g *PaymentGateway) FeePolicy() valueobject.FeePolicy {
	return valueobject.PercentFeePolicy{Percent: g.FeePercent, Fixed: g.FeeFixed}
}

// IsPersisted отличает запись из БД от шлюза по умолчанию.
func (g *PaymentGateway) IsPersisted() bool {
	return g.ID != uuid.Nil
}

// CheckAmount проверяет поддержку способа оплаты и, для настроенного шлюза, лимиты суммы.
func (g *PaymentGateway) CheckAmount(amount decimal.Decimal, method valueobject.PaymentMethod) error {
	supported := false
	for _, m := range g.Methods {
		if m == method {
			supported = true
			break
		}
	}
	if !supported {
		return apperror.Validation("способ оплаты не поддерживается шлюзом",
			apperror.FieldError{Field: "method", Message: string(method) + " недоступен"})
	}
	if !g.IsPersisted() {
		return nil
	}
	if amount.LessThan(g.MinAmount) || amount.GreaterThan(g.MaxAmount) {
		return apperror.New(apperror.ErrCodeInvalidState,
			"сумма вне лимитов шлюза: от "+g.MinAmount.StringFixed(2)+" до "+g.MaxAmount.StringFixed(2))
	}
	return nil
}
