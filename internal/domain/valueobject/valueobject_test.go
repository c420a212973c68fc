package valueobject

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestDefaultFeePolicy(t *testing.T) {
	fee := DefaultFeePolicy().Fee(decimal.NewFromInt(1000))
	if !fee.Equal(decimal.RequireFromString("100.00")) {
		t.Fatalf("ожидалась комиссия 100.00, получено %s", fee.StringFixed(2))
	}
}

func TestPercentFeePolicyRounding(t *testing.T) {
	policy := PercentFeePolicy{
		Percent: decimal.RequireFromString("3.99"),
		Fixed:   decimal.RequireFromString("0.39"),
	}

	fee := policy.Fee(decimal.RequireFromString("123.45"))
	// 123.45 * 3.99 / 100 + 0.39 = 5.315655
	if got := fee.StringFixed(2); got != "5.32" {
		t.Fatalf("ожидалось 5.32, получено %s", got)
	}
}

func TestServiceStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to ServiceStatus
		allowed  bool
	}{
		{ServiceStatusOpen, ServiceStatusNegotiating, true},
		{ServiceStatusNegotiating, ServiceStatusOpen, true},
		{ServiceStatusNegotiating, ServiceStatusConfirmed, true},
		{ServiceStatusConfirmed, ServiceStatusInProgress, true},
		{ServiceStatusInProgress, ServiceStatusCompleted, true},
		{ServiceStatusOpen, ServiceStatusCanceled, true},
		{ServiceStatusConfirmed, ServiceStatusCanceled, false},
		{ServiceStatusInProgress, ServiceStatusCanceled, false},
		{ServiceStatusCompleted, ServiceStatusOpen, false},
		{ServiceStatusOpen, ServiceStatusConfirmed, false},
	}

	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.allowed {
			t.Errorf("%s -> %s: ожидалось %v, получено %v", tc.from, tc.to, tc.allowed, got)
		}
	}
}

func TestServiceStatusHasProvider(t *testing.T) {
	with := []ServiceStatus{ServiceStatusConfirmed, ServiceStatusInProgress, ServiceStatusCompleted}
	without := []ServiceStatus{ServiceStatusOpen, ServiceStatusNegotiating, ServiceStatusCanceled}

	for _, s := range with {
		if !s.HasProvider() {
			t.Errorf("%s должен требовать исполнителя", s)
		}
	}
	for _, s := range without {
		if s.HasProvider() {
			t.Errorf("%s не должен требовать исполнителя", s)
		}
	}
}

func TestNewLocationRequiresAddressOnSite(t *testing.T) {
	if _, err := NewLocation("on_site", nil); err == nil {
		t.Fatal("ожидалась ошибка для on_site без адреса")
	}
	if _, err := NewLocation("on_site", &Address{Street: "Rua A", City: "Recife"}); err == nil {
		t.Fatal("ожидалась ошибка без штата")
	}

	loc, err := NewLocation("remote", &Address{})
	if err != nil {
		t.Fatalf("remote без адреса должен быть валиден: %v", err)
	}
	if loc.Address != nil {
		t.Fatal("пустой адрес должен отбрасываться")
	}
}

func TestNewBudget(t *testing.T) {
	if _, err := NewBudget(decimal.NewFromInt(500), decimal.NewFromInt(100)); err == nil {
		t.Fatal("min > max должен быть ошибкой")
	}

	b, err := NewBudget(decimal.RequireFromString("100.005"), decimal.NewFromInt(200))
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if b.Min.StringFixed(2) != "100.01" {
		t.Fatalf("бюджет должен округляться до копеек, получено %s", b.Min.String())
	}
}
