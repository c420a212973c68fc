package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type DashboardStats struct {
	UsersTotal           int
	ClientsTotal         int
	ProvidersTotal       int
	ServicesByStatus     map[string]int
	ProposalsTotal       int
	PaymentsByStatus     map[string]int
	PendingVerifications int
	PendingRefunds       int
	MonthVolume          decimal.Decimal
	MonthFees            decimal.Decimal
}

type MonthlyTotals struct {
	Month  time.Time
	Count  int
	Volume decimal.Decimal
	Fees   decimal.Decimal
}

type StatsRepository interface {
	Dashboard(ctx context.Context, monthStart time.Time) (*DashboardStats, error)
	FinancialReport(ctx context.Context, from, to time.Time) ([]MonthlyTotals, error)
}
