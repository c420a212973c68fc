package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/workmatch/marketplace-backend/internal/domain/entity"
	"github.com/workmatch/marketplace-backend/internal/domain/repository"
	"github.com/workmatch/marketplace-backend/internal/usecase/admin"
)

type BlockUserRequest struct {
	Reason string `json:"reason" binding:"required,max=1000"`
}

type CreateGatewayRequest struct {
	Name        string          `json:"name" binding:"required"`
	Environment string          `json:"environment" binding:"omitempty,oneof=sandbox production"`
	FeePercent  decimal.Decimal `json:"fee_percent"`
	FeeFixed    decimal.Decimal `json:"fee_fixed"`
	MinAmount   decimal.Decimal `json:"min_amount"`
	MaxAmount   decimal.Decimal `json:"max_amount"`
	Methods     []string        `json:"methods" binding:"required,min=1"`
}

type GatewayResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Environment string    `json:"environment"`
	FeePercent  string    `json:"fee_percent"`
	FeeFixed    string    `json:"fee_fixed"`
	MinAmount   string    `json:"min_amount"`
	MaxAmount   string    `json:"max_amount"`
	Methods     []string  `json:"methods"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

type DashboardResponse struct {
	UsersTotal           int            `json:"users_total"`
	ClientsTotal         int            `json:"clients_total"`
	ProvidersTotal       int            `json:"providers_total"`
	ServicesByStatus     map[string]int `json:"services_by_status"`
	ProposalsTotal       int            `json:"proposals_total"`
	PaymentsByStatus     map[string]int `json:"payments_by_status"`
	PendingVerifications int            `json:"pending_verifications"`
	PendingRefunds       int            `json:"pending_refunds"`
	MonthVolume          string         `json:"month_volume"`
	MonthFees            string         `json:"month_fees"`
}

type MonthlyTotalsResponse struct {
	Month  string `json:"month"`
	Count  int    `json:"count"`
	Volume string `json:"volume"`
	Fees   string `json:"fees"`
}

type FinancialReportResponse struct {
	From        time.Time               `json:"from"`
	To          time.Time               `json:"to"`
	Months      []MonthlyTotalsResponse `json:"months"`
	TotalCount  int                     `json:"total_count"`
	TotalVolume string                  `json:"total_volume"`
	TotalFees   string                  `json:"total_fees"`
}

func ToGatewayResponse(g *entity.PaymentGateway) GatewayResponse {
	methods := make([]string, 0, len(g.Methods))
	for _, m := range g.Methods {
		methods = append(methods, string(m))
	}
	return GatewayResponse{
		ID:          g.ID,
		Name:        g.Name,
		Environment: string(g.Environment),
		FeePercent:  money(g.FeePercent),
		FeeFixed:    money(g.FeeFixed),
		MinAmount:   money(g.MinAmount),
		MaxAmount:   money(g.MaxAmount),
		Methods:     methods,
		IsActive:    g.IsActive,
		CreatedAt:   g.CreatedAt,
	}
}

func ToGatewayResponses(gateways []*entity.PaymentGateway) []GatewayResponse {
	return convertAll(gateways, ToGatewayResponse)
}

func ToDashboardResponse(s *repository.DashboardStats) DashboardResponse {
	return DashboardResponse{
		UsersTotal:           s.UsersTotal,
		ClientsTotal:         s.ClientsTotal,
		ProvidersTotal:       s.ProvidersTotal,
		ServicesByStatus:     s.ServicesByStatus,
		ProposalsTotal:       s.ProposalsTotal,
		PaymentsByStatus:     s.PaymentsByStatus,
		PendingVerifications: s.PendingVerifications,
		PendingRefunds:       s.PendingRefunds,
		MonthVolume:          money(s.MonthVolume),
		MonthFees:            money(s.MonthFees),
	}
}

func ToFinancialReportResponse(r *admin.FinancialReport) FinancialReportResponse {
	months := make([]MonthlyTotalsResponse, 0, len(r.Months))
	for _, m := range r.Months {
		months = append(months, MonthlyTotalsResponse{
			Month:  m.Month.Format("2006-01"),
			Count:  m.Count,
			Volume: money(m.Volume),
			Fees:   money(m.Fees),
		})
	}
	return FinancialReportResponse{
		From:        r.From,
		To:          r.To,
		Months:      months,
		TotalCount:  r.TotalCount,
		TotalVolume: money(r.TotalVolume),
		TotalFees:   money(r.TotalFees),
	}
}
