package admin

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/workmatch/marketplace-backend/internal/domain/repository"
	"github.com/workmatch/marketplace-backend/internal/pkg/apperror"
)

// maxReportSpan ограничение на период финансового отчёта.
const maxReportSpan = 366 * 24 * time.Hour

type DashboardUseCase struct {
	stats repository.StatsRepository
	now   func() time.Time
}

func NewDashboardUseCase(stats repository.StatsRepository) *DashboardUseCase {
	return &DashboardUseCase{stats: stats, now: time.Now}
}

func (uc *DashboardUseCase) Execute(ctx context.Context) (*repository.DashboardStats, error) {
	return uc.stats.Dashboard(ctx, monthStart(uc.now()))
}

func monthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

type FinancialReport struct {
	From        time.Time
	To          time.Time
	Months      []repository.MonthlyTotals
	TotalCount  int
	TotalVolume decimal.Decimal
	TotalFees   decimal.Decimal
}

type FinancialReportUseCase struct {
	stats repository.StatsRepository
	now   func() time.Time
}

func NewFinancialReportUseCase(stats repository.StatsRepository) *FinancialReportUseCase {
	return &FinancialReportUseCase{stats: stats, now: time.Now}
}

// Execute строит помесячные итоги по завершённым платежам в [from, to).
// Без границ берутся последние 12 месяцев, включая текущий.
func (uc *FinancialReportUseCase) Execute(ctx context.Context, from, to *time.Time) (*FinancialReport, error) {
	end := monthStart(uc.now()).AddDate(0, 1, 0)
	if to != nil {
		end = to.UTC()
	}
	start := end.AddDate(-1, 0, 0)
	if from != nil {
		start = from.UTC()
	}

	if !start.Before(end) {
		return nil, apperror.Validation("начало периода должно быть раньше конца",
			apperror.FieldError{Field: "from", Message: "должно быть раньше to"})
	}
	if end.Sub(start) > maxReportSpan {
		return nil, apperror.Validation("период отчёта не может превышать год",
			apperror.FieldError{Field: "to", Message: "не больше 12 месяцев от from"})
	}

	months, err := uc.stats.FinancialReport(ctx, start, end)
	if err != nil {
		return nil, err
	}

	report := &FinancialReport{
		From:        start,
		To:          end,
		Months:      months,
		TotalVolume: decimal.Zero,
		TotalFees:   decimal.Zero,
	}
	for _, m := range months {
		report.TotalCount += m.Count
		report.TotalVolume = report.TotalVolume.Add(m.Volume)
		report.TotalFees = report.TotalFees.Add(m.Fees)
	}
	return report, nil
}
