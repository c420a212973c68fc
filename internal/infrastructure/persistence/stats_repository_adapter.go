package persistence

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/workmatch/marketplace-backend/internal/domain/repository"
	"github.com/workmatch/marketplace-backend/internal/pkg/apperror"
)

// StatsRepositoryAdapter агрегаты для панели администратора. Работает только на пуле.
type StatsRepositoryAdapter struct {
	db *sqlx.DB
}

func NewStatsRepositoryAdapter(db *sqlx.DB) *StatsRepositoryAdapter {
	return &StatsRepositoryAdapter{db: db}
}

type statusCount struct {
	Status string `db:"status"`
	Count  int    `db:"count"`
}

func (r *StatsRepositoryAdapter) Dashboard(ctx context.Context, monthStart time.Time) (*repository.DashboardStats, error) {
	stats := &repository.DashboardStats{
		ServicesByStatus: map[string]int{},
		PaymentsByStatus: map[string]int{},
	}

	var counters struct {
		Users         int `db:"users"`
		Clients       int `db:"clients"`
		Providers     int `db:"providers"`
		Proposals     int `db:"proposals"`
		Verifications int `db:"verifications"`
		Refunds       int `db:"refunds"`
	}
	countersQuery := `
		SELECT
			(SELECT COUNT(*) FROM users) AS users,
			(SELECT COUNT(*) FROM clients) AS clients,
			(SELECT COUNT(*) FROM providers) AS providers,
			(SELECT COUNT(*) FROM proposals) AS proposals,
			(SELECT COUNT(*) FROM verifications WHERE status = 'pending') AS verifications,
			(SELECT COUNT(*) FROM refunds WHERE status IN ('pending', 'in_review')) AS refunds
	`
	if err := r.db.GetContext(ctx, &counters, countersQuery); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить счётчики")
	}
	stats.UsersTotal = counters.Users
	stats.ClientsTotal = counters.Clients
	stats.ProvidersTotal = counters.Providers
	stats.ProposalsTotal = counters.Proposals
	stats.PendingVerifications = counters.Verifications
	stats.PendingRefunds = counters.Refunds

	var services []statusCount
	if err := r.db.SelectContext(ctx, &services, `SELECT status, COUNT(*) AS count FROM services GROUP BY status`); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить статистику услуг")
	}
	for _, s := range services {
		stats.ServicesByStatus[s.Status] = s.Count
	}

	var payments []statusCount
	if err := r.db.SelectContext(ctx, &payments, `SELECT status, COUNT(*) AS count FROM payments GROUP BY status`); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить статистику платежей")
	}
	for _, p := range payments {
		stats.PaymentsByStatus[p.Status] = p.Count
	}

	var month struct {
		Volume decimal.Decimal `db:"volume"`
		Fees   decimal.Decimal `db:"fees"`
	}
	monthQuery := `
		SELECT COALESCE(SUM(amount), 0) AS volume, COALESCE(SUM(service_fee), 0) AS fees
		FROM payments
		WHERE status IN ('processing', 'completed') AND created_at >= $1
	`
	if err := r.db.GetContext(ctx, &month, monthQuery, monthStart); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить оборот за месяц")
	}
	stats.MonthVolume = month.Volume
	stats.MonthFees = month.Fees
	return stats, nil
}

// FinancialReport помесячные итоги по оплаченным и освобождённым платежам в [from, to).
func (r *StatsRepositoryAdapter) FinancialReport(ctx context.Context, from, to time.Time) ([]repository.MonthlyTotals, error) {
	var rows []struct {
		Month  time.Time       `db:"month"`
		Count  int             `db:"count"`
		Volume decimal.Decimal `db:"volume"`
		Fees   decimal.Decimal `db:"fees"`
	}
	query := `
		SELECT date_trunc('month', created_at) AS month,
			COUNT(*) AS count,
			COALESCE(SUM(amount), 0) AS volume,
			COALESCE(SUM(service_fee), 0) AS fees
		FROM payments
		WHERE status IN ('processing', 'completed') AND created_at >= $1 AND created_at < $2
		GROUP BY 1
		ORDER BY 1
	`
	if err := r.db.SelectContext(ctx, &rows, query, from, to); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось построить финансовый отчёт")
	}
	report := make([]repository.MonthlyTotals, len(rows))
	for i, row := range rows {
		report[i] = repository.MonthlyTotals{Month: row.Month, Count: row.Count, Volume: row.Volume, Fees: row.Fees}
	}
	return report, nil
}
