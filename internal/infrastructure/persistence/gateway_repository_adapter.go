package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/workmatch/marketplace-backend/internal/domain/entity"
	"github.com/workmatch/marketplace-backend/internal/domain/valueobject"
	"github.com/workmatch/marketplace-backend/internal/pkg/apperror"
)

const gatewayColumns = `id, name, environment, fee_percent, fee_fixed, min_amount, max_amount, methods,
	is_active, created_at, updated_at`

type GatewayRepositoryAdapter struct {
	db sqlx.ExtContext
}

func NewGatewayRepositoryAdapter(db sqlx.ExtContext) *GatewayRepositoryAdapter {
	return &GatewayRepositoryAdapter{db: db}
}

func (r *GatewayRepositoryAdapter) Create(ctx context.Context, g *entity.PaymentGateway) error {
	methods := make(pq.StringArray, len(g.Methods))
	for i, m := range g.Methods {
		methods[i] = string(m)
	}
	query := `
		INSERT INTO payment_gateways (` + gatewayColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.ExecContext(ctx, query,
		g.ID, g.Name, string(g.Environment), g.FeePercent, g.FeeFixed, g.MinAmount, g.MaxAmount,
		methods, g.IsActive, g.CreatedAt, g.UpdatedAt,
	)
	if err != nil {
		return writeError(err, "не удалось сохранить шлюз", "активный шлюз уже существует")
	}
	return nil
}

func (r *GatewayRepositoryAdapter) FindActive(ctx context.Context) (*entity.PaymentGateway, error) {
	var row gatewayRow
	query := `SELECT ` + gatewayColumns + ` FROM payment_gateways WHERE is_active LIMIT 1`
	if err := sqlx.GetContext(ctx, r.db, &row, query); err != nil {
		return nil, readError(err, apperror.ErrGatewayNotFound, "не удалось получить активный шлюз")
	}
	return row.toEntity(), nil
}

func (r *GatewayRepositoryAdapter) DeactivateAll(ctx context.Context) error {
	query := `UPDATE payment_gateways SET is_active = FALSE, updated_at = NOW() WHERE is_active`
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось деактивировать шлюзы")
	}
	return nil
}

func (r *GatewayRepositoryAdapter) List(ctx context.Context) ([]*entity.PaymentGateway, error) {
	var rows []gatewayRow
	query := `SELECT ` + gatewayColumns + ` FROM payment_gateways ORDER BY created_at DESC`
	if err := sqlx.SelectContext(ctx, r.db, &rows, query); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить шлюзы")
	}
	gateways := make([]*entity.PaymentGateway, len(rows))
	for i := range rows {
		gateways[i] = rows[i].toEntity()
	}
	return gateways, nil
}

type gatewayRow struct {
	ID          uuid.UUID       `db:"id"`
	Name        string          `db:"name"`
	Environment string          `db:"environment"`
	FeePercent  decimal.Decimal `db:"fee_percent"`
	FeeFixed    decimal.Decimal `db:"fee_fixed"`
	MinAmount   decimal.Decimal `db:"min_amount"`
	MaxAmount   decimal.Decimal `db:"max_amount"`
	Methods     pq.StringArray  `db:"methods"`
	IsActive    bool            `db:"is_active"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
}

func (row *gatewayRow) toEntity() *entity.PaymentGateway {
	methods := make([]valueobject.PaymentMethod, len(row.Methods))
	for i, m := range row.Methods {
		methods[i] = valueobject.PaymentMethod(m)
	}
	return &entity.PaymentGateway{
		ID:          row.ID,
		Name:        row.Name,
		Environment: valueobject.GatewayEnvironment(row.Environment),
		FeePercent:  row.FeePercent,
		FeeFixed:    row.FeeFixed,
		MinAmount:   row.MinAmount,
		MaxAmount:   row.MaxAmount,
		Methods:     methods,
		IsActive:    row.IsActive,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}
