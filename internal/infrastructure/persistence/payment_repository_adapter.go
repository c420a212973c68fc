package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/workmatch/marketplace-backend/internal/domain/entity"
	"github.com/workmatch/marketplace-backend/internal/domain/repository"
	"github.com/workmatch/marketplace-backend/internal/domain/valueobject"
	"github.com/workmatch/marketplace-backend/internal/pkg/apperror"
)

const paymentColumns = `id, service_id, client_id, provider_id, gateway_id, amount, service_fee, status, method,
	card_last_digits, card_brand, pix_code, boleto_code, installments, installment_value,
	transaction_id, paid_at, processed_at, created_at, updated_at`

type PaymentRepositoryAdapter struct {
	db sqlx.ExtContext
}

func NewPaymentRepositoryAdapter(db sqlx.ExtContext) *PaymentRepositoryAdapter {
	return &PaymentRepositoryAdapter{db: db}
}

// Create сохраняет платёж. Токен карты в БД не пишется.
func (r *PaymentRepositoryAdapter) Create(ctx context.Context, p *entity.Payment) error {
	query := `
		INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.ServiceID, p.ClientID, p.ProviderID, p.GatewayID,
		valueobject.RoundMoney(p.Amount), valueobject.RoundMoney(p.ServiceFee),
		string(p.Status), string(p.Method),
		p.Details.CardLastDigits, p.Details.CardBrand, p.Details.PixCode, p.Details.BoletoCode,
		p.Installments, valueobject.RoundMoney(p.InstallmentValue),
		p.TransactionID, p.PaidAt, p.ProcessedAt, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return writeError(err, "не удалось создать платёж", "по услуге уже есть действующий платёж")
	}
	return nil
}

func (r *PaymentRepositoryAdapter) Update(ctx context.Context, p *entity.Payment) error {
	query := `
		UPDATE payments SET status = $2, transaction_id = $3, paid_at = $4, processed_at = $5, updated_at = $6
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, p.ID, string(p.Status), p.TransactionID, p.PaidAt, p.ProcessedAt, p.UpdatedAt)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось обновить платёж")
	}
	return expectAffected(res, apperror.ErrPaymentNotFound)
}

func (r *PaymentRepositoryAdapter) FindByID(ctx context.Context, id uuid.UUID) (*entity.Payment, error) {
	var row paymentRow
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	if err := sqlx.GetContext(ctx, r.db, &row, query, id); err != nil {
		return nil, readError(err, apperror.ErrPaymentNotFound, "не удалось получить платёж")
	}
	return row.toEntity(), nil
}

func (r *PaymentRepositoryAdapter) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Payment, error) {
	var row paymentRow
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1 FOR UPDATE`
	if err := sqlx.GetContext(ctx, r.db, &row, query, id); err != nil {
		return nil, readError(err, apperror.ErrPaymentNotFound, "не удалось заблокировать платёж")
	}
	return row.toEntity(), nil
}

func (r *PaymentRepositoryAdapter) List(ctx context.Context, filter repository.PaymentFilter) ([]*entity.Payment, int, error) {
	baseQuery := `FROM payments WHERE 1=1`
	args := []interface{}{}
	argNum := 1

	if filter.ClientID != nil {
		baseQuery += fmt.Sprintf(" AND client_id = $%d", argNum)
		args = append(args, *filter.ClientID)
		argNum++
	}
	if filter.ProviderID != nil {
		baseQuery += fmt.Sprintf(" AND provider_id = $%d", argNum)
		args = append(args, *filter.ProviderID)
		argNum++
	}
	if filter.Status != nil {
		baseQuery += fmt.Sprintf(" AND status = $%d", argNum)
		args = append(args, string(*filter.Status))
		argNum++
	}

	var total int
	if err := sqlx.GetContext(ctx, r.db, &total, "SELECT COUNT(*) "+baseQuery, args...); err != nil {
		return nil, 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось посчитать платежи")
	}

	limit, offset := pageArgs(filter.Limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, paymentColumns, baseQuery, argNum, argNum+1)
	args = append(args, limit, offset)

	var rows []paymentRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить платежи")
	}
	payments := make([]*entity.Payment, len(rows))
	for i := range rows {
		payments[i] = rows[i].toEntity()
	}
	return payments, total, nil
}

type paymentRow struct {
	ID               uuid.UUID       `db:"id"`
	ServiceID        uuid.UUID       `db:"service_id"`
	ClientID         uuid.UUID       `db:"client_id"`
	ProviderID       uuid.UUID       `db:"provider_id"`
	GatewayID        *uuid.UUID      `db:"gateway_id"`
	Amount           decimal.Decimal `db:"amount"`
	ServiceFee       decimal.Decimal `db:"service_fee"`
	Status           string          `db:"status"`
	Method           string          `db:"method"`
	CardLastDigits   *string         `db:"card_last_digits"`
	CardBrand        *string         `db:"card_brand"`
	PixCode          *string         `db:"pix_code"`
	BoletoCode       *string         `db:"boleto_code"`
	Installments     int             `db:"installments"`
	InstallmentValue decimal.Decimal `db:"installment_value"`
	TransactionID    *string         `db:"transaction_id"`
	PaidAt           *time.Time      `db:"paid_at"`
	ProcessedAt      *time.Time      `db:"processed_at"`
	CreatedAt        time.Time       `db:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at"`
}

func (row *paymentRow) toEntity() *entity.Payment {
	return &entity.Payment{
		ID:         row.ID,
		ServiceID:  row.ServiceID,
		ClientID:   row.ClientID,
		ProviderID: row.ProviderID,
		GatewayID:  row.GatewayID,
		Amount:     row.Amount,
		ServiceFee: row.ServiceFee,
		Status:     valueobject.PaymentStatus(row.Status),
		Method:     valueobject.PaymentMethod(row.Method),
		Details: entity.PaymentDetails{
			CardLastDigits: row.CardLastDigits,
			CardBrand:      row.CardBrand,
			PixCode:        row.PixCode,
			BoletoCode:     row.BoletoCode,
		},
		Installments:     row.Installments,
		InstallmentValue: row.InstallmentValue,
		TransactionID:    row.TransactionID,
		PaidAt:           row.PaidAt,
		ProcessedAt:      row.ProcessedAt,
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}
}
