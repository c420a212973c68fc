package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/workmatch/marketplace-backend/internal/domain/entity"
	"github.com/workmatch/marketplace-backend/internal/domain/repository"
	"github.com/workmatch/marketplace-backend/internal/domain/valueobject"
	"github.com/workmatch/marketplace-backend/internal/pkg/apperror"
)

const serviceColumns = `
	s.id, s.client_id, s.provider_id, s.category_id, s.title, s.description, s.status,
	s.budget_min, s.budget_max, s.location_type, s.address, s.published_at, s.completed_at,
	s.created_at, s.updated_at,
	ARRAY(SELECT p.id::text FROM proposals p WHERE p.service_id = s.id ORDER BY p.submitted_at) AS proposal_ids`

type ServiceRepositoryAdapter struct {
	db sqlx.ExtContext
}

func NewServiceRepositoryAdapter(db sqlx.ExtContext) *ServiceRepositoryAdapter {
	return &ServiceRepositoryAdapter{db: db}
}

func (r *ServiceRepositoryAdapter) Create(ctx context.Context, s *entity.Service) error {
	address, err := marshalAddress(s.Location.Address)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO services (id, client_id, provider_id, category_id, title, description, status,
			budget_min, budget_max, location_type, address, city, published_at, completed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	_, err = r.db.ExecContext(ctx, query,
		s.ID, s.ClientID, s.ProviderID, s.CategoryID, s.Title, s.Description, string(s.Status),
		s.Budget.Min, s.Budget.Max, string(s.Location.Type), address, s.Location.City(),
		s.PublishedAt, s.CompletedAt, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось создать услугу")
	}
	return nil
}

func (r *ServiceRepositoryAdapter) Update(ctx context.Context, s *entity.Service) error {
	address, err := marshalAddress(s.Location.Address)
	if err != nil {
		return err
	}
	query := `
		UPDATE services SET provider_id = $2, category_id = $3, title = $4, description = $5, status = $6,
			budget_min = $7, budget_max = $8, location_type = $9, address = $10, city = $11,
			completed_at = $12, updated_at = $13
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query,
		s.ID, s.ProviderID, s.CategoryID, s.Title, s.Description, string(s.Status),
		s.Budget.Min, s.Budget.Max, string(s.Location.Type), address, s.Location.City(),
		s.CompletedAt, s.UpdatedAt,
	)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось обновить услугу")
	}
	return expectAffected(res, apperror.ErrServiceNotFound)
}

func (r *ServiceRepositoryAdapter) FindByID(ctx context.Context, id uuid.UUID) (*entity.Service, error) {
	var row serviceRow
	query := `SELECT ` + serviceColumns + ` FROM services s WHERE s.id = $1`
	if err := sqlx.GetContext(ctx, r.db, &row, query, id); err != nil {
		return nil, readError(err, apperror.ErrServiceNotFound, "не удалось получить услугу")
	}
	return row.toEntity()
}

func (r *ServiceRepositoryAdapter) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Service, error) {
	var locked uuid.UUID
	if err := sqlx.GetContext(ctx, r.db, &locked, `SELECT id FROM services WHERE id = $1 FOR UPDATE`, id); err != nil {
		return nil, readError(err, apperror.ErrServiceNotFound, "не удалось заблокировать услугу")
	}
	return r.FindByID(ctx, id)
}

func (r *ServiceRepositoryAdapter) Search(ctx context.Context, filter repository.ServiceFilter) ([]*entity.Service, int, error) {
	baseQuery := `FROM services s WHERE 1=1`
	args := []interface{}{}
	argNum := 1

	if filter.CategoryID != nil {
		baseQuery += fmt.Sprintf(" AND s.category_id = $%d", argNum)
		args = append(args, *filter.CategoryID)
		argNum++
	}
	if filter.Status != nil {
		baseQuery += fmt.Sprintf(" AND s.status = $%d", argNum)
		args = append(args, string(*filter.Status))
		argNum++
	}
	if filter.ClientID != nil {
		baseQuery += fmt.Sprintf(" AND s.client_id = $%d", argNum)
		args = append(args, *filter.ClientID)
		argNum++
	}
	if filter.ProviderID != nil {
		baseQuery += fmt.Sprintf(" AND s.provider_id = $%d", argNum)
		args = append(args, *filter.ProviderID)
		argNum++
	}
	if filter.Locality != "" {
		baseQuery += fmt.Sprintf(` AND s.city ILIKE $%d ESCAPE '\'`, argNum)
		args = append(args, containsPattern(filter.Locality))
		argNum++
	}
	if filter.PriceMin != nil {
		baseQuery += fmt.Sprintf(" AND s.budget_min >= $%d", argNum)
		args = append(args, *filter.PriceMin)
		argNum++
	}
	if filter.PriceMax != nil {
		baseQuery += fmt.Sprintf(" AND s.budget_max <= $%d", argNum)
		args = append(args, *filter.PriceMax)
		argNum++
	}
	if filter.Search != "" {
		baseQuery += fmt.Sprintf(` AND (s.title ILIKE $%d ESCAPE '\' OR s.description ILIKE $%d ESCAPE '\')`, argNum, argNum)
		args = append(args, containsPattern(filter.Search))
		argNum++
	}

	var total int
	if err := sqlx.GetContext(ctx, r.db, &total, "SELECT COUNT(*) "+baseQuery, args...); err != nil {
		return nil, 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось посчитать услуги")
	}

	limit, offset := pageArgs(filter.Limit, filter.Offset)
	selectQuery := fmt.Sprintf(`SELECT %s %s ORDER BY s.published_at DESC LIMIT $%d OFFSET $%d`,
		serviceColumns, baseQuery, argNum, argNum+1)
	args = append(args, limit, offset)

	var rows []serviceRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, selectQuery, args...); err != nil {
		return nil, 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить услуги")
	}

	services := make([]*entity.Service, 0, len(rows))
	for i := range rows {
		s, err := rows[i].toEntity()
		if err != nil {
			return nil, 0, err
		}
		services = append(services, s)
	}
	return services, total, nil
}

type serviceRow struct {
	ID           uuid.UUID       `db:"id"`
	ClientID     uuid.UUID       `db:"client_id"`
	ProviderID   *uuid.UUID      `db:"provider_id"`
	CategoryID   uuid.UUID       `db:"category_id"`
	Title        string          `db:"title"`
	Description  string          `db:"description"`
	Status       string          `db:"status"`
	BudgetMin    decimal.Decimal `db:"budget_min"`
	BudgetMax    decimal.Decimal `db:"budget_max"`
	LocationType string          `db:"location_type"`
	Address      []byte          `db:"address"`
	PublishedAt  time.Time       `db:"published_at"`
	CompletedAt  *time.Time      `db:"completed_at"`
	CreatedAt    time.Time       `db:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at"`
	ProposalIDs  pq.StringArray  `db:"proposal_ids"`
}

func (row *serviceRow) toEntity() (*entity.Service, error) {
	var address *valueobject.Address
	if len(row.Address) > 0 {
		address = &valueobject.Address{}
		if err := json.Unmarshal(row.Address, address); err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "повреждён адрес услуги")
		}
	}

	proposalIDs := make([]uuid.UUID, 0, len(row.ProposalIDs))
	for _, raw := range row.ProposalIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "некорректный идентификатор предложения")
		}
		proposalIDs = append(proposalIDs, id)
	}

	return &entity.Service{
		ID:          row.ID,
		ClientID:    row.ClientID,
		ProviderID:  row.ProviderID,
		CategoryID:  row.CategoryID,
		Title:       row.Title,
		Description: row.Description,
		Status:      valueobject.ServiceStatus(row.Status),
		Budget:      valueobject.Budget{Min: row.BudgetMin, Max: row.BudgetMax},
		Location:    valueobject.Location{Type: valueobject.LocationType(row.LocationType), Address: address},
		PublishedAt: row.PublishedAt,
		CompletedAt: row.CompletedAt,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
		ProposalIDs: proposalIDs,
	}, nil
}

// marshalAddress возвращает JSON строкой: lib/pq передаёт []byte как bytea, а не jsonb.
func marshalAddress(address *valueobject.Address) (*string, error) {
	if address == nil {
		return nil, nil
	}
	raw, err := json.Marshal(address)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось сериализовать адрес")
	}
	encoded := string(raw)
	return &encoded, nil
}
