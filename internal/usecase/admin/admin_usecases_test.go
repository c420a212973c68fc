package admin

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/workmatch/marketplace-backend/internal/domain/entity"
	"github.com/workmatch/marketplace-backend/internal/domain/repository"
	"github.com/workmatch/marketplace-backend/internal/domain/valueobject"
	"github.com/workmatch/marketplace-backend/internal/pkg/apperror"
	"github.com/workmatch/marketplace-backend/internal/usecase/memrepo"
)

type statsMock struct {
	mock.Mock
}

func (m *statsMock) Dashboard(ctx context.Context, monthStart time.Time) (*repository.DashboardStats, error) {
	args := m.Called(ctx, monthStart)
	stats, _ := args.Get(0).(*repository.DashboardStats)
	return stats, args.Error(1)
}

func (m *statsMock) FinancialReport(ctx context.Context, from, to time.Time) ([]repository.MonthlyTotals, error) {
	args := m.Called(ctx, from, to)
	totals, _ := args.Get(0).([]repository.MonthlyTotals)
	return totals, args.Error(1)
}

func fixedNow() time.Time {
	return time.Date(2026, 7, 18, 15, 30, 0, 0, time.UTC)
}

func TestBlockUserRevokesSessions(t *testing.T) {
	store := memrepo.NewStore()
	user, _ := store.SeedClient("ana")
	ctx := context.Background()
	require.NoError(t, store.Repositories().Sessions.Create(ctx, &entity.Session{
		UserID: user.ID, RefreshToken: "refresh-1", ExpiresAt: time.Now().Add(time.Hour),
	}))

	blocked, err := NewBlockUserUseCase(memrepo.NewUnitOfWork(store)).Execute(ctx, user.ID, "fraude")
	require.NoError(t, err)
	assert.True(t, blocked.IsBlocked)
	assert.Empty(t, store.Sessions)

	unblocked, err := NewUnblockUserUseCase(store.Repositories().Users).Execute(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, unblocked.IsBlocked)
	assert.Nil(t, unblocked.BlockReason)
}

func TestBlockUserValidation(t *testing.T) {
	store := memrepo.NewStore()
	user, _ := store.SeedClient("ana")
	admin := store.SeedAdmin("root")
	uc := NewBlockUserUseCase(memrepo.NewUnitOfWork(store))

	_, err := uc.Execute(context.Background(), user.ID, " ")
	if !apperror.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	_, err = uc.Execute(context.Background(), admin.ID, "qualquer")
	if !apperror.IsForbidden(err) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestListUsersFiltersByRoleAndBlocked(t *testing.T) {
	store := memrepo.NewStore()
	ana, _ := store.SeedClient("ana")
	store.SeedClient("beto")
	store.SeedProvider("carla")
	ctx := context.Background()
	_, err := NewBlockUserUseCase(memrepo.NewUnitOfWork(store)).Execute(ctx, ana.ID, "spam")
	require.NoError(t, err)

	uc := NewListUsersUseCase(store.Repositories().Users)
	clients, err := uc.Execute(ctx, ListUsersInput{Role: "client"})
	require.NoError(t, err)
	assert.Equal(t, 2, clients.Total)

	blocked := true
	onlyBlocked, err := uc.Execute(ctx, ListUsersInput{Blocked: &blocked})
	require.NoError(t, err)
	require.Equal(t, 1, onlyBlocked.Total)
	assert.Equal(t, ana.ID, onlyBlocked.Items[0].ID)

	_, err = uc.Execute(ctx, ListUsersInput{Role: "root"})
	if !apperror.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateGatewayDeactivatesPrevious(t *testing.T) {
	store := memrepo.NewStore()
	uc := NewCreateGatewayUseCase(memrepo.NewUnitOfWork(store))
	ctx := context.Background()
	input := CreateGatewayInput{
		Name:       "MercadoPago",
		FeePercent: decimal.RequireFromString("4.99"),
		FeeFixed:   decimal.RequireFromString("0.40"),
		MinAmount:  decimal.NewFromInt(10),
		MaxAmount:  decimal.NewFromInt(20000),
		Methods:    []string{"card", "pix"},
	}

	first, err := uc.Execute(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, entity.GatewayMercadoPago, first.Name)
	assert.Equal(t, valueobject.GatewayEnvironmentSandbox, first.Environment)

	input.Name = "simulated"
	second, err := uc.Execute(ctx, input)
	require.NoError(t, err)

	active, err := store.Repositories().Gateways.FindActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, active.ID)

	all, err := NewListGatewaysUseCase(store.Repositories().Gateways).Execute(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestCreateGatewayRejectsBadSettings(t *testing.T) {
	uc := NewCreateGatewayUseCase(memrepo.NewUnitOfWork(memrepo.NewStore()))

	_, err := uc.Execute(context.Background(), CreateGatewayInput{
		Name: "simulated", MinAmount: decimal.NewFromInt(1), MaxAmount: decimal.NewFromInt(10), Methods: []string{"cash"},
	})
	if !apperror.IsValidation(err) {
		t.Fatalf("expected validation error for method, got %v", err)
	}

	_, err = uc.Execute(context.Background(), CreateGatewayInput{
		Name: "stripe", MinAmount: decimal.NewFromInt(1), MaxAmount: decimal.NewFromInt(10), Methods: []string{"pix"},
	})
	if !apperror.IsValidation(err) {
		t.Fatalf("expected validation error for name, got %v", err)
	}
}

func TestDashboardUsesCurrentMonth(t *testing.T) {
	stats := &statsMock{}
	want := &repository.DashboardStats{UsersTotal: 3}
	stats.On("Dashboard", mock.Anything, time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)).Return(want, nil).Once()

	uc := NewDashboardUseCase(stats)
	uc.now = fixedNow
	got, err := uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Same(t, want, got)
	stats.AssertExpectations(t)
}

func TestFinancialReportDefaultsAndTotals(t *testing.T) {
	stats := &statsMock{}
	from := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	stats.On("FinancialReport", mock.Anything, from, to).Return([]repository.MonthlyTotals{
		{Month: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), Count: 2, Volume: decimal.RequireFromString("1500.00"), Fees: decimal.RequireFromString("150.00")},
		{Month: time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC), Count: 1, Volume: decimal.RequireFromString("300.50"), Fees: decimal.RequireFromString("30.05")},
	}, nil).Once()

	uc := NewFinancialReportUseCase(stats)
	uc.now = fixedNow
	report, err := uc.Execute(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, report.TotalCount)
	assert.Equal(t, "1800.50", report.TotalVolume.StringFixed(2))
	assert.Equal(t, "180.05", report.TotalFees.StringFixed(2))
	stats.AssertExpectations(t)
}

func TestFinancialReportValidatesPeriod(t *testing.T) {
	uc := NewFinancialReportUseCase(&statsMock{})
	from := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	_, err := uc.Execute(context.Background(), &from, &to)
	if !apperror.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}

	longFrom := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err = uc.Execute(context.Background(), &longFrom, &from)
	if !apperror.IsValidation(err) {
		t.Fatalf("expected validation error for long period, got %v", err)
	}
}
