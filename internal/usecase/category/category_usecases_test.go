package category

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workmatch/marketplace-backend/internal/domain/entity"
	"github.com/workmatch/marketplace-backend/internal/domain/repository"
	"github.com/workmatch/marketplace-backend/internal/domain/valueobject"
	"github.com/workmatch/marketplace-backend/internal/pkg/apperror"
	"github.com/workmatch/marketplace-backend/internal/usecase/memrepo"
)

// countingRepo считает обращения к хранилищу.
type countingRepo struct {
	repository.CategoryRepository
	finds int
	lists int
}

func (r *countingRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	r.finds++
	return r.CategoryRepository.FindByID(ctx, id)
}

func (r *countingRepo) List(ctx context.Context, onlyActive bool) ([]*entity.Category, error) {
	r.lists++
	return r.CategoryRepository.List(ctx, onlyActive)
}

func newCache(t *testing.T) (*memrepo.Store, *countingRepo, *Cache, *time.Time) {
	t.Helper()
	store := memrepo.NewStore()
	repo := &countingRepo{CategoryRepository: store.Repositories().Categories}
	cache := NewCache(repo, time.Minute)
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }
	return store, repo, cache, &now
}

func TestCacheServesFromMemoryUntilExpiry(t *testing.T) {
	store, repo, cache, now := newCache(t)
	category := store.SeedCategory("Elétrica")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		got, err := cache.Get(ctx, category.ID)
		require.NoError(t, err)
		assert.Equal(t, "Elétrica", got.Name)
	}
	assert.Equal(t, 1, repo.finds)

	*now = now.Add(2 * time.Minute)
	_, err := cache.Get(ctx, category.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.finds)
}

func TestCacheDoesNotCacheMisses(t *testing.T) {
	_, repo, cache, _ := newCache(t)
	id := uuid.New()

	_, err := cache.Get(context.Background(), id)
	if !apperror.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	_, _ = cache.Get(context.Background(), id)
	assert.Equal(t, 2, repo.finds)
}

func TestCachedValueIsCopied(t *testing.T) {
	store, _, cache, _ := newCache(t)
	category := store.SeedCategory("Limpeza")

	first, err := cache.Get(context.Background(), category.ID)
	require.NoError(t, err)
	first.Name = "mutated"

	second, err := cache.Get(context.Background(), category.ID)
	require.NoError(t, err)
	assert.Equal(t, "Limpeza", second.Name)
}

func TestStatusChangeInvalidatesCache(t *testing.T) {
	store, repo, cache, _ := newCache(t)
	category := store.SeedCategory("Jardinagem")
	ctx := context.Background()

	active, err := NewListCategoriesUseCase(cache).Execute(ctx, false)
	require.NoError(t, err)
	require.Len(t, active, 1)

	updated, err := NewSetCategoryStatusUseCase(repo, cache).Execute(ctx, category.ID, "inactive")
	require.NoError(t, err)
	assert.Equal(t, valueobject.CategoryStatusInactive, updated.Status)

	active, err = NewListCategoriesUseCase(cache).Execute(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := NewListCategoriesUseCase(cache).Execute(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	got, err := NewGetCategoryUseCase(cache).Execute(ctx, category.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive())
}

func TestSetCategoryStatusRejectsUnknownStatus(t *testing.T) {
	store, repo, cache, _ := newCache(t)
	category := store.SeedCategory("Pintura")

	_, err := NewSetCategoryStatusUseCase(repo, cache).Execute(context.Background(), category.ID, "archived")
	if !apperror.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateCategory(t *testing.T) {
	_, repo, cache, _ := newCache(t)
	uc := NewCreateCategoryUseCase(repo, cache)
	icon := "brush"

	created, err := uc.Execute(context.Background(), CreateCategoryInput{Name: "  Pintura ", Icon: &icon})
	require.NoError(t, err)
	assert.Equal(t, "Pintura", created.Name)
	assert.True(t, created.IsActive())

	_, err = uc.Execute(context.Background(), CreateCategoryInput{Name: "pintura"})
	if !apperror.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}

	_, err = uc.Execute(context.Background(), CreateCategoryInput{Name: " "})
	if !apperror.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateCategoryKeepsUnsetFields(t *testing.T) {
	store, repo, cache, _ := newCache(t)
	category := store.SeedCategory("Reparos")
	ctx := context.Background()
	_, err := cache.Get(ctx, category.ID)
	require.NoError(t, err)

	description := "Pequenos reparos domésticos"
	updated, err := NewUpdateCategoryUseCase(repo, cache).Execute(ctx, UpdateCategoryInput{
		ID:          category.ID,
		Description: &description,
	})
	require.NoError(t, err)
	assert.Equal(t, "Reparos", updated.Name)

	got, err := cache.Get(ctx, category.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Description)
	assert.Equal(t, description, *got.Description)
}

func TestDeleteCategoryInUseConflicts(t *testing.T) {
	store, repo, cache, _ := newCache(t)
	free := store.SeedCategory("Livre")
	used := store.SeedCategory("Usada")
	ctx := context.Background()

	_, client := store.SeedClient("ana")
	budget, err := valueobject.NewBudget(decimal.NewFromInt(100), decimal.NewFromInt(200))
	require.NoError(t, err)
	location, err := valueobject.NewLocation("remote", nil)
	require.NoError(t, err)
	svc, err := entity.NewService(client.ID, used.ID, "Serviço", "Descrição do serviço", budget, location)
	require.NoError(t, err)
	require.NoError(t, store.Repositories().Services.Create(ctx, svc))

	uc := NewDeleteCategoryUseCase(repo, cache)
	err = uc.Execute(ctx, used.ID)
	if !apperror.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
	require.NoError(t, uc.Execute(ctx, free.ID))

	_, err = cache.Get(ctx, free.ID)
	if !apperror.IsNotFound(err) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestRunCleanupEvictsExpired(t *testing.T) {
	store, _, cache, now := newCache(t)
	category := store.SeedCategory("Mudança")
	_, err := cache.Get(context.Background(), category.ID)
	require.NoError(t, err)

	*now = now.Add(time.Hour)
	cache.evictExpired()

	cache.mu.RLock()
	defer cache.mu.RUnlock()
	assert.Empty(t, cache.entries)
}
