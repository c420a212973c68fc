package profile

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workmatch/marketplace-backend/internal/domain/valueobject"
	"github.com/workmatch/marketplace-backend/internal/pkg/apperror"
	"github.com/workmatch/marketplace-backend/internal/usecase/category"
	"github.com/workmatch/marketplace-backend/internal/usecase/memrepo"
)

func strPtr(s string) *string { return &s }

func newUpdateUseCase(store *memrepo.Store) *UpdateProviderProfileUseCase {
	repos := store.Repositories()
	return NewUpdateProviderProfileUseCase(repos.Providers, category.NewCache(repos.Categories, time.Minute))
}

func TestUpdateProviderProfile(t *testing.T) {
	store := memrepo.NewStore()
	plumbing := store.SeedCategory("Encanamento")
	electric := store.SeedCategory("Elétrica")
	user, provider := store.SeedProvider("carla")

	ids := []uuid.UUID{plumbing.ID, electric.ID, plumbing.ID}
	updated, err := newUpdateUseCase(store).Execute(context.Background(), UpdateProviderProfileInput{
		UserID:      user.ID,
		Description: strPtr("  Reparos residenciais  "),
		Experience:  strPtr("8 anos"),
		CategoryIDs: &ids,
	})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{plumbing.ID, electric.ID}, updated.CategoryIDs)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "Reparos residenciais", *updated.Description)

	stored := store.Providers[provider.ID]
	assert.True(t, stored.ServesCategory(electric.ID))
	assert.Equal(t, "carla", stored.Name)
}

func TestUpdateProviderProfileClearsText(t *testing.T) {
	store := memrepo.NewStore()
	user, provider := store.SeedProvider("carla")
	uc := newUpdateUseCase(store)

	_, err := uc.Execute(context.Background(), UpdateProviderProfileInput{UserID: user.ID, Description: strPtr("algo")})
	require.NoError(t, err)
	_, err = uc.Execute(context.Background(), UpdateProviderProfileInput{UserID: user.ID, Description: strPtr("   ")})
	require.NoError(t, err)
	assert.Nil(t, store.Providers[provider.ID].Description)
}

func TestUpdateProviderProfileRejectsCategories(t *testing.T) {
	store := memrepo.NewStore()
	inactive := store.SeedCategory("Jardinagem")
	store.Categories[inactive.ID].Status = valueobject.CategoryStatusInactive
	user, _ := store.SeedProvider("carla")
	uc := newUpdateUseCase(store)

	unknown := []uuid.UUID{uuid.New()}
	_, err := uc.Execute(context.Background(), UpdateProviderProfileInput{UserID: user.ID, CategoryIDs: &unknown})
	if !apperror.IsValidation(err) {
		t.Fatalf("expected validation error for unknown category, got %v", err)
	}

	off := []uuid.UUID{inactive.ID}
	_, err = uc.Execute(context.Background(), UpdateProviderProfileInput{UserID: user.ID, CategoryIDs: &off})
	if !apperror.IsValidation(err) {
		t.Fatalf("expected validation error for inactive category, got %v", err)
	}
}

func TestUpdateProviderProfileRequiresProvider(t *testing.T) {
	store := memrepo.NewStore()
	client, _ := store.SeedClient("ana")

	_, err := newUpdateUseCase(store).Execute(context.Background(), UpdateProviderProfileInput{
		UserID: client.ID, Experience: strPtr("nenhuma"),
	})
	if !apperror.IsForbidden(err) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestGetProvider(t *testing.T) {
	store := memrepo.NewStore()
	_, provider := store.SeedProvider("carla")
	uc := NewGetProviderUseCase(store.Repositories().Providers)

	got, err := uc.Execute(context.Background(), provider.ID)
	require.NoError(t, err)
	assert.Equal(t, provider.ID, got.ID)

	_, err = uc.Execute(context.Background(), uuid.New())
	if !apperror.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}
