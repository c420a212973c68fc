package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/workmatch/marketplace-backend/internal/domain/valueobject"
	"github.com/workmatch/marketplace-backend/internal/pkg/apperror"
	"github.com/workmatch/marketplace-backend/internal/usecase/memrepo"
)

const testPassword = "Senha123"

func newTestAuth(t *testing.T) (*AuthService, *memrepo.Store, *TokenManager) {
	t.Helper()
	store := memrepo.NewStore()
	tokens := NewTokenManager("access-secret-access-secret-0001", "refresh-secret-refresh-secret-01", 15*time.Minute, 24*time.Hour)
	svc := NewAuthService(memrepo.NewUnitOfWork(store), tokens)
	svc.hashCost = bcrypt.MinCost
	return svc, store, tokens
}

func TestRegisterCreatesProfileAndSession(t *testing.T) {
	svc, store, tokens := newTestAuth(t)
	ctx := context.Background()

	res, err := svc.Register(ctx, RegisterInput{
		Email: "Ana@Example.com", Password: testPassword, Name: "Ana Souza", Role: "client",
	}, SessionMeta{UserAgent: "curl", IP: "10.0.0.1"})
	require.NoError(t, err)

	assert.Equal(t, "ana@example.com", res.User.Email)
	assert.Equal(t, valueobject.RoleClient, res.User.Role)
	require.NotNil(t, res.Client)
	assert.Nil(t, res.Provider)
	assert.NotEqual(t, testPassword, res.User.PasswordHash)

	session, ok := store.Sessions[res.TokenPair.RefreshToken]
	require.True(t, ok, "session must be stored")
	assert.Equal(t, res.User.ID, session.UserID)
	require.NotNil(t, session.UserAgent)
	assert.Equal(t, "curl", *session.UserAgent)

	userID, role, err := tokens.ParseAccess(res.TokenPair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, userID)
	assert.Equal(t, valueobject.RoleClient, role)
}

func TestRegisterProviderProfile(t *testing.T) {
	svc, store, _ := newTestAuth(t)

	res, err := svc.Register(context.Background(), RegisterInput{
		Email: "carlos@example.com", Password: testPassword, Name: "Carlos", Role: "provider",
	}, SessionMeta{})
	require.NoError(t, err)
	require.NotNil(t, res.Provider)
	assert.Len(t, store.Providers, 1)
	assert.Empty(t, store.Clients)
}

func TestRegisterRejectsAdminRoleAndDuplicates(t *testing.T) {
	svc, store, _ := newTestAuth(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{
		Email: "root@example.com", Password: testPassword, Name: "Root", Role: "admin",
	}, SessionMeta{})
	if !apperror.IsValidation(err) {
		t.Fatalf("expected validation error for admin role, got %v", err)
	}

	in := RegisterInput{Email: "ana@example.com", Password: testPassword, Name: "Ana", Role: "client"}
	_, err = svc.Register(ctx, in, SessionMeta{})
	require.NoError(t, err)

	_, err = svc.Register(ctx, in, SessionMeta{})
	if !apperror.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
	assert.Len(t, store.Users, 1)
}

func TestRegisterValidatesFields(t *testing.T) {
	svc, store, _ := newTestAuth(t)

	_, err := svc.Register(context.Background(), RegisterInput{
		Email: "not-an-email", Password: "weak", Name: "A", Role: "client",
	}, SessionMeta{})
	if !apperror.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	fields := map[string]bool{}
	for _, d := range appErr.Details {
		fields[d.Field] = true
	}
	assert.True(t, fields["email"])
	assert.True(t, fields["password"])
	assert.True(t, fields["name"])
	assert.Empty(t, store.Users)
}

func TestRegisterRollsBackOnFailedCommit(t *testing.T) {
	store := memrepo.NewStore()
	uow := memrepo.NewUnitOfWork(store)
	uow.FailCommit = true
	svc := NewAuthService(uow, NewTokenManager("a", "b", time.Minute, time.Hour))
	svc.hashCost = bcrypt.MinCost

	_, err := svc.Register(context.Background(), RegisterInput{
		Email: "ana@example.com", Password: testPassword, Name: "Ana", Role: "client",
	}, SessionMeta{})
	require.Error(t, err)
	assert.Empty(t, store.Users)
	assert.Empty(t, store.Clients)
	assert.Empty(t, store.Sessions)
}

func TestLogin(t *testing.T) {
	svc, store, _ := newTestAuth(t)
	ctx := context.Background()
	reg, err := svc.Register(ctx, RegisterInput{
		Email: "ana@example.com", Password: testPassword, Name: "Ana", Role: "client",
	}, SessionMeta{})
	require.NoError(t, err)

	res, err := svc.Login(ctx, LoginInput{Email: " ANA@example.com ", Password: testPassword}, SessionMeta{})
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, res.User.ID)
	require.NotNil(t, res.Client)
	assert.NotNil(t, store.Users[reg.User.ID].LastLoginAt)
	assert.Len(t, store.Sessions, 2)

	_, err = svc.Login(ctx, LoginInput{Email: "ana@example.com", Password: "Errada123"}, SessionMeta{})
	if !apperror.IsUnauthorized(err) {
		t.Fatalf("expected unauthorized for wrong password, got %v", err)
	}

	_, err = svc.Login(ctx, LoginInput{Email: "ghost@example.com", Password: testPassword}, SessionMeta{})
	if !apperror.IsUnauthorized(err) {
		t.Fatalf("expected unauthorized for unknown email, got %v", err)
	}
}

func TestLoginBlockedUser(t *testing.T) {
	svc, store, _ := newTestAuth(t)
	ctx := context.Background()
	reg, err := svc.Register(ctx, RegisterInput{
		Email: "ana@example.com", Password: testPassword, Name: "Ana", Role: "client",
	}, SessionMeta{})
	require.NoError(t, err)

	user := store.Users[reg.User.ID]
	require.NoError(t, user.Block("fraude"))

	_, err = svc.Login(ctx, LoginInput{Email: "ana@example.com", Password: testPassword}, SessionMeta{})
	if !apperror.IsForbidden(err) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestRefreshRotatesSession(t *testing.T) {
	svc, store, _ := newTestAuth(t)
	ctx := context.Background()
	reg, err := svc.Register(ctx, RegisterInput{
		Email: "ana@example.com", Password: testPassword, Name: "Ana", Role: "client",
	}, SessionMeta{})
	require.NoError(t, err)
	oldToken := reg.TokenPair.RefreshToken

	pair, err := svc.Refresh(ctx, oldToken, SessionMeta{})
	require.NoError(t, err)
	assert.NotEqual(t, oldToken, pair.RefreshToken)
	_, stillThere := store.Sessions[oldToken]
	assert.False(t, stillThere)
	_, created := store.Sessions[pair.RefreshToken]
	assert.True(t, created)

	_, err = svc.Refresh(ctx, oldToken, SessionMeta{})
	if !apperror.IsUnauthorized(err) {
		t.Fatalf("expected unauthorized for reused token, got %v", err)
	}

	_, err = svc.Refresh(ctx, "garbage", SessionMeta{})
	if !apperror.IsUnauthorized(err) {
		t.Fatalf("expected unauthorized for malformed token, got %v", err)
	}
}

func TestRefreshBlockedUserKeepsSession(t *testing.T) {
	svc, store, _ := newTestAuth(t)
	ctx := context.Background()
	reg, err := svc.Register(ctx, RegisterInput{
		Email: "ana@example.com", Password: testPassword, Name: "Ana", Role: "client",
	}, SessionMeta{})
	require.NoError(t, err)
	require.NoError(t, store.Users[reg.User.ID].Block("fraude"))

	_, err = svc.Refresh(ctx, reg.TokenPair.RefreshToken, SessionMeta{})
	if !apperror.IsForbidden(err) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	_, ok := store.Sessions[reg.TokenPair.RefreshToken]
	assert.True(t, ok, "failed refresh must roll back the delete")
}

func TestLogoutIsIdempotent(t *testing.T) {
	svc, store, _ := newTestAuth(t)
	ctx := context.Background()
	reg, err := svc.Register(ctx, RegisterInput{
		Email: "ana@example.com", Password: testPassword, Name: "Ana", Role: "client",
	}, SessionMeta{})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, reg.TokenPair.RefreshToken))
	assert.Empty(t, store.Sessions)
	require.NoError(t, svc.Logout(ctx, reg.TokenPair.RefreshToken))
}

func TestMeReturnsProviderProfile(t *testing.T) {
	svc, store, _ := newTestAuth(t)
	user, provider := store.SeedProvider("carla")

	account, err := svc.Me(context.Background(), user.ID)
	require.NoError(t, err)
	require.NotNil(t, account.Provider)
	assert.Equal(t, provider.ID, account.Provider.ID)
	assert.Nil(t, account.Client)
}

func TestEnsureAdmin(t *testing.T) {
	svc, store, _ := newTestAuth(t)
	ctx := context.Background()

	require.NoError(t, svc.EnsureAdmin(ctx, "Admin@WorkMatch.com", "Admin1234"))
	require.NoError(t, svc.EnsureAdmin(ctx, "admin@workmatch.com", "Outra1234"))
	require.Len(t, store.Users, 1)
	for _, u := range store.Users {
		assert.Equal(t, valueobject.RoleAdmin, u.Role)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("Admin1234")))
	}

	require.NoError(t, svc.EnsureAdmin(ctx, "", ""))
	assert.Len(t, store.Users, 1)
}

func TestParseAccessRejectsRefreshToken(t *testing.T) {
	svc, _, tokens := newTestAuth(t)
	res, err := svc.Register(context.Background(), RegisterInput{
		Email: "ana@example.com", Password: testPassword, Name: "Ana", Role: "client",
	}, SessionMeta{})
	require.NoError(t, err)

	_, _, err = tokens.ParseAccess(res.TokenPair.RefreshToken)
	assert.Error(t, err)

	_, err = tokens.ParseRefresh(res.TokenPair.AccessToken)
	assert.Error(t, err)
}
