package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/therapease/therapease-backend/internal/models"
	"github.com/therapease/therapease-backend/internal/services"
	"github.com/therapease/therapease-backend/internal/store"
)

// fakeRevocationCache records revocations in-process, standing in for Redis.
type fakeRevocationCache struct {
	mu      sync.Mutex
	revoked map[string]bool
}

func newFakeRevocationCache() *fakeRevocationCache {
	return &fakeRevocationCache{revoked: make(map[string]bool)}
}

func (c *fakeRevocationCache) MarkRevoked(ctx context.Context, token string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.revoked[token] = true
	return nil
}

func (c *fakeRevocationCache) IsRevoked(ctx context.Context, token string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.revoked[token], nil
}

func newTestService(t *testing.T, expiry time.Duration) (*services.TokenService, *store.MemoryUserStore, *models.User) {
	t.Helper()
	users := store.NewMemoryUserStore()
	blocklist := store.NewMemoryBlocklistStore()
	service := services.NewTokenService("test-secret", expiry, users, blocklist, newFakeRevocationCache())

	user := &models.User{
		Username:      "marie",
		Email:         "marie@example.com",
		TypeOfAccount: models.AccountTypePatient,
	}
	require.NoError(t, users.Create(context.Background(), user))
	return service, users, user
}

func TestIssueAndAuthenticate(t *testing.T) {
	service, users, user := newTestService(t, time.Hour)
	ctx := context.Background()

	token, err := service.Issue(ctx, user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	// Issue flips the jwt-active flag on
	stored, err := users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, stored.JWTAuthActive)

	caller, err := service.Authenticate(ctx, "Bearer "+token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, caller.ID)
	assert.Equal(t, user.Email, caller.Email)
}

func TestAuthenticateMissingToken(t *testing.T) {
	service, _, _ := newTestService(t, time.Hour)

	_, err := service.Authenticate(context.Background(), "")
	assert.ErrorIs(t, err, services.ErrMissingToken)

	_, err = service.Authenticate(context.Background(), "Bearer")
	assert.ErrorIs(t, err, services.ErrMissingToken)
}

func TestAuthenticateInvalidToken(t *testing.T) {
	service, _, _ := newTestService(t, time.Hour)

	_, err := service.Authenticate(context.Background(), "Bearer not-a-jwt")
	assert.ErrorIs(t, err, services.ErrInvalidToken)
}

func TestAuthenticateWrongSecret(t *testing.T) {
	service, _, user := newTestService(t, time.Hour)
	ctx := context.Background()

	token, err := service.Issue(ctx, user)
	require.NoError(t, err)

	other := services.NewTokenService("other-secret", time.Hour, store.NewMemoryUserStore(), store.NewMemoryBlocklistStore(), nil)
	_, err = other.Authenticate(ctx, "Bearer "+token)
	assert.ErrorIs(t, err, services.ErrInvalidToken)
}

func TestAuthenticateExpiredToken(t *testing.T) {
	service, _, user := newTestService(t, -time.Minute)
	ctx := context.Background()

	token, err := service.Issue(ctx, user)
	require.NoError(t, err)

	_, err = service.Authenticate(ctx, "Bearer "+token)
	assert.ErrorIs(t, err, services.ErrInvalidToken)
}

func TestAuthenticateUnknownUser(t *testing.T) {
	service, _, user := newTestService(t, time.Hour)
	ctx := context.Background()

	token, err := service.Issue(ctx, user)
	require.NoError(t, err)

	// Same secret, empty user store: the decoded identity has no account
	empty := services.NewTokenService("test-secret", time.Hour, store.NewMemoryUserStore(), store.NewMemoryBlocklistStore(), nil)
	_, err = empty.Authenticate(ctx, "Bearer "+token)
	assert.ErrorIs(t, err, services.ErrUnknownUser)
}

func TestRevokeRejectsTokenBeforeExpiry(t *testing.T) {
	service, _, user := newTestService(t, time.Hour)
	ctx := context.Background()

	token, err := service.Issue(ctx, user)
	require.NoError(t, err)

	_, err = service.Authenticate(ctx, "Bearer "+token)
	require.NoError(t, err)

	require.NoError(t, service.Revoke(ctx, user, "Bearer "+token))

	_, err = service.Authenticate(ctx, "Bearer "+token)
	assert.ErrorIs(t, err, services.ErrRevokedToken)
}

func TestRevokeWorksWithoutCache(t *testing.T) {
	users := store.NewMemoryUserStore()
	blocklist := store.NewMemoryBlocklistStore()
	service := services.NewTokenService("test-secret", time.Hour, users, blocklist, nil)
	ctx := context.Background()

	user := &models.User{Username: "nils", Email: "nils@example.com", TypeOfAccount: models.AccountTypePatient}
	require.NoError(t, users.Create(ctx, user))

	token, err := service.Issue(ctx, user)
	require.NoError(t, err)
	require.NoError(t, service.Revoke(ctx, user, "Bearer "+token))

	// Blocklist store alone is the authority
	_, err = service.Authenticate(ctx, "Bearer "+token)
	assert.ErrorIs(t, err, services.ErrRevokedToken)
}

func TestAuthenticateInactiveSession(t *testing.T) {
	service, users, user := newTestService(t, time.Hour)
	ctx := context.Background()

	token, err := service.Issue(ctx, user)
	require.NoError(t, err)

	// Flag off without blocklisting: a fresh token is still refused
	require.NoError(t, users.SetJWTActive(ctx, user.ID, false))

	_, err = service.Authenticate(ctx, "Bearer "+token)
	assert.ErrorIs(t, err, services.ErrInactiveSession)
}

func TestExtractBearerToken(t *testing.T) {
	assert.Equal(t, "abc", services.ExtractBearerToken("Bearer abc"))
	assert.Equal(t, "abc", services.ExtractBearerToken("bearer   abc"))
	assert.Equal(t, "", services.ExtractBearerToken(""))
	assert.Equal(t, "", services.ExtractBearerToken("abc"))
}
