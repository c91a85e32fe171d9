package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/YashMarke130105/pen-perfect-playground/internal/models"
	"github.com/YashMarke130105/pen-perfect-playground/internal/storage"
)

// memoryUsers is a minimal UserStorage for authenticator tests.
type memoryUsers struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{users: make(map[string]*models.User)}
}

func (m *memoryUsers) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.Email]; ok {
		return storage.ErrEmailExists
	}
	m.users[user.Email] = user
	return nil
}

func (m *memoryUsers) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[models.NormalizeEmail(email)]; ok {
		return u, nil
	}
	return nil, storage.ErrNotFound
}

func (m *memoryUsers) GetUserByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, storage.ErrNotFound
}

func TestPasswordAuthenticator(t *testing.T) {
	ctx := context.Background()
	authn := NewPasswordAuthenticator(newMemoryUsers()).WithCost(bcrypt.MinCost)

	user, err := authn.Register(ctx, "Dev@Example.com", "dev", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "dev@example.com", user.Email)
	assert.NotEqual(t, "correct horse", user.PasswordHash)

	t.Run("weak password", func(t *testing.T) {
		_, err := authn.Register(ctx, "weak@example.com", "weak", "short")
		assert.ErrorIs(t, err, ErrWeakPassword)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := authn.Register(ctx, "dev@example.com", "again", "another password")
		assert.ErrorIs(t, err, ErrEmailExists)
	})

	t.Run("sign in", func(t *testing.T) {
		got, err := authn.Authenticate(ctx, "DEV@example.com", "correct horse")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
	})

	t.Run("bad password", func(t *testing.T) {
		_, err := authn.Authenticate(ctx, "dev@example.com", "wrong password")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := authn.Authenticate(ctx, "ghost@example.com", "correct horse")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestJWTManager(t *testing.T) {
	user := &models.User{ID: "user-1", Email: "a@example.com"}

	t.Run("round trip", func(t *testing.T) {
		m := NewJWTManager("secret", time.Hour)
		token, err := m.Generate(user)
		require.NoError(t, err)

		claims, err := m.Validate(token)
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims.UserID)
		assert.Equal(t, "a@example.com", claims.Email)
		assert.NotEmpty(t, claims.ID)
	})

	t.Run("token IDs are unique", func(t *testing.T) {
		m := NewJWTManager("secret", time.Hour)
		a, err := m.Generate(user)
		require.NoError(t, err)
		b, err := m.Generate(user)
		require.NoError(t, err)

		ca, _ := m.Validate(a)
		cb, _ := m.Validate(b)
		assert.NotEqual(t, ca.ID, cb.ID)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, err := NewJWTManager("secret", time.Hour).Generate(user)
		require.NoError(t, err)

		_, err = NewJWTManager("other", time.Hour).Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		token, err := NewJWTManager("secret", -time.Minute).Generate(user)
		require.NoError(t, err)

		_, err = NewJWTManager("secret", time.Hour).Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := NewJWTManager("secret", time.Hour).Validate("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestMemoryRevoker(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRevoker()

	now := time.Unix(1_700_000_000, 0)
	r.now = func() time.Time { return now }

	require.NoError(t, r.Revoke(ctx, "live", now.Add(time.Hour)))
	require.NoError(t, r.Revoke(ctx, "stale", now.Add(-time.Hour)))

	revoked, err := r.IsRevoked(ctx, "live")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = r.IsRevoked(ctx, "stale")
	require.NoError(t, err)
	assert.False(t, revoked, "already-expired tokens need no entry")

	now = now.Add(2 * time.Hour)
	revoked, err = r.IsRevoked(ctx, "live")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRedisRevoker(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	r := NewRedisRevoker(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { r.Close() })

	require.NoError(t, r.Revoke(ctx, "tok", time.Now().Add(time.Minute)))

	revoked, err := r.IsRevoked(ctx, "tok")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = r.IsRevoked(ctx, "other")
	require.NoError(t, err)
	assert.False(t, revoked)

	mr.FastForward(2 * time.Minute)
	revoked, err = r.IsRevoked(ctx, "tok")
	require.NoError(t, err)
	assert.False(t, revoked, "deny-list keys expire with the token")
}

func TestOpenRedisRevoker(t *testing.T) {
	mr := miniredis.RunT(t)

	r, err := OpenRedisRevoker(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	r.Close()

	_, err = OpenRedisRevoker(context.Background(), "not a url")
	assert.Error(t, err)
}

func TestSessions(t *testing.T) {
	ctx := context.Background()
	sessions := NewSessions(NewJWTManager("secret", time.Hour), NewMemoryRevoker())
	user := &models.User{ID: "user-1", Email: "a@example.com"}

	token, err := sessions.Issue(user)
	require.NoError(t, err)

	claims, err := sessions.Verify(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)

	require.NoError(t, sessions.Revoke(ctx, claims))

	_, err = sessions.Verify(ctx, token)
	assert.ErrorIs(t, err, ErrRevokedToken)

	other, err := sessions.Issue(user)
	require.NoError(t, err)
	_, err = sessions.Verify(ctx, other)
	assert.NoError(t, err, "signing out one session leaves the others valid")
}
