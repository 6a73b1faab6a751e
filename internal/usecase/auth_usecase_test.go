package usecase

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"movie_explorer/internal/domain"
	"movie_explorer/internal/repository"
	"movie_explorer/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingBackend records every write that reaches the wrapped backend.
type countingBackend struct {
	storage.Backend
	mu     sync.Mutex
	writes int
}

func (c *countingBackend) Set(ctx context.Context, key string, value []byte) error {
	c.mu.Lock()
	c.writes++
	c.mu.Unlock()
	return c.Backend.Set(ctx, key, value)
}

func (c *countingBackend) Remove(ctx context.Context, key string) error {
	c.mu.Lock()
	c.writes++
	c.mu.Unlock()
	return c.Backend.Remove(ctx, key)
}

func (c *countingBackend) Update(ctx context.Context, key string, fn storage.UpdateFunc) error {
	c.mu.Lock()
	c.writes++
	c.mu.Unlock()
	return c.Backend.Update(ctx, key, fn)
}

func (c *countingBackend) Writes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writes
}

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type authFixture struct {
	uc    domain.AuthUseCase
	store *countingBackend
	clock *fixedClock
}

func newAuth(t *testing.T, verify bool) *authFixture {
	t.Helper()
	store := &countingBackend{Backend: storage.NewMemoryBackend(testLogger())}
	clock := &fixedClock{now: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)}
	repo := repository.NewUserRepository(store, testLogger())
	uc := NewAuthUseCase(repo, AuthSettings{Now: clock.Now, VerifyPassword: verify}, testLogger())
	return &authFixture{uc: uc, store: store, clock: clock}
}

func TestAuth_RegisterThenCurrentUser(t *testing.T) {
	f := newAuth(t, false)
	ctx := context.Background()

	user, err := f.uc.Register(ctx, "  Ann Lee  ", "Ann@Example.COM", "Secret123")
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", user.Email)
	assert.Equal(t, "Ann Lee", user.Name)
	assert.NotEmpty(t, user.ID)
	assert.True(t, f.clock.Now().Equal(user.CreatedAt))

	current := f.uc.GetCurrentUser(ctx)
	require.NotNil(t, current)
	assert.Equal(t, "ann@example.com", current.Email)
	assert.Equal(t, user.ID, current.ID)
}

func TestAuth_SessionShape(t *testing.T) {
	f := newAuth(t, false)
	ctx := context.Background()
	_, err := f.uc.Register(ctx, "Ann", "ann@example.com", "Secret123")
	require.NoError(t, err)

	raw, found, err := f.store.Get(ctx, repository.AuthKey)
	require.NoError(t, err)
	require.True(t, found)
	var stored struct {
		User      map[string]any `json:"user"`
		ExpiresAt time.Time      `json:"expiresAt"`
	}
	require.NoError(t, json.Unmarshal(raw, &stored))
	assert.Equal(t, "ann@example.com", stored.User["email"])
	assert.Contains(t, stored.User, "createdAt")
	assert.True(t, f.clock.Now().Add(7*24*time.Hour).Equal(stored.ExpiresAt))
}

func TestAuth_LoginWithAnyPassword(t *testing.T) {
	f := newAuth(t, false)
	ctx := context.Background()
	registered, err := f.uc.Register(ctx, "Ann", "ann@example.com", "Secret123")
	require.NoError(t, err)
	f.uc.Logout(ctx)
	assert.Nil(t, f.uc.GetCurrentUser(ctx))

	user, err := f.uc.Login(ctx, "ANN@example.com", "totally-wrong")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.Equal(t, registered.ID, f.uc.GetCurrentUser(ctx).ID)
}

func TestAuth_LoginErrors(t *testing.T) {
	f := newAuth(t, false)
	ctx := context.Background()

	_, err := f.uc.Login(ctx, "nope", "x")
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.EqualError(t, err, "Please enter a valid email address")

	_, err = f.uc.Login(ctx, "a@b.co", "   ")
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.EqualError(t, err, "Password is required")

	_, err = f.uc.Login(ctx, "ghost@b.co", "Secret123")
	assert.ErrorIs(t, err, domain.ErrAuthentication)
	assert.EqualError(t, err, "Invalid email or password")
}

func TestAuth_RegisterValidationOrderAndNoWrites(t *testing.T) {
	cases := []struct {
		name, email, password, message string
	}{
		{"A", "not-an-email", "short", "Name must be between 2 and 50 characters"},
		{"Ann", "not-an-email", "Secret123", "Please enter a valid email address"},
		{"Ann", "ann@example.com", "Sh0rt", "Password must be at least 8 characters long"},
		{"Ann", "ann@example.com", "secret123", "Password must contain at least one uppercase letter"},
		{"Ann", "ann@example.com", "SECRET123", "Password must contain at least one lowercase letter"},
		{"Ann", "ann@example.com", "SecretPass", "Password must contain at least one number"},
		{"Ann", "ann@example.com", "Ábcdefg1", "Password must contain at least one uppercase letter"},
		{"Ann", "ann@example.com", "ABCDEFGé1", "Password must contain at least one lowercase letter"},
		{"Ann", "ann@example.com", "Abcdefg１", "Password must contain at least one number"},
	}
	for _, tc := range cases {
		t.Run(tc.message, func(t *testing.T) {
			f := newAuth(t, false)
			_, err := f.uc.Register(context.Background(), tc.name, tc.email, tc.password)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.EqualError(t, err, tc.message)
			assert.Zero(t, f.store.Writes(), "validation failures must not touch storage")
		})
	}
}

func TestAuth_NameLengthBounds(t *testing.T) {
	assert.False(t, isValidName(" a "))
	assert.True(t, isValidName(" ab "))
	assert.True(t, isValidName("abcdefghijabcdefghijabcdefghijabcdefghijabcdefghij"))
	assert.False(t, isValidName("abcdefghijabcdefghijabcdefghijabcdefghijabcdefghijk"))
}

func TestAuth_RegisterDuplicateEmail(t *testing.T) {
	f := newAuth(t, false)
	ctx := context.Background()
	_, err := f.uc.Register(ctx, "Ann", "ann@example.com", "Secret123")
	require.NoError(t, err)

	_, err = f.uc.Register(ctx, "Other", "ANN@EXAMPLE.COM", "Secret123")
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.EqualError(t, err, "An account with this email already exists")
}

func TestAuth_ExpiredSessionIsDeleted(t *testing.T) {
	f := newAuth(t, false)
	ctx := context.Background()
	_, err := f.uc.Register(ctx, "Ann", "ann@example.com", "Secret123")
	require.NoError(t, err)

	f.clock.Advance(7*24*time.Hour + time.Second)

	assert.Nil(t, f.uc.GetCurrentUser(ctx))
	_, found, err := f.store.Get(ctx, repository.AuthKey)
	require.NoError(t, err)
	assert.False(t, found, "expired session key is removed on read")
}

func TestAuth_MalformedSessionReadsAsAbsent(t *testing.T) {
	f := newAuth(t, false)
	ctx := context.Background()
	require.NoError(t, f.store.Set(ctx, repository.AuthKey, []byte(`{"user":`)))

	assert.Nil(t, f.uc.GetCurrentUser(ctx))
}

func TestAuth_UpdateProfile(t *testing.T) {
	f := newAuth(t, false)
	ctx := context.Background()

	name := "Annie"
	_, err := f.uc.UpdateProfile(ctx, domain.ProfilePatch{Name: &name})
	assert.ErrorIs(t, err, domain.ErrAuthentication)
	assert.EqualError(t, err, "Not authenticated")

	registered, err := f.uc.Register(ctx, "Ann", "ann@example.com", "Secret123")
	require.NoError(t, err)
	f.clock.Advance(24 * time.Hour)

	avatar := "https://img.example/a.png"
	updated, err := f.uc.UpdateProfile(ctx, domain.ProfilePatch{Name: &name, Avatar: &avatar})
	require.NoError(t, err)
	assert.Equal(t, registered.ID, updated.ID)
	assert.Equal(t, "Annie", updated.Name)
	require.NotNil(t, updated.Avatar)
	assert.Equal(t, avatar, *updated.Avatar)

	current := f.uc.GetCurrentUser(ctx)
	require.NotNil(t, current)
	assert.Equal(t, "Annie", current.Name)

	// The session was re-issued, so it outlives the original expiry.
	f.clock.Advance(6*24*time.Hour + time.Hour)
	assert.NotNil(t, f.uc.GetCurrentUser(ctx))
}

func TestAuth_UpdateProfileUserMissing(t *testing.T) {
	f := newAuth(t, false)
	ctx := context.Background()
	_, err := f.uc.Register(ctx, "Ann", "ann@example.com", "Secret123")
	require.NoError(t, err)
	require.NoError(t, f.store.Remove(ctx, repository.UsersKey))

	name := "Annie"
	_, err = f.uc.UpdateProfile(ctx, domain.ProfilePatch{Name: &name})
	assert.ErrorIs(t, err, domain.ErrAuthentication)
	assert.EqualError(t, err, "User not found")
}

func TestAuth_LatencyHonoursCancellation(t *testing.T) {
	store := storage.NewMemoryBackend(testLogger())
	uc := NewAuthUseCase(repository.NewUserRepository(store, testLogger()), AuthSettings{Latency: time.Hour}, testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := uc.Register(ctx, "Ann", "ann@example.com", "Secret123")
	assert.ErrorIs(t, err, context.Canceled)
	users, err := repository.NewUserRepository(store, testLogger()).ListUsers(context.Background())
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestAuth_VerifyPassword(t *testing.T) {
	f := newAuth(t, true)
	ctx := context.Background()
	_, err := f.uc.Register(ctx, "Ann", "ann@example.com", "Secret123")
	require.NoError(t, err)

	_, err = f.uc.Login(ctx, "ann@example.com", "Wrong1234")
	assert.ErrorIs(t, err, domain.ErrAuthentication)

	user, err := f.uc.Login(ctx, "ann@example.com", "Secret123")
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", user.Email)
}
