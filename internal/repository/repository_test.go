package repository

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"movie_explorer/internal/domain"
	"movie_explorer/internal/storage"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestFavoritesRepository_LoadMissingKey(t *testing.T) {
	repo := NewFavoritesRepository(storage.NewMemoryBackend(testLogger()), testLogger())

	favorites, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, favorites)
	assert.Empty(t, favorites)
}

func TestFavoritesRepository_MalformedValue(t *testing.T) {
	store := storage.NewMemoryBackend(testLogger())
	repo := NewFavoritesRepository(store, testLogger())
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, FavoritesKey, []byte(`{not json`)))

	_, err := repo.Load(ctx)
	assert.ErrorIs(t, err, domain.ErrStorageDecode)

	err = repo.Update(ctx, func(current []domain.FavoriteMovie) ([]domain.FavoriteMovie, error) {
		assert.Empty(t, current)
		return append(current, domain.FavoriteMovie{ID: 7, Title: "Repaired"}), nil
	})
	require.NoError(t, err)

	favorites, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	assert.Equal(t, 7, favorites[0].ID)
}

func TestFavoritesRepository_StoredShape(t *testing.T) {
	store := storage.NewMemoryBackend(testLogger())
	repo := NewFavoritesRepository(store, testLogger())
	ctx := context.Background()
	poster := "/p.jpg"
	added := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	err := repo.Update(ctx, func(current []domain.FavoriteMovie) ([]domain.FavoriteMovie, error) {
		return append(current, domain.FavoriteMovie{
			ID: 1, Title: "Heat", PosterPath: &poster, ReleaseDate: "1995-12-15", VoteAverage: 7.9, AddedAt: added,
		}), nil
	})
	require.NoError(t, err)

	raw, found, err := store.Get(ctx, FavoritesKey)
	require.NoError(t, err)
	require.True(t, found)
	assert.JSONEq(t, `[{"id":1,"title":"Heat","poster_path":"/p.jpg","release_date":"1995-12-15","vote_average":7.9,"addedAt":"2024-03-01T12:00:00Z"}]`, string(raw))
}

func TestFavoritesRepository_UpdateErrorDoesNotWrite(t *testing.T) {
	store := storage.NewMemoryBackend(testLogger())
	repo := NewFavoritesRepository(store, testLogger())
	ctx := context.Background()
	boom := errors.New("boom")

	err := repo.Update(ctx, func([]domain.FavoriteMovie) ([]domain.FavoriteMovie, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	_, found, err := store.Get(ctx, FavoritesKey)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestFavoritesRepository_Clear(t *testing.T) {
	store := storage.NewMemoryBackend(testLogger())
	repo := NewFavoritesRepository(store, testLogger())
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, FavoritesKey, []byte(`[]`)))

	require.NoError(t, repo.Clear(ctx))
	_, found, err := store.Get(ctx, FavoritesKey)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestUserRepository_SessionRoundTrip(t *testing.T) {
	store := storage.NewMemoryBackend(testLogger())
	repo := NewUserRepository(store, testLogger())
	ctx := context.Background()

	session, err := repo.GetSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, session)

	expires := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.SaveSession(ctx, &domain.Session{
		User:      domain.User{ID: "u1", Email: "a@b.co", Name: "Ann"},
		ExpiresAt: expires,
	}))

	raw, _, err := store.Get(ctx, AuthKey)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"expiresAt":"2030-01-01T00:00:00Z"`)

	session, err = repo.GetSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, "u1", session.User.ID)
	assert.True(t, session.ExpiresAt.Equal(expires))

	require.NoError(t, repo.DeleteSession(ctx))
	session, err = repo.GetSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestUserRepository_MalformedValuesReadAsAbsent(t *testing.T) {
	store := storage.NewMemoryBackend(testLogger())
	repo := NewUserRepository(store, testLogger())
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, AuthKey, []byte(`nope`)))
	require.NoError(t, store.Set(ctx, UsersKey, []byte(`{"users":1}`)))

	session, err := repo.GetSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, session)

	users, err := repo.ListUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestUserRepository_UpdateUsers(t *testing.T) {
	repo := NewUserRepository(storage.NewMemoryBackend(testLogger()), testLogger())
	ctx := context.Background()

	err := repo.UpdateUsers(ctx, func(users []domain.User) ([]domain.User, error) {
		return append(users, domain.User{ID: "u1", Email: "a@b.co"}), nil
	})
	require.NoError(t, err)

	conflict := domain.NewError(domain.ErrConflict, "taken")
	err = repo.UpdateUsers(ctx, func(users []domain.User) ([]domain.User, error) {
		require.Len(t, users, 1)
		return nil, conflict
	})
	assert.ErrorIs(t, err, domain.ErrConflict)

	users, err := repo.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestUserRepository_Credentials(t *testing.T) {
	repo := NewUserRepository(storage.NewMemoryBackend(testLogger()), testLogger())
	ctx := context.Background()

	hash, err := repo.GetCredential(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, hash)

	require.NoError(t, repo.SaveCredential(ctx, "u1", "h1"))
	require.NoError(t, repo.SaveCredential(ctx, "u2", "h2"))

	hash, err = repo.GetCredential(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "h1", hash)
}
