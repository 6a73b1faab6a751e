package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"movie_explorer/internal/clients"
	"movie_explorer/internal/domain"
	"movie_explorer/internal/repository"
	"movie_explorer/internal/storage"
	"movie_explorer/internal/usecase"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptCatalog struct{}

func (scriptCatalog) page(prefix string, page int) *domain.MovieListResponse {
	return &domain.MovieListResponse{
		Page: page,
		Results: []domain.Movie{
			{ID: page*10 + 1, Title: fmt.Sprintf("%s %d-a", prefix, page), ReleaseDate: "1999-01-01", VoteAverage: 7},
			{ID: page*10 + 2, Title: fmt.Sprintf("%s %d-b", prefix, page), ReleaseDate: "2001-01-01", VoteAverage: 8},
		},
		TotalPages:   2,
		TotalResults: 4,
	}
}

func (c scriptCatalog) PopularMovies(_ context.Context, page int) (*domain.MovieListResponse, error) {
	return c.page("Popular", page), nil
}

func (c scriptCatalog) NowPlayingMovies(_ context.Context, page int) (*domain.MovieListResponse, error) {
	return c.page("Now", page), nil
}

func (c scriptCatalog) TopRatedMovies(_ context.Context, page int) (*domain.MovieListResponse, error) {
	return c.page("Top", page), nil
}

func (c scriptCatalog) SearchMovies(_ context.Context, query string, page int) (*domain.MovieListResponse, error) {
	return &domain.MovieListResponse{Page: 1, Results: []domain.Movie{{ID: 949, Title: "Found " + query}}, TotalPages: 1, TotalResults: 1}, nil
}

func (scriptCatalog) MovieDetails(_ context.Context, id int) (*domain.MovieDetails, error) {
	runtime := 95
	return &domain.MovieDetails{ID: id, Title: "Heat", ReleaseDate: "1995-12-15", Runtime: &runtime}, nil
}

func (scriptCatalog) MovieCredits(_ context.Context, id int) (*domain.MovieCredits, error) {
	return &domain.MovieCredits{
		ID:   id,
		Cast: []domain.CastMember{{Name: "Al Pacino", Character: "Vincent Hanna"}},
		Crew: []domain.CrewMember{{Name: "Michael Mann", Job: "Director"}},
	}, nil
}

func runScript(t *testing.T, script string) string {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	store := storage.NewScopedBackend(storage.NewMemoryBackend(logger))
	favorites := usecase.NewFavoritesUseCase(repository.NewFavoritesRepository(store, logger), nil, logger)
	auth := usecase.NewAuthUseCase(repository.NewUserRepository(store, logger), usecase.AuthSettings{}, logger)
	movies := usecase.NewMovieUseCase(scriptCatalog{}, favorites, logger)

	var out bytes.Buffer
	// A long debounce keeps searches pending until an explicit flush.
	sh := newShell(movies, favorites, auth, clients.NewImages(""), time.Hour, &out, logger)
	ctx := storage.WithScope(context.Background(), "test")
	require.NoError(t, sh.run(ctx, strings.NewReader(script)))
	return out.String()
}

func TestShell_BrowseAndFavorite(t *testing.T) {
	out := runScript(t, strings.Join([]string{
		"popular",
		"more",
		"more",
		"fav 22",
		"favs",
		"fav 22",
		"favs",
		"quit",
		"popular",
	}, "\n"))

	assert.Contains(t, out, "popular: page 1 of 2, 4 results")
	assert.Contains(t, out, "popular: page 2 of 2, 4 results")
	assert.Contains(t, out, "Popular 2-b")
	assert.Contains(t, out, "No more results")
	assert.Contains(t, out, "Added Popular 2-b to favorites")
	assert.Contains(t, out, "Removed Popular 2-b from favorites")
	assert.Contains(t, out, "No favorites yet")
	assert.Equal(t, 2, strings.Count(out, "popular: page"), "commands after quit are not run")
}

func TestShell_SearchAndDetails(t *testing.T) {
	out := runScript(t, strings.Join([]string{
		"search he",
		"search heat",
		"flush",
		"fav 949",
		"movie 949",
	}, "\n"))

	assert.Contains(t, out, "search: heat: page 1 of 1, 1 results")
	assert.NotContains(t, out, "search: he:")
	assert.Contains(t, out, "Added Found heat to favorites")
	assert.Contains(t, out, "Heat (1995)")
	assert.Contains(t, out, "1h 35m")
	assert.Contains(t, out, "Director: Michael Mann")
	assert.Contains(t, out, "Al Pacino as Vincent Hanna")
	assert.Contains(t, out, "In your favorites")
}

func TestShell_Auth(t *testing.T) {
	out := runScript(t, strings.Join([]string{
		"me",
		"register not-an-email Secret123 Ada",
		"register ada@example.com Secret123 Ada Lovelace",
		"me",
		"profile Countess Ada",
		"logout",
		"me",
		"login ADA@example.com whatever",
		"bogus",
	}, "\n"))

	assert.Contains(t, out, "Not signed in")
	assert.Contains(t, out, "error: Please enter a valid email address")
	assert.Contains(t, out, "Welcome, Ada Lovelace (ada@example.com)")
	assert.Contains(t, out, "Ada Lovelace <ada@example.com>")
	assert.Contains(t, out, "Profile updated: Countess Ada")
	assert.Contains(t, out, "Signed out")
	assert.Contains(t, out, "Signed in as Countess Ada")
	assert.Contains(t, out, `unknown command "bogus"`)
}

func TestShell_Errors(t *testing.T) {
	out := runScript(t, "more\nfav x\nfav 5\nmovie\n")

	assert.Contains(t, out, "error: no list open")
	assert.Contains(t, out, `error: invalid movie id "x"`)
	assert.Contains(t, out, "error: movie 5 is not in the current list")
	assert.Contains(t, out, "error: a movie id is required")
}
