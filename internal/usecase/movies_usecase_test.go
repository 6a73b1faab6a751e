package usecase

import (
	"context"
	"fmt"
	"testing"

	"movie_explorer/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	detailsErr error
	creditsErr error
	listCalls  []string
}

func (f *fakeCatalog) list(name string, page int) (*domain.MovieListResponse, error) {
	f.listCalls = append(f.listCalls, fmt.Sprintf("%s:%d", name, page))
	return &domain.MovieListResponse{Page: page, Results: []domain.Movie{{ID: page}}, TotalPages: 2}, nil
}

func (f *fakeCatalog) PopularMovies(_ context.Context, page int) (*domain.MovieListResponse, error) {
	return f.list("popular", page)
}

func (f *fakeCatalog) NowPlayingMovies(_ context.Context, page int) (*domain.MovieListResponse, error) {
	return f.list("now_playing", page)
}

func (f *fakeCatalog) TopRatedMovies(_ context.Context, page int) (*domain.MovieListResponse, error) {
	return f.list("top_rated", page)
}

func (f *fakeCatalog) SearchMovies(_ context.Context, query string, page int) (*domain.MovieListResponse, error) {
	return f.list("search="+query, page)
}

func (f *fakeCatalog) MovieDetails(_ context.Context, movieID int) (*domain.MovieDetails, error) {
	if f.detailsErr != nil {
		return nil, f.detailsErr
	}
	runtime := 135
	return &domain.MovieDetails{ID: movieID, Title: "Heat", Runtime: &runtime}, nil
}

func (f *fakeCatalog) MovieCredits(_ context.Context, movieID int) (*domain.MovieCredits, error) {
	if f.creditsErr != nil {
		return nil, f.creditsErr
	}
	credits := &domain.MovieCredits{ID: movieID}
	for i := 0; i < 12; i++ {
		credits.Cast = append(credits.Cast, domain.CastMember{ID: i, Name: fmt.Sprintf("actor-%d", i), Order: i})
	}
	credits.Crew = []domain.CrewMember{
		{ID: 100, Name: "Writer", Job: "Screenplay"},
		{ID: 101, Name: "Michael Mann", Job: "Director"},
	}
	return credits, nil
}

func TestMovieUseCase_Fetcher(t *testing.T) {
	catalog := &fakeCatalog{}
	uc := NewMovieUseCase(catalog, nil, testLogger())
	ctx := context.Background()

	for _, listing := range []Listing{ListingPopular, ListingNowPlaying, ListingTopRated} {
		fetch, err := uc.Fetcher(listing)
		require.NoError(t, err)
		_, err = fetch(ctx, 3)
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"popular:3", "now_playing:3", "top_rated:3"}, catalog.listCalls)

	_, err := uc.Fetcher("upcoming")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestMovieUseCase_SearchBlankQuery(t *testing.T) {
	catalog := &fakeCatalog{}
	uc := NewMovieUseCase(catalog, nil, testLogger())

	resp, err := uc.Search(context.Background(), "  ", 1)
	require.NoError(t, err)
	assert.Empty(t, resp.Results)
	assert.Empty(t, catalog.listCalls)
}

func TestMovieUseCase_DetailPage(t *testing.T) {
	uc := NewMovieUseCase(&fakeCatalog{}, favoriteSet{42: true}, testLogger())

	page, err := uc.DetailPage(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, "Heat", page.Details.Title)
	assert.Len(t, page.Credits.Cast, 12)
	require.Len(t, page.MainCast, MainCastSize)
	assert.Equal(t, "actor-0", page.MainCast[0].Name)
	assert.Equal(t, "actor-7", page.MainCast[7].Name)
	require.NotNil(t, page.Director)
	assert.Equal(t, "Michael Mann", page.Director.Name)
	assert.Equal(t, "2h 15m", page.Runtime)
	assert.True(t, page.IsFavorite)
}

func TestMovieUseCase_DetailPageFailsIfEitherFails(t *testing.T) {
	authErr := domain.NewError(domain.ErrAuthentication, "Invalid TMDB API key")

	uc := NewMovieUseCase(&fakeCatalog{creditsErr: authErr}, nil, testLogger())
	_, err := uc.DetailPage(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrAuthentication)

	uc = NewMovieUseCase(&fakeCatalog{detailsErr: authErr}, nil, testLogger())
	_, err = uc.DetailPage(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrAuthentication)

	_, err = uc.DetailPage(context.Background(), 0)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestFormatRuntime(t *testing.T) {
	zero := 0
	short := 59
	assert.Equal(t, "N/A", FormatRuntime(nil))
	assert.Equal(t, "N/A", FormatRuntime(&zero))
	assert.Equal(t, "0h 59m", FormatRuntime(&short))
}

func TestMainCastShorterThanLimit(t *testing.T) {
	cast := []domain.CastMember{{ID: 1}, {ID: 2}}
	assert.Len(t, MainCast(cast, MainCastSize), 2)
	assert.NotNil(t, MainCast(nil, MainCastSize))
}
