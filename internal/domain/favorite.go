package domain

import (
	"context"
	"time"
)

// FavoriteMovie is the projection of a Movie kept in the favorites list.
type FavoriteMovie struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	PosterPath  *string   `json:"poster_path"`
	ReleaseDate string    `json:"release_date"`
	VoteAverage float64   `json:"vote_average"`
	AddedAt     time.Time `json:"addedAt"`
}

// NewFavoriteMovie projects m, stamping it with addedAt.
func NewFavoriteMovie(m Movie, addedAt time.Time) FavoriteMovie {
	return FavoriteMovie{
		ID:          m.ID,
		Title:       m.Title,
		PosterPath:  m.PosterPath,
		ReleaseDate: m.ReleaseDate,
		VoteAverage: m.VoteAverage,
		AddedAt:     addedAt.UTC(),
	}
}

// FavoriteSort names an ordering of the favorites view.
type FavoriteSort string

const (
	FavoriteSortAdded  FavoriteSort = "added"
	FavoriteSortTitle  FavoriteSort = "title"
	FavoriteSortRating FavoriteSort = "rating"
	FavoriteSortYear   FavoriteSort = "year"
)

// FavoritesRepository persists the whole favorites collection under one key.
type FavoritesRepository interface {
	Load(ctx context.Context) ([]FavoriteMovie, error)
	// Update runs fn over the current collection and writes back what it
	// returns, in a single read-modify-write pass.
	Update(ctx context.Context, fn func([]FavoriteMovie) ([]FavoriteMovie, error)) error
	Clear(ctx context.Context) error
}

type FavoritesUseCase interface {
	List(ctx context.Context) []FavoriteMovie
	Sorted(ctx context.Context, order FavoriteSort) []FavoriteMovie
	Add(ctx context.Context, movie Movie)
	Remove(ctx context.Context, movieID int)
	Contains(ctx context.Context, movieID int) bool
	Toggle(ctx context.Context, movie Movie) bool
	ClearAll(ctx context.Context)
}
