package usecase

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"movie_explorer/internal/domain"

	"github.com/sirupsen/logrus"
)

var _ domain.FavoritesUseCase = (*favoritesUseCase)(nil)

// Clock returns the current time. Tests replace it.
type Clock func() time.Time

type favoritesUseCase struct {
	repo domain.FavoritesRepository
	now  Clock
	log  *logrus.Logger
}

func NewFavoritesUseCase(repo domain.FavoritesRepository, now Clock, logger *logrus.Logger) domain.FavoritesUseCase {
	if now == nil {
		now = time.Now
	}
	return &favoritesUseCase{
		repo: repo,
		now:  now,
		log:  logger,
	}
}

// List never fails: unreadable or malformed storage reads as empty.
func (uc *favoritesUseCase) List(ctx context.Context) []domain.FavoriteMovie {
	favorites, err := uc.repo.Load(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrStorageDecode) {
			uc.log.Warnf("Use Case: Favorites storage is malformed, returning empty list: %v", err)
		} else {
			uc.log.Errorf("Use Case: Failed to load favorites: %v", err)
		}
		return []domain.FavoriteMovie{}
	}
	return favorites
}

func (uc *favoritesUseCase) Sorted(ctx context.Context, order domain.FavoriteSort) []domain.FavoriteMovie {
	favorites := uc.List(ctx)
	SortFavorites(favorites, order)
	return favorites
}

func (uc *favoritesUseCase) Add(ctx context.Context, movie domain.Movie) {
	err := uc.repo.Update(ctx, func(current []domain.FavoriteMovie) ([]domain.FavoriteMovie, error) {
		if indexOf(current, movie.ID) >= 0 {
			uc.log.Debugf("Use Case: Movie %d already in favorites", movie.ID)
			return current, nil
		}
		return prepend(current, domain.NewFavoriteMovie(movie, uc.now())), nil
	})
	if err != nil {
		uc.log.Errorf("Use Case: Failed to add movie %d to favorites: %v", movie.ID, err)
		return
	}
	uc.log.Infof("Use Case: Movie %d ('%s') added to favorites", movie.ID, movie.Title)
}

func (uc *favoritesUseCase) Remove(ctx context.Context, movieID int) {
	err := uc.repo.Update(ctx, func(current []domain.FavoriteMovie) ([]domain.FavoriteMovie, error) {
		return without(current, movieID), nil
	})
	if err != nil {
		uc.log.Errorf("Use Case: Failed to remove movie %d from favorites: %v", movieID, err)
		return
	}
	uc.log.Infof("Use Case: Movie %d removed from favorites", movieID)
}

func (uc *favoritesUseCase) Contains(ctx context.Context, movieID int) bool {
	return indexOf(uc.List(ctx), movieID) >= 0
}

// Toggle reports whether the movie is a favorite afterwards. The membership
// check and the write happen in one storage update.
func (uc *favoritesUseCase) Toggle(ctx context.Context, movie domain.Movie) bool {
	var added bool
	err := uc.repo.Update(ctx, func(current []domain.FavoriteMovie) ([]domain.FavoriteMovie, error) {
		if indexOf(current, movie.ID) >= 0 {
			added = false
			return without(current, movie.ID), nil
		}
		added = true
		return prepend(current, domain.NewFavoriteMovie(movie, uc.now())), nil
	})
	if err != nil {
		uc.log.Errorf("Use Case: Failed to toggle favorite for movie %d: %v", movie.ID, err)
		return uc.Contains(ctx, movie.ID)
	}
	uc.log.Infof("Use Case: Toggled movie %d, favorite=%t", movie.ID, added)
	return added
}

func (uc *favoritesUseCase) ClearAll(ctx context.Context) {
	if err := uc.repo.Clear(ctx); err != nil {
		uc.log.Errorf("Use Case: Failed to clear favorites: %v", err)
		return
	}
	uc.log.Info("Use Case: All favorites cleared")
}

// ParseFavoriteSort maps a query value onto a sort order, defaulting to
// most recently added first.
func ParseFavoriteSort(value string) domain.FavoriteSort {
	switch domain.FavoriteSort(strings.ToLower(strings.TrimSpace(value))) {
	case domain.FavoriteSortTitle:
		return domain.FavoriteSortTitle
	case domain.FavoriteSortRating:
		return domain.FavoriteSortRating
	case domain.FavoriteSortYear:
		return domain.FavoriteSortYear
	default:
		return domain.FavoriteSortAdded
	}
}

// SortFavorites orders favorites in place. Ties keep their stored order.
func SortFavorites(favorites []domain.FavoriteMovie, order domain.FavoriteSort) {
	switch order {
	case domain.FavoriteSortTitle:
		sort.SliceStable(favorites, func(i, j int) bool {
			return strings.ToLower(favorites[i].Title) < strings.ToLower(favorites[j].Title)
		})
	case domain.FavoriteSortRating:
		sort.SliceStable(favorites, func(i, j int) bool {
			return favorites[i].VoteAverage > favorites[j].VoteAverage
		})
	case domain.FavoriteSortYear:
		sort.SliceStable(favorites, func(i, j int) bool {
			return releaseYear(favorites[i].ReleaseDate) > releaseYear(favorites[j].ReleaseDate)
		})
	default:
		sort.SliceStable(favorites, func(i, j int) bool {
			return favorites[i].AddedAt.After(favorites[j].AddedAt)
		})
	}
}

func releaseYear(date string) int {
	if len(date) < 4 {
		return 0
	}
	year := 0
	for _, r := range date[:4] {
		if r < '0' || r > '9' {
			return 0
		}
		year = year*10 + int(r-'0')
	}
	return year
}

func indexOf(favorites []domain.FavoriteMovie, movieID int) int {
	for i, f := range favorites {
		if f.ID == movieID {
			return i
		}
	}
	return -1
}

func without(favorites []domain.FavoriteMovie, movieID int) []domain.FavoriteMovie {
	out := make([]domain.FavoriteMovie, 0, len(favorites))
	for _, f := range favorites {
		if f.ID != movieID {
			out = append(out, f)
		}
	}
	return out
}

func prepend(favorites []domain.FavoriteMovie, f domain.FavoriteMovie) []domain.FavoriteMovie {
	out := make([]domain.FavoriteMovie, 0, len(favorites)+1)
	out = append(out, f)
	return append(out, favorites...)
}
