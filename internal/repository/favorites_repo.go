package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"movie_explorer/internal/domain"
	"movie_explorer/internal/storage"

	"github.com/sirupsen/logrus"
)

type favoritesRepository struct {
	store storage.Backend
	log   *logrus.Logger
}

func NewFavoritesRepository(store storage.Backend, logger *logrus.Logger) domain.FavoritesRepository {
	return &favoritesRepository{
		store: store,
		log:   logger,
	}
}

// Load returns the stored list. A missing key yields an empty list; a
// malformed value yields an error wrapping domain.ErrStorageDecode.
func (r *favoritesRepository) Load(ctx context.Context) ([]domain.FavoriteMovie, error) {
	raw, found, err := r.store.Get(ctx, FavoritesKey)
	if err != nil {
		r.log.Errorf("Repository: Failed to read favorites: %v", err)
		return nil, fmt.Errorf("could not read favorites: %w", err)
	}
	if !found {
		return []domain.FavoriteMovie{}, nil
	}
	var favorites []domain.FavoriteMovie
	if err := decodeJSON(raw, &favorites); err != nil {
		r.log.Warnf("Repository: Stored favorites are malformed: %v", err)
		return nil, err
	}
	if favorites == nil {
		favorites = []domain.FavoriteMovie{}
	}
	return favorites, nil
}

// Update treats a malformed stored value as an empty list, so the next write
// repairs it.
func (r *favoritesRepository) Update(ctx context.Context, fn func([]domain.FavoriteMovie) ([]domain.FavoriteMovie, error)) error {
	err := r.store.Update(ctx, FavoritesKey, func(current []byte, found bool) ([]byte, bool, error) {
		favorites := []domain.FavoriteMovie{}
		if found {
			if err := decodeJSON(current, &favorites); err != nil {
				r.log.Warnf("Repository: Discarding malformed favorites: %v", err)
				favorites = []domain.FavoriteMovie{}
			}
		}
		next, err := fn(favorites)
		if err != nil {
			return nil, false, err
		}
		if next == nil {
			next = []domain.FavoriteMovie{}
		}
		encoded, err := json.Marshal(next)
		if err != nil {
			return nil, false, fmt.Errorf("could not encode favorites: %w", err)
		}
		return encoded, false, nil
	})
	if err != nil {
		r.log.Errorf("Repository: Failed to update favorites: %v", err)
		return fmt.Errorf("could not update favorites: %w", err)
	}
	return nil
}

func (r *favoritesRepository) Clear(ctx context.Context) error {
	if err := r.store.Remove(ctx, FavoritesKey); err != nil {
		r.log.Errorf("Repository: Failed to clear favorites: %v", err)
		return fmt.Errorf("could not clear favorites: %w", err)
	}
	r.log.Debug("Repository: Favorites cleared")
	return nil
}
