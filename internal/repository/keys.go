package repository

import (
	"encoding/json"
	"fmt"

	"movie_explorer/internal/domain"
)

// Storage keys, one set per client scope.
const (
	FavoritesKey   = "movie-explorer-favorites"
	UsersKey       = "movie-explorer-users"
	AuthKey        = "movie-explorer-auth"
	CredentialsKey = "movie-explorer-credentials"
)

func decodeJSON(raw []byte, v any) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageDecode, err)
	}
	return nil
}
