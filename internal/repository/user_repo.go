package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"movie_explorer/internal/domain"
	"movie_explorer/internal/storage"

	"github.com/sirupsen/logrus"
)

type userRepository struct {
	store storage.Backend
	log   *logrus.Logger
}

// NewUserRepository stores the registered users list, the current session
// and the optional credential hashes as separate keys.
func NewUserRepository(store storage.Backend, logger *logrus.Logger) domain.UserRepository {
	return &userRepository{
		store: store,
		log:   logger,
	}
}

func (r *userRepository) ListUsers(ctx context.Context) ([]domain.User, error) {
	raw, found, err := r.store.Get(ctx, UsersKey)
	if err != nil {
		r.log.Errorf("Repository: Failed to read users: %v", err)
		return nil, fmt.Errorf("could not read users: %w", err)
	}
	if !found {
		return []domain.User{}, nil
	}
	var users []domain.User
	if err := decodeJSON(raw, &users); err != nil {
		r.log.Warnf("Repository: Stored users are malformed, treating as empty: %v", err)
		return []domain.User{}, nil
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}

func (r *userRepository) UpdateUsers(ctx context.Context, fn func([]domain.User) ([]domain.User, error)) error {
	err := r.store.Update(ctx, UsersKey, func(current []byte, found bool) ([]byte, bool, error) {
		users := []domain.User{}
		if found {
			if err := decodeJSON(current, &users); err != nil {
				r.log.Warnf("Repository: Discarding malformed users: %v", err)
				users = []domain.User{}
			}
		}
		next, err := fn(users)
		if err != nil {
			return nil, false, err
		}
		if next == nil {
			next = []domain.User{}
		}
		encoded, err := json.Marshal(next)
		if err != nil {
			return nil, false, fmt.Errorf("could not encode users: %w", err)
		}
		return encoded, false, nil
	})
	if err != nil {
		r.log.Warnf("Repository: Users update aborted: %v", err)
		return err
	}
	return nil
}

// GetSession returns nil when no session is stored or the stored value is
// malformed.
func (r *userRepository) GetSession(ctx context.Context) (*domain.Session, error) {
	raw, found, err := r.store.Get(ctx, AuthKey)
	if err != nil {
		r.log.Errorf("Repository: Failed to read session: %v", err)
		return nil, fmt.Errorf("could not read session: %w", err)
	}
	if !found {
		return nil, nil
	}
	var session domain.Session
	if err := decodeJSON(raw, &session); err != nil {
		r.log.Warnf("Repository: Stored session is malformed, treating as absent: %v", err)
		return nil, nil
	}
	return &session, nil
}

func (r *userRepository) SaveSession(ctx context.Context, session *domain.Session) error {
	encoded, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("could not encode session: %w", err)
	}
	if err := r.store.Set(ctx, AuthKey, encoded); err != nil {
		r.log.Errorf("Repository: Failed to save session for user %s: %v", session.User.ID, err)
		return fmt.Errorf("could not save session: %w", err)
	}
	r.log.Debugf("Repository: Session saved for user %s until %s", session.User.ID, session.ExpiresAt)
	return nil
}

func (r *userRepository) DeleteSession(ctx context.Context) error {
	if err := r.store.Remove(ctx, AuthKey); err != nil {
		r.log.Errorf("Repository: Failed to delete session: %v", err)
		return fmt.Errorf("could not delete session: %w", err)
	}
	return nil
}

func (r *userRepository) SaveCredential(ctx context.Context, userID, passwordHash string) error {
	err := r.store.Update(ctx, CredentialsKey, func(current []byte, found bool) ([]byte, bool, error) {
		hashes := map[string]string{}
		if found {
			if err := decodeJSON(current, &hashes); err != nil {
				r.log.Warnf("Repository: Discarding malformed credentials: %v", err)
				hashes = map[string]string{}
			}
		}
		hashes[userID] = passwordHash
		encoded, err := json.Marshal(hashes)
		if err != nil {
			return nil, false, err
		}
		return encoded, false, nil
	})
	if err != nil {
		r.log.Errorf("Repository: Failed to save credential for user %s: %v", userID, err)
		return fmt.Errorf("could not save credential: %w", err)
	}
	return nil
}

// GetCredential returns "" when no hash is stored for userID.
func (r *userRepository) GetCredential(ctx context.Context, userID string) (string, error) {
	raw, found, err := r.store.Get(ctx, CredentialsKey)
	if err != nil {
		r.log.Errorf("Repository: Failed to read credentials: %v", err)
		return "", fmt.Errorf("could not read credentials: %w", err)
	}
	if !found {
		return "", nil
	}
	hashes := map[string]string{}
	if err := decodeJSON(raw, &hashes); err != nil {
		r.log.Warnf("Repository: Stored credentials are malformed: %v", err)
		return "", nil
	}
	return hashes[userID], nil
}
