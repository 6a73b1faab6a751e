package domain

import (
	"context"
	"time"
)

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Avatar    *string   `json:"avatar,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Session is the persisted "current user" record.
type Session struct {
	User      User      `json:"user"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && s.ExpiresAt.Before(now)
}

// ProfilePatch carries the optional fields of a profile update.
type ProfilePatch struct {
	Name   *string `json:"name,omitempty"`
	Avatar *string `json:"avatar,omitempty"`
}

type UserRepository interface {
	ListUsers(ctx context.Context) ([]User, error)
	// UpdateUsers is a read-modify-write over the registered users list.
	UpdateUsers(ctx context.Context, fn func([]User) ([]User, error)) error
	GetSession(ctx context.Context) (*Session, error)
	SaveSession(ctx context.Context, session *Session) error
	DeleteSession(ctx context.Context) error
	SaveCredential(ctx context.Context, userID, passwordHash string) error
	GetCredential(ctx context.Context, userID string) (string, error)
}

type AuthUseCase interface {
	GetCurrentUser(ctx context.Context) *User
	Register(ctx context.Context, name, email, password string) (*User, error)
	Login(ctx context.Context, email, password string) (*User, error)
	Logout(ctx context.Context)
	UpdateProfile(ctx context.Context, patch ProfilePatch) (*User, error)
}
