package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"movie_explorer/internal/domain"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var _ domain.AuthUseCase = (*authUseCase)(nil)

const SessionTTL = 7 * 24 * time.Hour

// AuthSettings tunes the demo auth flow.
type AuthSettings struct {
	// Latency is the artificial delay before register and login.
	Latency time.Duration
	// ProfileLatency is the artificial delay before a profile update.
	ProfileLatency time.Duration
	// VerifyPassword turns on bcrypt credential checks at login.
	VerifyPassword bool
	Now            Clock
}

// DefaultAuthSettings mirrors the interactive feel of the demo: one second
// for register and login, half of that for profile updates.
func DefaultAuthSettings() AuthSettings {
	return AuthSettings{
		Latency:        time.Second,
		ProfileLatency: 500 * time.Millisecond,
		Now:            time.Now,
	}
}

type authUseCase struct {
	userRepo domain.UserRepository
	settings AuthSettings
	log      *logrus.Logger
}

func NewAuthUseCase(repo domain.UserRepository, settings AuthSettings, logger *logrus.Logger) domain.AuthUseCase {
	if settings.Now == nil {
		settings.Now = time.Now
	}
	return &authUseCase{
		userRepo: repo,
		settings: settings,
		log:      logger,
	}
}

// GetCurrentUser returns nil when there is no live session. An expired
// session is deleted on the way out.
func (uc *authUseCase) GetCurrentUser(ctx context.Context) *domain.User {
	session, err := uc.userRepo.GetSession(ctx)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to read current session: %v", err)
		return nil
	}
	if session == nil {
		return nil
	}
	if session.Expired(uc.settings.Now()) {
		uc.log.Infof("Use Case: Session for user %s expired at %s, removing", session.User.ID, session.ExpiresAt)
		if err := uc.userRepo.DeleteSession(ctx); err != nil {
			uc.log.Errorf("Use Case: Failed to remove expired session: %v", err)
		}
		return nil
	}
	user := session.User
	return &user
}

func (uc *authUseCase) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	uc.log.Infof("Use Case: Attempting registration for email: %s", email)

	if !isValidName(name) {
		uc.log.Warn("Use Case: Registration failed - invalid name length")
		return nil, domain.NewError(domain.ErrValidation, "Name must be between 2 and 50 characters")
	}
	if !isValidEmail(email) {
		uc.log.Warnf("Use Case: Registration failed - invalid email format: %s", email)
		return nil, domain.NewError(domain.ErrValidation, "Please enter a valid email address")
	}
	if err := validatePassword(password); err != nil {
		uc.log.Warnf("Use Case: Registration failed - password validation error: %v", err)
		return nil, err
	}

	if err := sleepContext(ctx, uc.settings.Latency); err != nil {
		return nil, err
	}

	normalized := strings.ToLower(email)
	newUser := domain.User{
		ID:        uuid.NewString(),
		Email:     normalized,
		Name:      strings.TrimSpace(name),
		CreatedAt: uc.settings.Now().UTC(),
	}

	var passwordHash string
	if uc.settings.VerifyPassword {
		hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			uc.log.Errorf("Use Case: Failed to hash password for %s: %v", normalized, err)
			return nil, fmt.Errorf("internal error processing password: %w", err)
		}
		passwordHash = string(hashed)
	}

	err := uc.userRepo.UpdateUsers(ctx, func(users []domain.User) ([]domain.User, error) {
		if findByEmail(users, normalized) >= 0 {
			return nil, domain.NewError(domain.ErrConflict, "An account with this email already exists")
		}
		return append(users, newUser), nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			uc.log.Warnf("Use Case: Registration failed - email already exists: %s", normalized)
			return nil, err
		}
		uc.log.Errorf("Use Case: Failed to persist new user %s: %v", normalized, err)
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	if passwordHash != "" {
		if err := uc.userRepo.SaveCredential(ctx, newUser.ID, passwordHash); err != nil {
			return nil, fmt.Errorf("failed to save credential: %w", err)
		}
	}

	if err := uc.issueSession(ctx, newUser); err != nil {
		return nil, err
	}

	uc.log.Infof("Use Case: User registered successfully. ID: %s, Email: %s", newUser.ID, newUser.Email)
	return &newUser, nil
}

// Login looks the user up by email. The password is only compared when
// VerifyPassword is set.
func (uc *authUseCase) Login(ctx context.Context, email, password string) (*domain.User, error) {
	uc.log.Infof("Use Case: Attempting login for email: %s", email)

	if !isValidEmail(email) {
		return nil, domain.NewError(domain.ErrValidation, "Please enter a valid email address")
	}
	if strings.TrimSpace(password) == "" {
		return nil, domain.NewError(domain.ErrValidation, "Password is required")
	}

	if err := sleepContext(ctx, uc.settings.Latency); err != nil {
		return nil, err
	}

	users, err := uc.userRepo.ListUsers(ctx)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to read users during login: %v", err)
		return nil, fmt.Errorf("failed to retrieve users: %w", err)
	}
	idx := findByEmail(users, strings.ToLower(email))
	if idx < 0 {
		uc.log.Warnf("Use Case: Login failed - user not found: %s", email)
		return nil, domain.NewError(domain.ErrAuthentication, "Invalid email or password")
	}
	user := users[idx]

	if uc.settings.VerifyPassword {
		if err := uc.checkPassword(ctx, user, password); err != nil {
			return nil, err
		}
	}

	if err := uc.issueSession(ctx, user); err != nil {
		return nil, err
	}
	uc.log.Infof("Use Case: Login successful for user %s (ID: %s)", user.Email, user.ID)
	return &user, nil
}

func (uc *authUseCase) checkPassword(ctx context.Context, user domain.User, password string) error {
	hash, err := uc.userRepo.GetCredential(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("failed to retrieve credential: %w", err)
	}
	if hash == "" {
		uc.log.Warnf("Use Case: Login failed - no credential stored for user %s", user.ID)
		return domain.NewError(domain.ErrAuthentication, "Invalid email or password")
	}
	err = bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		uc.log.Warnf("Use Case: Login failed - incorrect password for user %s", user.ID)
		return domain.NewError(domain.ErrAuthentication, "Invalid email or password")
	}
	if err != nil {
		uc.log.Errorf("Use Case: Error comparing password hash for user %s: %v", user.ID, err)
		return fmt.Errorf("internal error during authentication: %w", err)
	}
	return nil
}

func (uc *authUseCase) Logout(ctx context.Context) {
	if err := uc.userRepo.DeleteSession(ctx); err != nil {
		uc.log.Errorf("Use Case: Failed to remove session on logout: %v", err)
		return
	}
	uc.log.Info("Use Case: User logged out")
}

func (uc *authUseCase) UpdateProfile(ctx context.Context, patch domain.ProfilePatch) (*domain.User, error) {
	if err := sleepContext(ctx, uc.settings.ProfileLatency); err != nil {
		return nil, err
	}

	current := uc.GetCurrentUser(ctx)
	if current == nil {
		return nil, domain.NewError(domain.ErrAuthentication, "Not authenticated")
	}

	var updated domain.User
	err := uc.userRepo.UpdateUsers(ctx, func(users []domain.User) ([]domain.User, error) {
		for i := range users {
			if users[i].ID != current.ID {
				continue
			}
			if patch.Name != nil {
				users[i].Name = *patch.Name
			}
			if patch.Avatar != nil {
				avatar := *patch.Avatar
				users[i].Avatar = &avatar
			}
			updated = users[i]
			return users, nil
		}
		return nil, domain.NewError(domain.ErrAuthentication, "User not found")
	})
	if err != nil {
		if errors.Is(err, domain.ErrAuthentication) {
			uc.log.Warnf("Use Case: Profile update failed - user %s not in users list", current.ID)
			return nil, err
		}
		uc.log.Errorf("Use Case: Failed to update profile for user %s: %v", current.ID, err)
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}

	if err := uc.issueSession(ctx, updated); err != nil {
		return nil, err
	}
	uc.log.Infof("Use Case: Profile updated for user %s", updated.ID)
	return &updated, nil
}

func (uc *authUseCase) issueSession(ctx context.Context, user domain.User) error {
	session := &domain.Session{
		User:      user,
		ExpiresAt: uc.settings.Now().Add(SessionTTL).UTC(),
	}
	if err := uc.userRepo.SaveSession(ctx, session); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func findByEmail(users []domain.User, email string) int {
	for i, u := range users {
		if strings.ToLower(u.Email) == email {
			return i
		}
	}
	return -1
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
