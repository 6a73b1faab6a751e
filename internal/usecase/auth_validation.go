package usecase

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"movie_explorer/internal/domain"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// isValidEmail checks the address exactly as typed; callers normalize case
// afterwards.
func isValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// isValidName accepts 2 to 50 characters once surrounding space is trimmed.
func isValidName(name string) bool {
	n := utf8.RuneCountInString(strings.TrimSpace(name))
	return n >= 2 && n <= 50
}

// validatePassword returns the first rule the password breaks. Letter and
// digit classes are ASCII only.
func validatePassword(password string) error {
	if utf8.RuneCountInString(password) < 8 {
		return domain.NewError(domain.ErrValidation, "Password must be at least 8 characters long")
	}
	hasUpper := false
	hasLower := false
	hasDigit := false
	for _, char := range password {
		switch {
		case char >= 'A' && char <= 'Z':
			hasUpper = true
		case char >= 'a' && char <= 'z':
			hasLower = true
		case char >= '0' && char <= '9':
			hasDigit = true
		}
	}
	if !hasUpper {
		return domain.NewError(domain.ErrValidation, "Password must contain at least one uppercase letter")
	}
	if !hasLower {
		return domain.NewError(domain.ErrValidation, "Password must contain at least one lowercase letter")
	}
	if !hasDigit {
		return domain.NewError(domain.ErrValidation, "Password must contain at least one number")
	}
	return nil
}
