package domain

import "errors"

// Error kinds surfaced by the catalog and auth layers. Callers wrap them with
// a human-readable message and match with errors.Is.
var (
	ErrConfiguration  = errors.New("configuration error")
	ErrAuthentication = errors.New("authentication error")
	ErrValidation     = errors.New("validation error")
	ErrConflict       = errors.New("conflict")
	ErrUpstream       = errors.New("upstream error")
	ErrConnectivity   = errors.New("connectivity error")
	// ErrStorageDecode marks malformed persisted JSON. It is always recovered
	// inside the persistence layer.
	ErrStorageDecode = errors.New("storage decode error")
)

// Error pairs a user-facing message with one of the kinds above.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

// NewError builds an Error of the given kind.
func NewError(kind error, message string) error {
	return &Error{Kind: kind, Message: message}
}
