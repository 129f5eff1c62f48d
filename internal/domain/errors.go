package domain

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrNotFound           = errors.New("not found")
	ErrWalletNotFound     = errors.New("wallet not found")
	ErrNoCard             = errors.New("no card available")
	ErrEmailTaken         = errors.New("email already registered")
	ErrCorruptStore       = errors.New("store is corrupt")
)

// ValidationError describes one rejected field. It matches ErrInvalidInput.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
