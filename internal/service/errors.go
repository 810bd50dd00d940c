package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when a referenced entity does not exist,
	// including removal of a relation that was never added.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned when an add-relation operation hits an
	// existing (user, target) pair.
	ErrAlreadyExists = errors.New("already exists")

	// ErrForbidden is returned when the actor is not the recipe's author.
	ErrForbidden = errors.New("forbidden")

	// ErrEmptyShoppingCart is returned when a shopping list export is
	// requested with nothing in the cart.
	ErrEmptyShoppingCart = errors.New("shopping cart is empty")

	// ErrInvalidCredentials is returned on failed login attempts.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken is returned when a bearer token fails validation.
	ErrInvalidToken = errors.New("invalid token")
)

// ValidationError reports malformed or out-of-range input, naming the
// offending field. All validation happens before any write.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func newValidationError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// isUniqueViolation reports whether err is a storage-level unique
// constraint failure. Matched textually so it covers both Postgres and the
// sqlite driver used in tests.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "SQLSTATE 23505")
}
