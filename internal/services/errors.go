package services

import (
	"errors"
	"fmt"

	"thrift-swap-backend/internal/repository"
)

var (
	// ErrUnauthenticated is returned when no valid identity accompanies the call
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrNotFound covers missing rows and rows the caller may not see. It is
	// the storage sentinel so store errors pass through unchanged.
	ErrNotFound = repository.ErrNotFound
)

// ValidationError describes malformed or missing input
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
