// Package common defines shared constants and sentinel errors used across
// the analytics core and the HTTP layer. Callers should use errors.Is to
// match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")

	// Input errors: malformed timestamp or a missing required field.
	ErrValidation = errors.New("validation error")

	// Training errors.
	ErrDataNotFound     = errors.New("no training data found")
	ErrInsufficientData = errors.New("insufficient training data")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// InsufficientDataError reports how many training records were available
// when fewer than Required were found. It matches ErrInsufficientData.
type InsufficientDataError struct {
	Count    int
	Required int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%s: need at least %d login records, got %d", ErrInsufficientData, e.Required, e.Count)
}

func (e *InsufficientDataError) Unwrap() error {
	return ErrInsufficientData
}
