// Package domain provides the sentinel errors shared by ClientForge's
// domain packages. Adapters map them onto HTTP status codes.
package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested client or record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates the record changed since the caller read it
	// (optimistic locking on the version column) or a uniqueness clash.
	ErrConflict = errors.New("conflict: resource was modified by another request")

	// ErrValidation indicates the caller supplied invalid input.
	ErrValidation = errors.New("validation failed")

	// ErrUnavailable indicates an optional upstream (AI, calendar, vault)
	// is not configured or not reachable.
	ErrUnavailable = errors.New("service unavailable")
)

// Invalid returns a validation error carrying a user-facing message.
func Invalid(msg string) error {
	return fmt.Errorf("%s: %w", msg, ErrValidation)
}

// Unavailable reports that the named upstream cannot serve the request.
func Unavailable(upstream string) error {
	return fmt.Errorf("%s: %w", upstream, ErrUnavailable)
}
