// Package apperrors defines the error taxonomy shared by the services and
// the mapping from errors to HTTP status codes at the boundary.
package apperrors

import (
	"errors"
	"net/http"
)

var (
	// ErrConflict signals a duplicate value for a unique field.
	ErrConflict = errors.New("conflict")
	// ErrNotAuthorized signals missing or invalid credentials or session.
	ErrNotAuthorized = errors.New("not authorized")
	// ErrNotFound signals that a referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrPersistence signals a store-level failure.
	ErrPersistence = errors.New("persistence failure")
)

// Status maps a service error to its HTTP status code. Unknown errors are
// treated as persistence failures.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotAuthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
