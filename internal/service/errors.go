package service

import (
	"errors"
	"fmt"

	"estimate-service/internal/store"
)

var (
	// ErrValidation marks a missing or malformed input field
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks a referenced quote, contract or item that does not exist
	ErrNotFound = errors.New("not found")
	// ErrConflict marks a request that contradicts the current state, e.g. signing twice
	ErrConflict = errors.New("conflict")
	// ErrStore marks a failed record store operation
	ErrStore = errors.New("record store failure")
)

func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func conflictError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

// storeError classifies a repository error. Missing rows become ErrNotFound,
// everything else ErrStore with the original message kept for diagnostics.
func storeError(op string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, err.Error())
	}
	return fmt.Errorf("%w: %s: %w", ErrStore, op, err)
}
