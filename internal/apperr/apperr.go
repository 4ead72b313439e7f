// Package apperr defines the error taxonomy shared by the engine modules.
// Sentinel errors are matched with errors.Is; ValidationError carries the
// offending field and is matched with errors.As.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means a referenced id vanished between read and mutate.
	// Batch operations skip the item and report it, they never abort.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState means a lifecycle transition was attempted from a
	// state that does not permit it (e.g. completing a non-pending transfer).
	ErrInvalidState = errors.New("invalid state")

	// ErrInsufficientQuantity means a stock move asked for more than the
	// source item currently holds.
	ErrInsufficientQuantity = errors.New("insufficient quantity")
)

// ValidationError rejects bad input before any mutation takes place.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}

// Validation builds a ValidationError for the given field.
func Validation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
