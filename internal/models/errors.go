package models

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by the store when no document matches an id.
var ErrNotFound = errors.New("document not found")

// ValidationError rejects a mutation before any write happens.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// SourceUnavailableError wraps a failed read of one ledger source.
// Aggregation continues in partial mode when it occurs.
type SourceUnavailableError struct {
	Source string
	Cause  error
}

func (e *SourceUnavailableError) Error() string {
	return fmt.Sprintf("source %q unavailable: %v", e.Source, e.Cause)
}

func (e *SourceUnavailableError) Unwrap() error { return e.Cause }
