package models

import (
	"errors"
	"fmt"
)

// ValidationError carries a machine-readable code alongside the message
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewValidationError creates a validation error with a code and message
func NewValidationError(code, message string) *ValidationError {
	return &ValidationError{Code: code, Message: message}
}

// Custom errors
var (
	ErrNotFound     = errors.New("record not found")
	ErrDuplicateKey = errors.New("duplicate key violation")
	ErrInvalidID    = errors.New("invalid ID format")

	// ErrUnseenCategory is returned when a category value was not present
	// in the fitted label encoding.
	ErrUnseenCategory = errors.New("category not present in fitted encoding")

	// ErrEmptyTrainingPool is returned when an encoding fit is attempted
	// over zero rows.
	ErrEmptyTrainingPool = errors.New("cannot fit encoding on empty training pool")
)
