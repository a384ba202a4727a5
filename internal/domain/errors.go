package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrFinalizedRecord   = errors.New("taxation record is finalized")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrDuplicateRecord   = errors.New("duplicate record")
	ErrRulesUnavailable  = errors.New("no statutory rules for tax year")
	ErrIndexUnavailable  = errors.New("cost inflation index unavailable")
)

// ValidationError describes malformed or out-of-range input rejected at construction.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
