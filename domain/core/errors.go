package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	ErrMissingColumn    = errors.New("missing column")
	ErrSchemaViolation  = errors.New("schema violation")
	ErrInsufficientData = errors.New("insufficient data for analysis")
	ErrEmptyTable       = errors.New("empty table")
)

// NewValidationError reports a field that failed validation
func NewValidationError(field string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrSchemaViolation, field, reason)
}

// NewRowError reports a bad value at a 1-based data row
func NewRowError(field string, row int, reason string) error {
	return fmt.Errorf("%w: %s at row %d: %s", ErrSchemaViolation, field, row, reason)
}

// IsValidationError reports whether err stems from schema validation
func IsValidationError(err error) bool {
	return errors.Is(err, ErrSchemaViolation) || errors.Is(err, ErrMissingColumn)
}
