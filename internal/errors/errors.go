package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Message == "" && e.Cause != nil {
		return e.Cause.Error()
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context. The code of a wrapped AppError is kept.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   err,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithCode adds an error code to an existing error
func WithCode(code string, err error) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    code,
			Message: appErr.Message,
			Cause:   appErr.Cause,
		}
	}
	return &AppError{
		Code:  code,
		Cause: err,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// GetCode returns the code of the outermost AppError in the chain, otherwise "UNKNOWN"
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

// Predefined error codes
const (
	CodeConfigInvalid    = "CONFIG_INVALID"
	CodeMissingColumn    = "MISSING_COLUMN"
	CodeSchemaViolation  = "SCHEMA_VIOLATION"
	CodeDegenerateSubset = "DEGENERATE_SUBSET"
	CodeRenderFailed     = "RENDER_FAILED"
	CodeIOError          = "IO_ERROR"
	CodeInvalidInput     = "INVALID_INPUT"
	CodeInternalError    = "INTERNAL_ERROR"
)

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func MissingColumn(column string) *AppError {
	return New(CodeMissingColumn, fmt.Sprintf("required column %q not found", column))
}

func SchemaViolation(message string) *AppError {
	return New(CodeSchemaViolation, message)
}

func DegenerateSubset(message string) *AppError {
	return New(CodeDegenerateSubset, message)
}

func RenderFailed(chart string, cause error) *AppError {
	return &AppError{
		Code:    CodeRenderFailed,
		Message: fmt.Sprintf("failed to render %s", chart),
		Cause:   cause,
	}
}

func IOError(message string, cause error) *AppError {
	return &AppError{
		Code:    CodeIOError,
		Message: message,
		Cause:   cause,
	}
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}
