package apperrors

import (
	"errors"
	"fmt"
)

// Resource errors
var (
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")
	ErrConflict              = errors.New("conflict")
)

// Authentication errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenNotFound      = errors.New("token not found")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrRateLimited        = errors.New("too many attempts")
)

// Authorization errors
var (
	ErrPermissionDenied = errors.New("permission denied")
)

// Validation errors
var (
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")
	ErrNotImplemented   = errors.New("not implemented")
)

// User errors
var (
	ErrUserNotFound       = fmt.Errorf("user %w", ErrResourceNotFound)
	ErrEmailAlreadyExists = fmt.Errorf("email %w", ErrResourceAlreadyExists)
)

// Content errors
var (
	ErrNewsNotFound    = fmt.Errorf("news item %w", ErrResourceNotFound)
	ErrTeacherNotFound = fmt.Errorf("teacher %w", ErrResourceNotFound)
)

// Upload errors
var (
	ErrNoFile           = errors.New("no file provided")
	ErrInvalidFileType  = errors.New("invalid file type")
	ErrFileSizeExceeded = errors.New("file size exceeded")
	ErrUploadFailed     = errors.New("upload failed")
)

// NewValidationError wraps ErrValidationFailed with a user-facing message and
// the offending field.
func NewValidationError(field, message string) *CustomError {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
		Details: map[string]interface{}{"field": field},
	}
}

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) error {
	return &CustomError{
		Err:     ErrPermissionDenied,
		Message: message,
	}
}

// CustomError carries a user-facing message on top of a sentinel error.
type CustomError struct {
	Err     error
	Message string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}
