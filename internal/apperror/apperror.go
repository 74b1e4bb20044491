// Package apperror defines the application's error taxonomy.
//
// Every layer below the HTTP handlers returns either a plain wrapped error
// (an unexpected failure, mapped to a generic 500) or an *AppError whose
// sentinel tells the handler which status code to use:
//
//	ErrValidation   → 400  (empty term, unknown mode, malformed body)
//	ErrUnauthorized → 401  (no valid session)
//	ErrForbidden    → 403
//	ErrNotFound     → 404
//	ErrConflict     → 409
//	ErrUpstream     → 500  (the completion provider failed; cause is never exposed)
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrUpstream     = errors.New("upstream failure")
)

type AppError struct {
	Err     error  // sentinel, matched with errors.Is
	Message string // safe to show to the caller
	Field   string // optional: request field that failed validation
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict with id %s", resource, id),
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Unauthorized means the request carries no usable session.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// UpstreamFailed wraps a failure of an external dependency behind a fixed,
// caller-safe message. The underlying cause must be logged by whoever calls
// this; it is deliberately not kept in the returned error.
func UpstreamFailed(message string) *AppError {
	return &AppError{
		Err:     ErrUpstream,
		Message: message,
	}
}
