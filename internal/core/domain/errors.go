package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every *Error unwraps to exactly one of these.
var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrCapacity   = errors.New("insufficient capacity")
	ErrRateLimit  = errors.New("rate limit exceeded")
	ErrState      = errors.New("invalid state")
)

// Error is the structured failure returned by the booking core. Details carries
// the context fields the caller needs to render a useful response.
type Error struct {
	Kind    error
	Message string
	Field   string
	Details map[string]any
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func NewValidationError(field, format string, args ...any) *Error {
	return &Error{Kind: ErrValidation, Field: field, Message: fmt.Sprintf(format, args...)}
}

func NewNotFoundError(format string, args ...any) *Error {
	return &Error{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

func NewStateError(format string, args ...any) *Error {
	return &Error{Kind: ErrState, Message: fmt.Sprintf(format, args...)}
}

func (e *Error) With(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}
