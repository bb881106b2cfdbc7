package utils

import (
	"errors"
	"fmt"
)

// Error kinds surfaced to callers. Every service error that is not an
// internal failure unwraps to exactly one of these.
var (
	ErrUnauthenticated  = errors.New("UNAUTHENTICATED")
	ErrForbidden        = errors.New("FORBIDDEN")
	ErrValidationFailed = errors.New("VALIDATION_FAILED")
	ErrNotFound         = errors.New("NOT_FOUND")
	ErrConflict         = errors.New("CONFLICT")
)

// AppError pairs an error kind with a human-readable message.
type AppError struct {
	Kind    error
	Message string
}

func (e *AppError) Error() string { return e.Message }

func (e *AppError) Unwrap() error { return e.Kind }

// NewError builds an AppError of the given kind.
func NewError(kind error, format string, args ...any) error {
	return &AppError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Validationf(format string, args ...any) error {
	return NewError(ErrValidationFailed, format, args...)
}

func NotFoundf(format string, args ...any) error {
	return NewError(ErrNotFound, format, args...)
}

func Conflictf(format string, args ...any) error {
	return NewError(ErrConflict, format, args...)
}

// Forbidden and Unauthenticated never carry detail.
func Forbidden() error { return ErrForbidden }

func Unauthenticated() error { return ErrUnauthenticated }

// ErrorKind returns the kind err unwraps to, or nil for internal errors.
func ErrorKind(err error) error {
	for _, kind := range []error{ErrUnauthenticated, ErrForbidden, ErrValidationFailed, ErrNotFound, ErrConflict} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
