package utils

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures for control-surface mapping.
type ErrorKind int

const (
	// KindInternal is an unexpected failure.
	KindInternal ErrorKind = iota
	// KindValidation is a rejected request; no state mutation occurred.
	KindValidation
	// KindConflict is a request invalid in the current lifecycle state.
	KindConflict
	// KindUnavailable is a missing input (no position fix, provider empty).
	KindUnavailable
)

// AppError wraps an operation, human-facing message, and underlying error.
type AppError struct {
	Op   string
	Msg  string
	Kind ErrorKind
	Err  error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Msg)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError constructs an internal AppError.
func NewAppError(op, msg string, err error) error {
	return &AppError{Op: op, Msg: msg, Kind: KindInternal, Err: err}
}

// NewValidationError constructs a client-facing rejection.
func NewValidationError(op, msg string) error {
	return &AppError{Op: op, Msg: msg, Kind: KindValidation}
}

// NewConflictError marks a request that is invalid in the current state.
func NewConflictError(op, msg string) error {
	return &AppError{Op: op, Msg: msg, Kind: KindConflict}
}

// NewUnavailableError marks a missing-input condition.
func NewUnavailableError(op, msg string) error {
	return &AppError{Op: op, Msg: msg, Kind: KindUnavailable}
}

// KindOf extracts the ErrorKind from an error chain, defaulting to internal.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}
