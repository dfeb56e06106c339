package domain

import (
	"errors"
	"fmt"
)

var (
	ErrPermissionDenied       = errors.New("permission denied")
	ErrValidation             = errors.New("validation failed")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrInvariantViolation     = errors.New("invariant violation")
	ErrNotFound               = errors.New("not found")
	ErrConcurrencyConflict    = errors.New("aggregate was modified concurrently")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrUserExists             = errors.New("user already exists")
	ErrHandleTaken            = errors.New("handle already taken")
)

// PermissionError is returned when a visa denies an operation. It is always
// caller-fixable and never retried.
type PermissionError struct {
	Op string
}

func NewPermissionError(op string) *PermissionError {
	return &PermissionError{Op: op}
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: %s", e.Op)
}

func (e *PermissionError) Unwrap() error { return ErrPermissionDenied }

// ValidationError is returned when a value object rejects its input.
type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// InvalidStateTransitionError is returned when a status-changing operation is
// attempted from a state that does not allow the target state.
type InvalidStateTransitionError struct {
	From string
	To   string
}

func NewInvalidStateTransitionError(from, to string) *InvalidStateTransitionError {
	return &InvalidStateTransitionError{From: from, To: to}
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("invalid state transition from %s to %s", e.From, e.To)
}

func (e *InvalidStateTransitionError) Unwrap() error { return ErrInvalidStateTransition }

// InvariantViolationError is returned when an operation references state the
// aggregate does not hold, usually a sign of a stale read.
type InvariantViolationError struct {
	Reason string
}

func NewInvariantViolationError(reason string) *InvariantViolationError {
	return &InvariantViolationError{Reason: reason}
}

func (e *InvariantViolationError) Error() string {
	return e.Reason
}

func (e *InvariantViolationError) Unwrap() error { return ErrInvariantViolation }
