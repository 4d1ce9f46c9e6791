package authsession

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned when no usable session exists for an identity
	// token. Expired, invalidated, and corrupt sessions are normalized to
	// this error after their persisted state has been removed.
	ErrNotFound = errors.New("session not found")
	// ErrConnection is returned when the upstream credential validator
	// rejects the supplied credentials or cannot be reached.
	ErrConnection = errors.New("credential validation failed")
	// ErrStorage is returned when persisting or removing a session fails.
	// Existing persisted state is left untouched.
	ErrStorage = errors.New("session storage failure")
)

// ValidationError reports required credential fields that were missing or
// empty. It is surfaced verbatim to the caller; the upstream validator is
// never invoked when it occurs.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Missing, ", ")
}

// ConnectionError carries the validator's rejection message. It unwraps to
// ErrConnection so callers can branch with errors.Is.
type ConnectionError struct {
	Message string
}

func (e *ConnectionError) Error() string { return e.Message }

func (e *ConnectionError) Unwrap() error { return ErrConnection }
