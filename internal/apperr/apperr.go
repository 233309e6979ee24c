// Package apperr defines the domain error taxonomy. Services raise these at the
// point of detection; the web boundary maps each kind to an HTTP status and a
// structured payload without modifying the error.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a domain error.
type Kind int

const (
	// KindInternal is an unexpected failure; details are never exposed to callers.
	KindInternal Kind = iota
	// KindNotFound means an entity is absent by id or natural key.
	KindNotFound
	// KindConflict means a unique key already exists on create.
	KindConflict
	// KindInvalidArgument means a semantic rule was violated (wrong current
	// password, mismatched confirmation, insufficient stock).
	KindInvalidArgument
	// KindUnauthenticated means the caller's identity could not be established.
	KindUnauthenticated
	// KindForbidden means the caller lacks a required role.
	KindForbidden
	// KindValidation means field-level constraint violations; FieldErrors carries
	// the field name → message mapping.
	KindValidation
)

// Error is a classified domain error.
type Error struct {
	Kind        Kind
	Message     string
	FieldErrors map[string]string
	Err         error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// NotFound returns a KindNotFound error.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Conflict returns a KindConflict error.
func Conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// InvalidArgument returns a KindInvalidArgument error.
func InvalidArgument(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// Unauthenticated returns a KindUnauthenticated error.
func Unauthenticated(format string, args ...any) *Error {
	return &Error{Kind: KindUnauthenticated, Message: fmt.Sprintf(format, args...)}
}

// Forbidden returns a KindForbidden error.
func Forbidden(format string, args ...any) *Error {
	return &Error{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

// Validation returns a KindValidation error carrying per-field messages.
func Validation(message string, fieldErrors map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: message, FieldErrors: fieldErrors}
}

// Internal wraps an unexpected failure. message is safe to expose; err is not.
func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// KindOf returns the Kind of err, or KindInternal when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Fields returns the field-error map of err, or nil.
func Fields(err error) map[string]string {
	var e *Error
	if errors.As(err, &e) {
		return e.FieldErrors
	}
	return nil
}
