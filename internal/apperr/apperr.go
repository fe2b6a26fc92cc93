// Package apperr is the error taxonomy every Access Layer operation returns.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	NotAuthenticated      Kind = "not_authenticated"
	NotFound              Kind = "not_found"
	AuthorizationDenied   Kind = "authorization_denied"
	BackendNotInitialized Kind = "backend_not_initialized"
	Conflict              Kind = "conflict"
	RemoteFailure         Kind = "remote_failure"
	Timeout               Kind = "timeout"
	Invalid               Kind = "invalid"
)

// Error carries a Kind for callers and the underlying cause for logs.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Denied(format string, args ...interface{}) *Error {
	return New(AuthorizationDenied, fmt.Sprintf(format, args...))
}

func Invalidf(format string, args ...interface{}) *Error {
	return New(Invalid, fmt.Sprintf(format, args...))
}

// KindOf returns the Kind of the first *Error in err's chain, or RemoteFailure
// for any other non-nil error.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return RemoteFailure
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
