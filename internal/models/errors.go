package models

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures surfaced to the view layer.
type ErrorKind string

const (
	KindAuth    ErrorKind = "auth"
	KindFetch   ErrorKind = "fetch"
	KindSend    ErrorKind = "send"
	KindChannel ErrorKind = "channel"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNetworkFailure     = errors.New("network failure")
	ErrValidation         = errors.New("validation failed")
	ErrShapeMismatch      = errors.New("unexpected response shape")
	ErrNotSignedIn        = errors.New("not signed in")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrChannelClosed      = errors.New("realtime channel closed")
)

// Error is the client-side failure type. Err carries one of the sentinel causes
// above, possibly wrapping the underlying transport error.
type Error struct {
	Kind    ErrorKind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Op == "" {
		return fmt.Sprintf("%s error: %s", e.Kind, msg)
	}
	return fmt.Sprintf("%s error: %s: %s", e.Kind, e.Op, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError builds an Error whose cause is err.
func NewError(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Errorf builds an Error with a human readable message and a sentinel cause.
func Errorf(kind ErrorKind, op string, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Message: fmt.Sprintf(format, args...), Err: cause}
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// Reclassify keeps the cause of err but changes its kind, so a REST read failure
// raised while performing a write is reported as a send failure.
func Reclassify(err error, kind ErrorKind) error {
	var e *Error
	if errors.As(err, &e) {
		clone := *e
		clone.Kind = kind
		return &clone
	}
	return NewError(kind, "", err)
}
