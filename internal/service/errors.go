package service

import (
	"errors"
)

var (
	ErrUnauthorized    = errors.New("Unauthorized")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrForbidden       = errors.New("Forbidden")
	ErrNotFound        = errors.New("Not found")
)

// Error is a rejected request with the message shown to the client.
// Kind is one of the sentinels above so callers can match with errors.Is.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func invalid(msg string) error {
	return &Error{Kind: ErrInvalidArgument, Message: msg}
}

func notFound(msg string) error {
	return &Error{Kind: ErrNotFound, Message: msg}
}

// Message returns the client-facing text for a service error, or "" when err
// is not one of ours.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	for _, kind := range []error{ErrUnauthorized, ErrForbidden, ErrNotFound} {
		if errors.Is(err, kind) {
			return kind.Error()
		}
	}
	return ""
}
