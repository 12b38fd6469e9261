package model

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures of a single command.
type ErrorKind string

const (
	KindValidation     ErrorKind = "VALIDATION_ERROR"
	KindNotFound       ErrorKind = "NOT_FOUND"
	KindUnauthorized   ErrorKind = "UNAUTHORIZED"
	KindRaceLost       ErrorKind = "RACE_LOST"
	KindTransientStore ErrorKind = "TRANSIENT_STORE_ERROR"
	KindInternalState  ErrorKind = "INTERNAL_STATE_ERROR"
)

// Error is the domain error carried through the live pipeline.
type Error struct {
	Kind    ErrorKind
	Message string
	Field   string // set for validation failures
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches by kind so errors.Is(err, model.ErrNotFound) works for any not-found error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinels for errors.Is checks.
var (
	ErrValidation     = &Error{Kind: KindValidation, Message: "validation failed"}
	ErrNotFound       = &Error{Kind: KindNotFound, Message: "not found"}
	ErrUnauthorized   = &Error{Kind: KindUnauthorized, Message: "unauthorized"}
	ErrRaceLost       = &Error{Kind: KindRaceLost, Message: "concurrent update conflict"}
	ErrTransientStore = &Error{Kind: KindTransientStore, Message: "store unavailable"}
	ErrInternalState  = &Error{Kind: KindInternalState, Message: "internal state error"}
)

// MissingField reports a required command or item field that was not supplied.
func MissingField(field string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: fmt.Sprintf("%s is required", field)}
}

// InvalidField reports a supplied field with an unusable value.
func InvalidField(field, reason string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: fmt.Sprintf("%s %s", field, reason)}
}

func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Unauthorized(format string, args ...any) *Error {
	return &Error{Kind: KindUnauthorized, Message: fmt.Sprintf(format, args...)}
}

func InternalState(format string, args ...any) *Error {
	return &Error{Kind: KindInternalState, Message: fmt.Sprintf(format, args...)}
}

// TransientStore wraps a cache or durable-store I/O failure; callers may retry.
func TransientStore(message string, cause error) *Error {
	return &Error{Kind: KindTransientStore, Message: message, Cause: cause}
}

// KindOf returns the kind of err, or "" when err is not a domain error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
