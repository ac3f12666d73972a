package services

import (
	"errors"
	"fmt"

	"chemstore/internal/upload"
)

// Kind classifies a service failure. Handlers map each kind to one HTTP status.
type Kind int

const (
	KindInternal Kind = iota
	KindUnauthorized
	KindForbidden
	KindInvalidInput
	KindNotFound
	KindInvalidState
	KindConflict
	KindUploadFailed
)

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindInvalidInput:
		return "invalid input"
	case KindNotFound:
		return "not found"
	case KindInvalidState:
		return "invalid state"
	case KindConflict:
		return "conflict"
	case KindUploadFailed:
		return "upload failed"
	default:
		return "internal"
	}
}

// Error is returned by every exported service operation.
type Error struct {
	Kind    Kind
	Message string
	// Fields lists the offending request fields for KindInvalidInput.
	Fields []string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of err, or KindInternal for errors not produced by
// this package.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

func newError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func unauthorized(format string, args ...interface{}) *Error {
	return newError(KindUnauthorized, format, args...)
}

func invalidInput(format string, args ...interface{}) *Error {
	return newError(KindInvalidInput, format, args...)
}

func notFound(format string, args ...interface{}) *Error {
	return newError(KindNotFound, format, args...)
}

func invalidState(format string, args ...interface{}) *Error {
	return newError(KindInvalidState, format, args...)
}

func conflict(format string, args ...interface{}) *Error {
	return newError(KindConflict, format, args...)
}

// internal wraps an unexpected failure. The message is safe to show a client;
// err is logged by the transport layer.
func internal(err error, format string, args ...interface{}) *Error {
	return &Error{Kind: KindInternal, Message: fmt.Sprintf(format, args...), Err: err}
}

// passThrough keeps service errors raised inside a transaction intact and
// wraps everything else as internal.
func passThrough(err error, format string, args ...interface{}) error {
	var se *Error
	if errors.As(err, &se) {
		return se
	}
	return internal(err, format, args...)
}

// uploadFailed classifies an uploader error. A file of the wrong type is the
// client's fault and names field; anything else is an UploadFailed.
func uploadFailed(err error, field, message string) *Error {
	if errors.Is(err, upload.ErrUnsupportedType) {
		return &Error{
			Kind:    KindInvalidInput,
			Message: "Unsupported file type for " + field + ": use PDF, PNG, JPEG or WebP",
			Fields:  []string{field},
			Err:     err,
		}
	}
	return &Error{Kind: KindUploadFailed, Message: message, Err: err}
}
