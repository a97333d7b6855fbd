// Package apperr defines the transport-independent error kinds surfaced
// by the credential and message subsystems. The HTTP layer maps kinds to
// status codes; nothing in this package knows about transports.
package apperr

import "errors"

// Kind classifies an application error.
type Kind int

const (
	// KindUnknown marks errors that carry no application kind, such as
	// infrastructure failures propagated from the persistence layer.
	KindUnknown Kind = iota

	// KindInvalidInput marks requests missing required fields or
	// referencing values that cannot be accepted.
	KindInvalidInput

	// KindNotFound marks lookups of usernames or message ids that do
	// not exist.
	KindNotFound

	// KindConflict marks uniqueness violations, such as registering a
	// username that is already taken.
	KindConflict

	// KindUnauthorized marks operations the acting identity is not
	// permitted to perform on the target record.
	KindUnauthorized
)

// Error is a tagged application error.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// New constructs a tagged error with the given kind and message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap constructs a tagged error preserving the underlying cause for
// errors.Is/As chains.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

func InvalidInput(message string) *Error { return New(KindInvalidInput, message) }
func NotFound(message string) *Error     { return New(KindNotFound, message) }
func Conflict(message string) *Error     { return New(KindConflict, message) }
func Unauthorized(message string) *Error { return New(KindUnauthorized, message) }

// KindOf returns the kind carried by err, or KindUnknown when err is
// not a tagged application error.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
