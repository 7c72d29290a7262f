// Package errors defines the service error taxonomy. Every service error
// carries a Kind that the transport layer maps onto an HTTP status and a
// stable machine-readable code.
package errors

import "errors"

// Kind classifies a service error.
type Kind int

const (
	KindUnknown Kind = iota
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindInvalidSubmission
	KindInvalidTransition
	KindInvalidPayload
	KindInvalidTarget
	KindUpstreamFailure
)

// Code returns the stable machine-readable code for the kind.
func (k Kind) Code() string {
	switch k {
	case KindUnauthenticated:
		return "UNAUTHENTICATED"
	case KindForbidden:
		return "FORBIDDEN"
	case KindNotFound:
		return "NOT_FOUND"
	case KindInvalidSubmission:
		return "INVALID_SUBMISSION"
	case KindInvalidTransition:
		return "INVALID_TRANSITION"
	case KindInvalidPayload:
		return "INVALID_PAYLOAD"
	case KindInvalidTarget:
		return "INVALID_TARGET"
	case KindUpstreamFailure:
		return "UPSTREAM_FAILURE"
	default:
		return "INTERNAL"
	}
}

// Sentinels let callers match on kind with errors.Is without importing the
// concrete error type.
var (
	ErrUnauthenticated   = &Error{Kind: KindUnauthenticated, Message: "unauthenticated"}
	ErrForbidden         = &Error{Kind: KindForbidden, Message: "forbidden"}
	ErrNotFound          = &Error{Kind: KindNotFound, Message: "not found"}
	ErrInvalidSubmission = &Error{Kind: KindInvalidSubmission, Message: "invalid submission"}
	ErrInvalidTransition = &Error{Kind: KindInvalidTransition, Message: "invalid transition"}
	ErrInvalidPayload    = &Error{Kind: KindInvalidPayload, Message: "invalid payload"}
	ErrInvalidTarget     = &Error{Kind: KindInvalidTarget, Message: "invalid target"}
	ErrUpstreamFailure   = &Error{Kind: KindUpstreamFailure, Message: "upstream failure"}
)

// Error is the service error type.
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

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound)
// works regardless of message.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

// New creates a service error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap annotates an underlying error with a kind and message.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

// NewValidationError reports a structurally invalid payload.
func NewValidationError(message string) *Error {
	return &Error{Kind: KindInvalidPayload, Message: message}
}

// KindOf extracts the kind from an error chain, KindUpstreamFailure when the
// chain carries no service error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUpstreamFailure
}

// MessageOf extracts the service message from an error chain. Unclassified
// errors get a generic message so internals never leak to callers.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal error"
}

// CauseOf returns the underlying cause string, empty when there is none.
func CauseOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.cause != nil {
		return e.cause.Error()
	}
	return ""
}
