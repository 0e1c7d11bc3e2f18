package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for the HTTP boundary. Every business-rule
// failure in the service layer carries exactly one kind.
type Kind string

const (
	KindValidation Kind = "VALIDATION"
	KindConflict   Kind = "CONFLICT"
	KindAuth       Kind = "AUTH"
	KindPermission Kind = "PERMISSION"
	KindRateLimit  Kind = "RATE_LIMIT"
	KindDependency Kind = "DEPENDENCY"
	KindInternal   Kind = "INTERNAL"
)

// Error is a typed service error: a stable machine-readable kind plus a
// human-readable message safe to return to clients.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is makes errors.Is match on kind, so sentinel comparisons like
// errors.Is(err, apperr.Auth("")) are not needed; use KindOf instead.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Validation reports malformed or policy-violating input.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Conflict reports a uniqueness violation (duplicate email/phone).
func Conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// Auth reports a failed credential, token, or code check. Messages are kept
// uniform where enumeration is a risk.
func Auth(format string, args ...any) *Error {
	return &Error{Kind: KindAuth, Message: fmt.Sprintf(format, args...)}
}

// Permission reports an identifiable actor blocked by role or active-status
// policy.
func Permission(format string, args ...any) *Error {
	return &Error{Kind: KindPermission, Message: fmt.Sprintf(format, args...)}
}

// RateLimit reports a throttling rule being hit.
func RateLimit(format string, args ...any) *Error {
	return &Error{Kind: KindRateLimit, Message: fmt.Sprintf(format, args...)}
}

// Dependency reports an external collaborator failure or timeout.
func Dependency(message string, cause error) *Error {
	return &Error{Kind: KindDependency, Message: message, cause: cause}
}

// Internal wraps an unexpected error. The message shown to clients stays
// generic; the cause is preserved for logging.
func Internal(message string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: message, cause: cause}
}

// KindOf returns the kind of err, or KindInternal for untyped errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the client-safe message of err, or a generic fallback
// for untyped errors.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal server error"
}
