package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates content of a type no normaliser handles.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrPolicyDenied indicates the fetch gateway refused an outbound request.
	ErrPolicyDenied = errors.New("policy denied")

	// ErrUpstream indicates the search engine or a remote host failed.
	ErrUpstream = errors.New("upstream failure")

	// ErrTimeout indicates a network operation exceeded its budget.
	ErrTimeout = errors.New("timeout")

	// ErrOverloaded indicates the concurrency limits are exhausted.
	ErrOverloaded = errors.New("overloaded")
)

// ErrorKind classifies an Error so callers can branch programmatically.
type ErrorKind string

// Error kinds.
const (
	KindValidation   ErrorKind = "validation"
	KindNotFound     ErrorKind = "not_found"
	KindPolicyDenied ErrorKind = "policy_denied"
	KindUpstream     ErrorKind = "upstream"
	KindTimeout      ErrorKind = "timeout"
	KindOverloaded   ErrorKind = "overloaded"
)

// sentinel returns the package-level error matching a kind.
func (k ErrorKind) sentinel() error {
	switch k {
	case KindValidation:
		return ErrInvalidInput
	case KindNotFound:
		return ErrNotFound
	case KindPolicyDenied:
		return ErrPolicyDenied
	case KindUpstream:
		return ErrUpstream
	case KindTimeout:
		return ErrTimeout
	case KindOverloaded:
		return ErrOverloaded
	default:
		return nil
	}
}

// Error is the structured error surfaced to callers of the core.
// Message is human-readable, Hint names the corrective action.
type Error struct {
	Kind    ErrorKind
	Message string
	Hint    string

	// Reason is set for policy denials.
	Reason DenyReason

	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for this error's kind.
func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// Retryable reports whether the caller may retry the same request.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case KindUpstream, KindTimeout, KindOverloaded:
		return true
	default:
		return false
	}
}

// Validation creates a validation error with a remediation hint.
func Validation(message, hint string) *Error {
	return &Error{Kind: KindValidation, Message: message, Hint: hint}
}

// NotFound creates a not-found error.
func NotFound(message, hint string) *Error {
	return &Error{Kind: KindNotFound, Message: message, Hint: hint}
}

// PolicyDenied creates an error for a gateway denial.
func PolicyDenied(reason DenyReason, message string) *Error {
	return &Error{
		Kind:    KindPolicyDenied,
		Message: message,
		Reason:  reason,
		Hint:    reason.hint(),
	}
}

// Upstream wraps a failure of the index or a remote host.
func Upstream(message string, err error) *Error {
	return &Error{
		Kind:    KindUpstream,
		Message: message,
		Hint:    "the request may be retried",
		Err:     err,
	}
}

// Timeout wraps an expired network budget.
func Timeout(message string, err error) *Error {
	return &Error{
		Kind:    KindTimeout,
		Message: message,
		Hint:    "the request may be retried; no partial content was returned",
		Err:     err,
	}
}

// Overloaded reports that the concurrency limit and queue are full.
func Overloaded(message string) *Error {
	return &Error{
		Kind:    KindOverloaded,
		Message: message,
		Hint:    "retry after a short delay",
	}
}

// AsError extracts a structured Error from err.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the kind of err, or "" if err is not structured.
func KindOf(err error) ErrorKind {
	if e, ok := AsError(err); ok {
		return e.Kind
	}
	return ""
}
