// Package apperr defines the non-fatal failure taxonomy shared by the
// collaborator adapters and the services that absorb their failures.
package apperr

import (
	"errors"
	"fmt"
)

// Kind is the category of a failure.
type Kind int

const (
	KindUnknown Kind = iota
	// KindPermissionDenied means the user has not granted location access.
	KindPermissionDenied
	// KindProviderFailure means an external network or service call failed.
	KindProviderFailure
	// KindDecode means an encoded polyline was malformed.
	KindDecode
	// KindNotFound means a lookup found nothing.
	KindNotFound
	// KindValidation means the caller supplied invalid input.
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindPermissionDenied:
		return "permission_denied"
	case KindProviderFailure:
		return "provider_failure"
	case KindDecode:
		return "decode_error"
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// Error is a failure tagged with its Kind and the operation that produced it.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	} else if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, msg)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error of the given kind.
func New(kind Kind, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message}
}

// Wrap tags err with a kind and operation.
func Wrap(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// PermissionDenied creates a permission error.
func PermissionDenied(op string) *Error {
	return New(KindPermissionDenied, op, "location permission not granted")
}

// NotFound creates a not found error.
func NotFound(op, message string) *Error {
	return New(KindNotFound, op, message)
}

// ProviderFailure wraps a failed external call.
func ProviderFailure(op string, err error) *Error {
	return Wrap(KindProviderFailure, op, err)
}

// GetKind extracts the kind from anywhere in err's chain. Errors that carry
// no kind are reported as provider failures, since they come from the
// collaborator boundary.
func GetKind(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindProviderFailure
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
