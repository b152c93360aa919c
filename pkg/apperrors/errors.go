// Package apperrors defines the error taxonomy the report pipeline
// surfaces to callers. Every boundary failure is classified by Kind so
// transports can map it without inspecting messages.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure.
type Kind string

const (
	// KindInvalidParams flags caller input that cannot be used.
	KindInvalidParams Kind = "invalid_parameters"
	// KindZoneNotResolvable flags a zone label with no fact rows behind it.
	KindZoneNotResolvable Kind = "zone_not_resolvable"
	// KindStoreUnavailable flags fact-store failures, including timeouts.
	KindStoreUnavailable Kind = "store_unavailable"
	// KindInvariant flags internal states that should never occur.
	KindInvariant Kind = "invariant_violation"
)

// Error is a classified failure. The message is caller-safe; the
// wrapped cause is for logs only.
type Error struct {
	kind Kind
	msg  string
	orig error
}

func New(kind Kind, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// Wrap classifies an underlying error, keeping it reachable through
// errors.Is / errors.As.
func Wrap(err error, kind Kind, msg string) *Error {
	return &Error{kind: kind, msg: msg, orig: err}
}

func (e *Error) Error() string {
	if e.orig != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.orig)
	}
	return e.msg
}

func (e *Error) Unwrap() error { return e.orig }

func (e *Error) Kind() Kind { return e.kind }

// Message is the caller-safe part of the error, without the cause.
func (e *Error) Message() string { return e.msg }

// KindOf extracts the Kind of err. Unclassified errors count as
// invariant violations.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind()
	}
	return KindInvariant
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// MessageOf is the caller-safe message of err. Unclassified errors get
// a generic message so internals never leak to callers.
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message()
	}
	return "internal error"
}

// HTTPStatus maps a Kind to its transport status.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindInvalidParams:
		return http.StatusBadRequest
	case KindZoneNotResolvable:
		return http.StatusNotFound
	case KindStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
