// Package apperr is the error taxonomy shared by the services and the HTTP layer.
package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/wolfeidau/inspect/internal/store"
)

// Kind classifies an error for callers and transports.
type Kind int

const (
	KindInternal Kind = iota
	KindUnauthenticated
	KindForbidden
	KindResourceInactive
	KindNotFound
	KindValidation
	KindTransient
)

var kindNames = map[Kind]string{
	KindInternal:         "internal",
	KindUnauthenticated:  "unauthenticated",
	KindForbidden:        "forbidden",
	KindResourceInactive: "resource_inactive",
	KindNotFound:         "not_found",
	KindValidation:       "validation",
	KindTransient:        "transient",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error carries a Kind, a message safe to show to callers and the underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Details []string // Field level validation failures
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New returns an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap returns an error of the given kind caused by err.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Unauthenticated(message string) *Error { return New(KindUnauthenticated, message) }

func Forbidden(message string) *Error { return New(KindForbidden, message) }

func ResourceInactive(message string) *Error { return New(KindResourceInactive, message) }

func NotFound(message string) *Error { return New(KindNotFound, message) }

// Validation returns a validation error with optional per-field details.
func Validation(message string, details ...string) *Error {
	return &Error{Kind: KindValidation, Message: message, Details: details}
}

// Transient wraps a storage failure the caller may retry.
func Transient(err error) *Error {
	return Wrap(KindTransient, "service temporarily unavailable", err)
}

// Internal wraps an unexpected failure.
func Internal(err error) *Error {
	return Wrap(KindInternal, "internal server error", err)
}

// KindOf classifies any error. Storage unavailability and context expiry are transient.
func KindOf(err error) Kind {
	if err == nil {
		return KindInternal
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	switch {
	case errors.Is(err, store.ErrUnavailable),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return KindTransient
	}
	return KindInternal
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTPStatus maps a Kind to its HTTP status code.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden, KindResourceInactive:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusBadRequest
	case KindTransient:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// FromStore translates store sentinels into the taxonomy. Errors that are already
// classified pass through unchanged.
func FromStore(err error) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	switch {
	case errors.Is(err, store.ErrPrincipalNotFound):
		return Wrap(KindNotFound, "User not found", err)
	case errors.Is(err, store.ErrOrganizationNotFound):
		return Wrap(KindNotFound, "Organization not found", err)
	case errors.Is(err, store.ErrInspectionNotFound):
		return Wrap(KindNotFound, "Inspection not found", err)
	case errors.Is(err, store.ErrPrincipalAlreadyExists):
		return &Error{Kind: KindValidation, Message: "User with this email already exists", Err: err}
	case errors.Is(err, store.ErrOrganizationAlreadyExists):
		return &Error{Kind: KindValidation, Message: "Organization name already exists", Err: err}
	}
	if KindOf(err) == KindTransient {
		return Transient(err)
	}
	return Internal(err)
}
