// Package apperrors defines the error kinds shared by the domain services and
// the HTTP layer.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies an application error.
type Kind string

const (
	// KindValidation marks client-correctable input errors.
	KindValidation Kind = "validation"

	// KindNotFound marks an identity that does not resolve.
	KindNotFound Kind = "not_found"

	// KindStorage marks a failing or unreachable store.
	KindStorage Kind = "storage"
)

// Error is the application error carried across layers.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation returns a validation error with a formatted message.
func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFound returns a not-found error for the given entity and id.
func NotFound(entity string, id fmt.Stringer) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s %s not found", entity, id)}
}

// Storage wraps a store failure.
func Storage(message string, err error) *Error {
	return &Error{Kind: KindStorage, Message: message, Err: err}
}

// KindOf returns the kind of err, or the empty kind when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func IsValidation(err error) bool { return KindOf(err) == KindValidation }

func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

func IsStorage(err error) bool { return KindOf(err) == KindStorage }

// HTTPStatus maps err to the status code surfaced to API callers. Errors that
// carry no kind are treated as storage failures.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Violations collects field-level validation failures for one entity.
type Violations []string

// Add records a failure.
func (v *Violations) Add(format string, args ...interface{}) {
	*v = append(*v, fmt.Sprintf(format, args...))
}

// Err returns nil when nothing was recorded, otherwise a validation error
// listing every failure.
func (v Violations) Err(entity string) error {
	if len(v) == 0 {
		return nil
	}
	return Validation("invalid %s: %s", entity, strings.Join(v, "; "))
}
