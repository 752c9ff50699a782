// Package apierr defines the error kinds surfaced at API boundaries and the
// translation from internal sentinel errors to those kinds, following the
// sentinel-plus-wrap idiom used throughout the storage layer
// (see internal/storage/sqlite/errors.go: wrapDBError + errors.Is).
package apierr

import (
	"errors"
	"fmt"
)

// Kind names an error category, not a concrete type — callers classify
// with errors.Is against the sentinels below, then map to Kind for
// HTTP-adjacent reporting.
type Kind string

const (
	KindNotFound            Kind = "NotFound"
	KindInvalidInput        Kind = "InvalidInput"
	KindUnauthorized        Kind = "Unauthorized"
	KindForbidden           Kind = "Forbidden"
	KindConflict            Kind = "Conflict"
	KindServiceUnavailable  Kind = "ServiceUnavailable"
	KindInference           Kind = "Inference"
	KindSearch              Kind = "Search"
	KindDatabase            Kind = "Database"
	KindSerialization       Kind = "Serialization"
	KindIO                  Kind = "IO"
	KindInternal            Kind = "Internal"
)

// Sentinel errors. Package code wraps these with fmt.Errorf("%s: %w", op, Err...)
// the way internal/storage/sqlite/errors.go wraps ErrNotFound/ErrConflict.
var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrInference          = errors.New("inference error")
	ErrSearch             = errors.New("search error")
	ErrSerialization      = errors.New("serialization error")
)

// Error is the structured, user-visible failure shape returned at API
// boundaries: {error: "<kind>", message: "<human>"}.
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

func (e *Error) Unwrap() error { return e.cause }

// New constructs an Error of the given kind with a human message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap constructs an Error of the given kind, preserving cause for errors.Is/As.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

// Classify maps an arbitrary error to its Kind by sentinel membership,
// falling back to KindInternal for anything unrecognized. Database errors
// reach this boundary only as raw errors from a repository — translation
// happens once here, not scattered through handlers.
func Classify(err error) Kind {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrServiceUnavailable):
		return KindServiceUnavailable
	case errors.Is(err, ErrInference):
		return KindInference
	case errors.Is(err, ErrSearch):
		return KindSearch
	case errors.Is(err, ErrSerialization):
		return KindSerialization
	default:
		return KindInternal
	}
}

// FriendlyConstraintMessage substitutes a human-readable message for known
// unique-constraint names. Unknown constraints pass through unchanged so
// the caller can fall back to a generic conflict message.
func FriendlyConstraintMessage(constraintName string) (string, bool) {
	switch constraintName {
	case "pref_label", "concepts_pref_label_key":
		return "A concept with this prefLabel already exists in the scheme", true
	case "notation", "concepts_notation_key":
		return "A concept with this notation already exists in the scheme", true
	case "tag_name", "tags_name_key":
		return "A tag with this name already exists", true
	default:
		return "", false
	}
}
