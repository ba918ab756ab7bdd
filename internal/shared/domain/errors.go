package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a failure so adapters can map it without matching on messages.
type Kind string

const (
	KindNotFound          Kind = "not_found"
	KindExpired           Kind = "expired"
	KindUsageLimitReached Kind = "usage_limit_reached"
	KindMinimumCartNotMet Kind = "minimum_cart_not_met"
	KindValidation        Kind = "validation_error"
	KindStorage           Kind = "storage_error"
	KindInvalidTransition Kind = "invalid_transition"
)

// FieldError describes a single invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the structured error shared by every bounded context.
type Error struct {
	Kind    Kind
	Message string
	Fields  []FieldError
	Err     error
}

// NewError creates an error of the given kind. Package-level sentinels are built with it.
func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	for i, f := range e.Fields {
		if i == 0 {
			b.WriteString(": ")
		} else {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "%s %s", f.Field, f.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same kind. A target with a message
// only matches errors carrying that exact message, which keeps sentinels distinct.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Message == "" || t.Message == e.Message
}

// StorageError wraps a persistence failure. The message is safe to show to a user
// and tells them to retry.
func StorageError(err error) *Error {
	return &Error{
		Kind:    KindStorage,
		Message: "storage is temporarily unavailable, please retry",
		Err:     err,
	}
}

// ValidationError bundles per-field failures.
func ValidationError(fields []FieldError) *Error {
	return &Error{
		Kind:    KindValidation,
		Message: "validation failed",
		Fields:  fields,
	}
}

// KindOf returns the kind of err, or an empty Kind when err is not a domain error.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
