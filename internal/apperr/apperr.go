// Package apperr defines the tagged error taxonomy shared by all services.
// Callers branch on Kind, never on message text.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error into one of the taxonomy categories.
type Kind string

const (
	// KindValidation marks malformed or out-of-range input.
	KindValidation Kind = "validation"
	// KindPermission marks an action the principal is not allowed to perform.
	KindPermission Kind = "permission"
	// KindState marks an operation attempted against an archived group.
	KindState Kind = "state"
	// KindConflict marks a duplicate record (e.g., member already exists).
	KindConflict Kind = "conflict"
	// KindNotFound marks a missing group, member, or user.
	KindNotFound Kind = "not_found"
	// KindStore marks a failed or timed-out store call.
	KindStore Kind = "store"
)

// Error carries a taxonomy kind, a human-readable message, and an optional
// wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New constructs a tagged error with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap tags an underlying error with a kind and message.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the kind from an error chain. Untagged errors classify as
// KindStore: anything unexpected from below the service layer is treated as
// a store failure.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStore
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
