package domain

import (
	"errors"
)

// Sentinel errors returned by store adapters. Services translate them into
// an *Error with the matching Kind.
var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrStaleState = errors.New("stale state")
)

type Kind string

const (
	KindNotFound         Kind = "not_found"
	KindInvalidState     Kind = "invalid_state"
	KindStoreUnavailable Kind = "store_unavailable"
	KindForbidden        Kind = "forbidden"
	KindInvalidInput     Kind = "invalid_input"
	KindConflict         Kind = "conflict"
)

// Error is the error type returned by core services.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func NewError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf reports the Kind carried by err. Errors that are not an *Error are
// treated as store failures.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindStoreUnavailable
}

// IsKind reports whether err carries kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// StoreUnavailable wraps a store failure.
func StoreUnavailable(op string, cause error) *Error {
	return NewError(KindStoreUnavailable, op, cause)
}
