// Package goerr defines the wire-visible error taxonomy shared by every
// service in the code-knowledge engine. Handlers (REST/MCP/CLI, all out
// of scope for this module) are expected to map Kind to their own status
// codes; the core only ever returns *Error so callers can branch on Kind
// without parsing strings.
package goerr

import (
	"errors"
	"fmt"
)

// Kind is one of the taxonomy members from the specification's wire-visible
// error surface.
type Kind string

const (
	NotFound         Kind = "NotFound"
	AlreadyExists    Kind = "AlreadyExists"
	InvalidInput     Kind = "InvalidInput"
	PolicyRejected   Kind = "PolicyRejected"
	VersionConflict  Kind = "VersionConflict"
	PoolExhausted    Kind = "PoolExhausted"
	Timeout          Kind = "Timeout"
	Cancelled        Kind = "Cancelled"
	StorageError     Kind = "StorageError"
	ParseError       Kind = "ParseError"
	Internal         Kind = "Internal"
	DirectoryNotEmpty Kind = "DirectoryNotEmpty"
	ReadOnly          Kind = "ReadOnly"
	InvalidPath       Kind = "InvalidPath"
)

// Error is the concrete error type returned by every fallible core
// operation. It always carries a Kind so callers can branch without
// string matching, and optionally wraps an underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is supports errors.Is(err, goerr.New(goerr.NotFound, ""))-style
// comparisons by kind, where the target is a Kind-tagged *Error.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

// New constructs an *Error with no wrapped cause.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap constructs an *Error that wraps cause.
func Wrap(kind Kind, cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// KindOf extracts the Kind from err, defaulting to Internal when err is
// not a *Error (or the empty Kind when err is nil).
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Is reports whether err (or something it wraps) carries kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// IsRetryable reports whether kind belongs to the transient-infrastructure
// class that §7 of the specification says the connection pool may retry.
func IsRetryable(kind Kind) bool {
	switch kind {
	case StorageError, Timeout, PoolExhausted:
		return true
	default:
		return false
	}
}
