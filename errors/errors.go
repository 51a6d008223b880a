// Package errors provides error handling for twitgraph.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - Marking errors with sentinel identities that survive wrapping
//
// Usage:
//
//	if err := tx.Commit(); err != nil {
//	    return errors.Mark(errors.Wrap(err, "commit primary transaction"), errors.ErrPersistence)
//	}
//
//	if errors.Is(err, errors.ErrPersistence) {
//	    // the store rejected a write
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
	Mark         = crdb.Mark
)

// User-facing messages and details
var (
	WithHint           = crdb.WithHint
	WithHintf          = crdb.WithHintf
	WithDetail         = crdb.WithDetail
	WithDetailf        = crdb.WithDetailf
	WithSecondaryError = crdb.WithSecondaryError
)

// Error inspection
var (
	Is             = crdb.Is
	IsAny          = crdb.IsAny
	As             = crdb.As
	Unwrap         = crdb.Unwrap
	UnwrapAll      = crdb.UnwrapAll
	GetAllHints    = crdb.GetAllHints
	GetAllDetails  = crdb.GetAllDetails
	FlattenDetails = crdb.FlattenDetails
)

// AssertionFailedf reports a programming error.
var AssertionFailedf = crdb.AssertionFailedf

// Sentinel errors shared across twitgraph.
// Use these with errors.Is(). Attach them to a cause with errors.Mark so the
// original message and stack survive.
var (
	// ErrNotFound indicates the requested resource does not exist
	ErrNotFound = New("not found")

	// ErrInvalidRequest indicates the request was malformed or invalid
	ErrInvalidRequest = New("invalid request")

	// ErrClosed indicates an operation on a closed store, queue or source
	ErrClosed = New("closed")

	// ErrPersistence indicates the graph store rejected a write or a
	// transaction operation failed
	ErrPersistence = New("persistence failure")

	// ErrHandling indicates a message could not be persisted; the message is
	// to be treated as unpersisted
	ErrHandling = New("handling failure")

	// ErrResolver indicates the place resolver failed to flush its queued writes
	ErrResolver = New("place resolver failure")
)

// IsNotFoundError checks if an error is or wraps ErrNotFound
func IsNotFoundError(err error) bool {
	return err != nil && Is(err, ErrNotFound)
}

// IsPersistenceError checks if an error is or wraps ErrPersistence
func IsPersistenceError(err error) bool {
	return err != nil && Is(err, ErrPersistence)
}

// IsHandlingError checks if an error is or wraps ErrHandling
func IsHandlingError(err error) bool {
	return err != nil && Is(err, ErrHandling)
}

// MarkPersistence wraps err with msg and marks it as a persistence failure.
// A nil err yields nil.
func MarkPersistence(err error, msg string) error {
	if err == nil {
		return nil
	}
	return Mark(Wrap(err, msg), ErrPersistence)
}

// NewInvalidRequestError creates an invalid-request error with a formatted message
func NewInvalidRequestError(format string, args ...interface{}) error {
	return Mark(Newf(format, args...), ErrInvalidRequest)
}
