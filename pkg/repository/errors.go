package repository

import "errors"

// StoreError represents a domain error from repository operations.
//
// These are business logic errors (node not found, permission denied, lock
// held by someone else) as opposed to infrastructure errors (disk failure,
// network error), which are returned unwrapped or wrapped with fmt.Errorf.
//
// The namespace adapter translates StoreError codes into its own error kinds;
// protocol layers never see repository codes directly.
type StoreError struct {
	// Code is the error category
	Code ErrorCode

	// Message is a human-readable error description
	Message string

	// Path is the repository path or reference related to the error (if any)
	Path string
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.Path != "" {
		return e.Message + ": " + e.Path
	}
	return e.Message
}

// ErrorCode represents the category of a repository error.
type ErrorCode int

const (
	// ErrNotFound indicates the referenced node doesn't exist
	ErrNotFound ErrorCode = iota

	// ErrAlreadyExists indicates a child with the same name already exists
	// under the target parent (regardless of its lifecycle state)
	ErrAlreadyExists

	// ErrPermissionDenied indicates the session principal lacks the
	// permission required by the operation
	ErrPermissionDenied

	// ErrLocked indicates the node is locked by another principal
	ErrLocked

	// ErrNotDirectory indicates a container was expected
	ErrNotDirectory

	// ErrInvalidArgument indicates invalid parameters were provided
	// Examples: empty name, name containing '/', unknown document type
	ErrInvalidArgument

	// ErrIOError indicates an I/O error occurred in the underlying storage
	ErrIOError
)

func (c ErrorCode) String() string {
	switch c {
	case ErrNotFound:
		return "not found"
	case ErrAlreadyExists:
		return "already exists"
	case ErrPermissionDenied:
		return "permission denied"
	case ErrLocked:
		return "locked"
	case ErrNotDirectory:
		return "not a directory"
	case ErrInvalidArgument:
		return "invalid argument"
	case ErrIOError:
		return "i/o error"
	default:
		return "unknown"
	}
}

// NewStoreError builds a StoreError.
func NewStoreError(code ErrorCode, message, path string) *StoreError {
	return &StoreError{Code: code, Message: message, Path: path}
}

// IsCode reports whether err is (or wraps) a StoreError with the given code.
func IsCode(err error, code ErrorCode) bool {
	var se *StoreError
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}

// IsNotFound reports whether err is (or wraps) a not-found StoreError.
func IsNotFound(err error) bool {
	return IsCode(err, ErrNotFound)
}
