package namespace

import (
	"errors"
	"fmt"

	"github.com/marmos91/dittodav/pkg/repository"
)

// ErrorCode is the category of a namespace error, as seen by the protocol
// layer.
type ErrorCode int

const (
	// ErrNotFound indicates no live node resolves to the location
	ErrNotFound ErrorCode = iota

	// ErrNotFolder indicates a create targeted a non-container parent
	ErrNotFolder

	// ErrPermissionDenied is propagated from the repository
	ErrPermissionDenied

	// ErrConflictOnReclaim indicates a live node (not a trash occupant)
	// already holds the target name
	ErrConflictOnReclaim

	// ErrRepositoryFailure wraps any other collaborator failure
	ErrRepositoryFailure
)

func (c ErrorCode) String() string {
	switch c {
	case ErrNotFound:
		return "not found"
	case ErrNotFolder:
		return "not a folder"
	case ErrPermissionDenied:
		return "permission denied"
	case ErrConflictOnReclaim:
		return "conflict on reclaim"
	case ErrRepositoryFailure:
		return "repository failure"
	default:
		return "unknown"
	}
}

// Error is returned by every namespace operation that fails.
//
// Op is the operation name ("CreateFolder", "Move", ...), Path the
// location or repository path it was attempted on. Err, when set, is the
// collaborator error and stays reachable through errors.As, so callers can
// still inspect a wrapped repository.StoreError.
type Error struct {
	Code ErrorCode
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s %s: %s", e.Op, e.Path, e.Code)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsCode reports whether err is (or wraps) a namespace Error with the code.
func IsCode(err error, code ErrorCode) bool {
	var ne *Error
	if errors.As(err, &ne) {
		return ne.Code == code
	}
	return false
}

// IsNotFound reports whether err is a namespace not-found error.
func IsNotFound(err error) bool {
	return IsCode(err, ErrNotFound)
}

func newError(code ErrorCode, op, path string) *Error {
	return &Error{Code: code, Op: op, Path: path}
}

// wrapError classifies a collaborator error. Errors that already carry a
// namespace code are returned unchanged.
func wrapError(op, path string, err error) error {
	if err == nil {
		return nil
	}
	var ne *Error
	if errors.As(err, &ne) {
		return err
	}

	code := ErrRepositoryFailure
	switch {
	case repository.IsCode(err, repository.ErrPermissionDenied):
		code = ErrPermissionDenied
	case repository.IsCode(err, repository.ErrNotDirectory):
		code = ErrNotFolder
	case repository.IsNotFound(err):
		code = ErrNotFound
	}
	return &Error{Code: code, Op: op, Path: path, Err: err}
}
