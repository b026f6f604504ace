package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	Unauthenticated Kind = iota + 1
	RemoteOperationFailed
	ValidationFailed
	NotFound
	Conflict
)

func (k Kind) String() string {
	switch k {
	case Unauthenticated:
		return "unauthenticated"
	case RemoteOperationFailed:
		return "remote operation failed"
	case ValidationFailed:
		return "validation failed"
	case NotFound:
		return "not found"
	case Conflict:
		return "conflict"
	}
	return "unknown"
}

// Error carries a human-readable message for the client plus the
// underlying cause, if any.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

var ErrUnauthenticated = &Error{Kind: Unauthenticated, Message: "user not authenticated"}

func Remote(message string, err error) error {
	return &Error{Kind: RemoteOperationFailed, Message: message, Err: err}
}

func Validation(format string, args ...interface{}) error {
	return &Error{Kind: ValidationFailed, Message: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...interface{}) error {
	return &Error{Kind: NotFound, Message: fmt.Sprintf(format, args...)}
}

func Conflictf(format string, args ...interface{}) error {
	return &Error{Kind: Conflict, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of the first *Error in err's chain. Errors that
// did not come from this package count as remote failures.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return RemoteOperationFailed
}

// Is reports whether err is an *Error of kind k.
func Is(err error, k Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == k
}
