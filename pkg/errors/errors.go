package errors

import (
	goErrors "errors"
	"fmt"
)

// New returns an error with the given message. It's a drop-in replacement for
// the standard library's errors.New so that callers only need to import one
// errors package.
func New(msg string) error {
	return goErrors.New(msg)
}

// Newf returns an error formatted according to the format specifier.
func Newf(format string, a ...interface{}) error {
	return fmt.Errorf(format, a...)
}

// withContext adds a short description of what was being attempted when
// `cause` occurred.
type withContext struct {
	context string
	cause   error
}

// WithContext wraps `err` so that its message is prefixed by `context`. It
// returns nil if `err` is nil.
func WithContext(err error, context string) error {
	if err == nil {
		return nil
	}
	return withContext{context: context, cause: err}
}

func (err withContext) Error() string {
	return fmt.Sprintf("%s: %s", err.context, err.cause)
}

// Unwrap lets the standard library's errors.Is and errors.As see through the
// context.
func (err withContext) Unwrap() error {
	return err.cause
}

// RootCause returns the innermost error that was wrapped with WithContext.
func RootCause(err error) error {
	for {
		wrapped, ok := err.(withContext)
		if !ok {
			return err
		}
		err = wrapped.cause
	}
}

// FriendlyError is an error whose message is meant to be shown to the user
// directly, without any additional context.
type FriendlyError struct {
	msg string
}

// NewFriendlyError creates a FriendlyError from a format string.
func NewFriendlyError(format string, a ...interface{}) FriendlyError {
	return FriendlyError{fmt.Sprintf(format, a...)}
}

func (err FriendlyError) Error() string {
	return err.msg
}

// FriendlyMessage returns the message that should be printed to the user.
func (err FriendlyError) FriendlyMessage() string {
	return err.msg
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return goErrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return goErrors.As(err, target)
}
