package irrecoverable

import (
	"errors"
	"fmt"
)

// exception represents an unexpected error. An unexpected error is any error
// returned by a function, other than the error specifically documented as
// expected in that function's interface.
//
// It wraps an unexpected error, which allows error inspection by callers, but
// is not matched by errors.As checks for the error types documented as expected.
type exception struct {
	err error
}

func (e exception) Error() string {
	return e.err.Error()
}

func (e exception) Unwrap() error {
	return e.err
}

// NewException wraps the input error as an exception.
func NewException(err error) error {
	return exception{err: err}
}

// NewExceptionf is NewException with the ability to add formatting and
// context to the error message.
func NewExceptionf(msg string, args ...interface{}) error {
	return NewException(fmt.Errorf(msg, args...))
}

// IsException returns true if err is, or wraps, an exception.
func IsException(err error) bool {
	var e exception
	return errors.As(err, &e)
}
