package timestamp

import (
	"errors"
	"fmt"
)

// ErrNotYetValid is returned when a block carries a timestamp that only
// becomes valid later. The block may be imported again at a later time.
var ErrNotYetValid = errors.New("block is not yet valid")

// NotYetValidError reports the earliest time a deferred block becomes valid.
type NotYetValidError struct {
	ValidAt uint64
}

func NewNotYetValidError(validAt uint64) NotYetValidError {
	return NotYetValidError{ValidAt: validAt}
}

func (e NotYetValidError) Error() string {
	return fmt.Sprintf("%s: valid at %d", ErrNotYetValid, e.ValidAt)
}

func (e NotYetValidError) Is(target error) bool {
	return target == ErrNotYetValid
}

// InvalidBlockError indicates that a block must be rejected. Importing it
// again will fail the same way.
type InvalidBlockError struct {
	err error
}

func NewInvalidBlockErrorf(msg string, args ...interface{}) error {
	return InvalidBlockError{
		err: fmt.Errorf(msg, args...),
	}
}

func (e InvalidBlockError) Unwrap() error {
	return e.err
}

func (e InvalidBlockError) Error() string {
	return e.err.Error()
}

func IsInvalidBlockError(err error) bool {
	var errInvalidBlock InvalidBlockError
	return errors.As(err, &errInvalidBlock)
}
