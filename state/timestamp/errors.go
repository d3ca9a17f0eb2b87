package timestamp

import (
	"errors"
	"fmt"
)

var (
	// ErrNonInherentOrigin is a sentinel error returned when the timestamp is
	// set by anything other than an inherent.
	ErrNonInherentOrigin = errors.New("timestamp must be set by an inherent")

	// ErrAlreadyUpdated is a sentinel error returned when the timestamp is
	// set a second time within the same block.
	ErrAlreadyUpdated = errors.New("timestamp must be updated only once in the block")

	// ErrPeriodNotElapsed is a sentinel error returned when the new timestamp
	// does not exceed the previous one by at least the minimum period.
	ErrPeriodNotElapsed = errors.New("timestamp must increment by at least <BlockPeriod> between sequential blocks")

	// ErrNotUpdated is a sentinel error returned when a block is finalized
	// without having set the timestamp.
	ErrNotUpdated = errors.New("timestamp must be updated once in the block")
)

// InvariantViolationError indicates that a block broke one of the timestamp
// invariants. The block must be discarded as a whole.
type InvariantViolationError struct {
	err error
}

func NewInvariantViolationf(sentinel error, msg string, args ...interface{}) error {
	return InvariantViolationError{
		err: fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(msg, args...)),
	}
}

func (e InvariantViolationError) Unwrap() error {
	return e.err
}

func (e InvariantViolationError) Error() string {
	return e.err.Error()
}

func IsInvariantViolation(err error) bool {
	var errInvariantViolation InvariantViolationError
	return errors.As(err, &errInvariantViolation)
}

// violationKind names the violated invariant for metrics and logs.
func violationKind(err error) string {
	switch {
	case errors.Is(err, ErrNonInherentOrigin):
		return "non_inherent_origin"
	case errors.Is(err, ErrAlreadyUpdated):
		return "already_updated"
	case errors.Is(err, ErrPeriodNotElapsed):
		return "period_not_elapsed"
	case errors.Is(err, ErrNotUpdated):
		return "not_updated"
	default:
		return "unknown"
	}
}
