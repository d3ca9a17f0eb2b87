package inherents

import (
	"errors"

	"github.com/hashicorp/go-multierror"
)

// FatalError is implemented by inherent check errors that can tell whether
// they invalidate a block outright. Errors that do not implement it are
// treated as fatal.
type FatalError interface {
	error
	IsFatal() bool
}

// IsFatal reports whether err invalidates the block.
func IsFatal(err error) bool {
	var fatalErr FatalError
	if errors.As(err, &fatalErr) {
		return fatalErr.IsFatal()
	}
	return true
}

// CheckResult collects the outcome of checking the inherents of a block.
// Once a fatal error was recorded, further errors are ignored.
type CheckResult struct {
	errors map[Identifier]error
	order  []Identifier
	fatal  bool
}

func NewCheckResult() *CheckResult {
	return &CheckResult{
		errors: make(map[Identifier]error),
	}
}

// PutError records the check error for the given identifier. It returns
// false if the error was dropped because a fatal error is already recorded.
func (r *CheckResult) PutError(id Identifier, err error) bool {
	if r.fatal {
		return false
	}
	if _, ok := r.errors[id]; !ok {
		r.order = append(r.order, id)
	}
	r.errors[id] = err
	r.fatal = IsFatal(err)
	return true
}

// Ok returns true if no error was recorded.
func (r *CheckResult) Ok() bool {
	return len(r.errors) == 0
}

// FatalError returns true if a fatal error was recorded.
func (r *CheckResult) FatalError() bool {
	return r.fatal
}

// ErrorFor returns the error recorded for the identifier, or nil.
func (r *CheckResult) ErrorFor(id Identifier) error {
	return r.errors[id]
}

// Err combines all recorded errors in recording order, or returns nil.
func (r *CheckResult) Err() error {
	var result *multierror.Error
	for _, id := range r.order {
		result = multierror.Append(result, r.errors[id])
	}
	return result.ErrorOrNil()
}

// CheckFunc checks one inherent of a block.
type CheckFunc func() error

// Check runs the check for the identifier unless a fatal error was already
// recorded, and records its error. It returns false once the pipeline must
// stop.
func (r *CheckResult) Check(id Identifier, check CheckFunc) bool {
	if r.fatal {
		return false
	}
	if err := check(); err != nil {
		r.PutError(id, err)
	}
	return !r.fatal
}
