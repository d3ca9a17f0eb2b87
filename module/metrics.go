package module

import (
	"time"
)

// TimestampMetrics tracks the agreed block time and the checks around it.
type TimestampMetrics interface {
	// TimestampSet is called when a block sets the agreed time.
	TimestampSet(now uint64)

	// TimestampFinalized is called when a block passed the end-of-block check.
	TimestampFinalized()

	// InvariantViolation tracks blocks rejected for breaking a timestamp
	// invariant, labeled by the violated invariant.
	InvariantViolation(kind string)

	// InherentChecked tracks the verdicts of validating submitted timestamps
	// against the local clock.
	InherentChecked(verdict string)

	// InherentDrift tracks how far a submitted timestamp leads (positive) or
	// trails (negative) the local clock reading.
	InherentDrift(drift time.Duration)
}

// StorageMetrics tracks the behaviour of the badger backed state.
type StorageMetrics interface {
	// RetryOnConflict tracks bootstrap transactions retried after a
	// transaction conflict.
	RetryOnConflict()

	// BlockDiscarded tracks block executions whose writes were discarded.
	BlockDiscarded()
}
