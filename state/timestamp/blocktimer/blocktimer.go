package blocktimer

import (
	"fmt"

	"github.com/onflow/flow-timestamp/model/timestamp"
)

// Verdict classifies the result of validating a submitted timestamp.
type Verdict int

const (
	// Accepted means the timestamp is acceptable right now.
	Accepted Verdict = iota
	// RejectedFatal means the timestamp is too far ahead of the local clock
	// and the block must be refused.
	RejectedFatal
	// DeferNonFatal means the timestamp is below the minimum required by the
	// parent block; the block may become acceptable later.
	DeferNonFatal
)

func (v Verdict) String() string {
	switch v {
	case Accepted:
		return "accepted"
	case RejectedFatal:
		return "rejected"
	case DeferNonFatal:
		return "deferred"
	default:
		return fmt.Sprintf("unknown verdict (%d)", int(v))
	}
}

// Outcome is the result of Validate.
type Outcome[M timestamp.Moment] struct {
	Verdict Verdict
	// Reason explains a RejectedFatal outcome.
	Reason string
	// ValidAt is the earliest acceptable timestamp of a DeferNonFatal outcome.
	ValidAt M
}

func (o Outcome[M]) String() string {
	switch o.Verdict {
	case RejectedFatal:
		return fmt.Sprintf("%s: %s", o.Verdict, o.Reason)
	case DeferNonFatal:
		return fmt.Sprintf("%s: valid at %d", o.Verdict, uint64(o.ValidAt))
	default:
		return o.Verdict.String()
	}
}

// BlockTimer derives and validates block timestamps from local clock readings.
// It is stateless; the previous timestamp and the minimum period are supplied
// by the caller.
type BlockTimer[M timestamp.Moment] struct {
	// maxDrift is how far a submitted timestamp may lead the local reading
	maxDrift M
}

// NewBlockTimer creates a block timer tolerating the given drift.
func NewBlockTimer[M timestamp.Moment](maxDrift M) *BlockTimer[M] {
	return &BlockTimer[M]{
		maxDrift: maxDrift,
	}
}

// NewDefaultBlockTimer creates a block timer tolerating timestamp.MaxDrift.
func NewDefaultBlockTimer[M timestamp.Moment]() *BlockTimer[M] {
	return NewBlockTimer(timestamp.FromInherent[M](timestamp.MaxDrift))
}

// Build returns the timestamp a block producer should submit: its local
// reading, raised to the minimum the parent requires if the local clock
// stalled or lags behind.
func (b BlockTimer[M]) Build(reading, prev, period M) M {
	minimum := timestamp.SaturatingAdd(prev, period)
	if reading < minimum {
		return minimum
	}
	return reading
}

// Validate checks a submitted timestamp against an independent local reading.
// Both bounds are inclusive.
func (b BlockTimer[M]) Validate(submitted, reading, prev, period M) Outcome[M] {
	minimum := timestamp.SaturatingAdd(prev, period)
	driftBound := timestamp.SaturatingAdd(reading, b.maxDrift)

	if submitted > driftBound {
		return Outcome[M]{
			Verdict: RejectedFatal,
			Reason:  "timestamp too far in future to accept",
		}
	}
	if submitted < minimum {
		return Outcome[M]{
			Verdict: DeferNonFatal,
			ValidAt: minimum,
		}
	}
	return Outcome[M]{Verdict: Accepted}
}
