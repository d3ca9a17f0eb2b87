package timestamp

import (
	"fmt"

	"github.com/rs/zerolog"

	tsmodel "github.com/onflow/flow-timestamp/model/timestamp"
	"github.com/onflow/flow-timestamp/module"
	"github.com/onflow/flow-timestamp/state/timestamp/blocktimer"
)

// Module applies the timestamp state transitions of a single block. It is
// created per block on top of that block's State and must only be used from
// the single goroutine executing the block.
//
// The timestamp is expected to be set exactly once per block, typically as the
// first operation of the block body, and checked by Finalize at the end.
type Module[M tsmodel.Moment] struct {
	log      zerolog.Logger
	metrics  module.TimestampMetrics
	state    State[M]
	timer    *blocktimer.BlockTimer[M]
	listener OnTimestampSet[M]
}

// NewModule creates a module operating on the given block state. Listeners
// are notified in order after each successful Set; pass a Distributor to
// compose several.
func NewModule[M tsmodel.Moment](
	log zerolog.Logger,
	metrics module.TimestampMetrics,
	state State[M],
	listener OnTimestampSet[M],
) *Module[M] {
	if listener == nil {
		listener = NoopListener[M]{}
	}
	return &Module[M]{
		log:      log.With().Str("component", "timestamp").Logger(),
		metrics:  metrics,
		state:    state,
		timer:    blocktimer.NewDefaultBlockTimer[M](),
		listener: listener,
	}
}

// Get returns the agreed time of the current block. Before Set was called in
// this block it returns the timestamp of the previous block.
func (m *Module[M]) Get() (M, error) {
	now, err := m.state.Now()
	if err != nil {
		return 0, fmt.Errorf("could not read timestamp: %w", err)
	}
	return now, nil
}

// Period returns the minimum period between blocks.
func (m *Module[M]) Period() (M, error) {
	period, err := m.state.Period()
	if err != nil {
		return 0, fmt.Errorf("could not read block period: %w", err)
	}
	return period, nil
}

// SetTimestamp overwrites the agreed time without any checks. It exists for
// tests that need to start from a specific time.
func (m *Module[M]) SetTimestamp(now M) error {
	err := m.state.SetNow(now)
	if err != nil {
		return fmt.Errorf("could not write timestamp: %w", err)
	}
	return nil
}

// Set applies the timestamp submitted for the current block.
// Expected errors during normal operations:
//   - InvariantViolationError wrapping ErrNonInherentOrigin if the call did
//     not come from an inherent
//   - InvariantViolationError wrapping ErrAlreadyUpdated if the timestamp was
//     already set in this block
//   - InvariantViolationError wrapping ErrPeriodNotElapsed if now is less than
//     the previous timestamp plus the minimum period
//
// The previous timestamp being zero exempts the update from the period check.
func (m *Module[M]) Set(origin Origin, now M) error {
	err := m.set(origin, now)
	if IsInvariantViolation(err) {
		m.metrics.InvariantViolation(violationKind(err))
		m.log.Warn().Err(err).Str("origin", origin.String()).Uint64("timestamp", uint64(now)).Msg("rejected timestamp")
	}
	return err
}

func (m *Module[M]) set(origin Origin, now M) error {
	if !origin.IsInherent() {
		return NewInvariantViolationf(ErrNonInherentOrigin, "got origin %s", origin)
	}

	didUpdate, err := m.state.DidUpdate()
	if err != nil {
		return fmt.Errorf("could not read update flag: %w", err)
	}
	if didUpdate {
		return NewInvariantViolationf(ErrAlreadyUpdated, "second update to %d", uint64(now))
	}

	prev, err := m.Get()
	if err != nil {
		return err
	}
	period, err := m.Period()
	if err != nil {
		return err
	}
	minimum := tsmodel.SaturatingAdd(prev, period)
	if prev != 0 && now < minimum {
		return NewInvariantViolationf(ErrPeriodNotElapsed, "got %d, previous %d, minimum %d", uint64(now), uint64(prev), uint64(minimum))
	}

	err = m.state.SetNow(now)
	if err != nil {
		return fmt.Errorf("could not write timestamp: %w", err)
	}
	err = m.state.SetDidUpdate()
	if err != nil {
		return fmt.Errorf("could not write update flag: %w", err)
	}

	m.metrics.TimestampSet(uint64(now))
	m.log.Debug().Uint64("timestamp", uint64(now)).Uint64("previous", uint64(prev)).Msg("timestamp set")

	m.listener.OnTimestampSet(now)
	return nil
}

// Finalize checks that the timestamp was set in the current block and resets
// the per-block update flag. It runs once per block after all other block
// operations.
// Expected errors during normal operations:
//   - InvariantViolationError wrapping ErrNotUpdated if Set was not called
func (m *Module[M]) Finalize() error {
	didUpdate, err := m.state.TakeDidUpdate()
	if err != nil {
		return fmt.Errorf("could not take update flag: %w", err)
	}
	if !didUpdate {
		err := NewInvariantViolationf(ErrNotUpdated, "block finalized without timestamp")
		m.metrics.InvariantViolation(violationKind(err))
		m.log.Warn().Err(err).Msg("rejected block")
		return err
	}
	m.metrics.TimestampFinalized()
	return nil
}
