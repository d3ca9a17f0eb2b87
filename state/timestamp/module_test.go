package timestamp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	tsmodel "github.com/onflow/flow-timestamp/model/timestamp"
	"github.com/onflow/flow-timestamp/module/metrics"
	"github.com/onflow/flow-timestamp/state/timestamp"
	"github.com/onflow/flow-timestamp/storage/inmemory"
	"github.com/onflow/flow-timestamp/utils/unittest"
)

func TestModule(t *testing.T) {
	suite.Run(t, new(ModuleSuite))
}

// ModuleSuite tests the state transitions of a single block on top of an
// in-memory state configured with a period of 5.
type ModuleSuite struct {
	suite.Suite

	store    *inmemory.Timestamps[uint64]
	module   *timestamp.Module[uint64]
	notified []uint64
}

func (s *ModuleSuite) SetupTest() {
	s.store = inmemory.NewTimestamps(tsmodel.Genesis[uint64]{Period: 5})
	s.notified = nil
	listener := timestamp.OnTimestampSetFunc[uint64](func(now uint64) {
		s.notified = append(s.notified, now)
	})
	s.module = timestamp.NewModule[uint64](unittest.Logger(), metrics.NewNoopCollector(), s.store.State(), listener)
}

// Scenario A: a timestamp at least one period after the previous is accepted.
func (s *ModuleSuite) TestTimestampWorks() {
	require.NoError(s.T(), s.module.SetTimestamp(42))

	require.NoError(s.T(), s.module.Set(timestamp.OriginInherent, 69))

	now, err := s.module.Get()
	require.NoError(s.T(), err)
	assert.Equal(s.T(), uint64(69), now)
	assert.Equal(s.T(), []uint64{69}, s.notified)
}

// Scenario B: the timestamp can only be set once per block.
func (s *ModuleSuite) TestDoubleTimestampFails() {
	require.NoError(s.T(), s.module.SetTimestamp(42))
	require.NoError(s.T(), s.module.Set(timestamp.OriginInherent, 69))

	err := s.module.Set(timestamp.OriginInherent, 70)
	require.ErrorIs(s.T(), err, timestamp.ErrAlreadyUpdated)
	require.True(s.T(), timestamp.IsInvariantViolation(err))

	now, err := s.module.Get()
	require.NoError(s.T(), err)
	assert.Equal(s.T(), uint64(69), now, "rejected update must not change the timestamp")
	assert.Equal(s.T(), []uint64{69}, s.notified)
}

// Scenario C: the minimum period between blocks is enforced.
func (s *ModuleSuite) TestBlockPeriodIsEnforced() {
	require.NoError(s.T(), s.module.SetTimestamp(42))

	err := s.module.Set(timestamp.OriginInherent, 46)
	require.ErrorIs(s.T(), err, timestamp.ErrPeriodNotElapsed)
	require.True(s.T(), timestamp.IsInvariantViolation(err))
	assert.Empty(s.T(), s.notified)

	// exactly one period later is fine
	require.NoError(s.T(), s.module.Set(timestamp.OriginInherent, 47))
}

// Scenario D: the genesis state is exempt from the period check.
func (s *ModuleSuite) TestGenesisIsExempt() {
	require.NoError(s.T(), s.module.Set(timestamp.OriginInherent, 1))

	now, err := s.module.Get()
	require.NoError(s.T(), err)
	assert.Equal(s.T(), uint64(1), now)
}

func (s *ModuleSuite) TestGenesisExemptionRetriggersAtZero() {
	require.NoError(s.T(), s.module.Set(timestamp.OriginInherent, 0))
	require.NoError(s.T(), s.module.Finalize())

	// the agreed time is zero again, so the period check is skipped once more
	require.NoError(s.T(), s.module.Set(timestamp.OriginInherent, 1))
}

func (s *ModuleSuite) TestNonInherentOrigin() {
	for _, origin := range []timestamp.Origin{timestamp.OriginSigned, timestamp.OriginRoot} {
		err := s.module.Set(origin, 69)
		require.ErrorIs(s.T(), err, timestamp.ErrNonInherentOrigin)
		require.True(s.T(), timestamp.IsInvariantViolation(err))
	}

	didUpdate, err := s.store.State().DidUpdate()
	require.NoError(s.T(), err)
	assert.False(s.T(), didUpdate)
}

func (s *ModuleSuite) TestFinalize() {
	s.Run("without update", func() {
		err := s.module.Finalize()
		require.ErrorIs(s.T(), err, timestamp.ErrNotUpdated)
		require.True(s.T(), timestamp.IsInvariantViolation(err))
	})

	s.Run("after update", func() {
		require.NoError(s.T(), s.module.Set(timestamp.OriginInherent, 100))
		require.NoError(s.T(), s.module.Finalize())

		didUpdate, err := s.store.State().DidUpdate()
		require.NoError(s.T(), err)
		assert.False(s.T(), didUpdate, "finalize must reset the update flag")
	})

	s.Run("next block", func() {
		// the flag was reset, so the next block can set the timestamp again
		require.NoError(s.T(), s.module.Set(timestamp.OriginInherent, 105))
		require.NoError(s.T(), s.module.Finalize())
		require.ErrorIs(s.T(), s.module.Finalize(), timestamp.ErrNotUpdated)
	})
}

func (s *ModuleSuite) TestPeriod() {
	period, err := s.module.Period()
	require.NoError(s.T(), err)
	assert.Equal(s.T(), uint64(5), period)
}

func TestModule_ZeroPeriod(t *testing.T) {
	store := inmemory.NewTimestamps(tsmodel.Genesis[uint64]{Period: 0})
	module := timestamp.NewModule[uint64](unittest.Logger(), metrics.NewNoopCollector(), store.State(), nil)

	require.NoError(t, module.SetTimestamp(42))
	// a zero period only requires non-decreasing timestamps
	require.NoError(t, module.Set(timestamp.OriginInherent, 42))
	require.NoError(t, module.Finalize())

	err := module.Set(timestamp.OriginInherent, 41)
	require.ErrorIs(t, err, timestamp.ErrPeriodNotElapsed)
}

func TestModule_NarrowMoment(t *testing.T) {
	store := inmemory.NewTimestamps(tsmodel.Genesis[uint32]{Period: 5})
	module := timestamp.NewModule[uint32](unittest.Logger(), metrics.NewNoopCollector(), store.State(), nil)

	require.NoError(t, module.SetTimestamp(^uint32(0)-2))
	// the minimum saturates at the largest uint32
	err := module.Set(timestamp.OriginInherent, ^uint32(0)-1)
	require.ErrorIs(t, err, timestamp.ErrPeriodNotElapsed)
	require.NoError(t, module.Set(timestamp.OriginInherent, ^uint32(0)))
}

func TestModule_BlockIsolation(t *testing.T) {
	store := inmemory.NewTimestamps(tsmodel.Genesis[uint64]{Period: 5})
	log := unittest.Logger()
	collector := metrics.NewNoopCollector()

	err := store.ExecuteBlock(func(state timestamp.State[uint64]) error {
		module := timestamp.NewModule[uint64](log, collector, state, nil)
		require.NoError(t, module.Set(timestamp.OriginInherent, 100))
		return module.Finalize()
	})
	require.NoError(t, err)

	err = store.ExecuteBlock(func(state timestamp.State[uint64]) error {
		module := timestamp.NewModule[uint64](log, collector, state, nil)
		require.NoError(t, module.Set(timestamp.OriginInherent, 200))
		require.NoError(t, module.Finalize())
		return module.Finalize()
	})
	require.ErrorIs(t, err, timestamp.ErrNotUpdated)

	// the failed block left no trace
	err = store.View(func(state timestamp.State[uint64]) error {
		now, err := state.Now()
		require.NoError(t, err)
		assert.Equal(t, uint64(100), now)
		return nil
	})
	require.NoError(t, err)
}
