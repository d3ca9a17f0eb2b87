package unittest

import (
	"math/rand"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/onflow/flow-timestamp/module/clock"
)

// GenesisTime is a fixed point in time used as the start of test chains.
var GenesisTime = time.Date(2023, time.November, 14, 22, 13, 20, 0, time.UTC)

// TimestampFixture returns a random timestamp in the hour after GenesisTime.
func TimestampFixture() uint64 {
	return uint64(GenesisTime.Unix()) + uint64(rand.Intn(3600))
}

// FakeClockReaderFixture returns a clock reader frozen at GenesisTime and the
// fake clock driving it.
func FakeClockReaderFixture() (*clock.SystemReader, clockwork.FakeClock) {
	fake := clockwork.NewFakeClockAt(GenesisTime)
	return clock.NewSystemReaderWithClock(fake), fake
}
