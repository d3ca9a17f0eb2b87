package timestamp_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	engine "github.com/onflow/flow-timestamp/engine/timestamp"
	tsmodel "github.com/onflow/flow-timestamp/model/timestamp"
	"github.com/onflow/flow-timestamp/module/clock"
	"github.com/onflow/flow-timestamp/module/irrecoverable"
	"github.com/onflow/flow-timestamp/module/metrics"
	"github.com/onflow/flow-timestamp/storage/inmemory"
	"github.com/onflow/flow-timestamp/utils/unittest"
)

func simulationNodes(t *testing.T, fake clockwork.FakeClock, count int, skew time.Duration) []*engine.Node[uint64] {
	nodes := make([]*engine.Node[uint64], 0, count)
	for i := 0; i < count; i++ {
		reader := clock.NewSkewedReader(clock.NewSystemReaderWithClock(fake), time.Duration(i)*skew)
		store := inmemory.NewTimestamps(tsmodel.DefaultGenesis[uint64]())
		node, err := engine.NewNode[uint64](unittest.Logger(), metrics.NewNoopCollector(), fmt.Sprintf("node-%d", i), store, reader, nil)
		require.NoError(t, err)
		nodes = append(nodes, node)
	}
	return nodes
}

func runSimulation(t *testing.T, sim *engine.Simulation[uint64]) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sim.Start(irrecoverable.NewMockSignalerContext(t, ctx))
	unittest.RequireCloseBefore(t, sim.Done(), 10*time.Second, "simulation did not finish")
}

func TestSimulation_InSync(t *testing.T) {
	fake := clockwork.NewFakeClockAt(unittest.GenesisTime)
	nodes := simulationNodes(t, fake, 3, 0)
	sim := engine.NewSimulation(unittest.Logger(), nodes, fake, 6*time.Second, 12, 2)
	runSimulation(t, sim)

	stats, err := sim.Stats()
	require.NoError(t, err)
	require.Len(t, stats, 3)

	expected := uint64(unittest.GenesisTime.Unix()) + 12*6
	for _, nodeStats := range stats {
		assert.Equal(t, uint64(12), nodeStats.Height, nodeStats.Name)
		assert.Equal(t, expected, nodeStats.Timestamp, nodeStats.Name)
		assert.Equal(t, uint64(4), nodeStats.Produced, nodeStats.Name)
		assert.Equal(t, uint64(8), nodeStats.Imported, nodeStats.Name)
		assert.Zero(t, nodeStats.Rejected, nodeStats.Name)
		assert.Zero(t, nodeStats.Deferred, nodeStats.Name)
	}
}

// A node whose clock runs more than the allowed drift ahead produces blocks
// that the other node rejects. The node that fell behind then produces
// blocks the skewed node can only accept later.
func TestSimulation_SkewedNode(t *testing.T) {
	fake := clockwork.NewFakeClockAt(unittest.GenesisTime)
	nodes := simulationNodes(t, fake, 2, 90*time.Second)
	sim := engine.NewSimulation(unittest.Logger(), nodes, fake, 6*time.Second, 4, 1)
	runSimulation(t, sim)

	stats, err := sim.Stats()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), stats[0].Rejected)
	assert.Zero(t, stats[0].Imported)
	assert.Zero(t, stats[1].Rejected)
	assert.Equal(t, uint64(1), stats[1].Imported)
	assert.Equal(t, uint64(1), stats[1].Deferred)
}

func TestSimulation_Cancel(t *testing.T) {
	fake := clockwork.NewFakeClockAt(unittest.GenesisTime)
	nodes := simulationNodes(t, fake, 2, 0)
	sim := engine.NewSimulation(unittest.Logger(), nodes, fake, 6*time.Second, 1_000_000, 1)

	ctx, cancel := context.WithCancel(context.Background())
	sim.Start(irrecoverable.NewMockSignalerContext(t, ctx))
	unittest.RequireCloseBefore(t, sim.Ready(), time.Second, "simulation did not start")
	cancel()
	unittest.RequireCloseBefore(t, sim.Done(), 10*time.Second, "simulation did not stop")
}
