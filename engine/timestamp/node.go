package timestamp

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"go.uber.org/atomic"

	tsmodel "github.com/onflow/flow-timestamp/model/timestamp"
	"github.com/onflow/flow-timestamp/module"
	"github.com/onflow/flow-timestamp/module/clock"
	"github.com/onflow/flow-timestamp/module/inherents"
	tsstate "github.com/onflow/flow-timestamp/state/timestamp"
)

// NodeStats summarizes the blocks a node has seen.
type NodeStats struct {
	Name      string
	Height    uint64
	Timestamp uint64
	Produced  uint64
	Imported  uint64
	Deferred  uint64
	Rejected  uint64
}

// Node combines a producer and an importer working on the same chain.
type Node[M tsmodel.Moment] struct {
	name     string
	store    tsstate.Store[M]
	producer *Producer[M]
	importer *Importer[M]
	height   *atomic.Uint64

	produced *atomic.Uint64
	imported *atomic.Uint64
	deferred *atomic.Uint64
	rejected *atomic.Uint64
}

// NewNode creates a node whose inherent data is read from the given clock.
func NewNode[M tsmodel.Moment](
	log zerolog.Logger,
	metrics module.TimestampMetrics,
	name string,
	store tsstate.Store[M],
	reader clock.Reader,
	listener tsstate.OnTimestampSet[M],
) (*Node[M], error) {
	providers := inherents.NewProviders()
	err := providers.Register(tsstate.NewInherentDataProvider(log, reader))
	if err != nil {
		return nil, fmt.Errorf("could not register timestamp provider: %w", err)
	}

	height := atomic.NewUint64(0)
	return &Node[M]{
		name:     name,
		store:    store,
		producer: NewProducer(log, metrics, store, providers, listener, name, height),
		importer: NewImporter(log, metrics, store, providers, listener, name, height),
		height:   height,
		produced: atomic.NewUint64(0),
		imported: atomic.NewUint64(0),
		deferred: atomic.NewUint64(0),
		rejected: atomic.NewUint64(0),
	}, nil
}

func (n *Node[M]) Name() string {
	return n.name
}

// Produce produces the next block. No errors are expected during normal
// operations.
func (n *Node[M]) Produce(ctx context.Context) (*Block, error) {
	block, err := n.producer.Produce(ctx)
	if err != nil {
		return nil, err
	}
	n.produced.Inc()
	return block, nil
}

// Import imports a block produced by another node.
// Expected errors during normal operations:
//   - InvalidBlockError if the block is rejected
//   - NotYetValidError if the block is deferred
func (n *Node[M]) Import(ctx context.Context, block *Block) error {
	err := n.importer.Import(ctx, block)
	switch {
	case err == nil:
		n.imported.Inc()
	case errors.Is(err, ErrNotYetValid):
		n.deferred.Inc()
	case IsInvalidBlockError(err):
		n.rejected.Inc()
	}
	return err
}

// Stats reads the current timestamp of the node and its counters.
func (n *Node[M]) Stats() (NodeStats, error) {
	var now M
	err := n.store.View(func(state tsstate.State[M]) error {
		var err error
		now, err = state.Now()
		return err
	})
	if err != nil {
		return NodeStats{}, fmt.Errorf("could not read timestamp of node %s: %w", n.name, err)
	}
	return NodeStats{
		Name:      n.name,
		Height:    n.height.Load(),
		Timestamp: uint64(now),
		Produced:  n.produced.Load(),
		Imported:  n.imported.Load(),
		Deferred:  n.deferred.Load(),
		Rejected:  n.rejected.Load(),
	}, nil
}
