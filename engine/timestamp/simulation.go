package timestamp

import (
	"sync"
	"time"

	"github.com/gammazero/workerpool"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	tsmodel "github.com/onflow/flow-timestamp/model/timestamp"
	"github.com/onflow/flow-timestamp/module/component"
	"github.com/onflow/flow-timestamp/module/irrecoverable"
	"github.com/onflow/flow-timestamp/module/util"
)

// Simulation drives a set of nodes sharing a fake clock. In every round the
// clock advances by the block interval, the next node in turn produces a
// block and all other nodes import it in parallel.
//
// Storage exceptions are thrown as irrecoverable errors; rejected or deferred
// blocks are counted per node.
type Simulation[M tsmodel.Moment] struct {
	*component.ComponentManager
	log      zerolog.Logger
	nodes    []*Node[M]
	clock    clockwork.FakeClock
	interval time.Duration
	blocks   uint64
	workers  int
}

func NewSimulation[M tsmodel.Moment](
	log zerolog.Logger,
	nodes []*Node[M],
	clock clockwork.FakeClock,
	interval time.Duration,
	blocks uint64,
	workers int,
) *Simulation[M] {
	if workers < 1 {
		workers = 1
	}
	s := &Simulation[M]{
		log:      log.With().Str("component", "simulation").Logger(),
		nodes:    nodes,
		clock:    clock,
		interval: interval,
		blocks:   blocks,
		workers:  workers,
	}
	s.ComponentManager = component.NewComponentManagerBuilder().
		AddWorker(s.run).
		Build()
	return s
}

func (s *Simulation[M]) run(ctx irrecoverable.SignalerContext, ready component.ReadyFunc) {
	ready()

	if len(s.nodes) == 0 {
		return
	}

	pool := workerpool.New(s.workers)
	defer pool.StopWait()

	progress := util.LogProgress(s.log, "simulated blocks", s.blocks)
	for round := uint64(0); round < s.blocks; round++ {
		if ctx.Err() != nil {
			return
		}
		s.clock.Advance(s.interval)

		proposer := s.nodes[round%uint64(len(s.nodes))]
		block, err := proposer.Produce(ctx)
		if irrecoverable.IsException(err) {
			ctx.Throw(err)
		}
		if err != nil {
			s.log.Warn().Err(err).Str("node", proposer.Name()).Msg("could not produce block")
			progress(1)
			continue
		}

		exceptions := make(chan error, len(s.nodes))
		var wg sync.WaitGroup
		for _, node := range s.nodes {
			if node == proposer {
				continue
			}
			node := node
			wg.Add(1)
			pool.Submit(func() {
				defer wg.Done()
				s.importBlock(ctx, node, block, exceptions)
			})
		}
		wg.Wait()

		select {
		case err := <-exceptions:
			ctx.Throw(err)
		default:
		}
		progress(1)
	}
}

func (s *Simulation[M]) importBlock(ctx irrecoverable.SignalerContext, node *Node[M], block *Block, exceptions chan<- error) {
	err := node.Import(ctx, block)
	if err == nil {
		return
	}
	if irrecoverable.IsException(err) {
		exceptions <- err
		return
	}
	s.log.Info().Err(err).
		Str("node", node.Name()).
		Str("proposer", block.Proposer).
		Uint64("height", block.Height).
		Msg("block not imported")
}

// Stats returns the stats of all nodes in order.
func (s *Simulation[M]) Stats() ([]NodeStats, error) {
	stats := make([]NodeStats, 0, len(s.nodes))
	for _, node := range s.nodes {
		nodeStats, err := node.Stats()
		if err != nil {
			return nil, err
		}
		stats = append(stats, nodeStats)
	}
	return stats, nil
}
