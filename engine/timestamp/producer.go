package timestamp

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"go.uber.org/atomic"

	tsmodel "github.com/onflow/flow-timestamp/model/timestamp"
	"github.com/onflow/flow-timestamp/module"
	"github.com/onflow/flow-timestamp/module/inherents"
	tsstate "github.com/onflow/flow-timestamp/state/timestamp"
)

// Producer builds blocks on top of the local timestamp state.
type Producer[M tsmodel.Moment] struct {
	log       zerolog.Logger
	metrics   module.TimestampMetrics
	store     tsstate.Store[M]
	providers *inherents.Providers
	listener  tsstate.OnTimestampSet[M]
	name      string
	height    *atomic.Uint64
}

func NewProducer[M tsmodel.Moment](
	log zerolog.Logger,
	metrics module.TimestampMetrics,
	store tsstate.Store[M],
	providers *inherents.Providers,
	listener tsstate.OnTimestampSet[M],
	name string,
	height *atomic.Uint64,
) *Producer[M] {
	return &Producer[M]{
		log:       log.With().Str("engine", "producer").Str("node", name).Logger(),
		metrics:   metrics,
		store:     store,
		providers: providers,
		listener:  listener,
		name:      name,
		height:    height,
	}
}

// Produce collects fresh inherent data, creates the timestamp call from it
// and executes the resulting block against the local state.
// No errors are expected during normal operations.
func (p *Producer[M]) Produce(ctx context.Context) (*Block, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := p.providers.CreateInherentData()
	if err != nil {
		return nil, fmt.Errorf("could not create inherent data: %w", err)
	}

	var call tsstate.Call[M]
	err = p.store.ExecuteBlock(func(state tsstate.State[M]) error {
		timestamps := tsstate.NewModule(p.log, p.metrics, state, p.listener)
		created, err := timestamps.CreateInherent(data)
		if err != nil {
			return fmt.Errorf("could not create timestamp inherent: %w", err)
		}
		call = created
		return applyBlock(timestamps, call)
	})
	if err != nil {
		return nil, fmt.Errorf("could not execute produced block: %w", err)
	}

	block := newBlock(p.height.Inc(), p.name, call)
	p.log.Info().
		Uint64("height", block.Height).
		Uint64("timestamp", uint64(call.Now)).
		Msg("block produced")
	return block, nil
}
