package timestamp

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"go.uber.org/atomic"

	tsmodel "github.com/onflow/flow-timestamp/model/timestamp"
	"github.com/onflow/flow-timestamp/module"
	"github.com/onflow/flow-timestamp/module/inherents"
	tsstate "github.com/onflow/flow-timestamp/state/timestamp"
)

// Importer verifies blocks produced by other nodes against its own clock
// and applies them to the local timestamp state.
type Importer[M tsmodel.Moment] struct {
	log       zerolog.Logger
	metrics   module.TimestampMetrics
	store     tsstate.Store[M]
	providers *inherents.Providers
	listener  tsstate.OnTimestampSet[M]
	height    *atomic.Uint64
}

func NewImporter[M tsmodel.Moment](
	log zerolog.Logger,
	metrics module.TimestampMetrics,
	store tsstate.Store[M],
	providers *inherents.Providers,
	listener tsstate.OnTimestampSet[M],
	name string,
	height *atomic.Uint64,
) *Importer[M] {
	return &Importer[M]{
		log:       log.With().Str("engine", "importer").Str("node", name).Logger(),
		metrics:   metrics,
		store:     store,
		providers: providers,
		listener:  listener,
		height:    height,
	}
}

// Import checks the timestamp call of the block against freshly collected
// inherent data and, if it passes, executes the block against the local
// state. A block that fails leaves the local state untouched.
// Expected errors during normal operations:
//   - InvalidBlockError if the block is rejected
//   - NotYetValidError (matching ErrNotYetValid) if the block carries a
//     timestamp that only becomes valid later
func (i *Importer[M]) Import(ctx context.Context, block *Block) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	log := i.log.With().
		Uint64("height", block.Height).
		Str("proposer", block.Proposer).
		Logger()

	call, err := tsstate.DecodeCall[M](block.Payload)
	if err != nil {
		return NewInvalidBlockErrorf("invalid block payload: %w", err)
	}

	data, err := i.providers.CreateInherentData()
	if err != nil {
		return fmt.Errorf("could not create inherent data: %w", err)
	}

	err = i.store.ExecuteBlock(func(state tsstate.State[M]) error {
		timestamps := tsstate.NewModule(log, i.metrics, state, i.listener)

		result := inherents.NewCheckResult()
		result.Check(tsstate.InherentIdentifier, func() error {
			return timestamps.CheckInherent(call, data)
		})
		if !result.Ok() {
			return i.checkFailed(log, result)
		}

		err := applyBlock(timestamps, call)
		if tsstate.IsInvariantViolation(err) {
			return NewInvalidBlockErrorf("block violates timestamp rules: %w", err)
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("could not import block %d: %w", block.Height, err)
	}

	i.height.Store(block.Height)
	log.Debug().Uint64("timestamp", uint64(call.Now)).Msg("block imported")
	return nil
}

func (i *Importer[M]) checkFailed(log zerolog.Logger, result *inherents.CheckResult) error {
	checkErr := result.ErrorFor(tsstate.InherentIdentifier)

	var inherentErr tsstate.InherentError
	if errors.As(checkErr, &inherentErr) {
		log.Info().
			Str("inherent_error", i.providers.ErrorToString(tsstate.InherentIdentifier, inherentErr.Encode())).
			Bool("fatal", result.FatalError()).
			Msg("block failed inherent check")
		if inherentErr.Kind == tsstate.ValidAtTimestamp {
			return NewNotYetValidError(inherentErr.ValidAt)
		}
	}
	if !result.FatalError() {
		return fmt.Errorf("unexpected non-fatal check result: %w", result.Err())
	}
	return NewInvalidBlockErrorf("block failed inherent checks: %w", result.Err())
}
