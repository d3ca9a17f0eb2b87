package timestamp

import (
	tsmodel "github.com/onflow/flow-timestamp/model/timestamp"
)

// State is the typed storage of the timestamp module for the block currently
// being executed. The embedding engine supplies one State per block and
// persists its writes only if the whole block executes successfully.
type State[M tsmodel.Moment] interface {
	// Now returns the agreed time of the last block that set it, or zero.
	Now() (M, error)
	// SetNow overwrites the agreed time.
	SetNow(now M) error
	// Period returns the minimum period configured at genesis.
	Period() (M, error)
	// DidUpdate returns whether the time was set in the current block.
	DidUpdate() (bool, error)
	// SetDidUpdate marks the time as set in the current block.
	SetDidUpdate() error
	// TakeDidUpdate returns whether the time was set in the current block
	// and clears the flag.
	TakeDidUpdate() (bool, error)
}

// Store owns the persisted timestamp state across blocks.
type Store[M tsmodel.Moment] interface {
	// ExecuteBlock runs fn against the state of a new block. The writes of fn
	// are persisted atomically if fn returns nil and discarded otherwise.
	ExecuteBlock(fn func(state State[M]) error) error
	// View runs fn against a read-only view of the persisted state.
	View(fn func(state State[M]) error) error
}
