package badger

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v2"

	tsmodel "github.com/onflow/flow-timestamp/model/timestamp"
	"github.com/onflow/flow-timestamp/module"
	"github.com/onflow/flow-timestamp/state/timestamp"
	"github.com/onflow/flow-timestamp/storage"
	"github.com/onflow/flow-timestamp/storage/badger/operation"
)

// Timestamps persists the timestamp state in a badger DB. Every block is
// executed inside a single badger transaction.
type Timestamps[M tsmodel.Moment] struct {
	db      *badger.DB
	metrics module.StorageMetrics
}

var _ timestamp.Store[uint64] = (*Timestamps[uint64])(nil)

func NewTimestamps[M tsmodel.Moment](collector module.StorageMetrics, db *badger.DB) *Timestamps[M] {
	return &Timestamps[M]{
		db:      db,
		metrics: collector,
	}
}

// Bootstrap writes the genesis state.
// Expected errors during normal operations:
//   - storage.ErrAlreadyExists if the state was bootstrapped before
func (t *Timestamps[M]) Bootstrap(genesis tsmodel.Genesis[M]) error {
	err := operation.RetryOnConflict(t.metrics, t.db.Update, func(tx *badger.Txn) error {
		err := operation.InsertTimestampNow(M(0))(tx)
		if err != nil {
			return fmt.Errorf("could not insert genesis timestamp: %w", err)
		}
		err = operation.InsertTimestampPeriod(genesis.Period)(tx)
		if err != nil {
			return fmt.Errorf("could not insert block period: %w", err)
		}
		return nil
	})
	return operation.TerminateOnFullDisk(err)
}

// IsBootstrapped returns whether a genesis state exists.
func (t *Timestamps[M]) IsBootstrapped() (bool, error) {
	var period M
	err := t.db.View(operation.RetrieveTimestampPeriod(&period))
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ExecuteBlock runs fn in a single transaction. fn notifies listeners and
// metrics, so it is run at most once: blocks must be executed by a single
// writer, and a block executed concurrently with another fails with
// badger.ErrConflict and is discarded.
func (t *Timestamps[M]) ExecuteBlock(fn func(state timestamp.State[M]) error) error {
	err := t.db.Update(func(tx *badger.Txn) error {
		return fn(&blockState[M]{tx: tx})
	})
	if err != nil {
		t.metrics.BlockDiscarded()
	}
	return operation.TerminateOnFullDisk(err)
}

func (t *Timestamps[M]) View(fn func(state timestamp.State[M]) error) error {
	return t.db.View(func(tx *badger.Txn) error {
		return fn(&blockState[M]{tx: tx})
	})
}

// blockState implements timestamp.State on top of a badger transaction.
type blockState[M tsmodel.Moment] struct {
	tx *badger.Txn
}

func (s *blockState[M]) Now() (M, error) {
	var now M
	err := operation.RetrieveTimestampNow(&now)(s.tx)
	if errors.Is(err, storage.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("could not retrieve timestamp: %w", err)
	}
	return now, nil
}

func (s *blockState[M]) SetNow(now M) error {
	return operation.UpdateTimestampNow(now)(s.tx)
}

// Period falls back to the default period if genesis did not store one.
func (s *blockState[M]) Period() (M, error) {
	var period M
	err := operation.RetrieveTimestampPeriod(&period)(s.tx)
	if errors.Is(err, storage.ErrNotFound) {
		return tsmodel.DefaultGenesis[M]().Period, nil
	}
	if err != nil {
		return 0, fmt.Errorf("could not retrieve block period: %w", err)
	}
	return period, nil
}

func (s *blockState[M]) DidUpdate() (bool, error) {
	var didUpdate bool
	err := operation.HasTimestampDidUpdate(&didUpdate)(s.tx)
	if err != nil {
		return false, err
	}
	return didUpdate, nil
}

func (s *blockState[M]) SetDidUpdate() error {
	return operation.SetTimestampDidUpdate()(s.tx)
}

func (s *blockState[M]) TakeDidUpdate() (bool, error) {
	didUpdate, err := s.DidUpdate()
	if err != nil {
		return false, err
	}
	if !didUpdate {
		return false, nil
	}
	return true, operation.RemoveTimestampDidUpdate()(s.tx)
}
