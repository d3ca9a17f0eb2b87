package inmemory

import (
	"errors"
	"sync"

	tsmodel "github.com/onflow/flow-timestamp/model/timestamp"
	"github.com/onflow/flow-timestamp/state/timestamp"
)

var errReadOnly = errors.New("write to read-only timestamp state")

// slots is a plain copy of the timestamp state.
type slots[M tsmodel.Moment] struct {
	now       M
	period    M
	didUpdate bool
}

// Timestamps keeps the timestamp state in memory. Each block executes on a
// copy that replaces the committed state only if the block succeeds.
type Timestamps[M tsmodel.Moment] struct {
	mu        sync.Mutex
	committed slots[M]
}

var _ timestamp.Store[uint64] = (*Timestamps[uint64])(nil)

func NewTimestamps[M tsmodel.Moment](genesis tsmodel.Genesis[M]) *Timestamps[M] {
	return &Timestamps[M]{
		committed: slots[M]{period: genesis.Period},
	}
}

func (t *Timestamps[M]) ExecuteBlock(fn func(state timestamp.State[M]) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	block := &blockState[M]{slots: t.committed}
	err := fn(block)
	if err != nil {
		return err
	}
	t.committed = block.slots
	return nil
}

func (t *Timestamps[M]) View(fn func(state timestamp.State[M]) error) error {
	t.mu.Lock()
	snapshot := t.committed
	t.mu.Unlock()

	return fn(&blockState[M]{slots: snapshot, readOnly: true})
}

// State returns a state that writes straight through to the committed state
// without block isolation. Tests use it to arrange and inspect state.
func (t *Timestamps[M]) State() timestamp.State[M] {
	return &directState[M]{store: t}
}

type blockState[M tsmodel.Moment] struct {
	slots    slots[M]
	readOnly bool
}

func (s *blockState[M]) Now() (M, error) {
	return s.slots.now, nil
}

func (s *blockState[M]) SetNow(now M) error {
	if s.readOnly {
		return errReadOnly
	}
	s.slots.now = now
	return nil
}

func (s *blockState[M]) Period() (M, error) {
	return s.slots.period, nil
}

func (s *blockState[M]) DidUpdate() (bool, error) {
	return s.slots.didUpdate, nil
}

func (s *blockState[M]) SetDidUpdate() error {
	if s.readOnly {
		return errReadOnly
	}
	s.slots.didUpdate = true
	return nil
}

func (s *blockState[M]) TakeDidUpdate() (bool, error) {
	if s.readOnly {
		return false, errReadOnly
	}
	didUpdate := s.slots.didUpdate
	s.slots.didUpdate = false
	return didUpdate, nil
}

type directState[M tsmodel.Moment] struct {
	store *Timestamps[M]
}

func (s *directState[M]) with(fn func(slots *slots[M])) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	fn(&s.store.committed)
}

func (s *directState[M]) Now() (now M, err error) {
	s.with(func(slots *slots[M]) { now = slots.now })
	return now, nil
}

func (s *directState[M]) SetNow(now M) error {
	s.with(func(slots *slots[M]) { slots.now = now })
	return nil
}

func (s *directState[M]) Period() (period M, err error) {
	s.with(func(slots *slots[M]) { period = slots.period })
	return period, nil
}

func (s *directState[M]) DidUpdate() (didUpdate bool, err error) {
	s.with(func(slots *slots[M]) { didUpdate = slots.didUpdate })
	return didUpdate, nil
}

func (s *directState[M]) SetDidUpdate() error {
	s.with(func(slots *slots[M]) { slots.didUpdate = true })
	return nil
}

func (s *directState[M]) TakeDidUpdate() (didUpdate bool, err error) {
	s.with(func(slots *slots[M]) {
		didUpdate = slots.didUpdate
		slots.didUpdate = false
	})
	return didUpdate, nil
}
