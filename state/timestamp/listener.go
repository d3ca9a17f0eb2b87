package timestamp

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	tsmodel "github.com/onflow/flow-timestamp/model/timestamp"
)

// OnTimestampSet is notified after the agreed time of a block was set.
// Listeners observe the new value; they must not mutate the timestamp state.
type OnTimestampSet[M tsmodel.Moment] interface {
	OnTimestampSet(now M)
}

// OnTimestampSetFunc adapts a function to the OnTimestampSet interface.
type OnTimestampSetFunc[M tsmodel.Moment] func(now M)

func (f OnTimestampSetFunc[M]) OnTimestampSet(now M) {
	f(now)
}

// NoopListener ignores all notifications.
type NoopListener[M tsmodel.Moment] struct{}

func (NoopListener[M]) OnTimestampSet(M) {}

// LogListener logs each notification.
type LogListener[M tsmodel.Moment] struct {
	log zerolog.Logger
}

func NewLogListener[M tsmodel.Moment](log zerolog.Logger) *LogListener[M] {
	return &LogListener[M]{
		log: log.With().Str("component", "timestamp_listener").Logger(),
	}
}

func (l *LogListener[M]) OnTimestampSet(now M) {
	l.log.Debug().Uint64("timestamp", uint64(now)).Msg("timestamp set")
}

// Distributor forwards notifications to its listeners in registration order.
// A panicking listener is logged and skipped, so no listener can prevent the
// remaining listeners from being notified or the transition from completing.
type Distributor[M tsmodel.Moment] struct {
	log       zerolog.Logger
	listeners []OnTimestampSet[M]
	lock      sync.RWMutex
}

var _ OnTimestampSet[uint64] = (*Distributor[uint64])(nil)

func NewDistributor[M tsmodel.Moment](log zerolog.Logger) *Distributor[M] {
	return &Distributor[M]{
		log: log.With().Str("component", "timestamp_distributor").Logger(),
	}
}

func (d *Distributor[M]) AddListener(listener OnTimestampSet[M]) {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.listeners = append(d.listeners, listener)
}

func (d *Distributor[M]) AddFunc(f func(now M)) {
	d.AddListener(OnTimestampSetFunc[M](f))
}

// OnTimestampSet notifies the listeners registered so far. Listeners may
// register further listeners, which are notified from the next timestamp on.
func (d *Distributor[M]) OnTimestampSet(now M) {
	d.lock.RLock()
	listeners := make([]OnTimestampSet[M], len(d.listeners))
	copy(listeners, d.listeners)
	d.lock.RUnlock()

	for i, listener := range listeners {
		d.notify(i, listener, now)
	}
}

func (d *Distributor[M]) notify(index int, listener OnTimestampSet[M], now M) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error().
				Int("listener", index).
				Uint64("timestamp", uint64(now)).
				Str("panic", fmt.Sprint(r)).
				Msg("timestamp listener panicked")
		}
	}()
	listener.OnTimestampSet(now)
}
