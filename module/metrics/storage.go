package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/onflow/flow-timestamp/module"
)

type StorageCollector struct {
	retriedOnConflict prometheus.Counter
	discardedBlocks   prometheus.Counter
}

var _ module.StorageMetrics = (*StorageCollector)(nil)

func NewStorageCollector(registerer prometheus.Registerer) *StorageCollector {
	r := NewRegisterer(registerer)

	return &StorageCollector{
		retriedOnConflict: r.RegisterNewCounter(prometheus.CounterOpts{
			Name:      "retry_on_conflict_total",
			Namespace: namespaceStorage,
			Subsystem: subsystemBadger,
			Help:      "the number of block executions retried after a transaction conflict",
		}),
		discardedBlocks: r.RegisterNewCounter(prometheus.CounterOpts{
			Name:      "discarded_blocks_total",
			Namespace: namespaceStorage,
			Subsystem: subsystemBadger,
			Help:      "the number of block executions whose writes were discarded",
		}),
	}
}

func (sc *StorageCollector) RetryOnConflict() {
	sc.retriedOnConflict.Inc()
}

func (sc *StorageCollector) BlockDiscarded() {
	sc.discardedBlocks.Inc()
}
