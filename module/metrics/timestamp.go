package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/onflow/flow-timestamp/module"
)

type TimestampCollector struct {
	currentTimestamp    prometheus.Gauge
	timestampsSet       prometheus.Counter
	blocksFinalized     prometheus.Counter
	invariantViolations *prometheus.CounterVec
	inherentVerdicts    *prometheus.CounterVec
	inherentDrift       prometheus.Histogram
}

var _ module.TimestampMetrics = (*TimestampCollector)(nil)

// NewTimestampCollector creates the timestamp collector and registers its
// metrics with the given registerer.
func NewTimestampCollector(registerer prometheus.Registerer) *TimestampCollector {
	r := NewRegisterer(registerer)

	tc := &TimestampCollector{
		currentTimestamp: r.RegisterNewGauge(prometheus.GaugeOpts{
			Name:      "current_seconds",
			Namespace: namespaceTimestamp,
			Subsystem: subsystemState,
			Help:      "the agreed time of the latest block, in seconds since the unix epoch",
		}),

		timestampsSet: r.RegisterNewCounter(prometheus.CounterOpts{
			Name:      "set_total",
			Namespace: namespaceTimestamp,
			Subsystem: subsystemState,
			Help:      "the number of blocks that set the agreed time",
		}),

		blocksFinalized: r.RegisterNewCounter(prometheus.CounterOpts{
			Name:      "finalized_total",
			Namespace: namespaceTimestamp,
			Subsystem: subsystemState,
			Help:      "the number of blocks that passed the end-of-block timestamp check",
		}),

		invariantViolations: r.RegisterNewCounterVec(prometheus.CounterOpts{
			Name:      "invariant_violations_total",
			Namespace: namespaceTimestamp,
			Subsystem: subsystemState,
			Help:      "the number of blocks rejected for breaking a timestamp invariant",
		}, []string{LabelInvariant}),

		inherentVerdicts: r.RegisterNewCounterVec(prometheus.CounterOpts{
			Name:      "checks_total",
			Namespace: namespaceTimestamp,
			Subsystem: subsystemInherent,
			Help:      "the verdicts of checking submitted timestamps against the local clock",
		}, []string{LabelVerdict}),

		inherentDrift: r.RegisterNewHistogram(prometheus.HistogramOpts{
			Name:      "drift_seconds",
			Namespace: namespaceTimestamp,
			Subsystem: subsystemInherent,
			Help:      "the submitted timestamp minus the local clock reading",
			Buckets:   []float64{-60, -30, -10, -5, -1, 0, 1, 5, 10, 30, 60, 120},
		}),
	}

	return tc
}

func (tc *TimestampCollector) TimestampSet(now uint64) {
	tc.currentTimestamp.Set(float64(now))
	tc.timestampsSet.Inc()
}

func (tc *TimestampCollector) TimestampFinalized() {
	tc.blocksFinalized.Inc()
}

func (tc *TimestampCollector) InvariantViolation(kind string) {
	tc.invariantViolations.WithLabelValues(kind).Inc()
}

func (tc *TimestampCollector) InherentChecked(verdict string) {
	tc.inherentVerdicts.WithLabelValues(verdict).Inc()
}

func (tc *TimestampCollector) InherentDrift(drift time.Duration) {
	tc.inherentDrift.Observe(drift.Seconds())
}
