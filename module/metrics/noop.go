package metrics

import (
	"time"

	"github.com/onflow/flow-timestamp/module"
)

type NoopCollector struct{}

var (
	_ module.TimestampMetrics = (*NoopCollector)(nil)
	_ module.StorageMetrics   = (*NoopCollector)(nil)
)

func NewNoopCollector() *NoopCollector {
	nc := &NoopCollector{}
	return nc
}

func (nc *NoopCollector) TimestampSet(now uint64)           {}
func (nc *NoopCollector) TimestampFinalized()               {}
func (nc *NoopCollector) InvariantViolation(kind string)    {}
func (nc *NoopCollector) InherentChecked(verdict string)    {}
func (nc *NoopCollector) InherentDrift(drift time.Duration) {}
func (nc *NoopCollector) RetryOnConflict()                  {}
func (nc *NoopCollector) BlockDiscarded()                   {}
