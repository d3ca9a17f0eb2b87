package module

import (
	"errors"

	"github.com/onflow/flow-timestamp/module/irrecoverable"
)

// ErrMultipleStartup is returned when Start is called on a component twice.
var ErrMultipleStartup = errors.New("component may only be started once")

// Startable provides an interface to start a component. Once started, the
// component can be stopped by cancelling the given context.
type Startable interface {
	// Start starts the component. Any irrecoverable errors encountered while
	// the component is running are thrown with the given context.
	Start(irrecoverable.SignalerContext)
}

// ReadyDoneAware provides easy interface to wait for module startup and shutdown.
// Modules that implement this interface only support a single start-stop cycle.
type ReadyDoneAware interface {
	// Ready returns a channel that is closed once startup has completed.
	Ready() <-chan struct{}

	// Done returns a channel that is closed once shutdown has completed.
	Done() <-chan struct{}
}
