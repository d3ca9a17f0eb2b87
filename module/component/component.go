package component

import (
	"sync"

	"go.uber.org/atomic"

	"github.com/onflow/flow-timestamp/module"
	"github.com/onflow/flow-timestamp/module/irrecoverable"
	"github.com/onflow/flow-timestamp/module/util"
)

// Component represents a component which can be started and stopped, and exposes
// channels that close when startup and shutdown have completed.
// Once Start has been called, the channel returned by Done must close eventually,
// whether that be because of a graceful shutdown or an irrecoverable error.
type Component interface {
	module.Startable
	module.ReadyDoneAware
}

// ReadyFunc is called within a ComponentWorker function to indicate that the worker is ready.
// ComponentManager's Ready channel is closed when all workers are ready.
type ReadyFunc func()

// ComponentWorker represents a worker routine of a component.
// It takes a SignalerContext which can be used to throw any irrecoverable errors it encounters,
// as well as a ReadyFunc which must be called to signal that it is ready.
type ComponentWorker func(ctx irrecoverable.SignalerContext, ready ReadyFunc)

// ComponentManagerBuilder provides a mechanism for building a ComponentManager
type ComponentManagerBuilder interface {
	// AddWorker adds a worker routine for the ComponentManager
	AddWorker(ComponentWorker) ComponentManagerBuilder

	// Build builds and returns a new ComponentManager instance
	Build() *ComponentManager
}

type componentManagerBuilderImpl struct {
	workers []ComponentWorker
}

func NewComponentManagerBuilder() ComponentManagerBuilder {
	return &componentManagerBuilderImpl{}
}

// AddWorker adds a ComponentWorker closure to the ComponentManagerBuilder.
// All worker functions will be run in parallel when the ComponentManager is started.
// AddWorker is not concurrency-safe.
func (c *componentManagerBuilderImpl) AddWorker(worker ComponentWorker) ComponentManagerBuilder {
	c.workers = append(c.workers, worker)
	return c
}

func (c *componentManagerBuilderImpl) Build() *ComponentManager {
	return &ComponentManager{
		started:     atomic.NewBool(false),
		ready:       make(chan struct{}),
		done:        make(chan struct{}),
		workersDone: make(chan struct{}),
		workers:     c.workers,
	}
}

var _ Component = (*ComponentManager)(nil)

// ComponentManager manages the worker routines of a Component.
//
// Shutdown is signalled by cancelling the irrecoverable.SignalerContext passed to Start. This context
// is also used by workers to communicate irrecoverable errors, which are propagated to the
// caller of Start via the context's Throw method after all workers were cancelled.
type ComponentManager struct {
	started     *atomic.Bool
	ready       chan struct{}
	done        chan struct{}
	workersDone chan struct{}

	workers []ComponentWorker
}

// Start launches all worker routines. It panics if called more than once.
func (c *ComponentManager) Start(parent irrecoverable.SignalerContext) {
	if !c.started.CompareAndSwap(false, true) {
		panic(module.ErrMultipleStartup)
	}

	signalerCtx, cancel, errChan := irrecoverable.WithSignallerAndCancel(parent)

	go func() {
		// done closes only after the error reached the parent
		defer func() {
			<-c.workersDone
			close(c.done)
		}()

		if err := util.WaitError(errChan, c.workersDone); err != nil {
			cancel()
			parent.Throw(err)
		}
		cancel()
	}()

	var workersReady sync.WaitGroup
	var workersDone sync.WaitGroup
	workersReady.Add(len(c.workers))
	workersDone.Add(len(c.workers))

	for _, worker := range c.workers {
		worker := worker
		go func() {
			defer workersDone.Done()
			var readyOnce sync.Once
			worker(signalerCtx, func() {
				readyOnce.Do(workersReady.Done)
			})
		}()
	}

	go func() {
		workersReady.Wait()
		close(c.ready)
	}()

	go func() {
		workersDone.Wait()
		close(c.workersDone)
	}()
}

// Ready returns a channel which is closed once all the worker routines are ready.
// If any worker routine exits before it indicated that it is ready, the channel never closes.
func (c *ComponentManager) Ready() <-chan struct{} {
	return c.ready
}

// Done returns a channel which is closed once all worker routines have returned.
func (c *ComponentManager) Done() <-chan struct{} {
	return c.done
}
