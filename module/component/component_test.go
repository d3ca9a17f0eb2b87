package component_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onflow/flow-timestamp/module"
	"github.com/onflow/flow-timestamp/module/component"
	"github.com/onflow/flow-timestamp/module/irrecoverable"
	"github.com/onflow/flow-timestamp/utils/unittest"
)

func TestComponentManager_StartStop(t *testing.T) {
	worker := func(ctx irrecoverable.SignalerContext, ready component.ReadyFunc) {
		ready()
		<-ctx.Done()
	}
	cm := component.NewComponentManagerBuilder().
		AddWorker(worker).
		AddWorker(worker).
		Build()

	ctx, cancel := context.WithCancel(context.Background())
	cm.Start(irrecoverable.NewMockSignalerContext(t, ctx))

	unittest.RequireCloseBefore(t, cm.Ready(), time.Second, "component did not become ready")
	cancel()
	unittest.RequireCloseBefore(t, cm.Done(), time.Second, "component did not shut down")
}

func TestComponentManager_MultipleStartup(t *testing.T) {
	cm := component.NewComponentManagerBuilder().Build()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cm.Start(irrecoverable.NewMockSignalerContext(t, ctx))
	assert.PanicsWithValue(t, module.ErrMultipleStartup, func() {
		cm.Start(irrecoverable.NewMockSignalerContext(t, ctx))
	})
}

func TestComponentManager_ThrowPropagates(t *testing.T) {
	failure := errors.New("storage failure")
	cm := component.NewComponentManagerBuilder().
		AddWorker(func(ctx irrecoverable.SignalerContext, ready component.ReadyFunc) {
			ready()
			ctx.Throw(failure)
		}).
		AddWorker(func(ctx irrecoverable.SignalerContext, ready component.ReadyFunc) {
			ready()
			<-ctx.Done()
		}).
		Build()

	ctx, cancel, errChan := irrecoverable.WithSignallerAndCancel(context.Background())
	defer cancel()
	cm.Start(ctx)

	unittest.RequireCloseBefore(t, cm.Done(), time.Second, "component did not shut down after throw")
	select {
	case err := <-errChan:
		require.ErrorIs(t, err, failure)
	default:
		t.Fatal("error was not propagated to the parent")
	}
}
