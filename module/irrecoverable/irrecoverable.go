package irrecoverable

import (
	"context"
	"fmt"
	"os"
	"runtime"
)

// Signaler sends irrecoverable errors out of the goroutine that hit them.
type Signaler struct {
	errors chan<- error
}

func NewSignaler(errors chan<- error) *Signaler {
	return &Signaler{errors}
}

// Throw is a narrow drop-in replacement for panic, log.Fatal, log.Panic, etc
// anywhere there's something connected to the error channel. It terminates
// the calling goroutine. An error thrown while the channel is full is dropped
// in favour of the first one.
func (e *Signaler) Throw(err error) {
	select {
	case e.errors <- err:
	default:
	}
	runtime.Goexit()
}

// SignalerContext is a context.Context that can also throw irrecoverable
// errors.
type SignalerContext interface {
	context.Context
	Throw(err error) // delegates to the signaler
	sealed()         // private, to constrain builder to using WithSignaler
}

// private, to force context derivation / WithSignaler
type signalerCtxt struct {
	context.Context
	signaler *Signaler
}

func (sc signalerCtxt) sealed() {}

func (sc signalerCtxt) Throw(err error) {
	sc.signaler.Throw(err)
}

// WithSignaler is the One True Way of getting a SignalerContext.
func WithSignaler(ctx context.Context, sig *Signaler) SignalerContext {
	return signalerCtxt{ctx, sig}
}

// WithSignallerAndCancel returns a cancellable SignalerContext together with
// the channel its irrecoverable errors are delivered on.
func WithSignallerAndCancel(parent context.Context) (SignalerContext, context.CancelFunc, <-chan error) {
	ctx, cancel := context.WithCancel(parent)
	errChan := make(chan error, 1)
	return WithSignaler(ctx, NewSignaler(errChan)), cancel, errChan
}

// Throw can be a drop-in replacement anywhere we have a context.Context likely
// to support Irrecoverables. Note: this is not a method
func Throw(ctx context.Context, err error) {
	signalerAbleContext, ok := ctx.(SignalerContext)
	if ok {
		signalerAbleContext.Throw(err)
	}
	// Be spectacular on how this does not -but should- handle irrecoverables:
	fmt.Fprintf(os.Stderr, "irrecoverable error signaler not found for context, unhandled irrecoverable error: %v\n", err)
	os.Exit(1)
}
