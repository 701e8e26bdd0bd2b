package app

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"

	"github.com/yourusername/audio-extract-go/internal/domain"
)

// CancelState is the state of a Canceller
type CancelState int32

const (
	CancelRunning CancelState = iota
	CancelRequested
)

// String returns the state name
func (s CancelState) String() string {
	switch s {
	case CancelRunning:
		return "running"
	case CancelRequested:
		return "cancel_requested"
	default:
		return "unknown"
	}
}

// Canceller is a one-shot cancellation token. The first Cancel moves it
// from CancelRunning to CancelRequested, runs onCancel and cancels the
// job context with domain.ErrCancelled as cause; later calls do nothing.
type Canceller struct {
	state    atomic.Int32
	cancel   context.CancelCauseFunc
	onCancel func()
}

// NewCanceller returns a canceller and the job context it controls.
// onCancel may be nil.
func NewCanceller(parent context.Context, onCancel func()) (*Canceller, context.Context) {
	ctx, cancel := context.WithCancelCause(parent)
	return &Canceller{cancel: cancel, onCancel: onCancel}, ctx
}

// Cancel requests cancellation. It reports whether this call made the transition.
func (c *Canceller) Cancel() bool {
	if !c.state.CompareAndSwap(int32(CancelRunning), int32(CancelRequested)) {
		return false
	}
	if c.onCancel != nil {
		c.onCancel()
	}
	c.cancel(domain.ErrCancelled)
	return true
}

// State returns the current state
func (c *Canceller) State() CancelState {
	return CancelState(c.state.Load())
}

// Requested reports whether cancellation was requested
func (c *Canceller) Requested() bool {
	return c.State() == CancelRequested
}

// Release frees the job context without requesting cancellation
func (c *Canceller) Release() {
	c.cancel(nil)
}

// WatchSignals maps delivery of any of sigs to Cancel until the returned
// stop function is called. Repeated signals are absorbed.
func (c *Canceller) WatchSignals(sigs ...os.Signal) (stop func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, sigs...)

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ch:
				c.Cancel()
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			signal.Stop(ch)
			close(done)
			wg.Wait()
		})
	}
}
