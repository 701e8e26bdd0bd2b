package app

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yourusername/audio-extract-go/internal/domain"
)

func TestCanceller_TransitionsOnce(t *testing.T) {
	var calls atomic.Int32
	canceller, ctx := NewCanceller(context.Background(), func() { calls.Add(1) })

	assert.Equal(t, CancelRunning, canceller.State())
	assert.NoError(t, ctx.Err())

	var wg sync.WaitGroup
	var transitions atomic.Int32
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if canceller.Cancel() {
				transitions.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), transitions.Load())
	assert.Equal(t, int32(1), calls.Load())
	assert.True(t, canceller.Requested())
	assert.Equal(t, "cancel_requested", canceller.State().String())
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
	assert.True(t, errors.Is(context.Cause(ctx), domain.ErrCancelled))
}

func TestCanceller_OnCancelRunsBeforeContextDone(t *testing.T) {
	var sawLive bool
	var ctx context.Context
	canceller, ctx := NewCanceller(context.Background(), func() {
		sawLive = ctx.Err() == nil
	})

	canceller.Cancel()
	assert.True(t, sawLive)
}

func TestCanceller_Release(t *testing.T) {
	canceller, ctx := NewCanceller(context.Background(), nil)
	canceller.Release()

	assert.Error(t, ctx.Err())
	assert.Equal(t, CancelRunning, canceller.State())
	assert.False(t, errors.Is(context.Cause(ctx), domain.ErrCancelled))
	assert.True(t, canceller.Cancel(), "releasing does not count as a cancellation request")
}

func TestCanceller_ParentCancellation(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	canceller, ctx := NewCanceller(parent, nil)
	cancel()

	assert.Error(t, ctx.Err())
	assert.Equal(t, CancelRunning, canceller.State())
}
