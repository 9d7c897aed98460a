package testplan

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPlanScheduler_RunOnce(t *testing.T) {
	var calls atomic.Int32
	scheduler := NewDefaultPlanScheduler(10*time.Millisecond, true, log.New())
	scheduler.RegisterCallback(func() error {
		calls.Add(1)
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	require.NoError(t, scheduler.Start(ctx))
	assert.Equal(t, int32(1), calls.Load())

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load(), "run-once mode must not schedule further runs")
}

func TestDefaultPlanScheduler_Periodic(t *testing.T) {
	callChan := make(chan struct{}, 10)
	scheduler := NewDefaultPlanScheduler(10*time.Millisecond, false, log.New())
	scheduler.RegisterCallback(func() error {
		select {
		case callChan <- struct{}{}:
		default:
		}
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, scheduler.Start(ctx))

	for i := 0; i < 3; i++ {
		select {
		case <-callChan:
		case <-time.After(time.Second):
			t.Fatalf("Timed out waiting for run %d", i+1)
		}
	}

	require.NoError(t, scheduler.Stop())
	assert.True(t, scheduler.Stopped())
	require.NoError(t, scheduler.WaitForShutdown(context.Background()))

	// Stopping twice is a no-op
	require.NoError(t, scheduler.Stop())
}

func TestDefaultPlanScheduler_Errors(t *testing.T) {
	scheduler := NewDefaultPlanScheduler(time.Second, true, log.New())
	err := scheduler.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "callback must be registered")

	boom := errors.New("boom")
	scheduler.RegisterCallback(func() error { return boom })
	assert.ErrorIs(t, scheduler.Start(context.Background()), boom)

	continuous := NewDefaultPlanScheduler(time.Hour, false, log.New())
	continuous.RegisterCallback(func() error { return boom })
	assert.ErrorIs(t, continuous.Start(context.Background()), boom)
}

func TestDefaultPlanScheduler_ContextCancel(t *testing.T) {
	scheduler := NewDefaultPlanScheduler(time.Hour, false, log.New())
	scheduler.RegisterCallback(func() error { return nil })

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, scheduler.Start(ctx))
	cancel()

	waitCtx, waitCancel := context.WithTimeout(context.Background(), time.Second)
	defer waitCancel()
	require.NoError(t, scheduler.WaitForShutdown(waitCtx))
	assert.True(t, scheduler.Stopped())
}
