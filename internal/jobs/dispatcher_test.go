package jobs

import (
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPool_RunsAllTasks(t *testing.T) {
	p := NewPool(4, 64, discardLogger())

	var ran atomic.Int32
	for range 50 {
		require.NoError(t, p.Submit(func() { ran.Add(1) }))
	}
	p.Stop()

	assert.Equal(t, int32(50), ran.Load())
}

func TestPool_Defaults(t *testing.T) {
	p := NewPool(0, 0, discardLogger())
	defer p.Stop()

	assert.Equal(t, 1, p.Workers())
	assert.Equal(t, defaultQueueSize, cap(p.queue))
}

func TestPool_QueueFull(t *testing.T) {
	p := NewPool(1, 1, discardLogger())

	release := make(chan struct{})
	started := make(chan struct{})
	require.NoError(t, p.Submit(func() {
		close(started)
		<-release
	}))
	<-started

	// The single worker is busy, so one task fits in the queue and the next is rejected.
	require.NoError(t, p.Submit(func() {}))
	assert.ErrorIs(t, p.Submit(func() {}), ErrQueueFull)

	close(release)
	p.Stop()
}

func TestPool_SubmitAfterStop(t *testing.T) {
	p := NewPool(2, 4, discardLogger())
	p.Stop()
	p.Stop()

	assert.ErrorIs(t, p.Submit(func() {}), ErrPoolStopped)
}

func TestPool_SurvivesPanickingTask(t *testing.T) {
	p := NewPool(1, 4, discardLogger())

	var wg sync.WaitGroup
	wg.Add(1)
	require.NoError(t, p.Submit(func() { panic("boom") }))
	require.NoError(t, p.Submit(wg.Done))

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not survive a panicking task")
	}
	p.Stop()
}
