package enrichment

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StreetLamp05/glassgov-be/internal/telemetry"
)

func newTelemetry() *telemetry.Provider {
	return telemetry.NewProviderWithRegistry(prometheus.NewRegistry())
}

func jobCount(tp *telemetry.Provider, status string) float64 {
	return testutil.ToFloat64(tp.Metrics.EnrichmentJobs.WithLabelValues(status))
}

func TestPool_DropsWhenFull(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once

	tp := newTelemetry()
	p := NewPool(PoolConfig{Workers: 1, QueueSize: 1}, func(ctx context.Context, _ Job) error {
		once.Do(func() { close(started) })
		<-release
		return nil
	}, nil, tp)

	require.True(t, p.Submit(Job{ID: "1"}))
	<-started
	require.True(t, p.Submit(Job{ID: "2"}), "queued behind the running job")
	assert.False(t, p.Submit(Job{ID: "3"}), "queue full")
	assert.InDelta(t, 1, testutil.ToFloat64(tp.Metrics.EnrichmentDropped), 0)

	close(release)
	require.NoError(t, p.Shutdown(context.Background()))
	assert.InDelta(t, 2, jobCount(tp, StatusCompleted), 0)
}

func TestPool_RecoversPanics(t *testing.T) {
	var done atomic.Int32
	tp := newTelemetry()
	p := NewPool(PoolConfig{Workers: 1, QueueSize: 4}, func(_ context.Context, job Job) error {
		if job.Text == "boom" {
			panic("bad input")
		}
		done.Add(1)
		return nil
	}, nil, tp)

	require.True(t, p.Enqueue("boom"))
	require.True(t, p.Enqueue("fine"))
	require.NoError(t, p.Shutdown(context.Background()))

	assert.Equal(t, int32(1), done.Load())
	assert.InDelta(t, 1, jobCount(tp, StatusPanicked), 0)
	assert.InDelta(t, 1, jobCount(tp, StatusCompleted), 0)
}

func TestPool_ShutdownDrainsAndRejects(t *testing.T) {
	var done atomic.Int32
	p := NewPool(PoolConfig{Workers: 2, QueueSize: 10, RatePerSecond: 1000, Burst: 10}, func(context.Context, Job) error {
		time.Sleep(5 * time.Millisecond)
		done.Add(1)
		return nil
	}, nil, nil)

	for range 8 {
		require.True(t, p.Enqueue("text"))
	}
	require.NoError(t, p.Shutdown(context.Background()))
	assert.Equal(t, int32(8), done.Load())

	assert.False(t, p.Enqueue("late"))
	assert.NoError(t, p.Shutdown(context.Background()), "second shutdown is a no-op")
}

func TestPool_ShutdownTimeoutCancelsJobs(t *testing.T) {
	cancelled := make(chan struct{})
	started := make(chan struct{})
	p := NewPool(PoolConfig{Workers: 1, QueueSize: 1}, func(ctx context.Context, _ Job) error {
		close(started)
		<-ctx.Done()
		close(cancelled)
		return ctx.Err()
	}, nil, nil)

	require.True(t, p.Enqueue("stuck"))
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, p.Shutdown(ctx), context.DeadlineExceeded)

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("in-flight job was not cancelled")
	}
}
