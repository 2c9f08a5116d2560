package pipeline_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/couchcryptid/bugwatch/internal/domain"
	"github.com/couchcryptid/bugwatch/internal/observability"
	"github.com/couchcryptid/bugwatch/internal/pipeline"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// --- mocks ---

type mockTransformer struct {
	failID string
}

func (m *mockTransformer) Transform(_ context.Context, ev domain.SightingEvent) (domain.OutputEvent, error) {
	if ev.ID == m.failID {
		return domain.OutputEvent{}, errors.New("bad event")
	}
	return domain.OutputEvent{Key: []byte(ev.ID)}, nil
}

type mockLoader struct {
	mu       sync.Mutex
	loaded   []domain.OutputEvent
	failures atomic.Int32 // number of calls to fail before succeeding
	calls    atomic.Int32
}

func (m *mockLoader) LoadBatch(_ context.Context, events []domain.OutputEvent) error {
	m.calls.Add(1)
	if m.failures.Load() > 0 {
		m.failures.Add(-1)
		return errors.New("broker unavailable")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loaded = append(m.loaded, events...)
	return nil
}

func (m *mockLoader) keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.loaded))
	for i, e := range m.loaded {
		out[i] = string(e.Key)
	}
	return out
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// runUntil runs the pipeline until cond holds or the deadline passes.
func runUntil(t *testing.T, p *pipeline.Pipeline, cond func() bool) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(ctx) }()

	assert.Eventually(t, cond, 3*time.Second, 10*time.Millisecond)
	cancel()
	require.NoError(t, <-errCh)
}

// --- queue tests ---

func TestQueue_ExtractBatchDrainsUpToBatchSize(t *testing.T) {
	q := pipeline.NewQueue(10, time.Second, observability.NewMetricsForTesting())
	for _, id := range []string{"a", "b", "c"} {
		require.True(t, q.Publish(domain.SightingEvent{ID: id}))
	}

	batch, err := q.ExtractBatch(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, batch, 2)
	assert.Equal(t, "a", batch[0].ID)
	assert.Equal(t, "b", batch[1].ID)
	assert.Equal(t, 1, q.Pending())
}

func TestQueue_ExtractBatchFlushesEmpty(t *testing.T) {
	q := pipeline.NewQueue(10, 20*time.Millisecond, observability.NewMetricsForTesting())

	batch, err := q.ExtractBatch(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, batch)
}

func TestQueue_ExtractBatchContextCancelled(t *testing.T) {
	q := pipeline.NewQueue(10, time.Minute, observability.NewMetricsForTesting())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := q.ExtractBatch(ctx, 5)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestQueue_PublishDropsWhenFull(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	q := pipeline.NewQueue(1, time.Second, metrics)

	assert.True(t, q.Publish(domain.SightingEvent{ID: "a"}))
	assert.False(t, q.Publish(domain.SightingEvent{ID: "b"}))
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.FeedDropped), 0)
}

// --- pipeline tests ---

func TestPipeline_Run_HappyPath(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	q := pipeline.NewQueue(10, 20*time.Millisecond, metrics)
	ldr := &mockLoader{}
	p := pipeline.New(q, &mockTransformer{}, ldr, discardLogger(), metrics, 10)

	q.Publish(domain.SightingEvent{ID: "s-1"})
	q.Publish(domain.SightingEvent{ID: "s-2"})

	runUntil(t, p, func() bool { return len(ldr.keys()) == 2 })

	assert.Equal(t, []string{"s-1", "s-2"}, ldr.keys())
	assert.InDelta(t, 2, testutil.ToFloat64(metrics.FeedPublished), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(metrics.FeedRunning), 0)
}

func TestPipeline_Run_TransformErrorSkipsEvent(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	q := pipeline.NewQueue(10, 20*time.Millisecond, metrics)
	ldr := &mockLoader{}
	p := pipeline.New(q, &mockTransformer{failID: "bad"}, ldr, discardLogger(), metrics, 10)

	q.Publish(domain.SightingEvent{ID: "bad"})
	q.Publish(domain.SightingEvent{ID: "good"})

	runUntil(t, p, func() bool { return len(ldr.keys()) == 1 })

	assert.Equal(t, []string{"good"}, ldr.keys())
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.FeedPublishErrors), 0)
}

func TestPipeline_Run_RetriesFailedLoad(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	q := pipeline.NewQueue(10, 20*time.Millisecond, metrics)
	ldr := &mockLoader{}
	ldr.failures.Store(2)
	p := pipeline.New(q, &mockTransformer{}, ldr, discardLogger(), metrics, 10)

	q.Publish(domain.SightingEvent{ID: "s-1"})

	runUntil(t, p, func() bool { return len(ldr.keys()) == 1 })

	assert.Equal(t, int32(3), ldr.calls.Load())
	assert.InDelta(t, 2, testutil.ToFloat64(metrics.FeedPublishErrors), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.FeedPublished), 0)
}

func TestPipeline_Run_ContextCancellation(t *testing.T) {
	q := pipeline.NewQueue(10, time.Minute, observability.NewMetricsForTesting())
	ldr := &mockLoader{}
	p := pipeline.New(q, &mockTransformer{}, ldr, discardLogger(), observability.NewMetricsForTesting(), 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, p.Run(ctx))
	assert.Empty(t, ldr.keys())
}

func TestPipeline_Readiness(t *testing.T) {
	q := pipeline.NewQueue(10, 20*time.Millisecond, observability.NewMetricsForTesting())
	p := pipeline.New(q, &mockTransformer{}, &mockLoader{}, discardLogger(), observability.NewMetricsForTesting(), 10)

	require.Error(t, p.CheckReadiness(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(ctx) }()

	assert.Eventually(t, func() bool { return p.CheckReadiness(context.Background()) == nil },
		time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-errCh)
	assert.Error(t, p.CheckReadiness(context.Background()))
}

func TestSightingTransformer_Transform(t *testing.T) {
	created := time.Date(2024, 4, 26, 15, 10, 0, 0, time.UTC)
	out, err := pipeline.NewTransformer().Transform(context.Background(), domain.SightingEvent{
		ID:        "s-9",
		Location:  "LIB",
		CreatedAt: created,
	})
	require.NoError(t, err)
	assert.Equal(t, []byte("s-9"), out.Key)
	assert.Equal(t, "LIB", out.Headers["location"])
	assert.Contains(t, string(out.Value), `"location":"LIB"`)
}
