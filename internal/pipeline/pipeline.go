package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/bugwatch/internal/domain"
	"github.com/couchcryptid/bugwatch/internal/observability"
	"github.com/couchcryptid/storm-data-shared/retry"
)

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// BatchExtractor reads up to batchSize pending events.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.SightingEvent, error)
}

// Transformer converts a sighting event into an output event.
type Transformer interface {
	Transform(ctx context.Context, ev domain.SightingEvent) (domain.OutputEvent, error)
}

// BatchLoader writes multiple output events to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, events []domain.OutputEvent) error
}

// Pipeline moves accepted sightings from the queue to the feed topic.
type Pipeline struct {
	extractor   BatchExtractor
	transformer Transformer
	loader      BatchLoader
	logger      *slog.Logger
	metrics     *observability.Metrics
	running     atomic.Bool
	batchSize   int
}

// New creates a Pipeline with the given stages and observability.
func New(e BatchExtractor, t Transformer, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int) *Pipeline {
	return &Pipeline{
		extractor:   e,
		transformer: t,
		loader:      l,
		logger:      logger,
		metrics:     metrics,
		batchSize:   batchSize,
	}
}

// CheckReadiness returns nil while Run is active.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.running.Load() {
		return errors.New("event feed is not running")
	}
	return nil
}

// Run executes the feed loop until the context is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("event feed started", "batch_size", p.batchSize)
	p.running.Store(true)
	p.metrics.FeedRunning.Set(1)
	defer func() {
		p.running.Store(false)
		p.metrics.FeedRunning.Set(0)
	}()

	backoff := initialBackoff
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("event feed stopping", "reason", ctx.Err())
			return nil
		default:
		}

		if !p.processBatch(ctx, &backoff) {
			return nil
		}
	}
}

// processBatch runs one extract-transform-load cycle. Returns false if the pipeline should stop.
func (p *Pipeline) processBatch(ctx context.Context, backoff *time.Duration) bool {
	batch, err := p.extractor.ExtractBatch(ctx, p.batchSize)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		p.logger.Error("extract batch failed", "error", err)
		return p.backoffOrStop(ctx, backoff)
	}
	if len(batch) == 0 {
		return ctx.Err() == nil
	}

	p.metrics.FeedBatchSize.Observe(float64(len(batch)))

	out := make([]domain.OutputEvent, 0, len(batch))
	for _, ev := range batch {
		o, err := p.transformer.Transform(ctx, ev)
		if err != nil {
			p.logger.Warn("transform failed, skipping event", "error", err, "sighting_id", ev.ID)
			p.metrics.FeedPublishErrors.Inc()
			continue
		}
		out = append(out, o)
	}
	if len(out) == 0 {
		return true
	}

	// Extracted events are gone from the queue; retry until written.
	for {
		err := p.loader.LoadBatch(ctx, out)
		if err == nil {
			break
		}
		p.metrics.FeedPublishErrors.Inc()
		p.logger.Error("load batch failed", "error", err, "batch_size", len(out))
		if !p.backoffOrStop(ctx, backoff) {
			return false
		}
	}

	*backoff = initialBackoff
	p.metrics.FeedPublished.Add(float64(len(out)))
	return true
}

// backoffOrStop sleeps with the current backoff and advances it. Returns
// false if the pipeline should stop.
func (p *Pipeline) backoffOrStop(ctx context.Context, backoff *time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	if !retry.SleepWithContext(ctx, *backoff) {
		return false
	}
	*backoff = retry.NextBackoff(*backoff, maxBackoff)
	return true
}
