package pipeline

import (
	"context"
	"time"

	"github.com/couchcryptid/bugwatch/internal/domain"
	"github.com/couchcryptid/bugwatch/internal/observability"
)

// Queue is a bounded in-memory buffer between the submission flow and the
// feed pipeline. It implements BatchExtractor.
type Queue struct {
	events        chan domain.SightingEvent
	flushInterval time.Duration
	metrics       *observability.Metrics
}

// NewQueue creates a queue holding at most size pending events. ExtractBatch
// returns an empty batch when nothing arrives within flushInterval.
func NewQueue(size int, flushInterval time.Duration, metrics *observability.Metrics) *Queue {
	return &Queue{
		events:        make(chan domain.SightingEvent, size),
		flushInterval: flushInterval,
		metrics:       metrics,
	}
}

// Publish enqueues an event without blocking. It reports false, and counts
// the drop, when the queue is full.
func (q *Queue) Publish(ev domain.SightingEvent) bool {
	select {
	case q.events <- ev:
		return true
	default:
		q.metrics.FeedDropped.Inc()
		return false
	}
}

// Pending reports the number of queued events.
func (q *Queue) Pending() int {
	return len(q.events)
}

// ExtractBatch waits for the first event, then drains up to batchSize events
// that are already queued.
func (q *Queue) ExtractBatch(ctx context.Context, batchSize int) ([]domain.SightingEvent, error) {
	timer := time.NewTimer(q.flushInterval)
	defer timer.Stop()

	var first domain.SightingEvent
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, nil
	case first = <-q.events:
	}

	batch := make([]domain.SightingEvent, 1, batchSize)
	batch[0] = first
	for len(batch) < batchSize {
		select {
		case ev := <-q.events:
			batch = append(batch, ev)
		default:
			return batch, nil
		}
	}
	return batch, nil
}
