// Package verify decides whether an uploaded photo is accepted as a sighting.
//
// The production check is a stub that waits a configurable delay and accepts
// any decoded photo. It sits behind domain.Verifier so a real classifier can
// replace it without touching the submission flow.
package verify

import (
	"context"
	"time"

	"github.com/couchcryptid/bugwatch/internal/cache"
	"github.com/couchcryptid/bugwatch/internal/domain"
	"github.com/couchcryptid/bugwatch/internal/observability"
	"github.com/jonboulle/clockwork"
)

// Stub implements domain.Verifier with a simulated delay.
type Stub struct {
	delay time.Duration
	clock clockwork.Clock
}

// NewStub creates a stub verifier. A nil clock uses real time.
func NewStub(delay time.Duration, clock clockwork.Clock) *Stub {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Stub{delay: delay, clock: clock}
}

// Verify waits for the configured delay and accepts any photo with a digest.
// It returns ctx.Err() if the context ends first.
func (s *Stub) Verify(ctx context.Context, photo domain.Photo) (bool, error) {
	if s.delay > 0 {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-s.clock.After(s.delay):
		}
	}
	return photo.Digest != "", nil
}

// Cached wraps a Verifier and remembers accepted photos by digest.
type Cached struct {
	inner   domain.Verifier
	cache   *cache.LRU[string, bool]
	metrics *observability.Metrics
}

// NewCached creates a caching decorator around a verifier.
func NewCached(inner domain.Verifier, maxEntries int, metrics *observability.Metrics) *Cached {
	return &Cached{
		inner:   inner,
		cache:   cache.NewLRU[string, bool](maxEntries),
		metrics: metrics,
	}
}

func (c *Cached) Verify(ctx context.Context, photo domain.Photo) (bool, error) {
	if photo.Digest != "" {
		if ok, hit := c.cache.Get(photo.Digest); hit {
			c.metrics.VerifyCache.WithLabelValues("hit").Inc()
			return ok, nil
		}
	}
	c.metrics.VerifyCache.WithLabelValues("miss").Inc()

	ok, err := c.inner.Verify(ctx, photo)
	if err != nil {
		return false, err
	}
	// Only accepted verdicts are cached so a rejected photo can be retried.
	if ok && photo.Digest != "" {
		c.cache.Put(photo.Digest, true)
	}
	return ok, nil
}
