package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "bugwatch"

// Metrics holds the Prometheus counters, histograms, and gauges for the service.
type Metrics struct {
	// Submission metrics.
	SightingsSubmitted   prometheus.Counter
	SubmissionsRejected  *prometheus.CounterVec // labels: kind={validation,io,verification}
	VerificationDuration prometheus.Histogram
	VerifyCache          *prometheus.CounterVec // labels: result={hit,miss}
	SessionsActive       prometheus.Gauge

	// Event feed metrics.
	FeedPublished     prometheus.Counter
	FeedDropped       prometheus.Counter
	FeedPublishErrors prometheus.Counter
	FeedRunning       prometheus.Gauge
	FeedBatchSize     prometheus.Histogram
}

func newMetrics() *Metrics {
	return &Metrics{
		SightingsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sightings_submitted_total",
			Help:      "Total sightings accepted into a session.",
		}),
		SubmissionsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_rejected_total",
			Help:      "Rejected submissions by error kind.",
		}, []string{"kind"}),
		VerificationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "verification_duration_seconds",
			Help:      "Time spent verifying an uploaded photo.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		}),
		VerifyCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verify_cache_total",
			Help:      "Verification cache lookups by result.",
		}, []string{"result"}),
		SessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Visitor sessions currently held in memory.",
		}),
		FeedPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_events_published_total",
			Help:      "Total sighting events written to the feed topic.",
		}),
		FeedDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_events_dropped_total",
			Help:      "Sighting events dropped because the feed queue was full.",
		}),
		FeedPublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_publish_errors_total",
			Help:      "Failed feed batch writes.",
		}),
		FeedRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "feed_running",
			Help:      "1 when the event feed is active, 0 when shut down.",
		}),
		FeedBatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "feed_batch_size",
			Help:      "Number of events per feed batch.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.SightingsSubmitted,
		m.SubmissionsRejected,
		m.VerificationDuration,
		m.VerifyCache,
		m.SessionsActive,
		m.FeedPublished,
		m.FeedDropped,
		m.FeedPublishErrors,
		m.FeedRunning,
		m.FeedBatchSize,
	}
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}
