package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Feed composition metrics
	FeedCompositionsTotal   *prometheus.CounterVec
	FeedCompositionDuration *prometheus.HistogramVec
	FeedWindowFailures      *prometheus.CounterVec
	FeedDegradedTotal       *prometheus.CounterVec

	// Session seed metrics
	SeedMintsTotal  *prometheus.CounterVec
	SeedResetsTotal *prometheus.CounterVec
}

var (
	instance *Metrics
	once     sync.Once
)

// Get returns the metrics singleton, registering collectors on first use
func Get() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			HTTPRequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "splikz_http_requests_total",
					Help: "Total number of HTTP requests",
				},
				[]string{"method", "path", "status"},
			),
			HTTPRequestDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "splikz_http_request_duration_seconds",
					Help:    "HTTP request latency",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"method", "path", "status"},
			),
			FeedCompositionsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "splikz_feed_compositions_total",
					Help: "Feed compositions served, by kind",
				},
				[]string{"kind"},
			),
			FeedCompositionDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "splikz_feed_composition_duration_seconds",
					Help:    "Time spent composing a feed",
					Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1},
				},
				[]string{"kind"},
			),
			FeedWindowFailures: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "splikz_feed_window_failures_total",
					Help: "Window fetch failures, by window",
				},
				[]string{"window"},
			),
			FeedDegradedTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "splikz_feed_degraded_total",
					Help: "Compositions served from a single surviving window",
				},
				[]string{"kind"},
			),
			SeedMintsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "splikz_session_seed_mints_total",
					Help: "Session seeds minted, by feed kind",
				},
				[]string{"kind"},
			),
			SeedResetsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "splikz_session_seed_resets_total",
					Help: "Hard-reload seed resets, by feed kind",
				},
				[]string{"kind"},
			),
		}
	})
	return instance
}
