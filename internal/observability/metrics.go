package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// aggregation service.
type Metrics struct {
	SourceFetches     *prometheus.CounterVec // labels: source, outcome={success,error}
	ArticlesExtracted *prometheus.CounterVec // labels: source

	AggregationDuration prometheus.Histogram

	PollCycles        *prometheus.CounterVec   // labels: kind, outcome={loaded,errored}
	PollCycleDuration *prometheus.HistogramVec // labels: kind
	PollerRunning     prometheus.Gauge

	ResponseCache *prometheus.CounterVec // labels: route, result={hit,miss}

	SnapshotPublishes *prometheus.CounterVec // labels: outcome={success,error}
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.SourceFetches,
		m.ArticlesExtracted,
		m.AggregationDuration,
		m.PollCycles,
		m.PollCycleDuration,
		m.PollerRunning,
		m.ResponseCache,
		m.SnapshotPublishes,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		SourceFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "loz_watch",
			Name:      "source_fetches_total",
			Help:      "Upstream fetches by source and outcome.",
		}, []string{"source", "outcome"}),
		ArticlesExtracted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "loz_watch",
			Name:      "articles_extracted_total",
			Help:      "Articles extracted per source across all cycles.",
		}, []string{"source"}),
		AggregationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "loz_watch",
			Name:      "aggregation_duration_seconds",
			Help:      "Duration of a complete incident aggregation cycle.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		PollCycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "loz_watch",
			Name:      "poll_cycles_total",
			Help:      "Refresh cycles by data kind and outcome.",
		}, []string{"kind", "outcome"}),
		PollCycleDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "loz_watch",
			Name:      "poll_cycle_duration_seconds",
			Help:      "Duration of one refresh cycle per data kind.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"kind"}),
		PollerRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "loz_watch",
			Name:      "poller_running",
			Help:      "1 when the poll scheduler is active, 0 when shut down.",
		}),
		ResponseCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "loz_watch",
			Name:      "response_cache_total",
			Help:      "TTL response cache lookups by route and result.",
		}, []string{"route", "result"}),
		SnapshotPublishes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "loz_watch",
			Name:      "snapshot_publishes_total",
			Help:      "Incident snapshot publishes by outcome.",
		}, []string{"outcome"}),
	}
}
