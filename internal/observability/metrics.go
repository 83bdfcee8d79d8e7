package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the run
// preparation pipeline.
type Metrics struct {
	RequestsConsumed prometheus.Counter
	ResultsPublished prometheus.Counter
	PrepErrors       prometheus.Counter
	PipelineRunning  prometheus.Gauge

	// Preparation metrics.
	PrepDuration    prometheus.Histogram
	StationsTrimmed *prometheus.CounterVec // labels: channel, disposition={kept,dropped}
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RequestsConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "surge_prep",
			Name:      "requests_consumed_total",
			Help:      "Total preparation requests read from the request topic.",
		}),
		ResultsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "surge_prep",
			Name:      "results_published_total",
			Help:      "Total preparation results written to the result topic.",
		}),
		PrepErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "surge_prep",
			Name:      "prep_errors_total",
			Help:      "Total preparation failures.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "surge_prep",
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		PrepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "surge_prep",
			Name:      "prep_duration_seconds",
			Help:      "Duration of a complete run preparation, scan through rewrite.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		StationsTrimmed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "surge_prep",
			Name:      "stations_trimmed_total",
			Help:      "Recording stations kept or dropped by the subdomain geometry, per channel.",
		}, []string{"channel", "disposition"}),
	}

	prometheus.MustRegister(
		m.RequestsConsumed,
		m.ResultsPublished,
		m.PrepErrors,
		m.PipelineRunning,
		m.PrepDuration,
		m.StationsTrimmed,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		RequestsConsumed: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "surge_prep", Name: "requests_consumed_total"}),
		ResultsPublished: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "surge_prep", Name: "results_published_total"}),
		PrepErrors:       prometheus.NewCounter(prometheus.CounterOpts{Namespace: "surge_prep", Name: "prep_errors_total"}),
		PipelineRunning:  prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "surge_prep", Name: "pipeline_running"}),
		PrepDuration:     prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "surge_prep", Name: "prep_duration_seconds"}),
		StationsTrimmed:  prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "surge_prep", Name: "stations_trimmed_total"}, []string{"channel", "disposition"}),
	}
}
