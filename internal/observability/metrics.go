// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application. Each
// instance carries its own registry so binaries and tests can create
// them independently.
type Metrics struct {
	registry *prometheus.Registry

	// Normalization metrics
	RecordsNormalized prometheus.Counter
	RowsDropped       prometheus.Counter

	// Ingest metrics
	ObservationsInserted prometheus.Counter
	BatchesRejected      *prometheus.CounterVec

	// Rate feed metrics
	RateFeedRequests    *prometheus.CounterVec
	RateFeedCallLatency prometheus.Histogram

	// Analysis metrics
	AnalysisRuns     *prometheus.CounterVec
	AnalysisDuration prometheus.Histogram
	OutliersDetected prometheus.Counter

	// HTTP metrics
	HTTPRequests       *prometheus.CounterVec
	HTTPRequestLatency *prometheus.HistogramVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "ratecompare"
	}

	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,

		// Normalization metrics
		RecordsNormalized: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "normalize",
			Name:      "records_total",
			Help:      "Total number of raw rows normalized into records",
		}),
		RowsDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "normalize",
			Name:      "rows_dropped_total",
			Help:      "Total number of raw rows dropped for missing store identity",
		}),

		// Ingest metrics
		ObservationsInserted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "observations_inserted_total",
			Help:      "Total number of rate observations written to storage",
		}),
		BatchesRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "batches_rejected_total",
			Help:      "Total number of observation batches rejected by reason",
		}, []string{"reason"}),

		// Rate feed metrics
		RateFeedRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ratefeed",
			Name:      "requests_total",
			Help:      "Total number of rate feed API requests by status",
		}, []string{"status"}),
		RateFeedCallLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ratefeed",
			Name:      "call_latency_seconds",
			Help:      "Rate feed API call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		// Analysis metrics
		AnalysisRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "runs_total",
			Help:      "Total number of analysis runs by status",
		}, []string{"status"}),
		AnalysisDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "duration_seconds",
			Help:      "Analysis run duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60},
		}),
		OutliersDetected: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "outliers_detected_total",
			Help:      "Total number of outlier candidates flagged",
		}),

		// HTTP metrics
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, path and status",
		}, []string{"method", "path", "status"}),
		HTTPRequestLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_latency_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}
}

// Handler returns an HTTP handler serving this instance's registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
