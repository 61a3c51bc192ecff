// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Simulation metrics
	SimulationsTotal   *prometheus.CounterVec
	SimulationDuration prometheus.Histogram
	SimulationTrials   prometheus.Histogram

	// Baseline metrics
	BaselineRequestsTotal *prometheus.CounterVec
	PricePreviewsTotal    prometheus.Counter

	// Database metrics
	HistoryQueryDuration prometheus.Histogram
	DBQueryErrors        *prometheus.CounterVec
	ArchiveErrors        prometheus.Counter

	// Transport metrics
	HTTPRequestDuration *prometheus.HistogramVec
	WSStreamsActive     prometheus.Gauge

	// Health metrics
	LastSuccessfulSimulation prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "commerce_whatif_lab"
	}

	return &Metrics{
		// Simulation metrics
		SimulationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "runs_total",
			Help:      "Total number of simulation runs by status",
		}, []string{"status"}),
		SimulationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "duration_seconds",
			Help:      "Simulation execution duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		SimulationTrials: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "trials",
			Help:      "Number of Monte Carlo trials per simulation run",
			Buckets:   []float64{1000, 2500, 5000, 10000, 25000, 50000},
		}),

		// Baseline metrics
		BaselineRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "baseline",
			Name:      "requests_total",
			Help:      "Total number of baseline estimations by status",
		}, []string{"status"}),
		PricePreviewsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pricing",
			Name:      "previews_total",
			Help:      "Total number of price previews computed",
		}),

		// Database metrics
		HistoryQueryDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "history_query_duration_seconds",
			Help:      "Daily history aggregation query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),
		ArchiveErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "archive_errors_total",
			Help:      "Total number of failed simulation archive writes",
		}),

		// Transport metrics
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint", "status"}),
		WSStreamsActive: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "ws_streams_active",
			Help:      "Number of active WebSocket simulation streams",
		}),

		// Health metrics
		LastSuccessfulSimulation: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_simulation_timestamp",
			Help:      "Unix timestamp of last successful simulation run",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordSimulation records a simulation run outcome.
func RecordSimulation(status string, trials int, durationSeconds float64) {
	DefaultMetrics.SimulationsTotal.WithLabelValues(status).Inc()
	if status == "ok" {
		DefaultMetrics.SimulationDuration.Observe(durationSeconds)
		DefaultMetrics.SimulationTrials.Observe(float64(trials))
	}
}

// RecordBaselineRequest records a baseline estimation outcome.
func RecordBaselineRequest(status string) {
	DefaultMetrics.BaselineRequestsTotal.WithLabelValues(status).Inc()
}

// RecordPricePreview increments the price preview counter.
func RecordPricePreview() {
	DefaultMetrics.PricePreviewsTotal.Inc()
}

// RecordHistoryQuery records a daily history query.
func RecordHistoryQuery(seconds float64, err error) {
	DefaultMetrics.HistoryQueryDuration.Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues("postgres", "daily_history").Inc()
	}
}

// RecordArchiveError increments the failed archive write counter.
func RecordArchiveError() {
	DefaultMetrics.ArchiveErrors.Inc()
	DefaultMetrics.DBQueryErrors.WithLabelValues("clickhouse", "archive_run").Inc()
}
