// Package insights exposes Prometheus metrics for imports and
// comparison queries.
package insights

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// importsTotal tracks completed and failed imports per source.
	importsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "purchase_imports_total",
		Help: "Total number of imports by source and outcome",
	}, []string{"source", "outcome"})

	// importedItems tracks how many line items each import produced.
	importedItems = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "purchase_import_items_count",
		Help:    "Number of line items per import by source",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 500},
	}, []string{"source"})

	// importDuration tracks how long an import takes end to end.
	importDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "purchase_import_duration_seconds",
		Help:    "Time taken to run an import by source",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"source"})

	// fetchAttempts tracks portal fetch outcomes.
	fetchAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "purchase_portal_fetch_total",
		Help: "Total number of fiscal portal fetch attempts by outcome",
	}, []string{"outcome"})

	// comparisonDuration tracks the comparison computation time.
	comparisonDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "purchase_comparison_duration_seconds",
		Help:    "Time taken to build a price comparison",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	})

	// comparisonHistorySize tracks how many line items feed a comparison.
	comparisonHistorySize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "purchase_comparison_history_items_count",
		Help:    "Number of history line items feeding a comparison",
		Buckets: []float64{10, 50, 100, 500, 1000, 5000, 20000},
	})

	// queueDepth tracks pending tasks in the queue.
	queueDepth = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "purchase_task_queue_depth",
		Help: "Number of tasks in the queue by status",
	}, []string{"status"})
)

// MetricsRecorder provides methods to record service metrics.
type MetricsRecorder struct{}

// Metrics is the shared recorder instance.
var Metrics = &MetricsRecorder{}

// RecordImport records an import outcome.
func (m *MetricsRecorder) RecordImport(source string, duration time.Duration, itemCount int, success bool) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	importsTotal.WithLabelValues(source, outcome).Inc()
	importDuration.WithLabelValues(source).Observe(duration.Seconds())
	if success {
		importedItems.WithLabelValues(source).Observe(float64(itemCount))
	}
}

// RecordFetch records a fiscal portal fetch attempt.
func (m *MetricsRecorder) RecordFetch(success bool) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	fetchAttempts.WithLabelValues(outcome).Inc()
}

// RecordComparison records one comparison computation.
func (m *MetricsRecorder) RecordComparison(duration time.Duration, historySize int) {
	comparisonDuration.Observe(duration.Seconds())
	comparisonHistorySize.Observe(float64(historySize))
}

// SetQueueDepth records the current queue depth for a status.
func (m *MetricsRecorder) SetQueueDepth(status string, depth int) {
	queueDepth.WithLabelValues(status).Set(float64(depth))
}
