// Package metrics provides Prometheus metrics for evalsync runs.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Remote operation result labels.
const (
	ResultOK       = "ok"
	ResultNotFound = "not_found"
	ResultError    = "error"
)

// Manager manages all Prometheus metrics for evalsync.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Document level
	documentsAccepted  *prometheus.CounterVec
	documentsDuplicate *prometheus.CounterVec
	documentsInvalid   *prometheus.CounterVec

	// Batch level
	batchRows     *prometheus.GaugeVec
	mergeDuration *prometheus.HistogramVec

	// Run level
	leaderboardsChanged   prometheus.Gauge
	leaderboardsConverted prometheus.Counter
	leaderboardsFailed    prometheus.Counter
	runsTotal             *prometheus.CounterVec

	// Remote store
	remoteOperations *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "evalsync",
		subsystem:        "sync",
		histogramBuckets: prometheus.DefBuckets,
		constLabels:      make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.constLabels)

	m.documentsAccepted = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "documents_accepted_total",
		Help:        "Documents appended to a batch as new rows",
		ConstLabels: labels,
	}, []string{"leaderboard"})

	m.documentsDuplicate = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "documents_duplicate_total",
		Help:        "Documents skipped because their identity key was already present",
		ConstLabels: labels,
	}, []string{"leaderboard"})

	m.documentsInvalid = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "documents_invalid_total",
		Help:        "Documents rejected by validation or parsing",
		ConstLabels: labels,
	}, []string{"leaderboard"})

	m.batchRows = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "batch_rows",
		Help:        "Rows in the most recently persisted batch",
		ConstLabels: labels,
	}, []string{"leaderboard"})

	m.mergeDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "merge_duration_seconds",
		Help:        "Time spent merging documents into one batch",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	}, []string{"leaderboard"})

	m.leaderboardsChanged = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "leaderboards_changed",
		Help:        "Leaderboards detected as changed in the last run",
		ConstLabels: labels,
	})

	m.leaderboardsConverted = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "leaderboards_converted_total",
		Help:        "Leaderboards whose batch was rebuilt successfully",
		ConstLabels: labels,
	})

	m.leaderboardsFailed = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "leaderboards_failed_total",
		Help:        "Leaderboards whose conversion failed",
		ConstLabels: labels,
	})

	m.runsTotal = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "runs_total",
		Help:        "Sync runs by terminal status",
		ConstLabels: labels,
	}, []string{"status"})

	m.remoteOperations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "remote_operations_total",
		Help:        "Remote batch store operations by backend, operation and result",
		ConstLabels: labels,
	}, []string{"backend", "op", "result"})
}

// RecordDocumentAccepted increments the accepted documents counter.
func RecordDocumentAccepted(leaderboard string) {
	globalManager.documentsAccepted.WithLabelValues(leaderboard).Inc()
}

// RecordDocumentDuplicate increments the duplicate documents counter.
func RecordDocumentDuplicate(leaderboard string) {
	globalManager.documentsDuplicate.WithLabelValues(leaderboard).Inc()
}

// RecordDocumentInvalid increments the invalid documents counter.
func RecordDocumentInvalid(leaderboard string) {
	globalManager.documentsInvalid.WithLabelValues(leaderboard).Inc()
}

// UpdateBatchRows sets the row count of a persisted batch.
func UpdateBatchRows(leaderboard string, rows int) {
	globalManager.batchRows.WithLabelValues(leaderboard).Set(float64(rows))
}

// ObserveMergeDuration records merge duration in seconds.
func ObserveMergeDuration(leaderboard string, seconds float64) {
	globalManager.mergeDuration.WithLabelValues(leaderboard).Observe(seconds)
}

// UpdateLeaderboardsChanged sets the number of changed leaderboards.
func UpdateLeaderboardsChanged(count int) {
	globalManager.leaderboardsChanged.Set(float64(count))
}

// RecordLeaderboardConverted increments the converted leaderboards counter.
func RecordLeaderboardConverted() {
	globalManager.leaderboardsConverted.Inc()
}

// RecordLeaderboardFailed increments the failed leaderboards counter.
func RecordLeaderboardFailed() {
	globalManager.leaderboardsFailed.Inc()
}

// RecordRun increments the run counter for a terminal status.
func RecordRun(status string) {
	globalManager.runsTotal.WithLabelValues(status).Inc()
}

// RecordRemoteOperation records one remote store call.
func RecordRemoteOperation(backend, op, result string) {
	globalManager.remoteOperations.WithLabelValues(backend, op, result).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// WriteTextfile writes the current metrics in the text exposition format,
// suitable for the node exporter textfile collector.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, customRegistry); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	return nil
}
