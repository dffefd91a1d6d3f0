// Package metrics provides Prometheus metrics for the setpoint
// reconciliation engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Score histogram buckets cover the [0,100] similarity range.
var scoreBuckets = []float64{0, 10, 20, 30, 40, 50, 60, 70, 75, 80, 85, 90, 95, 100} //nolint:gochecknoglobals // shared bucket layout

// Manager manages all Prometheus metrics for the setpoint engine.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Store Metrics - snapshot merges and persistence
	mergesTotal   prometheus.Counter
	mergeFailures prometheus.Counter
	mergeAdded    prometheus.Counter
	mergeUpdated  prometheus.Counter
	mergeRemoved  prometheus.Counter
	storeRecords  prometheus.Gauge
	backupsTotal  prometheus.Counter
	backupErrors  prometheus.Counter
	backupsPruned prometheus.Counter

	// Matching Metrics - resolution quality
	matchAttempts   prometheus.Counter
	matchScores     prometheus.Histogram
	matchResolved   prometheus.Counter
	matchNearMisses prometheus.Counter
	matchUnresolved *prometheus.CounterVec

	// Enrichment Metrics - per-record completeness
	enrichOutcomes *prometheus.CounterVec
	fieldsInjected prometheus.Counter
	oddsInjected   prometheus.Counter
	oddsMissing    prometheus.Counter

	// Pass Metrics - batch pass timings
	passDuration *prometheus.HistogramVec

	// Cache Metrics
	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter
	cacheSize   prometheus.Gauge

	// Pipeline Metrics - enrichment fan-out
	queueSize     prometheus.Gauge
	queueCapacity prometheus.Gauge
	queueErrors   prometheus.Counter
	workerActive  prometheus.Gauge
	workerLatency prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// Registry exposes the registry backing the global manager so that a
// caller can mount it on an HTTP handler.
func Registry() *prometheus.Registry {
	return customRegistry
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "setpoint",
		subsystem:        "engine",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // metric registration is inherently long
	auto := promauto.With(m.registry)

	// Store Metrics
	m.mergesTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "merges_total",
		Help:      "Total number of snapshot merges applied to the store",
	})
	m.mergeFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "merge_failures_total",
		Help:      "Total number of snapshot merges aborted by validation",
	})
	m.mergeAdded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "merge_added_keys_total",
		Help:      "Total number of keys added across all merges",
	})
	m.mergeUpdated = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "merge_updated_keys_total",
		Help:      "Total number of keys updated across all merges",
	})
	m.mergeRemoved = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "merge_removed_keys_total",
		Help:      "Total number of keys reported absent from a snapshot (retained)",
	})
	m.storeRecords = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_records",
		Help:      "Current number of records in the keyed store",
	})
	m.backupsTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "backups_total",
		Help:      "Total number of point-in-time store backups written",
	})
	m.backupErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "backup_errors_total",
		Help:      "Total number of failed backup writes",
	})
	m.backupsPruned = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "backups_pruned_total",
		Help:      "Total number of backups removed by retention",
	})

	// Matching Metrics
	m.matchAttempts = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "match_attempts_total",
		Help:      "Total number of candidate match attempts",
	})
	m.matchScores = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "match_best_score",
		Help:      "Histogram of best candidate scores per attempt",
		Buckets:   scoreBuckets,
	})
	m.matchResolved = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "match_resolved_total",
		Help:      "Total number of queries resolved to a reference record",
	})
	m.matchNearMisses = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "match_near_misses_total",
		Help:      "Candidates that cleared the score threshold but failed a constraint",
	})
	m.matchUnresolved = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "match_unresolved_total",
			Help:      "Unresolved queries by reason",
		},
		[]string{"reason"},
	)

	// Enrichment Metrics
	m.enrichOutcomes = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "enrichment_outcomes_total",
			Help:      "Per-record enrichment outcomes by classification",
		},
		[]string{"outcome"},
	)
	m.fieldsInjected = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fields_injected_total",
		Help:      "Total number of slot-qualified fields written by enrichment",
	})
	m.oddsInjected = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "odds_injected_total",
		Help:      "Records that received odds from a matched fixture",
	})
	m.oddsMissing = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "odds_missing_total",
		Help:      "Fixture matches found whose odds were absent",
	})

	// Pass Metrics
	m.passDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "pass_duration_milliseconds",
			Help:      "Duration of batch passes in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"pass"},
	)

	// Cache Metrics
	m.cacheHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_hits_total",
		Help:      "Resolution cache hits",
	})
	m.cacheMisses = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_misses_total",
		Help:      "Resolution cache misses",
	})
	m.cacheSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_size",
		Help:      "Current number of cached resolutions",
	})

	// Pipeline Metrics
	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_size",
		Help:      "Current size of the enrichment work queue",
	})
	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_capacity",
		Help:      "Configured capacity of the enrichment work queue",
	})
	m.queueErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueue_errors_total",
		Help:      "Enqueue attempts rejected by the work queue",
	})
	m.workerActive = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_active",
		Help:      "Current number of running enrichment workers",
	})
	m.workerLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_processing_latency_milliseconds",
		Help:      "Per-record processing latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})
}

// Package-level helpers on the global manager.

// RecordMerge records one applied merge and its delta sizes.
func RecordMerge(added, updated, removed int) {
	globalManager.mergesTotal.Inc()
	globalManager.mergeAdded.Add(float64(added))
	globalManager.mergeUpdated.Add(float64(updated))
	globalManager.mergeRemoved.Add(float64(removed))
}

// RecordMergeFailure records a merge aborted by validation.
func RecordMergeFailure() {
	globalManager.mergeFailures.Inc()
}

// UpdateStoreRecords sets the current store size.
func UpdateStoreRecords(count int) {
	globalManager.storeRecords.Set(float64(count))
}

// RecordBackupCreated records a successful point-in-time backup.
func RecordBackupCreated() {
	globalManager.backupsTotal.Inc()
}

// RecordBackupError records a failed backup write.
func RecordBackupError() {
	globalManager.backupErrors.Inc()
}

// RecordBackupsPruned records backups removed by the retention policy.
func RecordBackupsPruned(count int) {
	globalManager.backupsPruned.Add(float64(count))
}

// RecordMatchAttempt records one candidate match attempt.
func RecordMatchAttempt() {
	globalManager.matchAttempts.Inc()
}

// RecordMatchScore records the best candidate score of an attempt.
func RecordMatchScore(score int) {
	globalManager.matchScores.Observe(float64(score))
}

// RecordMatchResolved records a successful resolution.
func RecordMatchResolved() {
	globalManager.matchResolved.Inc()
}

// RecordMatchNearMiss records a constraint rejection above the threshold.
func RecordMatchNearMiss() {
	globalManager.matchNearMisses.Inc()
}

// RecordMatchUnresolved records an unresolved query by reason.
func RecordMatchUnresolved(reason string) {
	globalManager.matchUnresolved.WithLabelValues(reason).Inc()
}

// RecordEnrichmentOutcome records a per-record outcome classification.
func RecordEnrichmentOutcome(outcome string) {
	globalManager.enrichOutcomes.WithLabelValues(outcome).Inc()
}

// RecordFieldInjected records one slot-qualified field write.
func RecordFieldInjected() {
	globalManager.fieldsInjected.Inc()
}

// RecordOddsInjected records a record that received fixture odds.
func RecordOddsInjected() {
	globalManager.oddsInjected.Inc()
}

// RecordOddsMissing records a fixture match whose odds were absent.
func RecordOddsMissing() {
	globalManager.oddsMissing.Inc()
}

// RecordPassDuration records the duration of a named batch pass.
func RecordPassDuration(pass string, ms float64) {
	globalManager.passDuration.WithLabelValues(pass).Observe(ms)
}

// RecordCacheHit records a resolution cache hit.
func RecordCacheHit() {
	globalManager.cacheHits.Inc()
}

// RecordCacheMiss records a resolution cache miss.
func RecordCacheMiss() {
	globalManager.cacheMisses.Inc()
}

// UpdateCacheSize sets the current cache size.
func UpdateCacheSize(size int) {
	globalManager.cacheSize.Set(float64(size))
}

// UpdateQueueSize sets the current work queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the configured work queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueueError records a rejected enqueue.
func RecordQueueEnqueueError() {
	globalManager.queueErrors.Inc()
}

// UpdateWorkerActive sets the current number of running workers.
func UpdateWorkerActive(count int) {
	globalManager.workerActive.Set(float64(count))
}

// RecordWorkerLatency records per-record processing latency.
func RecordWorkerLatency(ms float64) {
	globalManager.workerLatency.Observe(ms)
}
