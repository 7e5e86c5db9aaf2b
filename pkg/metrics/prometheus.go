// Package metrics provides Prometheus metrics for the GoodRec ingestion jobs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the ingestion jobs.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Source Metrics - One ingestion source per label value
	sourceEventsFetched *prometheus.CounterVec
	sourceErrors        *prometheus.CounterVec
	sourceFetchDuration *prometheus.HistogramVec
	sourcePagesScraped  *prometheus.CounterVec

	// Pipeline Metrics - Normalization and aggregation outcomes
	eventsNormalized prometheus.Counter
	eventsDropped    *prometheus.CounterVec
	eventsDuplicate  prometheus.Counter

	// Snapshot Metrics - Destructive publish of the events collection
	snapshotSize          prometheus.Gauge
	snapshotPublishes     prometheus.Counter
	snapshotSkips         prometheus.Counter
	snapshotDuration      prometheus.Histogram
	snapshotLastUnix      prometheus.Gauge
	snapshotLastSizeGauge prometheus.Gauge

	// Restaurant Metrics - Upsert-based enrichment collection
	restaurantsUpserted prometheus.Counter
	restaurantsModified prometheus.Counter
	restaurantsPurged   prometheus.Counter

	// Catalog Metrics - Filter artifact extraction
	catalogCategories prometheus.Gauge
	catalogKeywords   prometheus.Gauge
	catalogWrites     prometheus.Counter

	// Run Metrics - Whole-job timings and outcomes
	runDuration prometheus.Histogram
	runCount    *prometheus.CounterVec

	// Enhanced Error Metrics - Detailed error tracking
	errorRateByComponent *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "goodrec",
		subsystem:        "ingest",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	// Initialize metrics
	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)

	// Source Metrics - Per-source fetch outcomes
	m.sourceEventsFetched = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "source_events_fetched_total",
			Help:      "Total number of raw events fetched, by source",
		},
		[]string{"source"},
	)

	m.sourceErrors = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "source_errors_total",
			Help:      "Total number of source fetch failures, by source",
		},
		[]string{"source"},
	)

	m.sourceFetchDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "source_fetch_duration_seconds",
			Help:      "Duration of a full source fetch in seconds, by source",
			Buckets:   m.histogramBuckets,
		},
		[]string{"source"},
	)

	m.sourcePagesScraped = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "source_pages_scraped_total",
			Help:      "Total number of listing pages scraped, by source",
		},
		[]string{"source"},
	)

	// Pipeline Metrics - Normalization and aggregation outcomes
	m.eventsNormalized = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_normalized_total",
		Help:      "Total number of raw events normalized into canonical form",
	})

	m.eventsDropped = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "events_dropped_total",
			Help:      "Total number of events dropped during normalization, by reason",
		},
		[]string{"reason"},
	)

	m.eventsDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_duplicate_total",
		Help:      "Total number of duplicate events discarded during aggregation",
	})

	// Snapshot Metrics - Destructive publish of the events collection
	m.snapshotSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshot_size",
		Help:      "Number of events in the most recent published snapshot",
	})

	m.snapshotPublishes = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshot_publishes_total",
		Help:      "Total number of snapshot publishes",
	})

	m.snapshotSkips = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshot_skips_total",
		Help:      "Total number of publishes skipped because the aggregate was empty",
	})

	m.snapshotDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshot_publish_duration_seconds",
		Help:      "Duration of the wipe-and-insert snapshot publish in seconds",
		Buckets:   m.histogramBuckets,
	})

	m.snapshotLastUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshot_last_unix",
		Help:      "Unix timestamp of the last snapshot publish",
	})

	m.snapshotLastSizeGauge = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshot_last_insert_count",
		Help:      "Number of documents inserted by the last snapshot publish",
	})

	// Restaurant Metrics - Upsert-based enrichment collection
	m.restaurantsUpserted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "restaurants_upserted_total",
		Help:      "Total number of restaurant events inserted via upsert",
	})

	m.restaurantsModified = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "restaurants_modified_total",
		Help:      "Total number of restaurant events refreshed in place",
	})

	m.restaurantsPurged = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "restaurants_purged_total",
		Help:      "Total number of stale restaurant events deleted",
	})

	// Catalog Metrics - Filter artifact extraction
	m.catalogCategories = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "catalog_categories",
		Help:      "Number of event categories matched in the last extraction",
	})

	m.catalogKeywords = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "catalog_keywords",
		Help:      "Number of keywords retained in the last extraction",
	})

	m.catalogWrites = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "catalog_writes_total",
		Help:      "Total number of filter artifact files written",
	})

	// Run Metrics - Whole-job timings and outcomes
	m.runDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "run_duration_seconds",
		Help:      "Duration of a full ingestion run in seconds",
		Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
	})

	m.runCount = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "runs_total",
			Help:      "Total number of ingestion runs, by outcome",
		},
		[]string{"outcome"},
	)

	// Enhanced Error Metrics - Detailed error tracking
	m.errorRateByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_component_total",
			Help:      "Total number of errors by component",
		},
		[]string{"component", "error_type"},
	)
}

// Source Metrics Functions.

// RecordSourceEvents adds to the fetched-events counter for a source.
func RecordSourceEvents(source string, count int) {
	globalManager.sourceEventsFetched.WithLabelValues(source).Add(float64(count))
}

// RecordSourceError increments the fetch-failure counter for a source.
func RecordSourceError(source string) {
	globalManager.sourceErrors.WithLabelValues(source).Inc()
}

// RecordSourceFetchDuration records the duration of a full source fetch.
func RecordSourceFetchDuration(source string, seconds float64) {
	globalManager.sourceFetchDuration.WithLabelValues(source).Observe(seconds)
}

// RecordPageScraped increments the scraped-pages counter for a source.
func RecordPageScraped(source string) {
	globalManager.sourcePagesScraped.WithLabelValues(source).Inc()
}

// Pipeline Metrics Functions.

// RecordEventNormalized increments the normalized-events counter.
func RecordEventNormalized() {
	globalManager.eventsNormalized.Inc()
}

// RecordEventDropped increments the dropped-events counter for a reason.
func RecordEventDropped(reason string) {
	globalManager.eventsDropped.WithLabelValues(reason).Inc()
}

// RecordEventDuplicate increments the duplicate events counter.
func RecordEventDuplicate() {
	globalManager.eventsDuplicate.Inc()
}

// Snapshot Metrics Functions.

// UpdateSnapshotSize sets the size of the most recent snapshot.
func UpdateSnapshotSize(size int) {
	globalManager.snapshotSize.Set(float64(size))
	globalManager.snapshotLastSizeGauge.Set(float64(size))
}

// RecordSnapshotPublish increments the publish counter and stamps the publish time.
func RecordSnapshotPublish(duration time.Duration) {
	globalManager.snapshotPublishes.Inc()
	globalManager.snapshotDuration.Observe(duration.Seconds())
	globalManager.snapshotLastUnix.Set(float64(time.Now().Unix()))
}

// RecordSnapshotSkip increments the skipped-publish counter.
func RecordSnapshotSkip() {
	globalManager.snapshotSkips.Inc()
}

// Restaurant Metrics Functions.

// RecordRestaurantsUpserted adds to the inserted-restaurants counter.
func RecordRestaurantsUpserted(count int) {
	globalManager.restaurantsUpserted.Add(float64(count))
}

// RecordRestaurantsModified adds to the refreshed-restaurants counter.
func RecordRestaurantsModified(count int) {
	globalManager.restaurantsModified.Add(float64(count))
}

// RecordRestaurantsPurged adds to the purged-restaurants counter.
func RecordRestaurantsPurged(count int) {
	globalManager.restaurantsPurged.Add(float64(count))
}

// Catalog Metrics Functions.

// UpdateCatalogCategories sets the matched-category count from the last extraction.
func UpdateCatalogCategories(count int) {
	globalManager.catalogCategories.Set(float64(count))
}

// UpdateCatalogKeywords sets the retained-keyword count from the last extraction.
func UpdateCatalogKeywords(count int) {
	globalManager.catalogKeywords.Set(float64(count))
}

// RecordCatalogWrite increments the artifact-write counter.
func RecordCatalogWrite() {
	globalManager.catalogWrites.Inc()
}

// Run Metrics Functions.

// RecordRunDuration records the duration of a full ingestion run.
func RecordRunDuration(d time.Duration) {
	globalManager.runDuration.Observe(d.Seconds())
}

// RecordRun increments the run counter for an outcome ("ok", "dry_run", "error").
func RecordRun(outcome string) {
	globalManager.runCount.WithLabelValues(outcome).Inc()
}

// Enhanced Error Metrics Functions.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
