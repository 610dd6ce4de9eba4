package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus metric of the pipeline.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Source loading
	sourceFiles        *prometheus.CounterVec
	sourceLoadDuration prometheus.Histogram

	// Normalization
	rowsIngested  prometheus.Counter
	rowsRejected  *prometheus.CounterVec
	rowsCollapsed prometheus.Counter
	sessions      prometheus.Gauge

	// Metrics engine
	metricUnavailable *prometheus.CounterVec
	tssMethod         *prometheus.CounterVec

	// Trend and recovery, latest day
	ctl      prometheus.Gauge
	atl      prometheus.Gauge
	tsb      prometheus.Gauge
	recovery prometheus.Gauge

	// Runs
	runs        *prometheus.CounterVec
	runDuration prometheus.Histogram
	lastRunUnix prometheus.Gauge

	// Snapshot store and exports
	snapshotDuration prometheus.Histogram
	snapshotCount    prometheus.Counter
	exportRows       *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	reportCache         *prometheus.CounterVec

	errorsByComponent *prometheus.CounterVec
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager. Metrics go to the default registerer
// unless WithPrometheusRegistry is given.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "trainlog",
		subsystem:        "pipeline",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		ConstLabels: m.constLabels, Buckets: m.histogramBuckets,
	}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every metric
	auto := promauto.With(m.registry)

	m.sourceFiles = auto.NewCounterVec(m.counterOpts("source_files_total",
		"Source files read, by format and outcome"), []string{"format", "status"})
	m.sourceLoadDuration = auto.NewHistogram(m.histogramOpts("source_load_duration_milliseconds",
		"Time to read all sources of a run"))

	m.rowsIngested = auto.NewCounter(m.counterOpts("rows_ingested_total",
		"Raw rows read across all sources"))
	m.rowsRejected = auto.NewCounterVec(m.counterOpts("rows_rejected_total",
		"Rows skipped for data integrity problems, by offending field"), []string{"field"})
	m.rowsCollapsed = auto.NewCounter(m.counterOpts("rows_collapsed_total",
		"Rows folded into an existing (date, activity) session"))
	m.sessions = auto.NewGauge(m.gaugeOpts("sessions",
		"Normalized sessions in the latest run"))

	m.metricUnavailable = auto.NewCounterVec(m.counterOpts("metric_unavailable_total",
		"Session metrics that could not be computed, by metric"), []string{"metric"})
	m.tssMethod = auto.NewCounterVec(m.counterOpts("tss_method_total",
		"Sessions by the method that produced their TSS"), []string{"method"})

	m.ctl = auto.NewGauge(m.gaugeOpts("ctl", "Chronic training load on the latest day"))
	m.atl = auto.NewGauge(m.gaugeOpts("atl", "Acute training load on the latest day"))
	m.tsb = auto.NewGauge(m.gaugeOpts("tsb", "Training stress balance on the latest day"))
	m.recovery = auto.NewGauge(m.gaugeOpts("recovery_score", "Recovery score on the latest day"))

	m.runs = auto.NewCounterVec(m.counterOpts("runs_total",
		"Pipeline runs by outcome"), []string{"status"})
	m.runDuration = auto.NewHistogram(m.histogramOpts("run_duration_milliseconds",
		"End-to-end pipeline run duration"))
	m.lastRunUnix = auto.NewGauge(m.gaugeOpts("last_run_unix",
		"Unix time of the last successful run"))

	m.snapshotDuration = auto.NewHistogram(m.histogramOpts("snapshot_duration_milliseconds",
		"Time to persist a run snapshot"))
	m.snapshotCount = auto.NewCounter(m.counterOpts("snapshots_total",
		"Run snapshots persisted"))
	m.exportRows = auto.NewCounterVec(m.counterOpts("export_rows_total",
		"Rows written by exporters, by format"), []string{"format"})

	m.httpRequests = auto.NewCounterVec(m.counterOpts("http_requests_total",
		"HTTP requests by endpoint, method and status"), []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts("http_request_duration_milliseconds",
		"HTTP request duration"), []string{"endpoint", "method", "status_code"})
	m.reportCache = auto.NewCounterVec(m.counterOpts("report_cache_total",
		"Report body lookups by result"), []string{"result"})

	m.errorsByComponent = auto.NewCounterVec(m.counterOpts("errors_by_component_total",
		"Errors by component and kind"), []string{"component", "error_type"})
}

// RecordSourceFile counts one source file read.
func (m *Manager) RecordSourceFile(format, status string) {
	m.sourceFiles.WithLabelValues(format, status).Inc()
}

// RecordSourceLoadDuration records how long loading took.
func (m *Manager) RecordSourceLoadDuration(d time.Duration) {
	m.sourceLoadDuration.Observe(ms(d))
}

// RecordNormalization records the outcome of a normalization pass.
func (m *Manager) RecordNormalization(rows, sessions, collapsed int) {
	m.rowsIngested.Add(float64(rows))
	m.rowsCollapsed.Add(float64(collapsed))
	m.sessions.Set(float64(sessions))
}

// RecordRowRejected counts one skipped row.
func (m *Manager) RecordRowRejected(field string) {
	m.rowsRejected.WithLabelValues(field).Inc()
}

// RecordMetricUnavailable counts one metric that could not be computed.
func (m *Manager) RecordMetricUnavailable(metric string) {
	m.metricUnavailable.WithLabelValues(metric).Inc()
}

// RecordTSSMethod counts the method that produced a session's TSS.
func (m *Manager) RecordTSSMethod(method string) {
	m.tssMethod.WithLabelValues(method).Inc()
}

// UpdateFitness sets the latest-day trend and recovery gauges.
func (m *Manager) UpdateFitness(ctl, atl, tsb, recovery float64) {
	m.ctl.Set(ctl)
	m.atl.Set(atl)
	m.tsb.Set(tsb)
	m.recovery.Set(recovery)
}

// RecordRun counts a run and, when it succeeded, its duration.
func (m *Manager) RecordRun(status string, d time.Duration) {
	m.runs.WithLabelValues(status).Inc()
	if status == StatusOK {
		m.runDuration.Observe(ms(d))
		m.lastRunUnix.Set(float64(time.Now().Unix()))
	}
}

// RecordSnapshot records one persisted snapshot.
func (m *Manager) RecordSnapshot(d time.Duration) {
	m.snapshotDuration.Observe(ms(d))
	m.snapshotCount.Inc()
}

// RecordExportRows counts exported rows.
func (m *Manager) RecordExportRows(format string, n int) {
	m.exportRows.WithLabelValues(format).Add(float64(n))
}

// RecordHTTPRequest records one served request.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string, d time.Duration) {
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(ms(d))
}

// RecordReportCache counts one report body lookup.
func (m *Manager) RecordReportCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.reportCache.WithLabelValues(result).Inc()
}

// RecordError counts an error by component and kind.
func (m *Manager) RecordError(component, errorType string) {
	m.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// Run outcomes.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

func ms(d time.Duration) float64 { return float64(d) / float64(time.Millisecond) }

// Global helpers record on the process-wide manager.

// Default returns the process-wide manager.
func Default() *Manager { return globalManager }

// RecordSourceFile counts a source file on the global manager.
func RecordSourceFile(format, status string) { globalManager.RecordSourceFile(format, status) }

// RecordSourceLoadDuration records load time on the global manager.
func RecordSourceLoadDuration(d time.Duration) { globalManager.RecordSourceLoadDuration(d) }

// RecordNormalization records a normalization pass on the global manager.
func RecordNormalization(rows, sessions, collapsed int) {
	globalManager.RecordNormalization(rows, sessions, collapsed)
}

// RecordRowRejected counts a rejected row on the global manager.
func RecordRowRejected(field string) { globalManager.RecordRowRejected(field) }

// RecordMetricUnavailable counts an unavailable metric on the global manager.
func RecordMetricUnavailable(metric string) { globalManager.RecordMetricUnavailable(metric) }

// RecordTSSMethod counts a TSS method on the global manager.
func RecordTSSMethod(method string) { globalManager.RecordTSSMethod(method) }

// UpdateFitness sets trend gauges on the global manager.
func UpdateFitness(ctl, atl, tsb, recovery float64) {
	globalManager.UpdateFitness(ctl, atl, tsb, recovery)
}

// RecordRun counts a run on the global manager.
func RecordRun(status string, d time.Duration) { globalManager.RecordRun(status, d) }

// RecordSnapshot records a snapshot on the global manager.
func RecordSnapshot(d time.Duration) { globalManager.RecordSnapshot(d) }

// RecordExportRows counts exported rows on the global manager.
func RecordExportRows(format string, n int) { globalManager.RecordExportRows(format, n) }

// RecordHTTPRequest records a request on the global manager.
func RecordHTTPRequest(endpoint, method, statusCode string, d time.Duration) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode, d)
}

// RecordReportCache counts a report lookup on the global manager.
func RecordReportCache(hit bool) { globalManager.RecordReportCache(hit) }

// RecordError counts an error on the global manager.
func RecordError(component, errorType string) { globalManager.RecordError(component, errorType) }

// GetRegistry returns the custom registry behind the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
