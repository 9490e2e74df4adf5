// Package metrics provides Prometheus metrics for the formcheck analyzer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the analyzer.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	scoreBuckets     []float64
	registry         prometheus.Registerer

	// Analysis metrics
	analyses           *prometheus.CounterVec
	overallScore       *prometheus.HistogramVec
	angleChecks        *prometheus.CounterVec
	missingLandmarks   *prometheus.CounterVec
	scoringLatency     prometheus.Histogram
	progressionUnlocks prometheus.Counter
	elaborationFallbck prometheus.Counter

	// Upstream collaborators (pose sidecar, text model)
	upstreamLatency *prometheus.HistogramVec
	upstreamErrors  *prometheus.CounterVec

	// Job metrics
	jobsStored           prometheus.Gauge
	duplicateSubmissions prometheus.Counter

	// Queue metrics
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueueRate   prometheus.Counter
	queueDequeueRate   prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Worker metrics
	workerCount             prometheus.Gauge
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrorRate         prometheus.Counter

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error metrics
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
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
		namespace:        "formcheck",
		subsystem:        "analyzer",
		histogramBuckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
		scoreBuckets:     []float64{10, 20, 30, 40, 50, 60, 65, 70, 80, 90, 100},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
	})
}

func (m *Manager) histogram(name, help string) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
		Buckets:   m.histogramBuckets,
	})
}

func (m *Manager) histogramVec(name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
		Buckets:   buckets,
	}, labels)
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	m.analyses = m.counterVec("analyses_total", "Total number of analyses by skill and outcome", "skill", "outcome")
	m.overallScore = m.histogramVec("overall_score", "Distribution of overall skill scores", m.scoreBuckets, "skill")
	m.angleChecks = m.counterVec("angle_checks_total", "Total number of angle checks by skill and status", "skill", "status")
	m.missingLandmarks = m.counterVec("missing_landmarks_total", "Total number of landmarks required by a check but not detected", "landmark")
	m.scoringLatency = m.histogram("scoring_latency_milliseconds", "Histogram of end-to-end analysis latency in milliseconds")
	m.progressionUnlocks = m.counter("progression_unlocks_total", "Total number of skills unlocked by a passing attempt")
	m.elaborationFallbck = m.counter("elaboration_fallbacks_total", "Total number of analyses that fell back to the plain summary")

	m.upstreamLatency = m.histogramVec("upstream_latency_milliseconds", "Latency of calls to upstream collaborators", m.histogramBuckets, "component")
	m.upstreamErrors = m.counterVec("upstream_errors_total", "Total number of upstream failures by component and kind", "component", "kind")

	m.jobsStored = m.gauge("jobs_stored", "Number of analysis jobs currently retained")
	m.duplicateSubmissions = m.counter("duplicate_submissions_total", "Total number of submissions answered from an idempotency key")

	m.queueSize = m.gauge("queue_size", "Current size of the job queue (backlog indicator)")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum queue capacity")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Queue utilization ratio (current size / capacity)")
	m.queueEnqueueRate = m.counter("queue_enqueue_total", "Total number of jobs enqueued")
	m.queueDequeueRate = m.counter("queue_dequeue_total", "Total number of jobs dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Total number of enqueue errors")

	m.workerCount = m.gauge("worker_count", "Configured number of workers")
	m.workerActiveCount = m.gauge("worker_active_count", "Number of workers currently running a job")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds", "Worker processing latency in milliseconds")
	m.workerErrorRate = m.counter("worker_errors_total", "Total number of failed jobs")

	m.httpRequests = m.counterVec("http_requests_total", "Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets, "endpoint", "method", "status_code")

	m.errorRateByComponent = m.counterVec("errors_by_component_total", "Total number of errors by component", "component", "error_type")
	m.errorRateByType = m.counterVec("errors_by_type_total", "Total number of errors by type", "error_type", "severity")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total", "Total number of errors by endpoint", "endpoint", "method", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
}

// RecordAnalysis counts one analysis with its outcome
// (passed, failed, not_implemented, no_pose, error).
func RecordAnalysis(skill, outcome string) {
	globalManager.analyses.WithLabelValues(skill, outcome).Inc()
}

// RecordOverallScore observes the overall score of a report.
func RecordOverallScore(skill string, score float64) {
	globalManager.overallScore.WithLabelValues(skill).Observe(score)
}

// RecordAngleCheck counts one evaluated angle check.
func RecordAngleCheck(skill, status string) {
	globalManager.angleChecks.WithLabelValues(skill, status).Inc()
}

// RecordMissingLandmark counts a landmark a check needed but did not get.
func RecordMissingLandmark(landmark string) {
	globalManager.missingLandmarks.WithLabelValues(landmark).Inc()
}

// RecordScoringLatency records analysis latency in milliseconds.
func RecordScoringLatency(latencyMs float64) {
	globalManager.scoringLatency.Observe(latencyMs)
}

// RecordProgressionUnlock increments the unlock counter.
func RecordProgressionUnlock() {
	globalManager.progressionUnlocks.Inc()
}

// RecordElaborationFallback increments the elaboration fallback counter.
func RecordElaborationFallback() {
	globalManager.elaborationFallbck.Inc()
}

// RecordUpstreamLatency records the latency of one upstream call, retries included.
func RecordUpstreamLatency(component string, latencyMs float64) {
	globalManager.upstreamLatency.WithLabelValues(component).Observe(latencyMs)
}

// RecordUpstreamError counts a failed upstream call.
func RecordUpstreamError(component, kind string) {
	globalManager.upstreamErrors.WithLabelValues(component, kind).Inc()
}

// UpdateJobsStored sets the number of retained jobs.
func UpdateJobsStored(count int) {
	globalManager.jobsStored.Set(float64(count))
}

// RecordDuplicateSubmission increments the idempotent replay counter.
func RecordDuplicateSubmission() {
	globalManager.duplicateSubmissions.Inc()
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueueRate.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeueRate.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// UpdateWorkerCount sets the configured worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// AddWorkerActive adjusts the number of busy workers by delta.
func AddWorkerActive(delta int) {
	globalManager.workerActiveCount.Add(float64(delta))
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrorRate.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
