// Package metrics provides Prometheus metrics for the sugarsignal inference service.
package metrics

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Inference
	predictions        *prometheus.CounterVec
	inferenceLatency   prometheus.Histogram
	inferenceErrors    prometheus.Counter
	validationFailures *prometheus.CounterVec

	// Prediction cache
	cacheHits    prometheus.Counter
	cacheMisses  prometheus.Counter
	cacheEntries prometheus.Gauge

	// Model artifact
	modelLoaded       prometheus.Gauge
	modelLoadDuration prometheus.Gauge
	modelInfo         *prometheus.GaugeVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByType     *prometheus.CounterVec
	errorRateByEndpoint *prometheus.CounterVec
	errorLatency        *prometheus.HistogramVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// Defaults applied by NewManager and Configure.
const (
	DefaultNamespace = "sugarsignal"
	DefaultSubsystem = "inference"
)

// variableLabels are the label names used by the metric vectors, plus the
// histogram bucket label. Constant labels must not reuse them.
var variableLabels = []string{ //nolint:gochecknoglobals // fixed label set
	"label", "field", "kind", "digest", "endpoint", "method", "status_code",
	"error_type", "severity", "component", "le",
}

var metricNamePart = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`) //nolint:gochecknoglobals // compiled once

func newManager(opts []Option) *Manager {
	m := &Manager{
		namespace:        DefaultNamespace,
		subsystem:        DefaultSubsystem,
		histogramBuckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := newManager(opts)
	m.initializeMetrics()
	return m
}

// Configure replaces the global manager with one built from opts on a fresh
// custom registry. Call it before any handler captures GetRegistry.
func Configure(opts ...Option) error {
	registry := prometheus.NewRegistry()
	m := newManager(append(slices.Clip(opts), WithPrometheusRegistry(registry)))
	if err := m.validate(); err != nil {
		return err
	}
	m.initializeMetrics()

	customRegistry = registry
	globalManager = m
	return nil
}

// validate catches settings that would make metric registration panic.
func (m *Manager) validate() error {
	if !metricNamePart.MatchString(m.namespace) {
		return fmt.Errorf("%w: namespace %q", ErrInvalidOption, m.namespace)
	}
	if !metricNamePart.MatchString(m.subsystem) {
		return fmt.Errorf("%w: subsystem %q", ErrInvalidOption, m.subsystem)
	}
	for i := 1; i < len(m.histogramBuckets); i++ {
		if m.histogramBuckets[i] <= m.histogramBuckets[i-1] {
			return fmt.Errorf("%w: histogram buckets must be strictly increasing", ErrInvalidOption)
		}
	}
	for name := range m.constLabels {
		if !metricNamePart.MatchString(name) || strings.HasPrefix(name, "__") {
			return fmt.Errorf("%w: const label %q", ErrInvalidOption, name)
		}
		if slices.Contains(variableLabels, name) {
			return fmt.Errorf("%w: const label %q is a variable label", ErrInvalidOption, name)
		}
	}
	return nil
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
		Buckets:     buckets,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // flat list of metric definitions
	auto := promauto.With(m.registry)

	m.predictions = auto.NewCounterVec(
		m.counterOpts("predictions_total", "Total number of predictions served, by predicted label"),
		[]string{"label"},
	)
	m.inferenceLatency = auto.NewHistogram(
		m.histogramOpts("latency_milliseconds", "Model inference latency in milliseconds", m.histogramBuckets),
	)
	m.inferenceErrors = auto.NewCounter(
		m.counterOpts("errors_total", "Total number of failed model invocations"),
	)
	m.validationFailures = auto.NewCounterVec(
		m.counterOpts("validation_failures_total", "Requests rejected before inference, by offending field"),
		[]string{"field"},
	)

	m.cacheHits = auto.NewCounter(m.counterOpts("cache_hits_total", "Predictions answered from the cache"))
	m.cacheMisses = auto.NewCounter(m.counterOpts("cache_misses_total", "Predictions that required model inference"))
	m.cacheEntries = auto.NewGauge(m.gaugeOpts("cache_entries", "Current number of cached predictions"))

	m.modelLoaded = auto.NewGauge(m.gaugeOpts("model_loaded", "1 once the model artifact has been loaded"))
	m.modelLoadDuration = auto.NewGauge(
		m.gaugeOpts("model_load_duration_milliseconds", "Time spent fetching and decoding the model artifact"),
	)
	m.modelInfo = auto.NewGaugeVec(
		m.gaugeOpts("model_info", "Loaded model metadata; value is always 1"),
		[]string{"kind", "digest"},
	)

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByType = auto.NewCounterVec(
		m.counterOpts("errors_by_type_total", "Errors by type and severity"),
		[]string{"error_type", "severity"},
	)
	m.errorRateByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "Errors by endpoint, method and type"),
		[]string{"endpoint", "method", "error_type"},
	)
	m.errorLatency = auto.NewHistogramVec(
		m.histogramOpts("error_latency_milliseconds", "Latency of operations that ended in an error", m.histogramBuckets),
		[]string{"component", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "System memory usage in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(
		m.histogramOpts("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
			[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}),
	)
}

// RecordPrediction counts a served prediction under its label.
func RecordPrediction(label int) {
	globalManager.predictions.WithLabelValues(strconv.Itoa(label)).Inc()
}

// RecordInferenceLatency records model inference latency in milliseconds.
func RecordInferenceLatency(latencyMs float64) {
	globalManager.inferenceLatency.Observe(latencyMs)
}

// RecordInferenceError increments the inference error counter.
func RecordInferenceError() {
	globalManager.inferenceErrors.Inc()
}

// RecordValidationFailure counts a rejected request by the first offending field.
func RecordValidationFailure(field string) {
	if field == "" {
		field = "body"
	}
	globalManager.validationFailures.WithLabelValues(field).Inc()
}

// RecordCacheHit increments the cache hit counter.
func RecordCacheHit() {
	globalManager.cacheHits.Inc()
}

// RecordCacheMiss increments the cache miss counter.
func RecordCacheMiss() {
	globalManager.cacheMisses.Inc()
}

// UpdateCacheEntries sets the number of cached predictions.
func UpdateCacheEntries(n int) {
	globalManager.cacheEntries.Set(float64(n))
}

// RecordModelLoad marks the model as loaded and exports its metadata.
func RecordModelLoad(kind, digest string, durationMs float64) {
	globalManager.modelInfo.Reset()
	globalManager.modelInfo.WithLabelValues(kind, digest).Set(1)
	globalManager.modelLoadDuration.Set(durationMs)
	globalManager.modelLoaded.Set(1)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of an operation that resulted in an error.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
