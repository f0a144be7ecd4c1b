// Package metrics provides Prometheus metrics for the refxpp calculator.
package metrics

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultNamespace       = "refxpp"
	defaultSubsystem       = "calculator"
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the calculator.
type Manager struct {
	namespace         string
	subsystem         string
	histogramBuckets  []float64
	enabled           bool
	refreshInterval   time.Duration
	customLabels      map[string]string
	runtimeCollectors bool
	registry          prometheus.Registerer

	// Calculation metrics
	calculations       *prometheus.CounterVec
	calculationErrors  *prometheus.CounterVec
	calculationLatency *prometheus.HistogramVec
	beatmapBytes       prometheus.Histogram
	batchSize          prometheus.Histogram

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error Metrics
	errorRateByEndpoint *prometheus.CounterVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
	lastNumGC            uint32
}

var (
	mu            sync.RWMutex
	globalManager *Manager
	// Custom registry to avoid default Go metrics.
	customRegistry *prometheus.Registry
)

func init() { //nolint:gochecknoinits // global metrics setup
	Configure()
}

// Configure replaces the global manager with one built from opts on a fresh
// custom registry. Call it once at startup, before metrics are served.
func Configure(opts ...Option) {
	reg := prometheus.NewRegistry()
	m := NewManager(append(opts, WithPrometheusRegistry(reg))...)
	mu.Lock()
	globalManager, customRegistry = m, reg
	mu.Unlock()
}

func global() *Manager {
	mu.RLock()
	defer mu.RUnlock()
	return globalManager
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        defaultNamespace,
		subsystem:        defaultSubsystem,
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one block per metric
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)

	m.calculations = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "calculations_total",
			Help:        "Total number of successful calculations by variant and entry point",
			ConstLabels: labels,
		},
		[]string{"variant", "entry"},
	)

	m.calculationErrors = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "calculation_errors_total",
			Help:        "Total number of failed calculations by failure kind and entry point",
			ConstLabels: labels,
		},
		[]string{"kind", "entry"},
	)

	m.calculationLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "calculation_latency_milliseconds",
			Help:        "Calculation latency in milliseconds",
			Buckets:     m.histogramBuckets,
			ConstLabels: labels,
		},
		[]string{"entry"},
	)

	m.beatmapBytes = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "beatmap_size_bytes",
		Help:        "Size of beatmaps submitted as bytes",
		Buckets:     prometheus.ExponentialBuckets(1024, 4, 8),
		ConstLabels: labels,
	})

	m.batchSize = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "batch_size",
		Help:        "Number of items per batch calculation",
		Buckets:     prometheus.LinearBuckets(1, 10, 10),
		ConstLabels: labels,
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests by endpoint and method",
			ConstLabels: labels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "http_request_duration_milliseconds",
			Help:        "HTTP request duration in milliseconds",
			Buckets:     m.histogramBuckets,
			ConstLabels: labels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "errors_by_endpoint_total",
			Help:        "Total number of errors by endpoint",
			ConstLabels: labels,
		},
		[]string{"endpoint", "method", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_memory_usage_bytes",
		Help:        "Heap memory in use in bytes",
		ConstLabels: labels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_goroutine_count",
		Help:        "Number of goroutines",
		ConstLabels: labels,
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_gc_pause_time_milliseconds",
		Help:        "GC pause time in milliseconds",
		Buckets:     []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		ConstLabels: labels,
	})

	if m.runtimeCollectors {
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
}

// RecordCalculation counts a successful calculation.
func RecordCalculation(variant, entry string) {
	if m := global(); m.enabled {
		m.calculations.WithLabelValues(variant, entry).Inc()
	}
}

// RecordCalculationError counts a failed calculation by failure kind.
func RecordCalculationError(kind, entry string) {
	if m := global(); m.enabled {
		m.calculationErrors.WithLabelValues(kind, entry).Inc()
	}
}

// RecordCalculationLatency records calculation latency in milliseconds.
func RecordCalculationLatency(entry string, latencyMs float64) {
	if m := global(); m.enabled {
		m.calculationLatency.WithLabelValues(entry).Observe(latencyMs)
	}
}

// RecordBeatmapSize records the size of a beatmap submitted as bytes.
func RecordBeatmapSize(n int) {
	if m := global(); m.enabled {
		m.beatmapBytes.Observe(float64(n))
	}
}

// RecordBatchSize records the number of items in a batch.
func RecordBatchSize(n int) {
	if m := global(); m.enabled {
		m.batchSize.Observe(float64(n))
	}
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if m := global(); m.enabled {
		m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	}
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if m := global(); m.enabled {
		m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
	}
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if m := global(); m.enabled {
		m.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
	}
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	if m := global(); m.enabled {
		m.systemMemoryUsage.Set(float64(bytes))
	}
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	if m := global(); m.enabled {
		m.systemGoroutineCount.Set(float64(count))
	}
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	if m := global(); m.enabled {
		m.systemGCPauseTime.Observe(pauseMs)
	}
}

// SampleSystem reads runtime statistics into the system gauges once.
func SampleSystem() {
	m := global()
	if !m.enabled {
		return
	}
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	m.systemMemoryUsage.Set(float64(ms.HeapInuse))
	m.systemGoroutineCount.Set(float64(runtime.NumGoroutine()))

	mu.Lock()
	defer mu.Unlock()
	// PauseNs is a ring buffer of the last 256 pauses.
	ring := uint32(len(ms.PauseNs))
	start := m.lastNumGC
	if ms.NumGC-start > ring {
		start = ms.NumGC - ring
	}
	for n := start; n < ms.NumGC; n++ {
		m.systemGCPauseTime.Observe(float64(ms.PauseNs[n%ring]) / float64(time.Millisecond))
	}
	m.lastNumGC = ms.NumGC
}

// StartSystemSampler samples system metrics every refresh interval until
// ctx is done.
func StartSystemSampler(ctx context.Context) {
	interval := global().refreshInterval
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			SampleSystem()
			select {
			case <-ctx.Done():
				return
			case <-t.C:
			}
		}
	}()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	mu.RLock()
	defer mu.RUnlock()
	return customRegistry
}
