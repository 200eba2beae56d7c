package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Section outcomes used as the "outcome" label.
const (
	OutcomeReady   = "ready"
	OutcomeFailed  = "failed"
	OutcomeTimeout = "timeout"
)

// Fallback reasons used as the "reason" label.
const (
	ReasonError   = "error"
	ReasonPanic   = "panic"
	ReasonTimeout = "timeout"
)

// MetricsConfig configures the collectors.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "streamssr").
	Namespace string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for request and section latencies.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the collectors.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "streamssr",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics is the set of collectors for one server.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	shellLatency    prometheus.Histogram
	sectionsTotal   *prometheus.CounterVec
	sectionDuration *prometheus.HistogramVec
	fallbacksTotal  *prometheus.CounterVec
	activeStreams   prometheus.Gauge
	streamedBytes   prometheus.Counter
}

// NewMetrics registers the collectors. Registering twice on the same
// registry panics, as with promauto.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "http_requests_total",
			Help:        "Total HTTP requests by route and status code",
			ConstLabels: config.ConstLabels,
		}, []string{"route", "status"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration in seconds, until the last byte",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"route"}),

		shellLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Name:        "shell_latency_seconds",
			Help:        "Time from request start until the shell was flushed",
			ConstLabels: config.ConstLabels,
			Buckets:     []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}),

		sectionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "sections_total",
			Help:        "Streamed sections by name and outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"section", "outcome"}),

		sectionDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Name:        "section_duration_seconds",
			Help:        "Time from request start until a section fragment was written",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"section"}),

		fallbacksTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "fallbacks_total",
			Help:        "Responses that failed before the shell, by reason",
			ConstLabels: config.ConstLabels,
		}, []string{"reason"}),

		activeStreams: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Name:        "active_streams",
			Help:        "Number of documents currently being streamed",
			ConstLabels: config.ConstLabels,
		}),

		streamedBytes: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "streamed_bytes_total",
			Help:        "Bytes written by the streaming responder",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// ObserveShell records the time until the shell was flushed.
func (m *Metrics) ObserveShell(d time.Duration) {
	if m == nil {
		return
	}
	m.shellLatency.Observe(d.Seconds())
}

// ObserveSection records a finished section. d is only observed for
// sections that were written.
func (m *Metrics) ObserveSection(name, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.sectionsTotal.WithLabelValues(name, outcome).Inc()
	if outcome == OutcomeReady {
		m.sectionDuration.WithLabelValues(name).Observe(d.Seconds())
	}
}

// Fallback records a response that never reached the shell.
func (m *Metrics) Fallback(reason string) {
	if m == nil {
		return
	}
	m.fallbacksTotal.WithLabelValues(reason).Inc()
}

// StreamStarted increments the active stream gauge and returns the
// matching decrement.
func (m *Metrics) StreamStarted() func() {
	if m == nil {
		return func() {}
	}
	m.activeStreams.Inc()
	return m.activeStreams.Dec
}

// AddBytes counts streamed bytes.
func (m *Metrics) AddBytes(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.streamedBytes.Add(float64(n))
}

// Middleware records request count and duration per chi route pattern.
// Unmatched routes are reported as "unmatched" to bound cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}
