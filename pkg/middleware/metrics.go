package middleware

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/vango-dev/doclisten/pkg/dom"
)

// MetricsConfig configures the Prometheus metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "doclisten").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for dispatch duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
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
		Namespace: "doclisten",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the Prometheus collectors for one or more documents.
// Share a single Metrics between documents; creating two against the same
// registry panics on duplicate registration.
type Metrics struct {
	listenersAdded   *prometheus.CounterVec
	listenersRemoved *prometheus.CounterVec
	listenersActive  *prometheus.GaugeVec
	listenerPanics   *prometheus.CounterVec
	dispatchesTotal  *prometheus.CounterVec
	dispatchDuration *prometheus.HistogramVec
}

var _ dom.Observer = (*Metrics)(nil)

// NewMetrics creates and registers the collectors.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(config.Registry)

	return &Metrics{
		listenersAdded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "listeners_added_total",
			Help:        "Total number of document listeners added",
			ConstLabels: config.ConstLabels,
		}, []string{"event"}),

		listenersRemoved: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "listeners_removed_total",
			Help:        "Total number of document listeners removed",
			ConstLabels: config.ConstLabels,
		}, []string{"event"}),

		listenersActive: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "listeners_active",
			Help:        "Number of document listeners currently attached",
			ConstLabels: config.ConstLabels,
		}, []string{"event"}),

		listenerPanics: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "listener_panics_total",
			Help:        "Total number of recovered listener panics",
			ConstLabels: config.ConstLabels,
		}, []string{"event"}),

		dispatchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "dispatches_total",
			Help:        "Total number of dispatched events by outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"event", "status"}),

		dispatchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "dispatch_duration_seconds",
			Help:        "Event dispatch duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"event"}),
	}
}

// ListenerAdded implements dom.Observer.
func (m *Metrics) ListenerAdded(t dom.EventType, _ int) {
	m.listenersAdded.WithLabelValues(string(t)).Inc()
	m.listenersActive.WithLabelValues(string(t)).Inc()
}

// ListenerRemoved implements dom.Observer.
func (m *Metrics) ListenerRemoved(t dom.EventType, _ int) {
	m.listenersRemoved.WithLabelValues(string(t)).Inc()
	m.listenersActive.WithLabelValues(string(t)).Dec()
}

// ListenerPanicked implements dom.Observer.
func (m *Metrics) ListenerPanicked(t dom.EventType, _ any) {
	m.listenerPanics.WithLabelValues(string(t)).Inc()
}

// DocumentClosed takes the listeners still attached to doc out of
// listeners_active. Call it once doc is discarded; mounted-only listeners are
// never removed and would otherwise stay counted.
func (m *Metrics) DocumentClosed(doc *dom.Document) {
	for _, t := range doc.EventTypes() {
		m.listenersActive.WithLabelValues(string(t)).Sub(float64(doc.ListenerCount(t)))
	}
}

// Middleware returns dispatch middleware that counts and times events.
// An event that reaches no listener is recorded with status "unhandled".
func (m *Metrics) Middleware() dom.Middleware {
	return func(next dom.DispatchFunc) dom.DispatchFunc {
		return func(ctx context.Context, e *dom.Event) int {
			start := time.Now()
			n := next(ctx, e)
			m.dispatchDuration.WithLabelValues(string(e.Type)).Observe(time.Since(start).Seconds())

			status := "handled"
			if n == 0 {
				status = "unhandled"
			}
			m.dispatchesTotal.WithLabelValues(string(e.Type), status).Inc()
			return n
		}
	}
}
