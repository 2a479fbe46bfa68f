package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "yewart"

// Keys understood by the prometheus adapter. Unknown keys land in the generic
// counter and gauge vectors.
const (
	KeyTicks          = "ticks"
	KeyManualSteps    = "manual_steps"
	KeyCircles        = "circles"
	KeyHistory        = "history"
	KeySessions       = "sessions"
	KeyBroadcastBytes = "broadcast_bytes"
	KeyExports        = "exports"
	KeyTickOverruns   = "tick_overruns"
	KeyRateLimited    = "rate_limited"
)

// PrometheusMetrics implements Metrics on a private registry.
type PrometheusMetrics struct {
	registry     *prometheus.Registry
	counters     *prometheus.CounterVec
	gauges       *prometheus.GaugeVec
	tickDuration prometheus.Histogram
}

// NewPrometheusMetrics registers the collectors on a fresh registry.
func NewPrometheusMetrics() *PrometheusMetrics {
	registry := prometheus.NewRegistry()
	m := &PrometheusMetrics{
		registry: registry,
		counters: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Monotonic simulation and transport counters by key.",
		}, []string{"key"}),
		gauges: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "state",
			Help:      "Current simulation and transport values by key.",
		}, []string{"key"}),
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tick_duration_seconds",
			Help:      "Wall time spent advancing the simulation by one tick.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.03, 0.1},
		}),
	}
	registry.MustRegister(m.counters, m.gauges, m.tickDuration)
	return m
}

func (m *PrometheusMetrics) Add(key string, delta uint64) {
	if m == nil {
		return
	}
	m.counters.WithLabelValues(key).Add(float64(delta))
}

func (m *PrometheusMetrics) Store(key string, value uint64) {
	if m == nil {
		return
	}
	m.gauges.WithLabelValues(key).Set(float64(value))
}

// ObserveTick records one tick duration.
func (m *PrometheusMetrics) ObserveTick(duration time.Duration) {
	if m == nil {
		return
	}
	m.tickDuration.Observe(duration.Seconds())
}

// Registry exposes the underlying registry for tests and handlers.
func (m *PrometheusMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus text format.
func (m *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
