package telemetry

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusMetricsCountersAndGauges(t *testing.T) {
	m := NewPrometheusMetrics()

	m.Add(KeyTicks, 2)
	m.Add(KeyTicks, 3)
	m.Store(KeyCircles, 5)
	m.Store(KeyCircles, 4)

	assert.Equal(t, 5.0, testutil.ToFloat64(m.counters.WithLabelValues(KeyTicks)))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.gauges.WithLabelValues(KeyCircles)))
}

func TestPrometheusMetricsHandlerExposesRegistry(t *testing.T) {
	m := NewPrometheusMetrics()
	m.Add(KeyExports, 1)
	m.ObserveTick(2 * time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `yewart_events_total{key="exports"} 1`)
	assert.Contains(t, body, "yewart_tick_duration_seconds_count 1")
}

func TestPrometheusMetricsNilSafe(t *testing.T) {
	var m *PrometheusMetrics
	m.Add(KeyTicks, 1)
	m.Store(KeyTicks, 1)
	m.ObserveTick(time.Millisecond)
}
