package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopMetrics(t *testing.T) {
	m := NoopMetrics{}
	assert.NotPanics(t, func() {
		m.Counter(MetricPromoApplies, 1)
		m.Timing(MetricHTTPDuration, time.Second)
	})
}

func TestInMemoryMetrics(t *testing.T) {
	t.Run("counters with tags", func(t *testing.T) {
		m := NewInMemoryMetrics()

		m.Counter(MetricPromoApplies, 1, T("outcome", "applied"))
		m.Counter(MetricPromoApplies, 1, T("outcome", "usage_limit_reached"))
		m.Counter(MetricPromoApplies, 1, T("outcome", "applied"))

		assert.Equal(t, int64(2), m.GetCounter(MetricPromoApplies, T("outcome", "applied")))
		assert.Equal(t, int64(1), m.GetCounter(MetricPromoApplies, T("outcome", "usage_limit_reached")))
		assert.Zero(t, m.GetCounter(MetricPromoApplies))
	})

	t.Run("tag order does not matter", func(t *testing.T) {
		m := NewInMemoryMetrics()

		m.Counter(MetricCheckoutTransitions, 1, T("from", "cart"), T("to", "details"))

		assert.Equal(t, int64(1), m.GetCounter(MetricCheckoutTransitions, T("to", "details"), T("from", "cart")))
	})

	t.Run("timings", func(t *testing.T) {
		m := NewInMemoryMetrics()

		m.Timing(MetricHTTPDuration, 10*time.Millisecond, T("route", "/health"))
		m.Timing(MetricHTTPDuration, 20*time.Millisecond, T("route", "/health"))

		assert.Equal(t, []time.Duration{10 * time.Millisecond, 20 * time.Millisecond},
			m.GetTimings(MetricHTTPDuration, T("route", "/health")))
	})
}

func TestPrometheusMetrics_ExposesRecordedSeries(t *testing.T) {
	m := NewPrometheusMetrics()

	m.Counter(MetricSubscriptionChecks, 2, T("result", "active"))
	m.Counter(MetricSubscriptionChecks, 1, T("result", "exempt"))
	m.Timing(MetricHTTPDuration, 15*time.Millisecond, T("route", "GET /health"), T("status", "200"))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `portal_subscription_checks_total{result="active"} 2`)
	assert.Contains(t, body, `portal_subscription_checks_total{result="exempt"} 1`)
	assert.Contains(t, body, `portal_http_duration_seconds_count{route="GET /health",status="200"} 1`)
}
