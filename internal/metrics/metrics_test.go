package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRateLimitCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveDecision("api_limit", false)
	m.ObserveDecision("api_limit", false)
	m.ObserveDecision("api_limit", true)
	m.ObserveStoreError("api_limit", "get")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.rateLimitDecisions.WithLabelValues("api_limit", "allowed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rateLimitDecisions.WithLabelValues("api_limit", "limited")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rateLimitStoreErrors.WithLabelValues("api_limit", "get")))
}

func TestImageCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveOptimization(120*time.Millisecond, 40_000, true)
	m.ObserveOptimization(0, 0, false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.imageOptimizations.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.imageOptimizations.WithLabelValues("failed")))
}

func TestRequestClasses(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveRequest("GET /api/news", 200)
	m.ObserveRequest("GET /api/news", 429)
	m.ObserveRequest("GET /s/{code}", 302)
	m.ObserveRequest("GET /api/news", 503)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET /api/news", "2xx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET /api/news", "4xx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET /s/{code}", "3xx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET /api/news", "5xx")))
}
