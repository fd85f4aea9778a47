package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	rateLimitDecisions   *prometheus.CounterVec
	rateLimitStoreErrors *prometheus.CounterVec
	imageOptimizations   *prometheus.CounterVec
	imageDuration        prometheus.Histogram
	imageBytes           prometheus.Histogram
	httpRequests         *prometheus.CounterVec
}

// New registers the service collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		rateLimitDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "newsdesk",
			Name:      "rate_limit_decisions_total",
			Help:      "Rate limit checks by limiter prefix and outcome.",
		}, []string{"prefix", "outcome"}),
		rateLimitStoreErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "newsdesk",
			Name:      "rate_limit_store_errors_total",
			Help:      "Cache failures seen by the rate limiter.",
		}, []string{"prefix", "op"}),
		imageOptimizations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "newsdesk",
			Name:      "image_optimizations_total",
			Help:      "Image optimizations by outcome.",
		}, []string{"outcome"}),
		imageDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "newsdesk",
			Name:      "image_optimization_seconds",
			Help:      "Wall time spent optimizing one image.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		imageBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "newsdesk",
			Name:      "image_optimized_bytes",
			Help:      "Encoded size of optimized images.",
			Buckets:   prometheus.ExponentialBuckets(8*1024, 2, 8),
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "newsdesk",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern and status code class.",
		}, []string{"route", "class"}),
	}
	reg.MustRegister(
		m.rateLimitDecisions,
		m.rateLimitStoreErrors,
		m.imageOptimizations,
		m.imageDuration,
		m.imageBytes,
		m.httpRequests,
	)
	return m
}

func (m *Metrics) ObserveDecision(prefix string, limited bool) {
	outcome := "allowed"
	if limited {
		outcome = "limited"
	}
	m.rateLimitDecisions.WithLabelValues(prefix, outcome).Inc()
}

func (m *Metrics) ObserveStoreError(prefix, op string) {
	m.rateLimitStoreErrors.WithLabelValues(prefix, op).Inc()
}

func (m *Metrics) ObserveOptimization(d time.Duration, size int, ok bool) {
	if !ok {
		m.imageOptimizations.WithLabelValues("failed").Inc()
		return
	}
	m.imageOptimizations.WithLabelValues("ok").Inc()
	m.imageDuration.Observe(d.Seconds())
	m.imageBytes.Observe(float64(size))
}

func (m *Metrics) ObserveRequest(route string, status int) {
	class := "5xx"
	switch {
	case status < 300:
		class = "2xx"
	case status < 400:
		class = "3xx"
	case status < 500:
		class = "4xx"
	}
	m.httpRequests.WithLabelValues(route, class).Inc()
}
