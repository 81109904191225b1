package observability

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "lead_gateway"

// Metrics collects gateway metrics on its own registry, so several
// instances can coexist in one process (tests, the CLI).
type Metrics struct {
	registry *prometheus.Registry

	requests           *prometheus.CounterVec
	completionLatency  *prometheus.HistogramVec
	completionErrors   *prometheus.CounterVec
	embeddingFailures  *prometheus.CounterVec
	emails             *prometheus.CounterVec
	httpRequests       *prometheus.CounterVec
	httpRequestLatency *prometheus.HistogramVec
}

// NewMetrics creates and registers the gateway collectors
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dispatch_requests_total",
				Help:      "Lead requests dispatched to providers, by outcome",
			},
			[]string{"provider", "operation", "outcome"},
		),
		completionLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "completion_duration_seconds",
				Help:      "Vendor completion call latency in seconds",
				Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
			},
			[]string{"provider", "request_type"},
		),
		completionErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "completion_errors_total",
				Help:      "Vendor completion calls that failed",
			},
			[]string{"provider", "request_type"},
		),
		embeddingFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "embedding_failures_total",
				Help:      "Embedding calls that failed and were skipped",
			},
			[]string{"provider"},
		),
		emails: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "emails_total",
				Help:      "Outbound emails by outcome",
			},
			[]string{"outcome"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by route and status code",
			},
			[]string{"method", "route", "status"},
		),
		httpRequestLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}

	m.registry.MustRegister(
		m.requests,
		m.completionLatency,
		m.completionErrors,
		m.embeddingFailures,
		m.emails,
		m.httpRequests,
		m.httpRequestLatency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one dispatched lead request
func (m *Metrics) ObserveRequest(provider, operation, outcome string) {
	m.requests.WithLabelValues(provider, operation, outcome).Inc()
}

// ObserveCompletion records one vendor completion call. Calls canceled by
// the caller are timed but not counted as errors.
func (m *Metrics) ObserveCompletion(provider, requestType string, elapsed time.Duration, err error) {
	m.completionLatency.WithLabelValues(provider, requestType).Observe(elapsed.Seconds())
	if err != nil && !errors.Is(err, context.Canceled) {
		m.completionErrors.WithLabelValues(provider, requestType).Inc()
	}
}

// IncEmbeddingFailure records a skipped embedding
func (m *Metrics) IncEmbeddingFailure(provider string) {
	m.embeddingFailures.WithLabelValues(provider).Inc()
}

// ObserveEmail records an email delivery outcome
func (m *Metrics) ObserveEmail(outcome string) {
	m.emails.WithLabelValues(outcome).Inc()
}

// ObserveHTTP records one served HTTP request
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestLatency.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
