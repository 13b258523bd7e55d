// Package observability provides Prometheus metrics and OpenTelemetry
// tracing/logging integration for the server.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the server's Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	requestsTotal   *prometheus.CounterVec
	errorsTotal     *prometheus.CounterVec
	activeRequests  prometheus.Gauge
}

// NewMetrics creates a metrics registry with the server's collectors plus the
// standard process and Go runtime collectors.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: registry,
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "graphql_request_duration_seconds",
			Help:    "Duration of GraphQL requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation_type"}),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "graphql_requests_total",
			Help: "Total number of GraphQL requests.",
		}, []string{"operation_type"}),
		errorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "graphql_errors_total",
			Help: "Total number of GraphQL requests that returned errors.",
		}, []string{"operation_type"}),
		activeRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "graphql_requests_active",
			Help: "Number of in-flight GraphQL requests.",
		}),
	}

	registry.MustRegister(m.requestDuration, m.requestsTotal, m.errorsTotal, m.activeRequests)
	return m
}

// Handler returns the HTTP handler serving the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordRequest records one completed GraphQL request.
func (m *Metrics) RecordRequest(duration time.Duration, hasErrors bool, operationType string) {
	m.requestDuration.WithLabelValues(operationType).Observe(duration.Seconds())
	m.requestsTotal.WithLabelValues(operationType).Inc()
	if hasErrors {
		m.errorsTotal.WithLabelValues(operationType).Inc()
	}
}

// IncrementActiveRequests marks a request as in flight.
func (m *Metrics) IncrementActiveRequests() {
	m.activeRequests.Inc()
}

// DecrementActiveRequests marks a request as finished.
func (m *Metrics) DecrementActiveRequests() {
	m.activeRequests.Dec()
}
