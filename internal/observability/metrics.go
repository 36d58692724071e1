package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles Prometheus collectors. Each instance owns its registry so
// tests can construct independent metric sets.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal      *prometheus.CounterVec
	ErrorsTotal        *prometheus.CounterVec
	EventsDispatched   *prometheus.CounterVec
	EventsSuppressed   *prometheus.CounterVec
	EventDispatchFails *prometheus.CounterVec
	SLAStatusTotal     *prometheus.CounterVec
}

// NewMetrics initializes the collector set.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "helpdesk_http_requests_total",
				Help: "HTTP requests by path, method and status",
			},
			[]string{"path", "method", "status"},
		),
		ErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "helpdesk_http_errors_total",
				Help: "Requests that ended in a mapped application error",
			},
			[]string{"path", "method", "code"},
		),
		EventsDispatched: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "helpdesk_events_dispatched_total",
				Help: "Outbound automation events handed to the RPC endpoint",
			},
			[]string{"event_type"},
		),
		EventsSuppressed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "helpdesk_events_suppressed_total",
				Help: "Outbound events suppressed before dispatch",
			},
			[]string{"event_type", "reason"},
		),
		EventDispatchFails: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "helpdesk_event_dispatch_failures_total",
				Help: "Outbound events whose RPC invocation failed",
			},
			[]string{"event_type"},
		),
		SLAStatusTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "helpdesk_sla_status_transitions_total",
				Help: "SLA status values observed when persisting recalculations",
			},
			[]string{"status"},
		),
	}
}

// RecordError counts a request that failed with an application error code.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(path, method, code).Inc()
}

// Registry exposes the underlying registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return prometheus.NewRegistry()
	}
	return m.registry
}
