package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for gsms
type Metrics struct {
	// Command execution metrics
	CommandExecutions *prometheus.CounterVec
	CommandDuration   *prometheus.HistogramVec

	// Backend API metrics
	APIRequests *prometheus.CounterVec
	APILatency  *prometheus.HistogramVec
	APIErrors   *prometheus.CounterVec

	// Navigation guard metrics
	NavigationDecisions *prometheus.CounterVec

	// Session metrics
	PermissionFetches *prometheus.CounterVec
	SessionEvents     *prometheus.CounterVec

	// Error metrics (by error code from structured errors)
	Errors *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered
func NewMetrics(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		CommandExecutions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gsms_command_executions_total",
				Help: "Total number of command executions",
			},
			[]string{"command", "success"},
		),
		CommandDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gsms_command_duration_seconds",
				Help:    "Command execution duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"command"},
		),

		APIRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gsms_api_requests_total",
				Help: "Total number of backend API requests",
			},
			[]string{"method", "route", "status"},
		),
		APILatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gsms_api_latency_seconds",
				Help:    "Backend API request latency in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"method", "route"},
		),
		APIErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gsms_api_errors_total",
				Help: "Total number of failed backend API requests",
			},
			[]string{"route", "error_type"},
		),

		NavigationDecisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gsms_navigation_decisions_total",
				Help: "Total number of route guard decisions",
			},
			[]string{"route", "decision"},
		),

		PermissionFetches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gsms_permission_fetches_total",
				Help: "Total number of permission and role fetches by outcome",
			},
			[]string{"kind", "outcome"},
		),
		SessionEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gsms_session_events_total",
				Help: "Total number of session lifecycle events",
			},
			[]string{"event"},
		),

		Errors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gsms_errors_total",
				Help: "Total number of errors by error code",
			},
			[]string{"error_code", "component"},
		),
	}
}

// RecordCommand records one command execution.
func (m *Metrics) RecordCommand(command string, duration time.Duration, success bool) {
	m.CommandExecutions.WithLabelValues(command, strconv.FormatBool(success)).Inc()
	m.CommandDuration.WithLabelValues(command).Observe(duration.Seconds())
}

// ObserveRequest records one backend request. status is 0 when no response
// was received; errorType is empty on success.
func (m *Metrics) ObserveRequest(method, route string, status int, duration time.Duration, errorType string) {
	m.APIRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.APILatency.WithLabelValues(method, route).Observe(duration.Seconds())
	if errorType != "" {
		m.APIErrors.WithLabelValues(route, errorType).Inc()
	}
}

// ObserveNavigation records one guard decision for the named route.
func (m *Metrics) ObserveNavigation(route, decision string) {
	m.NavigationDecisions.WithLabelValues(route, decision).Inc()
}

// ObserveFetch records the outcome of a permission or role fetch.
func (m *Metrics) ObserveFetch(kind, outcome string) {
	m.PermissionFetches.WithLabelValues(kind, outcome).Inc()
}

// RecordSessionEvent records a login, logout, restore or expiry.
func (m *Metrics) RecordSessionEvent(event string) {
	m.SessionEvents.WithLabelValues(event).Inc()
}

// RecordError records a structured error by code.
func (m *Metrics) RecordError(code, component string) {
	m.Errors.WithLabelValues(code, component).Inc()
}
