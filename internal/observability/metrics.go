package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Guard decisions recorded by RecordGuardDecision.
const (
	DecisionAllow               = "allow"
	DecisionDenyUnauthenticated = "deny_unauthenticated"
	DecisionDenyRole            = "deny_role"
	DecisionRedirect            = "redirect"
	DecisionPassThrough         = "pass_through"
)

// Metrics holds the gateway's prometheus collectors on a private registry.
type Metrics struct {
	registry        *prometheus.Registry
	requestCount    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errorCount      *prometheus.CounterVec
	guardDecisions  *prometheus.CounterVec
	logins          *prometheus.CounterVec
}

// NewMetrics registers the collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "festivaz_http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "festivaz_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		errorCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "festivaz_http_errors_total",
			Help: "HTTP requests that ended with an error response.",
		}, []string{"method", "path", "code"}),
		guardDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "festivaz_guard_decisions_total",
			Help: "Navigation decisions taken by section guards and the root redirector.",
		}, []string{"section", "decision"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "festivaz_logins_total",
			Help: "Login attempts by flow and outcome.",
		}, []string{"flow", "outcome"}),
	}
	m.registry.MustRegister(m.requestCount, m.requestDuration, m.errorCount, m.guardDecisions, m.logins)
	return m
}

// Handler exposes the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestCount.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.errorCount.WithLabelValues(method, path, code).Inc()
}

// RecordGuardDecision counts one navigation decision for a section.
func (m *Metrics) RecordGuardDecision(section, decision string) {
	if m == nil {
		return
	}
	m.guardDecisions.WithLabelValues(section, decision).Inc()
}

// RecordLogin counts a login attempt.
func (m *Metrics) RecordLogin(flow string, success bool) {
	if m == nil {
		return
	}
	outcome := "failure"
	if success {
		outcome = "success"
	}
	m.logins.WithLabelValues(flow, outcome).Inc()
}
