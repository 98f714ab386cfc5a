package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "studioportal_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "studioportal_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	tableReads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "studioportal_table_reads_total",
		Help: "Table reads by table, access path and result",
	}, []string{"table", "path", "result"})

	tableWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "studioportal_table_writes_total",
		Help: "Table writes by table, operation and result",
	}, []string{"table", "op", "result"})

	loginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "studioportal_login_attempts_total",
		Help: "Login attempts by role and outcome",
	}, []string{"role", "outcome"})

	generationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "studioportal_generation_duration_seconds",
		Help:    "Duration of document generation calls",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
	}, []string{"result"})

	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "studioportal_active_sessions",
		Help: "Number of live in-process sessions",
	})
)

// ObserveHTTPRequest records an HTTP request metric.
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveTableRead counts one table read attempt. path is "primary",
// "fallback" or "cache"; result is "ok" or "error".
func ObserveTableRead(table, path, result string) {
	tableReads.WithLabelValues(table, path, result).Inc()
}

// ObserveTableWrite counts one append or overwrite.
func ObserveTableWrite(table, op, result string) {
	tableWrites.WithLabelValues(table, op, result).Inc()
}

// ObserveLogin counts a login attempt outcome for a role.
func ObserveLogin(role, outcome string) {
	loginAttempts.WithLabelValues(role, outcome).Inc()
}

// ObserveGeneration records the duration of one generation call.
func ObserveGeneration(result string, duration time.Duration) {
	generationDuration.WithLabelValues(result).Observe(duration.Seconds())
}

// IncrementSessions increments the live session gauge.
func IncrementSessions() {
	activeSessions.Inc()
}

// DecrementSessions decrements the live session gauge.
func DecrementSessions() {
	activeSessions.Dec()
}
