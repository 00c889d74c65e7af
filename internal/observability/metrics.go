// Package observability holds the Prometheus collectors and OpenTelemetry
// tracer shared by the API.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "inkwell_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// AuthGateOutcomes counts Auth Gate decisions by result
	// (ok, missing, invalid, revoked).
	AuthGateOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_auth_gate_outcomes_total",
		Help: "Authenticated route decisions by result",
	}, []string{"result"})

	// CredentialChecks counts register/login attempts by action and result.
	CredentialChecks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_credential_checks_total",
		Help: "Registration and login attempts by result",
	}, []string{"action", "result"})

	// CacheLookups counts cache-aside lookups by cache name and result (hit, miss, error).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_cache_lookups_total",
		Help: "Cache-aside lookups by result",
	}, []string{"cache", "result"})

	// ContentCreated counts created posts and comments.
	ContentCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_content_created_total",
		Help: "Posts and comments created",
	}, []string{"kind"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
