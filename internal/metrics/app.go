// Package metrics emits application counters through the global telemetry
// system. All emitters are no-ops until observability.InitMetrics has run.
package metrics

import (
	"time"

	"github.com/phishnix/phishnix/internal/observability"
)

// Application-level metrics following Prometheus conventions
var (
	AnalysesTotal       = "app_analyses_total"
	EngineFailuresTotal = "app_engine_failures_total"
	PersistenceFailures = "app_persistence_failures_total"
	HealthCheckTotal    = "app_health_check_total"
	HealthCheckDuration = "app_health_check_duration_ms"
	ServerStartTime     = "app_server_start_time_seconds"
)

// RecordAnalysis records one analysis invocation with its outcome kind.
func RecordAnalysis(kind string, outcome string) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			AnalysesTotal,
			1,
			map[string]string{
				"kind":    kind,
				"outcome": outcome,
			},
		)
	}
}

// RecordEngineFailure records a reasoning engine failure by reason.
func RecordEngineFailure(reason string) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			EngineFailuresTotal,
			1,
			map[string]string{
				"reason": reason,
			},
		)
	}
}

// RecordPersistenceFailure records a failed verdict record write.
func RecordPersistenceFailure() {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			PersistenceFailures,
			1,
			nil,
		)
	}
}

// RecordHealthCheck records a health check execution
func RecordHealthCheck(checkName string, healthy bool, duration time.Duration) {
	status := "healthy"
	if !healthy {
		status = "unhealthy"
	}

	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			HealthCheckTotal,
			1,
			map[string]string{
				"check":  checkName,
				"status": status,
			},
		)

		_ = observability.TelemetrySystem.Histogram(
			HealthCheckDuration,
			duration,
			map[string]string{
				"check": checkName,
			},
		)
	}
}

// SetServerStartTime records the server start time (Unix timestamp)
func SetServerStartTime(timestamp int64) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Gauge(
			ServerStartTime,
			float64(timestamp),
			nil,
		)
	}
}
