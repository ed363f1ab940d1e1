package telemetry

// SLI metric names used for instrumentation.
const (
	// Latency
	MetricAPILatencyP50 = "api.latency.p50"
	MetricAPILatencyP95 = "api.latency.p95"
	MetricAPILatencyP99 = "api.latency.p99"

	// Throughput
	MetricRequestsPerSec = "api.requests_per_second"

	// Data freshness
	MetricFixLatency   = "nav.fix_latency"
	MetricStateAge     = "nav.state_age_seconds"
	MetricRouteLatency = "routing.fetch_latency"

	// Availability
	MetricUptime = "service.uptime_percentage"

	// Business
	MetricSessionsArrived = "business.sessions_arrived"
	MetricOffRouteEvents  = "business.off_route_events"
)
