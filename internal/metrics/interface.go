package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the application from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncMatchesCommitted()
	IncMatchesEdited()
	IncMatchesDeleted()
	IncIntakeSessionsStarted()
	IncIntakeCancellations()
	IncValidationFailures()
	IncReportsGenerated()
	IncSlackNotifSent()
	IncSlackNotifFailed()
	ObserveReportDuration(duration float64)
	SetStartupTime(duration float64)
}
