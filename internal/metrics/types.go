package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the application.
// By defining them all in one place, we ensure consistency in naming and labeling.
type Service struct {
	MatchesCommitted      prometheus.Counter
	MatchesEdited         prometheus.Counter
	MatchesDeleted        prometheus.Counter
	IntakeSessionsStarted prometheus.Counter
	IntakeCancellations   prometheus.Counter
	ValidationFailures    prometheus.Counter
	ReportsGenerated      prometheus.Counter
	SlackNotifSent        prometheus.Counter
	SlackNotifFailed      prometheus.Counter
	ReportDuration        prometheus.Histogram
	StartupTimeSeconds    prometheus.Gauge
}
