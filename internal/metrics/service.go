package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		MatchesCommitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "calcetto_matches_committed_total",
			Help: "The total number of matches committed to the ledger.",
		}),
		MatchesEdited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "calcetto_matches_edited_total",
			Help: "The total number of match field edits applied.",
		}),
		MatchesDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "calcetto_matches_deleted_total",
			Help: "The total number of matches deleted from the ledger.",
		}),
		IntakeSessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "calcetto_intake_sessions_started_total",
			Help: "The total number of match intake dialogues started.",
		}),
		IntakeCancellations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "calcetto_intake_cancellations_total",
			Help: "The total number of intake dialogues cancelled by the user.",
		}),
		ValidationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "calcetto_intake_validation_failures_total",
			Help: "The total number of intake messages rejected by validation.",
		}),
		ReportsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "calcetto_reports_generated_total",
			Help: "The total number of statistics reports generated.",
		}),
		SlackNotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "calcetto_slack_notifications_sent_total",
			Help: "The total number of Slack notifications sent successfully.",
		}),
		SlackNotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "calcetto_slack_notifications_failed_total",
			Help: "The total number of Slack notifications that failed to send.",
		}),
		ReportDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "calcetto_report_duration_seconds",
			Help:    "The duration of statistics report generation.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "calcetto_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.MatchesCommitted,
		s.MatchesEdited,
		s.MatchesDeleted,
		s.IntakeSessionsStarted,
		s.IntakeCancellations,
		s.ValidationFailures,
		s.ReportsGenerated,
		s.SlackNotifSent,
		s.SlackNotifFailed,
		s.ReportDuration,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncMatchesCommitted() {
	s.MatchesCommitted.Inc()
}

func (s *Service) IncMatchesEdited() {
	s.MatchesEdited.Inc()
}

func (s *Service) IncMatchesDeleted() {
	s.MatchesDeleted.Inc()
}

func (s *Service) IncIntakeSessionsStarted() {
	s.IntakeSessionsStarted.Inc()
}

func (s *Service) IncIntakeCancellations() {
	s.IntakeCancellations.Inc()
}

func (s *Service) IncValidationFailures() {
	s.ValidationFailures.Inc()
}

func (s *Service) IncReportsGenerated() {
	s.ReportsGenerated.Inc()
}

func (s *Service) IncSlackNotifSent() {
	s.SlackNotifSent.Inc()
}

func (s *Service) IncSlackNotifFailed() {
	s.SlackNotifFailed.Inc()
}

func (s *Service) ObserveReportDuration(duration float64) {
	s.ReportDuration.Observe(duration)
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
