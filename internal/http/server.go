package http

import (
	"net/http"

	"github.com/pitchside/calcetto/internal/config"
	"github.com/pitchside/calcetto/internal/intake"
	"github.com/pitchside/calcetto/internal/ledger"
	"github.com/pitchside/calcetto/internal/metrics"
	"github.com/pitchside/calcetto/internal/notifier"
	"github.com/pitchside/calcetto/internal/pubsub"
	"github.com/pitchside/calcetto/internal/roster"
	"github.com/pitchside/calcetto/internal/stats"
)

func NewServer(rosterStore roster.Store, ledgerStore ledger.Store, machine *intake.Machine, editor *intake.Editor, aggregator *stats.Aggregator, metricsSvc metrics.Metrics, metricsHandler http.Handler, cfg config.Config, notifier notifier.Notifier, pubsub pubsub.Client) *Server {
	server := &Server{
		Roster:         rosterStore,
		Ledger:         ledgerStore,
		Machine:        machine,
		Editor:         editor,
		Aggregator:     aggregator,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Cfg:            cfg,
		Notifier:       notifier,
		Router:         http.NewServeMux(),
		sessions:       newSessionRegistry(),
		pubsub:         pubsub,
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// This makes it easy to add more middlewares in the future, like an authentication middleware.
	// e.g. Chain(s.MyHandler(), paramsMiddleware, authMiddleware)
	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Handle("/health", Chain(s.HealthCheckHandler(), paramsMiddleware))
	s.Router.Handle("/players", Chain(s.ListPlayersHandler(), paramsMiddleware))
	s.Router.Handle("/players/register", Chain(s.RegisterPlayersHandler(), paramsMiddleware))
	s.Router.Handle("/matches", Chain(s.ListMatchesHandler(), paramsMiddleware))
	s.Router.Handle("/matches/by-date", Chain(s.MatchesByDateHandler(), paramsMiddleware))
	s.Router.Handle("/matches/notify", Chain(s.NotifyMatchListHandler(), paramsMiddleware))
	s.Router.Handle("/matches/edit", Chain(s.EditMatchHandler(), paramsMiddleware))
	s.Router.Handle("/matches/delete", Chain(s.DeleteMatchHandler(), paramsMiddleware))
	s.Router.Handle("/report", Chain(s.ReportHandler(), paramsMiddleware))
	s.Router.Handle("/report/notify", Chain(s.NotifyReportHandler(), paramsMiddleware))
	s.Router.Handle("/pubsub/match-event", Chain(s.ReportPushHandler(), paramsMiddleware))
	s.Router.Handle("/intake/start", Chain(s.StartIntakeHandler(), paramsMiddleware))
	s.Router.Handle("/intake/message", Chain(s.IntakeMessageHandler(), paramsMiddleware))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
