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

type Server struct {
	Roster         roster.Store
	Ledger         ledger.Store
	Machine        *intake.Machine
	Editor         *intake.Editor
	Aggregator     *stats.Aggregator
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Cfg            config.Config
	Notifier       notifier.Notifier
	Router         *http.ServeMux

	sessions *sessionRegistry
	pubsub   pubsub.Client
}
