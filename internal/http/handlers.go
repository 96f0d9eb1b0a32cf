package http

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/pitchside/calcetto/internal/intake"
	"github.com/pitchside/calcetto/internal/ledger"
	"github.com/pitchside/calcetto/internal/pubsub"
	"github.com/slack-go/slack"
)

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

// tenantFromRequest extracts the mandatory tenant parameter. Every
// ledger operation is scoped to one tenant.
func tenantFromRequest(w http.ResponseWriter, r *http.Request) (string, bool) {
	tenant := r.URL.Query().Get("tenant")
	if tenant == "" {
		tenant = r.FormValue("tenant")
	}
	if tenant == "" {
		http.Error(w, "Missing 'tenant' parameter", http.StatusBadRequest)
		return "", false
	}
	return tenant, true
}

// respondJSON writes a JSON response body.
func respondJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to write response", "error", err)
	}
}

// respondWithSlackMsg is a helper to format and write a Slack message as an HTTP response.
func respondWithSlackMsg(w http.ResponseWriter, msg slack.Message) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(msg); err != nil {
		log.Error("Failed to encode slack message to JSON", "error", err)
	}
}

// ledgerErrorStatus maps ledger errors onto HTTP status codes.
func ledgerErrorStatus(err error) int {
	switch {
	case errors.Is(err, ledger.ErrMatchNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrMalformedRecord), errors.Is(err, ledger.ErrUnknownField):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) ListPlayersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, ok := tenantFromRequest(w, r)
		if !ok {
			return
		}

		players, err := s.Roster.ListPlayers(tenant)
		if err != nil {
			http.Error(w, "Failed to get players", http.StatusInternalServerError)
			log.Error("Failed to get players from store", "error", err)
			return
		}
		respondJSON(w, players)
	}
}

func (s *Server) RegisterPlayersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, ok := tenantFromRequest(w, r)
		if !ok {
			return
		}
		names := r.FormValue("names")
		if names == "" {
			names = r.URL.Query().Get("names")
		}

		message, err := s.Machine.RegisterPlayers(tenant, names)
		if err != nil {
			http.Error(w, "Failed to register players", http.StatusInternalServerError)
			log.Error("Failed to register players", "error", err, "tenant", tenant)
			return
		}
		respondJSON(w, map[string]string{"message": message})
	}
}

func (s *Server) ListMatchesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, ok := tenantFromRequest(w, r)
		if !ok {
			return
		}

		switch r.URL.Query().Get("format") {
		case "text":
			lines, err := s.Aggregator.MatchLines(tenant)
			if err != nil {
				http.Error(w, "Failed to get matches", http.StatusInternalServerError)
				log.Error("Failed to get match lines", "error", err)
				return
			}
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			fmt.Fprintln(w, strings.Join(lines, "\n"))
			return
		case "message":
			lines, err := s.Aggregator.MatchLines(tenant)
			if err != nil {
				http.Error(w, "Failed to get matches", http.StatusInternalServerError)
				log.Error("Failed to get match lines", "error", err)
				return
			}
			msg, err := s.Notifier.FormatMatchListResponse(tenant, lines)
			if err != nil {
				http.Error(w, "Failed to format matches", http.StatusInternalServerError)
				log.Error("Failed to format match list", "error", err)
				return
			}
			slackMsg, ok := msg.(slack.Message)
			if !ok {
				http.Error(w, "Invalid message format for Slack", http.StatusInternalServerError)
				log.Error("Failed to cast message to slack.Message")
				return
			}
			respondWithSlackMsg(w, slackMsg)
			return
		}

		matches, err := s.Ledger.Matches(tenant)
		if err != nil {
			http.Error(w, "Failed to get matches", http.StatusInternalServerError)
			log.Error("Failed to get matches from store", "error", err)
			return
		}
		respondJSON(w, matches)
	}
}

func (s *Server) MatchesByDateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, ok := tenantFromRequest(w, r)
		if !ok {
			return
		}
		date := r.URL.Query().Get("date")

		matches, err := s.Editor.FindMatches(tenant, date)
		if err != nil {
			http.Error(w, "Invalid date", ledgerErrorStatus(err))
			log.Warn("Rejected match lookup", "error", err, "date", date)
			return
		}
		respondJSON(w, matches)
	}
}

func (s *Server) EditMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, ok := tenantFromRequest(w, r)
		if !ok {
			return
		}
		matchID := r.FormValue("id")
		field := ledger.EditField(r.FormValue("field"))
		value := r.FormValue("value")
		if matchID == "" {
			http.Error(w, "Missing 'id' parameter", http.StatusBadRequest)
			return
		}

		if isDryRunFromContext(r) {
			log.Info("[Dry Run] Would edit match", "matchID", matchID, "field", field, "value", value)
			fmt.Fprintln(w, "Dry run: no changes applied.")
			return
		}

		if err := s.Editor.Apply(tenant, matchID, field, value); err != nil {
			http.Error(w, "Failed to edit match", ledgerErrorStatus(err))
			log.Error("Failed to edit match", "error", err, "matchID", matchID, "field", field)
			return
		}
		if err := s.Notifier.SendConfirmation("Match updated.", false); err != nil {
			log.Warn("Failed to send edit confirmation", "error", err, "matchID", matchID)
		}
		fmt.Fprintln(w, "Match updated.")
	}
}

func (s *Server) DeleteMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, ok := tenantFromRequest(w, r)
		if !ok {
			return
		}
		matchID := r.FormValue("id")
		if matchID == "" {
			http.Error(w, "Missing 'id' parameter", http.StatusBadRequest)
			return
		}

		if isDryRunFromContext(r) {
			log.Info("[Dry Run] Would delete match", "matchID", matchID)
			fmt.Fprintln(w, "Dry run: no changes applied.")
			return
		}

		if err := s.Editor.Delete(tenant, matchID); err != nil {
			http.Error(w, "Failed to delete match", ledgerErrorStatus(err))
			log.Error("Failed to delete match", "error", err, "matchID", matchID)
			return
		}
		if err := s.Notifier.SendConfirmation("Match deleted.", false); err != nil {
			log.Warn("Failed to send delete confirmation", "error", err, "matchID", matchID)
		}
		fmt.Fprintln(w, "Match deleted.")
	}
}

// ReportHandler serves the full statistics report, formatted the same
// way the Slack notification renders it.
func (s *Server) ReportHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, ok := tenantFromRequest(w, r)
		if !ok {
			return
		}

		report, err := s.Aggregator.Report(tenant)
		if err != nil {
			http.Error(w, "Failed to generate report", http.StatusInternalServerError)
			log.Error("Failed to generate report", "error", err, "tenant", tenant)
			return
		}

		msg, err := s.Notifier.FormatReportResponse(report)
		if err != nil {
			http.Error(w, "Failed to format report", http.StatusInternalServerError)
			log.Error("Failed to format report", "error", err)
			return
		}

		slackMsg, ok := msg.(slack.Message)
		if !ok {
			http.Error(w, "Invalid message format for Slack", http.StatusInternalServerError)
			log.Error("Failed to cast message to slack.Message")
			return
		}

		respondWithSlackMsg(w, slackMsg)
	}
}

// NotifyReportHandler generates the report and pushes it to the
// configured Slack channel.
func (s *Server) NotifyReportHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, ok := tenantFromRequest(w, r)
		if !ok {
			return
		}
		isDryRun := isDryRunFromContext(r)

		report, err := s.Aggregator.Report(tenant)
		if err != nil {
			http.Error(w, "Failed to generate report", http.StatusInternalServerError)
			log.Error("Failed to generate report", "error", err, "tenant", tenant)
			return
		}

		if err := s.Notifier.SendReport(report, isDryRun); err != nil {
			http.Error(w, "Failed to send report", http.StatusInternalServerError)
			log.Error("Failed to send report", "error", err, "tenant", tenant)
			return
		}
		fmt.Fprintln(w, "Report sent.")
	}
}

// NotifyMatchListHandler pushes the plain-text match digest to the
// configured Slack channel.
func (s *Server) NotifyMatchListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, ok := tenantFromRequest(w, r)
		if !ok {
			return
		}
		isDryRun := isDryRunFromContext(r)

		lines, err := s.Aggregator.MatchLines(tenant)
		if err != nil {
			http.Error(w, "Failed to get matches", http.StatusInternalServerError)
			log.Error("Failed to get match lines", "error", err, "tenant", tenant)
			return
		}

		if err := s.Notifier.SendMatchList(tenant, lines, isDryRun); err != nil {
			http.Error(w, "Failed to send match list", http.StatusInternalServerError)
			log.Error("Failed to send match list", "error", err, "tenant", tenant)
			return
		}
		fmt.Fprintln(w, "Match list sent.")
	}
}

// ReportPushHandler handles the Pub/Sub push subscription for match
// lifecycle events. Every committed, edited or deleted match triggers
// a fresh report to the configured Slack channel.
func (s *Server) ReportPushHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bodyBytes, err := io.ReadAll(r.Body)
		if err != nil {
			log.Error("Failed to read request body", "error", err)
			http.Error(w, "Failed to read request body", http.StatusInternalServerError)
			return
		}
		log.Debug("Received match event message", "body", string(bodyBytes))
		// Define a small struct to decode the incoming JSON's `data` field
		var pubsubMsg struct {
			Subscription string `json:"subscription"`
			Message      struct {
				Data string `json:"data"` // base64-encoded message payload
			} `json:"message"`
		}

		// Parse the outer JSON to get `data`
		if err := json.Unmarshal(bodyBytes, &pubsubMsg); err != nil {
			log.Error("Failed to unmarshal wrapper JSON", "error", err)
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		// Decode base64 to raw MessagePack bytes
		rawData, err := base64.StdEncoding.DecodeString(pubsubMsg.Message.Data)
		if err != nil {
			log.Error("Failed to decode base64 data", "error", err)
			http.Error(w, "Invalid base64 data", http.StatusBadRequest)
			return
		}
		isDryRun := isDryRunFromContext(r)
		event := pubsub.MatchEvent{}
		if err := s.pubsub.ProcessMessage(rawData, &event); err != nil {
			log.Error("Failed to decode match event", "error", err)
			http.Error(w, "Invalid event payload", http.StatusBadRequest)
			return
		}

		report, err := s.Aggregator.Report(event.Tenant)
		if err != nil {
			log.Error("Failed to generate report", "error", err, "tenant", event.Tenant)
			http.Error(w, "Failed to generate report", http.StatusInternalServerError)
			return
		}
		if err := s.Notifier.SendReport(report, isDryRun); err != nil {
			log.Error("Failed to send report", "error", err, "tenant", event.Tenant)
			http.Error(w, "Failed to send report", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("OK"))
	}
}

func (s *Server) StartIntakeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, ok := tenantFromRequest(w, r)
		if !ok {
			return
		}

		session, prompt, err := s.Machine.Start(tenant)
		if err != nil {
			http.Error(w, "Failed to start intake", http.StatusInternalServerError)
			log.Error("Failed to start intake session", "error", err, "tenant", tenant)
			return
		}
		if session == nil {
			respondJSON(w, map[string]string{"message": prompt})
			return
		}

		id := s.sessions.add(session)
		log.Info("Started intake session", "sessionID", id, "tenant", tenant)
		respondJSON(w, map[string]string{
			"session_id": id,
			"message":    prompt,
			"state":      string(session.State),
		})
	}
}

func (s *Server) IntakeMessageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.FormValue("session_id")
		if sessionID == "" {
			sessionID = r.URL.Query().Get("session_id")
		}
		text := r.FormValue("text")
		if text == "" {
			text = r.URL.Query().Get("text")
		}

		session, ok := s.sessions.get(sessionID)
		if !ok {
			http.Error(w, "Unknown session", http.StatusNotFound)
			return
		}

		reply, err := s.Machine.Advance(session, text)
		if err != nil {
			http.Error(w, "Failed to process message", http.StatusInternalServerError)
			log.Error("Failed to advance intake session", "error", err, "sessionID", sessionID)
			return
		}
		if session.Finished() {
			s.sessions.remove(sessionID)
		}

		resp := intakeReply{Message: reply, State: string(session.State)}
		if session.State == intake.StateDone {
			resp.MatchID = session.MatchID
		}
		respondJSON(w, resp)
	}
}

type intakeReply struct {
	Message string `json:"message"`
	State   string `json:"state"`
	MatchID string `json:"match_id,omitempty"`
}
