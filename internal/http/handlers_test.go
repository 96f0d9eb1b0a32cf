package http

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/pitchside/calcetto/internal/config"
	"github.com/pitchside/calcetto/internal/database"
	"github.com/pitchside/calcetto/internal/intake"
	"github.com/pitchside/calcetto/internal/ledger"
	"github.com/pitchside/calcetto/internal/metrics"
	"github.com/pitchside/calcetto/internal/notifier"
	"github.com/pitchside/calcetto/internal/pubsub"
	"github.com/pitchside/calcetto/internal/roster"
	"github.com/pitchside/calcetto/internal/stats"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

const testTenant = "chat-1"

// setupTestServer initializes a new server with a test database and mock clients.
func setupTestServer(t *testing.T, mockNotifier notifier.Notifier) (*Server, *pubsub.Mock, func()) {
	t.Helper()

	db, dbTeardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)

	rosterStore := roster.New(db)
	ledgerStore := ledger.New(db, rosterStore)
	cfg := config.Config{Port: "8080"}

	reg := prometheus.NewRegistry()
	metricsSvc := metrics.NewService(reg)
	metricsHandler := metrics.NewMetricsHandler(reg)
	events := pubsub.NewMock()
	machine := intake.New(rosterStore, ledgerStore, metricsSvc, events)
	editor := intake.NewEditor(ledgerStore, metricsSvc, events)
	aggregator := stats.New(ledgerStore, rosterStore, metricsSvc, events)

	server := NewServer(rosterStore, ledgerStore, machine, editor, aggregator, metricsSvc, metricsHandler, cfg, mockNotifier, events)

	teardown := func() {
		if dbTeardown != nil {
			dbTeardown()
		}
	}
	return server, events, teardown
}

// seedMatch registers ten players and commits one match, returning its id.
func seedMatch(t *testing.T, server *Server) string {
	t.Helper()

	teamA := []string{"Rossi", "Bianchi", "Verdi", "Neri", "Gialli"}
	teamB := []string{"Blu", "Viola", "Rosa", "Marrone", "Grigi"}
	require.NoError(t, server.Roster.AddPlayers(testTenant, append(append([]string{}, teamA...), teamB...)))

	matchID, err := server.Ledger.Commit(ledger.Match{
		Tenant: testTenant,
		Date:   "04/04/2024",
		TeamA:  teamA,
		TeamB:  teamB,
		Score:  "5-4",
	}, map[string]int{"Rossi": 2}, nil)
	require.NoError(t, err)
	return matchID
}

func postForm(t *testing.T, server *Server, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()

	req, err := http.NewRequest("POST", target, strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)
	return rr
}

func TestHealthCheckHandler(t *testing.T) {
	server, _, teardown := setupTestServer(t, notifier.NewMock())
	defer teardown()

	req, err := http.NewRequest("GET", "/health", nil)
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code, "handler returned wrong status code")
	assert.Equal(t, "OK!", rr.Body.String(), "handler returned unexpected body")
}

func TestListPlayersHandler_RequiresTenant(t *testing.T) {
	server, _, teardown := setupTestServer(t, notifier.NewMock())
	defer teardown()

	req, err := http.NewRequest("GET", "/players", nil)
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRegisterAndListPlayers(t *testing.T) {
	server, _, teardown := setupTestServer(t, notifier.NewMock())
	defer teardown()

	rr := postForm(t, server, "/players/register", url.Values{
		"tenant": {testTenant},
		"names":  {"Rossi, Bianchi"},
	})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Registered players")

	req, err := http.NewRequest("GET", "/players?tenant="+testTenant, nil)
	require.NoError(t, err)
	rr = httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var players []string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &players))
	assert.Equal(t, []string{"Bianchi", "Rossi"}, players)
}

func TestListMatchesHandler(t *testing.T) {
	server, _, teardown := setupTestServer(t, notifier.NewMock())
	defer teardown()
	seedMatch(t, server)

	req, err := http.NewRequest("GET", "/matches?tenant="+testTenant, nil)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "04/04/2024")
	assert.Contains(t, rr.Body.String(), "5-4")
}

func TestListMatchesHandler_TextFormat(t *testing.T) {
	server, _, teardown := setupTestServer(t, notifier.NewMock())
	defer teardown()
	seedMatch(t, server)

	req, err := http.NewRequest("GET", "/matches?tenant="+testTenant+"&format=text", nil)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Score: 5-4")
}

func TestListMatchesHandler_MessageFormat(t *testing.T) {
	mockNotifier := notifier.NewMock()
	mockNotifier.FormatMatchListResponseFunc = func(tenant string, lines []string) (any, error) {
		require.Len(t, lines, 1)
		assert.Contains(t, lines[0], "Score: 5-4")
		return slack.Message{}, nil
	}
	server, _, teardown := setupTestServer(t, mockNotifier)
	defer teardown()
	seedMatch(t, server)

	req, err := http.NewRequest("GET", "/matches?tenant="+testTenant+"&format=message", nil)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotNil(t, mockNotifier.LastMatchListResponse)
}

func TestMatchesByDateHandler_InvalidDate(t *testing.T) {
	server, _, teardown := setupTestServer(t, notifier.NewMock())
	defer teardown()

	req, err := http.NewRequest("GET", "/matches/by-date?tenant="+testTenant+"&date=not-a-date", nil)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestEditMatchHandler(t *testing.T) {
	server, _, teardown := setupTestServer(t, notifier.NewMock())
	defer teardown()
	matchID := seedMatch(t, server)

	rr := postForm(t, server, "/matches/edit", url.Values{
		"tenant": {testTenant},
		"id":     {matchID},
		"field":  {"score"},
		"value":  {"6-4"},
	})
	assert.Equal(t, http.StatusOK, rr.Code)

	match, err := server.Ledger.GetMatch(testTenant, matchID)
	require.NoError(t, err)
	assert.Equal(t, "6-4", match.Score)
}

func TestEditMatchHandler_UnknownMatch(t *testing.T) {
	server, _, teardown := setupTestServer(t, notifier.NewMock())
	defer teardown()
	seedMatch(t, server)

	rr := postForm(t, server, "/matches/edit", url.Values{
		"tenant": {testTenant},
		"id":     {"no-such-match"},
		"field":  {"score"},
		"value":  {"6-4"},
	})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestEditMatchHandler_DryRun(t *testing.T) {
	server, _, teardown := setupTestServer(t, notifier.NewMock())
	defer teardown()
	matchID := seedMatch(t, server)

	rr := postForm(t, server, "/matches/edit?dry_run=true", url.Values{
		"tenant": {testTenant},
		"id":     {matchID},
		"field":  {"score"},
		"value":  {"6-4"},
	})
	assert.Equal(t, http.StatusOK, rr.Code)

	match, err := server.Ledger.GetMatch(testTenant, matchID)
	require.NoError(t, err)
	assert.Equal(t, "5-4", match.Score, "dry run should not change the match")
}

func TestDeleteMatchHandler(t *testing.T) {
	server, _, teardown := setupTestServer(t, notifier.NewMock())
	defer teardown()
	matchID := seedMatch(t, server)

	rr := postForm(t, server, "/matches/delete", url.Values{
		"tenant": {testTenant},
		"id":     {matchID},
	})
	assert.Equal(t, http.StatusOK, rr.Code)

	// A second delete finds nothing.
	rr = postForm(t, server, "/matches/delete", url.Values{
		"tenant": {testTenant},
		"id":     {matchID},
	})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDeleteMatchHandler_SendsConfirmation(t *testing.T) {
	mockNotifier := notifier.NewMock()
	server, _, teardown := setupTestServer(t, mockNotifier)
	defer teardown()
	matchID := seedMatch(t, server)

	rr := postForm(t, server, "/matches/delete", url.Values{
		"tenant": {testTenant},
		"id":     {matchID},
	})
	assert.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, mockNotifier.SendConfirmationCalls, 1)
	assert.Equal(t, "Match deleted.", mockNotifier.SendConfirmationCalls[0])
}

func TestNotifyMatchListHandler(t *testing.T) {
	mockNotifier := notifier.NewMock()
	server, _, teardown := setupTestServer(t, mockNotifier)
	defer teardown()
	seedMatch(t, server)

	rr := postForm(t, server, "/matches/notify", url.Values{"tenant": {testTenant}})
	assert.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, mockNotifier.SendMatchListCalls, 1)
	assert.Equal(t, testTenant, mockNotifier.SendMatchListCalls[0].Tenant)
	require.Len(t, mockNotifier.SendMatchListCalls[0].Lines, 1)
	assert.Contains(t, mockNotifier.SendMatchListCalls[0].Lines[0], "Score: 5-4")
}

func TestReportHandler(t *testing.T) {
	mockNotifier := notifier.NewMock()
	mockNotifier.FormatReportResponseFunc = func(report *stats.Report) (any, error) {
		return slack.Message{}, nil
	}
	server, _, teardown := setupTestServer(t, mockNotifier)
	defer teardown()
	seedMatch(t, server)

	req, err := http.NewRequest("GET", "/report?tenant="+testTenant, nil)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotNil(t, mockNotifier.LastReportResponse)
}

func TestNotifyReportHandler(t *testing.T) {
	mockNotifier := notifier.NewMock()
	server, _, teardown := setupTestServer(t, mockNotifier)
	defer teardown()
	seedMatch(t, server)

	rr := postForm(t, server, "/report/notify", url.Values{"tenant": {testTenant}})
	assert.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, mockNotifier.SendReportCalls, 1)
	assert.Equal(t, testTenant, mockNotifier.SendReportCalls[0].Tenant)
}

func TestReportPushHandler(t *testing.T) {
	mockNotifier := notifier.NewMock()
	server, _, teardown := setupTestServer(t, mockNotifier)
	defer teardown()
	seedMatch(t, server)

	payload, err := msgpack.Marshal(pubsub.MatchEvent{Tenant: testTenant, MatchID: "some-id"})
	require.NoError(t, err)

	wrapper := map[string]any{
		"subscription": "projects/test/subscriptions/match-events",
		"message": map[string]any{
			"data": base64.StdEncoding.EncodeToString(payload),
		},
	}
	body, err := json.Marshal(wrapper)
	require.NoError(t, err)

	req, err := http.NewRequest("POST", "/pubsub/match-event", bytes.NewReader(body))
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, mockNotifier.SendReportCalls, 1)
	assert.Equal(t, testTenant, mockNotifier.SendReportCalls[0].Tenant)
}

func TestIntakeOverHTTP(t *testing.T) {
	server, _, teardown := setupTestServer(t, notifier.NewMock())
	defer teardown()
	seedMatch(t, server)

	rr := postForm(t, server, "/intake/start", url.Values{"tenant": {testTenant}})
	require.Equal(t, http.StatusOK, rr.Code)

	var started map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &started))
	sessionID := started["session_id"]
	require.NotEmpty(t, sessionID)
	assert.Equal(t, "collect_team_a", started["state"])

	// A four-name lineup is rejected and the state does not advance.
	rr = postForm(t, server, "/intake/message", url.Values{
		"session_id": {sessionID},
		"text":       {"Rossi, Bianchi, Verdi, Neri"},
	})
	require.Equal(t, http.StatusOK, rr.Code)

	var reply intakeReply
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &reply))
	assert.Equal(t, "collect_team_a", reply.State)
	assert.Contains(t, reply.Message, "exactly 5")
}

func TestIntakeStart_NoPlayers(t *testing.T) {
	server, _, teardown := setupTestServer(t, notifier.NewMock())
	defer teardown()

	rr := postForm(t, server, "/intake/start", url.Values{"tenant": {"empty-chat"}})
	require.Equal(t, http.StatusOK, rr.Code)

	var started map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &started))
	assert.Empty(t, started["session_id"])
	assert.Contains(t, started["message"], "No players registered")
}

func TestIntakeMessage_UnknownSession(t *testing.T) {
	server, _, teardown := setupTestServer(t, notifier.NewMock())
	defer teardown()

	rr := postForm(t, server, "/intake/message", url.Values{
		"session_id": {"nope"},
		"text":       {"anything"},
	})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	server, _, teardown := setupTestServer(t, notifier.NewMock())
	defer teardown()

	req, err := http.NewRequest("GET", "/metrics", nil)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "calcetto_matches_committed_total")
}
