package intake_test

import (
	"errors"
	"testing"

	"github.com/pitchside/calcetto/internal/database"
	"github.com/pitchside/calcetto/internal/intake"
	"github.com/pitchside/calcetto/internal/ledger"
	"github.com/pitchside/calcetto/internal/metrics"
	"github.com/pitchside/calcetto/internal/pubsub"
	"github.com/pitchside/calcetto/internal/roster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTenant = "chat-1"

var registered = []string{
	"Rossi", "Bianchi", "Verdi", "Neri", "Gialli",
	"Blu", "Viola", "Rosa", "Marrone", "Grigi",
}

func setupMachine(t *testing.T) (*intake.Machine, ledger.Store, *pubsub.Mock, *metrics.Mock, func()) {
	t.Helper()

	db, dbTeardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)

	players := roster.New(db)
	require.NoError(t, players.AddPlayers(testTenant, registered))

	ledgerStore := ledger.New(db, players)
	events := pubsub.NewMock()
	metricsSvc := metrics.NewMock()
	machine := intake.New(players, ledgerStore, metricsSvc, events)
	return machine, ledgerStore, events, metricsSvc, dbTeardown
}

// runHappyPath drives a session through every state with valid input.
func runHappyPath(t *testing.T, m *intake.Machine) *intake.Session {
	t.Helper()

	session, prompt, err := m.Start(testTenant)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Contains(t, prompt, "Rossi")

	steps := []string{
		"Rossi, Bianchi, Verdi, Neri, Gialli",
		"Blu, Viola, Rosa, Marrone, Grigi",
		"04/04/2024",
		"5-4",
		"Rossi:2, Bianchi:1, Verdi:2",
		"Neri:1, Rossi:2, Verdi:1",
	}
	for _, input := range steps {
		_, err := m.Advance(session, input)
		require.NoError(t, err)
	}
	return session
}

func TestIntakeHappyPath(t *testing.T) {
	m, ledgerStore, events, metricsSvc, teardown := setupMachine(t)
	defer teardown()

	session := runHappyPath(t, m)
	assert.Equal(t, intake.StateDone, session.State)
	require.NotEmpty(t, session.MatchID)

	match, err := ledgerStore.GetMatch(testTenant, session.MatchID)
	require.NoError(t, err)
	assert.Equal(t, "04/04/2024", match.Date)
	assert.Equal(t, "5-4", match.Score)

	perfs, err := ledgerStore.MatchPerformances(testTenant, session.MatchID)
	require.NoError(t, err)
	assert.Len(t, perfs, 10)

	assert.Equal(t, 1, metricsSvc.MatchesCommitted())
	require.Len(t, events.SendMessageCalls, 1)
	assert.Equal(t, pubsub.EventMatchCommitted, events.SendMessageCalls[0].Topic)
}

func TestStartWithoutPlayers(t *testing.T) {
	m, _, _, _, teardown := setupMachine(t)
	defer teardown()

	session, prompt, err := m.Start("empty-chat")
	require.NoError(t, err)
	assert.Nil(t, session)
	assert.Contains(t, prompt, "No players registered")
}

func TestStartPropagatesStoreFault(t *testing.T) {
	players := roster.NewMock()
	players.ListPlayersFunc = func(tenant string) ([]string, error) {
		return nil, errors.New("db gone")
	}
	m := intake.New(players, nil, metrics.NewMock(), pubsub.NewMock())

	_, _, err := m.Start(testTenant)
	require.Error(t, err)
}

func TestTeamAMustHaveFivePlayers(t *testing.T) {
	m, _, _, metricsSvc, teardown := setupMachine(t)
	defer teardown()

	session, _, err := m.Start(testTenant)
	require.NoError(t, err)

	reply, err := m.Advance(session, "Rossi, Bianchi, Verdi, Neri")
	require.NoError(t, err)
	assert.Contains(t, reply, "exactly 5")
	assert.Equal(t, intake.StateTeamA, session.State)
	assert.Equal(t, 1, metricsSvc.ValidationFailures())
}

func TestTeamRejectsUnregisteredPlayers(t *testing.T) {
	m, _, _, _, teardown := setupMachine(t)
	defer teardown()

	session, _, err := m.Start(testTenant)
	require.NoError(t, err)

	reply, err := m.Advance(session, "Rossi, Bianchi, Verdi, Neri, Sconosciuto")
	require.NoError(t, err)
	assert.Contains(t, reply, "Sconosciuto")
	assert.Equal(t, intake.StateTeamA, session.State)
}

func TestTeamRejectsRepeatedPlayer(t *testing.T) {
	m, _, _, metricsSvc, teardown := setupMachine(t)
	defer teardown()

	session, _, err := m.Start(testTenant)
	require.NoError(t, err)

	reply, err := m.Advance(session, "Rossi, Rossi, Bianchi, Verdi, Neri")
	require.NoError(t, err)
	assert.Contains(t, reply, "more than once")
	assert.Contains(t, reply, "Rossi")
	assert.Equal(t, intake.StateTeamA, session.State)
	assert.Equal(t, 1, metricsSvc.ValidationFailures())
}

func TestTeamBMustBeDisjoint(t *testing.T) {
	m, _, _, _, teardown := setupMachine(t)
	defer teardown()

	session, _, err := m.Start(testTenant)
	require.NoError(t, err)

	_, err = m.Advance(session, "Rossi, Bianchi, Verdi, Neri, Gialli")
	require.NoError(t, err)

	reply, err := m.Advance(session, "Rossi, Viola, Rosa, Marrone, Grigi")
	require.NoError(t, err)
	assert.Contains(t, reply, "Rossi")
	assert.Contains(t, reply, "both teams")
	assert.Equal(t, intake.StateTeamB, session.State)
}

func TestDateAndScoreValidation(t *testing.T) {
	m, _, _, _, teardown := setupMachine(t)
	defer teardown()

	session, _, err := m.Start(testTenant)
	require.NoError(t, err)
	_, err = m.Advance(session, "Rossi, Bianchi, Verdi, Neri, Gialli")
	require.NoError(t, err)
	_, err = m.Advance(session, "Blu, Viola, Rosa, Marrone, Grigi")
	require.NoError(t, err)

	reply, err := m.Advance(session, "2024-04-04")
	require.NoError(t, err)
	assert.Contains(t, reply, "dd/mm/yyyy")
	assert.Equal(t, intake.StateDate, session.State)

	// Single-digit day and month normalize to the canonical form.
	_, err = m.Advance(session, "4/4/2024")
	require.NoError(t, err)
	assert.Equal(t, "04/04/2024", session.Date)
	assert.Equal(t, intake.StateScore, session.State)

	reply, err = m.Advance(session, "five to four")
	require.NoError(t, err)
	assert.Contains(t, reply, "Invalid score")
	assert.Equal(t, intake.StateScore, session.State)

	_, err = m.Advance(session, "5-4")
	require.NoError(t, err)
	assert.Equal(t, intake.StateGoals, session.State)
}

func TestScorerOutsideLineupsIsRejected(t *testing.T) {
	m, ledgerStore, _, _, teardown := setupMachine(t)
	defer teardown()

	session, _, err := m.Start(testTenant)
	require.NoError(t, err)
	for _, input := range []string{
		"Rossi, Bianchi, Verdi, Neri, Gialli",
		"Blu, Viola, Rosa, Marrone, Grigi",
		"04/04/2024",
		"5-4",
		"Fantasma:2",
	} {
		_, err := m.Advance(session, input)
		require.NoError(t, err)
	}

	// Fantasma is registered nowhere near the lineups; the cross-check
	// rejects at the assists step and asks for both mappings again.
	reply, err := m.Advance(session, "Rossi:1")
	require.NoError(t, err)
	assert.Contains(t, reply, "Fantasma")
	assert.Contains(t, reply, "Re-enter the scorers")
	assert.Equal(t, intake.StateGoals, session.State)

	// Nothing was committed.
	matches, err := ledgerStore.Matches(testTenant)
	require.NoError(t, err)
	assert.Empty(t, matches)

	// The corrected pair commits fine.
	_, err = m.Advance(session, "Rossi:2, Bianchi:1, Verdi:2")
	require.NoError(t, err)
	_, err = m.Advance(session, "Neri:1")
	require.NoError(t, err)
	assert.Equal(t, intake.StateDone, session.State)
}

func TestCancelIsAcceptedInEveryState(t *testing.T) {
	m, ledgerStore, _, metricsSvc, teardown := setupMachine(t)
	defer teardown()

	inputs := []string{
		"Rossi, Bianchi, Verdi, Neri, Gialli",
		"Blu, Viola, Rosa, Marrone, Grigi",
		"04/04/2024",
		"5-4",
		"Rossi:2",
	}
	for depth := 0; depth <= len(inputs); depth++ {
		session, _, err := m.Start(testTenant)
		require.NoError(t, err)
		for i := 0; i < depth; i++ {
			_, err := m.Advance(session, inputs[i])
			require.NoError(t, err)
		}
		reply, err := m.Advance(session, "/cancel")
		require.NoError(t, err)
		assert.Contains(t, reply, "cancelled")
		assert.Equal(t, intake.StateCancelled, session.State)
		// Cancellation discards the collected scratch data.
		assert.Empty(t, session.TeamA)
		assert.Empty(t, session.Score)
	}
	assert.Equal(t, 0, metricsSvc.MatchesCommitted())
	matches, err := ledgerStore.Matches(testTenant)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestRegisterPlayers(t *testing.T) {
	m, _, _, _, teardown := setupMachine(t)
	defer teardown()

	reply, err := m.RegisterPlayers("chat-2", "  ,, ")
	require.NoError(t, err)
	assert.Contains(t, reply, "No valid name")

	reply, err = m.RegisterPlayers("chat-2", "Rossi, Bianchi")
	require.NoError(t, err)
	assert.Contains(t, reply, "Rossi")
	assert.Contains(t, reply, "Bianchi")
}
