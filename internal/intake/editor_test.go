package intake_test

import (
	"errors"
	"testing"

	"github.com/pitchside/calcetto/internal/intake"
	"github.com/pitchside/calcetto/internal/ledger"
	"github.com/pitchside/calcetto/internal/pubsub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupEditor(t *testing.T) (*intake.Editor, ledger.Store, string, func()) {
	t.Helper()

	m, ledgerStore, events, metricsSvc, teardown := setupMachine(t)
	session := runHappyPath(t, m)
	events.Reset()

	editor := intake.NewEditor(ledgerStore, metricsSvc, events)
	return editor, ledgerStore, session.MatchID, teardown
}

func TestFindMatchesValidatesDate(t *testing.T) {
	editor, _, _, teardown := setupEditor(t)
	defer teardown()

	_, err := editor.FindMatches(testTenant, "not a date")
	assert.ErrorIs(t, err, ledger.ErrMalformedRecord)

	matches, err := editor.FindMatches(testTenant, "4/4/2024")
	require.NoError(t, err)
	require.Len(t, matches, 1)

	matches, err = editor.FindMatches(testTenant, "05/04/2024")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestApplyScoreEdit(t *testing.T) {
	editor, ledgerStore, matchID, teardown := setupEditor(t)
	defer teardown()

	require.NoError(t, editor.Apply(testTenant, matchID, ledger.FieldScore, "2-2"))

	match, err := ledgerStore.GetMatch(testTenant, matchID)
	require.NoError(t, err)
	assert.Equal(t, "2-2", match.Score)

	err = editor.Apply(testTenant, matchID, ledger.FieldScore, "two-two")
	assert.ErrorIs(t, err, ledger.ErrMalformedRecord)
}

func TestApplyAssistEditPreservesGoalsAndFlags(t *testing.T) {
	editor, ledgerStore, matchID, teardown := setupEditor(t)
	defer teardown()

	require.NoError(t, editor.Apply(testTenant, matchID, ledger.FieldAssists, "Bianchi:4"))

	perfs, err := ledgerStore.MatchPerformances(testTenant, matchID)
	require.NoError(t, err)
	byName := make(map[string]ledger.Performance)
	for _, p := range perfs {
		byName[p.PlayerName] = p
	}

	assert.Equal(t, 4, byName["Bianchi"].Assists)
	assert.Equal(t, 0, byName["Rossi"].Assists)
	// Goals and outcome flags only depend on the untouched score.
	assert.Equal(t, 2, byName["Rossi"].Goals)
	assert.Equal(t, 1, byName["Rossi"].Win)
	assert.Equal(t, 1, byName["Blu"].Loss)
}

func TestApplyUnknownField(t *testing.T) {
	editor, _, matchID, teardown := setupEditor(t)
	defer teardown()

	err := editor.Apply(testTenant, matchID, ledger.EditField("referee"), "Collina")
	assert.ErrorIs(t, err, ledger.ErrUnknownField)
}

func TestDeleteMatch(t *testing.T) {
	editor, ledgerStore, matchID, teardown := setupEditor(t)
	defer teardown()

	require.NoError(t, editor.Delete(testTenant, matchID))
	assert.ErrorIs(t, editor.Delete(testTenant, matchID), ledger.ErrMatchNotFound)

	matches, err := ledgerStore.Matches(testTenant)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestEditAndDeleteSurviveBrokenPublisher(t *testing.T) {
	m, ledgerStore, events, metricsSvc, teardown := setupMachine(t)
	defer teardown()
	session := runHappyPath(t, m)

	events.SendMessageFunc = func(topic pubsub.EventType, data any) error {
		return errors.New("broker down")
	}
	editor := intake.NewEditor(ledgerStore, metricsSvc, events)

	require.NoError(t, editor.Apply(testTenant, session.MatchID, ledger.FieldScore, "6-4"))
	match, err := ledgerStore.GetMatch(testTenant, session.MatchID)
	require.NoError(t, err)
	assert.Equal(t, "6-4", match.Score)

	require.NoError(t, editor.Delete(testTenant, session.MatchID))
	matches, err := ledgerStore.Matches(testTenant)
	require.NoError(t, err)
	assert.Empty(t, matches)
}
