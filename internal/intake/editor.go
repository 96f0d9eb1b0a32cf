package intake

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/pitchside/calcetto/internal/ledger"
	"github.com/pitchside/calcetto/internal/metrics"
	"github.com/pitchside/calcetto/internal/pubsub"
)

// Editor applies single-field edits and deletions to committed
// matches. Goals/assists edits rebuild the match's performance rows
// with the same outcome-flag derivation used at commit time.
type Editor struct {
	ledger  ledger.Store
	metrics metrics.Metrics
	events  pubsub.Client
}

// NewEditor creates a new Editor.
func NewEditor(ledgerStore ledger.Store, metricsSvc metrics.Metrics, events pubsub.Client) *Editor {
	return &Editor{
		ledger:  ledgerStore,
		metrics: metricsSvc,
		events:  events,
	}
}

// FindMatches returns the matches played on the given date. The date
// is validated and normalized first; dates are not unique, so the
// caller picks one id from the result.
func (e *Editor) FindMatches(tenant, dateInput string) ([]ledger.Match, error) {
	date, ok := NormalizeDate(dateInput)
	if !ok {
		return nil, fmt.Errorf("%w: date %q is not of the form dd/mm/yyyy", ledger.ErrMalformedRecord, dateInput)
	}
	return e.ledger.MatchesByDate(tenant, date)
}

// Apply edits one field of one match. Team and score fields overwrite
// the match row directly; goals and assists rebuild all performance
// rows, keeping the metric that is not being edited.
func (e *Editor) Apply(tenant, matchID string, field ledger.EditField, value string) error {
	var err error
	switch field {
	case ledger.FieldTeamA, ledger.FieldTeamB:
		err = e.ledger.UpdateField(tenant, matchID, field, value)
	case ledger.FieldScore:
		if _, _, err = ledger.ParseScore(value); err != nil {
			return err
		}
		err = e.ledger.UpdateField(tenant, matchID, field, value)
	case ledger.FieldGoals, ledger.FieldAssists:
		var counts map[string]int
		if counts, err = ledger.ParseCounts(value); err != nil {
			return err
		}
		err = e.ledger.RebuildPerformances(tenant, matchID, field, counts)
	default:
		err = fmt.Errorf("%w: %s", ledger.ErrUnknownField, field)
	}
	if err != nil {
		return err
	}

	e.metrics.IncMatchesEdited()
	if err := e.events.SendMessage(pubsub.EventMatchEdited, pubsub.MatchEvent{
		Tenant:  tenant,
		MatchID: matchID,
		Field:   string(field),
	}); err != nil {
		log.Warn("Failed to publish match-edited event", "error", err, "matchID", matchID)
	}
	return nil
}

// Delete removes a match and its performance rows.
func (e *Editor) Delete(tenant, matchID string) error {
	if err := e.ledger.Delete(tenant, matchID); err != nil {
		return err
	}

	e.metrics.IncMatchesDeleted()
	if err := e.events.SendMessage(pubsub.EventMatchDeleted, pubsub.MatchEvent{
		Tenant:  tenant,
		MatchID: matchID,
	}); err != nil {
		log.Warn("Failed to publish match-deleted event", "error", err, "matchID", matchID)
	}
	return nil
}
