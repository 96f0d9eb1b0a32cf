package intake

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pitchside/calcetto/internal/ledger"
	"github.com/pitchside/calcetto/internal/metrics"
	"github.com/pitchside/calcetto/internal/pubsub"
	"github.com/pitchside/calcetto/internal/roster"
)

const teamSize = 5

const dateLayout = "02/01/2006"

// Machine drives the match intake dialogue. Each Advance call is one
// synchronous state transition: it either mutates the session (and, on
// the final step, the ledger) and returns the next prompt, or returns
// a corrective message without changing state.
type Machine struct {
	roster  roster.Store
	ledger  ledger.Store
	metrics metrics.Metrics
	events  pubsub.Client
}

// New creates a new intake Machine.
func New(rosterStore roster.Store, ledgerStore ledger.Store, metricsSvc metrics.Metrics, events pubsub.Client) *Machine {
	return &Machine{
		roster:  rosterStore,
		ledger:  ledgerStore,
		metrics: metricsSvc,
		events:  events,
	}
}

// IsCancel reports whether a message is the dedicated cancel token,
// accepted in every state.
func IsCancel(msg string) bool {
	m := strings.ToLower(strings.TrimSpace(msg))
	return m == "cancel" || m == "/cancel"
}

// NormalizeDate validates a dd/mm/yyyy date and returns its canonical
// zero-padded form.
func NormalizeDate(input string) (string, bool) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(input))
	if err != nil {
		return "", false
	}
	return t.Format(dateLayout), true
}

// ParseNames splits a comma-separated name list, dropping empty
// entries.
func ParseNames(input string) []string {
	var names []string
	for _, n := range strings.Split(input, ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	return names
}

// Start begins a new intake dialogue for a tenant. It fails when the
// tenant has no registered players yet.
func (m *Machine) Start(tenant string) (*Session, string, error) {
	registered, err := m.roster.ListPlayers(tenant)
	if err != nil {
		return nil, "", err
	}
	if len(registered) == 0 {
		return nil, "No players registered yet. Register players before recording a match.", nil
	}

	m.metrics.IncIntakeSessionsStarted()
	session := &Session{Tenant: tenant, State: StateTeamA}
	prompt := "Enter the 5 players of team A, comma-separated. Registered players:\n" + strings.Join(registered, ", ")
	return session, prompt, nil
}

// Advance feeds one user message to the dialogue and returns the reply
// to show. Validation failures keep the session in its current state;
// store faults are returned as errors and leave both the session and
// the ledger unchanged.
func (m *Machine) Advance(session *Session, input string) (string, error) {
	if session.Finished() {
		return "", fmt.Errorf("session already finished in state %s", session.State)
	}

	if IsCancel(input) {
		m.metrics.IncIntakeCancellations()
		*session = Session{Tenant: session.Tenant, State: StateCancelled}
		return "Operation cancelled.", nil
	}

	switch session.State {
	case StateTeamA:
		return m.collectTeam(session, input, ledger.TeamA)
	case StateTeamB:
		return m.collectTeam(session, input, ledger.TeamB)
	case StateDate:
		return m.collectDate(session, input)
	case StateScore:
		return m.collectScore(session, input)
	case StateGoals:
		return m.collectGoals(session, input)
	case StateAssists:
		return m.collectAssists(session, input)
	default:
		return "", fmt.Errorf("unknown intake state %q", session.State)
	}
}

func (m *Machine) collectTeam(session *Session, input string, team ledger.Team) (string, error) {
	registered, err := m.roster.ListPlayers(session.Tenant)
	if err != nil {
		return "", err
	}
	known := make(map[string]bool, len(registered))
	for _, name := range registered {
		known[name] = true
	}

	names := ParseNames(input)
	var unregistered, duplicated []string
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if !known[name] {
			unregistered = append(unregistered, name)
		}
		if seen[name] {
			duplicated = append(duplicated, name)
		}
		seen[name] = true
	}
	if len(names) != teamSize || len(unregistered) > 0 || len(duplicated) > 0 {
		m.metrics.IncValidationFailures()
		msg := fmt.Sprintf("Team %s must have exactly %d registered players.", team, teamSize)
		if len(unregistered) > 0 {
			msg = fmt.Sprintf("Team %s contains unregistered players: %s.", team, strings.Join(unregistered, ", "))
		}
		if len(duplicated) > 0 {
			msg = fmt.Sprintf("Team %s lists the same player more than once: %s.", team, strings.Join(duplicated, ", "))
		}
		return msg + "\nEnter exactly 5 of the registered players:\n" + strings.Join(registered, ", "), nil
	}

	if team == ledger.TeamA {
		session.TeamA = names
		session.State = StateTeamB
		return "Enter the 5 players of team B, comma-separated:", nil
	}

	// Team B must not share players with team A.
	inA := make(map[string]bool, len(session.TeamA))
	for _, name := range session.TeamA {
		inA[name] = true
	}
	var overlap []string
	for _, name := range names {
		if inA[name] {
			overlap = append(overlap, name)
		}
	}
	if len(overlap) > 0 {
		m.metrics.IncValidationFailures()
		return fmt.Sprintf("A player cannot be on both teams: %s.\nEnter 5 different players for team B:", strings.Join(overlap, ", ")), nil
	}

	session.TeamB = names
	session.State = StateDate
	return "Enter the match date (dd/mm/yyyy):", nil
}

func (m *Machine) collectDate(session *Session, input string) (string, error) {
	date, ok := NormalizeDate(input)
	if !ok {
		m.metrics.IncValidationFailures()
		return "Invalid date format. Enter the date as dd/mm/yyyy (e.g. 04/04/2024):", nil
	}
	session.Date = date
	session.State = StateScore
	return "Enter the final score (e.g. 5-4):", nil
}

func (m *Machine) collectScore(session *Session, input string) (string, error) {
	if _, _, err := ledger.ParseScore(input); err != nil {
		m.metrics.IncValidationFailures()
		return "Invalid score. Enter it as two numbers separated by a dash (e.g. 5-4):", nil
	}
	session.Score = strings.TrimSpace(input)
	session.State = StateGoals
	return "Enter the scorers (e.g. Rossi:2, Bianchi:1, Verdi:2):", nil
}

func (m *Machine) collectGoals(session *Session, input string) (string, error) {
	if _, err := ledger.ParseCounts(input); err != nil {
		m.metrics.IncValidationFailures()
		return "Invalid scorer list. Enter comma-separated name:count pairs (e.g. Rossi:2, Bianchi:1):", nil
	}
	session.Goals = input
	session.State = StateAssists
	return "Enter the assists (e.g. Neri:1, Rossi:2, Verdi:1):", nil
}

func (m *Machine) collectAssists(session *Session, input string) (string, error) {
	assists, err := ledger.ParseCounts(input)
	if err != nil {
		m.metrics.IncValidationFailures()
		return "Invalid assist list. Enter comma-separated name:count pairs (e.g. Neri:1, Rossi:2):", nil
	}
	goals, err := ledger.ParseCounts(session.Goals)
	if err != nil {
		// The goals string was validated on collection; a parse failure
		// here means the session was tampered with.
		return "", err
	}

	// Every name credited with a goal or an assist must be rostered.
	rostered := make(map[string]bool, 2*teamSize)
	for _, name := range append(append([]string{}, session.TeamA...), session.TeamB...) {
		rostered[name] = true
	}
	var badScorers, badAssisters []string
	for name := range goals {
		if !rostered[name] {
			badScorers = append(badScorers, name)
		}
	}
	for name := range assists {
		if !rostered[name] {
			badAssisters = append(badAssisters, name)
		}
	}
	if len(badScorers) > 0 || len(badAssisters) > 0 {
		m.metrics.IncValidationFailures()
		var msg strings.Builder
		if len(badScorers) > 0 {
			fmt.Fprintf(&msg, "These scorers are not in either lineup: %s.\n", strings.Join(badScorers, ", "))
		}
		if len(badAssisters) > 0 {
			fmt.Fprintf(&msg, "These assist-makers are not in either lineup: %s.\n", strings.Join(badAssisters, ", "))
		}
		// Both mappings are resubmitted together, starting from the scorers.
		session.Goals = ""
		session.State = StateGoals
		msg.WriteString("Re-enter the scorers:")
		return msg.String(), nil
	}

	session.Assists = input

	matchID, err := m.ledger.Commit(ledger.Match{
		Tenant: session.Tenant,
		Date:   session.Date,
		TeamA:  session.TeamA,
		TeamB:  session.TeamB,
		Score:  session.Score,
	}, goals, assists)
	if err != nil {
		log.Error("Failed to commit match", "error", err, "tenant", session.Tenant)
		return "", err
	}

	m.metrics.IncMatchesCommitted()
	if err := m.events.SendMessage(pubsub.EventMatchCommitted, pubsub.MatchEvent{
		Tenant:  session.Tenant,
		MatchID: matchID,
		Date:    session.Date,
	}); err != nil {
		log.Warn("Failed to publish match-committed event", "error", err, "matchID", matchID)
	}

	session.MatchID = matchID
	session.State = StateDone
	return "Match saved.", nil
}

// RegisterPlayers handles the one-step player registration dialogue:
// a comma-separated list of names, upserted idempotently.
func (m *Machine) RegisterPlayers(tenant, input string) (string, error) {
	if IsCancel(input) {
		return "Operation cancelled.", nil
	}
	names := ParseNames(input)
	if len(names) == 0 {
		m.metrics.IncValidationFailures()
		return "No valid name provided. Enter one or more names separated by commas:", nil
	}
	if err := m.roster.AddPlayers(tenant, names); err != nil {
		return "", err
	}
	return "Registered players: " + strings.Join(names, ", "), nil
}
