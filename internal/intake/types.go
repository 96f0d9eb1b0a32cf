package intake

// State identifies where a match intake dialogue currently is.
// The states advance in strict linear order; every invalid message
// re-prompts the same state and the cancel token is accepted anywhere.
type State string

const (
	StateTeamA     State = "collect_team_a"
	StateTeamB     State = "collect_team_b"
	StateDate      State = "collect_date"
	StateScore     State = "collect_score"
	StateGoals     State = "collect_goals"
	StateAssists   State = "collect_assists"
	StateDone      State = "done"
	StateCancelled State = "cancelled"
)

// Session is the per-dialogue scratch area. It is owned by the caller
// (the conversational front-end) and threaded through every Advance
// call; the machine itself keeps no state between calls.
type Session struct {
	Tenant  string   `json:"tenant"`
	State   State    `json:"state"`
	TeamA   []string `json:"team_a,omitempty"`
	TeamB   []string `json:"team_b,omitempty"`
	Date    string   `json:"date,omitempty"`
	Score   string   `json:"score,omitempty"`
	Goals   string   `json:"goals,omitempty"`
	Assists string   `json:"assists,omitempty"`

	// MatchID is set once the dialogue reaches StateDone.
	MatchID string `json:"match_id,omitempty"`
}

// Finished reports whether the dialogue has reached a terminal state.
func (s *Session) Finished() bool {
	return s.State == StateDone || s.State == StateCancelled
}
