package ledger

// Outcome holds the mutually exclusive result flags of one performance
// row. Exactly one flag is 1.
type Outcome struct {
	Win  int
	Draw int
	Loss int
}

// DeriveOutcome computes the outcome flags for a player on the given
// team from the final score. It is the single source of truth for the
// flag derivation, shared by the initial commit and the rebuild that
// follows a goals/assists edit.
func DeriveOutcome(scoreA, scoreB int, team Team) Outcome {
	if scoreA == scoreB {
		return Outcome{Draw: 1}
	}
	aWon := scoreA > scoreB
	if (team == TeamA) == aWon {
		return Outcome{Win: 1}
	}
	return Outcome{Loss: 1}
}
