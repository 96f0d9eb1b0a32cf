package ledger

// Store defines the interface for the committed-match ledger.
//
// Commit, UpdateField, RebuildPerformances and Delete are atomic per
// match: either the match row and all of its performance rows are
// written, or nothing is.
type Store interface {
	// Commit persists a match and one performance row per rostered
	// player, deriving the outcome flags from the score. It returns the
	// new match id.
	Commit(match Match, goals, assists map[string]int) (string, error)

	// Matches returns every committed match for the tenant, ordered by
	// date.
	Matches(tenant string) ([]Match, error)
	// MatchesByDate returns the matches played on a normalized
	// dd/mm/yyyy date. Dates are not unique per tenant.
	MatchesByDate(tenant, date string) ([]Match, error)
	// GetMatch returns one match or ErrMatchNotFound.
	GetMatch(tenant, id string) (*Match, error)

	// MatchPerformances returns a match's rows ordered by team then
	// player name.
	MatchPerformances(tenant, matchID string) ([]Performance, error)
	// TenantPerformances returns every performance row of the tenant in
	// insertion order.
	TenantPerformances(tenant string) ([]Performance, error)

	// UpdateField overwrites a match's team_a, team_b or score field in
	// place without touching performance rows.
	UpdateField(tenant, id string, field EditField, value string) error
	// RebuildPerformances replaces all of a match's performance rows,
	// applying the supplied mapping to the edited metric and keeping the
	// recovered values of the other one. Outcome flags are re-derived
	// from the stored score.
	RebuildPerformances(tenant, id string, field EditField, counts map[string]int) error
	// Delete removes a match and its performance rows, returning
	// ErrMatchNotFound when the id does not exist.
	Delete(tenant, id string) error
}
