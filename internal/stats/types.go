package stats

// Table is one logical report payload: a header row plus data rows,
// ready for an external renderer.
type Table struct {
	Title  string     `json:"title"`
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// PlayerSummary is the aggregate derived for one player from the full
// ledger history.
type PlayerSummary struct {
	Name         string  `json:"name"`
	Presences    int     `json:"presences"`
	Goals        int     `json:"goals"`
	AvgGoals     float64 `json:"avg_goals"`
	Assists      int     `json:"assists"`
	AvgAssists   float64 `json:"avg_assists"`
	Wins         int     `json:"wins"`
	WinPct       string  `json:"win_pct"`
	Draws        int     `json:"draws"`
	DrawPct      string  `json:"draw_pct"`
	Losses       int     `json:"losses"`
	LossPct      string  `json:"loss_pct"`
	TopTeammates string  `json:"top_teammates"`
	TopOpponents string  `json:"top_opponents"`
}

// Report bundles everything handed to the rendering collaborator: the
// per-player summary, the three rankings and the match digest.
type Report struct {
	Tenant       string          `json:"tenant"`
	Players      []PlayerSummary `json:"players"`
	Summary      Table           `json:"summary"`
	TopScorers   Table           `json:"top_scorers"`
	TopAssists   Table           `json:"top_assists"`
	TopPresences Table           `json:"top_presences"`
	Matches      Table           `json:"matches"`
	MatchCount   int             `json:"match_count"`
}
