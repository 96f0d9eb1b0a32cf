package ledger

import (
	"database/sql"
	"strings"
	"sync"

	"github.com/pitchside/calcetto/internal/roster"
)

// Team labels the side a player was on in one match.
type Team string

const (
	TeamA Team = "A"
	TeamB Team = "B"
)

// EditField names a mutable match attribute.
type EditField string

const (
	FieldTeamA   EditField = "team_a"
	FieldTeamB   EditField = "team_b"
	FieldScore   EditField = "score"
	FieldGoals   EditField = "goals"
	FieldAssists EditField = "assists"
)

// Match is one committed game between two five-player rosters.
type Match struct {
	ID     string   `json:"id"`
	Tenant string   `json:"tenant"`
	Date   string   `json:"date"` // dd/mm/yyyy
	TeamA  []string `json:"team_a"`
	TeamB  []string `json:"team_b"`
	Score  string   `json:"score"` // "<goalsA>-<goalsB>"
}

// Roster returns both lineups, team A first.
func (m *Match) Roster() []string {
	all := make([]string, 0, len(m.TeamA)+len(m.TeamB))
	all = append(all, m.TeamA...)
	all = append(all, m.TeamB...)
	return all
}

// Performance is one player's record for one match.
type Performance struct {
	ID         int64  `json:"id"`
	MatchID    string `json:"match_id"`
	PlayerID   int64  `json:"player_id"`
	PlayerName string `json:"player_name"`
	Team       Team   `json:"team"`
	Goals      int    `json:"goals"`
	Assists    int    `json:"assists"`
	Win        int    `json:"win"`
	Draw       int    `json:"draw"`
	Loss       int    `json:"loss"`
}

// store handles all database operations for the match ledger.
type store struct {
	db      *sql.DB
	players roster.Store
	mu      sync.RWMutex
}

func joinCSV(names []string) string {
	return strings.Join(names, ",")
}

func splitCSV(csv string) []string {
	if csv == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
