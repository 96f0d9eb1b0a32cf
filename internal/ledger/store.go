package ledger

import (
	"database/sql"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/pitchside/calcetto/internal/roster"
)

// New creates a new ledger Store. The roster store resolves player
// names to ids when performance rows are written.
func New(db *sql.DB, players roster.Store) Store {
	return &store{
		db:      db,
		players: players,
	}
}

func (s *store) Commit(match Match, goals, assists map[string]int) (string, error) {
	scoreA, scoreB, err := ParseScore(match.Score)
	if err != nil {
		return "", err
	}

	// A lineup naming the same player twice would write two rows for
	// one (match, player) pair and double-count them in every stat.
	for _, side := range [][]string{match.TeamA, match.TeamB} {
		if name, ok := duplicateName(side); ok {
			return "", fmt.Errorf("%w: %q appears more than once in one lineup", ErrMalformedRecord, name)
		}
	}

	ids, err := s.players.PlayerIDs(match.Tenant, match.Roster())
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return "", err
	}

	if match.ID == "" {
		match.ID = uuid.NewString()
	}

	_, err = tx.Exec(
		"INSERT INTO matches (id, tenant, match_date, team_a, team_b, score) VALUES (?, ?, ?, ?, ?, ?)",
		match.ID, match.Tenant, match.Date, joinCSV(match.TeamA), joinCSV(match.TeamB), match.Score,
	)
	if err != nil {
		tx.Rollback()
		return "", fmt.Errorf("failed to insert match: %w", err)
	}

	if err := insertPerformances(tx, &match, ids, goals, assists, scoreA, scoreB); err != nil {
		tx.Rollback()
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	log.Info("Committed match", "matchID", match.ID, "tenant", match.Tenant, "date", match.Date, "score", match.Score)
	return match.ID, nil
}

// insertPerformances writes one row per rostered player within the
// given transaction, team A first, deriving outcome flags from the
// score.
func duplicateName(names []string) (string, bool) {
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			return name, true
		}
		seen[name] = true
	}
	return "", false
}

func insertPerformances(tx *sql.Tx, m *Match, ids map[string]int64, goals, assists map[string]int, scoreA, scoreB int) error {
	stmt, err := tx.Prepare(`
		INSERT INTO performances (match_id, player_id, tenant, team, goals, assists, win, draw, loss)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	sides := []struct {
		team  Team
		names []string
	}{
		{TeamA, m.TeamA},
		{TeamB, m.TeamB},
	}
	for _, side := range sides {
		outcome := DeriveOutcome(scoreA, scoreB, side.team)
		for _, name := range side.names {
			playerID, ok := ids[name]
			if !ok {
				return fmt.Errorf("no player id for %q", name)
			}
			_, err := stmt.Exec(m.ID, playerID, m.Tenant, string(side.team), goals[name], assists[name], outcome.Win, outcome.Draw, outcome.Loss)
			if err != nil {
				return fmt.Errorf("failed to insert performance for %q: %w", name, err)
			}
		}
	}
	return nil
}

// scanMatch is a helper to scan a single match row.
func scanMatch(scanner interface{ Scan(...any) error }) (*Match, error) {
	var m Match
	var teamA, teamB string
	if err := scanner.Scan(&m.ID, &m.Tenant, &m.Date, &teamA, &teamB, &m.Score); err != nil {
		return nil, err
	}
	m.TeamA = splitCSV(teamA)
	m.TeamB = splitCSV(teamB)
	return &m, nil
}

const matchColumns = "id, tenant, match_date, team_a, team_b, score"

func (s *store) Matches(tenant string) ([]Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryMatches("SELECT "+matchColumns+" FROM matches WHERE tenant = ? ORDER BY match_date, id", tenant)
}

func (s *store) MatchesByDate(tenant, date string) ([]Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryMatches("SELECT "+matchColumns+" FROM matches WHERE tenant = ? AND match_date = ? ORDER BY id", tenant, date)
}

func (s *store) queryMatches(query string, args ...any) ([]Match, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		log.Error("Failed to query matches", "error", err)
		return nil, err
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, *m)
	}
	return matches, rows.Err()
}

func (s *store) GetMatch(tenant, id string) (*Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow("SELECT "+matchColumns+" FROM matches WHERE tenant = ? AND id = ?", tenant, id)
	m, err := scanMatch(row)
	if err == sql.ErrNoRows {
		return nil, ErrMatchNotFound
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (s *store) MatchPerformances(tenant, matchID string) ([]Performance, error) {
	return s.queryPerformances(`
		SELECT pf.id, pf.match_id, pf.player_id, pl.name, pf.team, pf.goals, pf.assists, pf.win, pf.draw, pf.loss
		FROM performances pf JOIN players pl ON pf.player_id = pl.id
		WHERE pf.tenant = ? AND pf.match_id = ?
		ORDER BY pf.team, pl.name
	`, tenant, matchID)
}

func (s *store) TenantPerformances(tenant string) ([]Performance, error) {
	return s.queryPerformances(`
		SELECT pf.id, pf.match_id, pf.player_id, pl.name, pf.team, pf.goals, pf.assists, pf.win, pf.draw, pf.loss
		FROM performances pf JOIN players pl ON pf.player_id = pl.id
		WHERE pf.tenant = ?
		ORDER BY pf.id
	`, tenant)
}

func (s *store) queryPerformances(query string, args ...any) ([]Performance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(query, args...)
	if err != nil {
		log.Error("Failed to query performances", "error", err)
		return nil, err
	}
	defer rows.Close()

	var perfs []Performance
	for rows.Next() {
		var p Performance
		var team string
		err := rows.Scan(&p.ID, &p.MatchID, &p.PlayerID, &p.PlayerName, &team, &p.Goals, &p.Assists, &p.Win, &p.Draw, &p.Loss)
		if err != nil {
			return nil, err
		}
		p.Team = Team(team)
		perfs = append(perfs, p)
	}
	return perfs, rows.Err()
}

// UpdateField overwrites one of the directly editable match attributes.
// Performance rows are untouched; a goals/assists edit goes through
// RebuildPerformances instead.
func (s *store) UpdateField(tenant, id string, field EditField, value string) error {
	var query string
	switch field {
	case FieldTeamA:
		query = "UPDATE matches SET team_a = ? WHERE tenant = ? AND id = ?"
		value = joinCSV(splitCSV(value))
	case FieldTeamB:
		query = "UPDATE matches SET team_b = ? WHERE tenant = ? AND id = ?"
		value = joinCSV(splitCSV(value))
	case FieldScore:
		query = "UPDATE matches SET score = ? WHERE tenant = ? AND id = ?"
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(query, value, tenant, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrMatchNotFound
	}
	log.Info("Updated match field", "matchID", id, "tenant", tenant, "field", field)
	return nil
}

func (s *store) RebuildPerformances(tenant, id string, field EditField, counts map[string]int) error {
	if field != FieldGoals && field != FieldAssists {
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}

	match, err := s.GetMatch(tenant, id)
	if err != nil {
		return err
	}
	scoreA, scoreB, err := ParseScore(match.Score)
	if err != nil {
		return err
	}

	// Recover the metric not being edited from the existing rows.
	existing, err := s.MatchPerformances(tenant, id)
	if err != nil {
		return err
	}
	goals := make(map[string]int, len(existing))
	assists := make(map[string]int, len(existing))
	for _, p := range existing {
		goals[p.PlayerName] = p.Goals
		assists[p.PlayerName] = p.Assists
	}
	if field == FieldGoals {
		goals = counts
	} else {
		assists = counts
	}

	ids, err := s.players.PlayerIDs(tenant, match.Roster())
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM performances WHERE tenant = ? AND match_id = ?", tenant, id); err != nil {
		tx.Rollback()
		return err
	}
	if err := insertPerformances(tx, match, ids, goals, assists, scoreA, scoreB); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	log.Info("Rebuilt performances", "matchID", id, "tenant", tenant, "field", field)
	return nil
}

func (s *store) Delete(tenant, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM performances WHERE tenant = ? AND match_id = ?", tenant, id); err != nil {
		tx.Rollback()
		return err
	}
	res, err := tx.Exec("DELETE FROM matches WHERE tenant = ? AND id = ?", tenant, id)
	if err != nil {
		tx.Rollback()
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		tx.Rollback()
		return ErrMatchNotFound
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	log.Info("Deleted match", "matchID", id, "tenant", tenant)
	return nil
}
