package roster

import (
	"database/sql"
	"fmt"

	"github.com/charmbracelet/log"
)

// New creates a new roster Store backed by the given database.
func New(db *sql.DB) Store {
	return &store{
		db: db,
	}
}

func (s *store) ListPlayers(tenant string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT name FROM players WHERE tenant = ? ORDER BY name", tenant)
	if err != nil {
		log.Error("Failed to query players", "error", err, "tenant", tenant)
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// AddPlayers is an idempotent upsert: a name already registered for the
// tenant is skipped without error.
func (s *store) AddPlayers(tenant string, names []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare("INSERT INTO players (tenant, name) VALUES (?, ?) ON CONFLICT(tenant, name) DO NOTHING")
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, name := range names {
		if _, err := stmt.Exec(tenant, name); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to add player %q: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	log.Debug("Registered players", "tenant", tenant, "count", len(names))
	return nil
}

func (s *store) PlayerIDs(tenant string, names []string) (map[string]int64, error) {
	if err := s.AddPlayers(tenant, names); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make(map[string]int64, len(names))
	for _, name := range names {
		if _, ok := ids[name]; ok {
			continue
		}
		var id int64
		err := s.db.QueryRow("SELECT id FROM players WHERE tenant = ? AND name = ?", tenant, name).Scan(&id)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve player %q: %w", name, err)
		}
		ids[name] = id
	}
	return ids, nil
}
