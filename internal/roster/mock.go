package roster

import (
	"sort"
	"sync"
)

// Mock is an in-memory Store implementation for testing.
// It is safe for concurrent use.
type Mock struct {
	mu      sync.Mutex
	nextID  int64
	players map[string]map[string]int64 // tenant -> name -> id

	// Call records
	AddPlayersCalls []struct {
		Tenant string
		Names  []string
	}

	// Spies
	ListPlayersFunc func(tenant string) ([]string, error)
	AddPlayersFunc  func(tenant string, names []string) error
}

// NewMock creates a new mock roster store.
func NewMock() *Mock {
	return &Mock{players: make(map[string]map[string]int64), nextID: 1}
}

func (m *Mock) ListPlayers(tenant string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListPlayersFunc != nil {
		return m.ListPlayersFunc(tenant)
	}
	var names []string
	for name := range m.players[tenant] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (m *Mock) AddPlayers(tenant string, names []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AddPlayersCalls = append(m.AddPlayersCalls, struct {
		Tenant string
		Names  []string
	}{tenant, names})
	if m.AddPlayersFunc != nil {
		return m.AddPlayersFunc(tenant, names)
	}
	m.add(tenant, names)
	return nil
}

func (m *Mock) PlayerIDs(tenant string, names []string) (map[string]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.add(tenant, names)
	ids := make(map[string]int64, len(names))
	for _, name := range names {
		ids[name] = m.players[tenant][name]
	}
	return ids, nil
}

func (m *Mock) add(tenant string, names []string) {
	if m.players[tenant] == nil {
		m.players[tenant] = make(map[string]int64)
	}
	for _, name := range names {
		if _, ok := m.players[tenant][name]; !ok {
			m.players[tenant][name] = m.nextID
			m.nextID++
		}
	}
}
