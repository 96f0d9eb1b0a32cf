package roster

// Store defines the interface for the per-tenant player registry.
type Store interface {
	// ListPlayers returns all registered names for a tenant in
	// alphabetical order.
	ListPlayers(tenant string) ([]string, error)
	// AddPlayers upserts the given names. Names already registered for
	// the tenant are silently skipped.
	AddPlayers(tenant string, names []string) error
	// PlayerIDs resolves names to player ids, registering any name not
	// yet present. The returned map has one entry per distinct name.
	PlayerIDs(tenant string, names []string) (map[string]int64, error)
}
