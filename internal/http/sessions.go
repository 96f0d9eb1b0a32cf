package http

import (
	"sync"

	"github.com/google/uuid"
	"github.com/pitchside/calcetto/internal/intake"
)

// sessionRegistry keeps the live intake dialogues, keyed by an opaque
// session id handed to the client on start. Sessions are removed once
// they reach a terminal state.
type sessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*intake.Session
}

func newSessionRegistry() *sessionRegistry {
	return &sessionRegistry{sessions: make(map[string]*intake.Session)}
}

func (r *sessionRegistry) add(session *intake.Session) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := uuid.NewString()
	r.sessions[id] = session
	return id
}

func (r *sessionRegistry) get(id string) (*intake.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	return session, ok
}

func (r *sessionRegistry) remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}
