package conversation

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Store keeps one State per session. Each State is owned by its session;
// nothing is shared across sessions.
type Store interface {
	// Create starts an empty session and returns its ID.
	Create(ctx context.Context) (string, *State, error)

	// Get loads a session. Returns SESSION_NOT_FOUND for unknown IDs.
	Get(ctx context.Context, id string) (*State, error)

	// Save persists the session's state.
	Save(ctx context.Context, id string, state *State) error

	// Delete removes a session. Deleting an unknown ID is not an error.
	Delete(ctx context.Context, id string) error
}

// MemoryStore keeps sessions in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*State
	newState func() *State
}

// NewMemoryStore creates a store whose sessions are built with opts.
func NewMemoryStore(opts ...Option) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*State),
		newState: func() *State { return NewState(opts...) },
	}
}

// Create starts a new session.
func (m *MemoryStore) Create(ctx context.Context) (string, *State, error) {
	id := uuid.New().String()
	st := m.newState()

	m.mu.Lock()
	m.sessions[id] = st
	m.mu.Unlock()
	return id, st, nil
}

// Get returns the live State of a session.
func (m *MemoryStore) Get(ctx context.Context, id string) (*State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	st, ok := m.sessions[id]
	if !ok {
		return nil, NewSessionNotFoundError(id)
	}
	return st, nil
}

// Save stores state under id.
func (m *MemoryStore) Save(ctx context.Context, id string, state *State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return NewSessionNotFoundError(id)
	}
	m.sessions[id] = state
	return nil
}

// Delete removes a session.
func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

var _ Store = (*MemoryStore)(nil)
