package conversation

import (
	"context"
	"sync"
	"time"

	"github.com/ziadkadry99/lead-agent/internal/leads"
)

// State is the mutable record of one live conversation.
type State struct {
	Identity  leads.Identity `json:"identity"`
	TurnCount int            `json:"turn_count"`
	Facts     leads.Facts    `json:"facts"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// StateStore holds conversation state keyed by lead identity. Entries are
// created lazily and removed when the conversation terminates.
type StateStore interface {
	// Get returns the state for id, reporting whether it exists.
	Get(ctx context.Context, id leads.Identity) (State, bool, error)
	// GetOrCreate returns the existing state or a fresh empty one.
	GetOrCreate(ctx context.Context, id leads.Identity) (State, error)
	// Update applies fn to the (possibly fresh) state and stores the result.
	// When fn returns an error nothing is written.
	Update(ctx context.Context, id leads.Identity, fn func(*State) error) (State, error)
	// Delete removes the entry; deleting a missing entry is not an error.
	Delete(ctx context.Context, id leads.Identity) error
}

// MemoryStore is a StateStore backed by a map.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[leads.Identity]State
	now     func() time.Time
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[leads.Identity]State), now: time.Now}
}

func (m *MemoryStore) Get(_ context.Context, id leads.Identity) (State, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.entries[id]
	return st, ok, nil
}

func (m *MemoryStore) GetOrCreate(_ context.Context, id leads.Identity) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadLocked(id), nil
}

func (m *MemoryStore) Update(_ context.Context, id leads.Identity, fn func(*State) error) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := m.loadLocked(id)
	if err := fn(&st); err != nil {
		return State{}, err
	}
	st.Identity = id
	st.UpdatedAt = m.now().UTC()
	m.entries[id] = st
	return st, nil
}

func (m *MemoryStore) Delete(_ context.Context, id leads.Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
	return nil
}

// Len returns the number of live conversations.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// loadLocked returns the stored entry or inserts a fresh one. Callers hold m.mu.
func (m *MemoryStore) loadLocked(id leads.Identity) State {
	if st, ok := m.entries[id]; ok {
		return st
	}
	now := m.now().UTC()
	st := State{Identity: id, CreatedAt: now, UpdatedAt: now}
	m.entries[id] = st
	return st
}
