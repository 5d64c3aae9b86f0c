package nav

import (
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/madrasahub/madrasa/core/session"
)

var ErrNoState = errors.New("navigation state not found")

// Manager keeps per-client navigation state in memory, keyed by the nav id
// carried in the auth token. State is ephemeral: a server restart logs
// everyone out, which matches the product's session model.
type Manager struct {
	mutex  sync.RWMutex
	states map[string]*State
}

func NewManager() *Manager {
	return &Manager{states: make(map[string]*State)}
}

// Start registers a fresh state for a resolved session, already navigated to
// the role's home page, and returns its id.
func (m *Manager) Start(sess session.Session) string {
	state := NewState(sess)
	_ = state.NavigateTo(HomeFor(sess.Role))

	m.mutex.Lock()
	defer m.mutex.Unlock()
	id := uuid.NewString()
	m.states[id] = state
	return id
}

// Get returns a copy of the state; the live state only changes under the
// write lock in Update.
func (m *Manager) Get(id string) (State, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	state, ok := m.states[id]
	if !ok {
		return State{}, ErrNoState
	}
	return state.snapshot(), nil
}

// Update runs fn against the state under the write lock and returns a copy
// taken before the lock is released, so concurrent requests on the same nav
// id cannot race the caller's reads.
func (m *Manager) Update(id string, fn func(*State) error) (State, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	state, ok := m.states[id]
	if !ok {
		return State{}, ErrNoState
	}
	if err := fn(state); err != nil {
		return State{}, err
	}
	return state.snapshot(), nil
}

func (m *Manager) Remove(id string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.states, id)
}
