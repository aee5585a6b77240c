package session

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wricardo/mcp-training/flota/game/engine"
	"github.com/wricardo/mcp-training/flota/game/service"
)

// Manager handles match session lifecycle
type Manager struct {
	sessions map[int]*service.Session
	counter  atomic.Int64
	mu       sync.RWMutex
}

// NewManager creates a new session manager
func NewManager() *Manager {
	return &Manager{
		sessions: make(map[int]*service.Session),
	}
}

// Create builds a match and registers it under a fresh identifier.
// The identifier is allocated only after the fleet has been placed, so a
// failed creation consumes nothing.
func (m *Manager) Create(rows, columns, ships int, rules *engine.Rules) (*service.Session, error) {
	match, err := engine.NewMatch(rows, columns, ships, rules)
	if err != nil {
		return nil, fmt.Errorf("failed to create match: %w", err)
	}
	if rules == nil {
		rules = engine.DefaultRules()
	}

	id := int(m.counter.Add(1))
	session := service.NewSession(id, match, rules)

	m.mu.Lock()
	m.sessions[id] = session
	m.mu.Unlock()

	return session, nil
}

// Get retrieves a session by ID
func (m *Manager) Get(id int) (*service.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, exists := m.sessions[id]
	if !exists {
		return nil, service.ErrMatchNotFound
	}
	return session, nil
}

// List returns all active sessions ordered by ID
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	m.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// Delete removes a session
func (m *Manager) Delete(id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[id]; !exists {
		return service.ErrMatchNotFound
	}
	delete(m.sessions, id)
	return nil
}

// UpdateLastAccessed updates the last accessed time for a session
func (m *Manager) UpdateLastAccessed(id int) error {
	session, err := m.Get(id)
	if err != nil {
		return err
	}
	session.Touch(time.Now())
	return nil
}

// CleanupExpiredSessions removes sessions that haven't been accessed in the
// given duration and returns their IDs
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) []int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	var removed []int

	for id, session := range m.sessions {
		if session.LastAccessedAt().Before(cutoff) {
			delete(m.sessions, id)
			removed = append(removed, id)
		}
	}

	sort.Ints(removed)
	return removed
}

// Count returns the number of active sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// LastID returns the most recently allocated identifier, 0 before the first match
func (m *Manager) LastID() int {
	return int(m.counter.Load())
}
