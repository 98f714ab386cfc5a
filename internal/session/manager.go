// Package session holds process-local state for connected principals.
// Sessions are never persisted and never shared across processes; each one
// is created whole on successful login and removed whole on logout.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/yourorg/studioportal/internal/domain"
	"github.com/yourorg/studioportal/internal/observability/metrics"
)

// Session is the state of one authenticated principal. Role and principal
// are always set together; a session is never partially updated.
type Session struct {
	ID        string
	Role      domain.Role
	Studio    *domain.Studio // set for studio sessions
	Client    *domain.Client // set for client sessions
	// LinkedStudio is the resolved studio of a client session, nil for an
	// orphaned reference (branding display is disabled, login still works).
	LinkedStudio *domain.Studio
	CreatedAt    time.Time
}

// Username returns the principal's username for either role.
func (s *Session) Username() string {
	switch s.Role {
	case domain.RoleStudio:
		return s.Studio.Username
	case domain.RoleClient:
		return s.Client.Username
	default:
		return ""
	}
}

// Manager is the in-process session registry.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates an empty session registry.
func NewManager() *Manager {
	return &Manager{sessions: map[string]*Session{}}
}

// CreateStudio registers a session for an authenticated studio.
func (m *Manager) CreateStudio(studio *domain.Studio) *Session {
	sess := &Session{
		ID:        uuid.NewString(),
		Role:      domain.RoleStudio,
		Studio:    studio,
		CreatedAt: time.Now(),
	}
	m.put(sess)
	return sess
}

// CreateClient registers a session for an authenticated client. linked may
// be nil when the client's studio reference is orphaned.
func (m *Manager) CreateClient(client *domain.Client, linked *domain.Studio) *Session {
	sess := &Session{
		ID:           uuid.NewString(),
		Role:         domain.RoleClient,
		Client:       client,
		LinkedStudio: linked,
		CreatedAt:    time.Now(),
	}
	m.put(sess)
	return sess
}

func (m *Manager) put(sess *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.ID] = sess
	metrics.IncrementSessions()
}

// Get returns a live session by ID.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[id]
	return sess, ok
}

// Delete removes a session entirely. Logging out clears everything at once.
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; ok {
		delete(m.sessions, id)
		metrics.DecrementSessions()
	}
}
