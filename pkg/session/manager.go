package session

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"dario.cat/mergo"
	"github.com/google/uuid"

	"github.com/helmsman-ai/helmsman/pkg/config"
	"github.com/helmsman-ai/helmsman/pkg/models"
)

// Manager tracks every session the server knows about. Sessions are kept in
// memory for the lifetime of the process.
type Manager struct {
	defaults config.SessionConfig

	mu       sync.RWMutex
	sessions map[string]*Session

	logger *slog.Logger
}

// NewManager creates a manager with the server-wide session defaults.
func NewManager(defaults config.SessionConfig) *Manager {
	return &Manager{
		defaults: defaults,
		sessions: make(map[string]*Session),
		logger:   slog.With("component", "session.manager"),
	}
}

// Create registers a new queued session for the task. overrides, when
// non-nil, is merged over the server defaults so callers only set what they
// want changed.
func (m *Manager) Create(text string, attachments []models.Attachment, overrides *config.SessionConfig) (*Session, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("task text is empty")
	}

	cfg := m.defaults
	if overrides != nil {
		merged := *overrides
		if err := mergo.Merge(&merged, m.defaults); err != nil {
			return nil, fmt.Errorf("merge session config: %w", err)
		}
		if err := merged.Validate(); err != nil {
			return nil, err
		}
		cfg = merged
	}

	id := uuid.New().String()
	task := models.NewTask(id, text, attachments)
	s := newSession(id, task, cfg)

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()

	m.logger.Info("Session created", "session_id", id, "task_len", len(text))
	return s, nil
}

// Get returns the session by ID.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// List returns all sessions, newest first.
func (m *Manager) List() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// Remove forgets a terminal session. Running or queued sessions are kept.
func (m *Manager) Remove(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok || !s.Status().Terminal() {
		return false
	}
	delete(m.sessions, id)
	return true
}

// Count returns the number of tracked sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
