package checkpoint

import (
	"context"
	"sync"

	"github.com/helmsman-ai/helmsman/pkg/sentinel"
)

type stepKey struct {
	sessionID string
	stepIndex int
}

// MemoryStore is a sentinel.Store kept in process memory, used when no
// database is configured. State does not survive restarts.
type MemoryStore struct {
	mu     sync.Mutex
	states map[stepKey]sentinel.State
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[stepKey]sentinel.State)}
}

// Save stores a copy of the state.
func (s *MemoryStore) Save(_ context.Context, state *sentinel.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *state
	copied.AccumulatedObservations = append([]string(nil), state.AccumulatedObservations...)
	s.states[stepKey{state.SessionID, state.StepIndex}] = copied
	return nil
}

// Load returns a copy of the stored state, or nil when absent.
func (s *MemoryStore) Load(_ context.Context, sessionID string, stepIndex int) (*sentinel.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.states[stepKey{sessionID, stepIndex}]
	if !ok {
		return nil, nil
	}
	copied := state
	copied.AccumulatedObservations = append([]string(nil), state.AccumulatedObservations...)
	return &copied, nil
}

// Delete removes the stored state.
func (s *MemoryStore) Delete(_ context.Context, sessionID string, stepIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, stepKey{sessionID, stepIndex})
	return nil
}
