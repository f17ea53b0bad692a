// Package session owns the lifecycle of one orchestration session: creation,
// queueing, execution wiring, cancellation, and terminal state. The manager
// tracks sessions; the runner builds the per-session orchestrator stack.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/helmsman-ai/helmsman/pkg/config"
	"github.com/helmsman-ai/helmsman/pkg/models"
	"github.com/helmsman-ai/helmsman/pkg/orchestrator"
	"github.com/helmsman-ai/helmsman/pkg/plan"
)

// Status is the externally visible session state.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether the status is final.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// ErrNotRunning is returned when user input arrives before execution started
// or after it ended.
var ErrNotRunning = errors.New("session is not running")

// Session is one orchestration session. The immutable fields are set at
// creation; the mutable state is guarded by the mutex.
type Session struct {
	ID        string
	Task      models.Task
	Config    config.SessionConfig
	CreatedAt time.Time

	mu         sync.Mutex
	status     Status
	errMsg     string
	startedAt  time.Time
	finishedAt time.Time
	cancel     context.CancelFunc
	orch       *orchestrator.Orchestrator
}

// newSession creates a queued session.
func newSession(id string, task models.Task, cfg config.SessionConfig) *Session {
	return &Session{
		ID:        id,
		Task:      task,
		Config:    cfg,
		CreatedAt: time.Now(),
		status:    StatusQueued,
	}
}

// Status returns the current status.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Begin marks the session running and records the cancel function that stops
// it. Called by the worker that claimed the session.
func (s *Session) Begin(cancel context.CancelFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = StatusRunning
	s.startedAt = time.Now()
	s.cancel = cancel
}

// Attach hands the session its orchestrator once the runner has built it.
func (s *Session) Attach(orch *orchestrator.Orchestrator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orch = orch
}

// Finish records the execution outcome: nil completes the session, a
// cancellation error marks it cancelled, anything else marks it failed.
func (s *Session) Finish(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finishedAt = time.Now()
	s.cancel = nil
	switch {
	case err == nil:
		s.status = StatusCompleted
	case errors.Is(err, context.Canceled):
		s.status = StatusCancelled
	default:
		s.status = StatusFailed
		s.errMsg = err.Error()
	}
}

// Cancel stops the session. A queued session is cancelled in place; a running
// one has its context cancelled and reaches terminal state through Finish.
// Returns false when the session is already terminal.
func (s *Session) Cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.status == StatusQueued:
		s.status = StatusCancelled
		s.finishedAt = time.Now()
		return true
	case s.status == StatusRunning && s.cancel != nil:
		s.cancel()
		return true
	default:
		return false
	}
}

// orchestrator returns the attached orchestrator or ErrNotRunning.
func (s *Session) orchestrator() (*orchestrator.Orchestrator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.orch == nil || s.status != StatusRunning {
		return nil, ErrNotRunning
	}
	return s.orch, nil
}

// Approve accepts the currently proposed plan.
func (s *Session) Approve() error {
	orch, err := s.orchestrator()
	if err != nil {
		return err
	}
	return orch.Approve()
}

// EditPlan replaces the plan, which also counts as acceptance.
func (s *Session) EditPlan(p *plan.Plan) error {
	orch, err := s.orchestrator()
	if err != nil {
		return err
	}
	return orch.EditPlan(p)
}

// SubmitMessage delivers follow-up or clarification text from the user.
func (s *Session) SubmitMessage(content string) error {
	orch, err := s.orchestrator()
	if err != nil {
		return err
	}
	return orch.SubmitMessage(content)
}

// Pause suspends execution at the next step boundary.
func (s *Session) Pause() error {
	orch, err := s.orchestrator()
	if err != nil {
		return err
	}
	return orch.Pause()
}

// Resume continues a paused session.
func (s *Session) Resume() error {
	orch, err := s.orchestrator()
	if err != nil {
		return err
	}
	return orch.Resume()
}

// View is the JSON representation of a session returned by the API.
type View struct {
	ID            string                `json:"id"`
	Task          models.Task           `json:"task"`
	Status        Status                `json:"status"`
	Error         string                `json:"error,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
	StartedAt     *time.Time            `json:"started_at,omitempty"`
	FinishedAt    *time.Time            `json:"finished_at,omitempty"`
	Orchestration *orchestrator.Snapshot `json:"orchestration,omitempty"`
}

// View snapshots the session for API consumers.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := View{
		ID:        s.ID,
		Task:      s.Task,
		Status:    s.status,
		Error:     s.errMsg,
		CreatedAt: s.CreatedAt,
	}
	if !s.startedAt.IsZero() {
		t := s.startedAt
		v.StartedAt = &t
	}
	if !s.finishedAt.IsZero() {
		t := s.finishedAt
		v.FinishedAt = &t
	}
	if s.orch != nil {
		snap := s.orch.State()
		v.Orchestration = &snap
	}
	return v
}
