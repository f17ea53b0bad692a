package orchestrator

import (
	"sync"

	"github.com/helmsman-ai/helmsman/pkg/models"
	"github.com/helmsman-ai/helmsman/pkg/plan"
)

// Phase is the orchestrator's lifecycle state.
type Phase string

const (
	PhaseAwaitingTask Phase = "awaiting_task"
	PhasePlanning     Phase = "planning"
	PhaseExecuting    Phase = "executing"
	PhaseReplanning   Phase = "replanning"
	PhaseFinalizing   Phase = "finalizing"
	PhaseTerminal     Phase = "terminal"
)

// state is the mutable orchestration state. It is owned by the Run goroutine;
// the mutex only guards the Snapshot reads taken by API handlers.
type state struct {
	mu sync.Mutex

	phase        Phase
	plan         *plan.Plan
	stepIndex    int
	stepAttempts int
	replanCount  int
	transcript   []models.ChatMessage
	usage        models.TokenUsage
}

// Snapshot is a read-only copy of the orchestration state for API consumers.
type Snapshot struct {
	Phase        Phase             `json:"phase"`
	Plan         *plan.Plan        `json:"plan,omitempty"`
	StepIndex    int               `json:"step_index"`
	StepAttempts int               `json:"step_attempts"`
	ReplanCount  int               `json:"replan_count"`
	Usage        models.TokenUsage `json:"usage"`
}

func (s *state) setPhase(p Phase) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = p
}

func (s *state) setPlan(p *plan.Plan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plan = p
}

func (s *state) setStep(index, attempts int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stepIndex = index
	s.stepAttempts = attempts
}

func (s *state) bumpReplans() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replanCount++
	return s.replanCount
}

func (s *state) append(messages ...models.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = append(s.transcript, messages...)
}

func (s *state) addUsage(u models.TokenUsage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.usage.Add(u)
}

// messages returns a copy of the transcript.
func (s *state) messages() []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ChatMessage, len(s.transcript))
	copy(out, s.transcript)
	return out
}

func (s *state) snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Phase:        s.phase,
		Plan:         s.plan,
		StepIndex:    s.stepIndex,
		StepAttempts: s.stepAttempts,
		ReplanCount:  s.replanCount,
		Usage:        s.usage,
	}
}
