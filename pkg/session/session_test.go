package session

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helmsman-ai/helmsman/pkg/config"
	"github.com/helmsman-ai/helmsman/pkg/events"
	"github.com/helmsman-ai/helmsman/pkg/llm"
	"github.com/helmsman-ai/helmsman/pkg/models"
	"github.com/helmsman-ai/helmsman/pkg/team"
)

func testDefaults() config.SessionConfig {
	autonomous := false
	return config.SessionConfig{
		CooperativePlanning:   &autonomous,
		AutonomousExecution:   true,
		MaxStallsBeforeReplan: 3,
		MaxReplans:            3,
		MaxJSONRetries:        3,
		RetrieveRelevantPlans: config.RetrievePlansOff,
		Language:              "en",
	}
}

func TestManagerCreateAndGet(t *testing.T) {
	m := NewManager(testDefaults())

	s, err := m.Create("check the weather", nil, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, StatusQueued, s.Status())
	assert.Equal(t, "check the weather", s.Task.Text)

	got, ok := m.Get(s.ID)
	require.True(t, ok)
	assert.Same(t, s, got)

	_, ok = m.Get("missing")
	assert.False(t, ok)
	assert.Equal(t, 1, m.Count())
}

func TestManagerCreateRejectsEmptyTask(t *testing.T) {
	m := NewManager(testDefaults())
	_, err := m.Create("   ", nil, nil)
	require.Error(t, err)
}

func TestManagerCreateMergesOverrides(t *testing.T) {
	defaults := testDefaults()
	defaults.MaxReplans = 5
	m := NewManager(defaults)

	s, err := m.Create("task", nil, &config.SessionConfig{MaxStallsBeforeReplan: 7})
	require.NoError(t, err)
	assert.Equal(t, 7, s.Config.MaxStallsBeforeReplan)
	// Unset override fields keep the server defaults.
	assert.Equal(t, 5, s.Config.MaxReplans)
	assert.Equal(t, "en", s.Config.Language)
}

func TestManagerCreateRejectsInvalidOverrides(t *testing.T) {
	m := NewManager(testDefaults())
	_, err := m.Create("task", nil, &config.SessionConfig{RetrieveRelevantPlans: "sometimes"})
	require.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestManagerRemoveKeepsLiveSessions(t *testing.T) {
	m := NewManager(testDefaults())
	s, err := m.Create("task", nil, nil)
	require.NoError(t, err)

	assert.False(t, m.Remove(s.ID), "queued session must not be removable")

	s.Finish(nil)
	assert.True(t, m.Remove(s.ID))
	_, ok := m.Get(s.ID)
	assert.False(t, ok)
}

func TestSessionLifecycle(t *testing.T) {
	s := newSession("sess-1", models.NewTask("sess-1", "task", nil), testDefaults())
	assert.Equal(t, StatusQueued, s.Status())

	_, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Begin(cancel)
	assert.Equal(t, StatusRunning, s.Status())

	s.Finish(nil)
	assert.Equal(t, StatusCompleted, s.Status())

	v := s.View()
	assert.NotNil(t, v.StartedAt)
	assert.NotNil(t, v.FinishedAt)
	assert.Empty(t, v.Error)
}

func TestSessionFinishMapsErrors(t *testing.T) {
	s := newSession("a", models.NewTask("a", "task", nil), testDefaults())
	s.Finish(fmt.Errorf("agent exploded"))
	assert.Equal(t, StatusFailed, s.Status())
	assert.Equal(t, "agent exploded", s.View().Error)

	s = newSession("b", models.NewTask("b", "task", nil), testDefaults())
	s.Finish(context.Canceled)
	assert.Equal(t, StatusCancelled, s.Status())
}

func TestSessionCancelQueued(t *testing.T) {
	s := newSession("sess-1", models.NewTask("sess-1", "task", nil), testDefaults())
	assert.True(t, s.Cancel())
	assert.Equal(t, StatusCancelled, s.Status())
	// A second cancel is a no-op.
	assert.False(t, s.Cancel())
}

func TestSessionCancelRunning(t *testing.T) {
	s := newSession("sess-1", models.NewTask("sess-1", "task", nil), testDefaults())
	ctx, cancel := context.WithCancel(context.Background())
	s.Begin(cancel)

	assert.True(t, s.Cancel())
	assert.Error(t, ctx.Err(), "cancel must cancel the session context")
}

func TestSessionInputBeforeRunFails(t *testing.T) {
	s := newSession("sess-1", models.NewTask("sess-1", "task", nil), testDefaults())
	assert.ErrorIs(t, s.Approve(), ErrNotRunning)
	assert.ErrorIs(t, s.SubmitMessage("hello"), ErrNotRunning)
	assert.ErrorIs(t, s.Pause(), ErrNotRunning)
}

// --- runner tests ---

type directAnswerClient struct {
	mu    sync.Mutex
	calls int
}

func (c *directAnswerClient) Complete(ctx context.Context, _ llm.Request) (*llm.Response, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return &llm.Response{
		Content: `{"task": "t", "plan_summary": "", "needs_plan": false, "response": "42", "steps": []}`,
	}, nil
}

func (c *directAnswerClient) SupportsVision() bool { return false }

type idleAgent struct{ name string }

func (a *idleAgent) Name() string        { return a.name }
func (a *idleAgent) Description() string { return a.name }

func (a *idleAgent) Stream(_ context.Context, _ []models.ChatMessage) (<-chan team.StreamItem, <-chan error) {
	items := make(chan team.StreamItem, 1)
	errs := make(chan error)
	items <- team.StreamItem{
		Kind:    team.StreamFinal,
		Message: models.AgentResponseMessage(a.name, "done", nil),
	}
	close(items)
	close(errs)
	return items, errs
}

func newTestRunner(t *testing.T, bus *events.Bus) *Runner {
	t.Helper()
	r, err := NewRunner(RunnerOptions{
		Client: &directAnswerClient{},
		Model:  "gpt-4o",
		Bus:    bus,
		Agents: func(_ context.Context, _ *Session) ([]team.Agent, error) {
			return []team.Agent{&idleAgent{name: "web_surfer"}}, nil
		},
	})
	require.NoError(t, err)
	return r
}

func TestRunnerExecutesSessionToCompletion(t *testing.T) {
	bus := events.NewBus()
	r := newTestRunner(t, bus)

	s := newSession("sess-1", models.NewTask("sess-1", "what is 6*7", nil), testDefaults())
	s.Begin(func() {})

	require.NoError(t, r.Execute(context.Background(), s))

	// The orchestrator was attached and reached a terminal answer.
	v := s.View()
	require.NotNil(t, v.Orchestration)

	var answered bool
	for _, evt := range bus.Events("sess-1", 0) {
		if evt.Type == events.EventTypeFinalAnswer {
			answered = true
		}
	}
	assert.True(t, answered, "expected a final answer event")
}

func TestRunnerFailsWhenAgentFactoryFails(t *testing.T) {
	bus := events.NewBus()
	r, err := NewRunner(RunnerOptions{
		Client: &directAnswerClient{},
		Bus:    bus,
		Agents: func(_ context.Context, _ *Session) ([]team.Agent, error) {
			return nil, fmt.Errorf("no agents available")
		},
	})
	require.NoError(t, err)

	s := newSession("sess-1", models.NewTask("sess-1", "task", nil), testDefaults())
	err = r.Execute(context.Background(), s)
	require.Error(t, err)

	seen := bus.Events("sess-1", 0)
	require.NotEmpty(t, seen)
	last := seen[len(seen)-1]
	assert.Equal(t, events.EventTypeSessionStatus, last.Type)
	payload, ok := last.Payload.(events.SessionStatusPayload)
	require.True(t, ok)
	assert.Equal(t, events.SessionStatusFailed, payload.Status)
}

type failingContainers struct{}

func (f *failingContainers) EnsureRunning(context.Context) error { return fmt.Errorf("daemon gone") }

func TestRunnerContainerFailureIsTerminal(t *testing.T) {
	bus := events.NewBus()
	r, err := NewRunner(RunnerOptions{
		Client: &directAnswerClient{},
		Bus:    bus,
		Agents: func(_ context.Context, _ *Session) ([]team.Agent, error) {
			return []team.Agent{&idleAgent{name: "web_surfer"}}, nil
		},
		Containers: &failingContainers{},
	})
	require.NoError(t, err)

	s := newSession("sess-1", models.NewTask("sess-1", "task", nil), testDefaults())
	err = r.Execute(context.Background(), s)
	require.Error(t, err)
	assert.Nil(t, s.View().Orchestration, "execution must not start without the container")
}

type countingContainers struct {
	mu      sync.Mutex
	ensures int
}

func (c *countingContainers) EnsureRunning(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensures++
	return nil
}

func (c *countingContainers) ensureCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ensures
}

func TestRunnerSharesContainerAcrossSessions(t *testing.T) {
	bus := events.NewBus()
	containers := &countingContainers{}
	r, err := NewRunner(RunnerOptions{
		Client: &directAnswerClient{},
		Model:  "gpt-4o",
		Bus:    bus,
		Agents: func(_ context.Context, _ *Session) ([]team.Agent, error) {
			return []team.Agent{&idleAgent{name: "web_surfer"}}, nil
		},
		Containers: containers,
	})
	require.NoError(t, err)

	// The container must stay up between sessions: only EnsureRunning is in
	// the runner's contract, a session finishing never takes it down.
	for _, id := range []string{"sess-1", "sess-2"} {
		s := newSession(id, models.NewTask(id, "task", nil), testDefaults())
		s.Begin(func() {})
		require.NoError(t, r.Execute(context.Background(), s))
		s.Finish(nil)
	}
	assert.Equal(t, 2, containers.ensureCount())
}
