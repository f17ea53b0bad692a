package sentinel

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helmsman-ai/helmsman/pkg/events"
	"github.com/helmsman-ai/helmsman/pkg/llm"
	"github.com/helmsman-ai/helmsman/pkg/models"
	"github.com/helmsman-ai/helmsman/pkg/plan"
	"github.com/helmsman-ai/helmsman/pkg/protocol"
	"github.com/helmsman-ai/helmsman/pkg/team"
)

type fakeAgent struct {
	name  string
	mu    sync.Mutex
	calls int
}

func (a *fakeAgent) Name() string        { return a.name }
func (a *fakeAgent) Description() string { return "monitors things" }

func (a *fakeAgent) Stream(ctx context.Context, messages []models.ChatMessage) (<-chan team.StreamItem, <-chan error) {
	a.mu.Lock()
	a.calls++
	n := a.calls
	a.mu.Unlock()

	items := make(chan team.StreamItem, 1)
	errs := make(chan error)
	items <- team.StreamItem{
		Kind:    team.StreamFinal,
		Message: models.AgentResponseMessage(a.name, fmt.Sprintf("observation %d", n), nil),
	}
	close(items)
	close(errs)
	return items, errs
}

func (a *fakeAgent) callCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

type scriptedClient struct {
	mu        sync.Mutex
	responses []string
	calls     int
}

func (c *scriptedClient) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.calls
	if i >= len(c.responses) {
		i = len(c.responses) - 1
	}
	c.calls++
	return &llm.Response{Content: c.responses[i]}, nil
}

func (c *scriptedClient) SupportsVision() bool { return false }

func conditionJSON(met bool, sleep int) string {
	return fmt.Sprintf(`{"reason": "checked", "condition_met": %t, "sleep_duration_reason": "cadence", "sleep_duration": %d}`, met, sleep)
}

type sleepRecorder struct {
	mu     sync.Mutex
	sleeps []time.Duration
}

func (r *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	r.sleeps = append(r.sleeps, d)
	r.mu.Unlock()
	return ctx.Err()
}

func (r *sleepRecorder) recorded() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Duration(nil), r.sleeps...)
}

type memoryStore struct {
	mu      sync.Mutex
	saves   int
	deletes int
	state   *State
}

func (s *memoryStore) Save(ctx context.Context, state *State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	copied := *state
	s.state = &copied
	return nil
}

func (s *memoryStore) Load(ctx context.Context, sessionID string, stepIndex int) (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil || s.state.SessionID != sessionID || s.state.StepIndex != stepIndex {
		return nil, nil
	}
	copied := *s.state
	return &copied, nil
}

func (s *memoryStore) Delete(ctx context.Context, sessionID string, stepIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes++
	s.state = nil
	return nil
}

func newTestScheduler(t *testing.T, agent *fakeAgent, client llm.Client, opts Options) (*Scheduler, *sleepRecorder) {
	t.Helper()
	registry, err := team.NewRegistry([]team.Agent{agent})
	require.NoError(t, err)

	recorder := &sleepRecorder{}
	opts.SessionID = "sess-1"
	opts.Dispatcher = team.NewDispatcher(registry, nil, 0)
	opts.Caller = protocol.NewCaller(client, protocol.NewBuilder(protocol.LocaleEN, true), 3)
	opts.Bus = events.NewBus()
	if opts.Sleep == nil {
		opts.Sleep = recorder.sleep
	}
	if opts.MinSleepSeconds == 0 {
		opts.MinSleepSeconds = 1
	}
	if opts.MaxSleepSeconds == 0 {
		opts.MaxSleepSeconds = 86400
	}

	scheduler, err := NewScheduler(opts)
	require.NoError(t, err)
	return scheduler, recorder
}

func countStep(count, sleepSeconds int) plan.Step {
	return plan.Step{
		Title:         "watch the build",
		Details:       "Check whether the nightly build finished.",
		AgentName:     "watcher",
		StepType:      plan.StepTypeSentinel,
		SleepDuration: sleepSeconds,
		Condition:     &plan.Condition{Count: count},
	}
}

func textStep(condition string, sleepSeconds int) plan.Step {
	return plan.Step{
		Title:         "watch the stars",
		Details:       "Check the star count of the repository.",
		AgentName:     "watcher",
		StepType:      plan.StepTypeSentinel,
		SleepDuration: sleepSeconds,
		Condition:     &plan.Condition{Text: condition},
	}
}

func TestRunStepCountCondition(t *testing.T) {
	agent := &fakeAgent{name: "watcher"}
	scheduler, recorder := newTestScheduler(t, agent, &scriptedClient{responses: []string{"{}"}}, Options{})

	messages, err := scheduler.RunStep(context.Background(), 0, countStep(5, 30), nil)
	require.NoError(t, err)

	assert.Equal(t, 5, agent.callCount())
	// One sleep between each pair of executions, none after the last.
	assert.Equal(t, []time.Duration{30 * time.Second, 30 * time.Second, 30 * time.Second, 30 * time.Second}, recorder.recorded())
	// Each execution yields the agent response plus an observation note.
	assert.Len(t, messages, 10)
}

func TestRunStepTextConditionAdoptsSuggestedSleeps(t *testing.T) {
	agent := &fakeAgent{name: "watcher"}
	client := &scriptedClient{responses: []string{
		conditionJSON(false, 600),
		conditionJSON(false, 600),
		conditionJSON(false, 300),
		conditionJSON(false, 60),
		conditionJSON(true, 60),
	}}
	scheduler, recorder := newTestScheduler(t, agent, client, Options{})

	_, err := scheduler.RunStep(context.Background(), 0, textStep("stars >= 7000", 600), nil)
	require.NoError(t, err)

	assert.Equal(t, 5, agent.callCount())
	assert.Equal(t, []time.Duration{600 * time.Second, 600 * time.Second, 300 * time.Second, 60 * time.Second}, recorder.recorded())
}

func TestRunStepClampsSuggestedSleeps(t *testing.T) {
	agent := &fakeAgent{name: "watcher"}
	client := &scriptedClient{responses: []string{
		conditionJSON(false, 600),
		conditionJSON(true, 600),
	}}
	scheduler, recorder := newTestScheduler(t, agent, client, Options{MinSleepSeconds: 10, MaxSleepSeconds: 120})

	_, err := scheduler.RunStep(context.Background(), 0, textStep("stars >= 7000", 600), nil)
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{120 * time.Second}, recorder.recorded())
}

func TestRunStepInvalidConditionCheckMeansNotMet(t *testing.T) {
	agent := &fakeAgent{name: "watcher"}
	client := &scriptedClient{responses: []string{
		"this is not json at all",
		"still not json",
		"nope",
		conditionJSON(true, 30),
		conditionJSON(true, 30),
		conditionJSON(true, 30),
	}}
	scheduler, _ := newTestScheduler(t, agent, client, Options{})

	_, err := scheduler.RunStep(context.Background(), 0, textStep("build is green", 5), nil)
	require.NoError(t, err)
	// First round burns all three repair attempts and is treated as not met;
	// the second round's verdict completes the step.
	assert.Equal(t, 2, agent.callCount())
}

func TestRunStepCancellationDuringSleep(t *testing.T) {
	agent := &fakeAgent{name: "watcher"}
	scheduler, err := func() (*Scheduler, error) {
		registry, rerr := team.NewRegistry([]team.Agent{agent})
		require.NoError(t, rerr)
		return NewScheduler(Options{
			SessionID:       "sess-1",
			Dispatcher:      team.NewDispatcher(registry, nil, 0),
			Caller:          protocol.NewCaller(&scriptedClient{responses: []string{"{}"}}, protocol.NewBuilder(protocol.LocaleEN, true), 3),
			Bus:             events.NewBus(),
			MinSleepSeconds: 1,
			MaxSleepSeconds: 86400,
		})
	}()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	messages, rerr := scheduler.RunStep(ctx, 0, countStep(3, 600), nil)
	assert.ErrorIs(t, rerr, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, 1, agent.callCount())
	// The partial observation survives cancellation.
	assert.NotEmpty(t, messages)
}

func TestRunStepCheckpointsAndResumes(t *testing.T) {
	agent := &fakeAgent{name: "watcher"}
	store := &memoryStore{}
	scheduler, _ := newTestScheduler(t, agent, &scriptedClient{responses: []string{"{}"}}, Options{Store: store})

	_, err := scheduler.RunStep(context.Background(), 2, countStep(3, 10), nil)
	require.NoError(t, err)
	assert.Equal(t, 3, store.saves)
	assert.Equal(t, 1, store.deletes)
	assert.Nil(t, store.state)

	// A checkpoint left by a previous run shortens the remaining work.
	store.state = &State{
		SessionID:           "sess-1",
		StepIndex:           2,
		ExecutionsCompleted: 2,
		CurrentSleepSeconds: 10,
	}
	resumed := &fakeAgent{name: "watcher"}
	scheduler2, _ := newTestScheduler(t, resumed, &scriptedClient{responses: []string{"{}"}}, Options{Store: store})
	_, err = scheduler2.RunStep(context.Background(), 2, countStep(3, 10), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, resumed.callCount())
}

func TestRunStepPublishesObservations(t *testing.T) {
	agent := &fakeAgent{name: "watcher"}
	bus := events.NewBus()
	registry, err := team.NewRegistry([]team.Agent{agent})
	require.NoError(t, err)
	recorder := &sleepRecorder{}
	scheduler, err := NewScheduler(Options{
		SessionID:       "sess-1",
		Dispatcher:      team.NewDispatcher(registry, nil, 0),
		Caller:          protocol.NewCaller(&scriptedClient{responses: []string{"{}"}}, protocol.NewBuilder(protocol.LocaleEN, true), 3),
		Bus:             bus,
		MinSleepSeconds: 1,
		MaxSleepSeconds: 86400,
		Sleep:           recorder.sleep,
	})
	require.NoError(t, err)

	_, err = scheduler.RunStep(context.Background(), 0, countStep(2, 10), nil)
	require.NoError(t, err)

	published := bus.Events("sess-1", 0)
	require.Len(t, published, 2)
	for i, ev := range published {
		assert.Equal(t, events.EventTypeSentinelObservation, ev.Type)
		payload, ok := ev.Payload.(events.SentinelObservationPayload)
		require.True(t, ok)
		assert.Equal(t, i+1, payload.Attempt)
	}
	assert.True(t, published[1].Payload.(events.SentinelObservationPayload).ConditionMet)
}
