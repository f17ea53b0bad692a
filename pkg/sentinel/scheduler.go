// Package sentinel runs long-lived monitoring plan steps: it repeatedly
// dispatches a step's instruction to its agent, judges the completion
// condition after each execution, and sleeps between polls. Sleeps are
// cooperative and cancellation aborts them promptly.
package sentinel

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/helmsman-ai/helmsman/pkg/events"
	"github.com/helmsman-ai/helmsman/pkg/llm"
	"github.com/helmsman-ai/helmsman/pkg/models"
	"github.com/helmsman-ai/helmsman/pkg/plan"
	"github.com/helmsman-ai/helmsman/pkg/protocol"
	"github.com/helmsman-ai/helmsman/pkg/team"
)

// SleepFunc waits for the given duration or until the context is done. Tests
// substitute a simulated clock.
type SleepFunc func(ctx context.Context, d time.Duration) error

// realSleep is the production SleepFunc.
func realSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Options wires a scheduler.
type Options struct {
	SessionID  string
	Dispatcher *team.Dispatcher
	Caller     *protocol.Caller
	Bus        *events.Bus

	// MinSleepSeconds and MaxSleepSeconds clamp every sleep, including
	// model-suggested durations for text conditions.
	MinSleepSeconds int
	MaxSleepSeconds int

	// Store checkpoints state after every execution; nil disables
	// persistence.
	Store Store

	// Sleep overrides the wait implementation; nil selects real sleeping.
	Sleep SleepFunc
}

// Scheduler executes sentinel steps sequentially, one at a time.
type Scheduler struct {
	sessionID  string
	dispatcher *team.Dispatcher
	caller     *protocol.Caller
	bus        *events.Bus
	minSleep   int
	maxSleep   int
	store      Store
	sleep      SleepFunc
	logger     *slog.Logger
}

// NewScheduler creates a scheduler for one session.
func NewScheduler(opts Options) (*Scheduler, error) {
	if opts.Dispatcher == nil || opts.Caller == nil || opts.Bus == nil {
		return nil, fmt.Errorf("dispatcher, caller, and bus are required")
	}
	sleep := opts.Sleep
	if sleep == nil {
		sleep = realSleep
	}
	maxSleep := opts.MaxSleepSeconds
	if maxSleep <= 0 {
		maxSleep = 86400
	}
	return &Scheduler{
		sessionID:  opts.SessionID,
		dispatcher: opts.Dispatcher,
		caller:     opts.Caller,
		bus:        opts.Bus,
		minSleep:   opts.MinSleepSeconds,
		maxSleep:   maxSleep,
		store:      opts.Store,
		sleep:      sleep,
		logger:     slog.With("component", "sentinel", "session_id", opts.SessionID),
	}, nil
}

// RunStep drives one sentinel step until its condition holds or the context
// is cancelled. It returns the transcript messages produced along the way;
// on cancellation the partial messages are returned with the context error.
func (s *Scheduler) RunStep(ctx context.Context, stepIndex int, step plan.Step, history []models.ChatMessage) ([]models.ChatMessage, error) {
	if step.Condition == nil {
		return nil, fmt.Errorf("sentinel step %d has no condition", stepIndex)
	}

	state := s.resumeOrStart(ctx, stepIndex, step)
	logger := s.logger.With("step_index", stepIndex, "condition", step.Condition.String())
	logger.Info("Sentinel step started",
		"executions_completed", state.ExecutionsCompleted,
		"sleep_seconds", state.CurrentSleepSeconds)

	var produced []models.ChatMessage
	for {
		response, err := s.execute(ctx, stepIndex, step, history, produced)
		if err != nil {
			return produced, err
		}
		produced = append(produced, response)
		state.ExecutionsCompleted++

		met, reason, err := s.judge(ctx, step, state, response.Content)
		if err != nil {
			return produced, err
		}
		state.LastCheckResult = met
		state.NextWakeTime = time.Now().Add(time.Duration(state.CurrentSleepSeconds) * time.Second)

		observation := fmt.Sprintf("Sentinel check %d: condition %s. %s",
			state.ExecutionsCompleted, metWord(met), reason)
		state.AccumulatedObservations = append(state.AccumulatedObservations, observation)
		produced = append(produced, models.ThoughtMessage("sentinel", observation))

		s.bus.Publish(s.sessionID, events.EventTypeSentinelObservation, events.SentinelObservationPayload{
			StepIndex:        stepIndex,
			Attempt:          state.ExecutionsCompleted,
			Observation:      response.Content,
			ConditionMet:     met,
			Reason:           reason,
			NextSleepSeconds: state.CurrentSleepSeconds,
		})
		s.checkpoint(ctx, state)

		if met {
			logger.Info("Sentinel condition satisfied", "executions", state.ExecutionsCompleted)
			s.discard(ctx, stepIndex)
			return produced, nil
		}

		logger.Debug("Sentinel condition not met, sleeping", "sleep_seconds", state.CurrentSleepSeconds)
		if err := s.sleep(ctx, time.Duration(state.CurrentSleepSeconds)*time.Second); err != nil {
			return produced, err
		}
	}
}

// execute runs one agent turn with the step's details as the instruction.
func (s *Scheduler) execute(ctx context.Context, stepIndex int, step plan.Step, history, produced []models.ChatMessage) (models.ChatMessage, error) {
	envelope := s.caller.Builder().InstructionEnvelope(stepIndex, step.Title, step.Details, step.AgentName, step.Details)
	messages := make([]models.ChatMessage, 0, len(history)+len(produced)+1)
	messages = append(messages, history...)
	messages = append(messages, produced...)
	messages = append(messages, models.TextMessage("orchestrator", envelope))

	result, err := s.dispatcher.Dispatch(ctx, step.AgentName, messages)
	if err != nil {
		return models.ChatMessage{}, err
	}
	return result.Response, nil
}

// judge decides whether the step's condition holds after the latest
// execution. For text conditions it also adopts the model-suggested sleep,
// clamped to the configured bounds.
func (s *Scheduler) judge(ctx context.Context, step plan.Step, state *State, response string) (met bool, reason string, err error) {
	cond := *step.Condition
	if cond.IsCount() {
		met = state.ExecutionsCompleted >= cond.Count
		return met, fmt.Sprintf("%d of %d executions completed", state.ExecutionsCompleted, cond.Count), nil
	}

	checkHistory := []llm.Message{llm.UserMessage("Latest agent response:\n" + response)}
	check, _, err := s.caller.CheckCondition(ctx, checkHistory, step.Details, cond.Text, state.CurrentSleepSeconds)
	if err != nil {
		if ctx.Err() != nil {
			return false, "", ctx.Err()
		}
		// An unusable verdict is treated as "not met"; polling continues at
		// the current cadence.
		s.logger.Warn("Condition check failed, assuming not met", "error", err)
		return false, "condition check failed; will retry", nil
	}

	if check.SleepDuration > 0 {
		state.CurrentSleepSeconds = s.clamp(check.SleepDuration)
	}
	return check.Met(), check.Reason, nil
}

// resumeOrStart loads a checkpoint for the step or initializes fresh state.
func (s *Scheduler) resumeOrStart(ctx context.Context, stepIndex int, step plan.Step) *State {
	if s.store != nil {
		saved, err := s.store.Load(ctx, s.sessionID, stepIndex)
		if err != nil {
			s.logger.Warn("Failed to load sentinel checkpoint, starting fresh", "error", err)
		} else if saved != nil {
			return saved
		}
	}
	return &State{
		SessionID:           s.sessionID,
		StepIndex:           stepIndex,
		CurrentSleepSeconds: s.clamp(step.SleepDuration),
	}
}

func (s *Scheduler) checkpoint(ctx context.Context, state *State) {
	if s.store == nil {
		return
	}
	if err := s.store.Save(ctx, state); err != nil {
		s.logger.Warn("Failed to checkpoint sentinel state", "error", err)
	}
}

func (s *Scheduler) discard(ctx context.Context, stepIndex int) {
	if s.store == nil {
		return
	}
	if err := s.store.Delete(ctx, s.sessionID, stepIndex); err != nil {
		s.logger.Warn("Failed to delete sentinel checkpoint", "error", err)
	}
}

func (s *Scheduler) clamp(seconds int) int {
	if seconds < s.minSleep {
		return s.minSleep
	}
	if seconds > s.maxSleep {
		return s.maxSleep
	}
	return seconds
}

func metWord(met bool) string {
	if met {
		return "met"
	}
	return "not met"
}
