package session

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/helmsman-ai/helmsman/pkg/events"
	"github.com/helmsman-ai/helmsman/pkg/llm"
	"github.com/helmsman-ai/helmsman/pkg/orchestrator"
	"github.com/helmsman-ai/helmsman/pkg/protocol"
	"github.com/helmsman-ai/helmsman/pkg/sentinel"
	"github.com/helmsman-ai/helmsman/pkg/team"
)

// AgentFactory builds the agent team for one session. Called once per
// execution so agents can hold per-session resources.
type AgentFactory func(ctx context.Context, s *Session) ([]team.Agent, error)

// ContainerManager is the slice of the container lifecycle the runner needs.
// The container is shared by concurrent sessions; the runner only ensures it
// is up, the server stops it at shutdown.
type ContainerManager interface {
	EnsureRunning(ctx context.Context) error
}

// RunnerOptions wires a runner. Client, Bus, and Agents are required; Store,
// Memory, and Containers are optional capabilities.
type RunnerOptions struct {
	Client llm.Client
	// Model names the configured model for token counting.
	Model  string
	Bus    *events.Bus
	Agents AgentFactory

	// Store checkpoints sentinel step state; nil keeps it in memory only.
	Store sentinel.Store
	// Memory suggests and records executed plans; nil disables plan memory.
	Memory orchestrator.Memory
	// Containers manages the code execution container; nil disables it.
	Containers ContainerManager
}

// Runner executes sessions: it assembles the per-session orchestrator stack
// from the shared server resources and runs it to a terminal state.
type Runner struct {
	client     llm.Client
	model      string
	bus        *events.Bus
	agents     AgentFactory
	store      sentinel.Store
	memory     orchestrator.Memory
	containers ContainerManager
	logger     *slog.Logger
}

// NewRunner creates a runner from shared server resources.
func NewRunner(opts RunnerOptions) (*Runner, error) {
	if opts.Client == nil || opts.Bus == nil || opts.Agents == nil {
		return nil, fmt.Errorf("client, bus, and agent factory are required")
	}
	return &Runner{
		client:     opts.Client,
		model:      opts.Model,
		bus:        opts.Bus,
		agents:     opts.Agents,
		store:      opts.Store,
		memory:     opts.Memory,
		containers: opts.Containers,
		logger:     slog.With("component", "session.runner"),
	}, nil
}

// Execute runs one session to completion. It blocks until the orchestrator
// reaches a terminal state or ctx is cancelled.
func (r *Runner) Execute(ctx context.Context, s *Session) error {
	logger := r.logger.With("session_id", s.ID)

	if r.containers != nil {
		if err := r.containers.EnsureRunning(ctx); err != nil {
			return r.failBeforeRun(s, fmt.Errorf("%w: code container: %v", orchestrator.ErrResourceFailure, err))
		}
	}

	orch, err := r.buildOrchestrator(ctx, s)
	if err != nil {
		return r.failBeforeRun(s, err)
	}
	s.Attach(orch)

	logger.Info("Session execution starting",
		"max_stalls", s.Config.MaxStallsBeforeReplan,
		"max_replans", s.Config.MaxReplans,
		"sentinel_enabled", s.Config.SentinelTasksEnabled)
	return orch.Run(ctx, s.Task)
}

// buildOrchestrator assembles the per-session stack: team registry,
// dispatcher, prompt builder, protocol caller, truncator, and optionally the
// sentinel scheduler and plan memory.
func (r *Runner) buildOrchestrator(ctx context.Context, s *Session) (*orchestrator.Orchestrator, error) {
	agents, err := r.agents(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("%w: build agent team: %v", orchestrator.ErrResourceFailure, err)
	}
	registry, err := team.NewRegistry(agents)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", orchestrator.ErrResourceFailure, err)
	}

	locale := protocol.Locale(s.Config.Language)
	if !locale.Valid() {
		locale = protocol.LocaleEN
	}
	builder := protocol.NewBuilder(locale, s.Config.SentinelTasksEnabled)
	caller := protocol.NewCaller(r.client, builder, s.Config.MaxJSONRetries)

	observer := orchestrator.NewBusObserver(r.bus, s.ID)
	dispatcher := team.NewDispatcher(registry, observer, s.Config.PerAgentTimeout.Std())

	var truncator *llm.Truncator
	if s.Config.ModelContextTokenLimit > 0 {
		counter, err := llm.NewTokenCounter(r.model)
		if err != nil {
			r.logger.Warn("Token counting unavailable, history will not be truncated", "error", err)
		} else {
			truncator = llm.NewTruncator(counter, s.Config.ModelContextTokenLimit)
		}
	}

	var sentinelRunner orchestrator.SentinelRunner
	if s.Config.SentinelTasksEnabled {
		scheduler, err := sentinel.NewScheduler(sentinel.Options{
			SessionID:       s.ID,
			Dispatcher:      dispatcher,
			Caller:          caller,
			Bus:             r.bus,
			MinSleepSeconds: s.Config.MinSleepSeconds,
			MaxSleepSeconds: s.Config.MaxSleepSeconds,
			Store:           r.store,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", orchestrator.ErrResourceFailure, err)
		}
		sentinelRunner = scheduler
	}

	return orchestrator.New(orchestrator.Options{
		SessionID:  s.ID,
		Config:     s.Config,
		Registry:   registry,
		Dispatcher: dispatcher,
		Caller:     caller,
		Bus:        r.bus,
		Truncator:  truncator,
		Memory:     r.memory,
		Sentinel:   sentinelRunner,
	})
}

// failBeforeRun reports a failure that happened before the orchestrator took
// over event publishing, then closes the session stream.
func (r *Runner) failBeforeRun(s *Session, err error) error {
	r.logger.Error("Session failed before execution", "session_id", s.ID, "error", err)
	r.bus.Publish(s.ID, events.EventTypeError, events.ErrorPayload{
		Kind:    "resource_failure",
		Message: err.Error(),
	})
	r.bus.Publish(s.ID, events.EventTypeSessionStatus, events.SessionStatusPayload{
		Status: events.SessionStatusFailed,
		Detail: "resource_failure",
	})
	r.bus.CloseSession(s.ID)
	return err
}
