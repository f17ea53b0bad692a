// Package orchestrator implements the session state machine: planning with
// the model (or remembered plans), cooperative plan approval, the per-step
// execution loop driven by progress ledgers, replanning when progress stalls,
// and the final answer. One orchestrator runs one session.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/helmsman-ai/helmsman/pkg/config"
	"github.com/helmsman-ai/helmsman/pkg/events"
	"github.com/helmsman-ai/helmsman/pkg/llm"
	"github.com/helmsman-ai/helmsman/pkg/models"
	"github.com/helmsman-ai/helmsman/pkg/plan"
	"github.com/helmsman-ai/helmsman/pkg/protocol"
	"github.com/helmsman-ai/helmsman/pkg/team"
)

// SourceName is the transcript source for orchestrator-authored messages.
const SourceName = "orchestrator"

// SentinelRunner executes one sentinel plan step to completion: repeated
// agent dispatches separated by sleeps until the step's condition holds.
// It returns the observation messages to append to the transcript. A
// context error means the session was cancelled mid-step.
type SentinelRunner interface {
	RunStep(ctx context.Context, stepIndex int, step plan.Step, history []models.ChatMessage) ([]models.ChatMessage, error)
}

// Options wires an orchestrator. Registry, Dispatcher, Caller, and Bus are
// required; Memory and Sentinel are optional capabilities.
type Options struct {
	SessionID  string
	Config     config.SessionConfig
	Registry   *team.Registry
	Dispatcher *team.Dispatcher
	Caller     *protocol.Caller
	Bus        *events.Bus
	Truncator  *llm.Truncator
	Memory     Memory
	Sentinel   SentinelRunner
}

// Orchestrator drives one session from task to terminal state.
type Orchestrator struct {
	sessionID  string
	cfg        config.SessionConfig
	registry   *team.Registry
	dispatcher *team.Dispatcher
	caller     *protocol.Caller
	bus        *events.Bus
	truncator  *llm.Truncator
	memory     Memory
	sentinel   SentinelRunner

	state  state
	inputs chan Input
	guard  loopGuard
	paused bool

	logger *slog.Logger
}

// New creates an orchestrator for one session.
func New(opts Options) (*Orchestrator, error) {
	if opts.SessionID == "" {
		return nil, fmt.Errorf("session id is required")
	}
	if opts.Registry == nil || opts.Dispatcher == nil || opts.Caller == nil || opts.Bus == nil {
		return nil, fmt.Errorf("registry, dispatcher, caller, and bus are required")
	}
	o := &Orchestrator{
		sessionID:  opts.SessionID,
		cfg:        opts.Config,
		registry:   opts.Registry,
		dispatcher: opts.Dispatcher,
		caller:     opts.Caller,
		bus:        opts.Bus,
		truncator:  opts.Truncator,
		memory:     opts.Memory,
		sentinel:   opts.Sentinel,
		inputs:     make(chan Input, inputBuffer),
		logger:     slog.With("component", "orchestrator", "session_id", opts.SessionID),
	}
	o.state.phase = PhaseAwaitingTask
	return o, nil
}

// State returns a snapshot of the orchestration state.
func (o *Orchestrator) State() Snapshot {
	return o.state.snapshot()
}

// Run executes the session to its terminal state. It blocks until the final
// answer is emitted, the session is cancelled, or a terminal error occurs.
// The session event stream is closed on return.
func (o *Orchestrator) Run(ctx context.Context, task models.Task) error {
	defer o.state.setPhase(PhaseTerminal)
	defer o.bus.CloseSession(o.sessionID)

	o.state.append(models.TextMessage("user", task.Text))

	p, source, err := o.runPlanning(ctx, task)
	if err != nil {
		return o.terminate(err)
	}
	if p == nil {
		// Direct answer already emitted.
		return nil
	}

	// cooperative_planning only shapes the planning prompt; approval is
	// governed by autonomous_execution alone.
	if !o.cfg.AutonomousExecution {
		p, source, err = o.awaitApproval(ctx, task, p, source)
		if err != nil {
			return o.terminate(err)
		}
		if p == nil {
			return nil
		}
	}

	o.adoptPlan(p, source)
	if err := o.runExecution(ctx, task); err != nil {
		return o.terminate(err)
	}
	return nil
}

// runPlanning produces the initial plan and its source ("model" or
// "memory"). A nil plan with nil error means the task was answered directly
// and the session is complete.
func (o *Orchestrator) runPlanning(ctx context.Context, task models.Task) (*plan.Plan, string, error) {
	o.transition(PhasePlanning, events.SessionStatusPlanning, "")

	hints := ""
	if o.memory != nil && o.cfg.RetrieveRelevantPlans != config.RetrievePlansOff {
		remembered, err := o.memory.SuggestPlans(ctx, task.Text, suggestionLimit)
		if err != nil {
			o.logger.Warn("Plan memory lookup failed", "error", err)
		} else if len(remembered) > 0 {
			if o.cfg.RetrieveRelevantPlans == config.RetrievePlansReuse &&
				remembered[0].Score >= reuseScoreThreshold &&
				remembered[0].Plan.Validate(o.registry.Names()) == nil {
				o.logger.Info("Reusing remembered plan", "score", remembered[0].Score)
				return remembered[0].Plan, "memory", nil
			}
			hints = renderSuggestions(remembered)
		}
	}

	system := o.caller.Builder().PlanningSystemMessage(o.cfg.CooperativePlanningEnabled(), dateToday(), o.registry.Describe())
	p, usage, err := o.caller.RequestPlan(ctx, system, o.modelHistory(),
		o.registry.Describe(), o.additionalInstructions(hints), o.registry.Names())
	o.state.addUsage(usage)
	if err != nil {
		// Invalid model output at the planning stage is terminal.
		return nil, "", err
	}

	if !p.NeedsPlan {
		o.state.append(models.TextMessage(SourceName, p.Response))
		o.finish(p.Response)
		return nil, "", nil
	}
	return p, "model", nil
}

// awaitApproval publishes the plan and blocks until the user accepts it,
// replaces it, or sends clarification text (which triggers a fresh planning
// round). A nil plan with nil error means a re-planning round answered the
// task directly.
func (o *Orchestrator) awaitApproval(ctx context.Context, task models.Task, p *plan.Plan, source string) (*plan.Plan, string, error) {
	for {
		o.bus.Publish(o.sessionID, events.EventTypePlanApprovalWait, events.PlanApprovalPayload{Plan: p})
		o.logger.Info("Awaiting plan approval", "steps", p.Len())

		in, err := o.nextInput(ctx)
		if err != nil {
			return nil, "", err
		}
		switch in.Kind {
		case InputApprove:
			return p, source, nil
		case InputEditPlan:
			// An edited plan is an accepted plan.
			o.logger.Info("User replaced the plan", "steps", in.Plan.Len())
			return in.Plan, "user", nil
		case InputMessage:
			// Clarification: fold it into the conversation and plan again.
			o.state.append(models.TextMessage("user", in.Content))
			o.bus.Publish(o.sessionID, events.EventTypeUserMessage, events.UserMessagePayload{Content: in.Content})
			next, nextSource, err := o.runPlanning(ctx, task)
			if err != nil || next == nil {
				return nil, "", err
			}
			p, source = next, nextSource
		case InputPause, InputResume:
			// Nothing is running yet.
		}
	}
}

// runExecution drives the per-step loop until the plan is exhausted, the
// replan budget runs out, or the session fails.
func (o *Orchestrator) runExecution(ctx context.Context, task models.Task) error {
	o.transition(PhaseExecuting, events.SessionStatusExecuting, "")
	recap := o.caller.Builder().TaskLedgerFull(task.Text, o.registry.Describe(), o.currentPlan().Render())
	o.state.append(models.ThoughtMessage(SourceName, recap))

	for {
		if err := o.pumpInputs(ctx); err != nil {
			return err
		}

		snap := o.state.snapshot()
		p := snap.Plan
		if snap.StepIndex >= p.Len() {
			return o.runFinalizing(ctx, task, "")
		}
		step := p.Steps[snap.StepIndex]

		if step.IsSentinel() {
			if err := o.runSentinelStep(ctx, snap.StepIndex, step); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				// A failed sentinel execution counts as a stall.
				o.noteError(err)
				o.state.setStep(snap.StepIndex, snap.StepAttempts+1)
				if snap.StepAttempts+1 >= o.cfg.MaxStallsBeforeReplan {
					if done, ferr := o.forceReplan(ctx, task, "sentinel step kept failing"); done || ferr != nil {
						return ferr
					}
				}
				continue
			}
			o.advanceStep(snap.StepIndex)
			continue
		}

		ledger, usage, err := o.caller.EvaluateLedger(ctx, o.executionSystem(), o.modelHistory(), protocol.LedgerArgs{
			Task:                   task.Text,
			RenderedPlan:           p.Render(),
			StepIndex:              snap.StepIndex,
			StepTitle:              step.Title,
			StepDetails:            step.Details,
			AgentName:              step.AgentName,
			Team:                   o.registry.Describe(),
			Names:                  o.registry.Names(),
			AdditionalInstructions: o.additionalInstructions(""),
		})
		o.state.addUsage(usage)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// Invalid ledger output after retries forces a replan.
			o.noteError(err)
			if done, ferr := o.forceReplan(ctx, task, "progress assessment failed"); done || ferr != nil {
				return ferr
			}
			continue
		}

		o.bus.Publish(o.sessionID, events.EventTypeProgress, events.ProgressPayload{
			StepIndex:       snap.StepIndex,
			StepComplete:    ledger.StepComplete(),
			NeedToReplan:    ledger.Replan(),
			ProgressSummary: ledger.ProgressSummary,
			Stalls:          snap.StepAttempts,
		})

		if ledger.Replan() {
			if done, ferr := o.forceReplan(ctx, task, ledger.NeedToReplan.Reason); done || ferr != nil {
				return ferr
			}
			continue
		}

		if ledger.StepComplete() {
			o.advanceStep(snap.StepIndex)
			continue
		}

		// Dispatch the next instruction.
		target := ledger.InstructionOrQuestion.AgentName
		instruction := ledger.InstructionOrQuestion.Answer
		if o.guard.observe(snap.StepIndex, target, instruction) {
			o.noteError(fmt.Errorf("%w: %q to %s", ErrLoopDetected, instruction, target))
			if done, ferr := o.forceReplan(ctx, task, "instruction loop detected"); done || ferr != nil {
				return ferr
			}
			continue
		}

		if err := o.dispatchInstruction(ctx, snap.StepIndex, step, target, instruction); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			o.noteError(fmt.Errorf("%w: %v", ErrAgentFailure, err))
		}
		if cur := o.state.snapshot(); cur.Plan != p {
			// A plan edit landed during the turn; its reset counters stand.
			continue
		}
		o.state.setStep(snap.StepIndex, snap.StepAttempts+1)

		if snap.StepAttempts+1 >= o.cfg.MaxStallsBeforeReplan {
			if done, ferr := o.forceReplan(ctx, task, "no progress on the current step"); done || ferr != nil {
				return ferr
			}
		}
	}
}

// runSentinelStep hands the step to the sentinel scheduler and folds its
// observations into the transcript.
func (o *Orchestrator) runSentinelStep(ctx context.Context, stepIndex int, step plan.Step) error {
	if o.sentinel == nil {
		return fmt.Errorf("%w: no sentinel scheduler configured", ErrResourceFailure)
	}
	o.logger.Info("Handing step to sentinel scheduler", "step_index", stepIndex, "condition", step.Condition)
	observations, err := o.sentinel.RunStep(ctx, stepIndex, step, o.agentHistory())
	// Partial observations are kept even on failure or cancellation.
	o.state.append(observations...)
	return err
}

// dispatchInstruction formats the instruction envelope, sends it to the
// agent, and appends the turn's output to the transcript.
func (o *Orchestrator) dispatchInstruction(ctx context.Context, stepIndex int, step plan.Step, target, instruction string) error {
	envelope := o.caller.Builder().InstructionEnvelope(stepIndex, step.Title, step.Details, target, instruction)
	o.bus.Publish(o.sessionID, events.EventTypeInstruction, events.InstructionPayload{
		StepIndex:   stepIndex,
		StepTitle:   step.Title,
		AgentName:   target,
		Instruction: instruction,
	})
	o.state.append(models.TextMessage(SourceName, envelope))

	if target == team.UserProxyName {
		// Questions to the human are answered through follow-up input, not
		// an agent turn.
		return o.awaitUserReply(ctx)
	}

	result, err := o.dispatcher.Dispatch(ctx, target, o.agentHistory())
	if err != nil {
		return err
	}
	o.state.append(result.Events...)
	o.state.append(result.Response)
	if result.Response.Usage != nil {
		o.state.addUsage(*result.Response.Usage)
	}
	o.bus.Publish(o.sessionID, events.EventTypeAgentMessage, events.AgentMessagePayload{
		AgentName: target,
		Kind:      string(result.Response.Kind),
		Content:   result.Response.Content,
		Final:     true,
	})
	return nil
}

// awaitUserReply blocks until the user answers a question addressed to the
// user proxy.
func (o *Orchestrator) awaitUserReply(ctx context.Context) error {
	for {
		in, err := o.nextInput(ctx)
		if err != nil {
			return err
		}
		switch in.Kind {
		case InputMessage:
			o.state.append(models.TextMessage("user", in.Content))
			o.bus.Publish(o.sessionID, events.EventTypeUserMessage, events.UserMessagePayload{Content: in.Content})
			return nil
		case InputEditPlan:
			o.replacePlan(in.Plan)
			return nil
		default:
			// Approve/pause/resume do not answer the question.
		}
	}
}

// forceReplan consumes one unit of the replan budget and produces a fresh
// plan. done=true means the session reached a terminal state here (budget
// exhausted and finalized, or the new plan answered directly).
func (o *Orchestrator) forceReplan(ctx context.Context, task models.Task, reason string) (done bool, err error) {
	if o.state.snapshot().ReplanCount >= o.cfg.MaxReplans {
		o.logger.Warn("Replan budget exhausted", "replans", o.cfg.MaxReplans)
		note := "The team could not complete the task within the allowed number of plan revisions. Summarize what was accomplished and what remains."
		o.state.append(models.ThoughtMessage(SourceName, note))
		return true, o.runFinalizing(ctx, task, "ran out of plan revisions")
	}
	count := o.state.bumpReplans()

	o.transition(PhaseReplanning, events.SessionStatusReplanning, reason)
	o.logger.Info("Replanning", "reason", reason, "replans", count)

	system := o.caller.Builder().PlanningSystemMessage(false, dateToday(), o.registry.Describe())
	p, usage, rerr := o.caller.RequestReplan(ctx, system, o.modelHistory(),
		task.Text, o.currentPlan().Render(), o.registry.Describe(), o.additionalInstructions(""), o.registry.Names())
	o.state.addUsage(usage)
	if rerr != nil {
		if ctx.Err() != nil {
			return true, ctx.Err()
		}
		// No usable replacement plan: wrap up with what we have.
		o.noteError(rerr)
		return true, o.runFinalizing(ctx, task, "could not produce a revised plan")
	}

	if !p.NeedsPlan {
		o.state.append(models.TextMessage(SourceName, p.Response))
		o.finish(p.Response)
		return true, nil
	}

	o.adoptPlan(p, "replan")
	o.transition(PhaseExecuting, events.SessionStatusExecuting, "")
	return false, nil
}

// runFinalizing asks the model for the closing answer and completes the
// session. note, when non-empty, names why execution ended early.
func (o *Orchestrator) runFinalizing(ctx context.Context, task models.Task, note string) error {
	o.transition(PhaseFinalizing, events.SessionStatusFinalizing, note)

	answer, usage, err := o.caller.FinalAnswer(ctx, o.executionSystem(), o.modelHistory(), task.Text, o.cfg.FinalAnswerPrompt)
	o.state.addUsage(usage)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		o.noteError(err)
		answer = "The task ended before a proper summary could be produced."
		if note != "" {
			answer += " Reason: " + note + "."
		}
	}

	o.state.append(models.TextMessage(SourceName, answer))
	o.storePlanInMemory(ctx, task)
	o.finish(answer)
	return nil
}

// storePlanInMemory saves the executed plan for future retrieval.
func (o *Orchestrator) storePlanInMemory(ctx context.Context, task models.Task) {
	if o.memory == nil || o.cfg.RetrieveRelevantPlans == config.RetrievePlansOff {
		return
	}
	p := o.currentPlan()
	if p == nil || !p.NeedsPlan {
		return
	}
	if err := o.memory.StorePlan(ctx, task.Text, p); err != nil {
		o.logger.Warn("Failed to store plan in memory", "error", err)
	}
}

// pumpInputs drains pending user inputs and, when paused, blocks until the
// session is resumed or cancelled.
func (o *Orchestrator) pumpInputs(ctx context.Context) error {
	for {
		select {
		case in := <-o.inputs:
			o.handleExecutionInput(in)
			continue
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if !o.paused {
			return nil
		}
		// Paused: wait for the next input or cancellation.
		select {
		case in := <-o.inputs:
			o.handleExecutionInput(in)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (o *Orchestrator) handleExecutionInput(in Input) {
	switch in.Kind {
	case InputPause:
		if !o.paused {
			o.paused = true
			o.publishStatus(events.SessionStatusPaused, "")
			o.logger.Info("Session paused")
		}
	case InputResume:
		if o.paused {
			o.paused = false
			o.publishStatus(events.SessionStatusExecuting, "")
			o.logger.Info("Session resumed")
		}
	case InputMessage:
		if !o.cfg.FollowUpInputAllowed() {
			o.logger.Debug("Dropping follow-up input, disabled by configuration")
			return
		}
		o.state.append(models.TextMessage("user", in.Content))
		o.bus.Publish(o.sessionID, events.EventTypeUserMessage, events.UserMessagePayload{Content: in.Content})
	case InputEditPlan:
		o.replacePlan(in.Plan)
	case InputApprove:
		// Already executing.
	}
}

// replacePlan swaps in a user-edited plan mid-execution. Execution resumes
// at the current step index, clamped to the new plan's length.
func (o *Orchestrator) replacePlan(p *plan.Plan) {
	snap := o.state.snapshot()
	index := snap.StepIndex
	if index > p.Len() {
		index = p.Len()
	}
	o.state.setPlan(p)
	o.state.setStep(index, 0)
	o.guard.reset()
	o.publishPlan(p, "user")
	o.logger.Info("Plan replaced by user", "steps", p.Len(), "resume_at", index)
}

// terminate publishes the terminal failure or cancellation and returns the
// error for the caller.
func (o *Orchestrator) terminate(err error) error {
	if err == nil {
		return nil
	}
	kind := errorKind(err)
	if errors.Is(err, context.Canceled) {
		o.logger.Info("Session cancelled")
		o.bus.Publish(o.sessionID, events.EventTypeError, events.ErrorPayload{Kind: kind, Message: "The session was cancelled."})
		o.publishStatus(events.SessionStatusCancelled, "")
		return err
	}
	o.logger.Error("Session failed", "kind", kind, "error", err)
	o.bus.Publish(o.sessionID, events.EventTypeError, events.ErrorPayload{Kind: kind, Message: userFacing(err)})
	o.publishStatus(events.SessionStatusFailed, kind)
	return err
}

// finish emits the final answer and marks the session completed.
func (o *Orchestrator) finish(answer string) {
	o.bus.Publish(o.sessionID, events.EventTypeFinalAnswer, events.FinalAnswerPayload{Answer: answer})
	o.publishStatus(events.SessionStatusCompleted, "")
	o.logger.Info("Session completed")
}

// noteError surfaces a non-terminal error as a progress note; execution
// continues.
func (o *Orchestrator) noteError(err error) {
	o.logger.Warn("Recoverable error", "kind", errorKind(err), "error", err)
	o.bus.Publish(o.sessionID, events.EventTypeError, events.ErrorPayload{Kind: errorKind(err), Message: userFacing(err)})
}

func (o *Orchestrator) adoptPlan(p *plan.Plan, source string) {
	o.state.setPlan(p)
	o.state.setStep(0, 0)
	o.guard.reset()
	o.publishPlan(p, source)
}

func (o *Orchestrator) advanceStep(current int) {
	o.state.setStep(current+1, 0)
	o.guard.reset()
}

func (o *Orchestrator) publishPlan(p *plan.Plan, source string) {
	o.bus.Publish(o.sessionID, events.EventTypePlan, events.PlanPayload{
		Plan:    p,
		Source:  source,
		Replans: o.state.snapshot().ReplanCount,
	})
}

func (o *Orchestrator) transition(phase Phase, status, detail string) {
	o.state.setPhase(phase)
	o.publishStatus(status, detail)
}

func (o *Orchestrator) publishStatus(status, detail string) {
	o.bus.Publish(o.sessionID, events.EventTypeSessionStatus, events.SessionStatusPayload{Status: status, Detail: detail})
}

func (o *Orchestrator) currentPlan() *plan.Plan {
	return o.state.snapshot().Plan
}

// nextInput blocks for the next user input.
func (o *Orchestrator) nextInput(ctx context.Context) (Input, error) {
	select {
	case in := <-o.inputs:
		return in, nil
	case <-ctx.Done():
		return Input{}, ctx.Err()
	}
}

func (o *Orchestrator) executionSystem() string {
	return o.caller.Builder().ExecutionSystemMessage(dateToday())
}

// modelHistory renders the transcript for a model call: stream chunks are
// skipped and the result is truncated head-first to the context budget.
func (o *Orchestrator) modelHistory() []llm.Message {
	transcript := o.state.messages()
	history := make([]llm.Message, 0, len(transcript))
	for _, m := range transcript {
		if m.Kind == models.MessageStreamChunk {
			continue
		}
		history = append(history, llm.FromChat(m))
	}
	if o.truncator != nil {
		history = o.truncator.Truncate(history)
	}
	return history
}

// agentHistory is the conversation slice handed to agents on dispatch.
func (o *Orchestrator) agentHistory() []models.ChatMessage {
	transcript := o.state.messages()
	out := make([]models.ChatMessage, 0, len(transcript))
	for _, m := range transcript {
		if m.Kind == models.MessageStreamChunk || m.Kind == models.MessageThought {
			continue
		}
		out = append(out, m)
	}
	return out
}

// additionalInstructions composes the policy text injected into planning and
// ledger prompts: website restrictions plus any memory hints.
func (o *Orchestrator) additionalInstructions(memoryHints string) string {
	var parts []string
	if len(o.cfg.AllowedWebsites) > 0 {
		parts = append(parts, "Only the following websites may be visited: "+strings.Join(o.cfg.AllowedWebsites, ", ")+".")
	}
	if memoryHints != "" {
		parts = append(parts, memoryHints)
	}
	return strings.Join(parts, "\n\n")
}

// renderSuggestions formats remembered plans as a planning hint block.
func renderSuggestions(suggestions []Suggestion) string {
	var sb strings.Builder
	sb.WriteString("Plans that worked for similar tasks in the past:\n")
	for _, s := range suggestions {
		fmt.Fprintf(&sb, "\nTask: %s\n%s", s.Task, s.Plan.Render())
	}
	return sb.String()
}

// userFacing strips wrapper noise from an error for event payloads.
func userFacing(err error) string {
	return err.Error()
}

func dateToday() string {
	return time.Now().Format("January 2, 2006")
}
