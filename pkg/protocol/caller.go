package protocol

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/helmsman-ai/helmsman/pkg/llm"
	"github.com/helmsman-ai/helmsman/pkg/models"
	"github.com/helmsman-ai/helmsman/pkg/plan"
)

// ErrProtocolFailure is returned when the model could not produce a valid
// structured response within the retry budget.
var ErrProtocolFailure = errors.New("protocol failure")

// DefaultMaxJSONRetries bounds repair attempts for structured calls.
const DefaultMaxJSONRetries = 3

// Caller runs the typed orchestrator-model calls: plan, replan, ledger,
// condition check, and final answer. Structured calls are retried with
// repair feedback when the response fails extraction or validation.
type Caller struct {
	client     llm.Client
	builder    *Builder
	maxRetries int
	logger     *slog.Logger
}

// NewCaller creates a caller. maxRetries <= 0 selects the default.
func NewCaller(client llm.Client, builder *Builder, maxRetries int) *Caller {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxJSONRetries
	}
	return &Caller{
		client:     client,
		builder:    builder,
		maxRetries: maxRetries,
		logger:     slog.With("component", "protocol"),
	}
}

// Builder exposes the prompt builder used by this caller.
func (c *Caller) Builder() *Builder {
	return c.builder
}

// RequestPlan asks the model for a plan (or a direct answer) for the task
// conversation.
func (c *Caller) RequestPlan(ctx context.Context, system string, history []llm.Message, team, additionalInstructions string, agentNames []string) (*plan.Plan, models.TokenUsage, error) {
	prompt := c.builder.PlanPrompt(team, additionalInstructions)
	var p plan.Plan
	usage, err := c.callJSON(ctx, "plan", system, history, prompt, func(data []byte) error {
		p = plan.Plan{}
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		return p.Validate(agentNames)
	})
	if err != nil {
		return nil, usage, err
	}
	return &p, usage, nil
}

// RequestReplan asks the model for a fresh plan after the current one
// stalled out.
func (c *Caller) RequestReplan(ctx context.Context, system string, history []llm.Message, task, renderedPlan, team, additionalInstructions string, agentNames []string) (*plan.Plan, models.TokenUsage, error) {
	prompt := c.builder.ReplanPrompt(task, renderedPlan, team, additionalInstructions)
	var p plan.Plan
	usage, err := c.callJSON(ctx, "replan", system, history, prompt, func(data []byte) error {
		p = plan.Plan{}
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		return p.Validate(agentNames)
	})
	if err != nil {
		return nil, usage, err
	}
	return &p, usage, nil
}

// LedgerArgs carries the context of the current step for ledger evaluation.
type LedgerArgs struct {
	Task                   string
	RenderedPlan           string
	StepIndex              int
	StepTitle              string
	StepDetails            string
	AgentName              string
	Team                   string
	Names                  []string
	AdditionalInstructions string
}

// EvaluateLedger asks the model to assess progress on the current step.
func (c *Caller) EvaluateLedger(ctx context.Context, system string, history []llm.Message, args LedgerArgs) (*ProgressLedger, models.TokenUsage, error) {
	prompt := c.builder.ProgressLedgerPrompt(args.Task, args.RenderedPlan, args.StepIndex,
		args.StepTitle, args.StepDetails, args.AgentName, args.Team, args.Names, args.AdditionalInstructions)
	var ledger ProgressLedger
	usage, err := c.callJSON(ctx, "ledger", system, history, prompt, func(data []byte) error {
		ledger = ProgressLedger{}
		if err := json.Unmarshal(data, &ledger); err != nil {
			return err
		}
		return ledger.Validate(args.Names)
	})
	if err != nil {
		return nil, usage, err
	}
	return &ledger, usage, nil
}

// CheckCondition asks the model whether a sentinel text condition is met,
// judging from the agent's latest response in history.
func (c *Caller) CheckCondition(ctx context.Context, history []llm.Message, stepDescription, condition string, currentSleepSeconds int) (*ConditionCheck, models.TokenUsage, error) {
	prompt := c.builder.ConditionCheckPrompt(stepDescription, condition, currentSleepSeconds)
	var check ConditionCheck
	usage, err := c.callJSON(ctx, "condition_check", "", history, prompt, func(data []byte) error {
		check = ConditionCheck{}
		if err := json.Unmarshal(data, &check); err != nil {
			return err
		}
		return check.Validate()
	})
	if err != nil {
		return nil, usage, err
	}
	return &check, usage, nil
}

// FinalAnswer asks the model for the closing user-facing response. Free
// text, no JSON contract, no retries.
func (c *Caller) FinalAnswer(ctx context.Context, system string, history []llm.Message, task, overridePrompt string) (string, models.TokenUsage, error) {
	prompt := c.builder.FinalAnswerPrompt(task, overridePrompt)
	messages := assemble(system, history, prompt)
	resp, err := c.client.Complete(ctx, llm.Request{Messages: messages})
	if err != nil {
		return "", models.TokenUsage{}, fmt.Errorf("final answer: %w", err)
	}
	return resp.Content, resp.Usage, nil
}

// callJSON runs a structured call with extraction, validation, and repair
// retries. parse must fully reset and populate its target each attempt.
func (c *Caller) callJSON(ctx context.Context, call, system string, history []llm.Message, prompt string, parse func(data []byte) error) (models.TokenUsage, error) {
	base := assemble(system, history, prompt)
	var usage models.TokenUsage
	var lastErr error

	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		messages := base
		if lastErr != nil {
			messages = append(messages, llm.UserMessage(repairHint(lastErr)))
		}

		resp, err := c.client.Complete(ctx, llm.Request{Messages: messages, JSONMode: true})
		if err != nil {
			if ctx.Err() != nil {
				return usage, ctx.Err()
			}
			// Transport and model errors are not repairable by reprompting.
			return usage, fmt.Errorf("%w: %s call: %v", ErrProtocolFailure, call, err)
		}
		usage.Add(resp.Usage)

		extracted, err := ExtractJSON(resp.Content)
		if err == nil {
			err = parse([]byte(extracted))
		}
		if err == nil {
			return usage, nil
		}

		lastErr = err
		base = append(base, llm.AssistantMessage(resp.Content))
		c.logger.Warn("Structured response rejected, retrying",
			"call", call, "attempt", attempt, "error", err)

		if ctx.Err() != nil {
			return usage, ctx.Err()
		}
	}

	return usage, fmt.Errorf("%w: %s call invalid after %d attempts: %v", ErrProtocolFailure, call, c.maxRetries, lastErr)
}

func repairHint(cause error) string {
	return fmt.Sprintf("Your previous response could not be used: %v. Respond again following the required JSON schema exactly. Output only the JSON object, nothing else.", cause)
}

func assemble(system string, history []llm.Message, prompt string) []llm.Message {
	messages := make([]llm.Message, 0, len(history)+2)
	if system != "" {
		messages = append(messages, llm.SystemMessage(system))
	}
	messages = append(messages, history...)
	messages = append(messages, llm.UserMessage(prompt))
	return messages
}
