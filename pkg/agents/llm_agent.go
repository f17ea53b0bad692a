// Package agents provides the built-in team members: a generic LLM-backed
// agent, an LLM agent that can run commands in the session container, and the
// user proxy placeholder. The team is an open set; anything implementing
// team.Agent can join.
package agents

import (
	"context"
	"log/slog"

	"github.com/helmsman-ai/helmsman/pkg/llm"
	"github.com/helmsman-ai/helmsman/pkg/models"
	"github.com/helmsman-ai/helmsman/pkg/team"
)

// LLMAgent answers instructions with a single model completion. It is the
// base for prompt-specialized team members (web research, writing, analysis).
type LLMAgent struct {
	name         string
	description  string
	systemPrompt string
	client       llm.Client
	logger       *slog.Logger
}

// NewLLMAgent creates an agent with its prompt persona.
func NewLLMAgent(name, description, systemPrompt string, client llm.Client) *LLMAgent {
	return &LLMAgent{
		name:         name,
		description:  description,
		systemPrompt: systemPrompt,
		client:       client,
		logger:       slog.With("component", "agent", "agent", name),
	}
}

func (a *LLMAgent) Name() string        { return a.name }
func (a *LLMAgent) Description() string { return a.description }

// Stream runs one turn: the conversation is projected to model messages
// behind the agent's system prompt and answered with one completion.
func (a *LLMAgent) Stream(ctx context.Context, messages []models.ChatMessage) (<-chan team.StreamItem, <-chan error) {
	items := make(chan team.StreamItem, 1)
	errs := make(chan error, 1)

	go func() {
		defer close(items)
		defer close(errs)

		history := make([]llm.Message, 0, len(messages)+1)
		history = append(history, llm.SystemMessage(a.systemPrompt))
		for _, m := range messages {
			history = append(history, llm.FromChat(m))
		}

		resp, err := a.client.Complete(ctx, llm.Request{Messages: history})
		if err != nil {
			a.logger.Warn("Agent completion failed", "error", err)
			errs <- err
			return
		}
		usage := resp.Usage
		select {
		case items <- team.StreamItem{
			Kind:    team.StreamFinal,
			Message: models.AgentResponseMessage(a.name, resp.Content, &usage),
		}:
		case <-ctx.Done():
			errs <- ctx.Err()
		}
	}()
	return items, errs
}

var _ team.Agent = (*LLMAgent)(nil)
