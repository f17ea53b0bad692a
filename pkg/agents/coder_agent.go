package agents

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/helmsman-ai/helmsman/pkg/container"
	"github.com/helmsman-ai/helmsman/pkg/llm"
	"github.com/helmsman-ai/helmsman/pkg/models"
	"github.com/helmsman-ai/helmsman/pkg/team"
)

// CoderName is the conventional name of the code-writing agent.
const CoderName = "coder_agent"

const coderSystemPrompt = `You are a capable software engineer. When the task
requires running code, reply with exactly one fenced shell block:

` + "```sh\n<commands>\n```" + `

The block runs in a sandboxed Linux container. Reply with plain text when no
execution is needed.`

// CommandRunner executes a command in the session workspace.
type CommandRunner interface {
	Exec(ctx context.Context, cmd []string) (*container.ExecResult, error)
}

// CoderAgent is an LLM agent that can execute the shell blocks it writes.
// With a nil runner it degrades to a code-writing-only agent.
type CoderAgent struct {
	client llm.Client
	runner CommandRunner
	logger *slog.Logger
}

// NewCoderAgent creates the coder agent.
func NewCoderAgent(client llm.Client, runner CommandRunner) *CoderAgent {
	return &CoderAgent{
		client: client,
		runner: runner,
		logger: slog.With("component", "agent", "agent", CoderName),
	}
}

func (a *CoderAgent) Name() string { return CoderName }

func (a *CoderAgent) Description() string {
	return "Writes code and runs shell commands in a sandboxed container to produce files, computations, and program output."
}

// Stream runs one turn: model completion, then execution of the emitted shell
// block when a runner is available. Intermediate output is streamed as an
// event before the final response.
func (a *CoderAgent) Stream(ctx context.Context, messages []models.ChatMessage) (<-chan team.StreamItem, <-chan error) {
	items := make(chan team.StreamItem, 2)
	errs := make(chan error, 1)

	go func() {
		defer close(items)
		defer close(errs)

		history := make([]llm.Message, 0, len(messages)+1)
		history = append(history, llm.SystemMessage(coderSystemPrompt))
		for _, m := range messages {
			history = append(history, llm.FromChat(m))
		}

		resp, err := a.client.Complete(ctx, llm.Request{Messages: history})
		if err != nil {
			errs <- err
			return
		}
		usage := resp.Usage
		content := resp.Content

		script := extractShellBlock(content)
		if script != "" && a.runner != nil {
			items <- team.StreamItem{
				Kind:    team.StreamEvent,
				Message: models.ThoughtMessage(CoderName, "Running:\n"+script),
			}
			result, err := a.runner.Exec(ctx, []string{"sh", "-c", script})
			if err != nil {
				errs <- fmt.Errorf("run shell block: %w", err)
				return
			}
			content += "\n\n" + renderExecResult(result)
		}

		select {
		case items <- team.StreamItem{
			Kind:    team.StreamFinal,
			Message: models.AgentResponseMessage(CoderName, content, &usage),
		}:
		case <-ctx.Done():
			errs <- ctx.Err()
		}
	}()
	return items, errs
}

// extractShellBlock returns the body of the first fenced sh/bash block, or ""
// when the response has none.
func extractShellBlock(text string) string {
	for _, fence := range []string{"```sh\n", "```bash\n", "```shell\n"} {
		start := strings.Index(text, fence)
		if start < 0 {
			continue
		}
		body := text[start+len(fence):]
		end := strings.Index(body, "```")
		if end < 0 {
			return ""
		}
		return strings.TrimSpace(body[:end])
	}
	return ""
}

func renderExecResult(r *container.ExecResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Execution finished with exit code %d.", r.ExitCode)
	if out := strings.TrimSpace(r.Stdout); out != "" {
		sb.WriteString("\nOutput:\n" + out)
	}
	if errOut := strings.TrimSpace(r.Stderr); errOut != "" {
		sb.WriteString("\nErrors:\n" + errOut)
	}
	return sb.String()
}

var _ team.Agent = (*CoderAgent)(nil)
