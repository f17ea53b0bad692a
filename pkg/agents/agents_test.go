package agents

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helmsman-ai/helmsman/pkg/container"
	"github.com/helmsman-ai/helmsman/pkg/llm"
	"github.com/helmsman-ai/helmsman/pkg/models"
	"github.com/helmsman-ai/helmsman/pkg/team"
)

type cannedClient struct {
	content string
	err     error
	lastReq llm.Request
}

func (c *cannedClient) Complete(_ context.Context, req llm.Request) (*llm.Response, error) {
	c.lastReq = req
	if c.err != nil {
		return nil, c.err
	}
	return &llm.Response{Content: c.content, Usage: models.TokenUsage{TotalTokens: 7}}, nil
}

func (c *cannedClient) SupportsVision() bool { return false }

// collect drains an agent stream into its items and terminal error.
func collect(t *testing.T, items <-chan team.StreamItem, errs <-chan error) ([]team.StreamItem, error) {
	t.Helper()
	var out []team.StreamItem
	for item := range items {
		out = append(out, item)
	}
	return out, <-errs
}

func TestLLMAgentAnswersInstruction(t *testing.T) {
	client := &cannedClient{content: "Paris is the capital of France."}
	agent := NewLLMAgent("writer", "writes prose", "You write concise prose.", client)

	itemCh, errCh := agent.Stream(context.Background(), []models.ChatMessage{
		models.TextMessage("orchestrator", "What is the capital of France?"),
	})
	items, err := collect(t, itemCh, errCh)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, team.StreamFinal, items[0].Kind)
	assert.Equal(t, "writer", items[0].Message.Source)
	assert.Equal(t, "Paris is the capital of France.", items[0].Message.Content)
	require.NotNil(t, items[0].Message.Usage)
	assert.Equal(t, 7, items[0].Message.Usage.TotalTokens)

	// The system prompt leads the model conversation.
	require.NotEmpty(t, client.lastReq.Messages)
	assert.Equal(t, llm.RoleSystem, client.lastReq.Messages[0].Role)
}

func TestLLMAgentPropagatesClientError(t *testing.T) {
	client := &cannedClient{err: fmt.Errorf("rate limited")}
	agent := NewLLMAgent("writer", "writes prose", "prompt", client)

	itemCh, errCh := agent.Stream(context.Background(), nil)
	items, err := collect(t, itemCh, errCh)
	require.Error(t, err)
	assert.Empty(t, items)
}

type fakeRunner struct {
	lastCmd []string
	result  *container.ExecResult
	err     error
}

func (r *fakeRunner) Exec(_ context.Context, cmd []string) (*container.ExecResult, error) {
	r.lastCmd = cmd
	return r.result, r.err
}

func TestCoderAgentRunsShellBlock(t *testing.T) {
	client := &cannedClient{content: "Counting files:\n```sh\nls | wc -l\n```"}
	runner := &fakeRunner{result: &container.ExecResult{ExitCode: 0, Stdout: "42\n"}}
	agent := NewCoderAgent(client, runner)

	itemCh, errCh := agent.Stream(context.Background(), []models.ChatMessage{
		models.TextMessage("orchestrator", "How many files are in the workspace?"),
	})
	items, err := collect(t, itemCh, errCh)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, team.StreamEvent, items[0].Kind)
	assert.Contains(t, items[0].Message.Content, "ls | wc -l")

	final := items[1]
	assert.Equal(t, team.StreamFinal, final.Kind)
	assert.Contains(t, final.Message.Content, "exit code 0")
	assert.Contains(t, final.Message.Content, "42")
	assert.Equal(t, []string{"sh", "-c", "ls | wc -l"}, runner.lastCmd)
}

func TestCoderAgentWithoutRunnerSkipsExecution(t *testing.T) {
	client := &cannedClient{content: "```sh\nrm -rf /\n```"}
	agent := NewCoderAgent(client, nil)

	itemCh, errCh := agent.Stream(context.Background(), nil)
	items, err := collect(t, itemCh, errCh)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, team.StreamFinal, items[0].Kind)
}

func TestCoderAgentExecFailure(t *testing.T) {
	client := &cannedClient{content: "```sh\ntrue\n```"}
	runner := &fakeRunner{err: fmt.Errorf("container gone")}
	agent := NewCoderAgent(client, runner)

	itemCh, errCh := agent.Stream(context.Background(), nil)
	_, err := collect(t, itemCh, errCh)
	require.Error(t, err)
}

func TestExtractShellBlock(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"sh fence", "before\n```sh\necho hi\n```\nafter", "echo hi"},
		{"bash fence", "```bash\nmake build\n```", "make build"},
		{"no fence", "plain answer", ""},
		{"unterminated", "```sh\necho hi", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractShellBlock(tt.text))
		})
	}
}

func TestUserProxyRefusesDispatch(t *testing.T) {
	proxy := NewUserProxy()
	assert.Equal(t, team.UserProxyName, proxy.Name())

	itemCh, errCh := proxy.Stream(context.Background(), nil)
	items, err := collect(t, itemCh, errCh)
	require.Error(t, err)
	assert.Empty(t, items)
}
