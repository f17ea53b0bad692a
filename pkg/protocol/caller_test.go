package protocol

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helmsman-ai/helmsman/pkg/llm"
	"github.com/helmsman-ai/helmsman/pkg/models"
)

// scriptedClient returns canned responses in order and records each request.
type scriptedClient struct {
	responses []string
	requests  []llm.Request
	err       error
}

func (s *scriptedClient) Complete(_ context.Context, req llm.Request) (*llm.Response, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return nil, s.err
	}
	idx := len(s.requests) - 1
	if idx >= len(s.responses) {
		idx = len(s.responses) - 1
	}
	return &llm.Response{
		Content: s.responses[idx],
		Usage:   models.TokenUsage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15},
	}, nil
}

func (s *scriptedClient) SupportsVision() bool { return false }

const validPlanJSON = `{
	"task": "check the weather",
	"plan_summary": "one step",
	"needs_plan": true,
	"response": "",
	"steps": [
		{"title": "look up the weather", "details": "look up the weather \n search for today's forecast", "agent_name": "web_surfer"}
	]
}`

const validLedgerJSON = `{
	"is_current_step_complete": {"reason": "forecast found", "answer": true},
	"need_to_replan": {"reason": "on track", "answer": false},
	"instruction_or_question": {"answer": "report the forecast", "agent_name": "web_surfer"},
	"progress_summary": "found the forecast"
}`

func newTestCaller(client llm.Client, maxRetries int) *Caller {
	return NewCaller(client, NewBuilder(LocaleEN, true), maxRetries)
}

func TestRequestPlanFirstTry(t *testing.T) {
	client := &scriptedClient{responses: []string{validPlanJSON}}
	caller := newTestCaller(client, 3)

	p, usage, err := caller.RequestPlan(context.Background(), "system", nil,
		"web_surfer: browses the web", "", []string{"web_surfer"})
	require.NoError(t, err)

	assert.Equal(t, 1, p.Len())
	assert.Equal(t, "look up the weather", p.Steps[0].Title)
	assert.Equal(t, 15, usage.TotalTokens)
	require.Len(t, client.requests, 1)
	assert.True(t, client.requests[0].JSONMode)
}

func TestRequestPlanRepairsMalformedOutput(t *testing.T) {
	client := &scriptedClient{responses: []string{
		"I think the plan should be as follows.",
		"```json\n" + validPlanJSON + "\n```",
	}}
	caller := newTestCaller(client, 3)

	p, usage, err := caller.RequestPlan(context.Background(), "system", nil,
		"web_surfer: browses the web", "", []string{"web_surfer"})
	require.NoError(t, err)
	assert.Equal(t, 1, p.Len())
	assert.Equal(t, 30, usage.TotalTokens)

	// Second request carries the rejected output and a repair hint.
	require.Len(t, client.requests, 2)
	second := client.requests[1].Messages
	require.NotEmpty(t, second)
	last := second[len(second)-1]
	assert.Equal(t, llm.RoleUser, last.Role)
	assert.Contains(t, last.Content, "could not be used")
}

func TestRequestPlanExhaustsRetries(t *testing.T) {
	client := &scriptedClient{responses: []string{"not json at all"}}
	caller := newTestCaller(client, 3)

	_, _, err := caller.RequestPlan(context.Background(), "system", nil, "team", "", []string{"web_surfer"})
	assert.ErrorIs(t, err, ErrProtocolFailure)
	assert.Len(t, client.requests, 3)
}

func TestRequestPlanRejectsUnknownAgent(t *testing.T) {
	bad := strings.ReplaceAll(validPlanJSON, "web_surfer", "ghost")
	client := &scriptedClient{responses: []string{bad}}
	caller := newTestCaller(client, 2)

	_, _, err := caller.RequestPlan(context.Background(), "system", nil, "team", "", []string{"web_surfer"})
	assert.ErrorIs(t, err, ErrProtocolFailure)
}

func TestEvaluateLedger(t *testing.T) {
	client := &scriptedClient{responses: []string{validLedgerJSON}}
	caller := newTestCaller(client, 3)

	ledger, _, err := caller.EvaluateLedger(context.Background(), "system", nil, LedgerArgs{
		Task:         "check the weather",
		RenderedPlan: "Step 1: look up the weather",
		StepIndex:    0,
		StepTitle:    "look up the weather",
		StepDetails:  "search for today's forecast",
		AgentName:    "web_surfer",
		Team:         "web_surfer: browses the web",
		Names:        []string{"web_surfer"},
	})
	require.NoError(t, err)
	assert.True(t, ledger.StepComplete())
	assert.False(t, ledger.Replan())
	assert.Equal(t, "web_surfer", ledger.InstructionOrQuestion.AgentName)
}

func TestCheckCondition(t *testing.T) {
	client := &scriptedClient{responses: []string{`{
		"reason": "star count is 7100 per the latest check",
		"condition_met": true,
		"sleep_duration_reason": "condition met, interval irrelevant",
		"sleep_duration": 60
	}`}}
	caller := newTestCaller(client, 3)

	check, _, err := caller.CheckCondition(context.Background(),
		[]llm.Message{llm.AssistantMessage("the repo has 7100 stars")},
		"check the star count", "stars reached 7000", 600)
	require.NoError(t, err)
	assert.True(t, check.Met())
	assert.Equal(t, 60, check.SleepDuration)
}

func TestFinalAnswerNoJSONMode(t *testing.T) {
	client := &scriptedClient{responses: []string{"The forecast is sunny. Found via online search."}}
	caller := newTestCaller(client, 3)

	answer, usage, err := caller.FinalAnswer(context.Background(), "system",
		[]llm.Message{llm.AssistantMessage("forecast gathered")}, "check the weather", "")
	require.NoError(t, err)
	assert.Contains(t, answer, "sunny")
	assert.Equal(t, 15, usage.TotalTokens)
	require.Len(t, client.requests, 1)
	assert.False(t, client.requests[0].JSONMode)
}

func TestFinalAnswerPromptOverride(t *testing.T) {
	client := &scriptedClient{responses: []string{"done"}}
	caller := newTestCaller(client, 3)

	_, _, err := caller.FinalAnswer(context.Background(), "", nil, "my task", "Summarize {task} briefly.")
	require.NoError(t, err)

	last := client.requests[0].Messages
	assert.Equal(t, "Summarize my task briefly.", last[len(last)-1].Content)
}

func TestBuilderInstructionEnvelope(t *testing.T) {
	b := NewBuilder(LocaleEN, false)
	out := b.InstructionEnvelope(2, "Execute the code", "Run the starter script", "coder_agent", "run main.py")
	assert.Contains(t, out, "Step 2: Execute the code")
	assert.Contains(t, out, "Instruction for coder_agent: run main.py")
}

func TestBuilderLocales(t *testing.T) {
	en := NewBuilder(LocaleEN, true)
	zh := NewBuilder(LocaleZH, true)

	enPrompt := en.PlanPrompt("web_surfer: browses", "")
	zhPrompt := zh.PlanPrompt("web_surfer: browses", "")

	assert.Contains(t, enPrompt, "SentinelPlanStep")
	assert.Contains(t, zhPrompt, "SentinelPlanStep")
	assert.Contains(t, enPrompt, "web_surfer: browses")
	assert.Contains(t, zhPrompt, "web_surfer: browses")
	// Field names stay in English across locales.
	assert.Contains(t, zhPrompt, `"needs_plan"`)
}
