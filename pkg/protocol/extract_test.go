package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{
			name:  "bare object",
			input: `{"a": 1}`,
			want:  `{"a": 1}`,
		},
		{
			name:  "fenced with language tag",
			input: "```json\n{\"a\": 1}\n```",
			want:  "{\"a\": 1}",
		},
		{
			name:  "fenced without tag",
			input: "```\n{\"a\": 1}\n```",
			want:  "{\"a\": 1}",
		},
		{
			name:  "think prefix",
			input: "<think>let me reason {not json}</think>\n{\"a\": 1}",
			want:  "{\"a\": 1}",
		},
		{
			name:  "leading and trailing prose",
			input: "Here is the plan:\n{\"a\": {\"b\": 2}}\nHope this helps!",
			want:  `{"a": {"b": 2}}`,
		},
		{
			name:  "braces inside strings",
			input: `{"a": "open { and close } and \" quote"}`,
			want:  `{"a": "open { and close } and \" quote"}`,
		},
		{
			name:    "no object",
			input:   "I cannot answer that.",
			wantErr: ErrNoJSON,
		},
		{
			name:    "unterminated object",
			input:   `{"a": 1`,
			wantErr: ErrUnbalanced,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, got)
		})
	}
}

func TestLedgerValidate(t *testing.T) {
	team := []string{"web_surfer", "coder_agent"}

	valid := &ProgressLedger{
		IsCurrentStepComplete: &BoolAnswer{Reason: "done", Answer: true},
		NeedToReplan:          &BoolAnswer{Reason: "on track", Answer: false},
		InstructionOrQuestion: &Instruction{Answer: "run the script", AgentName: "coder_agent"},
		ProgressSummary:       "step one complete",
	}
	require.NoError(t, valid.Validate(team))
	assert.True(t, valid.StepComplete())
	assert.False(t, valid.Replan())

	t.Run("missing boolean object", func(t *testing.T) {
		l := *valid
		l.NeedToReplan = nil
		assert.ErrorIs(t, l.Validate(team), ErrInvalidResponse)
	})

	t.Run("unknown agent", func(t *testing.T) {
		l := *valid
		l.InstructionOrQuestion = &Instruction{Answer: "do it", AgentName: "ghost"}
		assert.ErrorIs(t, l.Validate(team), ErrInvalidResponse)
	})

	t.Run("empty instruction", func(t *testing.T) {
		l := *valid
		l.InstructionOrQuestion = &Instruction{Answer: "  ", AgentName: "coder_agent"}
		assert.ErrorIs(t, l.Validate(team), ErrInvalidResponse)
	})
}

func TestConditionCheckValidate(t *testing.T) {
	met := true
	valid := &ConditionCheck{
		Reason:              "count reached",
		ConditionMet:        &met,
		SleepDurationReason: "near completion",
		SleepDuration:       30,
	}
	require.NoError(t, valid.Validate())
	assert.True(t, valid.Met())

	t.Run("missing condition_met", func(t *testing.T) {
		c := *valid
		c.ConditionMet = nil
		assert.ErrorIs(t, c.Validate(), ErrInvalidResponse)
		assert.False(t, c.Met())
	})

	t.Run("non-positive sleep", func(t *testing.T) {
		c := *valid
		c.SleepDuration = 0
		assert.ErrorIs(t, c.Validate(), ErrInvalidResponse)
	})
}
