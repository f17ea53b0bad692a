package protocol

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var ErrInvalidResponse = errors.New("model response failed validation")

// BoolAnswer is a reasoned yes/no field of the progress ledger.
type BoolAnswer struct {
	Reason string `json:"reason"`
	Answer bool   `json:"answer"`
}

// Instruction is the ledger's next-action field: what to do and who does it.
type Instruction struct {
	Answer    string `json:"answer"`
	AgentName string `json:"agent_name"`
}

// ProgressLedger is the model's per-iteration assessment of the current
// step. Required fields are pointers so a missing key is distinguishable
// from a false answer and triggers a repair retry.
type ProgressLedger struct {
	IsCurrentStepComplete *BoolAnswer  `json:"is_current_step_complete"`
	NeedToReplan          *BoolAnswer  `json:"need_to_replan"`
	InstructionOrQuestion *Instruction `json:"instruction_or_question"`
	ProgressSummary       string       `json:"progress_summary"`
}

// Validate enforces the ledger schema. The target agent must resolve in the
// team.
func (l *ProgressLedger) Validate(agentNames []string) error {
	if l.IsCurrentStepComplete == nil {
		return fmt.Errorf("%w: ledger is missing is_current_step_complete", ErrInvalidResponse)
	}
	if l.NeedToReplan == nil {
		return fmt.Errorf("%w: ledger is missing need_to_replan", ErrInvalidResponse)
	}
	if l.InstructionOrQuestion == nil {
		return fmt.Errorf("%w: ledger is missing instruction_or_question", ErrInvalidResponse)
	}
	if strings.TrimSpace(l.InstructionOrQuestion.Answer) == "" {
		return fmt.Errorf("%w: ledger instruction_or_question.answer is empty", ErrInvalidResponse)
	}
	if !slices.Contains(agentNames, l.InstructionOrQuestion.AgentName) {
		return fmt.Errorf("%w: ledger agent_name %q is not a team member", ErrInvalidResponse, l.InstructionOrQuestion.AgentName)
	}
	return nil
}

// StepComplete reports the ledger's step-completion verdict.
func (l *ProgressLedger) StepComplete() bool {
	return l.IsCurrentStepComplete != nil && l.IsCurrentStepComplete.Answer
}

// Replan reports the ledger's replan verdict.
func (l *ProgressLedger) Replan() bool {
	return l.NeedToReplan != nil && l.NeedToReplan.Answer
}

// ConditionCheck is the model's verdict on a sentinel text condition.
// ConditionMet is a pointer so a missing key fails validation instead of
// silently reading as "not met".
type ConditionCheck struct {
	Reason              string `json:"reason"`
	ConditionMet        *bool  `json:"condition_met"`
	SleepDurationReason string `json:"sleep_duration_reason"`
	SleepDuration       int    `json:"sleep_duration"`
}

// Validate enforces the condition-check schema.
func (c *ConditionCheck) Validate() error {
	if c.ConditionMet == nil {
		return fmt.Errorf("%w: condition check is missing condition_met", ErrInvalidResponse)
	}
	if c.SleepDuration <= 0 {
		return fmt.Errorf("%w: condition check sleep_duration must be positive, got %d", ErrInvalidResponse, c.SleepDuration)
	}
	return nil
}

// Met reports whether the condition was judged fulfilled.
func (c *ConditionCheck) Met() bool {
	return c.ConditionMet != nil && *c.ConditionMet
}
