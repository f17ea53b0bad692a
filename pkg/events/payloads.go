package events

import "github.com/helmsman-ai/helmsman/pkg/plan"

// SessionStatusPayload is the payload for session.status events.
type SessionStatusPayload struct {
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// PlanPayload is the payload for plan.created events. Published whenever a
// plan is produced: initial planning, user edit, or replanning.
type PlanPayload struct {
	Plan    *plan.Plan `json:"plan"`
	Source  string     `json:"source"` // "model", "user", "replan", "memory"
	Replans int        `json:"replans"`
}

// PlanApprovalPayload is the payload for plan.approval_request events.
// Published in cooperative mode when the plan awaits user approval.
type PlanApprovalPayload struct {
	Plan *plan.Plan `json:"plan"`
}

// InstructionPayload is the payload for step.instruction events.
type InstructionPayload struct {
	StepIndex   int    `json:"step_index"`
	StepTitle   string `json:"step_title"`
	AgentName   string `json:"agent_name"`
	Instruction string `json:"instruction"`
}

// AgentMessagePayload is the payload for agent.message events: intermediate
// and terminal agent output.
type AgentMessagePayload struct {
	AgentName string `json:"agent_name"`
	Kind      string `json:"kind"` // transcript message kind
	Content   string `json:"content"`
	Final     bool   `json:"final"`
}

// StreamChunkPayload is the payload for stream.chunk transient deltas.
type StreamChunkPayload struct {
	AgentName string `json:"agent_name"`
	Delta     string `json:"delta"`
}

// ProgressPayload is the payload for progress.ledger events, one per
// orchestration loop iteration.
type ProgressPayload struct {
	StepIndex       int    `json:"step_index"`
	StepComplete    bool   `json:"step_complete"`
	NeedToReplan    bool   `json:"need_to_replan"`
	ProgressSummary string `json:"progress_summary"`
	Stalls          int    `json:"stalls"`
}

// SentinelObservationPayload is the payload for sentinel.observation events,
// one per sentinel check iteration.
type SentinelObservationPayload struct {
	StepIndex        int    `json:"step_index"`
	Attempt          int    `json:"attempt"`
	Observation      string `json:"observation"`
	ConditionMet     bool   `json:"condition_met"`
	Reason           string `json:"reason,omitempty"`
	NextSleepSeconds int    `json:"next_sleep_seconds,omitempty"`
}

// FinalAnswerPayload is the payload for final.answer events.
type FinalAnswerPayload struct {
	Answer string `json:"answer"`
}

// ErrorPayload is the payload for session.error events.
type ErrorPayload struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// UserMessagePayload is the payload for user.message events: follow-up input
// relayed into a running session.
type UserMessagePayload struct {
	Content string `json:"content"`
}
