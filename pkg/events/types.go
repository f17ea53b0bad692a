// Package events provides the session event stream: an in-process bus that
// assigns monotonic sequence numbers and never drops events, plus WebSocket
// delivery to UI clients with subscribe/catchup semantics.
package events

import "time"

// Event types published on the session stream.
const (
	// Session lifecycle
	EventTypeSessionStatus = "session.status"

	// Planning
	EventTypePlan             = "plan.created"
	EventTypePlanApprovalWait = "plan.approval_request"

	// Execution
	EventTypeInstruction  = "step.instruction"
	EventTypeAgentMessage = "agent.message"
	EventTypeStreamChunk  = "stream.chunk"
	EventTypeProgress     = "progress.ledger"

	// Sentinel steps
	EventTypeSentinelObservation = "sentinel.observation"

	// Terminal
	EventTypeFinalAnswer = "final.answer"
	EventTypeError       = "session.error"

	// User input relayed into a running session
	EventTypeUserMessage = "user.message"
)

// Session status values (used in SessionStatusPayload.Status).
const (
	SessionStatusAwaitingTask = "awaiting_task"
	SessionStatusPlanning     = "planning"
	SessionStatusExecuting    = "executing"
	SessionStatusReplanning   = "replanning"
	SessionStatusFinalizing   = "finalizing"
	SessionStatusPaused       = "paused"
	SessionStatusCompleted    = "completed"
	SessionStatusFailed       = "failed"
	SessionStatusCancelled    = "cancelled"
)

// Event is one entry in a session's ordered event stream. Seq is assigned by
// the bus at publish time and is strictly increasing within a session.
type Event struct {
	Seq       int64     `json:"seq"`
	SessionID string    `json:"session_id"`
	Type      string    `json:"type"`
	Payload   any       `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

// SessionChannel returns the WebSocket channel name for a session's events.
// Format: "session:{session_id}"
func SessionChannel(sessionID string) string {
	return "session:" + sessionID
}

// ClientMessage is the JSON structure for client -> server WebSocket messages.
type ClientMessage struct {
	Action  string `json:"action"`            // "subscribe", "unsubscribe", "catchup", "ping"
	Channel string `json:"channel,omitempty"` // Channel name (e.g., "session:abc-123")
	LastSeq *int64 `json:"last_seq,omitempty"`
}
