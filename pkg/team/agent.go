// Package team provides the agent contract, the team registry, and message
// dispatch to agents. Agents are black-box participants: they receive an
// instruction plus a read-only slice of the conversation and return a stream
// of events terminated by a final response.
package team

import (
	"context"

	"github.com/helmsman-ai/helmsman/pkg/models"
)

// UserProxyName is the reserved agent name denoting the human in the loop.
// Instructions addressed to it are phrased as questions.
const UserProxyName = "user_proxy"

// StreamItemKind discriminates the items an agent emits during a turn.
type StreamItemKind string

const (
	// StreamChunk is an incremental text fragment (e.g. LLM tokens).
	StreamChunk StreamItemKind = "chunk"
	// StreamEvent is an intermediate message (tool output, screenshot, thought).
	StreamEvent StreamItemKind = "event"
	// StreamFinal is the terminal response of the turn. Exactly one per
	// successful turn; the channel is closed after it.
	StreamFinal StreamItemKind = "final"
)

// StreamItem is one element of an agent's output stream.
type StreamItem struct {
	Kind    StreamItemKind
	Message models.ChatMessage
}

// Agent is a named participant that turns an instruction plus conversation
// history into a streamed response. Implementations must observe ctx
// cancellation and close the returned channel when the turn ends.
type Agent interface {
	// Name returns the unique agent name within a team.
	Name() string

	// Description returns a short capability description used in prompts.
	Description() string

	// Stream runs one agent turn. The messages slice is read-only; the last
	// entry is the instruction. Errors after stream start are delivered on
	// the error channel; both channels are closed when the turn ends.
	Stream(ctx context.Context, messages []models.ChatMessage) (<-chan StreamItem, <-chan error)
}

// Descriptor is the prompt-facing description of a team member.
type Descriptor struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}
