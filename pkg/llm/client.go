// Package llm provides the model client contract used by the orchestrator
// and an OpenAI-compatible implementation. Orchestrator calls are
// non-streaming completions, optionally constrained to JSON output.
package llm

import (
	"context"
	"errors"

	"github.com/helmsman-ai/helmsman/pkg/models"
)

var (
	ErrCompletion    = errors.New("llm completion failed")
	ErrEmptyResponse = errors.New("llm returned an empty response")
)

// Role is a chat role on the model wire.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one chat turn sent to the model. Parts, when non-empty, carries
// multimodal content for vision-capable models; Content always holds the
// text projection.
type Message struct {
	Role    Role
	Content string
	Parts   []models.ContentPart
}

// Request is a single completion request.
type Request struct {
	Messages []Message

	// JSONMode constrains the model to emit a JSON object. Used for plan,
	// ledger, and condition-check calls.
	JSONMode bool

	// MaxTokens caps the completion length; zero uses the provider default.
	MaxTokens int
}

// Response is the model's completion.
type Response struct {
	Content string
	Usage   models.TokenUsage
}

// Client produces chat completions.
type Client interface {
	// Complete runs one completion and blocks until the full response is
	// available or ctx is done.
	Complete(ctx context.Context, req Request) (*Response, error)

	// SupportsVision reports whether image parts may be sent to the model.
	SupportsVision() bool
}

// SystemMessage builds a system-role message.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// UserMessage builds a user-role message.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage builds an assistant-role message.
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// FromChat converts a transcript message to a model message. Messages from
// the user map to the user role; everything else is presented as assistant
// context.
func FromChat(m models.ChatMessage) Message {
	role := RoleAssistant
	if m.IsUser() {
		role = RoleUser
	}
	return Message{Role: role, Content: m.Content, Parts: m.Parts}
}
