package models

import "time"

// MessageKind discriminates transcript message variants.
type MessageKind string

const (
	MessageText          MessageKind = "text"
	MessageMultimodal    MessageKind = "multimodal"
	MessageThought       MessageKind = "thought"
	MessageStreamChunk   MessageKind = "stream_chunk"
	MessageAgentResponse MessageKind = "agent_response"
)

// TokenUsage aggregates token consumption for a single LLM call or agent turn.
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// Add accumulates usage from another call.
func (u *TokenUsage) Add(other TokenUsage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
	u.TotalTokens += other.TotalTokens
}

// ChatMessage is one entry in a session transcript. Source names the agent
// (or "user") that produced it. Content carries the text for all kinds;
// Parts is populated only for MessageMultimodal.
type ChatMessage struct {
	Kind      MessageKind   `json:"kind"`
	Source    string        `json:"source"`
	Content   string        `json:"content"`
	Parts     []ContentPart `json:"parts,omitempty"`
	Usage     *TokenUsage   `json:"usage,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// TextMessage builds a plain text transcript message.
func TextMessage(source, content string) ChatMessage {
	return ChatMessage{
		Kind:      MessageText,
		Source:    source,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// ThoughtMessage builds a reasoning/thought transcript message.
func ThoughtMessage(source, content string) ChatMessage {
	return ChatMessage{
		Kind:      MessageThought,
		Source:    source,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// MultimodalMessage builds a transcript message from content parts. Content
// holds the text projection so non-vision consumers need no special casing.
func MultimodalMessage(source string, parts []ContentPart) ChatMessage {
	return ChatMessage{
		Kind:      MessageMultimodal,
		Source:    source,
		Content:   ToModelText(parts, "[image]"),
		Parts:     parts,
		Timestamp: time.Now(),
	}
}

// AgentResponseMessage builds the terminal message of an agent turn.
func AgentResponseMessage(source, content string, usage *TokenUsage) ChatMessage {
	return ChatMessage{
		Kind:      MessageAgentResponse,
		Source:    source,
		Content:   content,
		Usage:     usage,
		Timestamp: time.Now(),
	}
}

// IsUser reports whether the message came from the human user.
func (m ChatMessage) IsUser() bool {
	return m.Source == "user" || m.Source == "user_proxy"
}
