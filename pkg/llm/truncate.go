package llm

import (
	"fmt"
	"log/slog"

	"github.com/pkoukk/tiktoken-go"
)

// perMessageOverhead approximates the per-message framing tokens of the
// chat-completions wire format.
const perMessageOverhead = 4

// TokenCounter counts model tokens in a text.
type TokenCounter interface {
	Count(text string) int
}

// tiktokenCounter counts tokens with the model's BPE encoding.
type tiktokenCounter struct {
	encoding *tiktoken.Tiktoken
}

// NewTokenCounter returns a counter for the given model, falling back to the
// cl100k_base encoding for models tiktoken does not know.
func NewTokenCounter(model string) (TokenCounter, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding(tiktoken.MODEL_CL100K_BASE)
		if err != nil {
			return nil, fmt.Errorf("load token encoding: %w", err)
		}
		slog.Debug("Unknown model for token counting, using cl100k_base", "model", model)
	}
	return &tiktokenCounter{encoding: enc}, nil
}

func (c *tiktokenCounter) Count(text string) int {
	return len(c.encoding.Encode(text, nil, nil))
}

// Truncator bounds a message sequence to a token budget by dropping the
// oldest non-system messages. The leading system message is always kept.
type Truncator struct {
	counter TokenCounter
	limit   int
}

// NewTruncator creates a truncator. limit <= 0 disables truncation.
func NewTruncator(counter TokenCounter, limit int) *Truncator {
	return &Truncator{counter: counter, limit: limit}
}

// CountMessages returns the approximate token footprint of the sequence.
func (t *Truncator) CountMessages(messages []Message) int {
	total := 0
	for _, m := range messages {
		total += t.counter.Count(m.Content) + perMessageOverhead
	}
	return total
}

// Truncate drops the oldest droppable messages until the sequence fits the
// budget. A leading system message is pinned; the most recent message is
// never dropped.
func (t *Truncator) Truncate(messages []Message) []Message {
	if t.limit <= 0 || len(messages) == 0 {
		return messages
	}

	pinned := 0
	if messages[0].Role == RoleSystem {
		pinned = 1
	}

	kept := messages
	dropped := 0
	for t.CountMessages(kept) > t.limit && len(kept) > pinned+1 {
		tail := make([]Message, 0, len(kept)-1)
		tail = append(tail, kept[:pinned]...)
		tail = append(tail, kept[pinned+1:]...)
		kept = tail
		dropped++
	}
	if dropped > 0 {
		slog.Debug("Truncated model context", "dropped", dropped, "kept", len(kept), "limit", t.limit)
	}
	return kept
}
