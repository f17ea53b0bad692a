package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/helmsman-ai/helmsman/pkg/models"
)

// Config describes one model endpoint. BaseURL may point at any
// OpenAI-compatible server.
type Config struct {
	BaseURL     string  `yaml:"base_url"`
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	Temperature float32 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	Vision      bool    `yaml:"vision"`

	// ContextTokenLimit bounds the prompt size; zero disables truncation.
	ContextTokenLimit int `yaml:"context_token_limit"`

	// Timeout bounds a single completion call.
	Timeout time.Duration `yaml:"timeout"`
}

// OpenAIClient is a chat-completions client for OpenAI-compatible endpoints.
type OpenAIClient struct {
	api       *openai.Client
	cfg       Config
	truncator *Truncator
	logger    *slog.Logger
}

// NewOpenAIClient builds a client from config.
func NewOpenAIClient(cfg Config) (*OpenAIClient, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("llm config: model is required")
	}
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	var truncator *Truncator
	if cfg.ContextTokenLimit > 0 {
		counter, err := NewTokenCounter(cfg.Model)
		if err != nil {
			return nil, err
		}
		truncator = NewTruncator(counter, cfg.ContextTokenLimit)
	}

	return &OpenAIClient{
		api:       openai.NewClientWithConfig(apiCfg),
		cfg:       cfg,
		truncator: truncator,
		logger:    slog.With("component", "llm", "model", cfg.Model),
	}, nil
}

// SupportsVision reports whether the configured model accepts image parts.
func (c *OpenAIClient) SupportsVision() bool {
	return c.cfg.Vision
}

// Complete runs one non-streaming chat completion.
func (c *OpenAIClient) Complete(ctx context.Context, req Request) (*Response, error) {
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	messages := req.Messages
	if c.truncator != nil {
		messages = c.truncator.Truncate(messages)
	}

	apiReq := openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		Messages:    c.toAPIMessages(messages),
		Temperature: c.cfg.Temperature,
	}
	if req.MaxTokens > 0 {
		apiReq.MaxTokens = req.MaxTokens
	} else if c.cfg.MaxTokens > 0 {
		apiReq.MaxTokens = c.cfg.MaxTokens
	}
	if req.JSONMode {
		apiReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, apiReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCompletion, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, ErrEmptyResponse
	}

	usage := models.TokenUsage{
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
		TotalTokens:  resp.Usage.TotalTokens,
	}
	c.logger.Debug("Completion finished",
		"duration", time.Since(start),
		"input_tokens", usage.InputTokens,
		"output_tokens", usage.OutputTokens,
		"json_mode", req.JSONMode)

	return &Response{Content: resp.Choices[0].Message.Content, Usage: usage}, nil
}

func (c *OpenAIClient) toAPIMessages(messages []Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		apiMsg := openai.ChatCompletionMessage{Role: string(m.Role)}
		if c.cfg.Vision && hasImageParts(m.Parts) {
			apiMsg.MultiContent = toMultiContent(m.Parts)
		} else {
			apiMsg.Content = m.Content
		}
		out = append(out, apiMsg)
	}
	return out
}

func hasImageParts(parts []models.ContentPart) bool {
	for _, p := range parts {
		if p.Kind == models.PartImage {
			return true
		}
	}
	return false
}

func toMultiContent(parts []models.ContentPart) []openai.ChatMessagePart {
	out := make([]openai.ChatMessagePart, 0, len(parts))
	for _, p := range parts {
		switch p.Kind {
		case models.PartImage:
			out = append(out, openai.ChatMessagePart{
				Type:     openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{URL: p.URI},
			})
		case models.PartText:
			out = append(out, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeText,
				Text: p.Text,
			})
		case models.PartDocument:
			text := p.URI
			if p.Name != "" {
				text = p.Name + " (" + p.URI + ")"
			}
			out = append(out, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeText,
				Text: text,
			})
		}
	}
	return out
}
