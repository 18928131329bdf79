// Package llm provides the chat-completion client used for article
// analysis. The client speaks the OpenAI-compatible Chat Completions
// protocol, which DeepSeek and most hosted model gateways implement.
package llm

import (
	"context"
	"errors"
	"time"
)

// Common errors returned by the client.
var (
	ErrNoAPIKey      = errors.New("llm: API key not configured")
	ErrRateLimit     = errors.New("llm: rate limit exceeded")
	ErrProviderDown  = errors.New("llm: provider unavailable")
	ErrEmptyResponse = errors.New("llm: empty response from model")
	ErrContextLength = errors.New("llm: context length exceeded")
)

// Role represents the role of a message sender.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message represents a single message in a conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// SystemMessage creates a system prompt message.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// ChatOptions configures a single chat request.
type ChatOptions struct {
	Model       string   `json:"model,omitempty"`
	Temperature float64  `json:"temperature,omitempty"`
	MaxTokens   int      `json:"max_tokens,omitempty"`
	Stop        []string `json:"stop,omitempty"`
}

// Usage tracks token consumption for a request.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response represents a complete response from the model.
type Response struct {
	Content string        `json:"content"`
	Model   string        `json:"model"`
	Usage   Usage         `json:"usage"`
	Latency time.Duration `json:"latency"`
}

// Client is the interface the analysis engine depends on. It is satisfied
// by DeepSeekClient and by test fakes.
type Client interface {
	// Chat sends a conversation and returns the model's reply.
	// A structurally valid reply with no content is ErrEmptyResponse.
	Chat(ctx context.Context, messages []Message, opts *ChatOptions) (*Response, error)
}
