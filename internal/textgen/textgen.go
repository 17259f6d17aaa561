// Package textgen is the text-generation service used by the planner and the coach chat.
// A Client turns a system prompt plus a user prompt into a single completion.
package textgen

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyContent    = errors.New("empty completion content")
	ErrUnknownProvider = errors.New("unknown text generation provider")
)

type ResponseFormat string

const (
	ResponseFormatText ResponseFormat = "text"
	ResponseFormatJSON ResponseFormat = "json"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

type Request struct {
	SystemPrompt   string
	UserPrompt     string
	ResponseFormat ResponseFormat
	Temperature    float64
	MaxTokens      int
}

type Usage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens"`
	TotalTokens      int `json:"totalTokens"`
}

func (u Usage) Add(other Usage) Usage {
	return Usage{
		PromptTokens:     u.PromptTokens + other.PromptTokens,
		CompletionTokens: u.CompletionTokens + other.CompletionTokens,
		TotalTokens:      u.TotalTokens + other.TotalTokens,
	}
}

type Completion struct {
	Content string
	Usage   Usage
}

type Client interface {
	Complete(ctx context.Context, req Request) (*Completion, error)
}

type Config struct {
	Provider string
	BaseURL  string
	Model    string
	APIKey   string
}

// New creates the client for the configured provider.
func New(ctx context.Context, cfg Config) (Client, error) {
	switch strings.ToLower(cfg.Provider) {
	case ProviderOpenAI, "":
		return NewOpenAIClient(cfg.BaseURL, cfg.APIKey, cfg.Model, nil), nil
	case ProviderGemini:
		return NewGeminiClient(ctx, cfg.BaseURL, cfg.APIKey, cfg.Model, nil)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, cfg.Provider)
	}
}
