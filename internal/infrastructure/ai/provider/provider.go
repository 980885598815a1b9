// Package provider builds ai implementations from configuration.
package provider

import (
	"time"

	"github.com/tesso57/substackchat/internal/infrastructure/ai"
	"github.com/tesso57/substackchat/internal/infrastructure/ai/anthropic"
	"github.com/tesso57/substackchat/internal/infrastructure/ai/codexcli"
	"github.com/tesso57/substackchat/internal/infrastructure/ai/openai"
	"github.com/tesso57/substackchat/internal/infrastructure/ai/promptobject"
)

// Provider names.
const (
	OpenAI    = "openai"
	Anthropic = "anthropic"
	Codex     = "codex"
)

// Config selects and configures the providers.
type Config struct {
	Provider        string
	ObjectProvider  string
	Model           string
	ObjectModel     string
	BaseURL         string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	MaxTokens       int
	Timeout         time.Duration

	CodexCommand         string
	CodexReasoningEffort string
}

// NewChatModel returns the streaming, tool-using model for the chat endpoint.
func NewChatModel(cfg Config) (ai.ChatModel, error) {
	switch cfg.Provider {
	case OpenAI:
		return openai.New(openai.Config{
			APIKey:    cfg.OpenAIAPIKey,
			Model:     cfg.Model,
			BaseURL:   cfg.BaseURL,
			MaxTokens: cfg.MaxTokens,
			Timeout:   cfg.Timeout,
		}), nil
	case Anthropic:
		return anthropic.New(anthropic.Config{
			APIKey:    cfg.AnthropicAPIKey,
			Model:     cfg.Model,
			BaseURL:   cfg.BaseURL,
			MaxTokens: cfg.MaxTokens,
		}), nil
	default:
		return nil, ai.ErrUnsupportedProvider{Provider: cfg.Provider}
	}
}

// NewObjectGenerator returns the structured-generation backend used for resource extraction.
// It falls back to the chat provider when no object provider is set, and to the
// chat model only when both use the same provider.
func NewObjectGenerator(cfg Config) (ai.ObjectGenerator, error) {
	name := defaultIfEmpty(cfg.ObjectProvider, cfg.Provider)
	model := cfg.ObjectModel
	baseURL := cfg.BaseURL
	if name == cfg.Provider {
		model = defaultIfEmpty(model, cfg.Model)
	} else {
		// Chat settings belong to another vendor; an empty model selects this provider's default.
		baseURL = ""
	}

	switch name {
	case OpenAI:
		return openai.New(openai.Config{
			APIKey:    cfg.OpenAIAPIKey,
			Model:     model,
			BaseURL:   baseURL,
			MaxTokens: cfg.MaxTokens,
			Timeout:   cfg.Timeout,
		}), nil
	case Anthropic:
		return anthropic.New(anthropic.Config{
			APIKey:    cfg.AnthropicAPIKey,
			Model:     model,
			BaseURL:   baseURL,
			MaxTokens: cfg.MaxTokens,
		}), nil
	case Codex:
		return promptobject.New(codexcli.NewClient(codexcli.Config{
			Command:         cfg.CodexCommand,
			Model:           model,
			ReasoningEffort: cfg.CodexReasoningEffort,
			Timeout:         cfg.Timeout,
		})), nil
	default:
		return nil, ai.ErrUnsupportedProvider{Provider: name}
	}
}

func defaultIfEmpty(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
