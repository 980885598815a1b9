package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tesso57/substackchat/internal/application/settings"
	"github.com/tesso57/substackchat/internal/application/tools"
	"github.com/tesso57/substackchat/internal/application/usecase"
	"github.com/tesso57/substackchat/internal/infrastructure/ai"
	"github.com/tesso57/substackchat/internal/infrastructure/ai/provider"
	"github.com/tesso57/substackchat/internal/infrastructure/feed"
	"github.com/tesso57/substackchat/internal/infrastructure/logging"
	"github.com/tesso57/substackchat/internal/infrastructure/scrape"
)

type toolRunner interface {
	Specs() []ai.ToolSpec
	Execute(ctx context.Context, name string, args json.RawMessage) (json.RawMessage, error)
}

func providerConfig(cfg settings.LLMConfig) provider.Config {
	return provider.Config{
		Provider:             cfg.Provider,
		ObjectProvider:       cfg.ObjectProviderOrDefault(),
		Model:                cfg.Model,
		ObjectModel:          cfg.ObjectModel,
		BaseURL:              cfg.BaseURL,
		OpenAIAPIKey:         cfg.OpenAIAPIKey,
		AnthropicAPIKey:      cfg.AnthropicAPIKey,
		MaxTokens:            cfg.MaxTokens,
		Timeout:              cfg.Timeout,
		CodexCommand:         cfg.Codex.Command,
		CodexReasoningEffort: cfg.Codex.ReasoningEffort,
	}
}

// buildRegistry wires feed reading, scraping and resource extraction into the tool table.
func buildRegistry(cfg settings.Settings, logger logging.Logger) (*tools.Registry, error) {
	locator, err := scrape.NewLocator(cfg.Scrape.Locator, cfg.Scrape.Selector)
	if err != nil {
		return nil, err
	}
	truncation, err := usecase.ParseTruncationStrategy(cfg.Resources.Truncation)
	if err != nil {
		return nil, err
	}
	generator, err := provider.NewObjectGenerator(providerConfig(cfg.LLM))
	if err != nil {
		return nil, fmt.Errorf("object generator: %w", err)
	}

	feeds := feed.NewReader(feed.Config{
		UserAgent: cfg.Feed.UserAgent,
		Suffix:    cfg.Feed.Suffix,
		Timeout:   cfg.Feed.Timeout,
	}, logger)
	pages := scrape.NewScraper(scrape.Config{
		UserAgent: cfg.Scrape.UserAgent,
		Timeout:   cfg.Scrape.Timeout,
	}, nil, logger)

	newsletters := usecase.NewNewsletterService(feeds, pages, locator, logger)
	resources := usecase.NewResourceService(newsletters, scrape.Anchors, generator, truncation)
	return tools.NewSubstackRegistry(newsletters, resources)
}

func buildChatService(cfg settings.Settings, logger logging.Logger) (usecase.ChatService, error) {
	registry, err := buildRegistry(cfg, logger)
	if err != nil {
		return usecase.ChatService{}, err
	}
	model, err := provider.NewChatModel(providerConfig(cfg.LLM))
	if err != nil {
		return usecase.ChatService{}, fmt.Errorf("chat model: %w", err)
	}
	return usecase.NewChatService(model, registry, cfg.Server.SystemPrompt, cfg.Server.MaxSteps, logger), nil
}
