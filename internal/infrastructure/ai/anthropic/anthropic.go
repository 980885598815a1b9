// Package anthropic adapts the Anthropic Messages API to the ai contracts.
package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/tesso57/substackchat/internal/infrastructure/ai"
)

const (
	providerName     = "anthropic"
	defaultModel     = "claude-3-5-haiku-latest"
	defaultMaxTokens = 1024
)

// Config controls the provider.
type Config struct {
	APIKey    string
	Model     string
	BaseURL   string
	MaxTokens int
}

// Provider implements ai.ChatModel, ai.ObjectGenerator and ai.TextGenerator.
type Provider struct {
	client    sdk.Client
	apiKey    string
	model     string
	maxTokens int64
}

// New creates a provider. Retries stay with the caller.
func New(cfg Config) *Provider {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	maxTokens := int64(cfg.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return new(Provider{
		client:    sdk.NewClient(opts...),
		apiKey:    cfg.APIKey,
		model:     model,
		maxTokens: maxTokens,
	})
}

func (p *Provider) params(system string, messages []ai.Message, tools []ai.ToolSpec) sdk.MessageNewParams {
	params := sdk.MessageNewParams{
		Model:     sdk.Model(p.model),
		MaxTokens: p.maxTokens,
		Messages:  toMessageParams(messages),
	}
	if strings.TrimSpace(system) != "" {
		params.System = []sdk.TextBlockParam{{Text: system}}
	}
	for _, spec := range tools {
		params.Tools = append(params.Tools, toToolParam(spec))
	}
	return params
}

func toToolParam(spec ai.ToolSpec) sdk.ToolUnionParam {
	schema := sdk.ToolInputSchemaParam{Properties: spec.Parameters["properties"]}
	if required, ok := spec.Parameters["required"].([]string); ok {
		schema.Required = required
	}
	tool := &sdk.ToolParam{
		Name:        spec.Name,
		InputSchema: schema,
	}
	if spec.Description != "" {
		tool.Description = sdk.String(spec.Description)
	}
	return sdk.ToolUnionParam{OfTool: tool}
}

func toMessageParams(messages []ai.Message) []sdk.MessageParam {
	out := make([]sdk.MessageParam, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case ai.RoleAssistant:
			var blocks []sdk.ContentBlockParamUnion
			if msg.Content != "" {
				blocks = append(blocks, sdk.NewTextBlock(msg.Content))
			}
			for _, call := range msg.ToolCalls {
				args := call.Args
				if len(args) == 0 {
					args = json.RawMessage(`{}`)
				}
				blocks = append(blocks, sdk.NewToolUseBlock(call.ID, args, call.Name))
			}
			if len(blocks) == 0 {
				continue
			}
			out = append(out, sdk.NewAssistantMessage(blocks...))
		case ai.RoleTool:
			blocks := make([]sdk.ContentBlockParamUnion, 0, len(msg.ToolResults))
			for _, res := range msg.ToolResults {
				blocks = append(blocks, sdk.NewToolResultBlock(res.CallID, string(res.Content), res.IsError))
			}
			if len(blocks) == 0 {
				continue
			}
			out = append(out, sdk.NewUserMessage(blocks...))
		default:
			out = append(out, sdk.NewUserMessage(sdk.NewTextBlock(msg.Content)))
		}
	}
	return out
}

func (p *Provider) checkKey() error {
	if strings.TrimSpace(p.apiKey) == "" {
		return fmt.Errorf("%s: %w", providerName, ai.ErrMissingAPIKey)
	}
	return nil
}

func wrapError(err error) error {
	var apiErr *sdk.Error
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests {
		return &ai.RateLimitError{Provider: providerName, Err: err}
	}
	return fmt.Errorf("%s request failed: %w", providerName, err)
}

// Step streams one message, forwarding text deltas to onText.
func (p *Provider) Step(ctx context.Context, req ai.StepRequest, onText func(string)) (ai.StepResult, error) {
	if err := p.checkKey(); err != nil {
		return ai.StepResult{}, err
	}

	stream := p.client.Messages.NewStreaming(ctx, p.params(req.System, req.Messages, req.Tools))
	defer stream.Close()

	message := sdk.Message{}
	for stream.Next() {
		event := stream.Current()
		if err := message.Accumulate(event); err != nil {
			return ai.StepResult{}, fmt.Errorf("accumulate stream: %w", err)
		}
		if ev, ok := event.AsAny().(sdk.ContentBlockDeltaEvent); ok {
			if delta, ok := ev.Delta.AsAny().(sdk.TextDelta); ok && onText != nil && delta.Text != "" {
				onText(delta.Text)
			}
		}
	}
	if err := stream.Err(); err != nil {
		return ai.StepResult{}, wrapError(err)
	}
	return toStepResult(message), nil
}

func toStepResult(message sdk.Message) ai.StepResult {
	var (
		result ai.StepResult
		text   strings.Builder
	)
	for _, block := range message.Content {
		switch b := block.AsAny().(type) {
		case sdk.TextBlock:
			text.WriteString(b.Text)
		case sdk.ToolUseBlock:
			args := b.Input
			if len(args) == 0 {
				args = json.RawMessage(`{}`)
			}
			result.ToolCalls = append(result.ToolCalls, ai.ToolCall{ID: b.ID, Name: b.Name, Args: args})
		}
	}
	result.Text = text.String()
	result.Usage = ai.Usage{
		PromptTokens:     int(message.Usage.InputTokens),
		CompletionTokens: int(message.Usage.OutputTokens),
	}
	switch string(message.StopReason) {
	case "end_turn", "stop_sequence":
		result.FinishReason = ai.FinishStop
	case "tool_use":
		result.FinishReason = ai.FinishToolCalls
	case "max_tokens":
		result.FinishReason = ai.FinishLength
	default:
		result.FinishReason = ai.FinishOther
	}
	if len(result.ToolCalls) > 0 {
		result.FinishReason = ai.FinishToolCalls
	}
	return result
}

// GenerateObject forces a single tool call whose input is the requested object.
func (p *Provider) GenerateObject(ctx context.Context, req ai.ObjectRequest) (json.RawMessage, error) {
	if err := p.checkKey(); err != nil {
		return nil, err
	}
	name := req.Name
	if name == "" {
		name = "result"
	}
	params := p.params("", []ai.Message{{Role: ai.RoleUser, Content: req.Prompt}}, []ai.ToolSpec{{
		Name:        name,
		Description: req.Description,
		Parameters:  req.Schema,
	}})
	params.ToolChoice = sdk.ToolChoiceUnionParam{OfTool: &sdk.ToolChoiceToolParam{Name: name}}

	message, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, wrapError(err)
	}
	for _, block := range message.Content {
		if use, ok := block.AsAny().(sdk.ToolUseBlock); ok && use.Name == name {
			return use.Input, nil
		}
	}
	return nil, errors.New("LLM response had no structured output")
}

// Generate returns the text of a single message.
func (p *Provider) Generate(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", errors.New("prompt is empty")
	}
	if err := p.checkKey(); err != nil {
		return "", err
	}
	message, err := p.client.Messages.New(ctx, p.params("", []ai.Message{{Role: ai.RoleUser, Content: prompt}}, nil))
	if err != nil {
		return "", wrapError(err)
	}
	content := strings.TrimSpace(toStepResult(*message).Text)
	if content == "" {
		return "", errors.New("LLM response was empty")
	}
	return content, nil
}
