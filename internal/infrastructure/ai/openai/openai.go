// Package openai talks to OpenAI-compatible chat completion APIs over plain HTTP.
package openai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/tesso57/substackchat/internal/infrastructure/ai"
)

const (
	providerName   = "openai"
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-3.5-turbo-1106"
	defaultTimeout = 60 * time.Second
)

// Config controls the provider.
type Config struct {
	APIKey    string
	Model     string
	BaseURL   string
	MaxTokens int
	Timeout   time.Duration
}

// Provider implements ai.ChatModel, ai.ObjectGenerator and ai.TextGenerator.
type Provider struct {
	apiKey    string
	model     string
	baseURL   string
	maxTokens int
	client    *http.Client
}

// New creates a provider. The API key is checked on each call, not here.
func New(cfg Config) *Provider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return new(Provider{
		apiKey:    cfg.APIKey,
		model:     model,
		baseURL:   strings.TrimRight(baseURL, "/"),
		maxTokens: cfg.MaxTokens,
		client:    &http.Client{Timeout: timeout},
	})
}

type wireFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type wireToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function wireFunction `json:"function"`
}

type wireMessage struct {
	Role       string         `json:"role"`
	Content    *string        `json:"content"`
	ToolCalls  []wireToolCall `json:"tool_calls,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
}

type wireTool struct {
	Type     string         `json:"type"`
	Function wireToolSchema `json:"function"`
}

type wireToolSchema struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters"`
}

type wireUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content   string `json:"content"`
			ToolCalls []struct {
				Index    int    `json:"index"`
				ID       string `json:"id"`
				Function struct {
					Name      string `json:"name"`
					Arguments string `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
	Usage *wireUsage       `json:"usage"`
	Error *streamErrorBody `json:"error"`
}

// streamErrorBody is a failure reported inside an already started stream.
type streamErrorBody struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code"`
}

func (e *streamErrorBody) err() error {
	err := fmt.Errorf("%s stream error: %s", providerName, e.Message)
	for _, kind := range []string{e.Type, e.Code} {
		if kind == "rate_limit_exceeded" || kind == "insufficient_quota" {
			return &ai.RateLimitError{Provider: providerName, Err: err}
		}
	}
	return err
}

type completion struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func text(s string) *string {
	return &s
}

func toWireMessages(system string, messages []ai.Message) []wireMessage {
	out := make([]wireMessage, 0, len(messages)+1)
	if strings.TrimSpace(system) != "" {
		out = append(out, wireMessage{Role: "system", Content: text(system)})
	}
	for _, msg := range messages {
		switch msg.Role {
		case ai.RoleTool:
			for _, res := range msg.ToolResults {
				out = append(out, wireMessage{
					Role:       "tool",
					Content:    text(string(res.Content)),
					ToolCallID: res.CallID,
				})
			}
		case ai.RoleAssistant:
			wm := wireMessage{Role: "assistant"}
			if msg.Content != "" || len(msg.ToolCalls) == 0 {
				wm.Content = text(msg.Content)
			}
			for _, call := range msg.ToolCalls {
				args := string(call.Args)
				if args == "" {
					args = "{}"
				}
				wm.ToolCalls = append(wm.ToolCalls, wireToolCall{
					ID:       call.ID,
					Type:     "function",
					Function: wireFunction{Name: call.Name, Arguments: args},
				})
			}
			out = append(out, wm)
		default:
			out = append(out, wireMessage{Role: "user", Content: text(msg.Content)})
		}
	}
	return out
}

func toWireTools(specs []ai.ToolSpec) []wireTool {
	if len(specs) == 0 {
		return nil
	}
	out := make([]wireTool, 0, len(specs))
	for _, spec := range specs {
		out = append(out, wireTool{
			Type: "function",
			Function: wireToolSchema{
				Name:        spec.Name,
				Description: spec.Description,
				Parameters:  spec.Parameters,
			},
		})
	}
	return out
}

func (p *Provider) post(ctx context.Context, payload map[string]any) (*http.Response, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("%s: %w", providerName, ai.ErrMissingAPIKey)
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		defer resp.Body.Close()
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		reqErr := fmt.Errorf("LLM request failed: %s: %s", resp.Status, strings.TrimSpace(string(detail)))
		if resp.StatusCode == http.StatusTooManyRequests {
			return nil, &ai.RateLimitError{Provider: providerName, Err: reqErr}
		}
		return nil, reqErr
	}
	return resp, nil
}

func (p *Provider) basePayload() map[string]any {
	payload := map[string]any{"model": p.model}
	if p.maxTokens > 0 {
		payload["max_tokens"] = p.maxTokens
	}
	return payload
}

// Step streams one chat completion, forwarding text deltas to onText.
func (p *Provider) Step(ctx context.Context, req ai.StepRequest, onText func(string)) (ai.StepResult, error) {
	payload := p.basePayload()
	payload["messages"] = toWireMessages(req.System, req.Messages)
	payload["stream"] = true
	payload["stream_options"] = map[string]any{"include_usage": true}
	if tools := toWireTools(req.Tools); tools != nil {
		payload["tools"] = tools
	}

	resp, err := p.post(ctx, payload)
	if err != nil {
		return ai.StepResult{}, err
	}
	defer resp.Body.Close()
	return readStream(resp.Body, onText)
}

type partialCall struct {
	id   string
	name string
	args strings.Builder
}

func readStream(body io.Reader, onText func(string)) (ai.StepResult, error) {
	var (
		result  ai.StepResult
		content strings.Builder
		calls   = map[int]*partialCall{}
		finish  string
	)

	reader := bufio.NewReader(body)
	for {
		line, err := reader.ReadString('\n')
		if line = strings.TrimSpace(line); strings.HasPrefix(line, "data:") {
			data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if data == "[DONE]" {
				break
			}
			var chunk streamChunk
			if jsonErr := json.Unmarshal([]byte(data), &chunk); jsonErr != nil {
				return ai.StepResult{}, fmt.Errorf("decode stream chunk: %w", jsonErr)
			}
			if chunk.Error != nil {
				return ai.StepResult{}, chunk.Error.err()
			}
			if chunk.Usage != nil {
				result.Usage = ai.Usage{
					PromptTokens:     chunk.Usage.PromptTokens,
					CompletionTokens: chunk.Usage.CompletionTokens,
				}
			}
			for _, choice := range chunk.Choices {
				if choice.Delta.Content != "" {
					content.WriteString(choice.Delta.Content)
					if onText != nil {
						onText(choice.Delta.Content)
					}
				}
				for _, tc := range choice.Delta.ToolCalls {
					call, ok := calls[tc.Index]
					if !ok {
						call = &partialCall{}
						calls[tc.Index] = call
					}
					if tc.ID != "" {
						call.id = tc.ID
					}
					if tc.Function.Name != "" {
						call.name = tc.Function.Name
					}
					call.args.WriteString(tc.Function.Arguments)
				}
				if choice.FinishReason != nil {
					finish = *choice.FinishReason
				}
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return ai.StepResult{}, fmt.Errorf("read stream: %w", err)
		}
	}

	indexes := make([]int, 0, len(calls))
	for idx := range calls {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)
	for _, idx := range indexes {
		call := calls[idx]
		args := strings.TrimSpace(call.args.String())
		if args == "" {
			args = "{}"
		}
		result.ToolCalls = append(result.ToolCalls, ai.ToolCall{
			ID:   call.id,
			Name: call.name,
			Args: json.RawMessage(args),
		})
	}
	result.Text = content.String()
	result.FinishReason = mapFinishReason(finish, len(result.ToolCalls) > 0)
	return result, nil
}

func mapFinishReason(reason string, hasCalls bool) string {
	switch reason {
	case "stop":
		if hasCalls {
			return ai.FinishToolCalls
		}
		return ai.FinishStop
	case "tool_calls", "function_call":
		return ai.FinishToolCalls
	case "length":
		return ai.FinishLength
	case "":
		if hasCalls {
			return ai.FinishToolCalls
		}
		return ai.FinishStop
	default:
		return ai.FinishOther
	}
}

// GenerateObject asks for a JSON response constrained by the request schema.
func (p *Provider) GenerateObject(ctx context.Context, req ai.ObjectRequest) (json.RawMessage, error) {
	payload := p.basePayload()
	payload["messages"] = toWireMessages("", []ai.Message{{Role: ai.RoleUser, Content: req.Prompt}})
	payload["response_format"] = map[string]any{
		"type": "json_schema",
		"json_schema": map[string]any{
			"name":        req.Name,
			"description": req.Description,
			"schema":      req.Schema,
			"strict":      false,
		},
	}

	content, err := p.complete(ctx, payload)
	if err != nil {
		return nil, err
	}
	if !json.Valid([]byte(content)) {
		return nil, fmt.Errorf("LLM response is not valid JSON")
	}
	return json.RawMessage(content), nil
}

// Generate returns a plain completion for the prompt.
func (p *Provider) Generate(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", errors.New("prompt is empty")
	}
	payload := p.basePayload()
	payload["messages"] = toWireMessages("", []ai.Message{{Role: ai.RoleUser, Content: prompt}})
	return p.complete(ctx, payload)
}

func (p *Provider) complete(ctx context.Context, payload map[string]any) (string, error) {
	resp, err := p.post(ctx, payload)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var parsed completion
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("LLM response had no choices")
	}
	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		return "", errors.New("LLM response was empty")
	}
	return content, nil
}
