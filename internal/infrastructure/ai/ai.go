// Package ai defines the contracts shared by hosted model providers.
package ai

import (
	"context"
	"encoding/json"
)

// TextGenerator turns a prompt into free text.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// MessageRole identifies the author of a model message.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleTool      MessageRole = "tool"
)

// ToolCall is a request from the model to run a tool.
type ToolCall struct {
	ID   string
	Name string
	Args json.RawMessage
}

// ToolResult answers a ToolCall.
type ToolResult struct {
	CallID  string
	Name    string
	Content json.RawMessage
	IsError bool
}

// Message is one turn of a model conversation.
// Assistant messages may carry ToolCalls; tool messages carry ToolResults.
type Message struct {
	Role        MessageRole
	Content     string
	ToolCalls   []ToolCall
	ToolResults []ToolResult
}

// ToolSpec declares a tool the model may call. Parameters is a JSON schema object.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// StepRequest is a single model call.
type StepRequest struct {
	System   string
	Messages []Message
	Tools    []ToolSpec
}

// Usage reports token accounting for a step.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
}

// Finish reasons reported by StepResult.
const (
	FinishStop      = "stop"
	FinishToolCalls = "tool-calls"
	FinishLength    = "length"
	FinishOther     = "other"
)

// StepResult is the outcome of one streamed model call.
type StepResult struct {
	Text         string
	ToolCalls    []ToolCall
	FinishReason string
	Usage        Usage
}

// ChatModel streams one step of a tool-using conversation. onText receives
// text deltas as they arrive; the returned result holds the full step.
type ChatModel interface {
	Step(ctx context.Context, req StepRequest, onText func(string)) (StepResult, error)
}

// ObjectRequest asks for a JSON value matching Schema.
type ObjectRequest struct {
	Name        string
	Description string
	Prompt      string
	Schema      map[string]any
}

// ObjectGenerator produces structured output.
type ObjectGenerator interface {
	GenerateObject(ctx context.Context, req ObjectRequest) (json.RawMessage, error)
}
