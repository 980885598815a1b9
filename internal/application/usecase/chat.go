package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tesso57/substackchat/internal/domain/conversation"
	"github.com/tesso57/substackchat/internal/infrastructure/ai"
	"github.com/tesso57/substackchat/internal/infrastructure/logging"
)

// DefaultMaxSteps bounds the model calls a single chat turn may make.
const DefaultMaxSteps = 5

// ToolExecutor exposes the tools the model may call.
type ToolExecutor interface {
	Specs() []ai.ToolSpec
	Execute(ctx context.Context, name string, args json.RawMessage) (json.RawMessage, error)
}

// ChatStream receives the events of a chat turn as they happen.
type ChatStream interface {
	Text(delta string) error
	ToolCall(call ai.ToolCall) error
	ToolResult(result ai.ToolResult) error
	FinishStep(reason string, usage ai.Usage, continued bool) error
	FinishMessage(reason string, usage ai.Usage) error
}

// ChatService runs the tool-using conversation loop.
type ChatService struct {
	Model    ai.ChatModel
	Tools    ToolExecutor
	System   string
	MaxSteps int
	Logger   logging.Logger
}

// NewChatService constructs a ChatService.
func NewChatService(model ai.ChatModel, tools ToolExecutor, system string, maxSteps int, logger logging.Logger) ChatService {
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}
	return ChatService{
		Model:    model,
		Tools:    tools,
		System:   system,
		MaxSteps: maxSteps,
		Logger:   logging.OrNop(logger),
	}
}

// Run answers the last user message of history. Each step may call tools; their
// results are fed back to the model until it answers in text or the step budget
// runs out. On the last step no tools are offered, so the model has to answer.
func (s ChatService) Run(ctx context.Context, history []conversation.ChatMessage, stream ChatStream) error {
	if err := conversation.Validate(history); err != nil {
		return err
	}
	logger := logging.OrNop(s.Logger)
	maxSteps := s.MaxSteps
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}

	messages := ToModelMessages(history)
	var total ai.Usage
	for step := 1; step <= maxSteps; step++ {
		req := ai.StepRequest{System: s.System, Messages: messages}
		last := step == maxSteps
		if !last && s.Tools != nil {
			req.Tools = s.Tools.Specs()
		}

		var streamErr error
		res, err := s.Model.Step(ctx, req, func(delta string) {
			if streamErr == nil {
				streamErr = stream.Text(delta)
			}
		})
		if err != nil {
			return fmt.Errorf("model step %d: %w", step, err)
		}
		if streamErr != nil {
			return streamErr
		}
		total.PromptTokens += res.Usage.PromptTokens
		total.CompletionTokens += res.Usage.CompletionTokens

		if len(res.ToolCalls) == 0 || last || s.Tools == nil {
			reason := res.FinishReason
			if reason == "" || reason == ai.FinishToolCalls {
				reason = ai.FinishStop
			}
			if err := stream.FinishStep(reason, res.Usage, false); err != nil {
				return err
			}
			return stream.FinishMessage(reason, total)
		}

		results := make([]ai.ToolResult, 0, len(res.ToolCalls))
		for _, call := range res.ToolCalls {
			if err := stream.ToolCall(call); err != nil {
				return err
			}
		}
		for _, call := range res.ToolCalls {
			result := s.execute(ctx, logger, call)
			if err := stream.ToolResult(result); err != nil {
				return err
			}
			results = append(results, result)
		}
		messages = append(messages,
			ai.Message{Role: ai.RoleAssistant, Content: res.Text, ToolCalls: res.ToolCalls},
			ai.Message{Role: ai.RoleTool, ToolResults: results},
		)
		if err := stream.FinishStep(ai.FinishToolCalls, res.Usage, true); err != nil {
			return err
		}
	}
	return nil
}

func (s ChatService) execute(ctx context.Context, logger logging.Logger, call ai.ToolCall) ai.ToolResult {
	out, err := s.Tools.Execute(ctx, call.Name, call.Args)
	if err != nil {
		logger.Warn("tool call failed",
			logging.String("tool", call.Name),
			logging.String("tool_call_id", call.ID),
			logging.Error(err),
		)
		payload, _ := json.Marshal(map[string]string{"error": err.Error()})
		return ai.ToolResult{CallID: call.ID, Name: call.Name, Content: payload, IsError: true}
	}
	return ai.ToolResult{CallID: call.ID, Name: call.Name, Content: out}
}

// ToModelMessages converts UI history into model messages. Finished tool
// invocations become a call/result pair ahead of the assistant's text;
// unfinished ones are dropped.
func ToModelMessages(history []conversation.ChatMessage) []ai.Message {
	out := make([]ai.Message, 0, len(history))
	for _, msg := range history {
		if msg.Role == conversation.RoleUser {
			out = append(out, ai.Message{Role: ai.RoleUser, Content: msg.Content})
			continue
		}

		var (
			calls   []ai.ToolCall
			results []ai.ToolResult
		)
		for _, inv := range msg.ToolInvocations {
			if !inv.Done() {
				continue
			}
			calls = append(calls, ai.ToolCall{ID: inv.ToolCallID, Name: inv.ToolName, Args: inv.Args})
			results = append(results, ai.ToolResult{CallID: inv.ToolCallID, Name: inv.ToolName, Content: inv.Result})
		}
		if len(calls) > 0 {
			out = append(out,
				ai.Message{Role: ai.RoleAssistant, ToolCalls: calls},
				ai.Message{Role: ai.RoleTool, ToolResults: results},
			)
		}
		if msg.Content != "" {
			out = append(out, ai.Message{Role: ai.RoleAssistant, Content: msg.Content})
		}
	}
	return out
}
