// Package conversation defines chat history models.
package conversation

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// ToolInvocation records one tool call made while producing an assistant message.
// Result is empty until the tool has returned.
type ToolInvocation struct {
	ToolCallID string          `json:"toolCallId"`
	ToolName   string          `json:"toolName"`
	Args       json.RawMessage `json:"args,omitempty"`
	Result     json.RawMessage `json:"result,omitempty"`
}

// Done reports whether the tool has returned a result.
func (t ToolInvocation) Done() bool {
	return len(t.Result) > 0
}

// ChatMessage is one entry of a conversation.
type ChatMessage struct {
	Role            Role             `json:"role"`
	Content         string           `json:"content"`
	ToolInvocations []ToolInvocation `json:"toolInvocations,omitempty"`
}

// ErrEmptyHistory is returned when a conversation has no messages.
var ErrEmptyHistory = errors.New("conversation has no messages")

// InvalidMessageError reports a malformed message within a history.
type InvalidMessageError struct {
	Index  int
	Reason string
}

func (e *InvalidMessageError) Error() string {
	return fmt.Sprintf("message %d: %s", e.Index, e.Reason)
}

// Validate checks that a history is non-empty and that every message has a known role.
func Validate(history []ChatMessage) error {
	if len(history) == 0 {
		return ErrEmptyHistory
	}
	for i, msg := range history {
		if !msg.Role.Valid() {
			return &InvalidMessageError{Index: i, Reason: fmt.Sprintf("unknown role %q", msg.Role)}
		}
		if msg.Role == RoleUser && len(msg.ToolInvocations) > 0 {
			return &InvalidMessageError{Index: i, Reason: "user messages cannot carry tool invocations"}
		}
	}
	return nil
}

// LastUserContent returns the content of the most recent user message.
func LastUserContent(history []ChatMessage) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == RoleUser {
			return history[i].Content
		}
	}
	return ""
}
