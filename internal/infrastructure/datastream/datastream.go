// Package datastream encodes and decodes the line-oriented chat data stream.
//
// Each line is "<type>:<json>\n". The types are:
//
//	f  message start      {"messageId":"..."}
//	0  text delta         "..."
//	9  tool call          {"toolCallId","toolName","args"}
//	a  tool result        {"toolCallId","result"}
//	e  step finish        {"finishReason","usage","isContinued"}
//	d  message finish     {"finishReason","usage"}
//	3  error              "..."
package datastream

import (
	"encoding/json"
)

// Response headers for a data stream.
const (
	HeaderName  = "X-Vercel-AI-Data-Stream"
	HeaderValue = "v1"
	ContentType = "text/plain; charset=utf-8"
)

// PartType is the single-character prefix of a stream line.
type PartType string

const (
	PartStart      PartType = "f"
	PartText       PartType = "0"
	PartToolCall   PartType = "9"
	PartToolResult PartType = "a"
	PartStepFinish PartType = "e"
	PartFinish     PartType = "d"
	PartError      PartType = "3"
)

// Usage is token accounting in stream form.
type Usage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens"`
}

// StartPart opens a message.
type StartPart struct {
	MessageID string `json:"messageId"`
}

// ToolCallPart announces a tool invocation.
type ToolCallPart struct {
	ToolCallID string          `json:"toolCallId"`
	ToolName   string          `json:"toolName"`
	Args       json.RawMessage `json:"args"`
}

// ToolResultPart carries the result of a tool invocation.
type ToolResultPart struct {
	ToolCallID string          `json:"toolCallId"`
	Result     json.RawMessage `json:"result"`
}

// FinishPart closes a step or the whole message.
type FinishPart struct {
	FinishReason string `json:"finishReason"`
	Usage        Usage  `json:"usage"`
	IsContinued  bool   `json:"isContinued,omitempty"`
}

// Part is one decoded stream line. Only the field matching Type is set.
type Part struct {
	Type       PartType
	Text       string
	Start      *StartPart
	ToolCall   *ToolCallPart
	ToolResult *ToolResultPart
	Finish     *FinishPart
	Raw        json.RawMessage
}
