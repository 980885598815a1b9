package datastream

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Writer encodes parts onto w, flushing after each line when w supports it.
type Writer struct {
	w       io.Writer
	flusher http.Flusher
}

// NewWriter creates a Writer.
func NewWriter(w io.Writer) *Writer {
	flusher, _ := w.(http.Flusher)
	return new(Writer{w: w, flusher: flusher})
}

func (s *Writer) write(t PartType, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s part: %w", t, err)
	}
	if _, err := fmt.Fprintf(s.w, "%s:%s\n", t, payload); err != nil {
		return err
	}
	if s.flusher != nil {
		s.flusher.Flush()
	}
	return nil
}

// StartMessage writes an f part.
func (s *Writer) StartMessage(id string) error {
	return s.write(PartStart, StartPart{MessageID: id})
}

// Text writes a 0 part.
func (s *Writer) Text(delta string) error {
	return s.write(PartText, delta)
}

// ToolCall writes a 9 part.
func (s *Writer) ToolCall(id, name string, args json.RawMessage) error {
	if len(args) == 0 {
		args = json.RawMessage(`{}`)
	}
	return s.write(PartToolCall, ToolCallPart{ToolCallID: id, ToolName: name, Args: args})
}

// ToolResult writes an a part.
func (s *Writer) ToolResult(id string, result json.RawMessage) error {
	if len(result) == 0 {
		result = json.RawMessage(`null`)
	}
	return s.write(PartToolResult, ToolResultPart{ToolCallID: id, Result: result})
}

// FinishStep writes an e part.
func (s *Writer) FinishStep(reason string, usage Usage, continued bool) error {
	return s.write(PartStepFinish, FinishPart{FinishReason: reason, Usage: usage, IsContinued: continued})
}

// FinishMessage writes a d part.
func (s *Writer) FinishMessage(reason string, usage Usage) error {
	return s.write(PartFinish, FinishPart{FinishReason: reason, Usage: usage})
}

// Error writes a 3 part.
func (s *Writer) Error(message string) error {
	return s.write(PartError, message)
}
