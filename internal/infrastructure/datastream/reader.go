package datastream

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// maxLineBytes bounds one part. A tool result can carry a full scraped page
// (8 MiB) as both text and escaped markup, so the bound sits well above that.
const maxLineBytes = 64 << 20

// Reader decodes parts from a stream.
type Reader struct {
	scanner *bufio.Scanner
}

// NewReader creates a Reader.
func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64<<10), maxLineBytes)
	return new(Reader{scanner: scanner})
}

// Next returns the next part, or io.EOF once the stream ends.
// Lines with unknown prefixes are returned with only Type and Raw set.
func (r *Reader) Next() (Part, error) {
	for r.scanner.Scan() {
		line := strings.TrimRight(r.scanner.Text(), "\r")
		if line == "" {
			continue
		}
		return ParseLine(line)
	}
	if err := r.scanner.Err(); err != nil {
		return Part{}, fmt.Errorf("read stream: %w", err)
	}
	return Part{}, io.EOF
}

// ParseLine decodes a single stream line.
func ParseLine(line string) (Part, error) {
	prefix, payload, ok := strings.Cut(line, ":")
	if !ok || prefix == "" {
		return Part{}, fmt.Errorf("malformed stream line %q", line)
	}
	part := Part{Type: PartType(prefix), Raw: json.RawMessage(payload)}

	var err error
	switch part.Type {
	case PartText, PartError:
		err = json.Unmarshal(part.Raw, &part.Text)
	case PartStart:
		part.Start = new(StartPart)
		err = json.Unmarshal(part.Raw, part.Start)
	case PartToolCall:
		part.ToolCall = new(ToolCallPart)
		err = json.Unmarshal(part.Raw, part.ToolCall)
	case PartToolResult:
		part.ToolResult = new(ToolResultPart)
		err = json.Unmarshal(part.Raw, part.ToolResult)
	case PartStepFinish, PartFinish:
		part.Finish = new(FinishPart)
		err = json.Unmarshal(part.Raw, part.Finish)
	}
	if err != nil {
		return Part{}, fmt.Errorf("decode %s part: %w", part.Type, err)
	}
	return part, nil
}
