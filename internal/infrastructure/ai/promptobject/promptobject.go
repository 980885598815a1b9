// Package promptobject produces structured output from any plain text generator
// by embedding the schema in the prompt and digging the JSON object out of the reply.
package promptobject

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tesso57/substackchat/internal/infrastructure/ai"
)

// Generator implements ai.ObjectGenerator on top of an ai.TextGenerator.
type Generator struct {
	Client ai.TextGenerator
}

// New constructs a Generator.
func New(client ai.TextGenerator) Generator {
	return Generator{Client: client}
}

// GenerateObject asks the client for JSON matching req.Schema.
func (g Generator) GenerateObject(ctx context.Context, req ai.ObjectRequest) (json.RawMessage, error) {
	if g.Client == nil {
		return nil, errors.New("ai client is not configured")
	}
	prompt, err := buildPrompt(req)
	if err != nil {
		return nil, err
	}
	raw, err := g.Client.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return parseOutput(raw)
}

func buildPrompt(req ai.ObjectRequest) (string, error) {
	schema, err := json.Marshal(req.Schema)
	if err != nil {
		return "", fmt.Errorf("encode schema: %w", err)
	}
	lines := []string{strings.TrimSpace(req.Prompt), ""}
	if req.Description != "" {
		lines = append(lines, "Output: "+req.Description)
	}
	lines = append(lines,
		"Return ONLY valid JSON without markdown that matches this JSON schema:",
		string(schema),
	)
	return strings.Join(lines, "\n"), nil
}

func parseOutput(raw string) (json.RawMessage, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil, errors.New("ai client returned empty output")
	}
	if json.Valid([]byte(text)) {
		return json.RawMessage(text), nil
	}
	object := extractJSONObject(text)
	if object == "" || !json.Valid([]byte(object)) {
		return nil, errors.New("failed to parse ai output as JSON")
	}
	return json.RawMessage(object), nil
}

func extractJSONObject(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < 0 || end < start {
		return ""
	}
	return text[start : end+1]
}
