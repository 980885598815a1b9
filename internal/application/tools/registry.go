// Package tools declares the operations the chat model may invoke.
package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/tesso57/substackchat/internal/infrastructure/ai"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidationError reports arguments that do not match a tool's parameter schema.
// The tool does not run when this is returned.
type ValidationError struct {
	Tool string
	Err  error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid arguments for %s: %v", e.Tool, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// UnknownToolError reports a call to a tool that is not registered.
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("unknown tool %q", e.Name)
}

// Tool is a named operation with a parameter schema and a typed handler.
type Tool struct {
	Name        string
	Description string
	InputSchema map[string]any
	run         func(ctx context.Context, args json.RawMessage) (any, error)
}

// Define builds a Tool whose arguments decode into A and are validated with
// its `validate` struct tags before run is called.
func Define[A any](name, description string, schema map[string]any, run func(ctx context.Context, args A) (any, error)) Tool {
	return Tool{
		Name:        name,
		Description: description,
		InputSchema: schema,
		run: func(ctx context.Context, raw json.RawMessage) (any, error) {
			var args A
			if len(bytes.TrimSpace(raw)) == 0 {
				raw = json.RawMessage(`{}`)
			}
			if err := json.Unmarshal(raw, &args); err != nil {
				return nil, &ValidationError{Tool: name, Err: err}
			}
			if err := validate.Struct(args); err != nil {
				return nil, &ValidationError{Tool: name, Err: err}
			}
			return run(ctx, args)
		},
	}
}

// Registry dispatches tool calls by name. Tools keep their registration order.
type Registry struct {
	tools []Tool
	index map[string]int
}

// NewRegistry creates a registry. Tool names must be unique.
func NewRegistry(tools ...Tool) (*Registry, error) {
	r := &Registry{index: make(map[string]int, len(tools))}
	for _, t := range tools {
		if t.Name == "" || t.run == nil {
			return nil, fmt.Errorf("tool %q is not defined", t.Name)
		}
		if _, exists := r.index[t.Name]; exists {
			return nil, fmt.Errorf("duplicate tool %q", t.Name)
		}
		r.index[t.Name] = len(r.tools)
		r.tools = append(r.tools, t)
	}
	return r, nil
}

// Specs describes the registered tools for a model request.
func (r *Registry) Specs() []ai.ToolSpec {
	specs := make([]ai.ToolSpec, 0, len(r.tools))
	for _, t := range r.tools {
		specs = append(specs, ai.ToolSpec{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  t.InputSchema,
		})
	}
	return specs
}

// Execute validates args and runs the named tool, returning its JSON result.
func (r *Registry) Execute(ctx context.Context, name string, args json.RawMessage) (json.RawMessage, error) {
	idx, ok := r.index[name]
	if !ok {
		return nil, &UnknownToolError{Name: name}
	}
	out, err := r.tools[idx].run(ctx, args)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encode %s result: %w", name, err)
	}
	return payload, nil
}
