package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/tesso57/substackchat/internal/domain/newsletter"
	"github.com/tesso57/substackchat/internal/infrastructure/ai"
)

const resourcesObjectName = "resources"

// TruncationStrategy decides what happens when the model returns more resources than requested.
type TruncationStrategy string

const (
	// TruncateNone returns whatever the model produced.
	TruncateNone TruncationStrategy = "none"
	// TruncateToCount cuts the list to the requested count.
	TruncateToCount TruncationStrategy = "truncate"
)

// ParseTruncationStrategy converts a configuration value into a strategy.
func ParseTruncationStrategy(s string) (TruncationStrategy, error) {
	switch TruncationStrategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", TruncateNone:
		return TruncateNone, nil
	case TruncateToCount:
		return TruncateToCount, nil
	default:
		return "", fmt.Errorf("unknown truncation strategy %q", s)
	}
}

// Apply enforces the strategy on a result list.
func (t TruncationStrategy) Apply(resources []newsletter.Resource, count int) []newsletter.Resource {
	if t == TruncateToCount && count >= 0 && len(resources) > count {
		return resources[:count]
	}
	return resources
}

// PostHTMLSource provides the content markup of a post.
type PostHTMLSource interface {
	PostHTML(ctx context.Context, postURL string) newsletter.PostResult
}

// AnchorCollector lists the hyperlinks of a markup fragment.
type AnchorCollector func(fragment string) ([]newsletter.Anchor, error)

// ResourceService extracts resources mentioned in a post.
type ResourceService struct {
	Posts      PostHTMLSource
	Anchors    AnchorCollector
	Generator  ai.ObjectGenerator
	Truncation TruncationStrategy
	validate   *validator.Validate
}

// NewResourceService constructs a ResourceService.
func NewResourceService(posts PostHTMLSource, anchors AnchorCollector, generator ai.ObjectGenerator, truncation TruncationStrategy) ResourceService {
	return ResourceService{
		Posts:      posts,
		Anchors:    anchors,
		Generator:  generator,
		Truncation: truncation,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Extract asks the generator for about count resources mentioned by the post's links.
// A post without content still produces a generation call with no anchors.
func (s ResourceService) Extract(ctx context.Context, postURL string, count int) ([]newsletter.Resource, error) {
	if s.Generator == nil {
		return nil, &newsletter.GenerationError{Op: "extract resources", Err: errors.New("object generator is not configured")}
	}

	post := s.Posts.PostHTML(ctx, postURL)
	if err := post.Err(); err != nil {
		return nil, err
	}

	anchors := []newsletter.Anchor{}
	if post.Present() && s.Anchors != nil {
		collected, err := s.Anchors(post.Content)
		if err != nil {
			return nil, fmt.Errorf("collect anchors: %w", err)
		}
		anchors = collected
	}

	prompt, err := BuildResourcePrompt(count, anchors)
	if err != nil {
		return nil, err
	}
	raw, err := s.Generator.GenerateObject(ctx, ai.ObjectRequest{
		Name:        resourcesObjectName,
		Description: "Resources mentioned in a Substack post.",
		Prompt:      prompt,
		Schema:      ResourceSchema(),
	})
	if err != nil {
		return nil, &newsletter.GenerationError{Op: "extract resources", Err: err}
	}

	resources, err := s.decode(raw)
	if err != nil {
		return nil, &newsletter.GenerationError{Op: "extract resources", Err: err}
	}
	return s.Truncation.Apply(resources, count), nil
}

func (s ResourceService) decode(raw json.RawMessage) ([]newsletter.Resource, error) {
	var out struct {
		Resources []newsletter.Resource `json:"resources"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode resources: %w", err)
	}
	if out.Resources == nil {
		return []newsletter.Resource{}, nil
	}

	v := s.validate
	if v == nil {
		v = validator.New(validator.WithRequiredStructEnabled())
	}
	for i, r := range out.Resources {
		if err := v.Struct(r); err != nil {
			return nil, fmt.Errorf("resource %d does not match schema: %w", i, err)
		}
	}
	return out.Resources, nil
}

// BuildResourcePrompt renders the instruction sent with the anchors of a post.
func BuildResourcePrompt(count int, anchors []newsletter.Anchor) (string, error) {
	if anchors == nil {
		anchors = []newsletter.Anchor{}
	}
	payload, err := json.Marshal(anchors)
	if err != nil {
		return "", fmt.Errorf("encode anchors: %w", err)
	}
	return fmt.Sprintf("Given the following list of anchors from a Substack post, extract an array of %d resources mentioned. "+
		"Each resource should have a name, description, optional link, and type (podcast, book, tool, person, or other). "+
		"Only include resources that are relevant and meaningful. "+
		"The description should be a concise summary of the resource and not too short.\nAnchors: %s", count, payload), nil
}

// ResourceSchema is the JSON schema of the structured-generation output.
func ResourceSchema() map[string]any {
	types := make([]string, 0, len(newsletter.ResourceTypes()))
	for _, t := range newsletter.ResourceTypes() {
		types = append(types, string(t))
	}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"resources": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"name":        map[string]any{"type": "string"},
						"description": map[string]any{"type": "string"},
						"link":        map[string]any{"type": "string", "format": "uri"},
						"type":        map[string]any{"type": "string", "enum": types},
					},
					"required": []string{"name", "description", "type"},
				},
			},
		},
		"required": []string{"resources"},
	}
}
