package tools

import (
	"context"

	"github.com/tesso57/substackchat/internal/domain/newsletter"
)

// Tool names.
const (
	GetSubstackFeed          = "get_substack_feed"
	GetNumberOfPosts         = "get_number_of_posts"
	GetSubstackPostSummary   = "get_substack_post_summary"
	GetSubstackPostResources = "get_substack_post_resources"
)

// NewsletterReader reads feeds and posts.
type NewsletterReader interface {
	Feed(ctx context.Context, baseURL string) (newsletter.Feed, error)
	PostCount(ctx context.Context, baseURL string) (int, error)
	PostText(ctx context.Context, postURL string) newsletter.PostResult
}

// ResourceExtractor extracts resources mentioned in a post.
type ResourceExtractor interface {
	Extract(ctx context.Context, postURL string, count int) ([]newsletter.Resource, error)
}

// URLArgs is the argument of the single-URL tools.
type URLArgs struct {
	URL string `json:"url" validate:"required,url"`
}

// ResourceArgs is the argument of get_substack_post_resources.
type ResourceArgs struct {
	URL               string `json:"url" validate:"required,url"`
	NumberOfResources *int   `json:"numberOfResources" validate:"required,min=0"`
}

// FeedResult is returned by get_substack_feed.
type FeedResult struct {
	Feed newsletter.Feed `json:"feed"`
}

// PostCountResult is returned by get_number_of_posts.
type PostCountResult struct {
	NumberOfPosts int `json:"numberOfPosts"`
}

// PostSummaryResult is returned by get_substack_post_summary. Post is null when the page was empty.
type PostSummaryResult struct {
	Post *newsletter.Post `json:"post"`
}

// ResourcesResult is returned by get_substack_post_resources.
type ResourcesResult struct {
	Resources []newsletter.Resource `json:"resources"`
}

func urlSchema(description string) map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"url": map[string]any{
				"type":        "string",
				"description": description,
			},
		},
		"required": []string{"url"},
	}
}

// Substack returns the newsletter tools in dispatch order.
func Substack(newsletters NewsletterReader, resources ResourceExtractor) []Tool {
	return []Tool{
		Define(GetSubstackFeed,
			"Get the latest posts from a Substack feed.",
			urlSchema("The URL of the Substack feed."),
			func(ctx context.Context, args URLArgs) (any, error) {
				feed, err := newsletters.Feed(ctx, args.URL)
				if err != nil {
					return nil, err
				}
				if feed.Posts == nil {
					feed.Posts = []newsletter.FeedPost{}
				}
				return FeedResult{Feed: feed}, nil
			}),
		Define(GetNumberOfPosts,
			"Get the number of posts from a Substack feed.",
			urlSchema("The URL of the Substack feed."),
			func(ctx context.Context, args URLArgs) (any, error) {
				n, err := newsletters.PostCount(ctx, args.URL)
				if err != nil {
					return nil, err
				}
				return PostCountResult{NumberOfPosts: n}, nil
			}),
		Define(GetSubstackPostSummary,
			"Get a summary of a specific Substack post by its title.",
			urlSchema("The URL of the Substack feed."),
			func(ctx context.Context, args URLArgs) (any, error) {
				result := newsletters.PostText(ctx, args.URL)
				if err := result.Err(); err != nil {
					return nil, err
				}
				if !result.Present() {
					return PostSummaryResult{}, nil
				}
				return PostSummaryResult{Post: &newsletter.Post{Content: result.Content}}, nil
			}),
		Define(GetSubstackPostResources,
			"Get a list of resources from a specific Substack post by its content.",
			map[string]any{
				"type": "object",
				"properties": map[string]any{
					"url": map[string]any{
						"type":        "string",
						"description": "The URL of the Substack post",
					},
					"numberOfResources": map[string]any{
						"type":        "integer",
						"description": "The total number of resources that you want to extract",
					},
				},
				"required": []string{"url", "numberOfResources"},
			},
			func(ctx context.Context, args ResourceArgs) (any, error) {
				found, err := resources.Extract(ctx, args.URL, *args.NumberOfResources)
				if err != nil {
					return nil, err
				}
				if found == nil {
					found = []newsletter.Resource{}
				}
				return ResourcesResult{Resources: found}, nil
			}),
	}
}

// NewSubstackRegistry registers the newsletter tools.
func NewSubstackRegistry(newsletters NewsletterReader, resources ResourceExtractor) (*Registry, error) {
	return NewRegistry(Substack(newsletters, resources)...)
}
