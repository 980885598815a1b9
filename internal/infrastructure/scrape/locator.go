package scrape

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"github.com/tesso57/substackchat/internal/domain/newsletter"
)

// DefaultSelector matches the body of a Substack post.
const DefaultSelector = ".available-content"

// Locator names accepted by NewLocator.
const (
	LocatorSelector    = "selector"
	LocatorReadability = "readability"
)

// SelectorLocator finds the content region with a CSS selector.
type SelectorLocator struct {
	Selector string
}

// Locate returns the combined text of every element matching the selector and the
// inner markup of the first one. A page without a match yields an empty region and no error.
func (l SelectorLocator) Locate(markup, _ string) (newsletter.Region, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return newsletter.Region{}, fmt.Errorf("parse html: %w", err)
	}

	selector := l.Selector
	if strings.TrimSpace(selector) == "" {
		selector = DefaultSelector
	}
	matches := doc.Find(selector)
	if matches.Length() == 0 {
		return newsletter.Region{}, nil
	}

	inner, err := matches.First().Html()
	if err != nil {
		return newsletter.Region{}, fmt.Errorf("render content region: %w", err)
	}
	return newsletter.Region{
		Text:  matches.Text(),
		HTML:  inner,
		Found: true,
	}, nil
}

// ReadabilityLocator finds the main article with a readability pass, for pages
// that do not carry a known content class.
type ReadabilityLocator struct{}

// Locate runs readability over the page. Pages readability cannot make sense of yield an empty region.
func (ReadabilityLocator) Locate(markup, pageURL string) (newsletter.Region, error) {
	if strings.TrimSpace(markup) == "" {
		return newsletter.Region{}, nil
	}
	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		return newsletter.Region{}, fmt.Errorf("invalid page url %q: %w", pageURL, err)
	}

	article, err := readability.FromReader(strings.NewReader(markup), parsedURL)
	if err != nil {
		return newsletter.Region{}, nil
	}
	text := strings.TrimSpace(article.TextContent)
	if text == "" {
		return newsletter.Region{}, nil
	}
	return newsletter.Region{
		Text:  text,
		HTML:  strings.TrimSpace(article.Content),
		Found: true,
	}, nil
}

// Locator finds the content region of a post page.
type Locator interface {
	Locate(markup, pageURL string) (newsletter.Region, error)
}

// NewLocator picks a locator by name.
func NewLocator(name, selector string) (Locator, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", LocatorSelector:
		return SelectorLocator{Selector: selector}, nil
	case LocatorReadability:
		return ReadabilityLocator{}, nil
	default:
		return nil, fmt.Errorf("unknown content locator %q", name)
	}
}
