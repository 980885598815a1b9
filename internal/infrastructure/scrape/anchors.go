package scrape

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/tesso57/substackchat/internal/domain/newsletter"
)

// Anchors collects every hyperlink in the fragment, in document order.
// Anchors without an href attribute keep a nil Href.
func Anchors(fragment string) ([]newsletter.Anchor, error) {
	anchors := []newsletter.Anchor{}
	if strings.TrimSpace(fragment) == "" {
		return anchors, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	doc.Find("a").Each(func(_ int, s *goquery.Selection) {
		anchor := newsletter.Anchor{Text: s.Text()}
		if href, ok := s.Attr("href"); ok {
			anchor.Href = &href
		}
		anchors = append(anchors, anchor)
	})
	return anchors, nil
}
