// Package usecase contains application-level services.
package usecase

import (
	"context"

	"github.com/tesso57/substackchat/internal/domain/newsletter"
	"github.com/tesso57/substackchat/internal/infrastructure/logging"
)

// FeedReader abstracts feed fetching.
type FeedReader interface {
	Read(ctx context.Context, baseURL string) (newsletter.Feed, error)
}

// PageScraper abstracts fetching a page's raw markup.
type PageScraper interface {
	Scrape(ctx context.Context, pageURL string) (string, error)
}

// ContentLocator finds the content region of a post page.
type ContentLocator interface {
	Locate(markup, pageURL string) (newsletter.Region, error)
}

// NewsletterService reads feeds and posts.
type NewsletterService struct {
	Feeds   FeedReader
	Pages   PageScraper
	Locator ContentLocator
	Logger  logging.Logger
}

// NewNewsletterService constructs a NewsletterService.
func NewNewsletterService(feeds FeedReader, pages PageScraper, locator ContentLocator, logger logging.Logger) NewsletterService {
	return NewsletterService{
		Feeds:   feeds,
		Pages:   pages,
		Locator: locator,
		Logger:  logging.OrNop(logger),
	}
}

// Feed returns the posts of the newsletter at baseURL.
func (s NewsletterService) Feed(ctx context.Context, baseURL string) (newsletter.Feed, error) {
	return s.Feeds.Read(ctx, baseURL)
}

// PostCount returns the number of posts in the newsletter's feed.
// It is derived from Feed so the two always agree.
func (s NewsletterService) PostCount(ctx context.Context, baseURL string) (int, error) {
	feed, err := s.Feed(ctx, baseURL)
	if err != nil {
		return 0, err
	}
	return feed.Count(), nil
}

// PostText returns the plain text of a post's content region.
func (s NewsletterService) PostText(ctx context.Context, postURL string) newsletter.PostResult {
	return s.readPost(ctx, postURL, func(r newsletter.Region) string { return r.Text })
}

// PostHTML returns the inner markup of a post's content region.
func (s NewsletterService) PostHTML(ctx context.Context, postURL string) newsletter.PostResult {
	return s.readPost(ctx, postURL, func(r newsletter.Region) string { return r.HTML })
}

func (s NewsletterService) readPost(ctx context.Context, postURL string, pick func(newsletter.Region) string) newsletter.PostResult {
	markup, err := s.Pages.Scrape(ctx, postURL)
	if err != nil {
		return newsletter.FailedResult(err)
	}
	if markup == "" {
		s.logger().Debug("post page is empty", logging.String("url", postURL))
		return newsletter.EmptyResult()
	}

	region, err := s.Locator.Locate(markup, postURL)
	if err != nil {
		return newsletter.FailedResult(err)
	}
	content := pick(region)
	s.logger().Debug("located post content",
		logging.String("url", postURL),
		logging.Bool("located", region.Found),
		logging.Int("length", len(content)),
	)
	return newsletter.ContentResult(content, region.Found)
}

func (s NewsletterService) logger() logging.Logger {
	return logging.OrNop(s.Logger)
}
