// Package feed fetches and parses newsletter RSS/Atom feeds.
package feed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/tesso57/substackchat/internal/domain/newsletter"
	"github.com/tesso57/substackchat/internal/infrastructure/logging"
)

const (
	feedAcceptHeader = "application/atom+xml, application/rss+xml, application/feed+json, application/xml;q=0.9, text/xml;q=0.8, */*;q=0.5"

	defaultUserAgent = "SubstackChat/1.0"
	defaultSuffix    = "feed"
	defaultTimeout   = 10 * time.Second

	// cacheBustParam carries the request time so intermediaries never serve a stale feed.
	cacheBustParam = "_"
)

type acceptTransport struct {
	base http.RoundTripper
}

func (t acceptTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	clone := req.Clone(req.Context())
	if clone.Header.Get("Accept") == "" {
		clone.Header.Set("Accept", feedAcceptHeader)
	}
	return base.RoundTrip(clone)
}

// ParserFunc parses the feed document found at url.
type ParserFunc func(ctx context.Context, url string) (*gofeed.Feed, error)

// Config controls feed fetching.
type Config struct {
	UserAgent string
	Suffix    string
	Timeout   time.Duration
}

// Reader fetches a newsletter feed from its base URL.
type Reader struct {
	config Config
	parse  ParserFunc
	now    func() time.Time
	logger logging.Logger
}

// NewReader creates a Reader backed by gofeed.
func NewReader(cfg Config, logger logging.Logger) *Reader {
	cfg = normalizeConfig(cfg)
	return new(Reader{
		config: cfg,
		parse:  gofeedParser(cfg),
		now:    time.Now,
		logger: logging.OrNop(logger),
	})
}

// NewReaderWithParser creates a Reader with a custom parser and clock for tests.
func NewReaderWithParser(cfg Config, parse ParserFunc, now func() time.Time) *Reader {
	r := NewReader(cfg, nil)
	if parse != nil {
		r.parse = parse
	}
	if now != nil {
		r.now = now
	}
	return r
}

func normalizeConfig(cfg Config) Config {
	if strings.TrimSpace(cfg.UserAgent) == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if strings.TrimSpace(cfg.Suffix) == "" {
		cfg.Suffix = defaultSuffix
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return cfg
}

func gofeedParser(cfg Config) ParserFunc {
	return func(ctx context.Context, url string) (*gofeed.Feed, error) {
		fp := gofeed.NewParser()
		fp.UserAgent = cfg.UserAgent
		fp.Client = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: acceptTransport{base: http.DefaultTransport},
		}
		return fp.ParseURLWithContext(url, ctx)
	}
}

// FeedURL derives the feed location of a newsletter: the suffix is appended to the
// base path and the current time in milliseconds is added as a cache-busting parameter.
func FeedURL(baseURL, suffix string, now time.Time) (string, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return "", fmt.Errorf("invalid newsletter url %q: %w", baseURL, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return "", fmt.Errorf("newsletter url %q is not absolute", baseURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	u.Path += strings.Trim(suffix, "/")
	q := u.Query()
	q.Set(cacheBustParam, strconv.FormatInt(now.UnixMilli(), 10))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Read fetches the feed of the newsletter at baseURL and returns its posts in feed order.
func (r *Reader) Read(ctx context.Context, baseURL string) (newsletter.Feed, error) {
	feedURL, err := FeedURL(baseURL, r.config.Suffix, r.now())
	if err != nil {
		return newsletter.Feed{}, &newsletter.FetchError{URL: baseURL, Err: err}
	}
	r.logger.Info("fetching feed", logging.String("url", feedURL))

	parsed, err := r.parse(ctx, feedURL)
	if err != nil {
		return newsletter.Feed{}, classify(feedURL, err)
	}
	if parsed == nil {
		return newsletter.Feed{}, &newsletter.FeedParseError{URL: feedURL, Err: errors.New("parser returned no feed")}
	}

	posts := make([]newsletter.FeedPost, len(parsed.Items))
	for i, item := range parsed.Items {
		if item == nil {
			continue
		}
		posts[i] = newsletter.FeedPost{
			Title: item.Title,
			Link:  item.Link,
		}
	}
	return newsletter.Feed{Posts: posts}, nil
}

// classify separates transport failures from documents that are not feeds.
func classify(feedURL string, err error) error {
	var httpErr gofeed.HTTPError
	var urlErr *url.Error
	switch {
	case errors.As(err, &httpErr),
		errors.As(err, &urlErr),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return &newsletter.FetchError{URL: feedURL, Err: err}
	default:
		return &newsletter.FeedParseError{URL: feedURL, Err: err}
	}
}
