// Package scrape fetches post pages and locates their readable parts.
package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tesso57/substackchat/internal/domain/newsletter"
	"github.com/tesso57/substackchat/internal/infrastructure/logging"
)

const (
	defaultUserAgent = "SubstackChat/1.0"
	defaultTimeout   = 10 * time.Second
)

// MaxBodyBytes is the default cap on a scraped page body.
const MaxBodyBytes = 8 << 20

// Config controls page fetching.
type Config struct {
	UserAgent string
	Timeout   time.Duration
	// MaxBytes caps the page body. Longer pages are cut at the cap.
	MaxBytes int64
}

// Scraper performs a single GET against a page and returns its raw markup.
type Scraper struct {
	client    *http.Client
	userAgent string
	maxBytes  int64
	logger    logging.Logger
}

// NewScraper creates a Scraper. A nil client gets one with the configured timeout.
func NewScraper(cfg Config, client *http.Client, logger logging.Logger) *Scraper {
	if strings.TrimSpace(cfg.UserAgent) == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = MaxBodyBytes
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return new(Scraper{
		client:    client,
		userAgent: cfg.UserAgent,
		maxBytes:  cfg.MaxBytes,
		logger:    logging.OrNop(logger),
	})
}

// Scrape fetches pageURL. An empty string with a nil error means the page answered with an empty body.
func (s *Scraper) Scrape(ctx context.Context, pageURL string) (string, error) {
	pageURL = strings.TrimSpace(pageURL)
	if pageURL == "" {
		return "", &newsletter.FetchError{URL: pageURL, Err: fmt.Errorf("empty url")}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", &newsletter.FetchError{URL: pageURL, Err: err}
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.5")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", &newsletter.FetchError{URL: pageURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return "", &newsletter.FetchError{URL: pageURL, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBytes+1))
	if err != nil {
		return "", &newsletter.FetchError{URL: pageURL, Err: fmt.Errorf("read body: %w", err)}
	}
	if int64(len(body)) > s.maxBytes {
		body = body[:s.maxBytes]
		s.logger.Warn("page truncated",
			logging.String("url", pageURL),
			logging.Int64("limit", s.maxBytes),
		)
	}
	s.logger.Debug("scraped page",
		logging.String("url", pageURL),
		logging.Int("status", resp.StatusCode),
		logging.Int("bytes", len(body)),
	)
	return string(body), nil
}
