package scrape

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tesso57/substackchat/internal/domain/newsletter"
	"github.com/tesso57/substackchat/internal/infrastructure/logging"
)

type warnRecorder struct {
	logging.Logger
	warnings []string
}

func (r *warnRecorder) Warn(msg string, _ ...logging.Field) { r.warnings = append(r.warnings, msg) }

const postPage = `<html><head><title>Post</title></head><body>
<header>Site nav</header>
<div class="available-content"><p>Hello <a href="https://book.example">Dune</a> and <a>no link</a></p></div>
</body></html>`

func TestScrape_ReturnsBodyAndSendsUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(postPage))
	}))
	defer srv.Close()

	body, err := NewScraper(Config{UserAgent: "ua-test"}, nil, nil).Scrape(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Scrape error: %v", err)
	}
	if body != postPage {
		t.Fatalf("unexpected body %q", body)
	}
	if gotUA != "ua-test" {
		t.Fatalf("User-Agent = %q", gotUA)
	}
}

func TestScrape_TruncatesOversizedPageWithWarning(t *testing.T) {
	page := strings.Repeat("a", 64)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	logger := &warnRecorder{Logger: logging.NewNop()}
	body, err := NewScraper(Config{MaxBytes: 16}, nil, logger).Scrape(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Scrape error: %v", err)
	}
	if body != page[:16] {
		t.Fatalf("body = %q, want first 16 bytes", body)
	}
	if len(logger.warnings) != 1 || logger.warnings[0] != "page truncated" {
		t.Fatalf("warnings = %v", logger.warnings)
	}

	logger.warnings = nil
	body, err = NewScraper(Config{MaxBytes: 64}, nil, logger).Scrape(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Scrape error: %v", err)
	}
	if body != page || len(logger.warnings) != 0 {
		t.Fatalf("page at the limit: body len %d, warnings %v", len(body), logger.warnings)
	}
}

func TestScrape_EmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	body, err := NewScraper(Config{}, nil, nil).Scrape(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Scrape error: %v", err)
	}
	if body != "" {
		t.Fatalf("expected empty body, got %q", body)
	}
}

func TestScrape_FailuresAreFetchErrors(t *testing.T) {
	notFound := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer notFound.Close()

	closed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	closedURL := closed.URL
	closed.Close()

	for name, target := range map[string]string{
		"status":      notFound.URL,
		"unreachable": closedURL,
		"empty url":   "",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := NewScraper(Config{}, nil, nil).Scrape(context.Background(), target)
			var fetchErr *newsletter.FetchError
			if !errors.As(err, &fetchErr) {
				t.Fatalf("expected FetchError, got %T: %v", err, err)
			}
		})
	}
}

func TestSelectorLocator(t *testing.T) {
	region, err := SelectorLocator{Selector: DefaultSelector}.Locate(postPage, "https://x.substack.com/p/a")
	if err != nil {
		t.Fatalf("Locate error: %v", err)
	}
	if !region.Found {
		t.Fatal("expected region to be found")
	}
	if region.Text != "Hello Dune and no link" {
		t.Fatalf("Text = %q", region.Text)
	}
	if !strings.HasPrefix(region.HTML, "<p>Hello ") || !strings.Contains(region.HTML, `href="https://book.example"`) {
		t.Fatalf("HTML = %q", region.HTML)
	}
	if strings.Contains(region.Text, "Site nav") {
		t.Fatal("region leaked text outside the content element")
	}
}

func TestSelectorLocator_JoinsTextOfAllMatches(t *testing.T) {
	page := `<html><body>
<div class="available-content"><p>Part one.</p></div>
<aside>Subscribe</aside>
<div class="available-content"><p>Part two.</p></div>
</body></html>`

	region, err := SelectorLocator{}.Locate(page, "https://x.substack.com/p/a")
	if err != nil {
		t.Fatalf("Locate error: %v", err)
	}
	if region.Text != "Part one.Part two." {
		t.Fatalf("Text = %q, want text of both blocks", region.Text)
	}
	if region.HTML != "<p>Part one.</p>" {
		t.Fatalf("HTML = %q, want first block only", region.HTML)
	}
}

func TestSelectorLocator_Miss(t *testing.T) {
	region, err := SelectorLocator{}.Locate("<html><body><p>plain</p></body></html>", "")
	if err != nil {
		t.Fatalf("Locate error: %v", err)
	}
	if region.Found || region.Text != "" || region.HTML != "" {
		t.Fatalf("expected empty region, got %+v", region)
	}
}

func TestReadabilityLocator(t *testing.T) {
	paragraph := "<p>" + strings.Repeat("Newsletters are a quiet way to follow writers you trust. ", 12) + "</p>"
	page := "<html><head><title>Quiet reading</title></head><body><nav>menu</nav><article>" +
		paragraph + paragraph + paragraph + "</article></body></html>"

	region, err := ReadabilityLocator{}.Locate(page, "https://letter.example/p/quiet")
	if err != nil {
		t.Fatalf("Locate error: %v", err)
	}
	if !region.Found {
		t.Fatal("expected readability to find the article")
	}
	if !strings.Contains(region.Text, "follow writers you trust") {
		t.Fatalf("Text = %q", region.Text)
	}
}

func TestReadabilityLocator_EmptyMarkup(t *testing.T) {
	region, err := ReadabilityLocator{}.Locate("  ", "https://letter.example")
	if err != nil || region.Found {
		t.Fatalf("expected empty region, got %+v, %v", region, err)
	}
}

func TestNewLocator(t *testing.T) {
	if l, err := NewLocator("", ".body"); err != nil {
		t.Fatalf("NewLocator error: %v", err)
	} else if sl, ok := l.(SelectorLocator); !ok || sl.Selector != ".body" {
		t.Fatalf("unexpected locator %#v", l)
	}
	if l, err := NewLocator("readability", ""); err != nil {
		t.Fatalf("NewLocator error: %v", err)
	} else if _, ok := l.(ReadabilityLocator); !ok {
		t.Fatalf("unexpected locator %#v", l)
	}
	if _, err := NewLocator("xpath", ""); err == nil {
		t.Fatal("expected error for unknown locator")
	}
}

func TestAnchors(t *testing.T) {
	anchors, err := Anchors(`<p>Read <a href="https://book.example">Dune</a> or ask <a>Sara</a></p>`)
	if err != nil {
		t.Fatalf("Anchors error: %v", err)
	}
	if len(anchors) != 2 {
		t.Fatalf("len = %d, want 2", len(anchors))
	}
	if anchors[0].Text != "Dune" || anchors[0].Href == nil || *anchors[0].Href != "https://book.example" {
		t.Fatalf("unexpected first anchor %+v", anchors[0])
	}
	if anchors[1].Text != "Sara" || anchors[1].Href != nil {
		t.Fatalf("unexpected second anchor %+v", anchors[1])
	}
}

func TestAnchors_EmptyFragment(t *testing.T) {
	anchors, err := Anchors("")
	if err != nil {
		t.Fatalf("Anchors error: %v", err)
	}
	if anchors == nil || len(anchors) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", anchors)
	}
}
