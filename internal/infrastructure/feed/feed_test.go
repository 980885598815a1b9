package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/tesso57/substackchat/internal/domain/newsletter"
)

const rssFixture = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Web Reactiva</title>
    <item><title>A</title><link>https://x.substack.com/p/a</link></item>
    <item><title>B</title><link>https://x.substack.com/p/b</link></item>
    <item><title>C</title><link>https://x.substack.com/p/c</link></item>
  </channel>
</rss>`

const atomFixture = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Atom Letter</title>
  <id>urn:atom-letter</id>
  <updated>2026-01-01T00:00:00Z</updated>
  <entry>
    <title>Only entry</title>
    <id>urn:entry-1</id>
    <link href="https://atom.example/p/only"/>
    <updated>2026-01-01T00:00:00Z</updated>
  </entry>
</feed>`

func TestFeedURL(t *testing.T) {
	now := time.UnixMilli(1700000000123)

	tests := []struct {
		name string
		base string
		want string
	}{
		{name: "trailing slash", base: "https://x.substack.com/", want: "https://x.substack.com/feed?_=1700000000123"},
		{name: "no trailing slash", base: "https://x.substack.com", want: "https://x.substack.com/feed?_=1700000000123"},
		{name: "sub path", base: "https://example.com/letter", want: "https://example.com/letter/feed?_=1700000000123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FeedURL(tt.base, "feed", now)
			if err != nil {
				t.Fatalf("FeedURL error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("FeedURL = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFeedURL_RejectsRelative(t *testing.T) {
	if _, err := FeedURL("not a url", "feed", time.Now()); err == nil {
		t.Fatal("expected error for relative url")
	}
}

func TestRead_RSSKeepsOrderAndSendsHeaders(t *testing.T) {
	var gotPath, gotUA, gotAccept, gotBust string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		gotBust = r.URL.Query().Get("_")
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(rssFixture))
	}))
	defer srv.Close()

	reader := NewReader(Config{UserAgent: "SubstackChatTest/1.0"}, nil)
	reader.now = func() time.Time { return time.UnixMilli(42) }

	feed, err := reader.Read(context.Background(), srv.URL+"/")
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if feed.Count() != 3 {
		t.Fatalf("Count = %d, want 3", feed.Count())
	}
	wantTitles := []string{"A", "B", "C"}
	for i, post := range feed.Posts {
		if post.Title != wantTitles[i] {
			t.Fatalf("post %d title = %q, want %q", i, post.Title, wantTitles[i])
		}
	}
	if feed.Posts[1].Link != "https://x.substack.com/p/b" {
		t.Fatalf("unexpected link %q", feed.Posts[1].Link)
	}
	if gotPath != "/feed" {
		t.Fatalf("path = %q, want /feed", gotPath)
	}
	if gotBust != "42" {
		t.Fatalf("cache-bust param = %q, want 42", gotBust)
	}
	if gotUA != "SubstackChatTest/1.0" {
		t.Fatalf("User-Agent = %q", gotUA)
	}
	if gotAccept != feedAcceptHeader {
		t.Fatalf("Accept = %q", gotAccept)
	}
}

func TestRead_Atom(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/atom+xml")
		_, _ = w.Write([]byte(atomFixture))
	}))
	defer srv.Close()

	feed, err := NewReader(Config{}, nil).Read(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if feed.Count() != 1 || feed.Posts[0].Title != "Only entry" {
		t.Fatalf("unexpected feed: %+v", feed)
	}
	if feed.Posts[0].Link != "https://atom.example/p/only" {
		t.Fatalf("unexpected link %q", feed.Posts[0].Link)
	}
}

func TestRead_EmptyFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<?xml version="1.0"?><rss version="2.0"><channel><title>t</title></channel></rss>`))
	}))
	defer srv.Close()

	feed, err := NewReader(Config{}, nil).Read(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if feed.Count() != 0 {
		t.Fatalf("Count = %d, want 0", feed.Count())
	}
}

func TestRead_UnreachableIsFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()

	_, err := NewReader(Config{Timeout: time.Second}, nil).Read(context.Background(), base)
	var fetchErr *newsletter.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError, got %T: %v", err, err)
	}
}

func TestRead_HTTPStatusIsFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewReader(Config{}, nil).Read(context.Background(), srv.URL)
	var fetchErr *newsletter.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError, got %T: %v", err, err)
	}
}

func TestRead_MalformedIsFeedParseError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body>not a feed</body></html>"))
	}))
	defer srv.Close()

	_, err := NewReader(Config{}, nil).Read(context.Background(), srv.URL)
	var parseErr *newsletter.FeedParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected FeedParseError, got %T: %v", err, err)
	}
}

func TestRead_CustomParser(t *testing.T) {
	var gotURL string
	parse := func(_ context.Context, u string) (*gofeed.Feed, error) {
		gotURL = u
		return &gofeed.Feed{Items: []*gofeed.Item{{Title: "X", Link: "https://l/x"}}}, nil
	}
	reader := NewReaderWithParser(Config{Suffix: "rss"}, parse, func() time.Time { return time.UnixMilli(7) })

	feed, err := reader.Read(context.Background(), "https://letter.example")
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if gotURL != "https://letter.example/rss?_=7" {
		t.Fatalf("parser url = %q", gotURL)
	}
	if feed.Count() != 1 || feed.Posts[0].Title != "X" {
		t.Fatalf("unexpected feed: %+v", feed)
	}
}

func TestClassify(t *testing.T) {
	if _, ok := classify("u", gofeed.HTTPError{StatusCode: 500, Status: "500"}).(*newsletter.FetchError); !ok {
		t.Fatal("http error should classify as fetch error")
	}
	if _, ok := classify("u", &url.Error{Op: "Get", URL: "u", Err: errors.New("refused")}).(*newsletter.FetchError); !ok {
		t.Fatal("url error should classify as fetch error")
	}
	if _, ok := classify("u", gofeed.ErrFeedTypeNotDetected).(*newsletter.FeedParseError); !ok {
		t.Fatal("detection failure should classify as parse error")
	}
}
