package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/tesso57/substackchat/internal/domain/newsletter"
)

type mockFeedReader struct {
	mock.Mock
}

func (m *mockFeedReader) Read(ctx context.Context, baseURL string) (newsletter.Feed, error) {
	args := m.Called(ctx, baseURL)
	feed, _ := args.Get(0).(newsletter.Feed)
	return feed, args.Error(1)
}

type mockScraper struct {
	mock.Mock
}

func (m *mockScraper) Scrape(ctx context.Context, pageURL string) (string, error) {
	args := m.Called(ctx, pageURL)
	return args.String(0), args.Error(1)
}

type stubLocator struct {
	region newsletter.Region
	err    error
	calls  int
}

func (s *stubLocator) Locate(_, _ string) (newsletter.Region, error) {
	s.calls++
	return s.region, s.err
}

func threePostFeed() newsletter.Feed {
	return newsletter.Feed{Posts: []newsletter.FeedPost{
		{Title: "A", Link: "https://x.substack.com/p/a"},
		{Title: "B", Link: "https://x.substack.com/p/b"},
		{Title: "C", Link: "https://x.substack.com/p/c"},
	}}
}

func TestNewsletterService_PostCountAgreesWithFeed(t *testing.T) {
	feeds := &mockFeedReader{}
	feeds.On("Read", mock.Anything, "https://x.substack.com/").Return(threePostFeed(), nil).Twice()
	svc := NewNewsletterService(feeds, nil, nil, nil)

	feed, err := svc.Feed(context.Background(), "https://x.substack.com/")
	if err != nil {
		t.Fatalf("Feed() error = %v", err)
	}
	count, err := svc.PostCount(context.Background(), "https://x.substack.com/")
	if err != nil {
		t.Fatalf("PostCount() error = %v", err)
	}
	if count != len(feed.Posts) || count != 3 {
		t.Fatalf("count = %d, feed has %d posts", count, len(feed.Posts))
	}
	feeds.AssertExpectations(t)
}

func TestNewsletterService_PostCountError(t *testing.T) {
	feeds := &mockFeedReader{}
	fetchErr := &newsletter.FetchError{URL: "u", Err: errors.New("refused")}
	feeds.On("Read", mock.Anything, "u").Return(newsletter.Feed{}, fetchErr).Once()

	_, err := NewNewsletterService(feeds, nil, nil, nil).PostCount(context.Background(), "u")
	if !errors.Is(err, fetchErr) {
		t.Fatalf("expected fetch error, got %v", err)
	}
}

func TestNewsletterService_ReadPost(t *testing.T) {
	found := newsletter.Region{Text: "Hello", HTML: "<p>Hello</p>", Found: true}
	tests := []struct {
		name         string
		body         string
		scrapeErr    error
		region       newsletter.Region
		locateErr    error
		wantKind     newsletter.PostKind
		wantText     string
		wantHTML     string
		wantLocated  bool
		wantLocation int
	}{
		{name: "content", body: "<html/>", region: found, wantKind: newsletter.PostContent, wantText: "Hello", wantHTML: "<p>Hello</p>", wantLocated: true, wantLocation: 2},
		{name: "selector miss", body: "<html/>", wantKind: newsletter.PostContent, wantLocation: 2},
		{name: "empty body", body: "", wantKind: newsletter.PostEmpty},
		{name: "fetch failure", scrapeErr: errors.New("refused"), wantKind: newsletter.PostFailed},
		{name: "locate failure", body: "<html/>", locateErr: errors.New("bad html"), wantKind: newsletter.PostFailed, wantLocation: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pages := &mockScraper{}
			pages.On("Scrape", mock.Anything, "https://x.substack.com/p/a").Return(tt.body, tt.scrapeErr)
			locator := &stubLocator{region: tt.region, err: tt.locateErr}
			svc := NewNewsletterService(nil, pages, locator, nil)

			text := svc.PostText(context.Background(), "https://x.substack.com/p/a")
			html := svc.PostHTML(context.Background(), "https://x.substack.com/p/a")

			if text.Kind != tt.wantKind || html.Kind != tt.wantKind {
				t.Fatalf("kinds = %s/%s, want %s", text.Kind, html.Kind, tt.wantKind)
			}
			if text.Content != tt.wantText || html.Content != tt.wantHTML {
				t.Fatalf("content = %q/%q", text.Content, html.Content)
			}
			if text.Located != tt.wantLocated {
				t.Fatalf("located = %v, want %v", text.Located, tt.wantLocated)
			}
			if locator.calls != tt.wantLocation {
				t.Fatalf("locator calls = %d, want %d", locator.calls, tt.wantLocation)
			}
			if tt.wantKind == newsletter.PostFailed && text.Err() == nil {
				t.Fatal("failed result should carry its reason")
			}
		})
	}
}
