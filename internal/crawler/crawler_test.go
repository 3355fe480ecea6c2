package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakePage is a canned response served by fakeFetcher.
type fakePage struct {
	body   string
	header http.Header
	err    error
}

// fakeFetcher serves pages from memory and records the fetch order.
type fakeFetcher struct {
	pages map[string]fakePage

	mu      sync.Mutex
	fetched []string
}

func newFakeFetcher(pages map[string]fakePage) *fakeFetcher {
	return &fakeFetcher{pages: pages}
}

func (f *fakeFetcher) Fetch(ctx context.Context, pageURL string) (*Response, error) {
	f.mu.Lock()
	f.fetched = append(f.fetched, pageURL)
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	page, ok := f.pages[pageURL]
	if !ok {
		return nil, fmt.Errorf("%w: 404", ErrUnexpectedStatus)
	}
	if page.err != nil {
		return nil, page.err
	}

	header := page.header
	if header == nil {
		header = http.Header{}
	}
	return &Response{URL: pageURL, StatusCode: http.StatusOK, Header: header, Body: []byte(page.body)}, nil
}

func (f *fakeFetcher) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.fetched)
}

// links builds an HTML body containing one anchor per href.
func links(hrefs ...string) string {
	var sb strings.Builder
	sb.WriteString("<html><body>")
	for _, href := range hrefs {
		fmt.Fprintf(&sb, `<a href="%s">link</a>`, href)
	}
	sb.WriteString("</body></html>")
	return sb.String()
}

// discardLogger returns a logger that drops everything.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fixedClock returns a clock frozen at the given date.
func fixedClock(year int, month time.Month, day int) func() time.Time {
	return func() time.Time {
		return time.Date(year, month, day, 12, 0, 0, 0, time.UTC)
	}
}

func newTestCrawler(f Fetcher, opts ...Option) *Crawler {
	opts = append([]Option{WithLogger(discardLogger()), WithClock(fixedClock(2024, time.June, 1))}, opts...)
	return New(f, NewParser(), opts...)
}

// TestCrawl tests the traversal rules of Crawl.
func TestCrawl(t *testing.T) {
	t.Parallel()

	const base = "http://example.com/"

	t.Run("isolated page yields exactly one record", func(t *testing.T) {
		t.Parallel()

		f := newFakeFetcher(map[string]fakePage{
			base: {body: "<html><body>No links here</body></html>"},
		})

		pages, err := newTestCrawler(f).Crawl(context.Background(), base)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(pages) != 1 {
			t.Fatalf("expected 1 page, got %d", len(pages))
		}
		if pages[0].Location != base {
			t.Errorf("expected location %q, got %q", base, pages[0].Location)
		}
	})

	t.Run("anchor reopened by malformed markup is visited once", func(t *testing.T) {
		t.Parallel()

		f := newFakeFetcher(map[string]fakePage{
			base:                     {body: `<div><a href="/one">one<p><a href="/two">two</div>`},
			"http://example.com/one": {body: links()},
			"http://example.com/two": {body: links()},
		})

		result, err := newTestCrawler(f).Run(context.Background(), base)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := []string{base, "http://example.com/one", "http://example.com/two"}
		if !slices.Equal(result.Visited, want) {
			t.Errorf("expected visited %v, got %v", want, result.Visited)
		}
		if !slices.Equal(f.calls(), want) {
			t.Errorf("expected fetches %v, got %v", want, f.calls())
		}
		if len(result.Pages) != 3 {
			t.Errorf("expected 3 pages, got %d", len(result.Pages))
		}
	})

	t.Run("cyclic graph visits each page once", func(t *testing.T) {
		t.Parallel()

		f := newFakeFetcher(map[string]fakePage{
			base:                   {body: links("/b")},
			"http://example.com/b": {body: links("/", "/b")},
		})

		result, err := newTestCrawler(f).Run(context.Background(), base)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := []string{base, "http://example.com/b"}
		if !slices.Equal(result.Visited, want) {
			t.Errorf("expected visited %v, got %v", want, result.Visited)
		}
		if len(result.Pages) != 2 {
			t.Errorf("expected 2 pages, got %d", len(result.Pages))
		}
		if calls := f.calls(); len(calls) != 2 {
			t.Errorf("expected 2 fetches, got %v", calls)
		}
	})

	t.Run("visits pages breadth-first in discovery order", func(t *testing.T) {
		t.Parallel()

		f := newFakeFetcher(map[string]fakePage{
			base:                   {body: links("/b", "/c")},
			"http://example.com/b": {body: links("/d")},
			"http://example.com/c": {body: links("/e")},
			"http://example.com/d": {body: links()},
			"http://example.com/e": {body: links()},
		})

		pages, err := newTestCrawler(f).Crawl(context.Background(), base)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var got []string
		for _, p := range pages {
			got = append(got, p.Location)
		}
		want := []string{
			base,
			"http://example.com/b",
			"http://example.com/c",
			"http://example.com/d",
			"http://example.com/e",
		}
		if !slices.Equal(got, want) {
			t.Errorf("expected order %v, got %v", want, got)
		}
	})

	t.Run("failed fetch is skipped and crawl continues", func(t *testing.T) {
		t.Parallel()

		f := newFakeFetcher(map[string]fakePage{
			base:                        {body: links("/broken", "/ok")},
			"http://example.com/broken": {err: errors.New("connection reset")},
			"http://example.com/ok":     {body: links("/broken")},
		})

		result, err := newTestCrawler(f).Run(context.Background(), base)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		for _, p := range result.Pages {
			if p.Location == "http://example.com/broken" {
				t.Error("failed page must not appear in output")
			}
		}
		if len(result.Pages) != 2 {
			t.Errorf("expected 2 pages, got %d", len(result.Pages))
		}
		if !slices.Contains(result.Visited, "http://example.com/broken") {
			t.Error("failed page must be marked visited")
		}
		if len(result.Failures) != 1 || result.Failures[0].URL != "http://example.com/broken" {
			t.Errorf("unexpected failures %+v", result.Failures)
		}

		// Linked again from /ok, but never retried.
		count := 0
		for _, u := range f.calls() {
			if u == "http://example.com/broken" {
				count++
			}
		}
		if count != 1 {
			t.Errorf("expected broken page to be fetched once, got %d", count)
		}
	})

	t.Run("failure of base URL yields empty result", func(t *testing.T) {
		t.Parallel()

		f := newFakeFetcher(map[string]fakePage{})

		pages, err := newTestCrawler(f).Crawl(context.Background(), base)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(pages) != 0 {
			t.Errorf("expected no pages, got %v", pages)
		}
	})

	t.Run("fragment and mailto links are never enqueued", func(t *testing.T) {
		t.Parallel()

		f := newFakeFetcher(map[string]fakePage{
			base: {body: links(
				"#top",
				"/page#section",
				"mailto:info@example.com",
				"/contact?to=mailto:info@example.com",
				"/plain",
			)},
			"http://example.com/plain": {body: links()},
		})

		result, err := newTestCrawler(f).Run(context.Background(), base)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := []string{base, "http://example.com/plain"}
		if !slices.Equal(result.Visited, want) {
			t.Errorf("expected visited %v, got %v", want, result.Visited)
		}
	})

	t.Run("same-site check is a string prefix match", func(t *testing.T) {
		t.Parallel()

		blog := "http://example.com/blog"
		f := newFakeFetcher(map[string]fakePage{
			blog:                              {body: links("/blog-archive", "/about", "http://other.example/blog", "http://EXAMPLE.com/blog/x")},
			"http://example.com/blog-archive": {body: links()},
		})

		result, err := newTestCrawler(f).Run(context.Background(), blog)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := []string{blog, "http://example.com/blog-archive"}
		if !slices.Equal(result.Visited, want) {
			t.Errorf("expected visited %v, got %v", want, result.Visited)
		}
	})

	t.Run("duplicate links are visited once", func(t *testing.T) {
		t.Parallel()

		f := newFakeFetcher(map[string]fakePage{
			base:                   {body: links("/a", "/a", "/b", "/a")},
			"http://example.com/a": {body: links("/b")},
			"http://example.com/b": {body: links("/a")},
		})

		pages, err := newTestCrawler(f).Crawl(context.Background(), base)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		seen := make(map[string]bool)
		for _, p := range pages {
			if seen[p.Location] {
				t.Errorf("duplicate location %q", p.Location)
			}
			seen[p.Location] = true
		}
		if len(pages) != 3 {
			t.Errorf("expected 3 pages, got %d", len(pages))
		}
	})

	t.Run("extractor error skips the page", func(t *testing.T) {
		t.Parallel()

		f := newFakeFetcher(map[string]fakePage{base: {body: "irrelevant"}})
		c := New(f, failingExtractor{}, WithLogger(discardLogger()))

		result, err := c.Run(context.Background(), base)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(result.Pages) != 0 || len(result.Failures) != 1 {
			t.Errorf("expected the page to fail, got pages=%v failures=%v", result.Pages, result.Failures)
		}
	})

	t.Run("cancelled context returns error and no pages", func(t *testing.T) {
		t.Parallel()

		f := newFakeFetcher(map[string]fakePage{base: {body: links()}})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		pages, err := newTestCrawler(f).Crawl(ctx, base)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if pages != nil {
			t.Errorf("expected nil pages, got %v", pages)
		}
	})
}

// failingExtractor always fails.
type failingExtractor struct{}

func (failingExtractor) Extract([]byte, string) ([]string, error) {
	return nil, errors.New("cannot parse")
}

// chainSite returns a site where page i links to pages i+1 and i+2.
func chainSite(base string, n int) map[string]fakePage {
	pages := make(map[string]fakePage, n)
	for i := range n {
		u := base
		if i > 0 {
			u = fmt.Sprintf("%sp%d", base, i)
		}
		pages[u] = fakePage{body: links(fmt.Sprintf("/p%d", i+1), fmt.Sprintf("/p%d", i+2))}
	}
	return pages
}

// TestCrawlLimit tests that the visit limit bounds the crawl.
func TestCrawlLimit(t *testing.T) {
	t.Parallel()

	const base = "http://example.com/"

	for _, limit := range []int{1, 3, 10} {
		t.Run(fmt.Sprintf("limit %d", limit), func(t *testing.T) {
			t.Parallel()

			f := newFakeFetcher(chainSite(base, 50))
			result, err := newTestCrawler(f, WithLimit(limit)).Run(context.Background(), base)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if len(result.Visited) > limit {
				t.Errorf("visited %d URLs, limit is %d", len(result.Visited), limit)
			}
			if len(result.Pages) > limit || len(result.Pages) > len(result.Visited) {
				t.Errorf("pages=%d visited=%d limit=%d", len(result.Pages), len(result.Visited), limit)
			}
			if len(result.Pages) != limit {
				t.Errorf("expected %d pages, got %d", limit, len(result.Pages))
			}
		})
	}

	t.Run("failures count toward the limit", func(t *testing.T) {
		t.Parallel()

		f := newFakeFetcher(map[string]fakePage{
			base:                    {body: links("/missing1", "/missing2", "/ok")},
			"http://example.com/ok": {body: links()},
		})

		result, err := newTestCrawler(f, WithLimit(3)).Run(context.Background(), base)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(result.Visited) != 3 {
			t.Errorf("expected 3 visited, got %v", result.Visited)
		}
		if len(result.Pages) != 1 {
			t.Errorf("expected only the base page, got %v", result.Pages)
		}
	})

	t.Run("default limit is 100", func(t *testing.T) {
		t.Parallel()

		c := New(newFakeFetcher(nil), nil)
		if c.Limit() != DefaultLimit || DefaultLimit != 100 {
			t.Errorf("expected default limit 100, got %d", c.Limit())
		}

		c = New(newFakeFetcher(nil), nil, WithLimit(0))
		if c.Limit() != DefaultLimit {
			t.Errorf("expected zero limit to be ignored, got %d", c.Limit())
		}
	})
}

// TestCrawlLastModified tests lastmod selection.
func TestCrawlLastModified(t *testing.T) {
	t.Parallel()

	const base = "http://example.com/"

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{name: "RFC 1123 header", header: "Wed, 21 Oct 2015 07:28:00 GMT", want: "2015-10-21"},
		{name: "RFC 850 header", header: "Sunday, 06-Nov-94 08:49:37 GMT", want: "1994-11-06"},
		{name: "RFC 3339 header", header: "2023-02-03T10:00:00+09:00", want: "2023-02-03"},
		{name: "late evening in another zone is normalized to UTC", header: "2023-02-03T01:00:00+09:00", want: "2023-02-02"},
		{name: "missing header falls back to crawl date", header: "", want: "2024-06-01"},
		{name: "invalid header falls back to crawl date", header: "not a date", want: "2024-06-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			header := http.Header{}
			if tt.header != "" {
				header.Set("Last-Modified", tt.header)
			}
			f := newFakeFetcher(map[string]fakePage{base: {body: links(), header: header}})

			pages, err := newTestCrawler(f).Crawl(context.Background(), base)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(pages) != 1 {
				t.Fatalf("expected 1 page, got %d", len(pages))
			}
			if pages[0].LastModified != tt.want {
				t.Errorf("expected lastmod %q, got %q", tt.want, pages[0].LastModified)
			}
		})
	}

	t.Run("fallback uses the real clock by default", func(t *testing.T) {
		t.Parallel()

		f := newFakeFetcher(map[string]fakePage{base: {body: links()}})
		pages, err := New(f, nil, WithLogger(discardLogger())).Crawl(context.Background(), base)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		today := time.Now().UTC().Format("2006-01-02")
		yesterday := time.Now().UTC().Add(-24 * time.Hour).Format("2006-01-02")
		got := pages[0].LastModified
		if got != today && got != yesterday {
			t.Errorf("expected today's date, got %q", got)
		}
		if _, err := time.Parse("2006-01-02", got); err != nil {
			t.Errorf("lastmod %q is not YYYY-MM-DD: %v", got, err)
		}
	})
}

// slowFetcher blocks until its context is done.
type slowFetcher struct{}

func (slowFetcher) Fetch(ctx context.Context, _ string) (*Response, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

// TestCrawlFetchTimeout verifies each fetch is bounded by the fetch timeout.
func TestCrawlFetchTimeout(t *testing.T) {
	t.Parallel()

	c := New(slowFetcher{}, nil, WithLogger(discardLogger()), WithFetchTimeout(20*time.Millisecond))

	start := time.Now()
	result, err := c.Run(context.Background(), "http://example.com/")
	if err != nil {
		t.Fatalf("a timed out fetch must not fail the crawl: %v", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Error("fetch was not bounded by the timeout")
	}
	if len(result.Failures) != 1 || !errors.Is(result.Failures[0].Err, context.DeadlineExceeded) {
		t.Errorf("expected a deadline failure, got %+v", result.Failures)
	}
}

// TestCrawlConcurrentInvocations verifies crawls share no state.
func TestCrawlConcurrentInvocations(t *testing.T) {
	t.Parallel()

	site := map[string]fakePage{}
	for k, v := range chainSite("http://a.example/", 20) {
		site[k] = v
	}
	for k, v := range chainSite("http://b.example/", 20) {
		site[k] = v
	}
	c := newTestCrawler(newFakeFetcher(site), WithLimit(10))

	var wg sync.WaitGroup
	results := make([]int, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			base := "http://a.example/"
			if i%2 == 1 {
				base = "http://b.example/"
			}
			pages, err := c.Crawl(context.Background(), base)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			for _, p := range pages {
				if !strings.HasPrefix(p.Location, base) {
					t.Errorf("crawl of %s leaked %s", base, p.Location)
				}
			}
			results[i] = len(pages)
		}()
	}
	wg.Wait()

	for i, n := range results {
		if n != 10 {
			t.Errorf("crawl %d: expected 10 pages, got %d", i, n)
		}
	}
}

// TestCrawlWithHTTPServer crawls a real HTTP server end to end.
func TestCrawlWithHTTPServer(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, links("/about", "/blog/", "/missing", "https://external.example/"))
	})
	mux.HandleFunc("/about", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Last-Modified", "Mon, 01 Jan 2024 00:00:00 GMT")
		fmt.Fprint(w, links("/", "/about#team"))
	})
	mux.HandleFunc("/blog/", func(w http.ResponseWriter, _ *http.Request) {
		// Relative references resolve against the base URL, not the page.
		fmt.Fprint(w, links("blog/first-post"))
	})
	mux.HandleFunc("/blog/first-post", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, links("../about"))
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	fetcher, err := NewHTTPFetcher(FetcherOptions{Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("failed to create fetcher: %v", err)
	}

	base := server.URL + "/"
	result, err := New(fetcher, NewParser(), WithLogger(discardLogger())).Run(context.Background(), base)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got []string
	for _, p := range result.Pages {
		got = append(got, strings.TrimPrefix(p.Location, server.URL))
	}
	want := []string{"/", "/about", "/blog/", "/blog/first-post"}
	if !slices.Equal(got, want) {
		t.Errorf("expected pages %v, got %v", want, got)
	}

	if result.Pages[1].LastModified != "2024-01-01" {
		t.Errorf("expected /about lastmod 2024-01-01, got %q", result.Pages[1].LastModified)
	}
	if len(result.Failures) != 1 || !errors.Is(result.Failures[0].Err, ErrUnexpectedStatus) {
		t.Errorf("expected /missing to fail with ErrUnexpectedStatus, got %+v", result.Failures)
	}
}
