package crawler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/nao1215/sitemapgen/internal/model"
)

// Default crawl settings.
const (
	// DefaultLimit is the maximum number of URLs visited per crawl.
	DefaultLimit = 100

	// DefaultFetchTimeout bounds each individual fetch.
	// There is no limit on the duration of the whole crawl.
	DefaultFetchTimeout = 8 * time.Second
)

// Response is the result of a successful fetch.
type Response struct {
	// URL is the URL that was requested.
	URL string

	// StatusCode is the HTTP status code.
	StatusCode int

	// Header contains the response headers.
	Header http.Header

	// Body is the decoded response body.
	Body []byte
}

// Fetcher downloads a single URL.
// Implementations must honor ctx for cancellation and deadlines.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (*Response, error)
}

// LinkExtractor returns the absolute targets of every hyperlink in body.
// Relative references are resolved against baseURL.
type LinkExtractor interface {
	Extract(body []byte, baseURL string) ([]string, error)
}

// Crawler walks a website breadth-first and records every page it can fetch.
//
// A Crawler holds configuration only. Every call to Crawl or Run creates its
// own visited set and frontier, so one Crawler can serve concurrent crawls
// of different sites.
type Crawler struct {
	// fetcher downloads pages.
	fetcher Fetcher

	// extractor finds links in downloaded pages.
	extractor LinkExtractor

	// limit is the maximum number of URLs visited per crawl.
	limit int

	// fetchTimeout bounds each call to fetcher.Fetch.
	fetchTimeout time.Duration

	// logger receives a warning for every page that fails.
	logger *slog.Logger

	// now supplies the lastmod date for responses without Last-Modified.
	now func() time.Time
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithLimit sets the maximum number of URLs visited per crawl.
// Non-positive values are ignored.
func WithLimit(limit int) Option {
	return func(c *Crawler) {
		if limit > 0 {
			c.limit = limit
		}
	}
}

// WithFetchTimeout sets the deadline applied to each fetch.
// Non-positive values are ignored.
func WithFetchTimeout(d time.Duration) Option {
	return func(c *Crawler) {
		if d > 0 {
			c.fetchTimeout = d
		}
	}
}

// WithLogger sets the logger used for crawl diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Crawler) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock sets the function used to obtain the crawl date.
func WithClock(now func() time.Time) Option {
	return func(c *Crawler) {
		if now != nil {
			c.now = now
		}
	}
}

// New creates a Crawler. If extractor is nil, a Parser is used.
func New(fetcher Fetcher, extractor LinkExtractor, opts ...Option) *Crawler {
	if extractor == nil {
		extractor = NewParser()
	}

	c := &Crawler{
		fetcher:      fetcher,
		extractor:    extractor,
		limit:        DefaultLimit,
		fetchTimeout: DefaultFetchTimeout,
		logger:       slog.Default(),
		now:          time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Limit returns the maximum number of URLs visited per crawl.
func (c *Crawler) Limit() int {
	return c.limit
}

// Failure describes a URL that was visited but could not be crawled.
type Failure struct {
	URL string
	Err error
}

// Result is the full outcome of one crawl.
type Result struct {
	// Pages are the successfully crawled pages in visit order.
	Pages []model.Page

	// Visited lists every dequeued URL in visit order, including failures.
	Visited []string

	// Failures lists the URLs that were skipped because of an error.
	Failures []Failure
}

// Crawl crawls the site at baseURL and returns the pages found, in visit order.
//
// baseURL is expected to be an absolute http(s) URL; validating it is the
// caller's job. Individual page failures never cause an error. An error is
// returned only when ctx is done, in which case no pages are returned.
func (c *Crawler) Crawl(ctx context.Context, baseURL string) ([]model.Page, error) {
	result, err := c.Run(ctx, baseURL)
	if err != nil {
		return nil, err
	}
	return result.Pages, nil
}

// Run is like Crawl but also reports visited URLs and failures.
func (c *Crawler) Run(ctx context.Context, baseURL string) (*Result, error) {
	visited := newVisitedSet()
	queue := newFrontier(baseURL)
	result := &Result{Pages: make([]model.Page, 0)}

	for queue.len() > 0 && visited.len() < c.limit {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		current, _ := queue.pop()
		if visited.has(current) {
			continue
		}
		visited.add(current)

		page, links, err := c.visit(ctx, current, baseURL)
		if err != nil {
			// Cancellation aborts the crawl; anything else only skips the page.
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			c.logger.Warn("failed to crawl page", "url", current, "error", err)
			result.Failures = append(result.Failures, Failure{URL: current, Err: err})
			continue
		}

		result.Pages = append(result.Pages, page)

		for _, link := range links {
			if shouldEnqueue(link, baseURL, visited) {
				queue.push(link)
			}
		}

		c.logger.Debug("crawled page",
			"url", current,
			"lastmod", page.LastModified,
			"links", len(links),
			"queued", queue.len(),
		)
	}

	result.Visited = visited.order
	return result, nil
}

// visit fetches one URL and returns its page record and outgoing links.
func (c *Crawler) visit(ctx context.Context, pageURL, baseURL string) (model.Page, []string, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, c.fetchTimeout)
	defer cancel()

	resp, err := c.fetcher.Fetch(fetchCtx, pageURL)
	if err != nil {
		return model.Page{}, nil, err
	}
	if resp == nil {
		return model.Page{}, nil, errors.New("fetcher returned no response")
	}

	links, err := c.extractor.Extract(resp.Body, baseURL)
	if err != nil {
		return model.Page{}, nil, err
	}

	return model.NewPage(pageURL, c.lastModified(pageURL, resp.Header)), links, nil
}

// lastModified returns the modification time announced by the server,
// falling back to the current time when the header is absent or invalid.
func (c *Crawler) lastModified(pageURL string, header http.Header) time.Time {
	value := strings.TrimSpace(header.Get("Last-Modified"))
	if value == "" {
		return c.now()
	}

	t, err := parseHTTPDate(value)
	if err != nil {
		c.logger.Debug("ignoring invalid Last-Modified header", "url", pageURL, "value", value)
		return c.now()
	}
	return t
}

// parseHTTPDate parses the date formats found in Last-Modified headers:
// the three formats allowed by HTTP plus RFC 3339, which some servers emit.
func parseHTTPDate(value string) (time.Time, error) {
	if t, err := http.ParseTime(value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}

// shouldEnqueue reports whether a discovered link belongs in the frontier.
//
// The same-site check is a textual prefix match against baseURL, not an
// origin comparison: "https://example.com/blog" admits
// "https://example.com/blog-archive" and rejects "https://EXAMPLE.com/blog/a".
func shouldEnqueue(link, baseURL string, visited *visitedSet) bool {
	return strings.HasPrefix(link, baseURL) &&
		!visited.has(link) &&
		!strings.Contains(link, "#") &&
		!strings.Contains(link, "mailto:")
}
