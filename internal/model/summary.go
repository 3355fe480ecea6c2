package model

import "time"

// CrawlSummary describes one finished sitemap generation.
// It is what the summary writers print and what batch runs report per target.
type CrawlSummary struct {
	// URL is the base URL that was crawled.
	URL string `json:"url"`

	// StartedAt is when the crawl began.
	StartedAt time.Time `json:"started_at"`

	// Elapsed is the duration of crawl plus build.
	Elapsed time.Duration `json:"elapsed_ns"`

	// Options are the values written into every sitemap entry.
	Options SitemapOptions `json:"options"`

	// Pages lists the pages that made it into the sitemap.
	Pages []Page `json:"pages"`

	// Visited is the number of URLs dequeued, including failures.
	Visited int `json:"visited"`

	// Failures lists URLs that were visited but could not be crawled.
	Failures []CrawlFailure `json:"failures,omitempty"`

	// OutputPath is where the sitemap was written, if anywhere.
	OutputPath string `json:"output_path,omitempty"`

	// Error is set when the generation failed as a whole.
	Error string `json:"error,omitempty"`
}

// CrawlFailure is a URL that was skipped, with the reason.
type CrawlFailure struct {
	URL   string `json:"url"`
	Error string `json:"error"`
}

// Succeeded reports whether a sitemap was produced.
func (s *CrawlSummary) Succeeded() bool {
	return s.Error == ""
}
