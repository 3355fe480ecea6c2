// Package crawler discovers the pages of a website for sitemap generation.
//
// # Architecture
//
// The package is designed around the Crawler type, which performs a bounded
// breadth-first traversal starting at a base URL. It depends on two
// capabilities that are injected at construction time:
//
//   - Fetcher: downloads a URL (HTTPFetcher is the net/http implementation)
//   - LinkExtractor: returns the hyperlink targets of a page (Parser is the
//     goquery implementation)
//
// Design decision: Both capabilities are interfaces rather than a shared
// package-level HTTP client because:
//  1. Every crawl invocation stays isolated from other crawls
//  2. Tests can replace the network with a fake Fetcher
//  3. Proxy, header and timeout configuration live in one place (HTTPFetcher)
//
// # Traversal
//
// URLs are processed one at a time in FIFO order, so pages are visited in the
// order their links were discovered. A URL is visited at most once per crawl,
// and at most limit URLs are visited. Only links whose absolute form starts
// with the base URL (a plain string prefix) are followed; links containing a
// fragment or a mailto: reference are ignored.
//
// # Failure handling
//
// A page that cannot be fetched or parsed is logged and skipped. It still
// counts as visited and is never retried, and the crawl continues with the
// remaining URLs.
//
// # Usage
//
//	fetcher, err := crawler.NewHTTPFetcher(crawler.FetcherOptions{Timeout: 8 * time.Second})
//	if err != nil {
//		return err
//	}
//	c := crawler.New(fetcher, crawler.NewParser(), crawler.WithLimit(100))
//	pages, err := c.Crawl(ctx, "https://example.com")
package crawler
