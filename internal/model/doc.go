// Package model defines the data structures shared by the crawler, the
// sitemap builder and the request boundary.
//
// This package contains the following main types:
//   - Page: One crawled page (location plus last-modified date)
//   - SitemapOptions: Caller-supplied values copied into every sitemap entry
//   - CrawlSummary: The outcome of one generation, as printed by the summary writers
//
// Design decision: We keep models in their own package so that crawler,
// sitemap, server and database can share them without import cycles.
//
// The models are serializable to JSON using the same field names the
// sitemap protocol uses (loc, lastmod, changefreq, priority).
package model
