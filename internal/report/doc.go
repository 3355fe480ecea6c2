// Package report writes human and machine readable summaries of sitemap
// generation runs.
//
// This package contains writers for different output formats:
//   - SimpleWriter: plain text for the terminal
//   - MarkdownWriter: Markdown for CI job summaries and issues
//   - JSONWriter: JSON for scripts
//
// The summaries describe a crawl (pages, failures, timing). The sitemap
// document itself is produced by package sitemap.
package report
