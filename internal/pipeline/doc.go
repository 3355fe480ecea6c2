// Package pipeline turns a base URL into a sitemap document.
//
// A generation runs as a sequence of steps over a Job: crawl the site,
// build the document and optionally record it in the archive. Generator
// wraps that sequence behind a single call for the HTTP server and the CLI,
// and BatchProcessor runs many generations concurrently with errgroup.
//
// Every generation owns its crawl state. Targets processed in the same
// batch never share a visited set or a frontier.
package pipeline
