// Package main provides the entry point for the sitemapgen CLI.
//
// sitemapgen crawls a website breadth-first and writes a sitemap.xml
// document listing every page it reached under the base URL.
//
// Usage:
//
//	sitemapgen generate https://example.com
//	sitemapgen serve
//
// See --help for all available options.
package main

func main() {
	Execute()
}
