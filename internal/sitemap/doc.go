// Package sitemap renders crawled pages as a sitemap document following the
// sitemaps.org 0.9 protocol.
//
// The document has a fixed shape that search engines and sitemap tools expect:
//
//	<?xml version="1.0" encoding="UTF-8"?>
//	<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
//	  <url>
//	    <loc>https://example.com/</loc>
//	    <lastmod>2024-01-01</lastmod>
//	    <changefreq>daily</changefreq>
//	    <priority>0.5</priority>
//	  </url>
//	</urlset>
//
// Entries appear in the order of the input pages. Every text value is XML
// escaped so that locations containing '&' (query strings) still produce a
// well-formed document.
//
// Large sites are not split into sitemap index files; a single document is
// produced regardless of the number of entries.
package sitemap
