// Package server exposes sitemap generation over HTTP.
//
// The API is the one the original web service offered:
//
//	POST /generate-sitemap  {"url": "...", "changeFreq": "...", "priority": "..."}
//	GET  /health
//
// When an archive is attached, earlier documents can be read back:
//
//	GET /sitemaps[?url=...]
//	GET /sitemaps/:id
package server
