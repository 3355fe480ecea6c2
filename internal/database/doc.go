// Package database provides SQLite-based storage for generated sitemaps.
//
// ArchiveDB records every sitemap document sitemapgen produces so that the
// history command can list and re-print earlier runs. It is an output log
// only: crawls never read from it and always start from an empty state.
//
// We use modernc.org/sqlite, a CGO-free driver, so the binary cross-compiles
// without a C toolchain. WAL mode lets the serve command record documents
// while history reads them.
package database
