// Package config provides configuration structures and utilities for sitemapgen.
// It defines crawl limits, sitemap defaults, server settings and the optional
// YAML file with per-site overrides.
package config
