package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/nao1215/sitemapgen/internal/model"
)

// Default configuration values.
const (
	// DefaultTimeout bounds each page fetch. Slow pages are skipped rather
	// than holding up the whole crawl.
	DefaultTimeout = 8 * time.Second

	// DefaultMaxPages is the maximum number of URLs visited per site.
	DefaultMaxPages = 100

	// DefaultChangeFreq is written to <changefreq> when the caller gives none.
	DefaultChangeFreq = model.ChangeFreqWeekly

	// DefaultPriority is written to <priority> when the caller gives none.
	DefaultPriority = "0.5"

	// DefaultConcurrency is the number of sites crawled in parallel when
	// several targets are given. Each site is still crawled sequentially.
	DefaultConcurrency = 4

	// DefaultListenAddress is the address the HTTP server binds to.
	DefaultListenAddress = ":3000"

	// DefaultUserAgent identifies sitemapgen in HTTP requests.
	DefaultUserAgent = "sitemapgen/1.0 (+https://github.com/nao1215/sitemapgen)"

	// DefaultMaxBodySize limits the response body size read per page.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// AppName is the application name used for XDG directory paths.
	AppName = "sitemapgen"
)

// Summary formats accepted by Config.SummaryFormat.
const (
	SummaryNone     = ""
	SummaryText     = "text"
	SummaryMarkdown = "markdown"
	SummaryJSON     = "json"
)

// Config holds all configuration options for sitemapgen.
// It is populated from CLI flags and the configuration file, then passed
// through the application explicitly.
type Config struct {
	// Targets are the base URLs to crawl.
	Targets []string

	// Timeout bounds each individual page fetch.
	Timeout time.Duration

	// MaxPages is the maximum number of URLs visited per site.
	MaxPages int

	// ChangeFreq is the default <changefreq> value.
	ChangeFreq string

	// Priority is the default <priority> value.
	Priority string

	// Concurrency is the number of sites crawled at the same time.
	Concurrency int

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes.
	MaxBodySize int64

	// ProxyURL routes all requests through an http(s) or socks5 proxy.
	ProxyURL string

	// ListenAddress is the address used by the serve command.
	ListenAddress string

	// OutputPath is where generated sitemaps are written.
	// Empty means stdout for a single target. With several targets it is
	// a directory that receives one file per site.
	OutputPath string

	// SummaryFormat selects the crawl summaries written to stderr.
	// Several formats may be given separated by commas.
	SummaryFormat string

	// Archive records every generated sitemap in the SQLite archive.
	Archive bool

	// DBDir is the directory holding the archive database.
	DBDir string

	// Verbose enables debug logging.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, FindConfigFile searches the default locations.
	ConfigFilePath string

	// SiteConfigs holds the per-site settings loaded from the config file.
	SiteConfigs *File

	// Explicit marks settings given on the command line.
	Explicit Explicit
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Timeout:       DefaultTimeout,
		MaxPages:      DefaultMaxPages,
		ChangeFreq:    DefaultChangeFreq,
		Priority:      DefaultPriority,
		Concurrency:   DefaultConcurrency,
		UserAgent:     DefaultUserAgent,
		MaxBodySize:   DefaultMaxBodySize,
		ListenAddress: DefaultListenAddress,
		DBDir:         XDGDataDir(),
		SiteConfigs:   NewFile(),
	}
}

// SitemapOptions returns the configured default sitemap options.
func (c *Config) SitemapOptions() model.SitemapOptions {
	return model.SitemapOptions{
		ChangeFrequency: c.ChangeFreq,
		Priority:        c.Priority,
	}
}

// XDGDataDir returns the XDG data directory for sitemapgen.
// On Linux: ~/.local/share/sitemapgen
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for sitemapgen.
// On Linux: ~/.config/sitemapgen
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the settings shared by every command.
// It returns the first problem found as a sentinel error.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.MaxPages <= 0 {
		return ErrInvalidMaxPages
	}
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	for _, format := range c.SummaryFormats() {
		switch format {
		case SummaryText, SummaryMarkdown, SummaryJSON:
		default:
			return ErrInvalidSummaryFormat
		}
	}
	return nil
}

// SummaryFormats splits SummaryFormat on commas, so "text,json" selects
// two writers. It returns nil when no summary is requested.
func (c *Config) SummaryFormats() []string {
	if strings.TrimSpace(c.SummaryFormat) == SummaryNone {
		return nil
	}
	parts := strings.Split(c.SummaryFormat, ",")
	formats := make([]string, 0, len(parts))
	for _, part := range parts {
		formats = append(formats, strings.TrimSpace(part))
	}
	return formats
}

// ValidateTargets checks that at least one target is given and that every
// target is acceptable to ValidateURL.
func (c *Config) ValidateTargets() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}
	for _, target := range c.Targets {
		if err := ValidateURL(target); err != nil {
			return err
		}
	}
	return nil
}

// ValidateURL reports whether rawURL may be used as a crawl base URL.
// The rule is deliberately loose: the URL must be present and start with
// "http". Anything stricter is left to the fetcher, which fails the page.
func ValidateURL(rawURL string) error {
	if rawURL == "" || !strings.HasPrefix(rawURL, "http") {
		return ErrInvalidURL
	}
	return nil
}
