package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

// TestNewConfig verifies that NewConfig returns a Config with all expected default values.
// Changing a default should be a deliberate decision that also updates this test.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default Timeout is 8 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.Timeout != 8*time.Second {
			t.Errorf("expected Timeout to be 8s, got %v", cfg.Timeout)
		}
	})

	t.Run("default MaxPages is 100", func(t *testing.T) {
		t.Parallel()
		if cfg.MaxPages != 100 {
			t.Errorf("expected MaxPages to be 100, got %d", cfg.MaxPages)
		}
	})

	t.Run("default sitemap options", func(t *testing.T) {
		t.Parallel()
		opts := cfg.SitemapOptions()
		if opts.ChangeFrequency != "weekly" {
			t.Errorf("expected weekly, got %q", opts.ChangeFrequency)
		}
		if opts.Priority != "0.5" {
			t.Errorf("expected 0.5, got %q", opts.Priority)
		}
	})

	t.Run("default ListenAddress is :3000", func(t *testing.T) {
		t.Parallel()
		if cfg.ListenAddress != ":3000" {
			t.Errorf("expected ':3000', got %q", cfg.ListenAddress)
		}
	})

	t.Run("default SiteConfigs is empty but usable", func(t *testing.T) {
		t.Parallel()
		if cfg.SiteConfigs == nil || cfg.SiteConfigs.Sites == nil {
			t.Fatal("expected initialized SiteConfigs")
		}
		if got := cfg.SiteConfigs.GetSiteConfig("https://example.com"); got.Limit != 0 {
			t.Errorf("expected empty site config, got %+v", got)
		}
	})

	t.Run("default config is valid", func(t *testing.T) {
		t.Parallel()
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})
}

// TestConfigValidate tests the Validate method with various configurations.
// Each case breaks exactly one rule.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{name: "zero timeout", mutate: func(c *Config) { c.Timeout = 0 }, wantErr: ErrInvalidTimeout},
		{name: "negative timeout", mutate: func(c *Config) { c.Timeout = -time.Second }, wantErr: ErrInvalidTimeout},
		{name: "zero max pages", mutate: func(c *Config) { c.MaxPages = 0 }, wantErr: ErrInvalidMaxPages},
		{name: "zero concurrency", mutate: func(c *Config) { c.Concurrency = 0 }, wantErr: ErrInvalidConcurrency},
		{name: "negative body size", mutate: func(c *Config) { c.MaxBodySize = -1 }, wantErr: ErrInvalidMaxBodySize},
		{name: "unknown summary format", mutate: func(c *Config) { c.SummaryFormat = "html" }, wantErr: ErrInvalidSummaryFormat},
		{name: "text summary is valid", mutate: func(c *Config) { c.SummaryFormat = SummaryText }},
		{name: "markdown summary is valid", mutate: func(c *Config) { c.SummaryFormat = SummaryMarkdown }},
		{name: "json summary is valid", mutate: func(c *Config) { c.SummaryFormat = SummaryJSON }},
		{name: "several summaries are valid", mutate: func(c *Config) { c.SummaryFormat = "text, json" }},
		{name: "unknown format in a list", mutate: func(c *Config) { c.SummaryFormat = "text,html" }, wantErr: ErrInvalidSummaryFormat},
		{name: "empty format in a list", mutate: func(c *Config) { c.SummaryFormat = "text," }, wantErr: ErrInvalidSummaryFormat},
		{name: "zero body size uses default", mutate: func(c *Config) { c.MaxBodySize = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := NewConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil && err != nil {
				t.Errorf("expected no error, got %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// TestValidateTargets tests base URL validation.
func TestValidateTargets(t *testing.T) {
	t.Parallel()

	t.Run("no targets returns ErrNoTarget", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		if err := cfg.ValidateTargets(); !errors.Is(err, ErrNoTarget) {
			t.Errorf("expected ErrNoTarget, got %v", err)
		}
	})

	t.Run("http and https targets are valid", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		cfg.Targets = []string{"http://example.com", "https://example.org/blog"}
		if err := cfg.ValidateTargets(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("one bad target fails validation", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		cfg.Targets = []string{"https://example.com", "example.org"}
		if err := cfg.ValidateTargets(); !errors.Is(err, ErrInvalidURL) {
			t.Errorf("expected ErrInvalidURL, got %v", err)
		}
	})
}

// TestValidateURL tests the request-boundary URL rule.
func TestValidateURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		url   string
		valid bool
	}{
		{url: "https://example.com", valid: true},
		{url: "http://example.com/path?q=1", valid: true},
		{url: "", valid: false},
		{url: "example.com", valid: false},
		{url: "ftp://example.com", valid: false},
		{url: "HTTP://example.com", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			t.Parallel()
			err := ValidateURL(tt.url)
			if tt.valid && err != nil {
				t.Errorf("expected %q to be valid, got %v", tt.url, err)
			}
			if !tt.valid && !errors.Is(err, ErrInvalidURL) {
				t.Errorf("expected ErrInvalidURL for %q, got %v", tt.url, err)
			}
		})
	}
}

// TestFileGetSiteConfig tests the GetSiteConfig method.
func TestFileGetSiteConfig(t *testing.T) {
	t.Parallel()

	file := &File{
		Defaults: SiteConfig{
			ChangeFreq: "monthly",
			Priority:   "0.3",
			Headers:    map[string]string{"X-Default": "1"},
		},
		Sites: map[string]SiteConfig{
			"https://example.com/docs": {
				Priority: "0.9",
			},
			"example.org": {
				ChangeFreq: "daily",
				Limit:      20,
				Cookie:     "session=xyz",
				Headers:    map[string]string{"Authorization": "Bearer token"},
			},
		},
	}

	t.Run("returns defaults when site not found", func(t *testing.T) {
		t.Parallel()
		cfg := file.GetSiteConfig("https://unknown.example")
		if cfg.ChangeFreq != "monthly" || cfg.Priority != "0.3" {
			t.Errorf("expected defaults, got %+v", cfg)
		}
	})

	t.Run("matches full base URL", func(t *testing.T) {
		t.Parallel()
		cfg := file.GetSiteConfig("https://example.com/docs/")
		if cfg.Priority != "0.9" {
			t.Errorf("expected priority 0.9, got %q", cfg.Priority)
		}
		if cfg.ChangeFreq != "monthly" {
			t.Errorf("expected default changefreq, got %q", cfg.ChangeFreq)
		}
	})

	t.Run("matches host name", func(t *testing.T) {
		t.Parallel()
		cfg := file.GetSiteConfig("https://example.org/blog")
		if cfg.ChangeFreq != "daily" || cfg.Limit != 20 || cfg.Cookie != "session=xyz" {
			t.Errorf("unexpected merged config %+v", cfg)
		}
	})

	t.Run("merges headers", func(t *testing.T) {
		t.Parallel()
		cfg := file.GetSiteConfig("https://example.org")
		if cfg.Headers["X-Default"] != "1" || cfg.Headers["Authorization"] != "Bearer token" {
			t.Errorf("unexpected headers %v", cfg.Headers)
		}
		if len(file.Defaults.Headers) != 1 {
			t.Error("merging must not modify the defaults")
		}
	})

	t.Run("nil sites map", func(t *testing.T) {
		t.Parallel()
		empty := &File{Defaults: SiteConfig{Limit: 5}}
		if cfg := empty.GetSiteConfig("https://example.com"); cfg.Limit != 5 {
			t.Errorf("expected default limit, got %d", cfg.Limit)
		}
	})
}

// TestLoadConfigFile tests loading YAML configuration files.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrConfigNotFound for non-existent file", func(t *testing.T) {
		t.Parallel()
		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("loads valid YAML config", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "config.yaml")
		content := `defaults:
  changeFreq: weekly
  priority: "0.5"
sites:
  example.com:
    changeFreq: daily
    limit: 50
    userAgent: custom-agent
    headers:
      Authorization: "Bearer token"
`
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cf.Defaults.Priority != "0.5" {
			t.Errorf("expected default priority 0.5, got %q", cf.Defaults.Priority)
		}
		site, ok := cf.Sites["example.com"]
		if !ok {
			t.Fatal("expected example.com site config")
		}
		if site.ChangeFreq != "daily" || site.Limit != 50 || site.UserAgent != "custom-agent" {
			t.Errorf("unexpected site config %+v", site)
		}
		if site.Headers["Authorization"] != "Bearer token" {
			t.Errorf("unexpected headers %v", site.Headers)
		}
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "bad.yaml")
		if err := os.WriteFile(path, []byte("sites: [unclosed"), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})

	t.Run("initializes nil Sites map", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "defaults.yaml")
		if err := os.WriteFile(path, []byte("defaults:\n  limit: 10\n"), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cf.Sites == nil {
			t.Error("expected Sites to be initialized")
		}
		if cf.Defaults.Limit != 10 {
			t.Errorf("expected default limit 10, got %d", cf.Defaults.Limit)
		}
	})
}

// TestFindConfigFile tests configuration file discovery.
func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns explicit path if exists", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "explicit.yaml")
		if err := os.WriteFile(path, []byte("{}"), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
		if got := FindConfigFile(path); got != path {
			t.Errorf("expected %q, got %q", path, got)
		}
	})

	t.Run("returns empty for non-existent explicit path", func(t *testing.T) {
		t.Parallel()
		if got := FindConfigFile(filepath.Join(t.TempDir(), "nope.yaml")); got != "" {
			t.Errorf("expected empty path, got %q", got)
		}
	})
}

// TestXDGDirs tests XDG directory helpers.
func TestXDGDirs(t *testing.T) {
	t.Parallel()

	for name, dir := range map[string]string{"data": XDGDataDir(), "config": XDGConfigDir()} {
		if dir == "" {
			t.Errorf("%s dir is empty", name)
		}
		if filepath.Base(dir) != AppName {
			t.Errorf("%s dir %q does not end with %q", name, dir, AppName)
		}
	}
}

// TestResolveTarget tests precedence between flags, site blocks and defaults.
func TestResolveTarget(t *testing.T) {
	t.Parallel()

	newCfg := func() *Config {
		cfg := NewConfig()
		cfg.SiteConfigs = &File{
			Defaults: SiteConfig{Priority: "0.3"},
			Sites: map[string]SiteConfig{
				"example.com": {
					ChangeFreq: "daily",
					Limit:      20,
					UserAgent:  "site-agent",
					Cookie:     "session=abc",
					Headers:    map[string]string{"X-Token": "t"},
				},
			},
		}
		return cfg
	}

	t.Run("site block overrides config", func(t *testing.T) {
		t.Parallel()

		target := newCfg().ResolveTarget("https://example.com/blog")
		if target.Options.ChangeFrequency != "daily" || target.Options.Priority != "0.3" {
			t.Errorf("unexpected options %+v", target.Options)
		}
		if target.Limit != 20 || target.UserAgent != "site-agent" || target.Cookie != "session=abc" {
			t.Errorf("unexpected target %+v", target)
		}
		if target.Headers["X-Token"] != "t" {
			t.Errorf("unexpected headers %v", target.Headers)
		}
		if target.URL != "https://example.com/blog" {
			t.Errorf("unexpected URL %q", target.URL)
		}
	})

	t.Run("explicit flags win", func(t *testing.T) {
		t.Parallel()

		cfg := newCfg()
		cfg.ChangeFreq = "hourly"
		cfg.Priority = "1.0"
		cfg.MaxPages = 5
		cfg.UserAgent = "flag-agent"
		cfg.Explicit = Explicit{ChangeFreq: true, Priority: true, Limit: true, UserAgent: true}

		target := cfg.ResolveTarget("https://example.com")
		if target.Options.ChangeFrequency != "hourly" || target.Options.Priority != "1.0" {
			t.Errorf("unexpected options %+v", target.Options)
		}
		if target.Limit != 5 || target.UserAgent != "flag-agent" {
			t.Errorf("unexpected target %+v", target)
		}
		if target.Cookie != "session=abc" {
			t.Error("cookie has no flag and must still come from the site block")
		}
	})

	t.Run("unknown site uses config values", func(t *testing.T) {
		t.Parallel()

		target := newCfg().ResolveTarget("https://other.example")
		if target.Options.ChangeFrequency != DefaultChangeFreq || target.Limit != DefaultMaxPages {
			t.Errorf("unexpected target %+v", target)
		}
		if target.Options.Priority != "0.3" {
			t.Errorf("expected file default priority, got %q", target.Options.Priority)
		}
	})

	t.Run("nil site configs", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.SiteConfigs = nil
		if target := cfg.ResolveTarget("https://example.com"); target.Limit != DefaultMaxPages {
			t.Errorf("unexpected target %+v", target)
		}
	})
}

func TestSummaryFormats(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"  ", nil},
		{"text", []string{"text"}},
		{"markdown, json", []string{"markdown", "json"}},
	}
	for _, tt := range tests {
		cfg := NewConfig()
		cfg.SummaryFormat = tt.in
		got := cfg.SummaryFormats()
		if !slices.Equal(got, tt.want) {
			t.Errorf("SummaryFormats(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
