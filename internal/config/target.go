package config

import "github.com/nao1215/sitemapgen/internal/model"

// Explicit records which settings were given on the command line.
// Explicit settings win over the configuration file.
type Explicit struct {
	ChangeFreq bool
	Priority   bool
	Limit      bool
	UserAgent  bool
}

// Target is the effective configuration for crawling one site.
type Target struct {
	URL       string
	Options   model.SitemapOptions
	Limit     int
	UserAgent string
	Cookie    string
	Headers   map[string]string
}

// ResolveTarget combines c with the configuration file's settings for rawURL.
//
// Precedence, highest first: explicit command line values, the site block,
// the file's defaults block, then the values already in c.
func (c *Config) ResolveTarget(rawURL string) Target {
	site := SiteConfig{}
	if c.SiteConfigs != nil {
		site = c.SiteConfigs.GetSiteConfig(rawURL)
	}

	t := Target{
		URL:       rawURL,
		Options:   c.SitemapOptions(),
		Limit:     c.MaxPages,
		UserAgent: c.UserAgent,
		Cookie:    site.Cookie,
		Headers:   site.Headers,
	}

	if site.ChangeFreq != "" && !c.Explicit.ChangeFreq {
		t.Options.ChangeFrequency = site.ChangeFreq
	}
	if site.Priority != "" && !c.Explicit.Priority {
		t.Options.Priority = site.Priority
	}
	if site.Limit > 0 && !c.Explicit.Limit {
		t.Limit = site.Limit
	}
	if site.UserAgent != "" && !c.Explicit.UserAgent {
		t.UserAgent = site.UserAgent
	}
	return t
}
