package config

import (
	"net/url"
	"strings"
)

// SiteConfig holds settings for a single site.
// Zero values mean "not set" and fall back to the defaults.
type SiteConfig struct {
	// ChangeFreq overrides the <changefreq> value for this site.
	ChangeFreq string `yaml:"changeFreq,omitempty"`

	// Priority overrides the <priority> value for this site.
	Priority string `yaml:"priority,omitempty"`

	// Limit overrides the maximum number of pages visited.
	Limit int `yaml:"limit,omitempty"`

	// Cookie is an HTTP cookie sent with every request to this site.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are custom HTTP headers sent with every request to this site.
	Headers map[string]string `yaml:"headers,omitempty"`

	// UserAgent overrides the User-Agent header for this site.
	UserAgent string `yaml:"userAgent,omitempty"`
}

// File represents the structure of the .sitemapgen configuration file.
type File struct {
	// Defaults applies to every site unless overridden.
	Defaults SiteConfig `yaml:"defaults,omitempty"`

	// Sites maps a base URL or a host name to its settings.
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`
}

// NewFile returns an empty configuration file.
func NewFile() *File {
	return &File{Sites: make(map[string]SiteConfig)}
}

// GetSiteConfig returns the settings for target merged over the defaults.
// target is looked up first verbatim, then by host name.
func (cf *File) GetSiteConfig(target string) SiteConfig {
	site, ok := cf.lookup(target)
	if !ok {
		return cf.Defaults
	}
	return mergeSiteConfig(cf.Defaults, site)
}

// lookup finds the site block for target.
func (cf *File) lookup(target string) (SiteConfig, bool) {
	if site, ok := cf.Sites[target]; ok {
		return site, true
	}
	if site, ok := cf.Sites[strings.TrimSuffix(target, "/")]; ok {
		return site, true
	}

	u, err := url.Parse(target)
	if err != nil || u.Host == "" {
		return SiteConfig{}, false
	}
	for _, key := range []string{u.Host, u.Hostname()} {
		if site, ok := cf.Sites[strings.ToLower(key)]; ok {
			return site, true
		}
	}
	return SiteConfig{}, false
}

// mergeSiteConfig overlays the non-zero fields of override on defaults.
func mergeSiteConfig(defaults, override SiteConfig) SiteConfig {
	result := defaults

	if override.ChangeFreq != "" {
		result.ChangeFreq = override.ChangeFreq
	}
	if override.Priority != "" {
		result.Priority = override.Priority
	}
	if override.Limit > 0 {
		result.Limit = override.Limit
	}
	if override.Cookie != "" {
		result.Cookie = override.Cookie
	}
	if override.UserAgent != "" {
		result.UserAgent = override.UserAgent
	}
	if len(override.Headers) > 0 {
		headers := make(map[string]string, len(defaults.Headers)+len(override.Headers))
		for k, v := range defaults.Headers {
			headers[k] = v
		}
		for k, v := range override.Headers {
			headers[k] = v
		}
		result.Headers = headers
	}

	return result
}
