package model

// Change frequency values defined by the sitemap protocol.
// They are provided for callers; SitemapOptions does not validate against them.
const (
	ChangeFreqAlways  = "always"
	ChangeFreqHourly  = "hourly"
	ChangeFreqDaily   = "daily"
	ChangeFreqWeekly  = "weekly"
	ChangeFreqMonthly = "monthly"
	ChangeFreqYearly  = "yearly"
	ChangeFreqNever   = "never"
)

// SitemapOptions holds the values copied into every <url> entry of a
// generated sitemap.
//
// Design decision: Values are trusted and echoed verbatim. A caller that
// sends "sometimes" as a change frequency gets "sometimes" in the output;
// validating against the protocol enumeration is left to the caller.
type SitemapOptions struct {
	// ChangeFrequency is written to <changefreq>.
	ChangeFrequency string `json:"changeFreq" yaml:"changeFreq"`

	// Priority is written to <priority>. It is a string so that values
	// like "0.50" keep their original formatting.
	Priority string `json:"priority" yaml:"priority"`
}

// WithDefaults returns a copy of o where empty fields are taken from defaults.
func (o SitemapOptions) WithDefaults(defaults SitemapOptions) SitemapOptions {
	if o.ChangeFrequency == "" {
		o.ChangeFrequency = defaults.ChangeFrequency
	}
	if o.Priority == "" {
		o.Priority = defaults.Priority
	}
	return o
}
