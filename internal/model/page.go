package model

import "time"

// DateLayout is the calendar date format used for lastmod values (W3C Datetime, date only).
const DateLayout = "2006-01-02"

// Page represents a single page discovered and successfully fetched
// during a crawl. A Page is created once per unique location and is not
// modified afterwards.
type Page struct {
	// Location is the absolute URL of the page exactly as it was dequeued.
	Location string `json:"loc"`

	// LastModified is the page's last modification date in YYYY-MM-DD form.
	// It comes from the Last-Modified response header when present,
	// otherwise from the crawl date.
	LastModified string `json:"lastmod"`
}

// NewPage creates a Page whose LastModified is derived from modified.
func NewPage(location string, modified time.Time) Page {
	return Page{
		Location:     location,
		LastModified: FormatDate(modified),
	}
}

// FormatDate renders t as a UTC calendar date (YYYY-MM-DD).
//
// Dates are normalized to UTC so that a Last-Modified header such as
// "Mon, 01 Jan 2024 23:30:00 GMT" always maps to the same day no matter
// which time zone the crawler runs in.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}
