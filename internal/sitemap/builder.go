package sitemap

import (
	"encoding/xml"
	"io"
	"strings"

	"github.com/nao1215/sitemapgen/internal/model"
)

const (
	// Namespace is the sitemaps.org schema namespace used on <urlset>.
	Namespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

	// ContentType is the media type used when serving a sitemap over HTTP.
	ContentType = "application/xml"

	// xmlDeclaration is the document prolog.
	xmlDeclaration = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"
)

// Build returns the sitemap document for pages.
// Each page yields one <url> entry carrying the page's location and
// last-modified date together with the change frequency and priority
// from opts.
func Build(pages []model.Page, opts model.SitemapOptions) (string, error) {
	var sb strings.Builder
	if err := Write(&sb, pages, opts); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Write streams the sitemap document for pages to w.
// It returns the first write error encountered.
func Write(w io.Writer, pages []model.Page, opts model.SitemapOptions) error {
	ew := &errWriter{w: w}

	ew.writeString(xmlDeclaration)
	ew.writeString(`<urlset xmlns="` + Namespace + `">` + "\n")
	for _, page := range pages {
		ew.writeString("  <url>\n")
		ew.element("loc", page.Location)
		ew.element("lastmod", page.LastModified)
		ew.element("changefreq", opts.ChangeFrequency)
		ew.element("priority", opts.Priority)
		ew.writeString("  </url>\n")
	}
	ew.writeString("</urlset>\n")

	return ew.err
}

// errWriter remembers the first error so Write can stay linear.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) writeString(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = io.WriteString(ew.w, s)
}

// element writes "    <name>value</name>\n" with value escaped.
func (ew *errWriter) element(name, value string) {
	ew.writeString("    <" + name + ">")
	if ew.err == nil {
		ew.err = xml.EscapeText(ew.w, []byte(value))
	}
	ew.writeString("</" + name + ">\n")
}
