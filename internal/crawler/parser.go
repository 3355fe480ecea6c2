package crawler

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// anchorSelector matches every element that can be followed as a hyperlink.
const anchorSelector = "a[href]"

// Parser extracts hyperlinks from HTML pages.
//
// Design decision: We parse with golang.org/x/net/html and query the tree
// with goquery rather than scanning with regular expressions because:
//  1. The HTML5 parser copes with the malformed markup common on the web
//  2. A CSS selector states exactly which attributes count as links
type Parser struct{}

// NewParser creates a Parser.
func NewParser() *Parser {
	return &Parser{}
}

// Extract returns the absolute target of every <a href> in body, in document
// order. Relative references are resolved against baseURL. Hrefs that are
// not valid URL references are skipped.
//
// The returned links are not filtered: fragments, mailto: links and links to
// other sites are all included. Filtering is the Crawler's decision.
func (p *Parser) Extract(body []byte, baseURL string) ([]string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	root, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	links := make([]string, 0)
	goquery.NewDocumentFromNode(root).Find(anchorSelector).Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		if resolved, ok := resolveReference(base, href); ok {
			links = append(links, resolved)
		}
	})

	return links, nil
}

// resolveReference resolves href against base.
// It returns false when href cannot be parsed as a URL reference.
func resolveReference(base *url.URL, href string) (string, bool) {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", false
	}
	return base.ResolveReference(ref).String(), true
}
