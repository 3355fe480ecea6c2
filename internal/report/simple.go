package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/sitemapgen/internal/model"
)

const ruleWidth = 70

// SimpleWriter outputs plain text summaries.
type SimpleWriter struct {
	baseWriter

	// listPages prints every sitemap location, not only the counts.
	listPages bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithPageList makes the writer list every page in the sitemap.
func WithPageList(list bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.listPages = list
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs one summary.
func (w *SimpleWriter) Write(summary *model.CrawlSummary) (int, error) {
	var sb strings.Builder
	w.writeHeader(&sb, "SITEMAP SUMMARY")
	w.writeTarget(&sb, summary)
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	return io.WriteString(w.output, sb.String())
}

// WriteBatch outputs an overview followed by every summary.
func (w *SimpleWriter) WriteBatch(summaries []*model.CrawlSummary) (int, error) {
	var sb strings.Builder
	w.writeHeader(&sb, "BATCH SUMMARY")

	t := totals(summaries)
	fmt.Fprintf(&sb, "Targets:   %d (%d succeeded, %d failed)\n", t.targets, t.succeeded, t.targets-t.succeeded)
	fmt.Fprintf(&sb, "Pages:     %d\n", t.pages)
	fmt.Fprintf(&sb, "Skipped:   %d\n\n", t.failures)

	for _, s := range summaries {
		w.writeTarget(&sb, s)
	}
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	return io.WriteString(w.output, sb.String())
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n\n")
}

func (w *SimpleWriter) writeTarget(sb *strings.Builder, s *model.CrawlSummary) {
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n")
	fmt.Fprintf(sb, "Site:        %s\n", s.URL)
	if !s.StartedAt.IsZero() {
		fmt.Fprintf(sb, "Started:     %s\n", s.StartedAt.Format("2006-01-02 15:04:05 MST"))
	}
	fmt.Fprintf(sb, "Elapsed:     %s\n", s.Elapsed.Round(time.Millisecond))

	if !s.Succeeded() {
		fmt.Fprintf(sb, "Status:      ERROR - %s\n\n", s.Error)
		return
	}

	sb.WriteString("Status:      Complete\n")
	fmt.Fprintf(sb, "Visited:     %d\n", s.Visited)
	fmt.Fprintf(sb, "Pages:       %d\n", len(s.Pages))
	fmt.Fprintf(sb, "Skipped:     %d\n", len(s.Failures))
	fmt.Fprintf(sb, "Changefreq:  %s\n", s.Options.ChangeFrequency)
	fmt.Fprintf(sb, "Priority:    %s\n", s.Options.Priority)
	if s.OutputPath != "" {
		fmt.Fprintf(sb, "Output:      %s\n", s.OutputPath)
	}
	sb.WriteString("\n")

	if w.listPages && len(s.Pages) > 0 {
		sb.WriteString("PAGES\n")
		for _, p := range s.Pages {
			fmt.Fprintf(sb, "  [+] %s (%s)\n", p.Location, p.LastModified)
		}
		sb.WriteString("\n")
	}

	if len(s.Failures) > 0 {
		sb.WriteString("SKIPPED\n")
		for _, f := range s.Failures {
			fmt.Fprintf(sb, "  [!] %s\n      %s\n", f.URL, f.Error)
		}
		sb.WriteString("\n")
	}
}
