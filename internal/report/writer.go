package report

import (
	"errors"
	"fmt"
	"io"

	"github.com/nao1215/sitemapgen/internal/model"
)

// Output formats accepted by NewWriter.
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
)

// ErrUnknownFormat is returned by NewWriter for an unsupported format.
var ErrUnknownFormat = errors.New("unknown summary format")

// Writer writes crawl summaries.
type Writer interface {
	// Write outputs the summary of one target.
	// It returns the number of bytes written.
	Write(summary *model.CrawlSummary) (int, error)

	// WriteBatch outputs the summaries of a multi-target run.
	WriteBatch(summaries []*model.CrawlSummary) (int, error)
}

// NewWriter returns the Writer for format.
func NewWriter(format string, output io.Writer) (Writer, error) {
	switch format {
	case FormatText:
		return NewSimpleWriter(output), nil
	case FormatMarkdown:
		return NewMarkdownWriter(output), nil
	case FormatJSON:
		return NewJSONWriter(output, WithPrettyPrint()), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// MultiWriter writes to multiple Writers.
// It stops at the first error.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the summary to every Writer.
func (m *MultiWriter) Write(summary *model.CrawlSummary) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(summary)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteBatch outputs the summaries to every Writer.
func (m *MultiWriter) WriteBatch(summaries []*model.CrawlSummary) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteBatch(summaries)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// batchTotals aggregates a batch for the overview sections.
type batchTotals struct {
	targets   int
	succeeded int
	pages     int
	failures  int
}

func totals(summaries []*model.CrawlSummary) batchTotals {
	t := batchTotals{targets: len(summaries)}
	for _, s := range summaries {
		if s.Succeeded() {
			t.succeeded++
		}
		t.pages += len(s.Pages)
		t.failures += len(s.Failures)
	}
	return t
}

// truncateString truncates a string to maxLen bytes with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
