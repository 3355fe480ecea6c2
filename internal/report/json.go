package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/sitemapgen/internal/model"
)

// JSONWriter outputs summaries as JSON.
type JSONWriter struct {
	baseWriter

	indentPrefix string
	indentString string
	indent       bool
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables indented output.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint is WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs one summary as a JSON object.
func (w *JSONWriter) Write(summary *model.CrawlSummary) (int, error) {
	return w.writeJSON(summary)
}

// BatchReport is the JSON shape of a multi-target run.
type BatchReport struct {
	Targets   int                   `json:"targets"`
	Succeeded int                   `json:"succeeded"`
	Pages     int                   `json:"pages"`
	Failures  int                   `json:"failures"`
	Results   []*model.CrawlSummary `json:"results"`
}

// WriteBatch outputs the summaries wrapped in a BatchReport.
func (w *JSONWriter) WriteBatch(summaries []*model.CrawlSummary) (int, error) {
	t := totals(summaries)
	if summaries == nil {
		summaries = []*model.CrawlSummary{}
	}
	return w.writeJSON(&BatchReport{
		Targets:   t.targets,
		Succeeded: t.succeeded,
		Pages:     t.pages,
		Failures:  t.failures,
		Results:   summaries,
	})
}

func (w *JSONWriter) writeJSON(v any) (int, error) {
	var (
		data []byte
		err  error
	)
	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}
	data = append(data, '\n')
	return w.output.Write(data)
}
