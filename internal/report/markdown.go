package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/sitemapgen/internal/model"
)

// MarkdownWriter outputs summaries in GitHub-flavored Markdown.
// The output is meant for CI job summaries.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs one summary.
func (w *MarkdownWriter) Write(summary *model.CrawlSummary) (int, error) {
	md := markdown.NewMarkdown(w.output)
	md.H1("Sitemap Summary")
	md.PlainText("")
	w.writeTarget(md, summary)
	w.writeFooter(md)
	return len(md.String()), md.Build()
}

// WriteBatch outputs an overview table followed by every summary.
func (w *MarkdownWriter) WriteBatch(summaries []*model.CrawlSummary) (int, error) {
	md := markdown.NewMarkdown(w.output)
	md.H1("Sitemap Batch Summary")
	md.PlainText("")

	t := totals(summaries)
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []string{
			"`" + s.URL + "`",
			statusText(s),
			strconv.Itoa(len(s.Pages)),
			strconv.Itoa(len(s.Failures)),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Site", "Status", "Pages", "Skipped"},
		Rows:   rows,
	})
	md.PlainText("")

	switch {
	case t.succeeded == t.targets:
		md.Tip(fmt.Sprintf("All %d sitemaps generated, %d pages in total.", t.targets, t.pages))
	case t.succeeded == 0:
		md.Cautionf("No sitemap could be generated for %d target(s).", t.targets)
	default:
		md.Warningf("%d of %d sitemaps failed.", t.targets-t.succeeded, t.targets)
	}
	md.PlainText("")

	for _, s := range summaries {
		md.H2(s.URL)
		md.PlainText("")
		w.writeTarget(md, s)
	}
	w.writeFooter(md)
	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeTarget(md *markdown.Markdown, s *model.CrawlSummary) {
	rows := [][]string{
		{"Site", "`" + s.URL + "`"},
		{"Status", statusText(s)},
		{"Elapsed", s.Elapsed.Round(time.Millisecond).String()},
	}
	if s.Succeeded() {
		rows = append(rows,
			[]string{"Visited", strconv.Itoa(s.Visited)},
			[]string{"Pages", strconv.Itoa(len(s.Pages))},
			[]string{"Skipped", strconv.Itoa(len(s.Failures))},
			[]string{"Changefreq", s.Options.ChangeFrequency},
			[]string{"Priority", s.Options.Priority},
		)
		if s.OutputPath != "" {
			rows = append(rows, []string{"Output", "`" + s.OutputPath + "`"})
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")

	if !s.Succeeded() {
		return
	}

	if len(s.Failures) > 0 {
		w.writeChart(md, s)
		md.Warningf("%d page(s) could not be crawled and are missing from the sitemap.", len(s.Failures))
		md.PlainText("")

		failRows := make([][]string, len(s.Failures))
		for i, f := range s.Failures {
			failRows[i] = []string{truncateString(f.URL, 60), truncateString(f.Error, 60)}
		}
		md.Table(markdown.TableSet{
			Header: []string{"URL", "Error"},
			Rows:   failRows,
		})
		md.PlainText("")
	}

	if len(s.Pages) > 0 {
		locations := make([]string, len(s.Pages))
		for i, p := range s.Pages {
			locations[i] = p.Location + " (" + p.LastModified + ")"
		}
		md.Details("Pages ("+strconv.Itoa(len(s.Pages))+")", markdownList(locations))
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeChart(md *markdown.Markdown, s *model.CrawlSummary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Visited URLs"),
		piechart.WithShowData(true),
	)
	chart.LabelAndIntValue("Crawled", uint64(len(s.Pages)))
	chart.LabelAndIntValue("Skipped", uint64(len(s.Failures)))

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Generated by [sitemapgen](https://github.com/nao1215/sitemapgen)*")
}

func statusText(s *model.CrawlSummary) string {
	if s.Succeeded() {
		return "✅ Complete"
	}
	return "❌ Error - " + s.Error
}

func markdownList(items []string) string {
	var sb strings.Builder
	for _, item := range items {
		sb.WriteString("- ")
		sb.WriteString(item)
		sb.WriteString("\n")
	}
	return sb.String()
}
