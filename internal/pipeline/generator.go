package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/sitemapgen/internal/crawler"
	"github.com/nao1215/sitemapgen/internal/model"
)

// Request asks for the sitemap of one site.
type Request struct {
	// URL is the base URL. It is both the crawl seed and the same-site prefix.
	URL string

	// Options are copied into every sitemap entry.
	Options model.SitemapOptions
}

// Result is a finished generation.
type Result struct {
	URL       string
	StartedAt time.Time
	Elapsed   time.Duration
	Options   model.SitemapOptions

	// Pages are the pages listed in Document, in crawl order.
	Pages []model.Page

	// Visited lists every URL the crawl dequeued, including failures.
	Visited []string

	// Failures lists URLs that were skipped.
	Failures []crawler.Failure

	// Document is the sitemap XML.
	Document string

	// ArchiveID is the archive record ID, or zero when nothing was archived.
	ArchiveID int64

	// Err is set by BatchProcessor for targets that failed as a whole.
	Err error
}

// Summary converts r for the report writers.
func (r *Result) Summary() *model.CrawlSummary {
	s := &model.CrawlSummary{
		URL:       r.URL,
		StartedAt: r.StartedAt,
		Elapsed:   r.Elapsed,
		Options:   r.Options,
		Pages:     r.Pages,
		Visited:   len(r.Visited),
	}
	if s.Pages == nil {
		s.Pages = []model.Page{}
	}
	for _, f := range r.Failures {
		s.Failures = append(s.Failures, model.CrawlFailure{URL: f.URL, Error: f.Err.Error()})
	}
	if r.Err != nil {
		s.Error = r.Err.Error()
	}
	return s
}

// Generator produces a sitemap for one request.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Result, error)
}

// SitemapGenerator is the Generator used by the server and the CLI.
// It is safe for concurrent use when its Runner and Archiver are.
type SitemapGenerator struct {
	runner   Runner
	archiver Archiver
	defaults model.SitemapOptions
	logger   *slog.Logger
}

// GeneratorOption configures a SitemapGenerator.
type GeneratorOption func(*SitemapGenerator)

// WithArchiver records every generated document in archiver.
func WithArchiver(archiver Archiver) GeneratorOption {
	return func(g *SitemapGenerator) {
		g.archiver = archiver
	}
}

// WithDefaultOptions fills empty request options from defaults.
func WithDefaultOptions(defaults model.SitemapOptions) GeneratorOption {
	return func(g *SitemapGenerator) {
		g.defaults = defaults
	}
}

// WithGeneratorLogger sets the logger.
func WithGeneratorLogger(logger *slog.Logger) GeneratorOption {
	return func(g *SitemapGenerator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// NewGenerator creates a SitemapGenerator that crawls with runner.
func NewGenerator(runner Runner, opts ...GeneratorOption) *SitemapGenerator {
	g := &SitemapGenerator{
		runner: runner,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Pipeline returns the step sequence used for every request.
func (g *SitemapGenerator) Pipeline() *Pipeline {
	p := New(WithLogger(g.logger))
	p.AddSteps(NewCrawlStep(g.runner), NewBuildStep())
	if g.archiver != nil {
		p.AddStep(NewArchiveStep(g.archiver, g.logger))
	}
	return p
}

// Generate crawls req.URL and builds its sitemap.
// The error is non-nil only when no document could be produced.
func (g *SitemapGenerator) Generate(ctx context.Context, req Request) (*Result, error) {
	req.Options = req.Options.WithDefaults(g.defaults)

	job := NewJob(req)
	job.StartedAt = time.Now()
	if err := g.Pipeline().Execute(ctx, job); err != nil {
		return nil, err
	}

	result := &Result{
		URL:       req.URL,
		StartedAt: job.StartedAt,
		Elapsed:   time.Since(job.StartedAt),
		Options:   req.Options,
		Pages:     job.Pages(),
		Visited:   job.Crawl.Visited,
		Failures:  job.Crawl.Failures,
		Document:  job.Document,
		ArchiveID: job.ArchiveID,
	}

	g.logger.Info("sitemap generated",
		"url", req.URL,
		"pages", len(result.Pages),
		"skipped", len(result.Failures),
		"elapsed", result.Elapsed,
	)
	return result, nil
}
