package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nao1215/sitemapgen/internal/crawler"
	"github.com/nao1215/sitemapgen/internal/database"
	"github.com/nao1215/sitemapgen/internal/sitemap"
)

// Step names.
const (
	StepCrawl   = "crawl"
	StepBuild   = "build"
	StepArchive = "archive"
)

// Runner crawls a site. *crawler.Crawler implements it.
type Runner interface {
	Run(ctx context.Context, baseURL string) (*crawler.Result, error)
}

// Archiver records generated sitemaps. *database.ArchiveDB implements it.
type Archiver interface {
	SaveSitemap(ctx context.Context, record *database.SitemapRecord) (int64, error)
}

// CrawlStep crawls the requested site.
type CrawlStep struct {
	runner Runner
}

// NewCrawlStep creates a CrawlStep.
func NewCrawlStep(runner Runner) *CrawlStep {
	return &CrawlStep{runner: runner}
}

// Name implements Step.
func (s *CrawlStep) Name() string { return StepCrawl }

// Do implements Step.
func (s *CrawlStep) Do(ctx context.Context, job *Job) error {
	result, err := s.runner.Run(ctx, job.Request.URL)
	if err != nil {
		return fmt.Errorf("crawl %s: %w", job.Request.URL, err)
	}
	job.Crawl = result
	return nil
}

// BuildStep renders the crawled pages as a sitemap document.
type BuildStep struct{}

// NewBuildStep creates a BuildStep.
func NewBuildStep() *BuildStep {
	return &BuildStep{}
}

// Name implements Step.
func (s *BuildStep) Name() string { return StepBuild }

// Do implements Step.
func (s *BuildStep) Do(_ context.Context, job *Job) error {
	if job.Crawl == nil {
		return errors.New("build step requires a crawl result")
	}
	doc, err := sitemap.Build(job.Crawl.Pages, job.Request.Options)
	if err != nil {
		return fmt.Errorf("build sitemap: %w", err)
	}
	job.Document = doc
	return nil
}

// ArchiveStep stores the document in the sitemap archive.
// A failed save is logged and does not fail the generation: the document
// has already been built and is still returned to the caller.
type ArchiveStep struct {
	archiver Archiver
	logger   *slog.Logger
}

// NewArchiveStep creates an ArchiveStep. A nil logger means slog.Default().
func NewArchiveStep(archiver Archiver, logger *slog.Logger) *ArchiveStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &ArchiveStep{archiver: archiver, logger: logger}
}

// Name implements Step.
func (s *ArchiveStep) Name() string { return StepArchive }

// Do implements Step.
func (s *ArchiveStep) Do(ctx context.Context, job *Job) error {
	if job.Crawl == nil || job.Document == "" {
		return errors.New("archive step requires a built sitemap")
	}
	id, err := s.archiver.SaveSitemap(ctx, &database.SitemapRecord{
		URL:          job.Request.URL,
		GeneratedAt:  job.StartedAt,
		Options:      job.Request.Options,
		Pages:        job.Crawl.Pages,
		FailureCount: len(job.Crawl.Failures),
		Document:     job.Document,
	})
	if err != nil {
		s.logger.Warn("failed to archive sitemap", "url", job.Request.URL, "error", err)
		return nil
	}
	job.ArchiveID = id
	return nil
}
