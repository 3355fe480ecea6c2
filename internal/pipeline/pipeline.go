package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/sitemapgen/internal/crawler"
	"github.com/nao1215/sitemapgen/internal/model"
)

// Job carries one generation through the pipeline.
// Each step reads what earlier steps produced and adds its own output.
type Job struct {
	// Request is the input of the generation.
	Request Request

	// StartedAt is set by Execute.
	StartedAt time.Time

	// Crawl is filled by CrawlStep.
	Crawl *crawler.Result

	// Document is filled by BuildStep.
	Document string

	// ArchiveID is filled by ArchiveStep.
	ArchiveID int64
}

// NewJob creates a Job for req.
func NewJob(req Request) *Job {
	return &Job{Request: req}
}

// Step is one stage of a generation.
type Step interface {
	// Do runs the step. An error aborts the pipeline.
	Do(ctx context.Context, job *Job) error

	// Name returns the step's name for logging.
	Name() string
}

// Pipeline runs steps in order.
type Pipeline struct {
	steps  []Step
	logger *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger used for step tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates an empty Pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{steps: make([]Step, 0)}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddStep appends a step to the pipeline.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs every step against job and stops at the first error.
// Cancellation is checked between steps; steps handle it within themselves.
func (p *Pipeline) Execute(ctx context.Context, job *Job) error {
	if job.StartedAt.IsZero() {
		job.StartedAt = time.Now()
	}

	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"url", job.Request.URL,
				"reason", err,
			)
			return err
		}

		p.logger.Debug("executing step", "step", step.Name(), "url", job.Request.URL)

		if err := step.Do(ctx, job); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"url", job.Request.URL,
				"error", err,
			)
			return err
		}
	}
	return nil
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}

// Pages returns the crawled pages, or an empty slice before CrawlStep ran.
func (j *Job) Pages() []model.Page {
	if j.Crawl == nil {
		return []model.Page{}
	}
	return j.Crawl.Pages
}
