package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// GeneratorFactory returns the Generator for one request.
// It lets a batch use per-site settings such as crawl limits or cookies.
type GeneratorFactory func(req Request) (Generator, error)

// BatchProcessor generates sitemaps for many sites concurrently.
type BatchProcessor struct {
	factory     GeneratorFactory
	concurrency int
	logger      *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets the logger for batch-level messages.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets how many sites are crawled at once.
// Non-positive values are ignored.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// DefaultConcurrency is the number of sites crawled at once.
const DefaultConcurrency = 4

// NewBatchProcessor creates a BatchProcessor.
func NewBatchProcessor(factory GeneratorFactory, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		factory:     factory,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(bp)
	}
	if bp.logger == nil {
		bp.logger = slog.Default()
	}
	return bp
}

// ProcessBatch generates a sitemap for every request.
//
// Results are returned in request order, one per request. A target that
// fails has Result.Err set and does not stop the others. The returned error
// is ctx.Err() when the batch was cancelled.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, reqs []Request) ([]*Result, error) {
	results := make([]*Result, len(reqs))
	err := bp.ProcessBatchWithCallback(ctx, reqs, func(result *Result, index int) {
		results[index] = result
	})
	return results, err
}

// ProcessBatchWithCallback is like ProcessBatch but hands each result to
// callback as soon as it is ready. callback runs on the worker goroutine and
// receives the index of the request.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	reqs []Request,
	callback func(result *Result, index int),
) error {
	bp.logger.Info("starting batch", "targets", len(reqs), "concurrency", bp.concurrency)
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, req := range reqs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				callback(&Result{URL: req.URL, Options: req.Options, Err: err}, i)
				return err
			}
			callback(bp.generate(gctx, req), i)
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		// Targets already running when ctx was cancelled report it in Result.Err.
		err = ctx.Err()
	}
	bp.logger.Info("batch complete", "targets", len(reqs), "elapsed", time.Since(start))
	return err
}

func (bp *BatchProcessor) generate(ctx context.Context, req Request) *Result {
	started := time.Now()
	failed := func(err error) *Result {
		bp.logger.Warn("sitemap generation failed", "url", req.URL, "error", err)
		return &Result{
			URL:       req.URL,
			StartedAt: started,
			Elapsed:   time.Since(started),
			Options:   req.Options,
			Err:       err,
		}
	}

	gen, err := bp.factory(req)
	if err != nil {
		return failed(err)
	}
	result, err := gen.Generate(ctx, req)
	if err != nil {
		return failed(err)
	}
	return result
}
