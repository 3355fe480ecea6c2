package main

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/nao1215/sitemapgen/internal/config"
	"github.com/nao1215/sitemapgen/internal/crawler"
	"github.com/nao1215/sitemapgen/internal/pipeline"
)

// siteGenerator builds a dedicated crawler for every request so that the
// per-site settings of the configuration file (limit, cookie, headers,
// user agent) apply to it. All crawlers share one transport and therefore
// one connection pool. It implements pipeline.Generator.
type siteGenerator struct {
	cfg       *config.Config
	archiver  pipeline.Archiver
	logger    *slog.Logger
	transport *http.Transport
}

// newSiteGenerator fails only when cfg.ProxyURL is invalid.
func newSiteGenerator(cfg *config.Config, archiver pipeline.Archiver, logger *slog.Logger) (*siteGenerator, error) {
	transport, err := crawler.NewTransport(cfg.ProxyURL)
	if err != nil {
		return nil, err
	}
	return &siteGenerator{
		cfg:       cfg,
		archiver:  archiver,
		logger:    logger,
		transport: transport,
	}, nil
}

// Close releases idle connections of the shared transport.
func (g *siteGenerator) Close() {
	g.transport.CloseIdleConnections()
}

// Generate implements pipeline.Generator.
func (g *siteGenerator) Generate(ctx context.Context, req pipeline.Request) (*pipeline.Result, error) {
	gen, err := g.forRequest(req)
	if err != nil {
		return nil, err
	}
	return gen.Generate(ctx, req)
}

// forRequest is a pipeline.GeneratorFactory.
func (g *siteGenerator) forRequest(req pipeline.Request) (pipeline.Generator, error) {
	target := g.cfg.ResolveTarget(req.URL)

	fetcher, err := crawler.NewHTTPFetcher(crawler.FetcherOptions{
		Timeout:     g.cfg.Timeout,
		UserAgent:   target.UserAgent,
		Headers:     target.Headers,
		Cookie:      target.Cookie,
		MaxBodySize: g.cfg.MaxBodySize,
		Transport:   g.transport,
	})
	if err != nil {
		return nil, err
	}

	c := crawler.New(fetcher, nil,
		crawler.WithLimit(target.Limit),
		crawler.WithFetchTimeout(g.cfg.Timeout),
		crawler.WithLogger(g.logger),
	)

	opts := []pipeline.GeneratorOption{
		pipeline.WithDefaultOptions(target.Options),
		pipeline.WithGeneratorLogger(g.logger),
	}
	if g.archiver != nil {
		opts = append(opts, pipeline.WithArchiver(g.archiver))
	}
	return pipeline.NewGenerator(c, opts...), nil
}
