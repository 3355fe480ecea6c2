package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/nao1215/sitemapgen/internal/config"
	"github.com/nao1215/sitemapgen/internal/model"
	"github.com/nao1215/sitemapgen/internal/pipeline"
	"github.com/nao1215/sitemapgen/internal/report"
	"github.com/spf13/cobra"
)

// errTargetsFailed is returned when at least one site of a batch failed.
var errTargetsFailed = errors.New("sitemap generation failed")

// NewGenerateCmd creates the generate command.
func NewGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate URL [URL...]",
		Short: "Crawl one or more sites and write their sitemaps",
		Long: `Generate crawls each base URL breadth-first and writes a sitemap.xml
document listing every page that was fetched successfully.

Only links that start with the base URL are followed. Links containing a
fragment (#) or a mailto: reference are ignored. Pages that fail to load
are skipped and reported in the summary.

With a single URL the sitemap is written to stdout, or to the file given
with -o. With several URLs the sites are crawled concurrently and one file
per site is written into the directory given with -o (default: the current
directory).

Examples:
  # Print the sitemap of a site
  sitemapgen generate https://example.com

  # Save it and print a summary
  sitemapgen generate -o sitemap.xml -s text https://example.com

  # Print both a text and a JSON summary
  sitemapgen generate -o sitemap.xml -s text,json https://example.com

  # Visit at most 500 URLs and mark every page as updated daily
  sitemapgen generate -l 500 -f daily -p 0.8 https://example.com

  # Crawl several sites, three at a time, into ./sitemaps
  sitemapgen generate -b 3 -o sitemaps https://a.example https://b.example

  # Keep a copy of every generated sitemap (see "sitemapgen history")
  sitemapgen generate --archive https://example.com`,
		Args: cobra.ArbitraryArgs,
		RunE: runGenerateCmd,
	}

	addCrawlFlags(cmd)
	cmd.Flags().StringP("output", "o", "",
		"Output file (single URL) or directory (several URLs)")
	cmd.Flags().IntP("batch", "b", config.DefaultConcurrency,
		"Number of sites crawled concurrently")
	cmd.Flags().StringP("summary", "s", "",
		"Write crawl summaries to stderr: text, markdown or json (comma-separated for several)")

	return cmd
}

// runGenerateCmd executes the generate command.
func runGenerateCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildGenerateConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if err := cfg.ValidateTargets(); err != nil {
		return err
	}

	logger := setupLogger(cmd, cfg.Verbose)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runGenerate(ctx, cfg, cmd.OutOrStdout(), cmd.ErrOrStderr(), logger)
}

// buildGenerateConfig creates a Config from the generate command's flags.
func buildGenerateConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg, err := buildCrawlConfig(cmd)
	if err != nil {
		return nil, err
	}
	if cfg.OutputPath, err = cmd.Flags().GetString("output"); err != nil {
		return nil, err
	}
	if cfg.Concurrency, err = cmd.Flags().GetInt("batch"); err != nil {
		return nil, err
	}
	if cfg.SummaryFormat, err = cmd.Flags().GetString("summary"); err != nil {
		return nil, err
	}
	cfg.Targets = args
	return cfg, nil
}

// runGenerate generates the sitemap of every target in cfg.
func runGenerate(ctx context.Context, cfg *config.Config, stdout, stderr io.Writer, logger *slog.Logger) error {
	db, closeDB, err := openArchive(cfg, logger)
	if err != nil {
		return err
	}
	defer closeDB()

	var archiver pipeline.Archiver
	if db != nil {
		archiver = db
	}
	gen, err := newSiteGenerator(cfg, archiver, logger)
	if err != nil {
		return err
	}
	defer gen.Close()

	reqs := make([]pipeline.Request, 0, len(cfg.Targets))
	for _, target := range cfg.Targets {
		reqs = append(reqs, pipeline.Request{
			URL:     target,
			Options: cfg.ResolveTarget(target).Options,
		})
	}

	if len(reqs) == 1 {
		return generateOne(ctx, cfg, gen, reqs[0], stdout, stderr)
	}
	return generateBatch(ctx, cfg, gen, reqs, stderr, logger)
}

// generateOne writes a single sitemap to stdout or cfg.OutputPath.
func generateOne(ctx context.Context, cfg *config.Config, gen pipeline.Generator, req pipeline.Request, stdout, stderr io.Writer) error {
	result, err := gen.Generate(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to generate sitemap for %s: %w", req.URL, err)
	}

	summary := result.Summary()
	if cfg.OutputPath == "" {
		if _, err := io.WriteString(stdout, result.Document); err != nil {
			return err
		}
	} else {
		if err := writeSitemapFile(cfg.OutputPath, result.Document); err != nil {
			return err
		}
		summary.OutputPath = cfg.OutputPath
	}

	return writeSummary(cfg.SummaryFormats(), stderr, func(w report.Writer) error {
		_, err := w.Write(summary)
		return err
	})
}

// generateBatch crawls every request concurrently and writes one file per site.
func generateBatch(ctx context.Context, cfg *config.Config, gen *siteGenerator, reqs []pipeline.Request, stderr io.Writer, logger *slog.Logger) error {
	dir := cfg.OutputPath
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	targets := make([]string, 0, len(reqs))
	for _, req := range reqs {
		targets = append(targets, req.URL)
	}
	names := outputFileNames(targets)

	bp := pipeline.NewBatchProcessor(gen.forRequest,
		pipeline.WithConcurrency(cfg.Concurrency),
		pipeline.WithBatchLogger(logger),
	)
	results, batchErr := bp.ProcessBatch(ctx, reqs)

	summaries := make([]*model.CrawlSummary, 0, len(results))
	failed := 0
	for i, result := range results {
		if result == nil {
			continue
		}
		summary := result.Summary()
		if result.Err == nil {
			path := filepath.Join(dir, names[i])
			if err := writeSitemapFile(path, result.Document); err != nil {
				summary.Error = err.Error()
			} else {
				summary.OutputPath = path
			}
		}
		if !summary.Succeeded() {
			failed++
		}
		summaries = append(summaries, summary)
	}

	if err := writeSummary(cfg.SummaryFormats(), stderr, func(w report.Writer) error {
		_, err := w.WriteBatch(summaries)
		return err
	}); err != nil {
		return err
	}

	if batchErr != nil {
		return batchErr
	}
	if failed > 0 {
		return fmt.Errorf("%w for %d of %d targets", errTargetsFailed, failed, len(reqs))
	}
	return nil
}

// writeSummary writes a summary in every format to w.
// No formats writes nothing.
func writeSummary(formats []string, w io.Writer, write func(report.Writer) error) error {
	if len(formats) == 0 {
		return nil
	}
	writers := make([]report.Writer, 0, len(formats))
	for _, format := range formats {
		writer, err := report.NewWriter(format, w)
		if err != nil {
			return err
		}
		writers = append(writers, writer)
	}

	var writer report.Writer = writers[0]
	if len(writers) > 1 {
		writer = report.NewMultiWriter(writers...)
	}
	if err := write(writer); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}

// writeSitemapFile writes document to path, creating parent directories.
func writeSitemapFile(path, document string) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	//nolint:gosec // sitemaps are meant to be published
	if err := os.WriteFile(path, []byte(document), 0644); err != nil {
		return fmt.Errorf("failed to write sitemap: %w", err)
	}
	return nil
}

// outputFileNames returns a distinct file name for each target, in order.
// "https://example.com/blog/" becomes "example.com_blog.xml".
func outputFileNames(targets []string) []string {
	names := make([]string, len(targets))
	used := make(map[string]int, len(targets))
	for i, target := range targets {
		base := fileStem(target)
		used[base]++
		if n := used[base]; n > 1 {
			names[i] = base + "-" + strconv.Itoa(n) + ".xml"
			continue
		}
		names[i] = base + ".xml"
	}
	return names
}

// fileStem turns a base URL into a file name without extension.
func fileStem(target string) string {
	stem := target
	if u, err := url.Parse(target); err == nil && u.Host != "" {
		stem = u.Host + u.Path
	}
	stem = strings.Trim(stem, "/")

	var sb strings.Builder
	for _, r := range stem {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-':
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}
	if sb.Len() == 0 {
		return "sitemap"
	}
	return sb.String()
}
