package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/sitemapgen/internal/config"
	"github.com/nao1215/sitemapgen/internal/server"
	"github.com/spf13/cobra"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve sitemap generation over HTTP",
		Long: `Serve starts an HTTP server that generates sitemaps on request.

Endpoints:
  POST /generate-sitemap   body: {"url": "...", "changeFreq": "...", "priority": "..."}
                           returns the sitemap as application/xml
  GET  /health             returns {"status":"ok"}
  GET  /sitemaps           archived sitemaps (with --archive), filter with ?url=
  GET  /sitemaps/:id       one archived sitemap document (with --archive)

Cross-origin requests are allowed from any origin. The crawl flags and the
configuration file set the defaults for changeFreq and priority. A request
that omits either field, or sends it as an empty string, gets the default;
any other value is echoed into the sitemap verbatim.

Examples:
  # Listen on the default address (:3000)
  sitemapgen serve

  # Listen on localhost only and archive every generated sitemap
  sitemapgen serve -a 127.0.0.1:8080 --archive`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	addCrawlFlags(cmd)
	cmd.Flags().StringP("address", "a", config.DefaultListenAddress,
		"Address to listen on")

	return cmd
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildCrawlConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.ListenAddress, err = cmd.Flags().GetString("address"); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd, cfg.Verbose)
	if !cfg.Verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, closeDB, err := openArchive(cfg, logger)
	if err != nil {
		return err
	}
	defer closeDB()

	gen, err := newSiteGenerator(cfg, nil, logger)
	if err != nil {
		return err
	}
	defer gen.Close()

	opts := []server.Option{server.WithLogger(logger)}
	if db != nil {
		gen.archiver = db
		opts = append(opts, server.WithArchive(db))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Listening on %s\n", cfg.ListenAddress)
	return server.New(gen, opts...).Run(ctx, cfg.ListenAddress)
}
