package main

import (
	"fmt"
	"log/slog"

	"github.com/nao1215/sitemapgen/internal/config"
	"github.com/nao1215/sitemapgen/internal/crawler"
	"github.com/nao1215/sitemapgen/internal/database"
	"github.com/nao1215/sitemapgen/internal/log"
	"github.com/spf13/cobra"
)

// addCrawlFlags registers the flags shared by generate and serve.
func addCrawlFlags(cmd *cobra.Command) {
	cmd.Flags().IntP("limit", "l", config.DefaultMaxPages,
		"Maximum number of URLs visited per site")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each page fetch")
	cmd.Flags().StringP("changefreq", "f", config.DefaultChangeFreq,
		"Value written to <changefreq>")
	cmd.Flags().StringP("priority", "p", config.DefaultPriority,
		"Value written to <priority>")
	cmd.Flags().String("proxy", "",
		"Route requests through a proxy (http, https, socks5 or socks5h URL)")
	cmd.Flags().String("user-agent", crawler.DefaultUserAgent,
		"User-Agent header sent with every request")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .sitemapgen in current or home directory)")
	cmd.Flags().Bool("archive", false,
		"Record generated sitemaps in the local archive")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory holding the archive database")
}

// buildCrawlConfig creates a Config from the flags registered by addCrawlFlags
// and loads the configuration file.
func buildCrawlConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	if cfg.MaxPages, err = flags.GetInt("limit"); err != nil {
		return nil, err
	}
	if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
		return nil, err
	}
	if cfg.ChangeFreq, err = flags.GetString("changefreq"); err != nil {
		return nil, err
	}
	if cfg.Priority, err = flags.GetString("priority"); err != nil {
		return nil, err
	}
	if cfg.ProxyURL, err = flags.GetString("proxy"); err != nil {
		return nil, err
	}
	if cfg.UserAgent, err = flags.GetString("user-agent"); err != nil {
		return nil, err
	}
	if cfg.ConfigFilePath, err = flags.GetString("config"); err != nil {
		return nil, err
	}
	if cfg.Archive, err = flags.GetBool("archive"); err != nil {
		return nil, err
	}
	if cfg.DBDir, err = flags.GetString("db-dir"); err != nil {
		return nil, err
	}
	cfg.Verbose = getVerboseFlag(cmd)

	cfg.Explicit = config.Explicit{
		ChangeFreq: flags.Changed("changefreq"),
		Priority:   flags.Changed("priority"),
		Limit:      flags.Changed("limit"),
		UserAgent:  flags.Changed("user-agent"),
	}

	if err := loadSiteConfigs(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadSiteConfigs reads the configuration file into cfg.SiteConfigs.
// A missing file is an error only when its path was given explicitly.
func loadSiteConfigs(cfg *config.Config) error {
	path := config.FindConfigFile(cfg.ConfigFilePath)
	if path == "" {
		if cfg.ConfigFilePath != "" {
			return fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
		}
		cfg.SiteConfigs = config.NewFile()
		return nil
	}

	file, err := config.LoadConfigFile(path)
	if err != nil {
		return fmt.Errorf("failed to load config file %s: %w", path, err)
	}
	cfg.SiteConfigs = file
	return nil
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// setupLogger installs the redacting logger as the slog default.
func setupLogger(cmd *cobra.Command, verbose bool) *slog.Logger {
	logger := log.NewSecureLogger(cmd.ErrOrStderr(), verbose)
	slog.SetDefault(logger)
	return logger
}

// openArchive opens the archive database when cfg.Archive is set.
// The returned close function is never nil.
func openArchive(cfg *config.Config, logger *slog.Logger) (*database.ArchiveDB, func(), error) {
	if !cfg.Archive {
		return nil, func() {}, nil
	}
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open archive: %w", err)
	}
	logger.Debug("archive opened", "path", db.Path())
	return db, func() {
		if err := db.Close(); err != nil {
			logger.Warn("failed to close archive", "error", err)
		}
	}, nil
}
