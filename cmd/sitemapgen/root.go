package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for sitemapgen.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sitemapgen",
		Short: "Crawl a website and generate its sitemap.xml",
		Long: `sitemapgen crawls a website starting at a base URL and generates a
sitemap.xml document for every page it can reach under that URL.

Use "generate" for one-off runs from the command line and "serve" to expose
the same crawler over HTTP (POST /generate-sitemap).`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(NewGenerateCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
