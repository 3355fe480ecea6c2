package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/nao1215/sitemapgen/internal/config"
	"github.com/nao1215/sitemapgen/internal/database"
	"github.com/spf13/cobra"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [URL]",
		Short: "List sitemaps recorded in the archive",
		Long: `History shows sitemaps recorded with "generate --archive" or
"serve --archive", newest first.

Examples:
  # List every archived sitemap
  sitemapgen history

  # List the sitemaps of one site
  sitemapgen history https://example.com

  # Print an archived document
  sitemapgen history --show 3

  # Print the newest archived document of a site
  sitemapgen history --latest https://example.com

  # List the archived sites
  sitemapgen history --sites`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().Int64P("show", "i", 0,
		"Print the archived sitemap with this ID")
	cmd.Flags().Bool("latest", false,
		"Print the newest archived sitemap of URL")
	cmd.Flags().BoolP("json", "j", false,
		"Output in JSON format")
	cmd.Flags().BoolP("sites", "L", false,
		"List the archived base URLs")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory holding the archive database")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	showID, err := flags.GetInt64("show")
	if err != nil {
		return err
	}
	latest, err := flags.GetBool("latest")
	if err != nil {
		return err
	}
	jsonOutput, err := flags.GetBool("json")
	if err != nil {
		return err
	}
	listSites, err := flags.GetBool("sites")
	if err != nil {
		return err
	}
	dbDir, err := flags.GetString("db-dir")
	if err != nil {
		return err
	}

	var baseURL string
	if len(args) == 1 {
		baseURL = args[0]
		if err := config.ValidateURL(baseURL); err != nil {
			return err
		}
	}
	if latest && baseURL == "" {
		return errors.New("--latest requires a URL")
	}

	out := cmd.OutOrStdout()
	db, err := database.Open(dbDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if errors.Is(err, database.ErrDatabaseNotFound) {
		fmt.Fprintln(out, "No archived sitemaps found.")
		fmt.Fprintln(out, "\nUse 'sitemapgen generate --archive <url>' to record one.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	switch {
	case showID > 0:
		record, err := db.GetSitemap(ctx, showID)
		if errors.Is(err, database.ErrNotFound) {
			return fmt.Errorf("sitemap %d not found (use 'sitemapgen history' to see available IDs)", showID)
		}
		return showSitemap(record, err, jsonOutput, out)
	case latest:
		record, err := db.LatestSitemap(ctx, baseURL)
		if errors.Is(err, database.ErrNotFound) {
			return fmt.Errorf("no archived sitemap for %s", baseURL)
		}
		return showSitemap(record, err, jsonOutput, out)
	case listSites:
		return listArchivedSites(ctx, db, jsonOutput, out)
	default:
		return listHistory(ctx, db, baseURL, jsonOutput, out)
	}
}

// showSitemap prints one archived document, or the whole record with --json.
// err is the error of the lookup that produced record.
func showSitemap(record *database.SitemapRecord, err error, jsonOutput bool, out io.Writer) error {
	if err != nil {
		return fmt.Errorf("failed to read sitemap: %w", err)
	}

	if jsonOutput {
		return writeJSON(out, record)
	}
	_, err = io.WriteString(out, record.Document)
	return err
}

// listArchivedSites prints every base URL that has an archived sitemap.
func listArchivedSites(ctx context.Context, db *database.ArchiveDB, jsonOutput bool, out io.Writer) error {
	sites, err := db.ListSites(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sites: %w", err)
	}
	if jsonOutput {
		return writeJSON(out, sites)
	}

	if len(sites) == 0 {
		fmt.Fprintln(out, "No archived sitemaps found.")
		return nil
	}
	fmt.Fprintf(out, "Archived sites (%d):\n\n", len(sites))
	for _, site := range sites {
		fmt.Fprintf(out, "  %s\n", site)
	}
	return nil
}

// listHistory prints archived sitemaps, newest first.
func listHistory(ctx context.Context, db *database.ArchiveDB, baseURL string, jsonOutput bool, out io.Writer) error {
	list, err := db.ListSitemaps(ctx, baseURL)
	if err != nil {
		return fmt.Errorf("failed to list sitemaps: %w", err)
	}
	if jsonOutput {
		return writeJSON(out, list)
	}

	if len(list) == 0 {
		if baseURL != "" {
			fmt.Fprintf(out, "No archived sitemaps found for %s\n", baseURL)
			return nil
		}
		fmt.Fprintln(out, "No archived sitemaps found.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tGENERATED\tURL\tPAGES\tSKIPPED\tCHANGEFREQ\tPRIORITY")
	for _, meta := range list {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%s\t%s\n",
			meta.ID,
			meta.GeneratedAt.Local().Format(time.DateTime),
			meta.URL,
			meta.PageCount,
			meta.FailureCount,
			meta.Options.ChangeFrequency,
			meta.Options.Priority,
		)
	}
	return tw.Flush()
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
