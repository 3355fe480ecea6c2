package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/sitemapgen/internal/model"
)

// FileName is the name of the database file inside the data directory.
const FileName = "sitemapgen.db"

// timestampLayout is fixed width so generated_at sorts chronologically as text.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

var (
	// ErrNotFound is returned when a requested sitemap does not exist.
	ErrNotFound = errors.New("sitemap not found")

	// ErrDatabaseNotFound is returned by Open when the database file is
	// missing and CreateIfNotExists is false.
	ErrDatabaseNotFound = errors.New("archive database not found")
)

// ArchiveDB stores generated sitemap documents.
type ArchiveDB struct {
	db     *sql.DB
	dbPath string

	// now stamps new records. Tests replace it to control ordering.
	now func() time.Time
}

// Options configures ArchiveDB behavior.
type Options struct {
	// CreateIfNotExists creates the directory and database file if missing.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the archive in dbDir.
func Open(dbDir string, opts Options) (*ArchiveDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	mode := "rw"
	if opts.CreateIfNotExists {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		mode = "rwc"
	} else if _, err := os.Stat(dbPath); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s", ErrDatabaseNotFound, dbPath)
		}
		return nil, fmt.Errorf("failed to check database path: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?mode="+mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite has a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	adb := &ArchiveDB{
		db:     db,
		dbPath: dbPath,
		now:    time.Now,
	}

	ctx := context.Background()
	if opts.EnableWAL {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := adb.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return adb, nil
}

// Path returns the database file path.
func (adb *ArchiveDB) Path() string {
	return adb.dbPath
}

// Close closes the database connection.
func (adb *ArchiveDB) Close() error {
	return adb.db.Close()
}

func (adb *ArchiveDB) createTables(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS sitemaps (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		base_url TEXT NOT NULL,
		generated_at TEXT NOT NULL,
		change_freq TEXT NOT NULL,
		priority TEXT NOT NULL,
		page_count INTEGER NOT NULL,
		failure_count INTEGER NOT NULL DEFAULT 0,
		pages_json TEXT NOT NULL,
		document TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sitemaps_url ON sitemaps(base_url);
	CREATE INDEX IF NOT EXISTS idx_sitemaps_generated ON sitemaps(generated_at);
	`
	_, err := adb.db.ExecContext(ctx, schema)
	return err
}

// SitemapRecord is one archived sitemap.
type SitemapRecord struct {
	ID           int64                `json:"id"`
	URL          string               `json:"url"`
	GeneratedAt  time.Time            `json:"generatedAt"`
	Options      model.SitemapOptions `json:"options"`
	Pages        []model.Page         `json:"pages"`
	FailureCount int                  `json:"failureCount"`
	Document     string               `json:"document"`
}

// SitemapMetadata describes an archived sitemap without its document.
type SitemapMetadata struct {
	ID           int64                `json:"id"`
	URL          string               `json:"url"`
	GeneratedAt  time.Time            `json:"generatedAt"`
	Options      model.SitemapOptions `json:"options"`
	PageCount    int                  `json:"pageCount"`
	FailureCount int                  `json:"failureCount"`
}

// SaveSitemap stores record and returns its ID.
// A zero GeneratedAt is replaced with the current time.
func (adb *ArchiveDB) SaveSitemap(ctx context.Context, record *SitemapRecord) (int64, error) {
	pages := record.Pages
	if pages == nil {
		pages = []model.Page{}
	}
	pagesJSON, err := json.Marshal(pages)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize pages: %w", err)
	}

	generatedAt := record.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = adb.now()
	}

	query := `
	INSERT INTO sitemaps (base_url, generated_at, change_freq, priority, page_count, failure_count, pages_json, document)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	res, err := adb.db.ExecContext(ctx, query,
		record.URL,
		generatedAt.UTC().Format(timestampLayout),
		record.Options.ChangeFrequency,
		record.Options.Priority,
		len(pages),
		record.FailureCount,
		string(pagesJSON),
		record.Document,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save sitemap: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get sitemap id: %w", err)
	}
	return id, nil
}

// ListSitemaps returns metadata of archived sitemaps, newest first.
// An empty baseURL lists every site.
func (adb *ArchiveDB) ListSitemaps(ctx context.Context, baseURL string) ([]SitemapMetadata, error) {
	query := `
	SELECT id, base_url, generated_at, change_freq, priority, page_count, failure_count
	FROM sitemaps
	WHERE ? = '' OR base_url = ?
	ORDER BY generated_at DESC, id DESC
	`
	rows, err := adb.db.QueryContext(ctx, query, baseURL, baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to list sitemaps: %w", err)
	}
	defer rows.Close()

	results := make([]SitemapMetadata, 0)
	for rows.Next() {
		var meta SitemapMetadata
		var generatedAt string
		if err := rows.Scan(
			&meta.ID,
			&meta.URL,
			&generatedAt,
			&meta.Options.ChangeFrequency,
			&meta.Options.Priority,
			&meta.PageCount,
			&meta.FailureCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan sitemap metadata: %w", err)
		}
		meta.GeneratedAt = parseTimestamp(generatedAt)
		results = append(results, meta)
	}
	return results, rows.Err()
}

// ListSites returns every base URL with at least one archived sitemap.
func (adb *ArchiveDB) ListSites(ctx context.Context) ([]string, error) {
	rows, err := adb.db.QueryContext(ctx, `SELECT DISTINCT base_url FROM sitemaps ORDER BY base_url`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sites: %w", err)
	}
	defer rows.Close()

	sites := make([]string, 0)
	for rows.Next() {
		var site string
		if err := rows.Scan(&site); err != nil {
			return nil, fmt.Errorf("failed to scan site: %w", err)
		}
		sites = append(sites, site)
	}
	return sites, rows.Err()
}

// GetSitemap returns the sitemap with the given ID, or ErrNotFound.
func (adb *ArchiveDB) GetSitemap(ctx context.Context, id int64) (*SitemapRecord, error) {
	return adb.getOne(ctx, `
	SELECT id, base_url, generated_at, change_freq, priority, failure_count, pages_json, document
	FROM sitemaps WHERE id = ?
	`, id)
}

// LatestSitemap returns the newest sitemap for baseURL, or ErrNotFound.
func (adb *ArchiveDB) LatestSitemap(ctx context.Context, baseURL string) (*SitemapRecord, error) {
	return adb.getOne(ctx, `
	SELECT id, base_url, generated_at, change_freq, priority, failure_count, pages_json, document
	FROM sitemaps WHERE base_url = ?
	ORDER BY generated_at DESC, id DESC
	LIMIT 1
	`, baseURL)
}

func (adb *ArchiveDB) getOne(ctx context.Context, query string, arg any) (*SitemapRecord, error) {
	var (
		record      SitemapRecord
		generatedAt string
		pagesJSON   string
	)
	err := adb.db.QueryRowContext(ctx, query, arg).Scan(
		&record.ID,
		&record.URL,
		&generatedAt,
		&record.Options.ChangeFrequency,
		&record.Options.Priority,
		&record.FailureCount,
		&pagesJSON,
		&record.Document,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sitemap: %w", err)
	}

	if err := json.Unmarshal([]byte(pagesJSON), &record.Pages); err != nil {
		return nil, fmt.Errorf("failed to parse pages: %w", err)
	}
	record.GeneratedAt = parseTimestamp(generatedAt)
	return &record, nil
}

// timestampFormats are tried in order by parseTimestamp.
// Records written by SaveSitemap use timestampLayout, which RFC3339Nano
// parses; the others cover rows stamped by SQLite itself.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// parseTimestamp returns the zero time when s matches no known format.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
