package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/sitemapper/internal/model"
)

// DBFileName is the name of the SQLite file created inside the database directory.
const DBFileName = "sitemapper.db"

// VisitDB is the SQLite-backed visited store.
// It holds one table of visited URL records and is safe for concurrent use.
//
// Design decision: The table deliberately has no UNIQUE constraint on url.
// RecordVisit keeps the duplicate-tolerant contract of the plain insert path,
// while RecordVisitOnce gives callers an atomic check-and-insert when they
// need exactly-once semantics.
type VisitDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures VisitDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
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

// ExistingOptions returns options that open a database only if it already
// exists. Read-side commands use them so that inspecting never creates a file.
func ExistingOptions() Options {
	return Options{
		CreateIfNotExists: false,
		EnableWAL:         true,
	}
}

// Open opens or creates a VisitDB inside dbDir.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
//
// The caller owns the handle and must Close it.
func Open(dbDir string, opts Options) (*VisitDB, error) {
	dbPath := filepath.Join(dbDir, DBFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrDatabaseNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite: mode=rw refuses to create a missing file, mode=rwc creates it.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection serializes every statement, which is what makes
	// RecordVisitOnce atomic across goroutines.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	vdb := &VisitDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := vdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return vdb, nil
}

// Close closes the database connection.
func (vdb *VisitDB) Close() error {
	return vdb.db.Close()
}

// Path returns the database file path.
func (vdb *VisitDB) Path() string {
	return vdb.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (vdb *VisitDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS visited_urls (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL,
		visited BOOLEAN,
		datetime DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_visited_urls_url ON visited_urls(url);
	`

	_, err := vdb.db.ExecContext(context.Background(), schema)
	return err
}

// RecordVisit inserts a new record for url, marked visited and timestamped now.
// It succeeds even when a record for the same URL already exists.
func (vdb *VisitDB) RecordVisit(ctx context.Context, url string) (int64, error) {
	result, err := vdb.db.ExecContext(ctx,
		`INSERT INTO visited_urls (url, visited) VALUES (?, ?)`,
		url, true,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to record visit: %w", err)
	}
	return result.LastInsertId()
}

// RecordVisitOnce inserts a visited record for url unless one already exists.
// It reports whether a new record was written. The existence check and the
// insert run as one statement, so two callers racing on the same URL can
// never both get true.
func (vdb *VisitDB) RecordVisitOnce(ctx context.Context, url string) (bool, error) {
	query := `
	INSERT INTO visited_urls (url, visited)
	SELECT ?, ?
	WHERE NOT EXISTS (SELECT 1 FROM visited_urls WHERE url = ?)
	`

	result, err := vdb.db.ExecContext(ctx, query, url, true, url)
	if err != nil {
		return false, fmt.Errorf("failed to record visit: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n == 1, nil
}

// HasRecord reports whether at least one record with exactly this URL exists.
// URLs are compared as raw strings; "http://x.com/a" and "http://x.com/a/"
// are different URLs.
func (vdb *VisitDB) HasRecord(ctx context.Context, url string) (bool, error) {
	var exists int
	err := vdb.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM visited_urls WHERE url = ?)`,
		url,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check record: %w", err)
	}
	return exists == 1, nil
}

// AllVisitedURLs returns the URL of every stored record in insertion order.
// Duplicate rows are returned as-is.
func (vdb *VisitDB) AllVisitedURLs(ctx context.Context) ([]string, error) {
	rows, err := vdb.db.QueryContext(ctx, `SELECT url FROM visited_urls ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list visited urls: %w", err)
	}
	defer rows.Close()

	urls := make([]string, 0)
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("failed to scan url: %w", err)
		}
		urls = append(urls, url)
	}

	return urls, rows.Err()
}

// ClearAll deletes every record unconditionally.
// IDs keep increasing after a wipe because the table uses AUTOINCREMENT.
func (vdb *VisitDB) ClearAll(ctx context.Context) error {
	if _, err := vdb.db.ExecContext(ctx, `DELETE FROM visited_urls`); err != nil {
		return fmt.Errorf("failed to clear visited urls: %w", err)
	}
	return nil
}

// GetByID retrieves a record by its ID. It returns nil, nil when no record exists.
func (vdb *VisitDB) GetByID(ctx context.Context, id int64) (*model.VisitedURL, error) {
	row := vdb.db.QueryRowContext(ctx,
		`SELECT id, url, visited, datetime FROM visited_urls WHERE id = ?`,
		id,
	)

	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	return record, nil
}

// GetByURL retrieves every record stored for url, oldest first.
func (vdb *VisitDB) GetByURL(ctx context.Context, url string) ([]model.VisitedURL, error) {
	return vdb.queryRecords(ctx,
		`SELECT id, url, visited, datetime FROM visited_urls WHERE url = ? ORDER BY id`,
		url,
	)
}

// ListVisited retrieves every record whose visited flag is set, oldest first.
func (vdb *VisitDB) ListVisited(ctx context.Context) ([]model.VisitedURL, error) {
	return vdb.queryRecords(ctx,
		`SELECT id, url, visited, datetime FROM visited_urls WHERE visited = ? ORDER BY id`,
		true,
	)
}

// Records retrieves every record, oldest first.
func (vdb *VisitDB) Records(ctx context.Context) ([]model.VisitedURL, error) {
	return vdb.queryRecords(ctx,
		`SELECT id, url, visited, datetime FROM visited_urls ORDER BY id`,
	)
}

// Count returns the number of stored records.
func (vdb *VisitDB) Count(ctx context.Context) (int, error) {
	var count int
	if err := vdb.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM visited_urls`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return count, nil
}

// SetVisited updates the visited flag of a record.
// It is the only mutation allowed on an existing record.
func (vdb *VisitDB) SetVisited(ctx context.Context, id int64, visited bool) error {
	result, err := vdb.db.ExecContext(ctx,
		`UPDATE visited_urls SET visited = ? WHERE id = ?`,
		visited, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update record: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("record %d: %w", id, ErrRecordNotFound)
	}
	return nil
}

// Delete removes a single record by ID.
func (vdb *VisitDB) Delete(ctx context.Context, id int64) error {
	result, err := vdb.db.ExecContext(ctx, `DELETE FROM visited_urls WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("record %d: %w", id, ErrRecordNotFound)
	}
	return nil
}

// queryRecords runs a query returning full records.
func (vdb *VisitDB) queryRecords(ctx context.Context, query string, args ...any) ([]model.VisitedURL, error) {
	rows, err := vdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	records := make([]model.VisitedURL, 0)
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, *record)
	}

	return records, rows.Err()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanRecord reads one visited_urls row.
func scanRecord(row rowScanner) (*model.VisitedURL, error) {
	var record model.VisitedURL
	var visited sql.NullBool
	var timestamp sql.NullString

	if err := row.Scan(&record.ID, &record.URL, &visited, &timestamp); err != nil {
		return nil, err
	}

	record.Visited = visited.Valid && visited.Bool
	if timestamp.Valid {
		record.RecordedAt = parseTimestamp(timestamp.String)
	}
	return &record, nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
