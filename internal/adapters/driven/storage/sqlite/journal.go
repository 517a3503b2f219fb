// Package sqlite implements the run journal over a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/westminster-data/parlsync/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/westminster-data/parlsync/internal/core/domain"
	"github.com/westminster-data/parlsync/internal/core/ports/driven"
)

// Ensure Journal implements the interface.
var _ driven.RunJournal = (*Journal)(nil)

// Journal records sync and sweep runs in a SQLite database next to the
// archives.
type Journal struct {
	db   *sql.DB
	path string
}

// NewJournal opens (or creates) the journal database in dataDir.
func NewJournal(dataDir string) (*Journal, error) {
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "journal.db")

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	j := &Journal{db: db, path: dbPath}
	if err := j.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return j, nil
}

// Close closes the database connection.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Path returns the database file path.
func (j *Journal) Path() string {
	return j.path
}

// Record appends one run.
func (j *Journal) Record(ctx context.Context, run domain.SyncRun) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO sync_runs (id, kind, started_at, finished_at, fetched, added, dropped, failed_windows)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, string(run.Kind),
		run.StartedAt.UTC().Format(time.RFC3339),
		run.FinishedAt.UTC().Format(time.RFC3339),
		run.Fetched, run.Added, run.Dropped, run.FailedWindows,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// Recent returns up to limit runs, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]domain.SyncRun, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, kind, started_at, finished_at, fetched, added, dropped, failed_windows
		FROM sync_runs ORDER BY finished_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	return scanRuns(rows)
}

// LatestByKind returns the most recent run per archive kind.
func (j *Journal) LatestByKind(ctx context.Context) (map[domain.ArchiveKind]domain.SyncRun, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, kind, started_at, finished_at, fetched, added, dropped, failed_windows
		FROM sync_runs r
		WHERE finished_at = (SELECT MAX(finished_at) FROM sync_runs WHERE kind = r.kind)
		GROUP BY kind`)
	if err != nil {
		return nil, fmt.Errorf("query latest runs: %w", err)
	}
	defer rows.Close()

	runs, err := scanRuns(rows)
	if err != nil {
		return nil, err
	}
	latest := make(map[domain.ArchiveKind]domain.SyncRun, len(runs))
	for _, run := range runs {
		latest[run.Kind] = run
	}
	return latest, nil
}

func scanRuns(rows *sql.Rows) ([]domain.SyncRun, error) {
	var runs []domain.SyncRun
	for rows.Next() {
		var run domain.SyncRun
		var kind, started, finished string
		if err := rows.Scan(&run.ID, &kind, &started, &finished,
			&run.Fetched, &run.Added, &run.Dropped, &run.FailedWindows); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.Kind = domain.ArchiveKind(kind)
		if t, err := time.Parse(time.RFC3339, started); err == nil {
			run.StartedAt = t
		}
		if t, err := time.Parse(time.RFC3339, finished); err == nil {
			run.FinishedAt = t
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (j *Journal) migrate(fsys embed.FS) error {
	_, err := j.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := j.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := j.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := j.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}
