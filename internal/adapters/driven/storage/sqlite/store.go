package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/docmeta/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docmeta/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/docmeta/internal/core/domain"
	"github.com/custodia-labs/docmeta/internal/core/ports/driven"
)

// DefaultFilename is the database file created in the docmeta home directory.
const DefaultFilename = "runs.db"

// Ensure Store implements the interface.
var _ driven.RunStore = (*Store)(nil)

// Store is a SQLite-backed run history.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens or creates the database at dbPath.
// If dbPath is empty, defaults to runs.db in the docmeta home directory.
func NewStore(dbPath string) (*Store, error) {
	if dbPath == "" {
		dir, err := file.DefaultDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dbPath = filepath.Join(dir, DefaultFilename)
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate applies the embedded up migrations newer than the recorded
// schema version, each in its own transaction.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_runs.up.sql" -> 1)
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
		if err := s.apply(version, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

func (s *Store) apply(version int, script string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(script); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		return err
	}
	return tx.Commit()
}

// SchemaVersion returns the highest applied migration.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	err := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&v)
	return v, err
}

// Save creates or replaces a run record.
func (s *Store) Save(ctx context.Context, run *domain.RunRecord) error {
	if run == nil || run.ID == "" {
		return fmt.Errorf("%w: run id is required", domain.ErrInvalidInput)
	}

	output, err := marshalOutput(run.Output)
	if err != nil {
		return fmt.Errorf("marshalling output: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (id, document_id, filename, profile, state, source, output, error, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			document_id = excluded.document_id,
			filename = excluded.filename,
			profile = excluded.profile,
			state = excluded.state,
			source = excluded.source,
			output = excluded.output,
			error = excluded.error,
			started_at = excluded.started_at,
			finished_at = excluded.finished_at
	`, run.ID, run.DocumentID, run.Filename, run.Profile, run.State.String(), string(run.Source),
		output, run.Error, toUnix(run.StartedAt), toUnix(run.FinishedAt))
	if err != nil {
		return fmt.Errorf("saving run: %w", err)
	}
	return nil
}

const runColumns = `id, document_id, filename, profile, state, source, output, error, started_at, finished_at`

// Get retrieves a run by ID.
func (s *Store) Get(ctx context.Context, id string) (*domain.RunRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %q: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// List returns runs matching the filter, newest first.
func (s *Store) List(ctx context.Context, filter domain.RunFilter) ([]domain.RunRecord, error) {
	var (
		where []string
		args  []any
	)
	if filter.Filename != "" {
		where = append(where, "filename = ?")
		args = append(args, filter.Filename)
	}
	if filter.FailedOnly {
		where = append(where, "(state != ? OR error != '')")
		args = append(args, domain.RunStateMapped.String())
	}

	query := `SELECT ` + runColumns + ` FROM runs`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY started_at DESC, rowid DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.RunRecord
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// Delete removes a run.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM runs WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting run: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*domain.RunRecord, error) {
	var (
		run               domain.RunRecord
		state, source     string
		output            sql.NullString
		started, finished int64
	)
	if err := row.Scan(&run.ID, &run.DocumentID, &run.Filename, &run.Profile, &state, &source,
		&output, &run.Error, &started, &finished); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning run: %w", err)
	}

	if err := run.State.UnmarshalText([]byte(state)); err != nil {
		return nil, fmt.Errorf("scanning run: %w", err)
	}
	run.Source = domain.OutcomeSource(source)
	run.StartedAt = fromUnix(started)
	run.FinishedAt = fromUnix(finished)

	if output.Valid && output.String != "" {
		if err := json.Unmarshal([]byte(output.String), &run.Output); err != nil {
			return nil, fmt.Errorf("unmarshaling output: %w", err)
		}
		run.Output = restoreLists(run.Output)
	}
	return &run, nil
}

func marshalOutput(out map[string]any) (any, error) {
	if out == nil {
		return nil, nil
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// restoreLists converts decoded JSON arrays back to []string so that
// records read back compare equal to the ones written.
func restoreLists(out map[string]any) map[string]any {
	for k, v := range out {
		items, ok := v.([]any)
		if !ok {
			continue
		}
		list := make([]string, 0, len(items))
		for _, item := range items {
			if s, ok := item.(string); ok {
				list = append(list, s)
			}
		}
		out[k] = list
	}
	return out
}

func toUnix(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromUnix(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}
