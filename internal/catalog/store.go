// Package catalog records listings of a root directory in a SQLite database
// so runs can be inspected, exported and compared later.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harrison/bfswalk/internal/filelock"
	"github.com/harrison/bfswalk/internal/models"
	"github.com/harrison/bfswalk/internal/walker"
	_ "github.com/mattn/go-sqlite3"
)

// ErrScanNotFound is returned when no scan matches the requested ID or root.
var ErrScanNotFound = errors.New("scan not found")

// Store manages the SQLite database holding recorded scans
type Store struct {
	db     *sql.DB
	dbPath string
	lock   *filelock.FileLock // nil for in-memory catalogs
}

// NewStore opens (creating if needed) the catalog at dbPath and applies
// pending migrations. ":memory:" opens a private in-memory catalog.
func NewStore(dbPath string) (*Store, error) {
	if dbPath == ":memory:" {
		return openAndInitStore(dbPath, nil)
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	return openAndInitStore(dbPath, filelock.ForFile(dbPath))
}

func openAndInitStore(dbPath string, lock *filelock.FileLock) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if lock == nil {
		// Every connection to ":memory:" is a separate database.
		db.SetMaxOpenConns(1)
	}

	// busy_timeout must be first so the remaining pragmas wait on locks.
	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA cache_size=-16000",
	}
	for _, pragma := range pragmas {
		if err := execWithRetry(db, pragma, 5, 10*time.Millisecond); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	store := &Store{
		db:     db,
		dbPath: dbPath,
		lock:   lock,
	}

	if err := store.ApplyMigrations(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return store, nil
}

// execWithRetry executes a statement with exponential backoff on lock errors.
func execWithRetry(db *sql.DB, stmt string, maxRetries int, baseDelay time.Duration) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		_, err := db.Exec(stmt)
		if err == nil {
			return nil
		}
		if !strings.Contains(err.Error(), "database is locked") {
			return err
		}
		lastErr = err
		time.Sleep(baseDelay * time.Duration(1<<attempt))
	}
	return lastErr
}

// DB exposes the underlying connection pool.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// withWriteLock runs fn while holding the cross-process catalog lock.
func (s *Store) withWriteLock(ctx context.Context, fn func() error) error {
	if s.lock == nil {
		return fn()
	}
	if err := s.lock.LockContext(ctx); err != nil {
		return err
	}
	defer s.lock.Unlock()
	return fn()
}

// RecordOptions observes a scan while it is being recorded.
type RecordOptions struct {
	OnFile func(file walker.File)
	OnSkip func(path string, err error)
}

// RecordScan walks root and stores every emitted row under a new scan ID.
// A walk that aborts still stores the rows read so far and marks the scan
// FAILED with the error text; the scan and the walk error are both returned.
// Cancelling ctx aborts the walk at the next row.
func (s *Store) RecordScan(ctx context.Context, root string, opts RecordOptions) (*models.Scan, error) {
	if root == "" {
		return nil, &walker.ConfigError{Argument: "path"}
	}

	var scan *models.Scan
	var walkErr error
	err := s.withWriteLock(ctx, func() error {
		scan, walkErr = s.recordScan(ctx, root, opts)
		if scan == nil {
			return walkErr
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return scan, walkErr
}

// recordScan returns a nil scan when the catalog itself failed; otherwise the
// error is the walk error stored on the scan.
func (s *Store) recordScan(ctx context.Context, root string, opts RecordOptions) (*models.Scan, error) {
	scan := &models.Scan{
		ID:        uuid.NewString(),
		Root:      root,
		StartedAt: time.Now().UTC(),
		Status:    models.ScanRunning,
	}

	// Rows are kept on failure, so the transaction is committed either way.
	tx, err := s.db.BeginTx(context.Background(), nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO scans (id, root, started_at, status) VALUES (?, ?, ?, ?)`,
		scan.ID, scan.Root, scan.StartedAt.UnixNano(), scan.Status); err != nil {
		return nil, fmt.Errorf("insert scan: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO scan_files (scan_id, file_name, full_path, size) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("prepare file insert: %w", err)
	}
	defer stmt.Close()

	var files []walker.File
	w := walker.New(walker.Options{
		OnSkip: func(path string, err error) {
			scan.Skipped++
			if opts.OnSkip != nil {
				opts.OnSkip(path, err)
			}
		},
	})
	walkErr := w.Walk(root, walker.SinkFunc(func(name, path string, size int64) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := stmt.Exec(scan.ID, name, path, size); err != nil {
			return fmt.Errorf("insert file %s: %w", path, err)
		}
		file := walker.File{Name: name, Path: path, Size: size}
		files = append(files, file)
		scan.FileCount++
		scan.TotalBytes += size
		if opts.OnFile != nil {
			opts.OnFile(file)
		}
		return nil
	}))

	finished := time.Now().UTC()
	scan.FinishedAt = &finished
	scan.Fingerprint = Fingerprint(files)
	scan.Status = models.ScanCompleted
	if walkErr != nil {
		scan.Status = models.ScanFailed
		scan.Error = walkErr.Error()
	}

	if _, err := tx.Exec(`UPDATE scans SET finished_at = ?, file_count = ?, total_bytes = ?, skipped = ?,
		fingerprint = ?, status = ?, error = ? WHERE id = ?`,
		finished.UnixNano(), scan.FileCount, scan.TotalBytes, scan.Skipped,
		scan.Fingerprint, scan.Status, scan.Error, scan.ID); err != nil {
		return nil, fmt.Errorf("update scan: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit scan: %w", err)
	}
	return scan, walkErr
}

const scanColumns = `id, root, started_at, finished_at, file_count, total_bytes, skipped, fingerprint, status, error`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanScan(row rowScanner) (*models.Scan, error) {
	var (
		scan     models.Scan
		started  int64
		finished sql.NullInt64
	)
	if err := row.Scan(&scan.ID, &scan.Root, &started, &finished, &scan.FileCount, &scan.TotalBytes,
		&scan.Skipped, &scan.Fingerprint, &scan.Status, &scan.Error); err != nil {
		return nil, err
	}
	scan.StartedAt = time.Unix(0, started).UTC()
	if finished.Valid {
		t := time.Unix(0, finished.Int64).UTC()
		scan.FinishedAt = &t
	}
	return &scan, nil
}

// GetScan returns the scan with the given ID. A unique ID prefix, such as
// the short ID shown by the CLI, is accepted as well.
func (s *Store) GetScan(ctx context.Context, id string) (*models.Scan, error) {
	if id == "" {
		return nil, fmt.Errorf("scan %q: %w", id, ErrScanNotFound)
	}

	scan, err := scanScan(s.db.QueryRowContext(ctx, `SELECT `+scanColumns+` FROM scans WHERE id = ?`, id))
	if err == nil {
		return scan, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("query scan: %w", err)
	}

	matches, err := s.queryScans(ctx, `SELECT `+scanColumns+` FROM scans WHERE substr(id, 1, ?) = ? LIMIT 2`, len(id), id)
	if err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("scan %q: %w", id, ErrScanNotFound)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("scan ID prefix %q is ambiguous", id)
	}
}

// ListScans returns the most recent scans first. limit <= 0 returns all.
func (s *Store) ListScans(ctx context.Context, limit int) ([]*models.Scan, error) {
	if limit <= 0 {
		limit = -1
	}
	return s.queryScans(ctx, `SELECT `+scanColumns+` FROM scans ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
}

// LatestScan returns the most recent completed scan of root.
func (s *Store) LatestScan(ctx context.Context, root string) (*models.Scan, error) {
	scans, err := s.queryScans(ctx, `SELECT `+scanColumns+` FROM scans
		WHERE root = ? AND status = ? ORDER BY started_at DESC, rowid DESC LIMIT 1`, root, models.ScanCompleted)
	if err != nil {
		return nil, err
	}
	if len(scans) == 0 {
		return nil, fmt.Errorf("no completed scan of %s: %w", root, ErrScanNotFound)
	}
	return scans[0], nil
}

func (s *Store) queryScans(ctx context.Context, query string, args ...any) ([]*models.Scan, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query scans: %w", err)
	}
	defer rows.Close()

	var scans []*models.Scan
	for rows.Next() {
		scan, err := scanScan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		scans = append(scans, scan)
	}
	return scans, rows.Err()
}

// GetFiles returns the rows of a scan ordered by path.
func (s *Store) GetFiles(ctx context.Context, scanID string) ([]walker.File, error) {
	return s.queryFiles(ctx, `SELECT file_name, full_path, size FROM scan_files
		WHERE scan_id = ? ORDER BY full_path`, scanID)
}

// FindByName returns the rows of a scan whose file name equals name, ordered by path.
func (s *Store) FindByName(ctx context.Context, scanID, name string) ([]walker.File, error) {
	return s.queryFiles(ctx, `SELECT file_name, full_path, size FROM scan_files
		WHERE scan_id = ? AND file_name = ? ORDER BY full_path`, scanID, name)
}

func (s *Store) queryFiles(ctx context.Context, query string, args ...any) ([]walker.File, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query files: %w", err)
	}
	defer rows.Close()

	var files []walker.File
	for rows.Next() {
		var f walker.File
		if err := rows.Scan(&f.Name, &f.Path, &f.Size); err != nil {
			return nil, fmt.Errorf("scan file row: %w", err)
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// DeleteScan removes a scan and its rows.
func (s *Store) DeleteScan(ctx context.Context, id string) error {
	return s.withWriteLock(ctx, func() error {
		n, err := s.deleteScans(ctx, []string{id})
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("scan %q: %w", id, ErrScanNotFound)
		}
		return nil
	})
}

// Prune keeps the newest keep scans of each root and deletes the rest,
// returning how many were removed. keep <= 0 disables pruning.
func (s *Store) Prune(ctx context.Context, keep int) (int, error) {
	if keep <= 0 {
		return 0, nil
	}
	var removed int
	err := s.withWriteLock(ctx, func() error {
		ids, err := s.queryIDs(ctx, `
			SELECT id FROM (
				SELECT id, ROW_NUMBER() OVER (
					PARTITION BY root ORDER BY started_at DESC, rowid DESC
				) AS rn
				FROM scans
			) WHERE rn > ?`, keep)
		if err != nil {
			return err
		}
		removed, err = s.deleteScans(ctx, ids)
		return err
	})
	return removed, err
}

// Clear deletes every scan, returning how many were removed.
func (s *Store) Clear(ctx context.Context) (int, error) {
	var removed int
	err := s.withWriteLock(ctx, func() error {
		ids, err := s.queryIDs(ctx, `SELECT id FROM scans`)
		if err != nil {
			return err
		}
		removed, err = s.deleteScans(ctx, ids)
		return err
	})
	return removed, err
}

func (s *Store) queryIDs(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query scan ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id row: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) deleteScans(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var removed int
	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, `DELETE FROM scan_files WHERE scan_id = ?`, id); err != nil {
			return 0, fmt.Errorf("delete files of scan %s: %w", id, err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM scans WHERE id = ?`, id)
		if err != nil {
			return 0, fmt.Errorf("delete scan %s: %w", id, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		removed += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit delete: %w", err)
	}
	return removed, nil
}
