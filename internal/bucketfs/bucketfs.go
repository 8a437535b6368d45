// Package bucketfs answers listing queries for a base directory by staging the
// walker's rows in a session-scoped SQL table.
package bucketfs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/harrison/bfswalk/internal/logger"
	"github.com/harrison/bfswalk/internal/walker"
)

// ErrEmptyBasePath is returned by New when no base path is configured.
var ErrEmptyBasePath = errors.New("base path is empty")

// ErrFileNotFound is matched by errors.Is for every *NotFoundError.
var ErrFileNotFound = errors.New("file not found")

// NotFoundError reports a file name with no match below the base path.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("file %q not found in BucketFS", e.Name)
}

// Is reports whether target is ErrFileNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrFileNotFound
}

// API lists files below a base directory.
// Users must call Close to release the session after use.
type API interface {
	// ListFiles lists all files below the base path recursively, ordered by path.
	ListFiles(ctx context.Context) ([]walker.File, error)

	// FindAbsolutePath returns the path of a file with the given name. When
	// several directories hold such a file, the lowest path wins.
	FindAbsolutePath(ctx context.Context, fileName string) (string, error)

	// Close releases the session and its staging table.
	Close() error
}

type api struct {
	basePath string
	table    string
	tx       *sql.Tx
	walker   *walker.Walker
	log      logger.Logger
}

// New opens a listing session for basePath on db. The session holds a
// transaction and a temporary staging table until Close rolls it back.
// A nil log discards messages.
func New(ctx context.Context, db *sql.DB, basePath string, log logger.Logger) (API, error) {
	if basePath == "" {
		return nil, ErrEmptyBasePath
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	t0 := time.Now()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create a transaction: %w", err)
	}

	table := fmt.Sprintf("listing_%d", t0.UnixNano())
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`CREATE TEMP TABLE %s (
    file_name TEXT NOT NULL,
    full_path TEXT NOT NULL,
    size INTEGER NOT NULL
)`, table)); err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("failed to create staging table: %w", err)
	}
	log.LogTrace(fmt.Sprintf("Created staging table %s in %s", table, time.Since(t0)))

	return &api{
		basePath: basePath,
		table:    table,
		tx:       tx,
		walker:   walker.New(walker.Options{OnSkip: log.LogSkip}),
		log:      log,
	}, nil
}

// stage replaces the staging table contents with a fresh listing of the base path.
func (a *api) stage(ctx context.Context) (int, error) {
	if _, err := a.tx.ExecContext(ctx, "DELETE FROM "+a.table); err != nil {
		return 0, fmt.Errorf("failed to reset staging table: %w", err)
	}

	stmt, err := a.tx.PrepareContext(ctx, "INSERT INTO "+a.table+" (file_name, full_path, size) VALUES (?, ?, ?)")
	if err != nil {
		return 0, fmt.Errorf("failed to create prepared statement for staging files: %w", err)
	}
	defer stmt.Close()

	var count int
	err = a.walker.Walk(a.basePath, walker.SinkFunc(func(name, path string, size int64) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, name, path, size); err != nil {
			return fmt.Errorf("failed to stage %s: %w", path, err)
		}
		count++
		return nil
	}))
	if err != nil {
		return count, fmt.Errorf("failed to list files: %w", err)
	}
	return count, nil
}

func (a *api) ListFiles(ctx context.Context) ([]walker.File, error) {
	t0 := time.Now()
	if _, err := a.stage(ctx); err != nil {
		return nil, err
	}

	rows, err := a.tx.QueryContext(ctx, "SELECT file_name, full_path, size FROM "+a.table+" ORDER BY full_path")
	if err != nil {
		return nil, fmt.Errorf("failed to query staged files: %w", err)
	}
	defer rows.Close()

	var files []walker.File
	for rows.Next() {
		var f walker.File
		if err := rows.Scan(&f.Name, &f.Path, &f.Size); err != nil {
			return nil, fmt.Errorf("failed reading staged file: %w", err)
		}
		a.log.LogFile(f)
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating staged files: %w", err)
	}

	a.log.LogDebug(fmt.Sprintf("Listed %d files under %q in %dms", len(files), a.basePath, time.Since(t0).Milliseconds()))
	return files, nil
}

func (a *api) FindAbsolutePath(ctx context.Context, fileName string) (string, error) {
	t0 := time.Now()
	if _, err := a.stage(ctx); err != nil {
		return "", err
	}

	var absolutePath string
	err := a.tx.QueryRowContext(ctx,
		"SELECT full_path FROM "+a.table+" WHERE file_name = ? ORDER BY full_path LIMIT 1", fileName).
		Scan(&absolutePath)
	if errors.Is(err, sql.ErrNoRows) {
		return "", &NotFoundError{Name: fileName}
	}
	if err != nil {
		return "", fmt.Errorf("failed reading absolute path: %w", err)
	}

	a.log.LogTrace(fmt.Sprintf("Found absolute path %q for file %q in %.2fs", absolutePath, fileName, time.Since(t0).Seconds()))
	return absolutePath, nil
}

func (a *api) Close() error {
	if err := a.tx.Rollback(); err != nil {
		return fmt.Errorf("failed to rollback transaction to cleanup resources: %w", err)
	}
	return nil
}
