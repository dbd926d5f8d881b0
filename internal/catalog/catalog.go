// Package catalog persists a queryable record of every file the pipeline
// materialized, backed by SQLite. The CLI's list and show commands read
// it; the pipeline writes it through the Recorder interface.
package catalog

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"asepack/internal/materialize"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped on incompatible schema changes; stale catalogs
// must be deleted and re-packed.
const schemaVersion = 1

// ErrSchemaMismatch indicates the catalog was written by an incompatible
// version.
var ErrSchemaMismatch = errors.New("catalog schema version mismatch")

// ErrLocked indicates another process holds the catalog.
var ErrLocked = errors.New("catalog is locked by another process")

// File statuses.
const (
	StatusMaterialized = "materialized"
	StatusFailed       = "failed"
)

// Asset kinds.
const (
	KindAnimation = "animation"
	KindTileset   = "tileset"
	KindSlice     = "slice"
)

// Store is a single-writer catalog handle.
type Store struct {
	db   *sql.DB
	lock *flock.Flock
	path string
}

// Open initializes or connects to the catalog database, taking an
// exclusive file lock so concurrent pack runs cannot interleave writes.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure catalog directory: %w", err)
	}

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock catalog: %w", err)
	}
	if !locked {
		return nil, ErrLocked
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open catalog db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, lock: lock, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, err
	}
	return store, nil
}

// Close releases the database and the file lock.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	var err error
	if s.db != nil {
		err = s.db.Close()
	}
	if s.lock != nil {
		if unlockErr := s.lock.Unlock(); err == nil {
			err = unlockErr
		}
	}
	return err
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		if _, err := s.db.ExecContext(ctx,
			"INSERT INTO schema_version (version) VALUES (?)", schemaVersion,
		); err != nil {
			return fmt.Errorf("write schema version: %w", err)
		}
		return nil
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: have %d, want %d (delete %s and re-pack)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

// RecordFile implements pipeline.Recorder for materialized files: it
// replaces the file's row and asset listing wholesale, so reprocessing a
// file leaves exactly one record per asset.
func (s *Store) RecordFile(ctx context.Context, batchID string, file *materialize.File) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO files (path, batch_id, status, frame_count, failure_reason, processed_at)
         VALUES (?, ?, ?, ?, NULL, ?)
         ON CONFLICT(path) DO UPDATE SET
            batch_id = excluded.batch_id,
            status = excluded.status,
            frame_count = excluded.frame_count,
            failure_reason = NULL,
            processed_at = excluded.processed_at`,
		file.Path, batchID, StatusMaterialized, len(file.Frames), now,
	); err != nil {
		return fmt.Errorf("upsert file %s: %w", file.Path, err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM assets WHERE file_path = ?", file.Path); err != nil {
		return fmt.Errorf("clear assets for %s: %w", file.Path, err)
	}

	insert := func(kind, name string, frames int) error {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO assets (file_path, kind, name, frames) VALUES (?, ?, ?, ?)",
			file.Path, kind, name, frames,
		)
		return err
	}
	for _, anim := range file.Animations {
		if err := insert(KindAnimation, anim.Tag, len(anim.Frames)); err != nil {
			return fmt.Errorf("insert animation: %w", err)
		}
	}
	for _, ts := range file.Tilesets {
		if err := insert(KindTileset, ts.Name, int(ts.TileCount)); err != nil {
			return fmt.Errorf("insert tileset: %w", err)
		}
	}
	for _, slice := range file.Slices {
		if err := insert(KindSlice, slice.Name, len(slice.Keys)); err != nil {
			return fmt.Errorf("insert slice: %w", err)
		}
	}

	return tx.Commit()
}

// RecordFailure implements pipeline.Recorder for dropped files.
func (s *Store) RecordFailure(ctx context.Context, batchID, file, reason string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO files (path, batch_id, status, frame_count, failure_reason, processed_at)
         VALUES (?, ?, ?, 0, ?, ?)
         ON CONFLICT(path) DO UPDATE SET
            batch_id = excluded.batch_id,
            status = excluded.status,
            failure_reason = excluded.failure_reason,
            processed_at = excluded.processed_at`,
		file, batchID, StatusFailed, reason, now,
	)
	if err != nil {
		return fmt.Errorf("record failure for %s: %w", file, err)
	}
	return nil
}

// FileRow is one catalog entry for a processed file.
type FileRow struct {
	Path          string
	BatchID       string
	Status        string
	FrameCount    int
	FailureReason string
	ProcessedAt   time.Time
}

// AssetRow is one produced asset of a file.
type AssetRow struct {
	Kind   string
	Name   string
	Frames int
}

// ListFiles returns every cataloged file ordered by path.
func (s *Store) ListFiles(ctx context.Context) ([]FileRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT path, batch_id, status, frame_count, COALESCE(failure_reason, ''), processed_at
         FROM files ORDER BY path`,
	)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()

	var files []FileRow
	for rows.Next() {
		var row FileRow
		var processedAt string
		if err := rows.Scan(&row.Path, &row.BatchID, &row.Status, &row.FrameCount, &row.FailureReason, &processedAt); err != nil {
			return nil, fmt.Errorf("scan file row: %w", err)
		}
		if ts, parseErr := time.Parse(time.RFC3339Nano, processedAt); parseErr == nil {
			row.ProcessedAt = ts
		}
		files = append(files, row)
	}
	return files, rows.Err()
}

// AssetsFor returns the assets recorded for one file, animations first,
// then tilesets, then slices, each group in insertion order.
func (s *Store) AssetsFor(ctx context.Context, path string) ([]AssetRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT kind, name, frames FROM assets WHERE file_path = ?
         ORDER BY CASE kind WHEN 'animation' THEN 0 WHEN 'tileset' THEN 1 ELSE 2 END, id`,
		path,
	)
	if err != nil {
		return nil, fmt.Errorf("list assets for %s: %w", path, err)
	}
	defer rows.Close()

	var assets []AssetRow
	for rows.Next() {
		var row AssetRow
		if err := rows.Scan(&row.Kind, &row.Name, &row.Frames); err != nil {
			return nil, fmt.Errorf("scan asset row: %w", err)
		}
		assets = append(assets, row)
	}
	return assets, rows.Err()
}
