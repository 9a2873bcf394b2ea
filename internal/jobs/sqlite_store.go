// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package jobs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ManuGH/hlsforge/internal/persistence/sqlite"
	"github.com/ManuGH/hlsforge/internal/transcode"
)

const schemaVersion = 1

// SqliteStore implements Store using SQLite.
type SqliteStore struct {
	DB *sql.DB
}

// NewSqliteStore opens (and migrates) the job database at dbPath.
func NewSqliteStore(dbPath string) (*SqliteStore, error) {
	db, err := sqlite.Open(dbPath, sqlite.DefaultConfig())
	if err != nil {
		return nil, err
	}

	s := &SqliteStore{DB: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("job store: migration failed: %w", err)
	}
	return s, nil
}

func (s *SqliteStore) migrate() error {
	var currentVersion int
	if err := s.DB.QueryRow("PRAGMA user_version").Scan(&currentVersion); err != nil {
		return err
	}
	if currentVersion >= schemaVersion {
		return nil
	}

	tx, err := s.DB.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	schema := `
	CREATE TABLE IF NOT EXISTS jobs (
		id TEXT PRIMARY KEY,
		input TEXT NOT NULL,
		output TEXT NOT NULL,
		state TEXT NOT NULL,
		percent REAL NOT NULL DEFAULT 0,
		manifest TEXT NOT NULL DEFAULT '',
		error TEXT NOT NULL DEFAULT '',
		exit_code INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_jobs_created ON jobs(created_at);
	`
	if _, err := tx.Exec(schema); err != nil {
		return err
	}
	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SqliteStore) Create(ctx context.Context, rec Record) error {
	query := `
	INSERT INTO jobs (id, input, output, state, percent, manifest, error, exit_code, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.DB.ExecContext(ctx, query,
		rec.ID, rec.Input, rec.Output, rec.State.String(), rec.Percent, rec.Manifest, rec.Error, rec.ExitCode,
		rec.CreatedAt.UnixMilli(), rec.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert job %s: %w", rec.ID, err)
	}
	return nil
}

func (s *SqliteStore) Update(ctx context.Context, rec Record) error {
	query := `
	UPDATE jobs SET state = ?, percent = ?, manifest = ?, error = ?, exit_code = ?, updated_at = ?
	WHERE id = ?
	`
	res, err := s.DB.ExecContext(ctx, query,
		rec.State.String(), rec.Percent, rec.Manifest, rec.Error, rec.ExitCode, rec.UpdatedAt.UnixMilli(), rec.ID,
	)
	if err != nil {
		return fmt.Errorf("update job %s: %w", rec.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

const selectColumns = `SELECT id, input, output, state, percent, manifest, error, exit_code, created_at, updated_at FROM jobs`

func (s *SqliteStore) Get(ctx context.Context, id string) (Record, error) {
	rec, err := scanRecord(s.DB.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	return rec, err
}

func (s *SqliteStore) List(ctx context.Context, limit int) ([]Record, error) {
	query := selectColumns + ` ORDER BY created_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SqliteStore) Close() error {
	return s.DB.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (Record, error) {
	var (
		rec                Record
		state              string
		createdMs, updated int64
	)
	if err := row.Scan(&rec.ID, &rec.Input, &rec.Output, &state, &rec.Percent, &rec.Manifest, &rec.Error,
		&rec.ExitCode, &createdMs, &updated); err != nil {
		return Record{}, err
	}
	st, err := transcode.ParseState(state)
	if err != nil {
		return Record{}, fmt.Errorf("job %s: %w", rec.ID, err)
	}
	rec.State = st
	rec.CreatedAt = time.UnixMilli(createdMs).UTC()
	rec.UpdatedAt = time.UnixMilli(updated).UTC()
	return rec, nil
}
