/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	applog "sceneweaver/internal/log"
	"sceneweaver/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	// DefaultFileName is the database file name used under the data directory.
	DefaultFileName = "sceneweaver.sqlite"

	// schemaVersion tracks the local SQLite schema.
	// Bump this when you perform breaking schema changes and add migrations.
	schemaVersion = 2
)

// Store is the local SQLite store for documents, scenes and shots.
// It is safe for concurrent use; writes are serialized by the single connection.
type Store struct {
	db   *sql.DB
	path string
}

// Path is the database file backing the store.
func (s *Store) Path() string { return s.path }

// DB exposes the underlying handle for maintenance queries.
func (s *Store) DB() *sql.DB { return s.db }

// Close releases the database.
func (s *Store) Close() error { return s.db.Close() }

// Open creates or opens the database at path, enables WAL mode, and brings
// the schema up to date.
func Open(path string) (*Store, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "open").With(
		slog.String("path", path),
	)
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("database path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		l.Error("create data dir failed", slog.Any("err", err))
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	// Forward slashes for the SQLite URI.
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	// shots and blocks cascade from their parents
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON;"); err != nil {
		l.Warn("enable foreign_keys failed", slog.Any("err", err))
	}
	if err := ensureMetaAndVersion(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure meta/version failed", slog.Any("err", err))
		return nil, err
	}
	if err := ensureSchema(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure schema failed", slog.Any("err", err))
		return nil, err
	}
	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		l.Error("run migrations failed", slog.Any("err", err))
		return nil, err
	}

	l.Debug("store ready")
	return &Store{db: db, path: path}, nil
}

// OpenOrRecover opens path like Open. When the file cannot be opened or fails
// an integrity check it is copied to a timestamped backup next to it, removed,
// and recreated empty. The second result reports whether that happened.
func OpenOrRecover(ctx context.Context, path string) (*Store, bool, error) {
	s, err := Open(path)
	if err == nil {
		if healthy(ctx, s.db) {
			return s, false, nil
		}
		_ = s.Close()
	}
	applog.WithComponent("storage").Warn("database unusable, recreating", slog.String("path", path), slog.Any("err", err))
	backupFile(path)
	for _, suffix := range []string{"", "-wal", "-shm"} {
		_ = os.Remove(path + suffix)
	}
	s, err = Open(path)
	if err != nil {
		return nil, false, fmt.Errorf("recreate database: %w", err)
	}
	return s, true, nil
}

func healthy(ctx context.Context, db *sql.DB) bool {
	var chk string
	if err := db.QueryRowContext(ctx, `PRAGMA quick_check;`).Scan(&chk); err != nil || !strings.Contains(strings.ToLower(chk), "ok") {
		return false
	}
	_, err := db.ExecContext(ctx, `SELECT 1 FROM shots LIMIT 1;`)
	return err == nil
}

// backupFile copies path into <dir>/backups/<name>.<stamp>.bak.
func backupFile(path string) {
	bdir := filepath.Join(filepath.Dir(path), "backups")
	_ = os.MkdirAll(bdir, 0o755)
	stamp := time.Now().Format("20060102-150405")
	bak := filepath.Join(bdir, fmt.Sprintf("%s.%s.bak", filepath.Base(path), stamp))
	if data, err := os.ReadFile(path); err == nil {
		_ = os.WriteFile(bak, data, 0o644)
	}
}

func ensureMetaAndVersion(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	appv := version.String()
	var curSchema int
	err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&curSchema)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := db.ExecContext(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, ?, ?, ?, ?)`, schemaVersion, appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		// keep the stored schema for migrations
		if _, err := db.ExecContext(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

// SchemaVersion reads the stored schema number.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	if err := s.db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&v); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return v, nil
}

func ensureSchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			id         TEXT PRIMARY KEY,
			title      TEXT NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS blocks (
			block_id    INTEGER PRIMARY KEY,
			document_id TEXT    NOT NULL,
			position    INTEGER NOT NULL,
			type        TEXT    NOT NULL,
			text        TEXT    NOT NULL,
			FOREIGN KEY(document_id) REFERENCES documents(id) ON DELETE CASCADE
		);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_blocks_doc_pos ON blocks(document_id, position);`,
		`CREATE TABLE IF NOT EXISTS scenes (
			id              TEXT PRIMARY KEY,
			document_id     TEXT,
			order_index     INTEGER NOT NULL DEFAULT 0,
			slug_line       TEXT    NOT NULL DEFAULT '',
			script_text     TEXT    NOT NULL DEFAULT '',
			characters      TEXT    NOT NULL DEFAULT '[]',
			coverage_preset TEXT    NOT NULL DEFAULT '',
			style_mode      TEXT    NOT NULL DEFAULT '',
			created_at      TEXT    NOT NULL,
			updated_at      TEXT    NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS shots (
			id          TEXT PRIMARY KEY,
			scene_id    TEXT    NOT NULL,
			shot_number INTEGER NOT NULL,
			shot_type   TEXT    NOT NULL,
			prompt      TEXT    NOT NULL,
			description TEXT    NOT NULL DEFAULT '',
			duration    REAL    NOT NULL,
			status      TEXT    NOT NULL DEFAULT 'pending',
			created_at  TEXT    NOT NULL,
			FOREIGN KEY(scene_id) REFERENCES scenes(id) ON DELETE CASCADE
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return ensureSearchSchema(ctx, db)
}

// ensureSearchSchema creates the block full-text index and the shot lookup
// index. It is part of the base schema and also migration 2.
func ensureSearchSchema(ctx context.Context, db execer) error {
	stmts := []string{
		`CREATE INDEX IF NOT EXISTS idx_shots_scene ON shots(scene_id, shot_number);`,
		`CREATE INDEX IF NOT EXISTS idx_scenes_document ON scenes(document_id, order_index);`,
		`CREATE VIRTUAL TABLE IF NOT EXISTS fts_blocks USING fts5(
			text,
			content='blocks',
			content_rowid='block_id',
			tokenize = 'unicode61'
		);`,
		`CREATE TRIGGER IF NOT EXISTS blocks_ai AFTER INSERT ON blocks BEGIN
			INSERT INTO fts_blocks(rowid, text) VALUES (new.block_id, new.text);
		END;`,
		`CREATE TRIGGER IF NOT EXISTS blocks_ad AFTER DELETE ON blocks BEGIN
			INSERT INTO fts_blocks(fts_blocks, rowid, text) VALUES ('delete', old.block_id, old.text);
		END;`,
		`CREATE TRIGGER IF NOT EXISTS blocks_au AFTER UPDATE OF text ON blocks BEGIN
			INSERT INTO fts_blocks(fts_blocks, rowid, text) VALUES ('delete', old.block_id, old.text);
			INSERT INTO fts_blocks(rowid, text) VALUES (new.block_id, new.text);
		END;`,
	}
	for _, q := range stmts {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure search schema: %w", err)
		}
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// runMigrations applies incremental schema migrations up to schemaVersion.
func runMigrations(ctx context.Context, db *sql.DB) error {
	var cur int
	if err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	for cur < schemaVersion {
		next := cur + 1
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", next, err)
		}
		if err := migrate(ctx, tx, next); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d: %w", next, err)
		}
		if _, err := tx.ExecContext(ctx, `UPDATE version SET schema=?, updated_at=? WHERE id=1`, next, time.Now().UTC().Format(time.RFC3339)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d update version: %w", next, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d commit: %w", next, err)
		}
		cur = next
	}
	return nil
}

func migrate(ctx context.Context, tx *sql.Tx, step int) error {
	switch step {
	case 2:
		// v1 had no full-text index; index the blocks that already exist
		if err := ensureSearchSchema(ctx, tx); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO fts_blocks(fts_blocks) VALUES('rebuild')`); err != nil {
			return fmt.Errorf("rebuild fts: %w", err)
		}
	}
	return nil
}
