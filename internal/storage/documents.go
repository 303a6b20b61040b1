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
	"strings"
	"time"

	"github.com/google/uuid"

	"sceneweaver/internal/screenplay"
)

// ErrNotFound is returned for ids with no stored row.
var ErrNotFound = errors.New("not found")

// language=SQL
// dialect=SQLite
const insertDocumentSQL = `INSERT INTO documents(id, title, created_at) VALUES (?, ?, ?)`

// language=SQL
// dialect=SQLite
const insertBlockSQL = `INSERT INTO blocks(document_id, position, type, text) VALUES (?, ?, ?, ?)`

// language=SQL
// dialect=SQLite
const selectBlocksSQL = `SELECT type, text FROM blocks WHERE document_id = ? ORDER BY position`

// SaveDocument stores doc under a new id and returns it.
func (s *Store) SaveDocument(ctx context.Context, title string, doc screenplay.Document) (string, error) {
	id := uuid.NewString()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx, insertDocumentSQL, id, strings.TrimSpace(title), time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		_ = tx.Rollback()
		return "", fmt.Errorf("insert document: %w", err)
	}
	ins, err := tx.PrepareContext(ctx, insertBlockSQL)
	if err != nil {
		_ = tx.Rollback()
		return "", fmt.Errorf("prepare insert: %w", err)
	}
	defer ins.Close()
	for i, b := range doc.Blocks {
		if _, err := ins.ExecContext(ctx, id, i, string(b.Type), b.Text); err != nil {
			_ = tx.Rollback()
			return "", fmt.Errorf("insert block: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

// LoadDocument reads back a stored document.
func (s *Store) LoadDocument(ctx context.Context, id string) (screenplay.Document, error) {
	var title string
	err := s.db.QueryRowContext(ctx, `SELECT title FROM documents WHERE id = ?`, id).Scan(&title)
	if errors.Is(err, sql.ErrNoRows) {
		return screenplay.Document{}, fmt.Errorf("document %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return screenplay.Document{}, fmt.Errorf("read document: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, selectBlocksSQL, id)
	if err != nil {
		return screenplay.Document{}, fmt.Errorf("query blocks: %w", err)
	}
	defer rows.Close()
	doc := screenplay.Document{Blocks: []screenplay.Block{}}
	for rows.Next() {
		var b screenplay.Block
		var typ string
		if err := rows.Scan(&typ, &b.Text); err != nil {
			return screenplay.Document{}, fmt.Errorf("scan block: %w", err)
		}
		b.Type = screenplay.BlockType(typ)
		doc.Blocks = append(doc.Blocks, b)
	}
	return doc, rows.Err()
}

// DeleteDocument removes a document with its blocks. Scenes cut from it keep
// their text but lose the link.
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE scenes SET document_id = NULL WHERE document_id = ?`, id); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("unlink scenes: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("delete document: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		_ = tx.Rollback()
		return fmt.Errorf("document %s: %w", id, ErrNotFound)
	}
	return tx.Commit()
}
