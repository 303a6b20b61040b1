/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package backend

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"sceneweaver/internal/breakdown"
	"sceneweaver/internal/coverage"
	"sceneweaver/internal/screenplay"
	"sceneweaver/internal/storage"
)

var _ breakdown.ShotStore = (*PGStore)(nil)

// language=SQL
// dialect=PostgreSQL
const upsertSceneSQL = `INSERT INTO scenes(id, document_id, order_index, slug_line, script_text, characters, coverage_preset, style_mode)
VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7, $8)
ON CONFLICT (id) DO UPDATE SET
	document_id = EXCLUDED.document_id,
	order_index = EXCLUDED.order_index,
	slug_line = EXCLUDED.slug_line,
	script_text = EXCLUDED.script_text,
	characters = EXCLUDED.characters,
	coverage_preset = EXCLUDED.coverage_preset,
	style_mode = EXCLUDED.style_mode,
	updated_at = now()`

// language=SQL
// dialect=PostgreSQL
const selectSceneColumns = `SELECT id, COALESCE(document_id::text, ''), order_index, slug_line, script_text, characters::text, coverage_preset, style_mode FROM scenes`

// language=SQL
// dialect=PostgreSQL
const insertShotSQL = `INSERT INTO shots(id, scene_id, shot_number, shot_type, prompt, description, duration, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

// SaveDocument stores doc under a new id and returns it.
func (s *PGStore) SaveDocument(ctx context.Context, title string, doc screenplay.Document) (string, error) {
	id := uuid.NewString()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO documents(id, title) VALUES ($1, $2)`, id, strings.TrimSpace(title)); err != nil {
		_ = tx.Rollback()
		return "", fmt.Errorf("insert document: %w", err)
	}
	for i, b := range doc.Blocks {
		if _, err := tx.ExecContext(ctx, `INSERT INTO blocks(document_id, position, block_type, text) VALUES ($1, $2, $3, $4)`,
			id, i, string(b.Type), b.Text); err != nil {
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
func (s *PGStore) LoadDocument(ctx context.Context, id string) (screenplay.Document, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM documents WHERE id::text = $1`, id).Scan(&n); err != nil {
		return screenplay.Document{}, fmt.Errorf("read document: %w", err)
	}
	if n == 0 {
		return screenplay.Document{}, fmt.Errorf("document %s: %w", id, storage.ErrNotFound)
	}
	rows, err := s.db.QueryContext(ctx, `SELECT block_type, text FROM blocks WHERE document_id::text = $1 ORDER BY position`, id)
	if err != nil {
		return screenplay.Document{}, fmt.Errorf("query blocks: %w", err)
	}
	defer func() { _ = rows.Close() }()
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

// SaveScene inserts or updates r and returns its id.
func (s *PGStore) SaveScene(ctx context.Context, r storage.SceneRecord) (string, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.SlugLine == "" {
		r.SlugLine = screenplay.SlugLine(r.ScriptText)
	}
	chars := r.Characters
	if chars == nil {
		chars = []string{}
	}
	cj, err := json.Marshal(chars)
	if err != nil {
		return "", fmt.Errorf("marshal characters: %w", err)
	}
	var docID any
	if r.DocumentID != "" {
		docID = r.DocumentID
	}
	if _, err := s.db.ExecContext(ctx, upsertSceneSQL, r.ID, docID, r.OrderIndex, r.SlugLine, r.ScriptText,
		string(cj), r.CoveragePreset, r.StyleMode); err != nil {
		return "", fmt.Errorf("save scene: %w", err)
	}
	return r.ID, nil
}

// GetScene reads one scene.
func (s *PGStore) GetScene(ctx context.Context, id string) (storage.SceneRecord, error) {
	var r storage.SceneRecord
	var chars string
	err := s.db.QueryRowContext(ctx, selectSceneColumns+` WHERE id = $1`, id).
		Scan(&r.ID, &r.DocumentID, &r.OrderIndex, &r.SlugLine, &r.ScriptText, &chars, &r.CoveragePreset, &r.StyleMode)
	if errors.Is(err, sql.ErrNoRows) {
		return r, fmt.Errorf("scene %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return r, fmt.Errorf("scan scene: %w", err)
	}
	if err := json.Unmarshal([]byte(chars), &r.Characters); err != nil {
		return r, fmt.Errorf("decode characters of scene %s: %w", r.ID, err)
	}
	return r, nil
}

// ReplaceShots deletes the shots stored for sceneID and inserts shots in one
// transaction. A scene row is created when sceneID is not stored yet.
func (s *PGStore) ReplaceShots(ctx context.Context, sceneID string, shots []breakdown.Shot) error {
	if strings.TrimSpace(sceneID) == "" {
		return errors.New("scene id is required")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO scenes(id) VALUES ($1) ON CONFLICT (id) DO NOTHING`, sceneID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("ensure scene: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM shots WHERE scene_id = $1`, sceneID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear shots: %w", err)
	}
	for _, sh := range shots {
		if _, err := tx.ExecContext(ctx, insertShotSQL, uuid.NewString(), sceneID, sh.OrderIndex, string(sh.ShotType),
			sh.Prompt, sh.Description, sh.DurationSeconds, storage.StatusPending); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert shot: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ListShots returns the shots of sceneID ordered by shot number.
func (s *PGStore) ListShots(ctx context.Context, sceneID string) ([]storage.ShotRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id::text, scene_id, shot_number, shot_type, prompt, description, duration, status
FROM shots WHERE scene_id = $1 ORDER BY shot_number`, sceneID)
	if err != nil {
		return nil, fmt.Errorf("query shots: %w", err)
	}
	defer func() { _ = rows.Close() }()
	out := []storage.ShotRecord{}
	for rows.Next() {
		var r storage.ShotRecord
		var typ string
		if err := rows.Scan(&r.ID, &r.SceneID, &r.OrderIndex, &typ, &r.Prompt, &r.Description, &r.DurationSeconds, &r.Status); err != nil {
			return nil, fmt.Errorf("scan shot: %w", err)
		}
		r.ShotType = coverage.ShotType(typ)
		out = append(out, r)
	}
	return out, rows.Err()
}

// SetShotStatus updates the generation status of one shot.
func (s *PGStore) SetShotStatus(ctx context.Context, shotID, status string) error {
	if !storage.ValidShotStatus(status) {
		return fmt.Errorf("unknown shot status %q", status)
	}
	res, err := s.db.ExecContext(ctx, `UPDATE shots SET status = $1 WHERE id::text = $2`, status, shotID)
	if err != nil {
		return fmt.Errorf("update shot status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("shot %s: %w", shotID, storage.ErrNotFound)
	}
	return nil
}
