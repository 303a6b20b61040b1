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
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"sceneweaver/internal/screenplay"
)

// SceneRecord is a stored scene.
type SceneRecord struct {
	ID         string
	DocumentID string
	screenplay.Scene
	CoveragePreset string
	StyleMode      string
}

// language=SQL
// dialect=SQLite
const upsertSceneSQL = `INSERT INTO scenes(id, document_id, order_index, slug_line, script_text, characters, coverage_preset, style_mode, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	document_id = excluded.document_id,
	order_index = excluded.order_index,
	slug_line = excluded.slug_line,
	script_text = excluded.script_text,
	characters = excluded.characters,
	coverage_preset = excluded.coverage_preset,
	style_mode = excluded.style_mode,
	updated_at = excluded.updated_at`

// language=SQL
// dialect=SQLite
const selectSceneColumns = `SELECT id, COALESCE(document_id, ''), order_index, slug_line, script_text, characters, coverage_preset, style_mode FROM scenes`

// SaveScene inserts or updates r and returns its id. A record without an id
// gets a new one. An empty slug line is taken from the first line of the
// script text when it reads like a heading.
func (s *Store) SaveScene(ctx context.Context, r SceneRecord) (string, error) {
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
	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := s.db.ExecContext(ctx, upsertSceneSQL, r.ID, nullString(r.DocumentID), r.OrderIndex, r.SlugLine, r.ScriptText,
		string(cj), r.CoveragePreset, r.StyleMode, now, now); err != nil {
		return "", fmt.Errorf("save scene: %w", err)
	}
	return r.ID, nil
}

// GetScene reads one scene.
func (s *Store) GetScene(ctx context.Context, id string) (SceneRecord, error) {
	row := s.db.QueryRowContext(ctx, selectSceneColumns+` WHERE id = ?`, id)
	r, err := scanScene(row)
	if errors.Is(err, sql.ErrNoRows) {
		return SceneRecord{}, fmt.Errorf("scene %s: %w", id, ErrNotFound)
	}
	return r, err
}

// ListScenes returns the scenes cut from documentID in order. An empty id
// lists every scene.
func (s *Store) ListScenes(ctx context.Context, documentID string) ([]SceneRecord, error) {
	q := selectSceneColumns + ` ORDER BY order_index, created_at`
	var args []any
	if documentID != "" {
		q = selectSceneColumns + ` WHERE document_id = ? ORDER BY order_index, created_at`
		args = append(args, documentID)
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query scenes: %w", err)
	}
	defer rows.Close()
	out := []SceneRecord{}
	for rows.Next() {
		r, err := scanScene(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanScene(sc scanner) (SceneRecord, error) {
	var r SceneRecord
	var chars string
	if err := sc.Scan(&r.ID, &r.DocumentID, &r.OrderIndex, &r.SlugLine, &r.ScriptText, &chars, &r.CoveragePreset, &r.StyleMode); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return r, err
		}
		return r, fmt.Errorf("scan scene: %w", err)
	}
	if err := json.Unmarshal([]byte(chars), &r.Characters); err != nil {
		return r, fmt.Errorf("decode characters of scene %s: %w", r.ID, err)
	}
	return r, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
