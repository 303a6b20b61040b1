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
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"sceneweaver/internal/breakdown"
	"sceneweaver/internal/coverage"
)

// Shot statuses.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// ShotRecord is a stored shot.
type ShotRecord struct {
	ID      string
	SceneID string
	Status  string
	breakdown.Shot
}

// language=SQL
// dialect=SQLite
const ensureSceneSQL = `INSERT INTO scenes(id, slug_line, script_text, created_at, updated_at) VALUES (?, '', '', ?, ?)
ON CONFLICT(id) DO NOTHING`

// language=SQL
// dialect=SQLite
const insertShotSQL = `INSERT INTO shots(id, scene_id, shot_number, shot_type, prompt, description, duration, status, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

// language=SQL
// dialect=SQLite
const listShotsSQL = `SELECT id, scene_id, shot_number, shot_type, prompt, description, duration, status
FROM shots WHERE scene_id = ? ORDER BY shot_number`

var _ breakdown.ShotStore = (*Store)(nil)

// ReplaceShots deletes the shots stored for sceneID and inserts shots in one
// transaction. A scene row is created when sceneID is not stored yet.
func (s *Store) ReplaceShots(ctx context.Context, sceneID string, shots []breakdown.Shot) error {
	if strings.TrimSpace(sceneID) == "" {
		return errors.New("scene id is required")
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx, ensureSceneSQL, sceneID, now, now); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("ensure scene: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM shots WHERE scene_id = ?`, sceneID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear shots: %w", err)
	}
	ins, err := tx.PrepareContext(ctx, insertShotSQL)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer ins.Close()
	for _, sh := range shots {
		if _, err := ins.ExecContext(ctx, uuid.NewString(), sceneID, sh.OrderIndex, string(sh.ShotType), sh.Prompt,
			sh.Description, sh.DurationSeconds, StatusPending, now); err != nil {
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
func (s *Store) ListShots(ctx context.Context, sceneID string) ([]ShotRecord, error) {
	rows, err := s.db.QueryContext(ctx, listShotsSQL, sceneID)
	if err != nil {
		return nil, fmt.Errorf("query shots: %w", err)
	}
	defer rows.Close()
	out := []ShotRecord{}
	for rows.Next() {
		var r ShotRecord
		var typ string
		if err := rows.Scan(&r.ID, &r.SceneID, &r.OrderIndex, &typ, &r.Prompt, &r.Description, &r.DurationSeconds, &r.Status); err != nil {
			return nil, fmt.Errorf("scan shot: %w", err)
		}
		r.ShotType = coverage.ShotType(typ)
		out = append(out, r)
	}
	return out, rows.Err()
}

// ValidShotStatus reports whether status is pending, completed or failed.
func ValidShotStatus(status string) bool {
	switch status {
	case StatusPending, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// SetShotStatus updates the generation status of one shot.
func (s *Store) SetShotStatus(ctx context.Context, shotID, status string) error {
	if !ValidShotStatus(status) {
		return fmt.Errorf("unknown shot status %q", status)
	}
	res, err := s.db.ExecContext(ctx, `UPDATE shots SET status = ? WHERE id = ?`, status, shotID)
	if err != nil {
		return fmt.Errorf("update shot status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("shot %s: %w", shotID, ErrNotFound)
	}
	return nil
}
