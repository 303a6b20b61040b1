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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"sceneweaver/internal/breakdown"
	"sceneweaver/internal/coverage"
	"sceneweaver/internal/screenplay"

	_ "modernc.org/sqlite"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), DefaultFileName))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpenCreatesWALAndSchema(t *testing.T) {
	s := openTestStore(t)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	var mode string
	if err := s.DB().QueryRowContext(ctx, "PRAGMA journal_mode;").Scan(&mode); err != nil {
		t.Fatalf("read journal_mode: %v", err)
	}
	if mode != "wal" && mode != "WAL" {
		t.Fatalf("expected WAL mode, got %s", mode)
	}
	var cnt int
	if err := s.DB().QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name IN ('meta','version','documents','blocks','scenes','shots','fts_blocks')").Scan(&cnt); err != nil {
		t.Fatalf("query sqlite_master: %v", err)
	}
	if cnt != 7 {
		t.Fatalf("expected 7 tables, got %d", cnt)
	}
	v, err := s.SchemaVersion(ctx)
	if err != nil || v != schemaVersion {
		t.Fatalf("schema version = %d, %v", v, err)
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

// TestMigrationV1ToV2 seeds a v1 database holding blocks and checks they are
// searchable after the upgrade.
func TestMigrationV1ToV2(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(2000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	stmts := []string{
		`PRAGMA journal_mode=WAL;`,
		`CREATE TABLE meta (key TEXT PRIMARY KEY, value TEXT NOT NULL);`,
		`CREATE TABLE version (id INTEGER PRIMARY KEY CHECK(id=1), schema INTEGER NOT NULL, app TEXT, created_at TEXT NOT NULL, updated_at TEXT NOT NULL);`,
		`INSERT INTO version(id, schema, app, created_at, updated_at) VALUES(1, 1, 'test', '2020-01-01T00:00:00Z', '2020-01-01T00:00:00Z');`,
		`CREATE TABLE documents (id TEXT PRIMARY KEY, title TEXT NOT NULL, created_at TEXT NOT NULL);`,
		`CREATE TABLE blocks (block_id INTEGER PRIMARY KEY, document_id TEXT NOT NULL, position INTEGER NOT NULL, type TEXT NOT NULL, text TEXT NOT NULL);`,
		`INSERT INTO documents VALUES('d1', 'old', '2020-01-01T00:00:00Z');`,
		`INSERT INTO blocks(document_id, position, type, text) VALUES('d1', 0, 'sceneHeading', 'INT. LIGHTHOUSE - NIGHT');`,
	}
	for _, q := range stmts {
		if _, err := db.ExecContext(ctx, q); err != nil {
			t.Fatalf("seed v1 schema: %v (q=%s)", err, q)
		}
	}
	db.Close()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()
	if v, _ := s.SchemaVersion(ctx); v != 2 {
		t.Fatalf("expected schema 2 after migration, got %d", v)
	}
	res, err := s.SearchBlocks(ctx, SearchQuery{Text: "lighthouse"})
	if err != nil {
		t.Fatalf("SearchBlocks: %v", err)
	}
	if len(res) != 1 || res[0].DocumentID != "d1" {
		t.Fatalf("expected migrated block to be indexed, got %+v", res)
	}
}

func TestOpenOrRecoverOnCorruption(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFileName)
	if err := os.WriteFile(path, []byte("THIS IS NOT SQLITE"), 0o644); err != nil {
		t.Fatalf("write corrupt: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s, rebuilt, err := OpenOrRecover(ctx, path)
	if err != nil {
		t.Fatalf("OpenOrRecover: %v", err)
	}
	defer s.Close()
	if !rebuilt {
		t.Fatalf("expected rebuild to occur")
	}
	ents, err := os.ReadDir(filepath.Join(dir, "backups"))
	if err != nil || len(ents) == 0 {
		t.Fatalf("expected backup of corrupt file: %v", err)
	}
	if _, err := s.ListScenes(ctx, ""); err != nil {
		t.Fatalf("recreated store unusable: %v", err)
	}

	// a healthy store is left alone
	s2, rebuilt, err := OpenOrRecover(ctx, filepath.Join(dir, "fresh.sqlite"))
	if err != nil || rebuilt {
		t.Fatalf("fresh store: rebuilt=%v err=%v", rebuilt, err)
	}
	s2.Close()
}

func TestDocumentRoundTripAndSearch(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	doc := screenplay.Document{Blocks: []screenplay.Block{
		{Type: screenplay.SceneHeading, Text: "INT. KITCHEN - DAY"},
		{Type: screenplay.Character, Text: "JOHN"},
		{Type: screenplay.Dialogue, Text: "Where are the keys?"},
	}}
	id, err := s.SaveDocument(ctx, "Pilot", doc)
	if err != nil {
		t.Fatalf("SaveDocument: %v", err)
	}
	got, err := s.LoadDocument(ctx, id)
	if err != nil {
		t.Fatalf("LoadDocument: %v", err)
	}
	if diff := cmp.Diff(doc, got); diff != "" {
		t.Fatalf("document mismatch (-want +got):\n%s", diff)
	}

	res, err := s.SearchBlocks(ctx, SearchQuery{Text: "keys"})
	if err != nil {
		t.Fatalf("SearchBlocks: %v", err)
	}
	if len(res) != 1 || res[0].Position != 2 || res[0].Type != "dialogue" {
		t.Fatalf("unexpected search results %+v", res)
	}
	res, err = s.SearchBlocks(ctx, SearchQuery{Types: []string{"character"}, DocumentID: id})
	if err != nil || len(res) != 1 || res[0].Text != "JOHN" {
		t.Fatalf("filtered listing = %+v, %v", res, err)
	}

	if err := s.DeleteDocument(ctx, id); err != nil {
		t.Fatalf("DeleteDocument: %v", err)
	}
	if _, err := s.LoadDocument(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if res, _ := s.SearchBlocks(ctx, SearchQuery{Text: "keys"}); len(res) != 0 {
		t.Fatalf("deleted blocks still indexed: %+v", res)
	}
}

func TestScenesSaveAndList(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	docID, err := s.SaveDocument(ctx, "Pilot", screenplay.Document{})
	if err != nil {
		t.Fatalf("SaveDocument: %v", err)
	}
	second := SceneRecord{DocumentID: docID, Scene: screenplay.Scene{OrderIndex: 2, ScriptText: "EXT. ROOF - NIGHT\nWind."}}
	first := SceneRecord{DocumentID: docID, Scene: screenplay.Scene{OrderIndex: 1, SlugLine: "INT. HALL", ScriptText: "INT. HALL\nJOHN\nHi.", Characters: []string{"JOHN"}},
		CoveragePreset: "minimal", StyleMode: "cinematic"}
	id2, err := s.SaveScene(ctx, second)
	if err != nil {
		t.Fatalf("SaveScene: %v", err)
	}
	id1, err := s.SaveScene(ctx, first)
	if err != nil {
		t.Fatalf("SaveScene: %v", err)
	}

	list, err := s.ListScenes(ctx, docID)
	if err != nil {
		t.Fatalf("ListScenes: %v", err)
	}
	if len(list) != 2 || list[0].ID != id1 || list[1].ID != id2 {
		t.Fatalf("unexpected order: %+v", list)
	}
	if list[1].SlugLine != "EXT. ROOF - NIGHT" {
		t.Fatalf("slug line not derived: %q", list[1].SlugLine)
	}
	if list[1].Characters == nil || len(list[1].Characters) != 0 {
		t.Fatalf("expected empty characters, got %#v", list[1].Characters)
	}

	first.ID = id1
	first.StyleMode = "storyboard"
	if _, err := s.SaveScene(ctx, first); err != nil {
		t.Fatalf("update scene: %v", err)
	}
	got, err := s.GetScene(ctx, id1)
	if err != nil {
		t.Fatalf("GetScene: %v", err)
	}
	if got.StyleMode != "storyboard" || got.CoveragePreset != "minimal" || got.Characters[0] != "JOHN" {
		t.Fatalf("unexpected scene %+v", got)
	}
	if _, err := s.GetScene(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReplaceShotsRegenerates(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	e := breakdown.NewEngine(nil)
	text := "INT. KITCHEN - DAY\nJOHN\nI can't believe this.\nHe slams the door."

	if _, err := e.Regenerate(ctx, s, "scene-1", breakdown.Request{SceneText: text, PresetID: "heavy"}); err != nil {
		t.Fatalf("Regenerate: %v", err)
	}
	shots, err := s.ListShots(ctx, "scene-1")
	if err != nil {
		t.Fatalf("ListShots: %v", err)
	}
	if len(shots) != 8 {
		t.Fatalf("expected 8 heavy shots, got %d", len(shots))
	}
	for i, sh := range shots {
		if sh.OrderIndex != i+1 || sh.Status != StatusPending || sh.SceneID != "scene-1" {
			t.Fatalf("unexpected shot %d: %+v", i, sh)
		}
	}
	if shots[0].ShotType != coverage.Establishing || shots[0].DurationSeconds != 3.0 {
		t.Fatalf("unexpected first shot %+v", shots[0])
	}

	if _, err := e.Regenerate(ctx, s, "scene-1", breakdown.Request{SceneText: text}); err != nil {
		t.Fatalf("Regenerate heuristic: %v", err)
	}
	shots, _ = s.ListShots(ctx, "scene-1")
	if len(shots) != 3 || shots[1].ShotType != coverage.CloseUp {
		t.Fatalf("shots not replaced: %+v", shots)
	}

	if err := s.SetShotStatus(ctx, shots[0].ID, StatusCompleted); err != nil {
		t.Fatalf("SetShotStatus: %v", err)
	}
	if err := s.SetShotStatus(ctx, shots[0].ID, "done"); err == nil {
		t.Fatalf("expected unknown status to be rejected")
	}
	if err := s.SetShotStatus(ctx, "missing", StatusFailed); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.ReplaceShots(ctx, "", nil); err == nil {
		t.Fatalf("expected error for empty scene id")
	}
}
