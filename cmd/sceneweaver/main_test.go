/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sceneweaver/internal/breakdown"
	"sceneweaver/internal/config"
	"sceneweaver/internal/screenplay"
	"sceneweaver/internal/storage"
)

const kitchenDump = `{"pages":[{"number":1,"words":[
	{"text":"INT.","x0":108,"top":72},{"text":"KITCHEN","x0":131,"top":72},{"text":"-","x0":180,"top":72},{"text":"DAY","x0":188,"top":72},
	{"text":"John","x0":108,"top":100},{"text":"enters.","x0":135,"top":100},
	{"text":"JOHN","x0":266,"top":130},
	{"text":"Where","x0":180,"top":154},{"text":"is","x0":215,"top":154},{"text":"she?","x0":228,"top":154},
	{"text":"EXT.","x0":108,"top":200},{"text":"YARD","x0":131,"top":200},{"text":"-","x0":165,"top":200},{"text":"NIGHT","x0":173,"top":200},
	{"text":"Rain","x0":108,"top":230},{"text":"falls","x0":140,"top":230},{"text":"on","x0":175,"top":230},{"text":"the","x0":192,"top":230},{"text":"empty","x0":218,"top":230},{"text":"yard.","x0":255,"top":230}
]}]}`

// setup isolates config, keyring and database in a temp dir and writes the
// sample token dump.
func setup(t *testing.T) (dir, dump string) {
	t.Helper()
	dir = t.TempDir()
	t.Setenv(config.EnvConfigFile, filepath.Join(dir, "config.yaml"))
	t.Setenv(config.EnvPGDSN, "postgres://unused")
	t.Setenv(config.EnvSQLitePath, filepath.Join(dir, storage.DefaultFileName))
	t.Setenv(config.EnvStoreDriver, "")
	dump = filepath.Join(dir, "kitchen.json")
	if err := os.WriteFile(dump, []byte(kitchenDump), 0o644); err != nil {
		t.Fatalf("write dump: %v", err)
	}
	return dir, dump
}

func run(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	var out, errOut bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &errOut
	app.Reader = strings.NewReader(stdin)
	if err := app.Run(append([]string{"sceneweaver"}, args...)); err != nil {
		t.Fatalf("run %v: %v\nstderr: %s", args, err, errOut.String())
	}
	return out.String()
}

func TestParseBlocks(t *testing.T) {
	_, dump := setup(t)
	var blocks []screenplay.Block
	if err := json.Unmarshal([]byte(run(t, "", "parse", dump)), &blocks); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []screenplay.BlockType{
		screenplay.SceneHeading, screenplay.Action, screenplay.Character, screenplay.Dialogue,
		screenplay.SceneHeading, screenplay.Action,
	}
	if len(blocks) != len(want) {
		t.Fatalf("blocks = %+v", blocks)
	}
	for i, b := range blocks {
		if b.Type != want[i] {
			t.Fatalf("block %d = %+v, want type %s", i, b, want[i])
		}
	}
	if blocks[4].Text != "EXT. YARD - NIGHT" {
		t.Fatalf("heading text = %q", blocks[4].Text)
	}
}

func TestParseFromStdinAsTiptap(t *testing.T) {
	setup(t)
	out := run(t, kitchenDump, "parse", "--output", "tiptap", "-")
	var root screenplay.TiptapNode
	if err := json.Unmarshal([]byte(out), &root); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if root.Type != "doc" || len(root.Content) != 6 || root.Content[0].Type != "sceneHeading" {
		t.Fatalf("tiptap = %+v", root)
	}
}

func TestParseTiptapInput(t *testing.T) {
	dir, dump := setup(t)
	tip := filepath.Join(dir, "kitchen.tiptap.json")
	if err := os.WriteFile(tip, []byte(run(t, "", "parse", "--output", "tiptap", dump)), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	var fromDump, fromTiptap []screenplay.Block
	if err := json.Unmarshal([]byte(run(t, "", "parse", dump)), &fromDump); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if err := json.Unmarshal([]byte(run(t, "", "parse", "--format", "tiptap", tip)), &fromTiptap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(fromTiptap) != len(fromDump) {
		t.Fatalf("tiptap blocks = %+v, want %+v", fromTiptap, fromDump)
	}
	for i := range fromDump {
		if fromTiptap[i] != fromDump[i] {
			t.Fatalf("block %d = %+v, want %+v", i, fromTiptap[i], fromDump[i])
		}
	}
}

func TestParseExplain(t *testing.T) {
	_, dump := setup(t)
	out := run(t, "", "parse", "--explain", dump)
	if !strings.Contains(out, "heading/scene-prefix") || !strings.Contains(out, "character/uppercase") {
		t.Fatalf("explain output:\n%s", out)
	}
}

func TestParseBrokenDumpYieldsErrorBlock(t *testing.T) {
	dir, _ := setup(t)
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"pages":"nope"}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	var blocks []screenplay.Block
	if err := json.Unmarshal([]byte(run(t, "", "parse", bad)), &blocks); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(blocks) != 1 || blocks[0].Type != screenplay.Action || !strings.HasPrefix(blocks[0].Text, screenplay.ErrorPrefix) {
		t.Fatalf("blocks = %+v", blocks)
	}
}

func TestScenes(t *testing.T) {
	_, dump := setup(t)
	var scenes []screenplay.Scene
	if err := json.Unmarshal([]byte(run(t, "", "scenes", dump)), &scenes); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(scenes) != 2 || scenes[0].SlugLine != "INT. KITCHEN - DAY" || scenes[1].OrderIndex != 2 {
		t.Fatalf("scenes = %+v", scenes)
	}
	if len(scenes[0].Characters) != 1 || scenes[0].Characters[0] != "JOHN" {
		t.Fatalf("characters = %v", scenes[0].Characters)
	}
}

func TestBreakdownSceneTextHeuristic(t *testing.T) {
	dir, _ := setup(t)
	text := filepath.Join(dir, "scene.txt")
	if err := os.WriteFile(text, []byte("INT. KITCHEN - DAY\nJOHN\nHe slams the door."), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	var shots []breakdown.Shot
	if err := json.Unmarshal([]byte(run(t, "", "breakdown", "--heuristic", "--text", text)), &shots); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(shots) != 3 {
		t.Fatalf("shots = %+v", shots)
	}
	if shots[0].ShotType != "wide" || shots[1].ShotType != "close_up" || shots[2].ShotType != "medium" {
		t.Fatalf("shot types = %s %s %s", shots[0].ShotType, shots[1].ShotType, shots[2].ShotType)
	}
}

func TestBreakdownStoreExportSearch(t *testing.T) {
	dir, dump := setup(t)
	bundlePath := filepath.Join(dir, "night.json")
	run(t, "", "breakdown", "--input", dump, "--preset", "minimal", "--title", "Night", "--store", "--bundle", bundlePath)

	b, err := storage.LoadBundle(bundlePath)
	if err != nil {
		t.Fatalf("load bundle: %v", err)
	}
	if b.Title != "Night" || len(b.Scenes) != 2 {
		t.Fatalf("bundle = %+v", b)
	}
	for _, sc := range b.Scenes {
		if len(sc.Shots) == 0 {
			t.Fatalf("scene %d has no shots", sc.OrderIndex)
		}
	}

	outDir := filepath.Join(dir, "exports")
	out := run(t, "", "export", "--format", "csv", "--format", "fcpxml", "--out", outDir, bundlePath)
	for _, name := range []string{"Night_shot_list.csv", "Night.fcpxml"} {
		if !strings.Contains(out, name) {
			t.Fatalf("export output missing %s:\n%s", name, out)
		}
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Fatalf("missing %s: %v", name, err)
		}
	}

	found := run(t, "", "search", "yard")
	if !strings.Contains(found, "Total: 2 blocks") {
		t.Fatalf("search output:\n%s", found)
	}
}

func TestShotsSetStatus(t *testing.T) {
	dir, _ := setup(t)
	text := filepath.Join(dir, "scene.txt")
	if err := os.WriteFile(text, []byte("INT. KITCHEN - DAY\nJOHN\nHe slams the door."), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	run(t, "", "breakdown", "--preset", "minimal", "--text", text, "--store", "--scene-id", "kitchen")

	list := func() []storage.ShotRecord {
		st, err := storage.Open(filepath.Join(dir, storage.DefaultFileName))
		if err != nil {
			t.Fatalf("open: %v", err)
		}
		defer func() { _ = st.Close() }()
		shots, err := st.ListShots(context.Background(), "kitchen")
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		return shots
	}
	shots := list()
	if len(shots) == 0 || shots[0].Status != storage.StatusPending {
		t.Fatalf("shots = %+v", shots)
	}

	run(t, "", "shots", "set-status", shots[0].ID, "completed")
	if got := list()[0].Status; got != storage.StatusCompleted {
		t.Fatalf("status = %q, want completed", got)
	}
	if out := run(t, "", "shots", "kitchen"); !strings.Contains(out, storage.StatusCompleted) {
		t.Fatalf("shots output:\n%s", out)
	}

	app := newApp()
	app.Writer, app.ErrWriter = &bytes.Buffer{}, &bytes.Buffer{}
	if err := app.Run([]string{"sceneweaver", "shots", "set-status", shots[0].ID, "lost"}); err == nil {
		t.Fatalf("unknown status accepted")
	}
}

func TestPresetsAndVersion(t *testing.T) {
	setup(t)
	out := run(t, "", "presets")
	for _, id := range []string{"minimal", "standard", "heavy"} {
		if !strings.Contains(out, id) {
			t.Fatalf("presets output missing %s:\n%s", id, out)
		}
	}
	if v := run(t, "", "version"); strings.TrimSpace(v) == "" {
		t.Fatalf("empty version")
	}
}

func TestConfigShowHidesDSN(t *testing.T) {
	setup(t)
	out := run(t, "", "config", "show")
	if strings.Contains(out, "postgres://unused") {
		t.Fatalf("dsn leaked:\n%s", out)
	}
	if !strings.Contains(out, "set via SW_PG_DSN") || !strings.Contains(out, "driver: sqlite") {
		t.Fatalf("config show:\n%s", out)
	}
}
