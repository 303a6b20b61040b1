/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package breakdown

import (
	"context"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"sceneweaver/internal/coverage"
	applog "sceneweaver/internal/log"
)

// RunesPerShot is the amount of scene text that earns one preset shot.
const RunesPerShot = 200

// PresetShotSeconds is the duration of every preset shot.
const PresetShotSeconds = 3.0

// Engine derives shot lists. It holds no mutable state and is safe for
// concurrent use.
type Engine struct {
	catalog *coverage.Catalog
}

// NewEngine returns an engine over catalog; nil selects coverage.Default().
func NewEngine(catalog *coverage.Catalog) *Engine {
	if catalog == nil {
		catalog = coverage.Default()
	}
	return &Engine{catalog: catalog}
}

// Catalog returns the preset table the engine resolves ids against.
func (e *Engine) Catalog() *coverage.Catalog { return e.catalog }

// Breakdown returns the shot list for req. An empty PresetID runs Heuristic;
// any other id runs the preset, falling back to the standard preset for ids
// the catalog does not know. An empty or unknown Style is storyboard.
func (e *Engine) Breakdown(req Request) []Shot {
	req.Style = coverage.ParseStyleMode(string(req.Style))
	if req.PresetID == "" {
		return Heuristic(req.SceneText)
	}
	p, _ := e.catalog.Lookup(req.PresetID)
	return e.fromPreset(p, req)
}

// ShotCount is the number of shots p gives a scene of text: one per
// RunesPerShot runes, clamped to the preset's range.
func ShotCount(p coverage.Preset, text string) int {
	n := utf8.RuneCountInString(text) / RunesPerShot
	if n < p.MinShots {
		n = p.MinShots
	}
	if n > p.MaxShots {
		n = p.MaxShots
	}
	return n
}

func (e *Engine) fromPreset(p coverage.Preset, req Request) []Shot {
	n := ShotCount(p, req.SceneText)
	shots := make([]Shot, 0, n)
	if len(p.ShotTypes) == 0 {
		return shots
	}

	pc := PromptContext{
		Location:  req.Location.Text(),
		SceneText: req.SceneText,
		Style:     req.Style,
	}
	for _, c := range req.Cast {
		pc.Cast = append(pc.Cast, c.Name)
	}

	for i := 0; i < n; i++ {
		t := p.ShotTypes[i%len(p.ShotTypes)]
		shots = append(shots, Shot{
			Prompt:          ComposePrompt(t, pc),
			ShotType:        t,
			OrderIndex:      i + 1,
			DurationSeconds: PresetShotSeconds,
			Description:     t.Description(),
		})
	}
	return shots
}

// Regenerate computes the shot list for req and replaces the stored shots of
// sceneID with it.
func (e *Engine) Regenerate(ctx context.Context, store ShotStore, sceneID string, req Request) ([]Shot, error) {
	l := applog.WithOperation(applog.WithComponent("breakdown"), "regenerate")
	ctx = applog.ContextWithScene(ctx, sceneID)
	shots := e.Breakdown(req)
	if err := store.ReplaceShots(ctx, sceneID, shots); err != nil {
		l.ErrorContext(ctx, "store shots failed", slog.Any("err", err))
		return nil, fmt.Errorf("store shots for scene %s: %w", sceneID, err)
	}
	l.InfoContext(ctx, "shots regenerated", slog.Int("count", len(shots)), slog.String("preset", req.PresetID))
	return shots, nil
}
