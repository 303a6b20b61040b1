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
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sceneweaver/internal/coverage"
)

const kitchen = "INT. KITCHEN - DAY\nJOHN\nI can't believe this.\nHe slams the door."

func TestHeuristicKitchen(t *testing.T) {
	shots := Heuristic(kitchen)
	require.Len(t, shots, 3)

	assert.Equal(t, coverage.Wide, shots[0].ShotType)
	assert.Equal(t, "Wide establishing shot of KITCHEN, cinematic lighting, 8k", shots[0].Prompt)
	assert.Equal(t, 5.0, shots[0].DurationSeconds)

	assert.Equal(t, coverage.CloseUp, shots[1].ShotType)
	assert.Equal(t, "Close up of JOHN speaking, emotional expression, detailed face", shots[1].Prompt)
	assert.Equal(t, 4.0, shots[1].DurationSeconds)

	assert.Equal(t, coverage.Medium, shots[2].ShotType)
	assert.Equal(t, "Medium shot of He slams the door., dynamic angle", shots[2].Prompt)

	for i, s := range shots {
		assert.Equal(t, i+1, s.OrderIndex)
	}
}

func TestHeuristicUnknownLocationAndCap(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 20; i++ {
		sb.WriteString("Something happens over here.\n")
	}
	shots := Heuristic(sb.String())
	require.Len(t, shots, MaxHeuristicShots)
	assert.Equal(t, "Wide establishing shot of Unknown Location, cinematic lighting, 8k", shots[0].Prompt)
	assert.Equal(t, MaxHeuristicShots, shots[len(shots)-1].OrderIndex)
}

func TestHeuristicEdgeLines(t *testing.T) {
	text := "EXT. HARBOR\nMARY\n(sighing)\nFine.\nShort one\nTHIS IS A VERY LONG SHOUTED LINE OF ACTION TEXT"
	shots := Heuristic(text)
	require.Len(t, shots, 2)
	assert.Equal(t, "Wide establishing shot of HARBOR, cinematic lighting, 8k", shots[0].Prompt)
	// parenthetical keeps the cue pending, "Fine." is the speech
	assert.Equal(t, "Close up of MARY speaking, emotional expression, detailed face", shots[1].Prompt)
}

func TestHeuristicEmpty(t *testing.T) {
	shots := Heuristic("")
	require.Len(t, shots, 1)
	assert.Equal(t, coverage.Wide, shots[0].ShotType)
}

func TestExtractLocation(t *testing.T) {
	assert.Equal(t, "OFFICE", ExtractLocation("EXT. OFFICE - NIGHT"))
	assert.Equal(t, "ROOFTOP", ExtractLocation("Cold open.\nINT. ROOFTOP\nWind."))
	assert.Equal(t, "den", ExtractLocation("int. den - day"))
	assert.Equal(t, UnknownLocation, ExtractLocation("No heading here"))
}

func TestExtractLocationIgnoresWordEndings(t *testing.T) {
	text := "He sends a text. Nobody answers the phone.\nWhat comes next. The print. A hint. Silence."
	assert.Equal(t, UnknownLocation, ExtractLocation(text))
	shots := Heuristic(text)
	assert.Equal(t, "Wide establishing shot of Unknown Location, cinematic lighting, 8k", shots[0].Prompt)
	assert.Equal(t, "BAR", ExtractLocation("  INT. BAR - NIGHT"))
	assert.Equal(t, "DOCKS", ExtractLocation("Cut to black.\nEXT. DOCKS - DAY"))
}

func TestBreakdownEmptyStyleIsStoryboard(t *testing.T) {
	shots := NewEngine(nil).Breakdown(Request{SceneText: "INT. HOUSE - DAY", PresetID: "minimal"})
	require.NotEmpty(t, shots)
	for _, s := range shots {
		assert.True(t, strings.HasSuffix(s.Prompt, coverage.Storyboard.Modifier()), s.Prompt)
	}
	odd := NewEngine(nil).Breakdown(Request{SceneText: "INT. HOUSE - DAY", PresetID: "minimal", Style: "watercolor"})
	assert.True(t, strings.HasSuffix(odd[0].Prompt, coverage.Storyboard.Modifier()), odd[0].Prompt)
}

func TestPresetCountsWithinRange(t *testing.T) {
	e := NewEngine(nil)
	for _, p := range e.Catalog().Presets() {
		for _, size := range []int{0, 1, 199, 200, 1000, 1600, 2400, 10000} {
			text := strings.Repeat("x", size)
			shots := e.Breakdown(Request{SceneText: text, PresetID: p.ID})
			assert.GreaterOrEqual(t, len(shots), p.MinShots, "%s/%d", p.ID, size)
			assert.LessOrEqual(t, len(shots), p.MaxShots, "%s/%d", p.ID, size)
			assert.Equal(t, ShotCount(p, text), len(shots))
		}
	}
}

func TestPresetCyclesShotTypes(t *testing.T) {
	e := NewEngine(nil)
	shots := e.Breakdown(Request{SceneText: strings.Repeat("a", 2000), PresetID: "minimal"})
	require.Len(t, shots, 5)
	want := []coverage.ShotType{coverage.Wide, coverage.Medium, coverage.CloseUp, coverage.Wide, coverage.Medium}
	for i, s := range shots {
		assert.Equal(t, want[i], s.ShotType)
		assert.Equal(t, i+1, s.OrderIndex)
		assert.Equal(t, PresetShotSeconds, s.DurationSeconds)
		assert.Equal(t, s.ShotType.Description(), s.Description)
	}
}

func TestUnknownPresetIsStandard(t *testing.T) {
	e := NewEngine(nil)
	a := e.Breakdown(Request{SceneText: kitchen, PresetID: "bogus"})
	b := e.Breakdown(Request{SceneText: kitchen, PresetID: "standard"})
	assert.Equal(t, b, a)
	require.Len(t, a, 5)
	assert.Equal(t, coverage.Establishing, a[0].ShotType)
}

func TestPresetPromptUsesContext(t *testing.T) {
	e := NewEngine(nil)
	shots := e.Breakdown(Request{
		SceneText: kitchen,
		PresetID:  "minimal",
		Cast:      []CastMember{{Name: "John"}, {Name: ""}, {Name: "Mary"}, {Name: "Ann"}},
		Location:  &Location{Name: "Kitchen set", Description: "a cramped kitchen"},
		Style:     coverage.Cinematic,
	})
	require.NotEmpty(t, shots)
	assert.Equal(t, "Wide shot showing the entire scene and environment. Location: a cramped kitchen. "+
		"Characters: John, Mary. Scene: INT. KITCHEN - DAY JOHN I can't believe this. He slams the door..... "+
		"cinematic, photorealistic, dramatic lighting, film grain, 35mm", shots[0].Prompt)
}

func TestBreakdownConcurrent(t *testing.T) {
	e := NewEngine(nil)
	want := e.Breakdown(Request{SceneText: kitchen, PresetID: "heavy"})
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, want, e.Breakdown(Request{SceneText: kitchen, PresetID: "heavy"}))
		}()
	}
	wg.Wait()
}

type memStore struct {
	byScene map[string][]Shot
	err     error
}

func (m *memStore) ReplaceShots(_ context.Context, sceneID string, shots []Shot) error {
	if m.err != nil {
		return m.err
	}
	if m.byScene == nil {
		m.byScene = map[string][]Shot{}
	}
	m.byScene[sceneID] = append([]Shot(nil), shots...)
	return nil
}

func TestRegenerateReplaces(t *testing.T) {
	e := NewEngine(nil)
	st := &memStore{}
	_, err := e.Regenerate(context.Background(), st, "s1", Request{SceneText: kitchen, PresetID: "heavy"})
	require.NoError(t, err)
	require.Len(t, st.byScene["s1"], 8)

	shots, err := e.Regenerate(context.Background(), st, "s1", Request{SceneText: kitchen})
	require.NoError(t, err)
	assert.Len(t, shots, 3)
	assert.Len(t, st.byScene["s1"], 3)

	st.err = errors.New("disk full")
	_, err = e.Regenerate(context.Background(), st, "s1", Request{SceneText: kitchen})
	assert.ErrorIs(t, err, st.err)
}
