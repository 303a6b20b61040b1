/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package coverage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinPresets(t *testing.T) {
	c := Default()
	ids := []string{}
	for _, p := range c.Presets() {
		ids = append(ids, p.ID)
		require.NoError(t, p.Validate(), p.ID)
	}
	assert.Equal(t, []string{"commercial", "documentary", "heavy", "minimal", "standard"}, ids)

	heavy, ok := c.Lookup("heavy")
	require.True(t, ok)
	assert.Equal(t, 8, heavy.MinShots)
	assert.Equal(t, 15, heavy.MaxShots)
	assert.Len(t, heavy.ShotTypes, 10)
}

func TestLookupFallsBackToStandard(t *testing.T) {
	p, ok := Default().Lookup("does-not-exist")
	assert.False(t, ok)
	assert.Equal(t, "standard", p.ID)
	assert.Equal(t, []ShotType{Establishing, Master, Medium, CloseUp, OverTheShoulder, TwoShot}, p.ShotTypes)
}

func TestLookupReturnsCopy(t *testing.T) {
	c := Default()
	p, _ := c.Lookup("minimal")
	p.ShotTypes[0] = Drone
	again, _ := c.Lookup("minimal")
	assert.Equal(t, Wide, again.ShotTypes[0])
}

func TestNewCatalogExtra(t *testing.T) {
	c, err := NewCatalog(Preset{ID: " music-video ", MinShots: 4, MaxShots: 9, ShotTypes: []ShotType{Drone, Tracking, CloseUp}})
	require.NoError(t, err)
	p, ok := c.Lookup("music-video")
	require.True(t, ok)
	assert.Equal(t, "music-video", p.Name)
	assert.Len(t, c.Presets(), 6)

	// builtin ids can be overridden
	c, err = NewCatalog(Preset{ID: "minimal", MinShots: 1, MaxShots: 1, ShotTypes: []ShotType{Wide}})
	require.NoError(t, err)
	p, _ = c.Lookup("minimal")
	assert.Equal(t, 1, p.MaxShots)
	_, stillDefault := Default().Lookup("minimal")
	assert.True(t, stillDefault)
}

func TestNewCatalogRejectsInvalid(t *testing.T) {
	bad := []Preset{
		{ID: "", MinShots: 1, MaxShots: 2, ShotTypes: []ShotType{Wide}},
		{ID: "a", MinShots: 0, MaxShots: 2, ShotTypes: []ShotType{Wide}},
		{ID: "b", MinShots: 3, MaxShots: 2, ShotTypes: []ShotType{Wide}},
		{ID: "c", MinShots: 1, MaxShots: 2},
		{ID: "d", MinShots: 1, MaxShots: 2, ShotTypes: []ShotType{"crane"}},
	}
	for _, p := range bad {
		_, err := NewCatalog(p)
		assert.ErrorIs(t, err, ErrInvalidPreset, "preset %q", p.ID)
	}
}

func TestShotTypeMetadata(t *testing.T) {
	assert.Equal(t, "Close-up focusing on face or specific detail", CloseUp.Description())
	assert.Equal(t, "Over-the-Shoulder", OverTheShoulder.Label())
	assert.Equal(t, "2S", TwoShot.Abbrev())
	assert.Equal(t, FallbackDescription, ShotType("crane").Description())
	assert.Equal(t, "crane", ShotType("crane").Label())
	assert.Equal(t, "CRA", ShotType("crane").Abbrev())
	assert.Equal(t, "XY", ShotType("xy").Abbrev())
	assert.Len(t, ShotTypes(), 16)
	for _, st := range ShotTypes() {
		assert.True(t, st.Known(), st)
	}
}

func TestStyleModes(t *testing.T) {
	assert.Equal(t, Cinematic, ParseStyleMode(" Cinematic "))
	assert.Equal(t, Storyboard, ParseStyleMode("storyboard"))
	assert.Equal(t, Storyboard, ParseStyleMode("watercolor"))
	assert.Equal(t, "storyboard style, line art, grayscale, pencil sketch", Storyboard.Modifier())
	assert.Equal(t, "cinematic, photorealistic, dramatic lighting, film grain, 35mm", Cinematic.Modifier())
	assert.Equal(t, Cinematic.Modifier(), StyleMode("other").Modifier())
}
