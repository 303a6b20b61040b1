/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package breakdown turns scene text into an ordered shot list, either from a
// coverage preset or from a preset-less line heuristic, and composes the
// generation prompt for each shot.
package breakdown

import (
	"context"

	"sceneweaver/internal/coverage"
)

// CastMember is a character linked to the scene.
type CastMember struct {
	Name string `json:"name"`
}

// Location is the location linked to the scene.
type Location struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Text is the location clause content: the description, or the name when the
// description is blank.
func (l *Location) Text() string {
	if l == nil {
		return ""
	}
	if l.Description != "" {
		return l.Description
	}
	return l.Name
}

// Request is one breakdown call. An empty PresetID selects heuristic mode.
type Request struct {
	SceneText string             `json:"scene_text"`
	PresetID  string             `json:"coverage_preset"`
	Cast      []CastMember       `json:"linked_cast"`
	Location  *Location          `json:"linked_location,omitempty"`
	Style     coverage.StyleMode `json:"style_mode"`
}

// Shot is one entry of a shot list. OrderIndex is 1-based and contiguous.
type Shot struct {
	Prompt          string            `json:"prompt"`
	ShotType        coverage.ShotType `json:"shot_type"`
	OrderIndex      int               `json:"order_index"`
	DurationSeconds float64           `json:"duration_seconds"`
	Description     string            `json:"description"`
}

// ShotStore persists the shot list of a scene. ReplaceShots drops the shots
// already stored for sceneID and stores shots in their place.
type ShotStore interface {
	ReplaceShots(ctx context.Context, sceneID string, shots []Shot) error
}
