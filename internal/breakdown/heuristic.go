/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package breakdown

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"sceneweaver/internal/coverage"
	"sceneweaver/internal/screenplay"
)

// MaxHeuristicShots caps the heuristic shot list.
const MaxHeuristicShots = 5

// UnknownLocation names the establishing shot when the text has no heading.
const UnknownLocation = "Unknown Location"

// Heuristic shot durations in seconds.
const (
	establishingSeconds = 5.0
	coverageSeconds     = 4.0
)

// maxCueRunes bounds the length of a character cue line.
const maxCueRunes = 30

// minActionRunes is the length an action line must exceed to get a shot.
const minActionRunes = 10

// The prefix must start a word so prose like "a text." is not a heading.
var reLocation = regexp.MustCompile(`(?im)(?:^|[^\pL])(INT\.|EXT\.)\s+(.+?)(?:\s-|$)`)

// ExtractLocation returns the location phrase of the first INT./EXT. heading
// in text, up to the " -" before the time of day.
func ExtractLocation(text string) string {
	if m := reLocation.FindStringSubmatch(text); m != nil {
		if loc := strings.TrimSpace(m[2]); loc != "" {
			return loc
		}
	}
	return UnknownLocation
}

// Heuristic breaks text into shots without a preset. The first shot is always
// a wide establishing shot. An uppercase cue line followed by a line of speech
// yields a close-up of the speaker; other action lines yield medium shots. At
// most MaxHeuristicShots are returned.
func Heuristic(text string) []Shot {
	shots := []Shot{{
		Prompt:          "Wide establishing shot of " + ExtractLocation(text) + ", cinematic lighting, 8k",
		ShotType:        coverage.Wide,
		DurationSeconds: establishingSeconds,
	}}

	pending := ""
	for _, raw := range strings.Split(text, "\n") {
		if len(shots) >= MaxHeuristicShots {
			break
		}
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		upper := screenplay.IsUppercase(line)
		if upper && utf8.RuneCountInString(line) < maxCueRunes && !containsScenePrefix(line) {
			pending = line
			continue
		}
		switch {
		case pending != "" && !upper && !strings.HasPrefix(line, "("):
			shots = append(shots, Shot{
				Prompt:          "Close up of " + pending + " speaking, emotional expression, detailed face",
				ShotType:        coverage.CloseUp,
				DurationSeconds: coverageSeconds,
			})
			pending = ""
		case pending == "" && !upper && utf8.RuneCountInString(line) > minActionRunes:
			shots = append(shots, Shot{
				Prompt:          "Medium shot of " + line + ", dynamic angle",
				ShotType:        coverage.Medium,
				DurationSeconds: coverageSeconds,
			})
		}
	}

	if len(shots) > MaxHeuristicShots {
		shots = shots[:MaxHeuristicShots]
	}
	for i := range shots {
		shots[i].OrderIndex = i + 1
		shots[i].Description = shots[i].ShotType.Description()
	}
	return shots
}

func containsScenePrefix(line string) bool {
	for _, p := range []string{"INT.", "EXT.", "EST.", "I/E"} {
		if strings.Contains(line, p) {
			return true
		}
	}
	return false
}
