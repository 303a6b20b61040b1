/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package breakdown

import (
	"strings"
	"unicode/utf8"

	"sceneweaver/internal/coverage"
)

// MaxPromptCast is the number of cast names carried into a prompt.
const MaxPromptCast = 2

// SnippetRunes is the length of the scene excerpt carried into a prompt.
const SnippetRunes = 200

// PromptContext is the scene context rendered into a prompt.
type PromptContext struct {
	Location  string
	Cast      []string
	SceneText string
	Style     coverage.StyleMode
}

// ComposePrompt renders the generation prompt for one shot. Clauses appear in
// a fixed order, joined by ". ": shot type, location, characters, scene
// excerpt, style. Empty context parts are left out.
func ComposePrompt(t coverage.ShotType, pc PromptContext) string {
	parts := []string{t.Description()}
	if loc := strings.TrimSpace(pc.Location); loc != "" {
		parts = append(parts, "Location: "+loc)
	}
	if cast := castNames(pc.Cast); len(cast) > 0 {
		parts = append(parts, "Characters: "+strings.Join(cast, ", "))
	}
	if pc.SceneText != "" {
		parts = append(parts, "Scene: "+snippet(pc.SceneText)+"...")
	}
	parts = append(parts, pc.Style.Modifier())
	return strings.Join(parts, ". ")
}

func castNames(names []string) []string {
	out := make([]string, 0, MaxPromptCast)
	for _, n := range names {
		if n = strings.TrimSpace(n); n == "" {
			continue
		}
		out = append(out, n)
		if len(out) == MaxPromptCast {
			break
		}
	}
	return out
}

func snippet(s string) string {
	if utf8.RuneCountInString(s) > SnippetRunes {
		s = string([]rune(s)[:SnippetRunes])
	}
	return strings.ReplaceAll(s, "\n", " ")
}
