/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export renders a broken-down screenplay bundle as storyboard
// documents, panel images and editor timelines.
package export

import (
	"fmt"
	"strings"
	"unicode"

	"sceneweaver/internal/breakdown"
	"sceneweaver/internal/storage"
)

// DescriptionRunes caps panel captions.
const DescriptionRunes = 100

// ShotLabel returns the panel label, for example MED-2: the first three
// letters of the shot type upper-cased and the shot number.
func ShotLabel(sh breakdown.Shot) string {
	t := string(sh.ShotType)
	if t == "" {
		t = "medium"
	}
	r := []rune(strings.ToUpper(t))
	if len(r) > 3 {
		r = r[:3]
	}
	return fmt.Sprintf("%s-%d", string(r), sh.OrderIndex)
}

// Caption is the shot description, or the prompt when it has none, cut to
// DescriptionRunes.
func Caption(sh breakdown.Shot) string {
	s := sh.Description
	if s == "" {
		s = sh.Prompt
	}
	r := []rune(s)
	if len(r) > DescriptionRunes {
		r = r[:DescriptionRunes]
	}
	return string(r)
}

// SceneTitle is the slug line, or "Scene N" for scenes without one.
func SceneTitle(sc storage.BundleScene) string {
	if s := strings.TrimSpace(sc.SlugLine); s != "" {
		return s
	}
	return fmt.Sprintf("Scene %d", sc.OrderIndex)
}

// SafeName keeps letters, digits, dot, underscore, dash and space, replacing
// everything else with an underscore.
func SafeName(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune("._- ", r) {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

// fileStem is the title with spaces replaced, used to name output files.
func fileStem(title string) string {
	t := strings.TrimSpace(title)
	if t == "" {
		t = "Untitled"
	}
	return strings.ReplaceAll(SafeName(t), " ", "_")
}

func shotCount(b storage.Bundle) int {
	n := 0
	for _, sc := range b.Scenes {
		n += len(sc.Shots)
	}
	return n
}
