/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package screenplay

import (
	"strings"
	"unicode/utf8"
)

var slugPrefixes = []string{"INT.", "EXT.", "INT/EXT"}

// SlugLine returns the first line of scriptText when it reads like a scene
// heading (INT., EXT. or INT/EXT, any case), otherwise "".
func SlugLine(scriptText string) string {
	first, _, _ := strings.Cut(strings.TrimSpace(scriptText), "\n")
	first = strings.TrimSpace(first)
	up := strings.ToUpper(first)
	for _, p := range slugPrefixes {
		if strings.HasPrefix(up, p) {
			return first
		}
	}
	return ""
}

// SplitScenes cuts doc into scenes, one per SceneHeading block. Blocks before
// the first heading are dropped, unless the document has no heading at all, in
// which case the whole document becomes a single scene with an empty slug line.
// OrderIndex is 1-based.
func SplitScenes(doc Document) []Scene {
	scenes := []Scene{}
	var cur *sceneAcc
	flush := func() {
		if cur != nil {
			scenes = append(scenes, cur.scene(len(scenes)+1))
		}
	}
	for _, b := range doc.Blocks {
		if b.Type == SceneHeading {
			flush()
			cur = &sceneAcc{slug: b.Text}
		}
		if cur != nil {
			cur.add(b)
		}
	}
	flush()

	if len(scenes) == 0 && len(doc.Blocks) > 0 {
		acc := &sceneAcc{}
		for _, b := range doc.Blocks {
			acc.add(b)
		}
		scenes = append(scenes, acc.scene(1))
	}
	return scenes
}

type sceneAcc struct {
	slug  string
	lines []string
	cast  []string
	seen  map[string]bool
}

func (a *sceneAcc) add(b Block) {
	a.lines = append(a.lines, b.Text)
	if b.Type != Character {
		return
	}
	name := CueName(b.Text)
	if n := utf8.RuneCountInString(name); n <= 1 || n >= 30 {
		return
	}
	if a.seen == nil {
		a.seen = map[string]bool{}
	}
	if !a.seen[name] {
		a.seen[name] = true
		a.cast = append(a.cast, name)
	}
}

func (a *sceneAcc) scene(order int) Scene {
	cast := a.cast
	if cast == nil {
		cast = []string{}
	}
	return Scene{
		OrderIndex: order,
		SlugLine:   a.slug,
		ScriptText: strings.Join(a.lines, "\n"),
		Characters: cast,
	}
}

// CueName strips a trailing extension such as "(V.O.)" or "(CONT'D)" from a
// character cue.
func CueName(cue string) string {
	if i := strings.IndexByte(cue, '('); i >= 0 {
		cue = cue[:i]
	}
	return strings.TrimSpace(cue)
}
