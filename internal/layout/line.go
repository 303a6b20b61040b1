/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package layout groups positioned word tokens of one page into text lines.
package layout

import (
	"math"
	"sort"
	"strings"
)

// WordToken is a single word as delivered by a page reader.
// Coordinates are in the reader's unit (PDF points for pdfplumber-style dumps),
// TopY grows downwards.
type WordToken struct {
	Text  string  `json:"text"`
	LeftX float64 `json:"x0"`
	TopY  float64 `json:"top"`
}

// Line is a run of tokens sharing the same rounded top coordinate, ordered left to right.
type Line struct {
	Top   int
	Words []WordToken
}

// Text joins the words with single spaces.
func (l Line) Text() string {
	parts := make([]string, 0, len(l.Words))
	for _, w := range l.Words {
		parts = append(parts, w.Text)
	}
	return strings.Join(parts, " ")
}

// LeftX is the left coordinate of the leftmost word, 0 for an empty line.
func (l Line) LeftX() float64 {
	if len(l.Words) == 0 {
		return 0
	}
	return l.Words[0].LeftX
}

// Assemble groups tokens into lines by their top coordinate rounded to the
// nearest integer (ties to even). Words within a line are sorted by LeftX,
// lines by Top. Tokens that straddle a rounding boundary may land on separate
// lines; that split is kept as is.
//
// An empty input yields an empty, non-nil slice.
func Assemble(tokens []WordToken) []Line {
	buckets := make(map[int][]WordToken)
	for _, t := range tokens {
		if !finite(t.LeftX) || !finite(t.TopY) {
			continue
		}
		key := int(math.RoundToEven(t.TopY))
		buckets[key] = append(buckets[key], t)
	}

	keys := make([]int, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	lines := make([]Line, 0, len(keys))
	for _, k := range keys {
		words := buckets[k]
		sort.SliceStable(words, func(i, j int) bool { return words[i].LeftX < words[j].LeftX })
		lines = append(lines, Line{Top: k, Words: words})
	}
	return lines
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
