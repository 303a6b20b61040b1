/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package layout

import (
	"math"
	"testing"
)

func TestAssembleEmpty(t *testing.T) {
	lines := Assemble(nil)
	if lines == nil {
		t.Fatalf("expected non-nil empty slice")
	}
	if len(lines) != 0 {
		t.Fatalf("expected 0 lines, got %d", len(lines))
	}
}

func TestAssembleGroupsAndOrders(t *testing.T) {
	tokens := []WordToken{
		{Text: "DAY", LeftX: 260, TopY: 72.2},
		{Text: "JOHN", LeftX: 266, TopY: 120.4},
		{Text: "INT.", LeftX: 108, TopY: 71.8},
		{Text: "KITCHEN", LeftX: 131, TopY: 72.4},
		{Text: "-", LeftX: 250, TopY: 72.1},
	}
	lines := Assemble(tokens)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %+v", len(lines), lines)
	}
	if got := lines[0].Text(); got != "INT. KITCHEN - DAY" {
		t.Fatalf("line 0 text = %q", got)
	}
	if lines[0].Top != 72 || lines[1].Top != 120 {
		t.Fatalf("unexpected tops: %d, %d", lines[0].Top, lines[1].Top)
	}
	if lines[0].LeftX() != 108 {
		t.Fatalf("leftmost x = %v, want 108", lines[0].LeftX())
	}
	if lines[1].Text() != "JOHN" {
		t.Fatalf("line 1 text = %q", lines[1].Text())
	}
}

func TestAssembleRoundsHalfToEven(t *testing.T) {
	// 100.5 rounds to 100 and 101.5 rounds to 102, so these land on different lines.
	lines := Assemble([]WordToken{
		{Text: "a", LeftX: 10, TopY: 100.5},
		{Text: "b", LeftX: 20, TopY: 100.4},
		{Text: "c", LeftX: 30, TopY: 101.5},
	})
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0].Text() != "a b" || lines[0].Top != 100 {
		t.Fatalf("unexpected first line %+v", lines[0])
	}
	if lines[1].Text() != "c" || lines[1].Top != 102 {
		t.Fatalf("unexpected second line %+v", lines[1])
	}
}

func TestAssembleBoundarySplitIsKept(t *testing.T) {
	// Less than one unit apart but on different sides of a rounding boundary.
	lines := Assemble([]WordToken{
		{Text: "left", LeftX: 10, TopY: 50.45},
		{Text: "right", LeftX: 60, TopY: 50.55},
	})
	if len(lines) != 2 {
		t.Fatalf("expected boundary split into 2 lines, got %d", len(lines))
	}
}

func TestAssembleStableForEqualX(t *testing.T) {
	lines := Assemble([]WordToken{
		{Text: "first", LeftX: 10, TopY: 5},
		{Text: "second", LeftX: 10, TopY: 5},
	})
	if lines[0].Text() != "first second" {
		t.Fatalf("equal-x words reordered: %q", lines[0].Text())
	}
}

func TestAssembleDropsNonFinite(t *testing.T) {
	lines := Assemble([]WordToken{
		{Text: "nan", LeftX: math.NaN(), TopY: 5},
		{Text: "inf", LeftX: 1, TopY: math.Inf(1)},
		{Text: "ok", LeftX: 1, TopY: 5},
	})
	if len(lines) != 1 || lines[0].Text() != "ok" {
		t.Fatalf("unexpected lines: %+v", lines)
	}
}

func TestLineEmpty(t *testing.T) {
	var l Line
	if l.Text() != "" || l.LeftX() != 0 {
		t.Fatalf("empty line should have no text and zero x")
	}
}
