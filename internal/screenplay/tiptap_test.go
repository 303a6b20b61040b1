/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package screenplay

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestToTiptapShape(t *testing.T) {
	doc := Document{Blocks: []Block{
		{Type: SceneHeading, Text: "INT. HALL"},
		{Type: Action, Text: ""},
	}}
	raw, err := json.Marshal(ToTiptap(doc))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"type":"doc","content":[{"type":"sceneHeading","content":[{"type":"text","text":"INT. HALL"}]},{"type":"action"}]}`
	if string(raw) != want {
		t.Fatalf("unexpected tiptap json:\n got %s\nwant %s", raw, want)
	}
}

func TestTiptapRoundTrip(t *testing.T) {
	doc := Document{Blocks: []Block{
		{Type: SceneHeading, Text: "INT. HALL"},
		{Type: Character, Text: "JOHN"},
		{Type: Dialogue, Text: "Hi."},
	}}
	if diff := cmp.Diff(doc, FromTiptap(ToTiptap(doc))); diff != "" {
		t.Fatalf("round trip mismatch:\n%s", diff)
	}
}

func TestFromTiptapUnknownNode(t *testing.T) {
	root := TiptapNode{Type: "doc", Content: []TiptapNode{
		{Type: "heading", Content: []TiptapNode{{Type: "text", Text: "Act "}, {Type: "text", Text: "One"}}},
	}}
	got := FromTiptap(root)
	if len(got.Blocks) != 1 || got.Blocks[0].Type != Action || got.Blocks[0].Text != "Act One" {
		t.Fatalf("unexpected blocks %+v", got.Blocks)
	}
}
