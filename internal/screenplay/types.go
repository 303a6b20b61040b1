/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package screenplay

// BlockType names the kind of a screenplay block. The values match the
// node names of the rich-text screenplay editor.
type BlockType string

const (
	SceneHeading  BlockType = "sceneHeading"
	Action        BlockType = "action"
	Character     BlockType = "character"
	Dialogue      BlockType = "dialogue"
	Parenthetical BlockType = "parenthetical"
)

// Valid reports whether t is one of the known block types.
func (t BlockType) Valid() bool {
	switch t {
	case SceneHeading, Action, Character, Dialogue, Parenthetical:
		return true
	}
	return false
}

// Block is one classified line of a screenplay.
type Block struct {
	Type BlockType `json:"type"`
	Text string    `json:"text"`
}

// Document is the ordered list of blocks built from a screenplay source.
// Blocks are in source order: page by page, top to bottom.
type Document struct {
	Blocks []Block `json:"blocks"`
}

// Scene is a slice of a Document starting at a scene heading.
// ScriptText holds the block texts of the scene joined by newlines, heading first.
type Scene struct {
	OrderIndex int      `json:"order_index"`
	SlugLine   string   `json:"slug_line"`
	ScriptText string   `json:"script_text"`
	Characters []string `json:"characters"`
}
