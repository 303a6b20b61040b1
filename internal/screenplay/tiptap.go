/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package screenplay

import "strings"

// TiptapNode is a node of the rich-text editor's JSON document tree.
type TiptapNode struct {
	Type    string       `json:"type"`
	Text    string       `json:"text,omitempty"`
	Content []TiptapNode `json:"content,omitempty"`
}

// ToTiptap renders doc as an editor document: a "doc" root with one node per
// block, each holding a single text node. Blocks with empty text get no
// children since the editor rejects empty text nodes.
func ToTiptap(doc Document) TiptapNode {
	root := TiptapNode{Type: "doc", Content: make([]TiptapNode, 0, len(doc.Blocks))}
	for _, b := range doc.Blocks {
		n := TiptapNode{Type: string(b.Type)}
		if b.Text != "" {
			n.Content = []TiptapNode{{Type: "text", Text: b.Text}}
		}
		root.Content = append(root.Content, n)
	}
	return root
}

// FromTiptap flattens an editor document back into blocks. Unknown node types
// are read as Action; nested text is concatenated.
func FromTiptap(root TiptapNode) Document {
	doc := Document{Blocks: []Block{}}
	for _, n := range root.Content {
		t := BlockType(n.Type)
		if !t.Valid() {
			t = Action
		}
		doc.Blocks = append(doc.Blocks, Block{Type: t, Text: collectText(n)})
	}
	return doc
}

func collectText(n TiptapNode) string {
	if n.Type == "text" {
		return n.Text
	}
	var sb strings.Builder
	for _, c := range n.Content {
		sb.WriteString(collectText(c))
	}
	return sb.String()
}
