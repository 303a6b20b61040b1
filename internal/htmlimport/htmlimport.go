/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package htmlimport reads screenplays saved from the rich-text editor as HTML
// and exports documents back into the same markup.
package htmlimport

import (
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"sceneweaver/internal/screenplay"
)

// selector to block type, matching the editor's parse rules.
var classes = []struct {
	sel string
	typ screenplay.BlockType
}{
	{"h1.scene-heading", screenplay.SceneHeading},
	{"p.action", screenplay.Action},
	{"div.character", screenplay.Character},
	{"div.dialogue", screenplay.Dialogue},
	{"div.parenthetical", screenplay.Parenthetical},
}

var anyBlock = func() string {
	sels := make([]string, 0, len(classes))
	for _, c := range classes {
		sels = append(sels, c.sel)
	}
	return strings.Join(sels, ",")
}()

// Read parses HTML from r into a Document. Elements are visited in document
// order; only the screenplay classes are read and white space inside an element
// is collapsed. Elements with no text are skipped.
func Read(r io.Reader) (screenplay.Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return screenplay.Document{}, fmt.Errorf("parse html: %w", err)
	}
	out := screenplay.Document{Blocks: []screenplay.Block{}}
	doc.Find(anyBlock).Each(func(_ int, s *goquery.Selection) {
		text := strings.Join(strings.Fields(s.Text()), " ")
		if text == "" {
			return
		}
		out.Blocks = append(out.Blocks, screenplay.Block{Type: blockType(s), Text: text})
	})
	return out, nil
}

func blockType(s *goquery.Selection) screenplay.BlockType {
	for _, c := range classes {
		if s.Is(c.sel) {
			return c.typ
		}
	}
	return screenplay.Action
}

// Write renders doc as editor HTML, one element per block.
func Write(w io.Writer, doc screenplay.Document) error {
	for _, b := range doc.Blocks {
		tag, class := "p", "action"
		switch b.Type {
		case screenplay.SceneHeading:
			tag, class = "h1", "scene-heading"
		case screenplay.Character:
			tag, class = "div", "character"
		case screenplay.Dialogue:
			tag, class = "div", "dialogue"
		case screenplay.Parenthetical:
			tag, class = "div", "parenthetical"
		}
		if _, err := fmt.Fprintf(w, "<%s class=\"%s\">%s</%s>\n", tag, class, html.EscapeString(b.Text), tag); err != nil {
			return err
		}
	}
	return nil
}
