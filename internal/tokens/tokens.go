/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package tokens reads page word dumps, the JSON a text-layer PDF reader
// emits for each page, and serves them as a screenplay token source.
//
// Accepted shapes:
//
//	{"pages":[{"number":1,"words":[{"text":"INT.","x0":108,"top":72.4}]}]}
//	[{"words":[...]}]
//
// Extra word fields (x1, bottom, fontname, ...) are ignored.
package tokens

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	gojsonschema "github.com/xeipuuv/gojsonschema"
	"golang.org/x/text/unicode/norm"

	"sceneweaver/internal/layout"
)

//go:embed words.schema.json
var schemaJSON []byte

var schemaLoader = gojsonschema.NewBytesLoader(schemaJSON)

// ErrInvalid wraps schema violations.
var ErrInvalid = errors.New("invalid word dump")

type page struct {
	Number int                `json:"number"`
	Words  []layout.WordToken `json:"words"`
}

type dump struct {
	Pages []page `json:"pages"`
}

// Decode validates data against the word dump schema and returns the pages
// in page order. Word text is NFKC-normalized and trimmed; words left empty
// are dropped.
func Decode(data []byte) ([][]layout.WordToken, error) {
	res, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("validate word dump: %w", err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
	}

	var pages []page
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		err = json.Unmarshal(trimmed, &pages)
	} else {
		var d dump
		err = json.Unmarshal(trimmed, &d)
		pages = d.Pages
	}
	if err != nil {
		return nil, fmt.Errorf("decode word dump: %w", err)
	}

	if numbered(pages) {
		sort.SliceStable(pages, func(i, j int) bool { return pages[i].Number < pages[j].Number })
	}

	out := make([][]layout.WordToken, 0, len(pages))
	for _, p := range pages {
		words := make([]layout.WordToken, 0, len(p.Words))
		for _, w := range p.Words {
			w.Text = Normalize(w.Text)
			if w.Text == "" {
				continue
			}
			words = append(words, w)
		}
		out = append(out, words)
	}
	return out, nil
}

func numbered(pages []page) bool {
	for _, p := range pages {
		if p.Number == 0 {
			return false
		}
	}
	return len(pages) > 1
}

// Normalize applies NFKC and trims surrounding white space, folding ligatures
// and full-width forms that PDF text layers commonly carry.
func Normalize(s string) string {
	return strings.TrimSpace(norm.NFKC.String(s))
}

// File is a token source backed by a word dump on disk. The file is read on
// each call to Pages.
type File struct {
	Path string
}

// Pages reads and decodes the dump.
func (f File) Pages() ([][]layout.WordToken, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read word dump: %w", err)
	}
	return Decode(data)
}

// Bytes is a token source over an in-memory dump.
type Bytes []byte

// Pages decodes the dump.
func (b Bytes) Pages() ([][]layout.WordToken, error) { return Decode(b) }
