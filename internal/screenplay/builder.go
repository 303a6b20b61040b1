/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package screenplay

import (
	"errors"
	"fmt"
	"log/slog"

	"sceneweaver/internal/layout"
	applog "sceneweaver/internal/log"
)

// ErrorPrefix starts the text of the single block returned for a source that
// could not be parsed.
const ErrorPrefix = "Error parsing document: "

// ErrNoSource is reported when Parse is called without a token source.
var ErrNoSource = errors.New("no token source")

// TokenExtractor supplies the word tokens of a page-layout document, one
// slice per page in page order.
type TokenExtractor interface {
	Pages() ([][]layout.WordToken, error)
}

// Builder turns pages of word tokens into a Document.
type Builder struct {
	classifier *Classifier
}

// NewBuilder returns a builder using the built-in classifier.
func NewBuilder() *Builder { return &Builder{classifier: NewClassifier()} }

// Build assembles each page into lines and classifies every line, keeping
// page order and line order. Blocks from different pages are never merged.
func (b *Builder) Build(pages [][]layout.WordToken) Document {
	doc := Document{Blocks: []Block{}}
	for _, page := range pages {
		for _, line := range layout.Assemble(page) {
			doc.Blocks = append(doc.Blocks, b.classifier.Classify(line))
		}
	}
	return doc
}

// Parse pulls all pages from src and builds the Document. Extraction errors and
// panics are turned into a Document holding a single Action block whose text
// explains the failure; Parse itself never fails.
func (b *Builder) Parse(src TokenExtractor) (doc Document) {
	l := applog.WithOperation(applog.WithComponent("screenplay"), "parse")
	defer func() {
		if r := recover(); r != nil {
			l.Error("panic while parsing document", slog.Any("panic", r))
			doc = ErrorDocument(fmt.Errorf("%v", r))
		}
	}()
	if src == nil {
		return ErrorDocument(ErrNoSource)
	}
	pages, err := src.Pages()
	if err != nil {
		l.Error("token extraction failed", slog.Any("err", err))
		return ErrorDocument(err)
	}
	doc = b.Build(pages)
	l.Debug("document built", slog.Int("pages", len(pages)), slog.Int("blocks", len(doc.Blocks)))
	return doc
}

// ErrorDocument is the one-block Document describing err.
func ErrorDocument(err error) Document {
	reason := "unknown error"
	if err != nil {
		reason = err.Error()
	}
	return Document{Blocks: []Block{{Type: Action, Text: ErrorPrefix + reason}}}
}
