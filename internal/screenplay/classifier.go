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
	"unicode"
	"unicode/utf8"

	"sceneweaver/internal/layout"
)

// Horizontal bands, in page units measured from the left edge.
// Lines left of HeadingBandEnd are headings or action. Between HeadingBandEnd
// and DialogueBandEnd sit dialogue and parentheticals; the 120-140 gap between
// headings and indented dialogue belongs to the dialogue band. Character cues
// start at DialogueBandEnd. Lines right of RightAlignedStart are transitions
// and page furniture.
const (
	HeadingBandEnd    = 120.0
	DialogueBandEnd   = 250.0
	CharacterBandEnd  = 320.0
	RightAlignedStart = 400.0
)

// minHeadingRunes is the length above which an uppercase line in the heading
// band is taken as a heading even when it contains spaces.
const minHeadingRunes = 4

var scenePrefixes = []string{"INT.", "EXT.", "EST.", "I/E"}

// Facts are the line features the rules look at.
type Facts struct {
	LeftX       float64
	Text        string
	Uppercase   bool
	ScenePrefix bool
	Paren       bool
	Transition  bool
	HasSpace    bool
	RuneCount   int
}

// NewFacts computes the rule inputs for a line of text at leftX.
func NewFacts(leftX float64, text string) Facts {
	text = strings.TrimSpace(text)
	return Facts{
		LeftX:       leftX,
		Text:        text,
		Uppercase:   IsUppercase(text),
		ScenePrefix: HasScenePrefix(text),
		Paren:       strings.HasPrefix(text, "("),
		Transition:  strings.HasSuffix(text, ":"),
		HasSpace:    strings.ContainsRune(text, ' '),
		RuneCount:   utf8.RuneCountInString(text),
	}
}

func (f Facts) inHeadingBand() bool   { return f.LeftX < HeadingBandEnd }
func (f Facts) inDialogueBand() bool  { return f.LeftX >= HeadingBandEnd && f.LeftX < DialogueBandEnd }
func (f Facts) inCharacterBand() bool { return f.LeftX >= DialogueBandEnd && f.LeftX < CharacterBandEnd }
func (f Facts) rightAligned() bool    { return f.LeftX > RightAlignedStart }

// IsUppercase reports whether s has at least one cased letter and no
// lowercase or titlecase letters. Digits and punctuation are ignored.
func IsUppercase(s string) bool {
	cased := false
	for _, r := range s {
		switch {
		case unicode.IsLower(r), unicode.IsTitle(r):
			return false
		case unicode.IsUpper(r):
			cased = true
		}
	}
	return cased
}

// HasScenePrefix reports whether s starts with INT., EXT., EST. or I/E.
// The match is case-sensitive.
func HasScenePrefix(s string) bool {
	for _, p := range scenePrefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// Rule maps a predicate over Facts to a block type.
type Rule struct {
	Name  string
	Match func(Facts) bool
	Type  BlockType
}

var defaultRules = []Rule{
	{"heading/scene-prefix", func(f Facts) bool { return f.inHeadingBand() && f.ScenePrefix }, SceneHeading},
	{"heading/uppercase-word", func(f Facts) bool { return f.inHeadingBand() && f.Uppercase && !f.HasSpace }, SceneHeading},
	{"heading/uppercase-long", func(f Facts) bool {
		return f.inHeadingBand() && f.Uppercase && f.RuneCount > minHeadingRunes && !f.Transition
	}, SceneHeading},
	{"heading/transition", func(f Facts) bool { return f.inHeadingBand() && f.Transition }, Action},
	{"heading/other", func(f Facts) bool { return f.inHeadingBand() }, Action},
	{"dialogue/paren", func(f Facts) bool { return f.inDialogueBand() && f.Paren }, Parenthetical},
	{"dialogue/other", func(f Facts) bool { return f.inDialogueBand() }, Dialogue},
	{"character/uppercase", func(f Facts) bool { return f.inCharacterBand() && f.Uppercase }, Character},
	{"character/paren", func(f Facts) bool { return f.inCharacterBand() && f.Paren }, Parenthetical},
	{"character/other", func(f Facts) bool { return f.inCharacterBand() }, Dialogue},
	{"right-aligned", func(f Facts) bool { return f.rightAligned() }, Action},
	{"fallback", func(Facts) bool { return true }, Action},
}

// Classifier assigns a BlockType to a line by walking an ordered rule table.
// The first matching rule wins and the last rule matches everything.
// A Classifier is immutable and safe for concurrent use.
type Classifier struct {
	rules []Rule
}

// NewClassifier returns a classifier over the built-in rule table.
func NewClassifier() *Classifier {
	return &Classifier{rules: defaultRules}
}

// Rules returns a copy of the rule table in evaluation order.
func (c *Classifier) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

// Classify classifies an assembled line by its leftmost x and joined text.
func (c *Classifier) Classify(line layout.Line) Block {
	return c.ClassifyText(line.LeftX(), line.Text())
}

// ClassifyText classifies a line of text starting at leftX.
func (c *Classifier) ClassifyText(leftX float64, text string) Block {
	f := NewFacts(leftX, text)
	_, t := c.match(f)
	return Block{Type: t, Text: f.Text}
}

// Explain returns the name of the rule that decides the line.
func (c *Classifier) Explain(leftX float64, text string) string {
	name, _ := c.match(NewFacts(leftX, text))
	return name
}

func (c *Classifier) match(f Facts) (string, BlockType) {
	for _, r := range c.rules {
		if r.Match(f) {
			return r.Name, r.Type
		}
	}
	return "fallback", Action
}
