/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package coverage holds the coverage presets and shot-type tables used by
// the breakdown engine. Tables are built once and read-only afterwards.
package coverage

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// DefaultPresetID is used when a lookup misses.
const DefaultPresetID = "standard"

// Preset is a coverage plan: how many shots a scene gets and which shot types
// are cycled through.
type Preset struct {
	ID          string     `json:"id" yaml:"id"`
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description" yaml:"description"`
	MinShots    int        `json:"min_shots" yaml:"min_shots"`
	MaxShots    int        `json:"max_shots" yaml:"max_shots"`
	ShotTypes   []ShotType `json:"shot_types" yaml:"shot_types"`
}

func (p Preset) clone() Preset {
	p.ShotTypes = append([]ShotType(nil), p.ShotTypes...)
	return p
}

// ErrInvalidPreset is wrapped by NewCatalog for presets that fail validation.
var ErrInvalidPreset = errors.New("invalid coverage preset")

// Validate checks the id, the shot range and the shot types.
func (p Preset) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidPreset)
	}
	if p.MinShots < 1 || p.MaxShots < p.MinShots {
		return fmt.Errorf("%w %q: shot range %d-%d", ErrInvalidPreset, p.ID, p.MinShots, p.MaxShots)
	}
	if len(p.ShotTypes) == 0 {
		return fmt.Errorf("%w %q: no shot types", ErrInvalidPreset, p.ID)
	}
	for _, t := range p.ShotTypes {
		if !t.Known() {
			return fmt.Errorf("%w %q: unknown shot type %q", ErrInvalidPreset, p.ID, t)
		}
	}
	return nil
}

var builtin = []Preset{
	{
		ID:          "minimal",
		Name:        "Minimal",
		Description: "Quick coverage with essential shots only",
		MinShots:    3,
		MaxShots:    5,
		ShotTypes:   []ShotType{Wide, Medium, CloseUp},
	},
	{
		ID:          "standard",
		Name:        "Standard",
		Description: "Classic film coverage with master, mediums, and close-ups",
		MinShots:    5,
		MaxShots:    8,
		ShotTypes:   []ShotType{Establishing, Master, Medium, CloseUp, OverTheShoulder, TwoShot},
	},
	{
		ID:          "heavy",
		Name:        "Heavy",
		Description: "Comprehensive coverage with multiple angles and inserts",
		MinShots:    8,
		MaxShots:    15,
		ShotTypes:   []ShotType{Establishing, Master, Medium, MediumCloseUp, CloseUp, ExtremeCloseUp, OverTheShoulder, TwoShot, Insert, Cutaway},
	},
	{
		ID:          "commercial",
		Name:        "Commercial",
		Description: "Fast-paced coverage optimized for ads",
		MinShots:    10,
		MaxShots:    20,
		ShotTypes:   []ShotType{Wide, Medium, CloseUp, ExtremeCloseUp, Insert, Cutaway, Tracking, Dolly},
	},
	{
		ID:          "documentary",
		Name:        "Documentary",
		Description: "Observational style with handheld feel",
		MinShots:    6,
		MaxShots:    12,
		ShotTypes:   []ShotType{Wide, Medium, CloseUp, Handheld, Tracking, Cutaway},
	},
}

// Catalog is an immutable preset table.
type Catalog struct {
	byID map[string]Preset
}

// NewCatalog returns the built-in presets plus extra. An extra preset with a
// built-in id replaces it.
func NewCatalog(extra ...Preset) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]Preset, len(builtin)+len(extra))}
	for _, p := range builtin {
		c.byID[p.ID] = p.clone()
	}
	for _, p := range extra {
		p.ID = strings.TrimSpace(p.ID)
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if p.Name == "" {
			p.Name = p.ID
		}
		c.byID[p.ID] = p.clone()
	}
	return c, nil
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default is the built-in catalog, built on first use.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := NewCatalog()
		if err != nil {
			panic(err)
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// Lookup returns the preset for id, or the standard preset when id is unknown.
// The second result reports whether id was found.
func (c *Catalog) Lookup(id string) (Preset, bool) {
	if p, ok := c.byID[strings.TrimSpace(id)]; ok {
		return p.clone(), true
	}
	return c.byID[DefaultPresetID].clone(), false
}

// Presets lists all presets sorted by id.
func (c *Catalog) Presets() []Preset {
	out := make([]Preset, 0, len(c.byID))
	for _, p := range c.byID {
		out = append(out, p.clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
