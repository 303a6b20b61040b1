/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package coverage

import "strings"

// ShotType names a camera framing or movement.
type ShotType string

const (
	Wide            ShotType = "wide"
	Establishing    ShotType = "establishing"
	Master          ShotType = "master"
	Medium          ShotType = "medium"
	MediumCloseUp   ShotType = "medium_close_up"
	CloseUp         ShotType = "close_up"
	ExtremeCloseUp  ShotType = "extreme_close_up"
	OverTheShoulder ShotType = "over_the_shoulder"
	TwoShot         ShotType = "two_shot"
	Insert          ShotType = "insert"
	Cutaway         ShotType = "cutaway"
	POV             ShotType = "pov"
	Drone           ShotType = "drone"
	Tracking        ShotType = "tracking"
	Dolly           ShotType = "dolly"
	Handheld        ShotType = "handheld"
)

// FallbackDescription is used in prompts for shot types without a description.
const FallbackDescription = "Medium shot"

type shotInfo struct {
	prompt string
	label  string
	abbrev string
}

var shotTypes = map[ShotType]shotInfo{
	Wide:            {"Wide shot showing the entire scene and environment", "Wide Shot", "WS"},
	Establishing:    {"Establishing shot setting up the location and context", "Establishing Shot", "EST"},
	Master:          {"Master shot covering the entire action", "Master Shot", "MS"},
	Medium:          {"Medium shot framing subject from waist up", "Medium Shot", "MED"},
	MediumCloseUp:   {"Medium close-up framing subject from chest up", "Medium Close-Up", "MCU"},
	CloseUp:         {"Close-up focusing on face or specific detail", "Close-Up", "CU"},
	ExtremeCloseUp:  {"Extreme close-up with very tight framing", "Extreme Close-Up", "ECU"},
	OverTheShoulder: {"Over-the-shoulder shot from behind one character", "Over-the-Shoulder", "OTS"},
	TwoShot:         {"Two shot framing two characters together", "Two Shot", "2S"},
	Insert:          {"Insert shot of an object or detail", "Insert", "INS"},
	Cutaway:         {"Cutaway shot of something outside the main action", "Cutaway", "CUT"},
	POV:             {"Point of view shot showing what a character sees", "Point of View", "POV"},
	Drone:           {"Drone/aerial shot from high angle", "Drone/Aerial", "DRN"},
	Tracking:        {"Tracking shot moving alongside subject", "Tracking Shot", "TRK"},
	Dolly:           {"Dolly shot moving toward or away from subject", "Dolly Shot", "DLY"},
	Handheld:        {"Handheld shot with natural, documentary-style movement", "Handheld", "HH"},
}

// Known reports whether t is a built-in shot type.
func (t ShotType) Known() bool {
	_, ok := shotTypes[t]
	return ok
}

// Description is the prompt text for t, FallbackDescription when unknown.
func (t ShotType) Description() string {
	if i, ok := shotTypes[t]; ok {
		return i.prompt
	}
	return FallbackDescription
}

// Label is the display name, the raw value when unknown.
func (t ShotType) Label() string {
	if i, ok := shotTypes[t]; ok {
		return i.label
	}
	return string(t)
}

// Abbrev is the storyboard abbreviation. Unknown types use their first three
// letters upper-cased.
func (t ShotType) Abbrev() string {
	if i, ok := shotTypes[t]; ok {
		return i.abbrev
	}
	r := []rune(strings.ToUpper(string(t)))
	if len(r) > 3 {
		r = r[:3]
	}
	return string(r)
}

// ShotTypes lists the built-in shot types in declaration order.
func ShotTypes() []ShotType {
	return []ShotType{Wide, Establishing, Master, Medium, MediumCloseUp, CloseUp, ExtremeCloseUp,
		OverTheShoulder, TwoShot, Insert, Cutaway, POV, Drone, Tracking, Dolly, Handheld}
}

// StyleMode selects the look appended to generation prompts.
type StyleMode string

const (
	Storyboard StyleMode = "storyboard"
	Cinematic  StyleMode = "cinematic"
)

const (
	storyboardModifier = "storyboard style, line art, grayscale, pencil sketch"
	cinematicModifier  = "cinematic, photorealistic, dramatic lighting, film grain, 35mm"
)

// ParseStyleMode maps s to a StyleMode; anything unrecognised is Storyboard.
func ParseStyleMode(s string) StyleMode {
	if strings.EqualFold(strings.TrimSpace(s), string(Cinematic)) {
		return Cinematic
	}
	return Storyboard
}

// Modifier is the prompt clause for the style. Every mode other than
// Storyboard renders cinematic.
func (m StyleMode) Modifier() string {
	if m == Storyboard {
		return storyboardModifier
	}
	return cinematicModifier
}
