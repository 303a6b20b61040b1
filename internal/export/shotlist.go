/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"sceneweaver/internal/storage"
)

// ShotListHeader is the first CSV row.
var ShotListHeader = []string{
	"scene", "slug_line", "shot", "label", "shot_type", "shot_type_label",
	"duration_seconds", "start", "end", "description", "prompt",
}

// ShotListCSV writes one row per shot. start and end are running
// HH:MM:SS.f timecodes over the whole bundle.
func ShotListCSV(w io.Writer, b storage.Bundle) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ShotListHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	at := 0.0
	for _, sc := range b.Scenes {
		for _, sh := range sc.Shots {
			d := sh.DurationSeconds
			if d <= 0 {
				d = DefaultShotSeconds
			}
			row := []string{
				strconv.Itoa(sc.OrderIndex),
				SceneTitle(sc),
				strconv.Itoa(sh.OrderIndex),
				ShotLabel(sh),
				string(sh.ShotType),
				sh.ShotType.Label(),
				secs(d),
				Timecode(at),
				Timecode(at + d),
				sh.Description,
				sh.Prompt,
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("write row: %w", err)
			}
			at += d
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// Timecode formats seconds as HH:MM:SS.f.
func Timecode(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	tenths := int64(seconds*10 + 0.5)
	h := tenths / 36000
	m := (tenths / 600) % 60
	s := (tenths / 10) % 60
	return fmt.Sprintf("%02d:%02d:%02d.%d", h, m, s, tenths%10)
}
