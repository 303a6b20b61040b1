/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"sceneweaver/internal/storage"
)

// DefaultShotSeconds is used for shots without a duration.
const DefaultShotSeconds = 3.0

// FCPXML writes a Final Cut Pro XML timeline (also read by DaVinci Resolve)
// with one asset clip per shot laid out back to back on a 1080p23.98
// sequence. Clip sources stay empty until images exist.
func FCPXML(w io.Writer, b storage.Bundle) error {
	if shotCount(b) == 0 {
		return ErrNoShots
	}
	title := strings.TrimSpace(b.Title)
	if title == "" {
		title = "Untitled"
	}

	var resources, clips bytes.Buffer
	offset := 0.0
	n := 0
	for _, sc := range b.Scenes {
		for _, sh := range sc.Shots {
			n++
			d := sh.DurationSeconds
			if d <= 0 {
				d = DefaultShotSeconds
			}
			fmt.Fprintf(&resources, "        <asset id=\"r%d\" name=\"Shot_%d\" uid=\"%s\" src=\"\" start=\"0s\" duration=\"%ss\" hasVideo=\"1\" format=\"r0\"/>\n",
				n, n, uuid.NewString(), secs(d))
			fmt.Fprintf(&clips, "                        <asset-clip name=\"%s\" ref=\"r%d\" offset=\"%ss\" duration=\"%ss\" start=\"0s\"/>\n",
				xmlEsc(ShotLabel(sh)+" "+SceneTitle(sc)), n, secs(offset), secs(d))
			offset += d
		}
	}

	var buf bytes.Buffer
	buf.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<!DOCTYPE fcpxml>\n<fcpxml version=\"1.9\">\n")
	buf.WriteString("    <resources>\n")
	buf.WriteString("        <format id=\"r0\" name=\"FFVideoFormat1080p2398\" frameDuration=\"1001/24000s\" width=\"1920\" height=\"1080\" colorSpace=\"1-1-1 (Rec. 709)\"/>\n")
	buf.Write(resources.Bytes())
	buf.WriteString("    </resources>\n    <library>\n")
	fmt.Fprintf(&buf, "        <event name=\"%s\">\n", xmlEsc(title))
	fmt.Fprintf(&buf, "            <project name=\"%s\">\n", xmlEsc(title+"_Storyboard"))
	fmt.Fprintf(&buf, "                <sequence format=\"r0\" duration=\"%ss\">\n", secs(offset))
	buf.WriteString("                    <spine>\n")
	buf.Write(clips.Bytes())
	buf.WriteString("                    </spine>\n                </sequence>\n            </project>\n        </event>\n    </library>\n</fcpxml>\n")

	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write fcpxml: %w", err)
	}
	return nil
}

func secs(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

func xmlEsc(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
