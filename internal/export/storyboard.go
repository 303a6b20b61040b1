/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"sceneweaver/internal/storage"
)

// ErrNoShots is returned when a bundle has nothing to draw.
var ErrNoShots = errors.New("no shots to export")

// Paper sizes in points.
var paperSizes = map[string]gofpdf.SizeType{
	"letter":  {Wd: 612, Ht: 792},
	"a4":      {Wd: 595.28, Ht: 841.89},
	"tabloid": {Wd: 792, Ht: 1224},
}

// StoryboardOptions controls PDF storyboard layout.
// Units are points; the page origin is top-left.
type StoryboardOptions struct {
	PaperSize    string // letter (default), a4, tabloid
	PanelsPerRow int    // default 3
	// Now stamps the title page; zero means time.Now.
	Now time.Time
}

const (
	marginX     = 36.0 // 0.5in
	marginTop   = 54.0 // 0.75in
	marginBot   = 36.0
	panelWidth  = 158.4 // 2.2in column
	panelHeight = 81.0  // 1.125in image area
	infoHeight  = 46.0
	rowGap      = 14.4 // 0.2in
)

// StoryboardPDF writes a storyboard: a title page, then per scene its slug
// line and rows of panels labelled TYP-N with the shot caption. Panels carry
// a [Pending] placeholder since images are produced elsewhere.
func StoryboardPDF(w io.Writer, b storage.Bundle, opt StoryboardOptions) error {
	total := shotCount(b)
	if total == 0 {
		return ErrNoShots
	}
	size, ok := paperSizes[strings.ToLower(strings.TrimSpace(opt.PaperSize))]
	if !ok {
		size = paperSizes["letter"]
	}
	perRow := opt.PanelsPerRow
	if perRow <= 0 {
		perRow = 3
	}
	// shrink wide rows so they fit the page
	colW := panelWidth
	if avail := size.Wd - 2*marginX; float64(perRow)*colW > avail {
		colW = avail / float64(perRow)
	}
	now := opt.Now
	if now.IsZero() {
		now = time.Now()
	}
	title := strings.TrimSpace(b.Title)
	if title == "" {
		title = "Untitled"
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{UnitStr: "pt", Size: size})
	pdf.SetTitle(title+" Storyboard", true)
	pdf.SetAuthor("SceneWeaver", false)
	pdf.SetMargins(marginX, marginTop, marginX)
	pdf.SetAutoPageBreak(false, marginBot)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	// Title page
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 24)
	pdf.Text(marginX, marginTop+144, tr(title))
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Text(marginX, marginTop+174, "Storyboard")
	pdf.SetFont("Helvetica", "", 11)
	pdf.Text(marginX, marginTop+210, "Generated: "+now.Format("January 02, 2006"))
	pdf.Text(marginX, marginTop+226, fmt.Sprintf("%d shots", total))

	pdf.AddPage()
	y := marginTop
	for _, sc := range b.Scenes {
		if len(sc.Shots) == 0 {
			continue
		}
		if y+24+panelHeight+infoHeight > size.Ht-marginBot {
			pdf.AddPage()
			y = marginTop
		}
		pdf.SetFont("Helvetica", "B", 14)
		pdf.SetTextColor(96, 96, 96)
		pdf.Text(marginX, y+14, tr(SceneTitle(sc)))
		pdf.SetTextColor(0, 0, 0)
		y += 24

		for i := 0; i < len(sc.Shots); i += perRow {
			end := i + perRow
			if end > len(sc.Shots) {
				end = len(sc.Shots)
			}
			if y+panelHeight+infoHeight > size.Ht-marginBot {
				pdf.AddPage()
				y = marginTop
			}
			pdf.SetDrawColor(211, 211, 211)
			pdf.SetLineWidth(0.5)
			for col, sh := range sc.Shots[i:end] {
				x := marginX + float64(col)*colW
				pdf.Rect(x, y, colW, panelHeight, "D")
				pdf.SetFont("Helvetica", "", 10)
				pdf.SetXY(x, y+panelHeight/2-6)
				pdf.CellFormat(colW, 12, "[Pending]", "", 0, "C", false, 0, "")

				pdf.SetXY(x+2, y+panelHeight+5)
				pdf.SetFont("Helvetica", "B", 8)
				pdf.CellFormat(colW-4, 10, ShotLabel(sh), "", 2, "L", false, 0, "")
				pdf.SetFont("Helvetica", "", 8)
				pdf.SetTextColor(128, 128, 128)
				pdf.SetX(x + 2)
				pdf.MultiCell(colW-4, 9, tr(Caption(sh)), "", "L", false)
				pdf.SetTextColor(0, 0, 0)
			}
			y += panelHeight + infoHeight + rowGap
		}
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
