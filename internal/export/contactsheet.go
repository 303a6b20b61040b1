/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"sceneweaver/internal/breakdown"
	"sceneweaver/internal/storage"
)

// ContactSheetOptions controls the PNG contact sheet.
// Sizes are pixels; zero values take defaults.
type ContactSheetOptions struct {
	Columns     int // default 4
	PanelWidth  int // default 240
	PanelHeight int // default 135 (16:9)
	Gutter      int // default 12
}

func (o ContactSheetOptions) withDefaults() ContactSheetOptions {
	if o.Columns <= 0 {
		o.Columns = 4
	}
	if o.PanelWidth <= 0 {
		o.PanelWidth = 240
	}
	if o.PanelHeight <= 0 {
		o.PanelHeight = 135
	}
	if o.Gutter <= 0 {
		o.Gutter = 12
	}
	return o
}

var (
	white     = color.RGBA{255, 255, 255, 255}
	black     = color.RGBA{0, 0, 0, 255}
	lightGrey = color.RGBA{211, 211, 211, 255}
	grey      = color.RGBA{128, 128, 128, 255}
)

// captionLines is the number of caption lines under a panel.
const captionLines = 2

// ContactSheetPNG draws every shot of b as a labelled placeholder panel on a
// single image, one row per scene chunk of Columns panels, and encodes it as
// PNG.
func ContactSheetPNG(w io.Writer, b storage.Bundle, opt ContactSheetOptions) error {
	if shotCount(b) == 0 {
		return ErrNoShots
	}
	img := ContactSheet(b, opt)
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// ContactSheet renders the sheet image.
func ContactSheet(b storage.Bundle, opt ContactSheetOptions) *image.RGBA {
	opt = opt.withDefaults()
	face := basicfont.Face7x13
	lineH := face.Metrics().Height.Ceil()
	headerH := lineH + 8
	cellH := opt.PanelHeight + 6 + (captionLines+1)*lineH

	rows := 0
	for _, sc := range b.Scenes {
		if n := len(sc.Shots); n > 0 {
			rows += (n + opt.Columns - 1) / opt.Columns
		}
	}
	scenes := 0
	for _, sc := range b.Scenes {
		if len(sc.Shots) > 0 {
			scenes++
		}
	}
	width := opt.Gutter + opt.Columns*(opt.PanelWidth+opt.Gutter)
	height := opt.Gutter + scenes*headerH + rows*(cellH+opt.Gutter)

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: white}, image.Point{}, draw.Src)

	y := opt.Gutter
	for _, sc := range b.Scenes {
		if len(sc.Shots) == 0 {
			continue
		}
		drawText(img, face, opt.Gutter, y+lineH, SceneTitle(sc), black, width-2*opt.Gutter)
		y += headerH
		for i, sh := range sc.Shots {
			col := i % opt.Columns
			if col == 0 && i > 0 {
				y += cellH + opt.Gutter
			}
			x := opt.Gutter + col*(opt.PanelWidth+opt.Gutter)
			drawPanel(img, face, x, y, opt.PanelWidth, opt.PanelHeight, sh)
		}
		y += cellH + opt.Gutter
	}
	return img
}

// RenderPanel draws a single placeholder panel with its label and caption.
func RenderPanel(sh breakdown.Shot, width, height int) *image.RGBA {
	face := basicfont.Face7x13
	lineH := face.Metrics().Height.Ceil()
	img := image.NewRGBA(image.Rect(0, 0, width, height+6+(captionLines+1)*lineH))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: white}, image.Point{}, draw.Src)
	drawPanel(img, face, 0, 0, width, height, sh)
	return img
}

func drawPanel(img *image.RGBA, face font.Face, x, y, w, h int, sh breakdown.Shot) {
	lineH := face.Metrics().Height.Ceil()
	fillRect(img, x, y, x+w-1, y+h-1, color.RGBA{245, 245, 245, 255})
	strokeRect(img, x, y, x+w-1, y+h-1, lightGrey)
	pending := "[Pending]"
	tw := font.MeasureString(face, pending).Ceil()
	drawText(img, face, x+(w-tw)/2, y+h/2+lineH/3, pending, grey, w)

	ty := y + h + 6 + lineH
	drawText(img, face, x, ty, ShotLabel(sh), black, w)
	for i, line := range wrap(face, Caption(sh), w, captionLines) {
		drawText(img, face, x, ty+(i+1)*lineH, line, grey, w)
	}
}

// drawText writes s with its baseline at y, clipped to maxW pixels.
func drawText(img *image.RGBA, face font.Face, x, y int, s string, col color.RGBA, maxW int) {
	clip := img.SubImage(image.Rect(x, y-face.Metrics().Ascent.Ceil()-1, x+maxW, y+face.Metrics().Descent.Ceil()+1)).(*image.RGBA)
	d := &font.Drawer{
		Dst:  clip,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// wrap breaks s into at most maxLines lines of at most w pixels, word by
// word. The last line is cut when the text does not fit.
func wrap(face font.Face, s string, w, maxLines int) []string {
	var lines []string
	cur := ""
	for _, word := range strings.Fields(s) {
		next := word
		if cur != "" {
			next = cur + " " + word
		}
		if font.MeasureString(face, next).Ceil() <= w || cur == "" {
			cur = next
			continue
		}
		lines = append(lines, cur)
		if len(lines) == maxLines {
			return lines
		}
		cur = word
	}
	if cur != "" && len(lines) < maxLines {
		lines = append(lines, cur)
	}
	return lines
}

// strokeRect draws a 1px axis-aligned rectangle border inclusive of endpoints.
func strokeRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	for x := x0; x <= x1; x++ {
		img.SetRGBA(x, y0, col)
		img.SetRGBA(x, y1, col)
	}
	for y := y0; y <= y1; y++ {
		img.SetRGBA(x0, y, col)
		img.SetRGBA(x1, y, col)
	}
}

func fillRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			img.SetRGBA(x, y, col)
		}
	}
}
