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
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	applog "sceneweaver/internal/log"
	"sceneweaver/internal/storage"
)

// PresetName represents a named export preset.
type PresetName string

const (
	PresetPrint  PresetName = "print"
	PresetReview PresetName = "review"
	PresetEdit   PresetName = "edit"
)

// Formats.
const (
	FormatPDF    = "pdf"
	FormatPNG    = "png"
	FormatStrips = "strips"
	FormatCSV    = "csv"
	FormatFCPXML = "fcpxml"
)

// BatchOptions controls batch export across several formats.
//
// Output files are named <title>_<kind>.<ext> inside OutDir, which is
// created when missing.
type BatchOptions struct {
	Preset     PresetName
	Formats    []string // allowed: pdf, png, strips, csv, fcpxml; empty means preset defaults
	OutDir     string
	Storyboard StoryboardOptions
	Sheet      ContactSheetOptions
}

// BatchExport writes b in every requested format and returns the written paths.
func BatchExport(b storage.Bundle, opt BatchOptions) ([]string, error) {
	l := applog.WithOperation(applog.WithComponent("export"), "batch")
	formats := opt.Formats
	if len(formats) == 0 {
		formats = presetDefaultFormats(opt.Preset)
	}
	outDir := opt.OutDir
	if outDir == "" {
		outDir = "."
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure out dir: %w", err)
	}
	stem := fileStem(b.Title)

	var written []string
	for _, f := range formats {
		f = strings.ToLower(strings.TrimSpace(f))
		var (
			buf  bytes.Buffer
			name string
			err  error
		)
		switch f {
		case FormatPDF:
			name = stem + "_storyboard.pdf"
			err = StoryboardPDF(&buf, b, opt.Storyboard)
		case FormatPNG:
			name = stem + "_contact_sheet.png"
			err = ContactSheetPNG(&buf, b, opt.Sheet)
		case FormatStrips:
			name = stem + "_strips.zip"
			err = ImageStrips(&buf, b, StripsOptions{})
		case FormatCSV:
			name = stem + "_shot_list.csv"
			err = ShotListCSV(&buf, b)
		case FormatFCPXML:
			name = stem + ".fcpxml"
			err = FCPXML(&buf, b)
		default:
			return written, fmt.Errorf("unknown format: %s", f)
		}
		if err != nil {
			return written, fmt.Errorf("%s: %w", f, err)
		}
		path := filepath.Join(outDir, name)
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}
		l.Info("exported", slog.String("format", f), slog.String("path", path), slog.Int("bytes", buf.Len()))
		written = append(written, path)
	}
	return written, nil
}

func presetDefaultFormats(p PresetName) []string {
	switch p {
	case PresetReview:
		return []string{FormatPNG, FormatStrips}
	case PresetEdit:
		return []string{FormatFCPXML, FormatCSV}
	default:
		return []string{FormatPDF, FormatCSV}
	}
}
