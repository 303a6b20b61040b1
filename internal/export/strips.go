/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"image/png"
	"io"
	"time"

	"sceneweaver/internal/storage"
)

// StripsOptions controls the image strip archive.
type StripsOptions struct {
	PanelWidth  int // default 480
	PanelHeight int // default 270
	Now         time.Time
}

type stripManifest struct {
	ProjectName string               `json:"project_name"`
	GeneratedAt string               `json:"generated_at"`
	Scenes      []stripManifestScene `json:"scenes"`
}

type stripManifestScene struct {
	ID       int                 `json:"id"`
	SlugLine string              `json:"slug_line"`
	Shots    []stripManifestShot `json:"shots"`
}

type stripManifestShot struct {
	Number      int    `json:"number"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Filename    string `json:"filename"`
}

// ImageStrips packages one PNG panel per shot into a ZIP archive, a folder
// per scene named after its slug line, plus a manifest.json describing them.
func ImageStrips(w io.Writer, b storage.Bundle, opt StripsOptions) error {
	if shotCount(b) == 0 {
		return ErrNoShots
	}
	if opt.PanelWidth <= 0 {
		opt.PanelWidth = 480
	}
	if opt.PanelHeight <= 0 {
		opt.PanelHeight = 270
	}
	now := opt.Now
	if now.IsZero() {
		now = time.Now()
	}

	zw := zip.NewWriter(w)
	man := stripManifest{ProjectName: b.Title, GeneratedAt: now.Format(time.RFC3339), Scenes: []stripManifestScene{}}
	for _, sc := range b.Scenes {
		if len(sc.Shots) == 0 {
			continue
		}
		title := SceneTitle(sc)
		dir := SafeName(title)
		ms := stripManifestScene{ID: sc.OrderIndex, SlugLine: title, Shots: []stripManifestShot{}}
		for i, sh := range sc.Shots {
			name := fmt.Sprintf("%s/shot_%03d.png", dir, i+1)
			var buf bytes.Buffer
			if err := png.Encode(&buf, RenderPanel(sh, opt.PanelWidth, opt.PanelHeight)); err != nil {
				_ = zw.Close()
				return fmt.Errorf("encode panel %s: %w", name, err)
			}
			if err := addZipFile(zw, name, buf.Bytes()); err != nil {
				_ = zw.Close()
				return fmt.Errorf("add %s: %w", name, err)
			}
			ms.Shots = append(ms.Shots, stripManifestShot{
				Number:      i + 1,
				Type:        string(sh.ShotType),
				Description: sh.Description,
				Filename:    name,
			})
		}
		man.Scenes = append(man.Scenes, ms)
	}
	data, err := json.MarshalIndent(man, "", "  ")
	if err != nil {
		_ = zw.Close()
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := addZipFile(zw, "manifest.json", data); err != nil {
		_ = zw.Close()
		return fmt.Errorf("add manifest: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("close zip: %w", err)
	}
	return nil
}

func addZipFile(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
