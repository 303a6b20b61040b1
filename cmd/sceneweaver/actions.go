/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"sceneweaver/internal/breakdown"
	"sceneweaver/internal/config"
	"sceneweaver/internal/coverage"
	"sceneweaver/internal/export"
	"sceneweaver/internal/htmlimport"
	"sceneweaver/internal/layout"
	applog "sceneweaver/internal/log"
	"sceneweaver/internal/screenplay"
	"sceneweaver/internal/storage"
	"sceneweaver/internal/tokens"
)

// inputPath takes --input or the first argument. Empty means stdin.
func inputPath(c *cli.Context) string {
	if p := c.String("input"); p != "" {
		return p
	}
	return c.Args().First()
}

func readInput(c *cli.Context, path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(c.App.Reader)
	}
	return os.ReadFile(path)
}

func inputFormat(c *cli.Context, path string) (string, error) {
	f := strings.ToLower(strings.TrimSpace(c.String("format")))
	switch f {
	case "tokens", "html", "tiptap":
		return f, nil
	case "", "auto":
		switch strings.ToLower(filepath.Ext(path)) {
		case ".html", ".htm":
			return "html", nil
		}
		return "tokens", nil
	}
	return "", fmt.Errorf("unknown input format %q", f)
}

// readDocument parses the command input. Token dumps go through the layout
// builder, which reports bad dumps as an error block rather than failing.
func readDocument(c *cli.Context) (screenplay.Document, error) {
	path := inputPath(c)
	format, err := inputFormat(c, path)
	if err != nil {
		return screenplay.Document{}, err
	}
	data, err := readInput(c, path)
	if err != nil {
		return screenplay.Document{}, fmt.Errorf("read input: %w", err)
	}
	switch format {
	case "html":
		return htmlimport.Read(bytes.NewReader(data))
	case "tiptap":
		var root screenplay.TiptapNode
		if err := json.Unmarshal(data, &root); err != nil {
			return screenplay.Document{}, fmt.Errorf("decode tiptap: %w", err)
		}
		return screenplay.FromTiptap(root), nil
	}
	return screenplay.NewBuilder().Parse(tokens.Bytes(data)), nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (e *appEnv) parseAction(c *cli.Context) error {
	l := applog.WithOperation(applog.WithComponent("cli"), "parse")
	if c.Bool("explain") {
		return e.explain(c)
	}
	doc, err := readDocument(c)
	if err != nil {
		return err
	}
	l.Debug("parsed", slog.Int("blocks", len(doc.Blocks)))
	if c.Bool("save") {
		st, err := e.openStore(c)
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()
		id, err := st.SaveDocument(c.Context, c.String("title"), doc)
		if err != nil {
			return err
		}
		l.Info("document saved", slog.String("id", id))
		_, _ = fmt.Fprintln(c.App.ErrWriter, "document", id)
	}
	switch strings.ToLower(c.String("output")) {
	case "tiptap":
		return writeJSON(c.App.Writer, screenplay.ToTiptap(doc))
	case "html":
		return htmlimport.Write(c.App.Writer, doc)
	case "blocks", "":
		return writeJSON(c.App.Writer, doc.Blocks)
	default:
		return fmt.Errorf("unknown output %q", c.String("output"))
	}
}

// explain prints, per assembled line, the rule that typed it.
func (e *appEnv) explain(c *cli.Context) error {
	path := inputPath(c)
	if f, err := inputFormat(c, path); err != nil {
		return err
	} else if f != "tokens" {
		return errors.New("--explain needs a token dump")
	}
	data, err := readInput(c, path)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	pages, err := tokens.Decode(data)
	if err != nil {
		return err
	}
	cl := screenplay.NewClassifier()
	w := c.App.Writer
	for i, words := range pages {
		_, _ = fmt.Fprintf(w, "-- page %d\n", i+1)
		for _, line := range layout.Assemble(words) {
			text := strings.TrimSpace(line.Text())
			if text == "" {
				continue
			}
			b := cl.Classify(line)
			_, _ = fmt.Fprintf(w, "%6.1f  %-22s %-14s %s\n", line.LeftX(), cl.Explain(line.LeftX(), text), b.Type, text)
		}
	}
	return nil
}

func (e *appEnv) scenesAction(c *cli.Context) error {
	doc, err := readDocument(c)
	if err != nil {
		return err
	}
	return writeJSON(c.App.Writer, screenplay.SplitScenes(doc))
}

// baseRequest builds the request fields shared by every scene of one run.
func (e *appEnv) baseRequest(c *cli.Context) breakdown.Request {
	req := breakdown.Request{
		PresetID: e.cfg.General.DefaultPreset,
		Style:    coverage.ParseStyleMode(e.cfg.General.StyleMode),
	}
	if c.IsSet("preset") {
		req.PresetID = c.String("preset")
	}
	if c.Bool("heuristic") {
		req.PresetID = ""
	}
	if c.IsSet("style") {
		req.Style = coverage.ParseStyleMode(c.String("style"))
	}
	for _, n := range c.StringSlice("cast") {
		req.Cast = append(req.Cast, breakdown.CastMember{Name: n})
	}
	if c.String("location") != "" || c.String("location-desc") != "" {
		req.Location = &breakdown.Location{Name: c.String("location"), Description: c.String("location-desc")}
	}
	return req
}

func (e *appEnv) breakdownAction(c *cli.Context) error {
	l := applog.WithOperation(applog.WithComponent("cli"), "breakdown")
	eng := breakdown.NewEngine(e.catalog)
	base := e.baseRequest(c)

	var (
		doc       *screenplay.Document
		scenes    []screenplay.Scene
		single    bool
		singleReq *breakdown.Request
	)
	switch {
	case c.String("request") != "":
		data, err := os.ReadFile(c.String("request"))
		if err != nil {
			return fmt.Errorf("read request: %w", err)
		}
		var req breakdown.Request
		if err := json.Unmarshal(data, &req); err != nil {
			return fmt.Errorf("decode request: %w", err)
		}
		singleReq = &req
		single = true
		scenes = []screenplay.Scene{{OrderIndex: 1, SlugLine: screenplay.SlugLine(req.SceneText), ScriptText: req.SceneText}}
	case c.String("text") != "":
		data, err := readInput(c, c.String("text"))
		if err != nil {
			return fmt.Errorf("read scene text: %w", err)
		}
		text := string(data)
		single = true
		scenes = []screenplay.Scene{{OrderIndex: 1, SlugLine: screenplay.SlugLine(text), ScriptText: text}}
	default:
		d, err := readDocument(c)
		if err != nil {
			return err
		}
		doc = &d
		scenes = screenplay.SplitScenes(d)
	}

	var st sceneStore
	var docID string
	if c.Bool("store") {
		s, err := e.openStore(c)
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()
		st = s
		if doc != nil {
			if docID, err = st.SaveDocument(c.Context, c.String("title"), *doc); err != nil {
				return err
			}
		}
	}

	bundle := storage.Bundle{Title: c.String("title"), Scenes: make([]storage.BundleScene, 0, len(scenes))}
	for _, sc := range scenes {
		req := base
		if singleReq != nil {
			req = *singleReq
		}
		req.SceneText = sc.ScriptText
		var shots []breakdown.Shot
		if st != nil {
			rec := storage.SceneRecord{DocumentID: docID, Scene: sc, CoveragePreset: req.PresetID, StyleMode: string(req.Style)}
			if single {
				rec.ID = c.String("scene-id")
			}
			id, err := st.SaveScene(c.Context, rec)
			if err != nil {
				return err
			}
			if shots, err = eng.Regenerate(c.Context, st, id, req); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(c.App.ErrWriter, "scene", sc.OrderIndex, id)
		} else {
			shots = eng.Breakdown(req)
		}
		bundle.Scenes = append(bundle.Scenes, storage.BundleScene{Scene: sc, Shots: shots})
	}
	l.Info("breakdown done", slog.Int("scenes", len(bundle.Scenes)))

	if p := c.String("bundle"); p != "" {
		return storage.SaveBundle(p, bundle)
	}
	if single {
		return writeJSON(c.App.Writer, bundle.Scenes[0].Shots)
	}
	return writeJSON(c.App.Writer, bundle)
}

func (e *appEnv) presetsAction(c *cli.Context) error {
	presets := e.catalog.Presets()
	if c.Bool("json") {
		return writeJSON(c.App.Writer, presets)
	}
	w := c.App.Writer
	_, _ = fmt.Fprintf(w, "%-12s %-22s %-7s %s\n", "ID", "Name", "Shots", "Types")
	_, _ = fmt.Fprintln(w, strings.Repeat("-", 80))
	for _, p := range presets {
		types := make([]string, len(p.ShotTypes))
		for i, t := range p.ShotTypes {
			types[i] = t.Abbrev()
		}
		_, _ = fmt.Fprintf(w, "%-12s %-22s %-7s %s\n", p.ID, p.Name, fmt.Sprintf("%d-%d", p.MinShots, p.MaxShots), strings.Join(types, " "))
	}
	return nil
}

func (e *appEnv) exportAction(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return errors.New("export needs a bundle file")
	}
	b, err := storage.LoadBundle(path)
	if err != nil {
		return err
	}
	if strings.TrimSpace(b.Title) == "" {
		b.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	written, err := export.BatchExport(b, export.BatchOptions{
		Preset:     export.PresetName(c.String("preset")),
		Formats:    c.StringSlice("format"),
		OutDir:     c.String("out"),
		Storyboard: export.StoryboardOptions{PaperSize: c.String("paper"), PanelsPerRow: c.Int("per-row")},
	})
	for _, p := range written {
		_, _ = fmt.Fprintln(c.App.Writer, p)
	}
	return err
}

func (e *appEnv) searchAction(c *cli.Context) error {
	st, err := e.openStore(c)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()
	res, err := st.SearchBlocks(c.Context, storage.SearchQuery{
		Text:       strings.Join(c.Args().Slice(), " "),
		Types:      c.StringSlice("type"),
		DocumentID: c.String("doc"),
		Limit:      c.Int("limit"),
		Offset:     c.Int("offset"),
	})
	if err != nil {
		return err
	}
	w := c.App.Writer
	for _, r := range res {
		text := r.Snippet
		if text == "" {
			text = r.Text
		}
		_, _ = fmt.Fprintf(w, "%s %4d %-14s %s\n", r.DocumentID, r.Position, r.Type, text)
	}
	_, _ = fmt.Fprintf(w, "\nTotal: %d blocks\n", len(res))
	return nil
}

func (e *appEnv) shotsAction(c *cli.Context) error {
	id := c.Args().First()
	if id == "" {
		return errors.New("shots needs a scene id")
	}
	st, err := e.openStore(c)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()
	shots, err := st.ListShots(c.Context, id)
	if err != nil {
		return err
	}
	w := c.App.Writer
	_, _ = fmt.Fprintf(w, "%-4s %-8s %-18s %-6s %-9s %s\n", "#", "Label", "Type", "Secs", "Status", "Description")
	_, _ = fmt.Fprintln(w, strings.Repeat("-", 80))
	for _, s := range shots {
		_, _ = fmt.Fprintf(w, "%-4d %-8s %-18s %-6.1f %-9s %s\n", s.OrderIndex, export.ShotLabel(s.Shot), s.ShotType.Label(),
			s.DurationSeconds, s.Status, s.Description)
	}
	return nil
}

func (e *appEnv) shotsSetStatusAction(c *cli.Context) error {
	if c.NArg() != 2 {
		return errors.New("set-status needs a shot id and a status")
	}
	id, status := c.Args().Get(0), strings.ToLower(c.Args().Get(1))
	if !storage.ValidShotStatus(status) {
		return fmt.Errorf("unknown shot status %q", status)
	}
	st, err := e.openStore(c)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()
	if err := st.SetShotStatus(c.Context, id, status); err != nil {
		return err
	}
	applog.WithOperation(applog.WithComponent("cli"), "set_status").Info("shot status set",
		slog.String("shot", id), slog.String("status", status))
	return nil
}

func (e *appEnv) configShowAction(c *cli.Context) error {
	out := struct {
		config.AppConfig `yaml:",inline"`
		DSN              string `yaml:"postgres_dsn"`
	}{AppConfig: e.cfg, DSN: "unset"}
	if e.dsn != "" {
		out.DSN = "set"
		if env, ok := config.EnvOverrideFor("storage.postgres_dsn"); ok {
			out.DSN = "set via " + env
		}
	}
	data, err := yaml.Marshal(out)
	if err != nil {
		return err
	}
	_, err = c.App.Writer.Write(data)
	return err
}

func (e *appEnv) configPathAction(c *cli.Context) error {
	p, err := config.ConfigPath()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer, p)
	return err
}

func (e *appEnv) configSetDSNAction(c *cli.Context) error {
	dsn := strings.TrimSpace(c.Args().First())
	if dsn == "" {
		return errors.New("set-dsn needs a DSN")
	}
	return config.Save(e.cfg, dsn)
}

func (e *appEnv) configForgetDSNAction(c *cli.Context) error {
	return config.ForgetDSN()
}
