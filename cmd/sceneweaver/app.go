/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"github.com/urfave/cli/v2"

	"sceneweaver/internal/config"
	"sceneweaver/internal/coverage"
	applog "sceneweaver/internal/log"
	"sceneweaver/internal/version"
)

// appEnv is the state shared by all commands, filled in by the Before hook.
type appEnv struct {
	cfg     config.AppConfig
	dsn     string
	catalog *coverage.Catalog
}

func (e *appEnv) before(c *cli.Context) error {
	cfg, dsn, err := config.Load()
	if err != nil {
		return err
	}
	lvl := cfg.Logging.Level
	if c.Bool("verbose") {
		lvl = "debug"
	}
	applog.Init(applog.Options{
		Level:     lvl,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.Source,
		File:      cfg.Logging.File,
		Console:   c.App.ErrWriter,
	})
	cat, err := cfg.Catalog()
	if err != nil {
		return err
	}
	e.cfg, e.dsn, e.catalog = cfg, dsn, cat
	return nil
}

var inputFlags = []cli.Flag{
	&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Usage: "screenplay file, - for stdin"},
	&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "auto", Usage: "input format: auto, tokens, html, tiptap"},
}

var storeFlags = []cli.Flag{
	&cli.StringFlag{Name: "driver", Usage: "store driver: sqlite, postgres (default from config)"},
	&cli.StringFlag{Name: "db", Usage: "SQLite database path (default from config)"},
}

func flags(groups ...[]cli.Flag) []cli.Flag {
	var out []cli.Flag
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

func newApp() *cli.App {
	env := &appEnv{}
	return &cli.App{
		Name:    "sceneweaver",
		Usage:   "screenplay layout parser and shot breakdown",
		Version: version.String(),
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"V"}, Usage: "debug logging"},
		},
		Before: env.before,
		Commands: []*cli.Command{
			{
				Name:      "parse",
				Usage:     "Parse a token dump or screenplay HTML into blocks",
				ArgsUsage: "[file]",
				Flags: flags(inputFlags, storeFlags, []cli.Flag{
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Value: "blocks", Usage: "output: blocks, tiptap, html"},
					&cli.BoolFlag{Name: "explain", Usage: "print the rule that typed each line (token dumps only)"},
					&cli.BoolFlag{Name: "save", Usage: "store the document"},
					&cli.StringFlag{Name: "title", Usage: "document title when saving"},
				}),
				Action: env.parseAction,
			},
			{
				Name:      "scenes",
				Usage:     "Split a parsed screenplay into scenes",
				ArgsUsage: "[file]",
				Flags:     inputFlags,
				Action:    env.scenesAction,
			},
			{
				Name:  "breakdown",
				Usage: "Derive shot lists for scene text or a whole screenplay",
				Flags: flags(inputFlags, storeFlags, []cli.Flag{
					&cli.StringFlag{Name: "text", Aliases: []string{"t"}, Usage: "plain scene text file, - for stdin"},
					&cli.StringFlag{Name: "request", Usage: "breakdown request JSON file"},
					&cli.StringFlag{Name: "preset", Aliases: []string{"p"}, Usage: "coverage preset id (default from config)"},
					&cli.BoolFlag{Name: "heuristic", Usage: "ignore presets and use the text heuristic"},
					&cli.StringFlag{Name: "style", Usage: "style mode: storyboard, cinematic"},
					&cli.StringSliceFlag{Name: "cast", Usage: "linked cast member (repeatable)"},
					&cli.StringFlag{Name: "location", Usage: "linked location name"},
					&cli.StringFlag{Name: "location-desc", Usage: "linked location description"},
					&cli.StringFlag{Name: "title", Usage: "bundle title"},
					&cli.StringFlag{Name: "bundle", Aliases: []string{"b"}, Usage: "write the result as a bundle file"},
					&cli.BoolFlag{Name: "store", Usage: "persist scenes and shots"},
					&cli.StringFlag{Name: "scene-id", Usage: "scene id used with --store for single scene text"},
				}),
				Action: env.breakdownAction,
			},
			{
				Name:   "presets",
				Usage:  "List coverage presets",
				Flags:  []cli.Flag{&cli.BoolFlag{Name: "json", Usage: "print JSON"}},
				Action: env.presetsAction,
			},
			{
				Name:      "export",
				Usage:     "Export a bundle as storyboard, contact sheet, strips, shot list or timeline",
				ArgsUsage: "<bundle>",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{Name: "format", Aliases: []string{"f"}, Usage: "pdf, png, strips, csv, fcpxml (repeatable)"},
					&cli.StringFlag{Name: "preset", Value: "print", Usage: "export preset: print, review, edit"},
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Value: ".", Usage: "output directory"},
					&cli.StringFlag{Name: "paper", Value: "letter", Usage: "PDF paper size: letter, a4, tabloid"},
					&cli.IntFlag{Name: "per-row", Value: 3, Usage: "PDF panels per row"},
				},
				Action: env.exportAction,
			},
			{
				Name:      "search",
				Usage:     "Full-text search over stored screenplay blocks",
				ArgsUsage: "[query]",
				Flags: flags(storeFlags, []cli.Flag{
					&cli.StringSliceFlag{Name: "type", Usage: "block type filter (repeatable)"},
					&cli.StringFlag{Name: "doc", Usage: "document id"},
					&cli.IntFlag{Name: "limit", Value: 20},
					&cli.IntFlag{Name: "offset"},
				}),
				Action: env.searchAction,
			},
			{
				Name:      "shots",
				Usage:     "List stored shots of a scene",
				ArgsUsage: "<scene-id>",
				Flags:     storeFlags,
				Action:    env.shotsAction,
				Subcommands: []*cli.Command{
					{
						Name:      "set-status",
						Usage:     "Mark a stored shot pending, completed or failed",
						ArgsUsage: "<shot-id> <status>",
						Flags:     storeFlags,
						Action:    env.shotsSetStatusAction,
					},
				},
			},
			{
				Name:  "config",
				Usage: "Show or change configuration",
				Subcommands: []*cli.Command{
					{Name: "show", Usage: "print the effective configuration", Action: env.configShowAction},
					{Name: "path", Usage: "print the config file path", Action: env.configPathAction},
					{Name: "set-dsn", Usage: "store the Postgres DSN in the OS keychain", ArgsUsage: "<dsn>", Action: env.configSetDSNAction},
					{Name: "forget-dsn", Usage: "remove the stored Postgres DSN", Action: env.configForgetDSNAction},
				},
			},
			{
				Name:  "version",
				Usage: "Show version",
				Action: func(c *cli.Context) error {
					_, err := c.App.Writer.Write([]byte(version.String() + "\n"))
					return err
				},
			},
		},
	}
}
