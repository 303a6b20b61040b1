/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"sceneweaver/internal/backend"
	"sceneweaver/internal/breakdown"
	"sceneweaver/internal/config"
	applog "sceneweaver/internal/log"
	"sceneweaver/internal/screenplay"
	"sceneweaver/internal/storage"
)

// sceneStore is what the commands need from either database.
type sceneStore interface {
	breakdown.ShotStore
	SaveDocument(ctx context.Context, title string, doc screenplay.Document) (string, error)
	SaveScene(ctx context.Context, r storage.SceneRecord) (string, error)
	ListShots(ctx context.Context, sceneID string) ([]storage.ShotRecord, error)
	SetShotStatus(ctx context.Context, shotID, status string) error
	SearchBlocks(ctx context.Context, q storage.SearchQuery) ([]storage.SearchResult, error)
	Close() error
}

var (
	_ sceneStore = (*storage.Store)(nil)
	_ sceneStore = (*backend.PGStore)(nil)
)

// openStore opens the configured store; --driver and --db override the config.
func (e *appEnv) openStore(c *cli.Context) (sceneStore, error) {
	l := applog.WithOperation(applog.WithComponent("cli"), "open_store")
	driver := e.cfg.Storage.Driver
	if c.String("driver") != "" {
		driver = strings.ToLower(c.String("driver"))
	}
	switch driver {
	case config.DriverPostgres:
		st, err := backend.Open(c.Context, e.dsn)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return st, nil
	case config.DriverSQLite, "":
		path := e.cfg.Storage.SQLitePath
		if c.String("db") != "" {
			path = c.String("db")
		}
		if path == "" {
			path = filepath.Join(dataDir(), storage.DefaultFileName)
		}
		st, recovered, err := storage.OpenOrRecover(c.Context, path)
		if err != nil {
			return nil, err
		}
		if recovered {
			l.Warn("database was corrupt and has been recreated", slog.String("path", path))
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}
