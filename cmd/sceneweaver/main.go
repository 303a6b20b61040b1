/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Command sceneweaver parses screenplay layouts into structured documents and
// breaks scenes down into shot lists.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"sceneweaver/internal/config"
	"sceneweaver/internal/crash"
	applog "sceneweaver/internal/log"
)

func main() {
	// initialize structured logging using environment defaults; the config
	// file can refine it once loaded
	applog.Init(applog.FromEnv())
	defer crash.Recover(dataDir())

	app := newApp()
	if err := app.Run(os.Args); err != nil {
		applog.WithComponent("cli").Error("command failed", slog.Any("err", err))
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// dataDir is the directory holding the local database and crash reports,
// next to the config file.
func dataDir() string {
	p, err := config.ConfigPath()
	if err != nil {
		return ""
	}
	return filepath.Dir(p)
}
