/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package version holds build identification.
package version

import (
	"fmt"
	"runtime"
)

// Version is overridden at build time:
//
//	go build -ldflags "-X sceneweaver/internal/version.Version=v0.3.0"
var Version = "dev"

// Commit is the short VCS revision, optional.
var Commit = ""

// String returns a human-readable version line.
func String() string {
	if Commit != "" {
		return fmt.Sprintf("%s (%s, %s)", Version, Commit, runtime.Version())
	}
	return fmt.Sprintf("%s (%s)", Version, runtime.Version())
}
