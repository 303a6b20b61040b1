/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"sceneweaver/internal/breakdown"
	"sceneweaver/internal/screenplay"
)

// BackupsDirName is the folder next to a bundle that keeps its previous versions.
const BackupsDirName = "backups"

// Bundle is the portable JSON form of a broken-down screenplay: its scenes and
// the shot list of each.
type Bundle struct {
	Title  string        `json:"title"`
	Scenes []BundleScene `json:"scenes"`
}

// BundleScene is a scene with its shots.
type BundleScene struct {
	screenplay.Scene
	Shots []breakdown.Shot `json:"shots"`
}

// SaveBundle writes b to path transactionally. A previous file at path is
// first copied to a timestamped backup under BackupsDirName.
func SaveBundle(path string, b Bundle) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("bundle path is required")
	}
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal bundle: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure bundle dir: %w", err)
	}
	if _, statErr := os.Stat(path); statErr == nil {
		stamp := time.Now().Format("20060102-150405")
		bpath := filepath.Join(dir, BackupsDirName, fmt.Sprintf("%s.%s.bak", filepath.Base(path), stamp))
		if cerr := copyFile(path, bpath); cerr != nil {
			return fmt.Errorf("backup current bundle: %w", cerr)
		}
	}

	// temp file in the same directory, then rename over the target
	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", filepath.Base(path), os.Getpid(), rand.Int()))
	if werr := writeFileSync(temp, data); werr != nil {
		return fmt.Errorf("write temp bundle: %w", werr)
	}
	// Windows cannot rename over an existing file
	if _, err := os.Stat(path); err == nil {
		_ = os.Remove(path)
	}
	if rerr := os.Rename(temp, path); rerr != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace bundle: %w", rerr)
	}
	return nil
}

// LoadBundle reads the bundle at path. If the file is missing or unreadable
// the newest backup is tried instead.
func LoadBundle(path string) (Bundle, error) {
	b, err := readBundle(path)
	if err == nil {
		return b, nil
	}
	latest, lerr := latestBackup(path)
	if lerr != nil {
		return Bundle{}, fmt.Errorf("%w; backup attempt: %v", err, lerr)
	}
	b, berr := readBundle(latest)
	if berr != nil {
		return Bundle{}, fmt.Errorf("%w; backup attempt: %v", err, berr)
	}
	return b, nil
}

func readBundle(path string) (Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Bundle{}, fmt.Errorf("open bundle: %w", err)
	}
	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return Bundle{}, fmt.Errorf("parse bundle: %w", err)
	}
	return b, nil
}

func latestBackup(path string) (string, error) {
	bdir := filepath.Join(filepath.Dir(path), BackupsDirName)
	ents, err := os.ReadDir(bdir)
	if err != nil {
		return "", fmt.Errorf("read backups dir: %w", err)
	}
	prefix := filepath.Base(path) + "."
	var candidates []string
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, prefix) && strings.HasSuffix(name, ".bak") {
			candidates = append(candidates, filepath.Join(bdir, name))
		}
	}
	if len(candidates) == 0 {
		return "", errors.New("no backups found")
	}
	sort.Strings(candidates) // timestamp in name yields lexicographic order
	return candidates[len(candidates)-1], nil
}

// writeFileSync writes data to a file, ensures it is flushed to disk.
func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

// copyFile copies a file from src to dst (overwrites dst if exists).
func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sf.Close(); err == nil {
			err = cerr
		}
	}()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	return df.Sync()
}
