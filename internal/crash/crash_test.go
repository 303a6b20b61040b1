/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package crash

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sceneweaver/internal/storage"
)

func TestWriteReportCreatesFileInTemp(t *testing.T) {
	path, err := writeReport("", nil, "boom", []byte("stacktrace"))
	if err != nil {
		t.Fatalf("writeReport error: %v", err)
	}
	t.Cleanup(func() { _ = os.Remove(path) })
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	s := string(b)
	if !strings.Contains(s, "SceneWeaver Crash Report") {
		t.Fatalf("report header missing")
	}
	if !strings.Contains(s, "Panic: boom") {
		t.Fatalf("panic content missing: %s", s)
	}
	if strings.Contains(s, "Args:") {
		t.Fatalf("unexpected args line: %s", s)
	}
}

func TestWriteReportCreatesFileInBackups(t *testing.T) {
	root := t.TempDir()
	path, err := writeReport(root, []string{"sceneweaver", "parse"}, "kaboom", []byte("stack"))
	if err != nil {
		t.Fatalf("writeReport error: %v", err)
	}
	if !strings.HasPrefix(path, filepath.Join(root, storage.BackupsDirName)) {
		t.Fatalf("expected crash report under backups dir, got %s", path)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !bytes.Contains(b, []byte(`Args: ["sceneweaver" "parse"]`)) {
		t.Fatalf("args missing: %s", b)
	}
}

// Recover must write a report and call exitFn with ExitCode instead of
// letting the panic escape.
func TestRecoverExitsWithCode2(t *testing.T) {
	oldStderr := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w
	defer func() {
		_ = w.Close()
		os.Stderr = oldStderr
		_, _ = io.Copy(io.Discard, r)
	}()

	code := 0
	oldExit := exitFn
	exitFn = func(c int) { code = c }
	defer func() { exitFn = oldExit }()

	root := t.TempDir()
	func() {
		defer Recover(root)
		panic("boom")
	}()

	if code != ExitCode {
		t.Fatalf("exit code = %d, want %d", code, ExitCode)
	}
	files, _ := os.ReadDir(filepath.Join(root, storage.BackupsDirName))
	var found string
	for _, f := range files {
		if strings.HasPrefix(f.Name(), "crash-") && strings.HasSuffix(f.Name(), ".log") {
			found = filepath.Join(root, storage.BackupsDirName, f.Name())
		}
	}
	if found == "" {
		t.Fatalf("expected crash report file under backups dir")
	}
	b, err := os.ReadFile(found)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !bytes.Contains(b, []byte("Panic: boom")) {
		t.Fatalf("report does not contain panic: %s", b)
	}
}

func TestRecoverWithoutPanicIsNoop(t *testing.T) {
	called := false
	oldExit := exitFn
	exitFn = func(int) { called = true }
	defer func() { exitFn = oldExit }()

	func() {
		defer Recover(t.TempDir())
	}()
	if called {
		t.Fatalf("exitFn called without a panic")
	}
}
