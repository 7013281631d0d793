// Copyright (c) 2026 QuickKeys Team
// QuickKeys - global hotkey credential automation
// This source code is licensed under the MIT license found in the LICENSE file.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestFlattenYAML(t *testing.T) {
	keys := make(map[string]struct{})
	flattenYAML("", map[string]interface{}{
		"run": map[string]interface{}{"listening": "x"},
		"list.empty": "y",
	}, keys)
	want := []string{"list.empty", "run.listening"}
	if got := difference(keys, nil); !reflect.DeepEqual(got, want) {
		t.Fatalf("keys = %v, want %v", got, want)
	}
}

func TestLint(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "ui", "cli", "a.go"), `package cli
func f() {
	_ = i18n.T("run.listening")
	_ = i18n.T("run.unknown", 1)
}`)
	writeFile(t, filepath.Join(root, "ui", "cli", "a_test.go"), `package cli
func g() { _ = i18n.T("test.only") }`)
	writeFile(t, filepath.Join(root, localesDir, "en.yaml"), "run.listening: \"Listening\"\nlist.empty: \"Nothing\"\n")
	writeFile(t, filepath.Join(root, localesDir, "de.yaml"), "run.listening: \"Warte\"\n")

	rep, err := lint(root)
	if err != nil {
		t.Fatalf("lint: %v", err)
	}
	if !reflect.DeepEqual(rep.Undefined, []string{"run.unknown"}) {
		t.Errorf("undefined = %v", rep.Undefined)
	}
	if !reflect.DeepEqual(rep.Orphaned, []string{"list.empty"}) {
		t.Errorf("orphaned = %v", rep.Orphaned)
	}
	if !reflect.DeepEqual(rep.Missing["de.yaml"], []string{"list.empty"}) {
		t.Errorf("missing = %v", rep.Missing)
	}
	if !rep.failed() {
		t.Error("expected failure")
	}

	var buf bytes.Buffer
	printReport(&buf, rep)
	if !strings.Contains(buf.String(), "Missing in de.yaml:\n  - list.empty") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
}

func TestLintCleanTree(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "main.go"), `package main
func f() { _ = i18n.T("a.b") }`)
	writeFile(t, filepath.Join(root, localesDir, "en.yaml"), "a.b: x\n")
	writeFile(t, filepath.Join(root, localesDir, "de.yaml"), "a:\n  b: y\n")

	rep, err := lint(root)
	if err != nil {
		t.Fatalf("lint: %v", err)
	}
	if rep.failed() || len(rep.Orphaned) != 0 {
		t.Fatalf("unexpected report: %+v", rep)
	}
}

func TestLintMissingPrimary(t *testing.T) {
	if _, err := lint(t.TempDir()); err == nil {
		t.Fatal("expected error without a primary catalog")
	}
}
