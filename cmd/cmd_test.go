package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/TFMV/treescan/walk"
	"github.com/spf13/viper"
)

// setConfig overrides viper keys for one test and restores them afterwards.
func setConfig(t *testing.T, values map[string]interface{}) {
	t.Helper()
	defaults := map[string]interface{}{
		"workers":       walk.DefaultConcurrentWalks,
		"stat-workers":  walk.DefaultStatConcurrency,
		"ignore":        []string{},
		"ignore-glob":   []string{},
		"gitignore":     false,
		"skip-hidden":   false,
		"verbose":       false,
		"silent":        false,
		"format":        "text",
		"progress":      false,
		"timeout":       0,
		"list.template": "{}",
	}
	for k, v := range defaults {
		viper.Set(k, v)
	}
	for k, v := range values {
		viper.Set(k, v)
	}
	t.Cleanup(func() {
		for k, v := range defaults {
			viper.Set(k, v)
		}
	})
}

func makeTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for _, p := range []string{"a.txt", "b.txt", ".git/x.txt", "sub/c.txt", "sub/debug.log"} {
		full := filepath.Join(root, filepath.FromSlash(p))
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(p), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestRunCountNoDefaultIgnores(t *testing.T) {
	root := makeTree(t)
	setConfig(t, nil)

	var out bytes.Buffer
	if err := runCount(context.Background(), &out, root); err != nil {
		t.Fatalf("runCount failed: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "Retrieved search file count: 5" {
		t.Errorf("Unexpected output %q", got)
	}
}

func TestRunCountWithIgnores(t *testing.T) {
	root := makeTree(t)
	setConfig(t, map[string]interface{}{
		"ignore":      []string{".git"},
		"ignore-glob": []string{"*.log"},
	})

	var out bytes.Buffer
	if err := runCount(context.Background(), &out, root); err != nil {
		t.Fatalf("runCount failed: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "Retrieved search file count: 3" {
		t.Errorf("Unexpected output %q", got)
	}
}

func TestRunCountJSON(t *testing.T) {
	root := makeTree(t)
	setConfig(t, map[string]interface{}{
		"format":      "json",
		"skip-hidden": true,
	})

	var out bytes.Buffer
	if err := runCount(context.Background(), &out, root); err != nil {
		t.Fatalf("runCount failed: %v", err)
	}
	var report struct {
		Root  string `json:"root"`
		Count int    `json:"count"`
	}
	if err := json.Unmarshal(out.Bytes(), &report); err != nil {
		t.Fatalf("Invalid JSON %q: %v", out.String(), err)
	}
	if report.Count != 4 || report.Root != root {
		t.Errorf("Unexpected report %+v", report)
	}
}

func TestRunCountMissingRoot(t *testing.T) {
	setConfig(t, nil)

	err := runCount(context.Background(), &bytes.Buffer{}, filepath.Join(t.TempDir(), "missing"))
	if !errors.Is(err, walk.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestRunCountInvalidFormat(t *testing.T) {
	setConfig(t, map[string]interface{}{"format": "xml"})

	if err := runCount(context.Background(), &bytes.Buffer{}, t.TempDir()); err == nil {
		t.Error("Expected error for invalid format")
	}
}

func TestRunListTemplate(t *testing.T) {
	root := makeTree(t)
	setConfig(t, map[string]interface{}{
		"ignore":        []string{".git", "sub"},
		"list.template": "{base} ({size} bytes)",
		"silent":        true,
	})

	var out bytes.Buffer
	if err := runList(context.Background(), &out, root); err != nil {
		t.Fatalf("runList failed: %v", err)
	}
	want := "a.txt (5 bytes)\nb.txt (5 bytes)\n"
	if out.String() != want {
		t.Errorf("Expected %q, got %q", want, out.String())
	}
}

func TestBuildIgnoreGitignore(t *testing.T) {
	root := makeTree(t)
	if err := os.WriteFile(filepath.Join(root, ".gitignore"), []byte("*.log\n"), 0644); err != nil {
		t.Fatal(err)
	}
	setConfig(t, map[string]interface{}{
		"gitignore": true,
		"ignore":    []string{".git"},
	})

	ignore, err := buildIgnore(root)
	if err != nil {
		t.Fatalf("buildIgnore failed: %v", err)
	}
	files, err := walk.Walk(context.Background(), root, ignore)
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}
	// a.txt, b.txt, sub/c.txt and .gitignore itself
	if len(files) != 4 {
		t.Errorf("Expected 4 files, got %d", len(files))
	}
}

func TestBuildIgnoreNone(t *testing.T) {
	setConfig(t, nil)
	ignore, err := buildIgnore(t.TempDir())
	if err != nil {
		t.Fatalf("buildIgnore failed: %v", err)
	}
	if ignore != nil {
		t.Error("Expected no predicate when no ignore options are set")
	}
}

func TestBuildIgnoreBadGlob(t *testing.T) {
	setConfig(t, map[string]interface{}{"ignore-glob": []string{"["}})
	if _, err := buildIgnore(t.TempDir()); err == nil {
		t.Error("Expected error for invalid glob")
	}
}
