package treescan

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/spf13/afero"
)

// writeTree creates each relative path under root. Paths ending in "/" are
// created as empty directories.
func writeTree(t testing.TB, root string, paths ...string) {
	t.Helper()
	for _, p := range paths {
		full := filepath.Join(root, filepath.FromSlash(p))
		if p[len(p)-1] == '/' {
			if err := os.MkdirAll(full, 0755); err != nil {
				t.Fatalf("Failed to create directory %s: %v", full, err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatalf("Failed to create directory for %s: %v", full, err)
		}
		if err := os.WriteFile(full, []byte(p), 0644); err != nil {
			t.Fatalf("Failed to create file %s: %v", full, err)
		}
	}
}

// memTree builds an in-memory filesystem with the same conventions as writeTree.
func memTree(t testing.TB, root string, paths ...string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	if err := fs.MkdirAll(root, 0755); err != nil {
		t.Fatalf("Failed to create root: %v", err)
	}
	for _, p := range paths {
		full := filepath.Join(root, filepath.FromSlash(p))
		if p[len(p)-1] == '/' {
			if err := fs.MkdirAll(full, 0755); err != nil {
				t.Fatalf("Failed to create directory %s: %v", full, err)
			}
			continue
		}
		if err := fs.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatalf("Failed to create directory for %s: %v", full, err)
		}
		if err := afero.WriteFile(fs, full, []byte(p), 0644); err != nil {
			t.Fatalf("Failed to create file %s: %v", full, err)
		}
	}
	return fs
}

// relPaths returns the sorted slash-separated paths of files relative to root.
func relPaths(t testing.TB, root string, files []Entry) []string {
	t.Helper()
	out := make([]string, 0, len(files))
	for _, f := range files {
		rel, err := filepath.Rel(root, f.Path)
		if err != nil {
			t.Fatalf("Failed to relativize %s: %v", f.Path, err)
		}
		out = append(out, filepath.ToSlash(rel))
	}
	sort.Strings(out)
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// faultyAccessor wraps another Accessor and fails chosen paths.
type faultyAccessor struct {
	Accessor
	listErr map[string]error
	statErr map[string]error
	onList  func(path string)
}

func (f *faultyAccessor) ListChildNames(ctx context.Context, path string) ([]string, error) {
	if f.onList != nil {
		f.onList(path)
	}
	if err, ok := f.listErr[path]; ok {
		return nil, newPathError("list", path, err)
	}
	return f.Accessor.ListChildNames(ctx, path)
}

func (f *faultyAccessor) Stat(ctx context.Context, path string) (Entry, error) {
	if err, ok := f.statErr[path]; ok {
		return Entry{}, newPathError("stat", path, err)
	}
	return f.Accessor.Stat(ctx, path)
}
