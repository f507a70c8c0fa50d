package treescan

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	gitignore "github.com/monochromegane/go-gitignore"
	"golang.org/x/text/unicode/norm"
)

// AnyIgnore ignores an entry when at least one of preds does. Nil predicates
// are skipped.
func AnyIgnore(preds ...IgnoreFunc) IgnoreFunc {
	return func(e Entry) bool {
		for _, p := range preds {
			if p != nil && p(e) {
				return true
			}
		}
		return false
	}
}

// IgnorePrefixes ignores every entry whose path is root joined with one of
// fragments, or lies beneath it. Matching is per path component, so ".git"
// does not also swallow ".github". Paths are compared in NFC form.
func IgnorePrefixes(root string, fragments ...string) IgnoreFunc {
	prefixes := make([]string, 0, len(fragments))
	for _, f := range fragments {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		prefixes = append(prefixes, norm.NFC.String(filepath.Join(root, f)))
	}
	return func(e Entry) bool {
		return hasPathPrefix(norm.NFC.String(filepath.Clean(e.Path)), prefixes)
	}
}

func hasPathPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if path == p || strings.HasPrefix(path, p+string(os.PathSeparator)) {
			return true
		}
	}
	return false
}

// IgnoreGlobs ignores entries whose base name matches any of patterns.
func IgnoreGlobs(patterns ...string) (IgnoreFunc, error) {
	compiled := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, &PatternError{Pattern: p, Err: err}
		}
		compiled = append(compiled, g)
	}
	return func(e Entry) bool {
		for _, g := range compiled {
			if g.Match(e.Name) {
				return true
			}
		}
		return false
	}, nil
}

// IgnoreHidden ignores dot-prefixed names.
func IgnoreHidden() IgnoreFunc {
	return func(e Entry) bool {
		return strings.HasPrefix(e.Name, ".")
	}
}

// IgnoreGitignore ignores entries matched by the rules in root/.gitignore.
// A missing .gitignore yields a predicate that ignores nothing.
func IgnoreGitignore(root string) (IgnoreFunc, error) {
	path := filepath.Join(root, ".gitignore")
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return func(Entry) bool { return false }, nil
		}
		return nil, newPathError("stat", path, err)
	}

	matcher, err := gitignore.NewGitIgnore(path, root)
	if err != nil {
		return nil, newPathError("read", path, err)
	}
	return func(e Entry) bool {
		return matcher.Match(e.Path, e.IsDir())
	}, nil
}

// PatternError reports an ignore pattern that failed to compile.
type PatternError struct {
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return "treescan: invalid pattern " + e.Pattern + ": " + e.Err.Error()
}

func (e *PatternError) Unwrap() error { return e.Err }
