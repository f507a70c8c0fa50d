package treescan

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// FormatEntry expands placeholders in template with values from e:
//
//	{}      full path        {""}      quoted full path
//	{base}  base name        {"base"}  quoted base name
//	{dir}   parent dir       {"dir"}   quoted parent dir
//	{size}  size in bytes    {"size"}  quoted size
//	{time}  mtime, RFC3339   {"time"}  quoted mtime
//	{type}  file|directory|other
func FormatEntry(template string, e Entry) string {
	size := strconv.FormatInt(e.Size, 10)
	mtime := e.ModTime.Format(time.RFC3339)
	dir := filepath.Dir(e.Path)

	r := strings.NewReplacer(
		`{""}`, strconv.Quote(e.Path),
		`{"base"}`, strconv.Quote(e.Name),
		`{"dir"}`, strconv.Quote(dir),
		`{"size"}`, strconv.Quote(size),
		`{"time"}`, strconv.Quote(mtime),
		"{}", e.Path,
		"{base}", e.Name,
		"{dir}", dir,
		"{size}", size,
		"{time}", mtime,
		"{type}", e.Type.String(),
	)
	return r.Replace(template)
}

// Summary renders the one-line report printed after a walk.
func Summary(files []Entry) string {
	return fmt.Sprintf("Retrieved search file count: %d", len(files))
}
