package treescan

import (
	"os"
	"path/filepath"
	"time"
)

// EntryType discriminates what kind of filesystem object an Entry describes.
type EntryType int

const (
	TypeOther     EntryType = iota // symlinks, devices, sockets, pipes
	TypeFile                       // regular files
	TypeDirectory                  // directories
)

func (t EntryType) String() string {
	switch t {
	case TypeFile:
		return "file"
	case TypeDirectory:
		return "directory"
	default:
		return "other"
	}
}

// Entry is a metadata snapshot of one filesystem object taken when it was
// discovered. It is not re-validated afterwards.
type Entry struct {
	Path    string      // Root-joined path, unique within one walk
	Name    string      // Base name
	Type    EntryType   // File, directory or other
	Size    int64       // Size in bytes
	ModTime time.Time   // Modification time
	Mode    os.FileMode // Full mode bits, for predicates that need them
}

// IsFile reports whether the entry is a regular file.
func (e Entry) IsFile() bool { return e.Type == TypeFile }

// IsDir reports whether the entry is a directory.
func (e Entry) IsDir() bool { return e.Type == TypeDirectory }

// newEntry builds an Entry from lstat-style info. Symlinks are never
// followed, so they land in TypeOther.
func newEntry(path string, info os.FileInfo) Entry {
	mode := info.Mode()
	typ := TypeOther
	switch {
	case mode.IsRegular():
		typ = TypeFile
	case mode.IsDir():
		typ = TypeDirectory
	}
	return Entry{
		Path:    path,
		Name:    filepath.Base(path),
		Type:    typ,
		Size:    info.Size(),
		ModTime: info.ModTime(),
		Mode:    mode,
	}
}
