package treescan

import (
	"context"
	"os"
	"sync"

	"github.com/karrick/godirwalk"
	"github.com/spf13/afero"
)

// Accessor lists directories and snapshots entry metadata. Implementations
// must be read-only and safe for concurrent use.
type Accessor interface {
	// ListChildNames returns the immediate child names of the directory at
	// path, in no particular order.
	ListChildNames(ctx context.Context, path string) ([]string, error)

	// Stat returns the metadata of path without following symlinks.
	Stat(ctx context.Context, path string) (Entry, error)
}

const scratchBufferSize = 64 * 1024

// OSAccessor reads the local filesystem. Listing goes through godirwalk,
// which avoids the per-entry lstat that os.ReadDir performs on some platforms.
type OSAccessor struct {
	scratch sync.Pool
}

// NewOSAccessor returns an Accessor backed by the operating system.
func NewOSAccessor() *OSAccessor {
	return &OSAccessor{
		scratch: sync.Pool{
			New: func() any {
				b := make([]byte, scratchBufferSize)
				return &b
			},
		},
	}
}

func (a *OSAccessor) ListChildNames(ctx context.Context, path string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	buf := a.scratch.Get().(*[]byte)
	names, err := godirwalk.ReadDirnames(path, *buf)
	a.scratch.Put(buf)
	if err != nil {
		perr := newPathError("list", path, err)
		// Some platforms report reading a regular file as a generic error.
		if perr.Kind == ErrUnknownIO {
			if info, statErr := os.Lstat(path); statErr == nil && !info.IsDir() {
				perr.Kind = ErrNotADirectory
			}
		}
		return nil, perr
	}
	return names, nil
}

func (a *OSAccessor) Stat(ctx context.Context, path string) (Entry, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, err
	}

	info, err := os.Lstat(path)
	if err != nil {
		return Entry{}, newPathError("stat", path, err)
	}
	return newEntry(path, info), nil
}

// FsAccessor reads an afero filesystem: in-memory trees, read-only
// overlays, base-path jails and the like.
type FsAccessor struct {
	fs afero.Fs
}

// NewFsAccessor returns an Accessor over fs.
func NewFsAccessor(fs afero.Fs) *FsAccessor {
	return &FsAccessor{fs: fs}
}

func (a *FsAccessor) ListChildNames(ctx context.Context, path string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := a.lstat(path)
	if err != nil {
		return nil, newPathError("list", path, err)
	}
	if !info.IsDir() {
		return nil, &PathError{Op: "list", Path: path, Kind: ErrNotADirectory, Err: ErrNotADirectory}
	}

	f, err := a.fs.Open(path)
	if err != nil {
		return nil, newPathError("list", path, err)
	}
	defer f.Close()

	names, err := f.Readdirnames(-1)
	if err != nil {
		return nil, newPathError("list", path, err)
	}
	return names, nil
}

func (a *FsAccessor) Stat(ctx context.Context, path string) (Entry, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, err
	}

	info, err := a.lstat(path)
	if err != nil {
		return Entry{}, newPathError("stat", path, err)
	}
	return newEntry(path, info), nil
}

func (a *FsAccessor) lstat(path string) (os.FileInfo, error) {
	if l, ok := a.fs.(afero.Lstater); ok {
		info, _, err := l.LstatIfPossible(path)
		return info, err
	}
	return a.fs.Stat(path)
}
