package treescan

import (
	"errors"
	"fmt"
	"io/fs"
	"syscall"
)

// Error kinds reported by an Accessor. Every failure returned from a walk
// matches exactly one of these with errors.Is.
var (
	ErrNotFound         = errors.New("treescan: not found")
	ErrNotADirectory    = errors.New("treescan: not a directory")
	ErrPermissionDenied = errors.New("treescan: permission denied")
	ErrUnknownIO        = errors.New("treescan: unknown I/O error")
)

// PathError records a failed accessor operation on a path.
type PathError struct {
	Op   string // "list", "stat" or "read"
	Path string
	Kind error // one of the Err* kinds above
	Err  error // underlying OS or filesystem error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap exposes both the kind and the cause so errors.Is matches either.
func (e *PathError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// classify maps an OS-level error onto the error taxonomy.
func classify(err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return ErrNotFound
	case errors.Is(err, fs.ErrPermission):
		return ErrPermissionDenied
	case errors.Is(err, syscall.ENOTDIR):
		return ErrNotADirectory
	default:
		return ErrUnknownIO
	}
}

func newPathError(op, path string, err error) *PathError {
	return &PathError{Op: op, Path: path, Kind: classify(err), Err: err}
}
