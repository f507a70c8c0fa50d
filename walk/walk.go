package walk

import (
	"context"
	"time"

	internal "github.com/TFMV/treescan/internal/walk"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Re-export all the types from the internal package
type (
	// Entry is a metadata snapshot of one discovered filesystem object.
	Entry = internal.Entry

	// EntryType discriminates files, directories and everything else.
	EntryType = internal.EntryType

	// IgnoreFunc excludes an entry, and a directory's whole subtree, when it returns true.
	IgnoreFunc = internal.IgnoreFunc

	// Accessor lists directories and snapshots entry metadata.
	Accessor = internal.Accessor

	// Options configures a walk.
	Options = internal.Options

	// Stats holds traversal statistics.
	Stats = internal.Stats

	// ProgressFn is called periodically with traversal statistics.
	ProgressFn = internal.ProgressFn

	// LogLevel defines the verbosity of logging.
	LogLevel = internal.LogLevel

	// PathError records a failed accessor operation on a path.
	PathError = internal.PathError

	// PatternError reports an ignore pattern that failed to compile.
	PatternError = internal.PatternError
)

// Re-export all the constants
const (
	TypeOther     = internal.TypeOther
	TypeFile      = internal.TypeFile
	TypeDirectory = internal.TypeDirectory

	LogLevelError = internal.LogLevelError
	LogLevelWarn  = internal.LogLevelWarn
	LogLevelInfo  = internal.LogLevelInfo
	LogLevelDebug = internal.LogLevelDebug

	DefaultConcurrentWalks = internal.DefaultConcurrentWalks
	DefaultStatConcurrency = internal.DefaultStatConcurrency
)

// Error kinds.
var (
	ErrNotFound         = internal.ErrNotFound
	ErrNotADirectory    = internal.ErrNotADirectory
	ErrPermissionDenied = internal.ErrPermissionDenied
	ErrUnknownIO        = internal.ErrUnknownIO
)

// Walk returns every file beneath root not excluded by ignore.
func Walk(ctx context.Context, root string, ignore IgnoreFunc) ([]Entry, error) {
	return internal.Walk(ctx, root, ignore)
}

// WalkWithOptions is Walk with explicit configuration.
func WalkWithOptions(ctx context.Context, root string, ignore IgnoreFunc, opts Options) ([]Entry, error) {
	return internal.WalkWithOptions(ctx, root, ignore, opts)
}

// NewOptions creates Options with default values and the given logger.
func NewOptions(logger *zap.Logger) Options {
	return Options{
		Concurrency:      DefaultConcurrentWalks,
		StatConcurrency:  DefaultStatConcurrency,
		Logger:           logger,
		LogLevel:         LogLevelInfo,
		ProgressInterval: 500 * time.Millisecond,
	}
}

// NewLogger creates a zap logger with the specified log level.
func NewLogger(level LogLevel) *zap.Logger {
	return internal.NewLogger(level)
}

// NewOSAccessor returns an Accessor backed by the operating system.
func NewOSAccessor() Accessor {
	return internal.NewOSAccessor()
}

// NewFsAccessor returns an Accessor over an afero filesystem.
func NewFsAccessor(fs afero.Fs) Accessor {
	return internal.NewFsAccessor(fs)
}

// IgnorePrefixes ignores entries at or beneath root joined with any fragment.
func IgnorePrefixes(root string, fragments ...string) IgnoreFunc {
	return internal.IgnorePrefixes(root, fragments...)
}

// IgnoreGlobs ignores entries whose base name matches any pattern.
func IgnoreGlobs(patterns ...string) (IgnoreFunc, error) {
	return internal.IgnoreGlobs(patterns...)
}

// IgnoreGitignore ignores entries matched by root/.gitignore.
func IgnoreGitignore(root string) (IgnoreFunc, error) {
	return internal.IgnoreGitignore(root)
}

// IgnoreHidden ignores dot-prefixed names.
func IgnoreHidden() IgnoreFunc {
	return internal.IgnoreHidden()
}

// AnyIgnore ignores an entry when any of preds does.
func AnyIgnore(preds ...IgnoreFunc) IgnoreFunc {
	return internal.AnyIgnore(preds...)
}

// FormatEntry expands {}, {base}, {dir}, {size}, {time} and {type} in template.
func FormatEntry(template string, e Entry) string {
	return internal.FormatEntry(template, e)
}

// Summary renders the one-line file count report.
func Summary(files []Entry) string {
	return internal.Summary(files)
}

// LoggingProgress returns a ProgressFn that logs each snapshot at debug level.
func LoggingProgress(logger *zap.Logger) ProgressFn {
	return func(s Stats) {
		logger.Debug("walk progress",
			zap.Int64("files", s.FilesFound),
			zap.Int64("dirs", s.DirsVisited),
			zap.Int64("ignored", s.EntriesIgnored),
			zap.Int64("bytes", s.BytesFound),
			zap.Duration("elapsed", s.ElapsedTime),
		)
	}
}
