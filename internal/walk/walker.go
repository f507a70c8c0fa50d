// Package treescan enumerates the files beneath a root directory with bounded
// concurrent descent and caller-controlled subtree pruning.
package treescan

import (
	"context"
	"errors"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// DefaultConcurrentWalks is the number of directory descents allowed to run
// at once when Options.Concurrency is not set.
const DefaultConcurrentWalks int = 64

// DefaultStatConcurrency bounds the metadata fetches in flight for the
// children of a single directory.
const DefaultStatConcurrency int = 16

// DefaultProgressInterval is how often Options.Progress is invoked.
const DefaultProgressInterval = 500 * time.Millisecond

// --------------------------------------------------------------------------
// Core types for progress monitoring
// --------------------------------------------------------------------------

// ProgressFn is called periodically with traversal statistics.
// It is called from a single goroutine, never concurrently with itself.
type ProgressFn func(stats Stats)

// Stats holds traversal statistics that are updated atomically during the walk.
type Stats struct {
	FilesFound     int64         // Files collected into the result
	DirsVisited    int64         // Directories listed, the root included
	EntriesIgnored int64         // Entries rejected by the ignore predicate
	OtherSkipped   int64         // Symlinks, devices and sockets dropped
	BytesFound     int64         // Total size of collected files
	ElapsedTime    time.Duration // Total time elapsed
	AvgFileSize    int64         // Average collected file size in bytes
}

// snapshot copies the counters and fills in derived fields.
func (s *Stats) snapshot(start time.Time) Stats {
	out := Stats{
		FilesFound:     atomic.LoadInt64(&s.FilesFound),
		DirsVisited:    atomic.LoadInt64(&s.DirsVisited),
		EntriesIgnored: atomic.LoadInt64(&s.EntriesIgnored),
		OtherSkipped:   atomic.LoadInt64(&s.OtherSkipped),
		BytesFound:     atomic.LoadInt64(&s.BytesFound),
		ElapsedTime:    time.Since(start),
	}
	if out.FilesFound > 0 {
		out.AvgFileSize = out.BytesFound / out.FilesFound
	}
	return out
}

// --------------------------------------------------------------------------
// Configuration types
// --------------------------------------------------------------------------

// LogLevel defines the verbosity of logging.
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

// IgnoreFunc decides whether an entry is excluded. Returning true for a
// directory prunes its entire subtree. It must be safe for concurrent use.
type IgnoreFunc func(entry Entry) bool

// Options configures a walk. The zero value is usable.
type Options struct {
	Accessor         Accessor      // Defaults to an OSAccessor
	Concurrency      int           // Max concurrent subtree descents
	StatConcurrency  int           // Max concurrent stats per directory
	Logger           *zap.Logger   // Overrides LogLevel when set
	LogLevel         LogLevel      // Used to build a logger when Logger is nil
	Progress         ProgressFn    // Optional progress callback
	ProgressInterval time.Duration // Defaults to DefaultProgressInterval
}

// --------------------------------------------------------------------------
// Primary API functions
// --------------------------------------------------------------------------

// Walk returns every file beneath root that is not excluded by ignore, using
// the operating system accessor and default limits. A nil ignore keeps
// everything.
//
// Any listing or metadata failure aborts the whole walk: the result is either
// the complete set of files or nil and the first error observed.
func Walk(ctx context.Context, root string, ignore IgnoreFunc) ([]Entry, error) {
	return WalkWithOptions(ctx, root, ignore, Options{})
}

// WalkWithOptions is Walk with explicit configuration.
func WalkWithOptions(ctx context.Context, root string, ignore IgnoreFunc, opts Options) ([]Entry, error) {
	if opts.Concurrency < 0 || opts.StatConcurrency < 0 {
		return nil, errors.New("treescan: concurrency limits must not be negative")
	}
	if opts.Accessor == nil {
		opts.Accessor = NewOSAccessor()
	}
	if opts.Concurrency == 0 {
		opts.Concurrency = DefaultConcurrentWalks
	}
	if opts.StatConcurrency == 0 {
		opts.StatConcurrency = min(DefaultStatConcurrency, runtime.NumCPU()*4)
	}
	if opts.ProgressInterval <= 0 {
		opts.ProgressInterval = DefaultProgressInterval
	}
	if ignore == nil {
		ignore = func(Entry) bool { return false }
	}

	logger := opts.Logger
	if logger == nil {
		logger = NewLogger(opts.LogLevel)
		defer logger.Sync()
	}

	root = filepath.Clean(root)
	logger.Debug("starting walk",
		zap.String("root", root),
		zap.Int("concurrency", opts.Concurrency),
		zap.Int("stat_concurrency", opts.StatConcurrency),
	)

	w := &walker{
		accessor:  opts.Accessor,
		ignore:    ignore,
		logger:    logger,
		descents:  semaphore.NewWeighted(int64(opts.Concurrency)),
		statLimit: opts.StatConcurrency,
		stats:     &Stats{},
	}
	start := time.Now()

	var stopProgress func()
	if opts.Progress != nil {
		stopProgress = w.reportProgress(opts.Progress, opts.ProgressInterval, start)
	}

	files, err := w.walkDir(ctx, root)

	if stopProgress != nil {
		stopProgress()
		opts.Progress(w.stats.snapshot(start))
	}

	if err != nil {
		logger.Warn("walk failed", zap.String("root", root), zap.Error(err))
		return nil, err
	}

	logger.Debug("walk finished",
		zap.String("root", root),
		zap.Int("files", len(files)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return files, nil
}

// --------------------------------------------------------------------------
// Internal helper types and functions
// --------------------------------------------------------------------------

type walker struct {
	accessor  Accessor
	ignore    IgnoreFunc
	logger    *zap.Logger
	descents  *semaphore.Weighted
	statLimit int
	stats     *Stats
}

// walkDir returns the files beneath dir. Each call owns its result slice;
// parents merge their children's slices after joining them, so no collection
// is shared between goroutines.
func (w *walker) walkDir(ctx context.Context, dir string) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	names, err := w.accessor.ListChildNames(ctx, dir)
	if err != nil {
		return nil, err
	}
	atomic.AddInt64(&w.stats.DirsVisited, 1)
	w.logger.Debug("listed directory", zap.String("dir", dir), zap.Int("children", len(names)))

	entries, err := w.statChildren(ctx, dir, names)
	if err != nil {
		return nil, err
	}

	var files []Entry
	var subdirs []string
	for _, e := range entries {
		if w.ignore(e) {
			atomic.AddInt64(&w.stats.EntriesIgnored, 1)
			continue
		}
		switch e.Type {
		case TypeFile:
			files = append(files, e)
			atomic.AddInt64(&w.stats.FilesFound, 1)
			atomic.AddInt64(&w.stats.BytesFound, e.Size)
		case TypeDirectory:
			subdirs = append(subdirs, e.Path)
		default:
			atomic.AddInt64(&w.stats.OtherSkipped, 1)
		}
	}

	if len(subdirs) == 0 {
		return files, nil
	}

	nested, err := w.descend(ctx, subdirs)
	if err != nil {
		return nil, err
	}
	for _, sub := range nested {
		files = append(files, sub...)
	}
	return files, nil
}

// statChildren fetches metadata for every child of dir concurrently and
// joins before returning.
func (w *walker) statChildren(ctx context.Context, dir string, names []string) ([]Entry, error) {
	entries := make([]Entry, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.statLimit)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			e, err := w.accessor.Stat(gctx, filepath.Join(dir, name))
			if err != nil {
				return err
			}
			entries[i] = e
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return entries, nil
}

// descend walks each subdirectory. A subdirectory runs on its own goroutine
// when a descent slot is free and inline otherwise, so the cap holds without
// a parent ever blocking on a slot its own descendants need.
func (w *walker) descend(ctx context.Context, subdirs []string) ([][]Entry, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([][]Entry, len(subdirs))
	g, gctx := errgroup.WithContext(ctx)
	for i, sub := range subdirs {
		i, sub := i, sub
		if w.descents.TryAcquire(1) {
			g.Go(func() error {
				defer w.descents.Release(1)
				files, err := w.walkDir(gctx, sub)
				results[i] = files
				return err
			})
			continue
		}

		files, err := w.walkDir(gctx, sub)
		if err != nil {
			cancel()
			// A failed sibling cancels gctx; report its error, not the cancellation.
			if gerr := g.Wait(); gerr != nil && errors.Is(err, context.Canceled) {
				return nil, gerr
			}
			return nil, err
		}
		results[i] = files
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// reportProgress calls fn every interval until the returned stop func is called.
func (w *walker) reportProgress(fn ProgressFn, interval time.Duration, start time.Time) func() {
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				fn(w.stats.snapshot(start))
			}
		}
	}()
	return func() {
		close(done)
		wg.Wait()
	}
}

// NewLogger creates a zap logger with the specified log level.
func NewLogger(level LogLevel) *zap.Logger {
	var config zap.Config

	switch level {
	case LogLevelError:
		config = zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	case LogLevelWarn:
		config = zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case LogLevelInfo:
		config = zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case LogLevelDebug:
		config = zap.NewDevelopmentConfig()
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		config = zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	logger, err := config.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
