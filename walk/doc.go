// Package walk is the public API of treescan: it lists every file beneath a
// root directory, concurrently, pruning whatever the caller's ignore
// predicate rejects.
//
// Basic usage
//
//	files, err := walk.Walk(ctx, "/src", walk.IgnorePrefixes("/src", ".git", "node_modules"))
//	if err != nil {
//		return err
//	}
//	fmt.Println(walk.Summary(files))
//
// Predicates compose:
//
//	globs, err := walk.IgnoreGlobs("*.tmp", "*.log")
//	gi, err := walk.IgnoreGitignore("/src")
//	ignore := walk.AnyIgnore(globs, gi, walk.IgnoreHidden())
//
// Failure policy
//
// Any listing or metadata failure aborts the whole walk. The result is either
// every file or nil and an error matching one of ErrNotFound,
// ErrNotADirectory, ErrPermissionDenied or ErrUnknownIO (or the context's
// error when cancelled).
//
// Virtual filesystems
//
// Any afero.Fs can be walked through NewFsAccessor:
//
//	opts := walk.Options{Accessor: walk.NewFsAccessor(afero.NewMemMapFs())}
//	files, err := walk.WalkWithOptions(ctx, "/", nil, opts)
package walk
