// Package walker enumerates the regular files reachable from a root directory.
//
// The walker is the listing function that the rest of bfswalk is built around:
// given a root path it descends depth-first, classifies every child with a single
// lstat call, and hands each accepted file to a caller-supplied Sink as a
// (name, absolute path, size) triple.
//
// # Acceptance Policy
//
//   - Regular files are always emitted.
//   - Directories are recursed into, unless they directly contain a
//     subdirectory named "exaudf" (MarkerName). Such a directory is treated as
//     managed by the host and skipped together with everything beneath it.
//   - Everything else (symbolic links, sockets, devices, pipes) is dropped.
//
// Symbolic links are never followed, so link cycles cannot cause unbounded
// recursion.
//
// # Error Tolerance
//
// Listing is best-effort. A directory that cannot be read because of missing
// permissions contributes no files, and a child that disappears between being
// listed and being stat'ed is skipped. Both cases are silent to the caller; an
// optional Options.OnSkip hook observes them. Any other I/O failure aborts the
// walk with a *WalkError, and rows already handed to the sink stay delivered.
//
// An empty root path is a caller error and fails with ErrMissingArgument before
// the filesystem is touched.
//
// # Usage
//
// Push rows into a sink:
//
//	err := walker.Walk("/buckets/bfsdefault/default", walker.SinkFunc(
//	    func(name, path string, size int64) error {
//	        fmt.Println(name, path, size)
//	        return nil
//	    }))
//
// Or pull them lazily:
//
//	for file, err := range walker.Files(root) {
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(file.Path)
//	}
//
// The walker keeps no state between calls and only reads from the filesystem,
// so independent walks may run concurrently. It has no notion of cancellation;
// callers that need a deadline return an error from their sink.
package walker
