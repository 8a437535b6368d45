package walker

import (
	"errors"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"sort"
)

// MarkerName is the child directory name that excludes its parent from a walk.
const MarkerName = "exaudf"

// filesystem is the set of calls the walker makes. Tests replace it to inject
// races and failures.
type filesystem interface {
	ReadDirNames(dir string) ([]string, error)
	Lstat(path string) (fs.FileInfo, error)
	Stat(path string) (fs.FileInfo, error)
}

type osFS struct{}

func (osFS) ReadDirNames(dir string) ([]string, error) {
	f, err := os.Open(dir)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return f.Readdirnames(-1)
}

func (osFS) Lstat(path string) (fs.FileInfo, error) {
	return os.Lstat(path)
}

func (osFS) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// Options configures a Walker.
type Options struct {
	// OnSkip is called for every swallowed error: the path of an unreadable
	// directory or of a vanished entry, and the error that caused the skip.
	OnSkip func(path string, err error)
}

// Walker lists files below a root directory. The zero value is not usable;
// create one with New.
type Walker struct {
	fsys   filesystem
	onSkip func(path string, err error)
}

// New creates a Walker reading the local filesystem.
func New(opts Options) *Walker {
	return &Walker{
		fsys:   osFS{},
		onSkip: opts.OnSkip,
	}
}

// Walk lists root with default options and sends every accepted file to sink.
func Walk(root string, sink Sink) error {
	return New(Options{}).Walk(root, sink)
}

// Files returns a lazy sequence over the files below root using default options.
func Files(root string) iter.Seq2[File, error] {
	return New(Options{}).Files(root)
}

// Collect gathers every file below root. On failure it returns the rows read
// before the walk aborted together with the error.
func Collect(root string) ([]File, error) {
	return New(Options{}).Collect(root)
}

// Accept reports whether an entry takes part in the walk: regular files are
// emitted, directories without a marker are descended into.
func Accept(entry PathEntry) bool {
	return accept(osFS{}, entry)
}

// HasMarker reports whether dir directly contains a directory named MarkerName.
func HasMarker(dir string) bool {
	return hasMarker(osFS{}, dir)
}

func accept(fsys filesystem, entry PathEntry) bool {
	if entry.IsDir() {
		return !hasMarker(fsys, entry.Path)
	}
	return entry.IsFile()
}

// hasMarker follows a symlinked marker; a marker that cannot be stat'ed
// counts as absent.
func hasMarker(fsys filesystem, dir string) bool {
	info, err := fsys.Stat(filepath.Join(dir, MarkerName))
	return err == nil && info.IsDir()
}

// Walk sends every accepted file below root to sink, depth-first. Files of a
// directory are emitted as they are met and subdirectories are descended into
// immediately.
func (w *Walker) Walk(root string, sink Sink) error {
	if root == "" {
		return &ConfigError{Argument: "path"}
	}
	if sink == nil {
		return &ConfigError{Argument: "sink"}
	}
	return w.walkDir(root, sink)
}

// errStopped ends a walk when the consumer of Files stops ranging.
var errStopped = errors.New("walker: iteration stopped")

// Files returns a lazy sequence over the files below root. A fatal error is
// yielded once, as the last element, with a zero File.
func (w *Walker) Files(root string) iter.Seq2[File, error] {
	return func(yield func(File, error) bool) {
		err := w.Walk(root, SinkFunc(func(name, path string, size int64) error {
			if !yield(File{Name: name, Path: path, Size: size}, nil) {
				return errStopped
			}
			return nil
		}))
		if err != nil && !errors.Is(err, errStopped) {
			yield(File{}, err)
		}
	}
}

// Collect gathers every file below root.
func (w *Walker) Collect(root string) ([]File, error) {
	var files []File
	err := w.Walk(root, SinkFunc(func(name, path string, size int64) error {
		files = append(files, File{Name: name, Path: path, Size: size})
		return nil
	}))
	return files, err
}

func (w *Walker) walkDir(dir string, sink Sink) error {
	names, err := w.fsys.ReadDirNames(dir)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			w.skip(dir, err)
			return nil
		}
		return &WalkError{Op: "list", Path: dir, Err: err}
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(dir, name)
		info, err := w.fsys.Lstat(path)
		if err != nil {
			switch {
			case errors.Is(err, fs.ErrNotExist):
				w.skip(path, err)
				continue
			case errors.Is(err, fs.ErrPermission):
				// Children cannot be inspected, so neither can their siblings.
				w.skip(dir, err)
				return nil
			default:
				return &WalkError{Op: "stat", Path: path, Err: err}
			}
		}

		entry := PathEntry{Path: path, Info: info}
		if !accept(w.fsys, entry) {
			continue
		}
		if entry.IsFile() {
			if err := sink.Emit(entry.Name(), entry.Path, entry.Size()); err != nil {
				return err
			}
			continue
		}
		if err := w.walkDir(entry.Path, sink); err != nil {
			return err
		}
	}
	return nil
}

func (w *Walker) skip(path string, err error) {
	if w.onSkip != nil {
		w.onSkip(path, err)
	}
}
