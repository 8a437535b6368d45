package walker

import (
	"io/fs"
	"path/filepath"
)

// PathEntry is one filesystem object met during a walk. Info is captured by a
// single lstat when the entry is listed and is never refreshed.
type PathEntry struct {
	Path string
	Info fs.FileInfo
}

// Name returns the final path component.
func (e PathEntry) Name() string {
	return filepath.Base(e.Path)
}

// IsFile reports whether the entry is a regular file.
func (e PathEntry) IsFile() bool {
	return e.Info.Mode().IsRegular()
}

// IsDir reports whether the entry is a directory. Symbolic links to
// directories are not directories here.
func (e PathEntry) IsDir() bool {
	return e.Info.IsDir()
}

// Size returns the byte size recorded at listing time.
func (e PathEntry) Size() int64 {
	return e.Info.Size()
}

// File is a row produced by the walker.
type File struct {
	Name string `json:"name" yaml:"name"`
	Path string `json:"path" yaml:"path"`
	Size int64  `json:"size" yaml:"size"`
}

// Sink receives one row per accepted file. Returning an error stops the walk
// and the error is passed back to the caller unchanged.
type Sink interface {
	Emit(name, absolutePath string, size int64) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(name, absolutePath string, size int64) error

// Emit calls f.
func (f SinkFunc) Emit(name, absolutePath string, size int64) error {
	return f(name, absolutePath, size)
}
