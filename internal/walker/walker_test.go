package walker

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFS wraps the real filesystem and injects errors for chosen paths.
type fakeFS struct {
	osFS
	readDirErr map[string]error
	lstatErr   map[string]error
	calls      int
}

func (f *fakeFS) ReadDirNames(dir string) ([]string, error) {
	f.calls++
	if err, ok := f.readDirErr[dir]; ok {
		return nil, &fs.PathError{Op: "open", Path: dir, Err: err}
	}
	return f.osFS.ReadDirNames(dir)
}

func (f *fakeFS) Lstat(path string) (fs.FileInfo, error) {
	f.calls++
	if err, ok := f.lstatErr[path]; ok {
		return nil, &fs.PathError{Op: "lstat", Path: path, Err: err}
	}
	return f.osFS.Lstat(path)
}

func (f *fakeFS) Stat(path string) (fs.FileInfo, error) {
	f.calls++
	return f.osFS.Stat(path)
}

func createFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func collect(t *testing.T, w *Walker, root string) []File {
	t.Helper()
	files, err := w.Collect(root)
	require.NoError(t, err)
	return files
}

func TestWalk_FailsForEmptyPath(t *testing.T) {
	fake := &fakeFS{}
	w := &Walker{fsys: fake}

	emitted := 0
	err := w.Walk("", SinkFunc(func(name, path string, size int64) error {
		emitted++
		return nil
	}))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingArgument)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "path", cfgErr.Argument)
	assert.Equal(t, "argument 'path' not defined", err.Error())
	assert.Zero(t, emitted)
	assert.Zero(t, fake.calls, "filesystem must not be touched")
}

func TestWalk_FailsForNilSink(t *testing.T) {
	err := Walk(t.TempDir(), nil)
	assert.ErrorIs(t, err, ErrMissingArgument)
}

func TestWalk_EmptyDir(t *testing.T) {
	files, err := Collect(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestWalk_SingleFile(t *testing.T) {
	root := t.TempDir()
	file1 := filepath.Join(root, "file1.txt")
	createFile(t, file1, "content")

	files, err := Collect(root)
	require.NoError(t, err)
	assert.Equal(t, []File{{Name: "file1.txt", Path: file1, Size: 7}}, files)
}

func TestWalk_MultipleFiles(t *testing.T) {
	root := t.TempDir()
	file1 := filepath.Join(root, "file1.txt")
	file2 := filepath.Join(root, "file2.txt")
	createFile(t, file1, "content")
	createFile(t, file2, "even more content")

	files, err := Collect(root)
	require.NoError(t, err)
	assert.ElementsMatch(t, []File{
		{Name: "file1.txt", Path: file1, Size: 7},
		{Name: "file2.txt", Path: file2, Size: 17},
	}, files)
}

func TestWalk_SubDirs(t *testing.T) {
	root := t.TempDir()
	file1 := filepath.Join(root, "dir1", "file1.txt")
	file2 := filepath.Join(root, "dir2", "file2.txt")
	createFile(t, file1, "content")
	createFile(t, file2, "even more content")

	files, err := Collect(root)
	require.NoError(t, err)
	assert.ElementsMatch(t, []File{
		{Name: "file1.txt", Path: file1, Size: 7},
		{Name: "file2.txt", Path: file2, Size: 17},
	}, files)
}

func TestWalk_NestingDepth(t *testing.T) {
	tests := []struct {
		name  string
		depth int
	}{
		{name: "flat", depth: 0},
		{name: "one level", depth: 1},
		{name: "deep", depth: 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			dir := root
			var want []File
			for i := 0; i <= tt.depth; i++ {
				path := filepath.Join(dir, "f.bin")
				createFile(t, path, string(make([]byte, i)))
				want = append(want, File{Name: "f.bin", Path: path, Size: int64(i)})
				dir = filepath.Join(dir, "d")
			}

			files, err := Collect(root)
			require.NoError(t, err)
			assert.ElementsMatch(t, want, files)
		})
	}
}

func TestWalk_SkipsDirWithMarkerSubdir(t *testing.T) {
	root := t.TempDir()
	ignoredDir := filepath.Join(root, "ignored")
	createFile(t, filepath.Join(ignoredDir, "ignored.txt"), "content")
	createFile(t, filepath.Join(ignoredDir, "nested", "deeper.txt"), "content")
	file := filepath.Join(root, "file.txt")
	createFile(t, file, "even more content")
	require.NoError(t, os.Mkdir(filepath.Join(ignoredDir, MarkerName), 0755))

	files, err := Collect(root)
	require.NoError(t, err)
	assert.Equal(t, []File{{Name: "file.txt", Path: file, Size: 17}}, files)
}

func TestWalk_ExampleTree(t *testing.T) {
	root := t.TempDir()
	file1 := filepath.Join(root, "file1.txt")
	createFile(t, file1, "content")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "dir1", MarkerName), 0755))
	createFile(t, filepath.Join(root, "dir1", "hidden.txt"), "hidden")

	files, err := Collect(root)
	require.NoError(t, err)
	assert.Equal(t, []File{{Name: "file1.txt", Path: file1, Size: 7}}, files)
}

func TestWalk_MarkerFileDoesNotExclude(t *testing.T) {
	root := t.TempDir()
	visible := filepath.Join(root, "dir", "visible.txt")
	marker := filepath.Join(root, "dir", MarkerName)
	createFile(t, visible, "abc")
	createFile(t, marker, "")

	files, err := Collect(root)
	require.NoError(t, err)
	assert.ElementsMatch(t, []File{
		{Name: "visible.txt", Path: visible, Size: 3},
		{Name: MarkerName, Path: marker, Size: 0},
	}, files)
}

func TestWalk_RootMarkerIsNotConsulted(t *testing.T) {
	root := t.TempDir()
	inMarker := filepath.Join(root, MarkerName, "lib.py")
	top := filepath.Join(root, "top.txt")
	createFile(t, inMarker, "x")
	createFile(t, top, "yy")

	files, err := Collect(root)
	require.NoError(t, err)
	assert.ElementsMatch(t, []File{
		{Name: "lib.py", Path: inMarker, Size: 1},
		{Name: "top.txt", Path: top, Size: 2},
	}, files)
}

func TestWalk_SymlinksAreNotFollowed(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "data", "target.txt")
	createFile(t, target, "1234")
	require.NoError(t, os.Symlink(target, filepath.Join(root, "link.txt")))
	require.NoError(t, os.Symlink(filepath.Join(root, "data"), filepath.Join(root, "linkdir")))
	// Cycle back to the root.
	require.NoError(t, os.Symlink(root, filepath.Join(root, "data", "loop")))

	files, err := Collect(root)
	require.NoError(t, err)
	assert.Equal(t, []File{{Name: "target.txt", Path: target, Size: 4}}, files)
}

func TestWalk_OtherTypesAreDiscarded(t *testing.T) {
	root := t.TempDir()
	fifo := filepath.Join(root, "pipe")
	if err := syscall.Mkfifo(fifo, 0644); err != nil {
		t.Skipf("mkfifo not supported: %v", err)
	}
	regular := filepath.Join(root, "regular")
	createFile(t, regular, "r")

	files, err := Collect(root)
	require.NoError(t, err)
	assert.Equal(t, []File{{Name: "regular", Path: regular, Size: 1}}, files)
}

func TestWalk_PathKeepsRootContext(t *testing.T) {
	root := t.TempDir()
	createFile(t, filepath.Join(root, "a", "b.txt"), "b")

	files, err := Collect(root + string(filepath.Separator))
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, filepath.Join(root, "a", "b.txt"), files[0].Path)
}

func TestWalk_PermissionDeniedOnListingIsSwallowed(t *testing.T) {
	root := t.TempDir()
	locked := filepath.Join(root, "locked")
	createFile(t, filepath.Join(locked, "secret.txt"), "secret")
	open := filepath.Join(root, "open", "public.txt")
	createFile(t, open, "public")

	var skipped []string
	fake := &fakeFS{readDirErr: map[string]error{locked: syscall.EACCES}}
	w := &Walker{fsys: fake, onSkip: func(path string, err error) {
		skipped = append(skipped, path)
		assert.ErrorIs(t, err, fs.ErrPermission)
	}}

	files := collect(t, w, root)
	assert.Equal(t, []File{{Name: "public.txt", Path: open, Size: 6}}, files)
	assert.Equal(t, []string{locked}, skipped)
}

func TestWalk_PermissionDeniedOnRealDirectory(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks are bypassed for root")
	}
	root := t.TempDir()
	locked := filepath.Join(root, "locked")
	createFile(t, filepath.Join(locked, "secret.txt"), "secret")
	visible := filepath.Join(root, "visible.txt")
	createFile(t, visible, "v")
	require.NoError(t, os.Chmod(locked, 0))
	t.Cleanup(func() { os.Chmod(locked, 0755) })

	files, err := Collect(root)
	require.NoError(t, err)
	assert.Equal(t, []File{{Name: "visible.txt", Path: visible, Size: 1}}, files)
}

func TestWalk_VanishedEntryIsSkipped(t *testing.T) {
	root := t.TempDir()
	gone := filepath.Join(root, "a-gone.txt")
	kept := filepath.Join(root, "b-kept.txt")
	createFile(t, gone, "gone")
	createFile(t, kept, "kept")

	var skipped []string
	fake := &fakeFS{lstatErr: map[string]error{gone: syscall.ENOENT}}
	w := &Walker{fsys: fake, onSkip: func(path string, err error) {
		skipped = append(skipped, path)
	}}

	files := collect(t, w, root)
	assert.Equal(t, []File{{Name: "b-kept.txt", Path: kept, Size: 4}}, files)
	assert.Equal(t, []string{gone}, skipped)
}

func TestWalk_PermissionDeniedOnStatDropsRestOfDirectory(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "dir")
	createFile(t, filepath.Join(dir, "a.txt"), "a")
	createFile(t, filepath.Join(dir, "b.txt"), "b")
	sibling := filepath.Join(root, "sibling.txt")
	createFile(t, sibling, "s")

	fake := &fakeFS{lstatErr: map[string]error{filepath.Join(dir, "a.txt"): syscall.EACCES}}
	w := &Walker{fsys: fake}

	files := collect(t, w, root)
	assert.Equal(t, []File{{Name: "sibling.txt", Path: sibling, Size: 1}}, files)
}

func TestWalk_UnexpectedErrorAborts(t *testing.T) {
	root := t.TempDir()
	first := filepath.Join(root, "a", "first.txt")
	createFile(t, first, "1")
	broken := filepath.Join(root, "b")
	createFile(t, filepath.Join(broken, "never.txt"), "2")
	createFile(t, filepath.Join(root, "c", "after.txt"), "3")

	fake := &fakeFS{readDirErr: map[string]error{broken: syscall.EIO}}
	w := &Walker{fsys: fake}

	files, err := w.Collect(root)
	require.Error(t, err)
	var walkErr *WalkError
	require.ErrorAs(t, err, &walkErr)
	assert.Equal(t, "list", walkErr.Op)
	assert.Equal(t, broken, walkErr.Path)
	assert.ErrorIs(t, err, syscall.EIO)
	assert.Equal(t, []File{{Name: "first.txt", Path: first, Size: 1}}, files, "rows emitted before the failure are kept")
}

func TestWalk_UnexpectedStatErrorAborts(t *testing.T) {
	root := t.TempDir()
	bad := filepath.Join(root, "bad.txt")
	createFile(t, bad, "x")

	fake := &fakeFS{lstatErr: map[string]error{bad: syscall.EIO}}
	w := &Walker{fsys: fake}

	_, err := w.Collect(root)
	var walkErr *WalkError
	require.ErrorAs(t, err, &walkErr)
	assert.Equal(t, "stat", walkErr.Op)
	assert.Equal(t, bad, walkErr.Path)
}

func TestWalk_MissingRootIsFatal(t *testing.T) {
	root := filepath.Join(t.TempDir(), "does-not-exist")

	files, err := Collect(root)
	assert.Empty(t, files)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	var walkErr *WalkError
	assert.ErrorAs(t, err, &walkErr)
}

func TestWalk_SinkErrorStopsWalk(t *testing.T) {
	root := t.TempDir()
	createFile(t, filepath.Join(root, "a.txt"), "a")
	createFile(t, filepath.Join(root, "b.txt"), "b")

	sinkErr := errors.New("sink full")
	calls := 0
	err := Walk(root, SinkFunc(func(name, path string, size int64) error {
		calls++
		return sinkErr
	}))

	assert.Same(t, sinkErr, err)
	assert.Equal(t, 1, calls)
}

func TestWalk_DepthFirstOrder(t *testing.T) {
	root := t.TempDir()
	createFile(t, filepath.Join(root, "a.txt"), "")
	createFile(t, filepath.Join(root, "b", "c.txt"), "")
	createFile(t, filepath.Join(root, "b", "d", "e.txt"), "")
	createFile(t, filepath.Join(root, "f.txt"), "")

	var names []string
	err := Walk(root, SinkFunc(func(name, path string, size int64) error {
		names = append(names, name)
		return nil
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "c.txt", "e.txt", "f.txt"}, names)
}

func TestWalk_Idempotent(t *testing.T) {
	root := t.TempDir()
	createFile(t, filepath.Join(root, "x", "1"), "one")
	createFile(t, filepath.Join(root, "y", "2"), "two!")
	createFile(t, filepath.Join(root, "3"), "three")

	first, err := Collect(root)
	require.NoError(t, err)
	second, err := Collect(root)
	require.NoError(t, err)
	assert.ElementsMatch(t, first, second)
}

func TestWalk_ConcurrentRoots(t *testing.T) {
	roots := make([]string, 4)
	for i := range roots {
		roots[i] = t.TempDir()
		for j := 0; j <= i; j++ {
			createFile(t, filepath.Join(roots[i], "d", string(rune('a'+j))), "z")
		}
	}

	var wg sync.WaitGroup
	counts := make([]int, len(roots))
	for i, root := range roots {
		wg.Add(1)
		go func() {
			defer wg.Done()
			files, err := Collect(root)
			assert.NoError(t, err)
			counts[i] = len(files)
		}()
	}
	wg.Wait()

	assert.Equal(t, []int{1, 2, 3, 4}, counts)
}

func TestFiles_YieldsLazily(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"a", "b", "c"} {
		createFile(t, filepath.Join(root, name), name)
	}

	var seen []string
	for file, err := range Files(root) {
		require.NoError(t, err)
		seen = append(seen, file.Name)
		if len(seen) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"a", "b"}, seen)
}

func TestFiles_YieldsErrorLast(t *testing.T) {
	var errs []error
	for _, err := range Files("") {
		errs = append(errs, err)
	}
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrMissingArgument)
}

func TestAccept(t *testing.T) {
	root := t.TempDir()
	plain := filepath.Join(root, "plain")
	marked := filepath.Join(root, "marked")
	file := filepath.Join(root, "file.txt")
	require.NoError(t, os.Mkdir(plain, 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(marked, MarkerName), 0755))
	createFile(t, file, "x")
	link := filepath.Join(root, "link")
	require.NoError(t, os.Symlink(file, link))

	tests := []struct {
		name string
		path string
		want bool
	}{
		{name: "directory without marker", path: plain, want: true},
		{name: "directory with marker", path: marked, want: false},
		{name: "regular file", path: file, want: true},
		{name: "symlink", path: link, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := os.Lstat(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, Accept(PathEntry{Path: tt.path, Info: info}))
		})
	}
}

func TestHasMarker_FollowsSymlinkedMarker(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "real")
	dir := filepath.Join(root, "dir")
	require.NoError(t, os.Mkdir(target, 0755))
	require.NoError(t, os.Mkdir(dir, 0755))
	require.NoError(t, os.Symlink(target, filepath.Join(dir, MarkerName)))

	assert.True(t, HasMarker(dir))
	assert.False(t, HasMarker(target))
}

func TestPathEntry(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "entry.dat")
	createFile(t, path, "12345")
	info, err := os.Lstat(path)
	require.NoError(t, err)

	entry := PathEntry{Path: path, Info: info}
	assert.Equal(t, "entry.dat", entry.Name())
	assert.True(t, entry.IsFile())
	assert.False(t, entry.IsDir())
	assert.Equal(t, int64(5), entry.Size())
}
