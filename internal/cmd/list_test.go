package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/harrison/bfswalk/internal/logger"
	"github.com/harrison/bfswalk/internal/walker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListCommandJSON(t *testing.T) {
	testEnv(t)
	root := makeTree(t, map[string]string{
		"a.txt":           "hello",
		"lib/b.jar":       "123",
		"runtime/exaudf/": "",
		"runtime/py.so":   "xx",
	})

	stdout, stderr, err := execute(t, "", "list", root, "--format", "json")
	require.NoError(t, err)

	var files []walker.File
	require.NoError(t, json.Unmarshal([]byte(stdout), &files))
	assert.Equal(t, []walker.File{
		{Name: "a.txt", Path: filepath.Join(root, "a.txt"), Size: 5},
		{Name: "b.jar", Path: filepath.Join(root, "lib", "b.jar"), Size: 3},
	}, files)
	assert.Contains(t, stderr, "Listing "+root)
	assert.Contains(t, stderr, "Listed 2 files (8 bytes)")
}

func TestListCommandFormatIgnoresCase(t *testing.T) {
	testEnv(t)
	root := makeTree(t, map[string]string{"a.txt": "hello"})

	stdout, _, err := execute(t, "", "list", root, "--format", "JSON")
	require.NoError(t, err)

	var files []walker.File
	require.NoError(t, json.Unmarshal([]byte(stdout), &files))
	assert.Len(t, files, 1)
}

func TestListCommandTable(t *testing.T) {
	testEnv(t)
	root := makeTree(t, map[string]string{"a.txt": "hello"})

	stdout, _, err := execute(t, "", "list", root)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Name ")
	assert.Contains(t, stdout, filepath.Join(root, "a.txt"))
	assert.Contains(t, stdout, "1 files, 5 B total")
}

func TestListCommandEmptyDirectory(t *testing.T) {
	testEnv(t)

	stdout, _, err := execute(t, "", "list", t.TempDir(), "--format", "json")
	require.NoError(t, err)
	assert.Equal(t, "[]\n", stdout)
}

func TestListCommandSort(t *testing.T) {
	testEnv(t)
	// Walk order visits "a/" before "a.txt"; byte order puts "a.txt" first.
	root := makeTree(t, map[string]string{"a/x": "1", "a.txt": "2"})

	stdout, _, err := execute(t, "", "list", root, "--format", "csv")
	require.NoError(t, err)
	assert.Equal(t, "name,path,size\nx,"+filepath.Join(root, "a", "x")+",1\na.txt,"+filepath.Join(root, "a.txt")+",1\n", stdout)

	stdout, _, err = execute(t, "", "list", root, "--format", "csv", "--sort")
	require.NoError(t, err)
	assert.Equal(t, "name,path,size\na.txt,"+filepath.Join(root, "a.txt")+",1\nx,"+filepath.Join(root, "a", "x")+",1\n", stdout)
}

func TestListCommandOutputFile(t *testing.T) {
	testEnv(t)
	root := makeTree(t, map[string]string{"a.txt": "hello"})
	output := filepath.Join(t.TempDir(), "out", "listing.yaml")

	stdout, _, err := execute(t, "", "list", root, "--format", "yaml", "--output", output)
	require.NoError(t, err)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "name: a.txt")
	assert.Contains(t, string(data), "size: 5")
}

func TestListCommandUsesConfiguredBasePath(t *testing.T) {
	home := testEnv(t)
	root := makeTree(t, map[string]string{"conf.yml": "k: v"})
	writeConfig(t, home, "base_path: "+root+"\nformat: csv\n")

	stdout, _, err := execute(t, "", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "conf.yml,"+filepath.Join(root, "conf.yml")+",4")
}

func TestListCommandErrors(t *testing.T) {
	testEnv(t)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "empty path", args: []string{"list", ""}, wantErr: "argument 'path' not defined"},
		{name: "missing root", args: []string{"list", filepath.Join(t.TempDir(), "gone")}, wantErr: "no such file or directory"},
		{name: "bad format", args: []string{"list", t.TempDir(), "--format", "xml"}, wantErr: "invalid format"},
		{name: "too many args", args: []string{"list", "a", "b"}, wantErr: "accepts at most 1 arg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, "", tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestListCommandLogDir(t *testing.T) {
	testEnv(t)
	root := makeTree(t, map[string]string{"a.txt": "x"})
	logDir := t.TempDir()

	_, _, err := execute(t, "", "list", root, "--log-dir", logDir, "--log-level", "trace", "--format", "json")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(logDir, "latest.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `- Found file "`+filepath.Join(root, "a.txt")+`" with size 1`)
	assert.Contains(t, string(data), "=== Listing Summary ===")
}

func TestListCommandWarnsAboutSkips(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}
	testEnv(t)
	root := makeTree(t, map[string]string{"ok.txt": "1", "locked/secret": "2"})
	locked := filepath.Join(root, "locked")
	require.NoError(t, os.Chmod(locked, 0))
	t.Cleanup(func() { os.Chmod(locked, 0755) })

	stdout, stderr, err := execute(t, "", "list", root)
	require.NoError(t, err)
	assert.Contains(t, stdout, "ok.txt")
	assert.NotContains(t, stdout, "secret")
	assert.Contains(t, stderr, "1 path(s) skipped during listing")
	assert.Contains(t, stderr, locked)
}

// abortAfter makes the listing return rows followed by err.
func abortAfter(t *testing.T, rows []walker.File, err error) {
	t.Helper()
	original := walkRoot
	walkRoot = func(_ context.Context, _ string, _ logger.Logger) ([]walker.File, []string, error) {
		return rows, nil, err
	}
	t.Cleanup(func() { walkRoot = original })
}

func TestListCommandShowsPartialRowsOnAbort(t *testing.T) {
	testEnv(t)
	ioErr := errors.New("input/output error")
	abortAfter(t, []walker.File{
		{Name: "a.txt", Path: "/r/a.txt", Size: 1},
		{Name: "b.txt", Path: "/r/b.txt", Size: 2},
	}, &walker.WalkError{Op: "list", Path: "/r/sub", Err: ioErr})

	output := filepath.Join(t.TempDir(), "out.json")
	stdout, _, err := execute(t, "", "list", "/r", "--format", "json", "--output", output)
	require.Error(t, err)
	assert.ErrorIs(t, err, ioErr)
	assert.Contains(t, err.Error(), "listing /r")

	var files []walker.File
	require.NoError(t, json.Unmarshal([]byte(stdout), &files))
	assert.Len(t, files, 2)

	_, statErr := os.Stat(output)
	assert.True(t, os.IsNotExist(statErr), "an aborted listing must not write --output")
}

func TestListCommandAbortWithoutRows(t *testing.T) {
	testEnv(t)
	abortAfter(t, nil, errors.New("boom"))

	stdout, _, err := execute(t, "", "list", "/r", "--format", "json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.Empty(t, stdout)
}
