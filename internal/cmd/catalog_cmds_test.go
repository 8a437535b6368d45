package cmd

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/harrison/bfswalk/internal/catalog"
	"github.com/harrison/bfswalk/internal/walker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryCommand(t *testing.T) {
	testEnv(t)
	rootA := makeTree(t, map[string]string{"a": "1"})
	rootB := makeTree(t, map[string]string{"b": "22"})
	idA, _, _ := recordScan(t, rootA)
	idB, _, _ := recordScan(t, rootB)

	stdout, _, err := execute(t, "", "history")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[2], idB[:8]), "newest first: %q", lines[2])
	assert.True(t, strings.HasPrefix(lines[3], idA[:8]))

	stdout, _, err = execute(t, "", "history", "--limit", "1", "--format", "json")
	require.NoError(t, err)
	var scans []map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &scans))
	require.Len(t, scans, 1)
	assert.Equal(t, idB, scans[0]["id"])
}

func TestHistoryCommandEmpty(t *testing.T) {
	testEnv(t)

	stdout, _, err := execute(t, "", "history")
	require.NoError(t, err)
	assert.Equal(t, "No scans recorded\n", stdout)
}

func TestShowCommand(t *testing.T) {
	testEnv(t)
	root := makeTree(t, map[string]string{"a.txt": "hello"})
	id, _, _ := recordScan(t, root)

	stdout, _, err := execute(t, "", "show", id[:8])
	require.NoError(t, err)
	assert.Contains(t, stdout, "Scan:        "+id)
	assert.Contains(t, stdout, "Status:      COMPLETED")
	assert.NotContains(t, stdout, "a.txt")

	stdout, _, err = execute(t, "", "show", id, "--files")
	require.NoError(t, err)
	assert.Contains(t, stdout, filepath.Join(root, "a.txt"))
}

func TestShowCommandUnknownScan(t *testing.T) {
	testEnv(t)

	_, _, err := execute(t, "", "show", "deadbeef")
	require.Error(t, err)
	assert.ErrorIs(t, err, catalog.ErrScanNotFound)
}

func TestExportCommand(t *testing.T) {
	testEnv(t)
	root := makeTree(t, map[string]string{"b.txt": "bb", "a.txt": "a"})
	id, _, _ := recordScan(t, root)

	stdout, _, err := execute(t, "", "export", id)
	require.NoError(t, err)
	var files []walker.File
	require.NoError(t, json.Unmarshal([]byte(stdout), &files), "json is the default export format")
	assert.Equal(t, []walker.File{
		{Name: "a.txt", Path: filepath.Join(root, "a.txt"), Size: 1},
		{Name: "b.txt", Path: filepath.Join(root, "b.txt"), Size: 2},
	}, files)

	output := filepath.Join(t.TempDir(), "scan.csv")
	stdout, _, err = execute(t, "", "export", id, "--format", "csv", "--output", output)
	require.NoError(t, err)
	assert.Empty(t, stdout)

	f, err := os.Open(output)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 3)
	assert.Equal(t, []string{"name", "path", "size"}, records[0])
}

func TestExportCommandInvalidFormat(t *testing.T) {
	testEnv(t)
	root := makeTree(t, map[string]string{"a": "1"})
	id, _, _ := recordScan(t, root)

	_, _, err := execute(t, "", "export", id, "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "format")
}

func TestClearCommandSingleScan(t *testing.T) {
	home := testEnv(t)
	root := makeTree(t, map[string]string{"a": "1"})
	keep, _, _ := recordScan(t, root)
	drop, _, _ := recordScan(t, root)

	stdout, _, err := execute(t, "y\n", "clear", drop[:8])
	require.NoError(t, err)
	assert.Contains(t, stdout, "This will delete scan "+drop)
	assert.Contains(t, stdout, "Deleted 1 scan.")

	scans, err := openTestCatalog(t, home).ListScans(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, scans, 1)
	assert.Equal(t, keep, scans[0].ID)
}

func TestClearCommandCancelled(t *testing.T) {
	home := testEnv(t)
	root := makeTree(t, map[string]string{"a": "1"})
	id, _, _ := recordScan(t, root)

	stdout, _, err := execute(t, "n\n", "clear", id)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Operation cancelled.")

	_, err = openTestCatalog(t, home).GetScan(context.Background(), id)
	assert.NoError(t, err)
}

func TestClearCommandAll(t *testing.T) {
	home := testEnv(t)
	root := makeTree(t, map[string]string{"a": "1"})
	recordScan(t, root)
	recordScan(t, root)

	stdout, _, err := execute(t, "", "clear", "--all", "--yes")
	require.NoError(t, err)
	assert.Contains(t, stdout, "WARNING: This will delete ALL recorded scans")
	assert.Contains(t, stdout, "Deleted 2 scans.")

	scans, err := openTestCatalog(t, home).ListScans(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, scans)
}

func TestClearCommandArgs(t *testing.T) {
	testEnv(t)

	_, _, err := execute(t, "", "clear")
	assert.ErrorContains(t, err, "requires scan ID argument or --all flag")

	_, _, err = execute(t, "", "clear", "abc", "--all")
	assert.ErrorContains(t, err, "cannot specify scan ID when using --all flag")
}

func TestClearCommandNoCatalog(t *testing.T) {
	testEnv(t)

	stdout, _, err := execute(t, "", "clear", "--all", "--yes")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No catalog found at:")
}

func TestReportCommand(t *testing.T) {
	testEnv(t)
	root := makeTree(t, map[string]string{"jars/big.jar": strings.Repeat("x", 2048), "small.txt": "s"})
	id, _, _ := recordScan(t, root)

	stdout, _, err := execute(t, "", "report", id)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "# Scan "+id[:8]))
	assert.Contains(t, stdout, "| jars | 1 | 2.0 KiB |")
	assert.Contains(t, stdout, "| 1 | big.jar | 2.0 KiB |")

	output := filepath.Join(t.TempDir(), "report.html")
	_, _, err = execute(t, "", "report", id, "--html", "--output", output)
	require.NoError(t, err)
	page, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(page), "<title>bfswalk scan "+id[:8]+"</title>")
	assert.Contains(t, string(page), "<table>")
}
