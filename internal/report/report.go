// Package report summarizes a recorded scan as Markdown and renders it to HTML.
package report

import (
	"bytes"
	"cmp"
	"fmt"
	"html"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/harrison/bfswalk/internal/display"
	"github.com/harrison/bfswalk/internal/models"
	"github.com/harrison/bfswalk/internal/walker"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// DefaultTop is the number of largest files listed when Options.Top is unset.
const DefaultTop = 10

// Options tunes report contents.
type Options struct {
	Top int // largest files to list
}

// DirStat aggregates the files below one top-level directory of the root.
type DirStat struct {
	Dir   string
	Files int
	Bytes int64
}

// ByTopLevelDir groups files by their first path component below root.
// Files directly under root are grouped as ".". Largest directories come first.
func ByTopLevelDir(root string, files []walker.File) []DirStat {
	index := make(map[string]int)
	var stats []DirStat
	for _, f := range files {
		dir := "."
		if rel, err := filepath.Rel(root, f.Path); err == nil {
			if first, _, found := strings.Cut(filepath.ToSlash(rel), "/"); found {
				dir = first
			}
		}
		i, ok := index[dir]
		if !ok {
			i = len(stats)
			index[dir] = i
			stats = append(stats, DirStat{Dir: dir})
		}
		stats[i].Files++
		stats[i].Bytes += f.Size
	}

	slices.SortFunc(stats, func(a, b DirStat) int {
		if c := cmp.Compare(b.Bytes, a.Bytes); c != 0 {
			return c
		}
		return strings.Compare(a.Dir, b.Dir)
	})
	return stats
}

// Largest returns the n biggest files, ties broken by path.
func Largest(files []walker.File, n int) []walker.File {
	sorted := slices.Clone(files)
	slices.SortFunc(sorted, func(a, b walker.File) int {
		if c := cmp.Compare(b.Size, a.Size); c != 0 {
			return c
		}
		return strings.Compare(a.Path, b.Path)
	})
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

var cellEscaper = strings.NewReplacer(
	`\`, `\\`,
	`|`, `\|`,
	"`", "\\`",
	`*`, `\*`,
	`_`, `\_`,
	`[`, `\[`,
	`<`, `&lt;`,
)

// Markdown renders a scan and its rows as a GitHub-flavoured Markdown document.
func Markdown(scan *models.Scan, files []walker.File, opts Options) string {
	top := opts.Top
	if top <= 0 {
		top = DefaultTop
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Scan %s\n\n", scan.ShortID())

	b.WriteString("| Property | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Root | %s |\n", cellEscaper.Replace(scan.Root))
	fmt.Fprintf(&b, "| Status | %s |\n", scan.Status)
	fmt.Fprintf(&b, "| Started | %s |\n", scan.StartedAt.UTC().Format(time.RFC3339))
	if scan.FinishedAt != nil {
		fmt.Fprintf(&b, "| Duration | %s |\n", scan.Duration().Round(time.Millisecond))
	}
	fmt.Fprintf(&b, "| Files | %d |\n", scan.FileCount)
	fmt.Fprintf(&b, "| Total size | %s |\n", display.HumanSize(scan.TotalBytes))
	fmt.Fprintf(&b, "| Skipped | %d |\n", scan.Skipped)
	fmt.Fprintf(&b, "| Fingerprint | `%s` |\n", scan.Fingerprint)
	if scan.Error != "" {
		fmt.Fprintf(&b, "\n> **Scan aborted:** %s\n", cellEscaper.Replace(scan.Error))
	}

	if len(files) == 0 {
		b.WriteString("\nNo files were recorded.\n")
		return b.String()
	}

	b.WriteString("\n## Directories\n\n| Directory | Files | Size |\n|---|---:|---:|\n")
	for _, d := range ByTopLevelDir(scan.Root, files) {
		fmt.Fprintf(&b, "| %s | %d | %s |\n", cellEscaper.Replace(d.Dir), d.Files, display.HumanSize(d.Bytes))
	}

	fmt.Fprintf(&b, "\n## Largest files\n\n| # | Name | Size | Path |\n|---:|---|---:|---|\n")
	for i, f := range Largest(files, top) {
		fmt.Fprintf(&b, "| %d | %s | %s | %s |\n", i+1,
			cellEscaper.Replace(f.Name), display.HumanSize(f.Size), cellEscaper.Replace(f.Path))
	}

	return b.String()
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// HTML converts a Markdown report to a standalone HTML page.
func HTML(title, source string) ([]byte, error) {
	var body bytes.Buffer
	if err := markdown.Convert([]byte(source), &body); err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}

	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&page, "<title>%s</title>\n", html.EscapeString(title))
	page.WriteString("<style>body{font-family:sans-serif;margin:2em}table{border-collapse:collapse}" +
		"th,td{border:1px solid #ccc;padding:4px 8px}</style>\n</head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")
	return page.Bytes(), nil
}
