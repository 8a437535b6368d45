package display

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/harrison/bfswalk/internal/walker"
	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"
)

// Format selects how rows are rendered.
type Format string

// Supported formats
const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatCSV   Format = "csv"
	FormatYAML  Format = "yaml"
)

// Formats lists every supported format in display order.
var Formats = []Format{FormatTable, FormatJSON, FormatCSV, FormatYAML}

// ParseFormat converts a user-supplied name, case-insensitively.
func ParseFormat(name string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format %q (expected table, json, csv or yaml)", name)
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// RenderFiles writes files to w in the given format.
func RenderFiles(w io.Writer, files []walker.File, format Format, colorOutput bool) error {
	if files == nil {
		files = []walker.File{}
	}

	switch format {
	case FormatTable:
		return writeLines(w, FormatFileTable(files, colorOutput))
	case FormatJSON:
		return writeJSON(w, files)
	case FormatYAML:
		return writeYAML(w, files)
	case FormatCSV:
		records := [][]string{{"name", "path", "size"}}
		for _, f := range files {
			records = append(records, []string{f.Name, f.Path, strconv.FormatInt(f.Size, 10)})
		}
		return writeCSV(w, records)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// FormatFileTable formats files as aligned table rows followed by a totals line.
func FormatFileTable(files []walker.File, colorOutput bool) []string {
	if len(files) == 0 {
		return []string{"No files found"}
	}

	nameWidth, sizeWidth := len("Name"), len("Size")
	sizes := make([]string, len(files))
	var total int64
	for i, f := range files {
		sizes[i] = HumanSize(f.Size)
		nameWidth = max(nameWidth, len(f.Name))
		sizeWidth = max(sizeWidth, len(sizes[i]))
		total += f.Size
	}

	header := fmt.Sprintf("%-*s  %*s  %s", nameWidth, "Name", sizeWidth, "Size", "Path")
	rows := []string{header, strings.Repeat("-", len(header)+4)}
	if colorOutput {
		rows[0] = color.New(color.Bold).Sprint(header)
	}

	for i, f := range files {
		name := fmt.Sprintf("%-*s", nameWidth, f.Name)
		if colorOutput {
			name = color.CyanString(name)
		}
		rows = append(rows, fmt.Sprintf("%s  %*s  %s", name, sizeWidth, sizes[i], f.Path))
	}

	rows = append(rows, fmt.Sprintf("%d files, %s total", len(files), HumanSize(total)))
	return rows
}

// HumanSize formats a byte count with binary units.
func HumanSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

func writeYAML(w io.Writer, v any) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return encoder.Close()
}

func writeCSV(w io.Writer, records [][]string) error {
	writer := csv.NewWriter(w)
	if err := writer.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}
