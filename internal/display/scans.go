package display

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/harrison/bfswalk/internal/models"
)

// RenderScans writes recorded scans to w in the given format.
func RenderScans(w io.Writer, scans []*models.Scan, format Format, colorOutput bool) error {
	if scans == nil {
		scans = []*models.Scan{}
	}

	switch format {
	case FormatTable:
		return writeLines(w, FormatScanTable(scans, colorOutput))
	case FormatJSON:
		return writeJSON(w, scans)
	case FormatYAML:
		return writeYAML(w, scans)
	case FormatCSV:
		records := [][]string{{"id", "root", "status", "started_at", "file_count", "total_bytes", "skipped", "fingerprint", "error"}}
		for _, s := range scans {
			records = append(records, []string{
				s.ID,
				s.Root,
				s.Status,
				s.StartedAt.Format(time.RFC3339),
				strconv.Itoa(s.FileCount),
				strconv.FormatInt(s.TotalBytes, 10),
				strconv.Itoa(s.Skipped),
				s.Fingerprint,
				s.Error,
			})
		}
		return writeCSV(w, records)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// FormatScanTable formats scans as aligned table rows, newest first as given.
func FormatScanTable(scans []*models.Scan, colorOutput bool) []string {
	if len(scans) == 0 {
		return []string{"No scans recorded"}
	}

	const timeLayout = "2006-01-02 15:04:05"
	statusWidth := len(models.ScanCompleted)

	header := fmt.Sprintf("%-8s  %-*s  %7s  %10s  %-19s  %s",
		"ID", statusWidth, "Status", "Files", "Size", "Started", "Root")
	rows := []string{header, strings.Repeat("-", len(header)+8)}

	for _, s := range scans {
		status := fmt.Sprintf("%-*s", statusWidth, s.Status)
		if colorOutput {
			status = statusColor(s.Status).Sprint(status)
		}
		rows = append(rows, fmt.Sprintf("%-8s  %s  %7d  %10s  %-19s  %s",
			s.ShortID(), status, s.FileCount, HumanSize(s.TotalBytes),
			s.StartedAt.Local().Format(timeLayout), s.Root))
	}
	return rows
}

// FormatScanDetail formats one scan as labelled lines.
func FormatScanDetail(s *models.Scan, colorOutput bool) []string {
	status := s.Status
	if colorOutput {
		status = statusColor(s.Status).Sprint(status)
	}

	lines := []string{
		fmt.Sprintf("Scan:        %s", s.ID),
		fmt.Sprintf("Root:        %s", s.Root),
		fmt.Sprintf("Status:      %s", status),
		fmt.Sprintf("Started:     %s", s.StartedAt.Local().Format(time.RFC3339)),
	}
	if s.FinishedAt != nil {
		lines = append(lines,
			fmt.Sprintf("Finished:    %s", s.FinishedAt.Local().Format(time.RFC3339)),
			fmt.Sprintf("Duration:    %s", s.Duration().Round(time.Millisecond)))
	}
	lines = append(lines,
		fmt.Sprintf("Files:       %d", s.FileCount),
		fmt.Sprintf("Size:        %s (%d bytes)", HumanSize(s.TotalBytes), s.TotalBytes),
		fmt.Sprintf("Skipped:     %d", s.Skipped),
		fmt.Sprintf("Fingerprint: %s", s.Fingerprint))
	if s.Error != "" {
		lines = append(lines, fmt.Sprintf("Error:       %s", s.Error))
	}
	return lines
}

// WriteScanDetail writes FormatScanDetail to w.
func WriteScanDetail(w io.Writer, s *models.Scan, colorOutput bool) error {
	return writeLines(w, FormatScanDetail(s, colorOutput))
}

func statusColor(status string) *color.Color {
	switch status {
	case models.ScanCompleted:
		return color.New(color.FgGreen)
	case models.ScanFailed:
		return color.New(color.FgRed)
	default:
		return color.New(color.FgYellow)
	}
}
