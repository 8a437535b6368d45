package logger

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/harrison/bfswalk/internal/models"
)

// colorScheme defines consistent colors for different metric types.
// Green: success/positive metrics
// Red: failure/error metrics
// Yellow: warning/threshold metrics
// Cyan: labels and identifiers
type colorScheme struct {
	success *color.Color
	fail    *color.Color
	warn    *color.Color
	label   *color.Color
	value   *color.Color
}

// newColorScheme creates the standard color scheme for metrics.
func newColorScheme() *colorScheme {
	return &colorScheme{
		success: color.New(color.FgGreen),
		fail:    color.New(color.FgRed),
		warn:    color.New(color.FgYellow),
		label:   color.New(color.FgCyan),
		value:   color.New(color.FgWhite),
	}
}

// formatColorizedMetric formats a single metric with colorized label and value.
// Format: "label: value"
func formatColorizedMetric(label string, value interface{}, scheme *colorScheme) string {
	labelColored := scheme.label.Sprint(label)
	valueColored := scheme.value.Sprintf("%v", value)
	return fmt.Sprintf("%s: %s", labelColored, valueColored)
}

// formatColorizedSummary formats listing totals with color coding.
// Format: "files: N, bytes: N, skipped: N"
// Files are green, skipped paths yellow. Zero skips are omitted.
func formatColorizedSummary(summary models.ScanSummary, scheme *colorScheme) string {
	parts := []string{
		fmt.Sprintf("%s: %s", scheme.success.Sprint("files"), scheme.value.Sprintf("%d", summary.Files)),
		formatColorizedMetric("bytes", summary.Bytes, scheme),
	}

	if summary.Skipped > 0 {
		parts = append(parts, fmt.Sprintf("%s: %s", scheme.warn.Sprint("skipped"), scheme.warn.Sprintf("%d", summary.Skipped)))
	}

	return strings.Join(parts, ", ")
}
