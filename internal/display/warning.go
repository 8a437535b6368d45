package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Warning represents a user-facing warning message
type Warning struct {
	Title      string   // Main warning title
	Message    string   // Detailed explanation (optional)
	Paths      []string // Related paths (optional)
	Suggestion string   // Action to take (optional)
}

// maxListedPaths caps how many paths a warning prints before summarizing.
const maxListedPaths = 10

// Display shows a formatted warning in yellow
func (w Warning) Display(out io.Writer) {
	var b strings.Builder

	b.WriteString("⚠️  Warning: ")
	b.WriteString(w.Title)
	b.WriteString("\n")

	if w.Message != "" {
		b.WriteString("    ")
		b.WriteString(w.Message)
		b.WriteString("\n")
	}

	if len(w.Paths) > 0 {
		if len(w.Paths) == 1 {
			b.WriteString("    Affected path:\n")
		} else {
			b.WriteString("    Affected paths:\n")
		}
		for i, path := range w.Paths {
			if i == maxListedPaths {
				b.WriteString(fmt.Sprintf("      ... and %d more\n", len(w.Paths)-maxListedPaths))
				break
			}
			b.WriteString(fmt.Sprintf("      %d. %s\n", i+1, path))
		}
	}

	if w.Suggestion != "" {
		b.WriteString("    Suggestion:\n")
		b.WriteString("    ")
		b.WriteString(w.Suggestion)
		b.WriteString("\n")
	}

	color.New(color.FgYellow).Fprint(out, b.String())
}

// WarnSkipped creates a warning for directories and entries a walk skipped
func WarnSkipped(paths []string) Warning {
	return Warning{
		Title:      fmt.Sprintf("%d path(s) skipped during listing", len(paths)),
		Message:    "Unreadable directories and entries removed mid-walk are left out of the listing.",
		Paths:      paths,
		Suggestion: "Check permissions on the affected paths, or rerun with --log-level debug for the causes.",
	}
}

// WarnFingerprintChanged creates a warning for a listing that differs from the previous scan of its root
func WarnFingerprintChanged(root, previousID string) Warning {
	return Warning{
		Title:   "Listing changed since the previous scan",
		Message: fmt.Sprintf("%s no longer matches scan %s.", root, previousID),
		Suggestion: fmt.Sprintf("Compare the two with 'bfswalk export %s' and 'bfswalk export <new scan>'.",
			previousID),
	}
}
