package display

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/harrison/bfswalk/internal/models"
	"github.com/harrison/bfswalk/internal/walker"
)

// ProgressIndicator reports a running scan every few files
type ProgressIndicator struct {
	writer  io.Writer
	every   int
	current int
	bytes   int64
}

// NewProgressIndicator creates a progress indicator printing one line per every files.
// every <= 0 defaults to 1000.
func NewProgressIndicator(w io.Writer, every int) *ProgressIndicator {
	if every <= 0 {
		every = 1000
	}
	return &ProgressIndicator{
		writer: w,
		every:  every,
	}
}

// Start displays the header message
func (p *ProgressIndicator) Start(root string) {
	fmt.Fprintf(p.writer, "Scanning %s:\n", root)
}

// Step counts one file and displays progress on every n-th: [N files, size] path (cyan)
func (p *ProgressIndicator) Step(file walker.File) {
	p.current++
	p.bytes += file.Size
	if p.current%p.every != 0 {
		return
	}
	color.New(color.FgCyan).Fprintf(p.writer, "  [%d files, %s] %s\n", p.current, HumanSize(p.bytes), file.Path)
}

// Count returns the number of files seen so far
func (p *ProgressIndicator) Count() int {
	return p.current
}

// Complete displays the outcome with a green checkmark or a red cross
func (p *ProgressIndicator) Complete(summary models.ScanSummary) {
	if summary.Err != nil {
		fmt.Fprintf(p.writer, "%s Scan aborted after %d files: %v\n", color.RedString("✗"), summary.Files, summary.Err)
		return
	}
	fmt.Fprintf(p.writer, "%s Scanned %d files (%s)\n", color.GreenString("✓"), summary.Files, HumanSize(summary.Bytes))
}
