// Package display renders listings and recorded scans for the terminal and
// for machine consumption.
//
// Listings are written in one of four formats:
//
//	display.RenderFiles(os.Stdout, files, display.FormatTable, display.IsTerminal(os.Stdout))
//	display.RenderFiles(out, files, display.FormatJSON, false)
//
// Tables are aligned with a dashed separator under the header and coloured
// when the writer is a terminal. JSON, CSV and YAML output never carries
// colour codes.
//
// Progress of a long scan is shown with ProgressIndicator, and recoverable
// problems such as skipped directories with Warning.
package display
