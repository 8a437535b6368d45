package models

import (
	"fmt"
	"time"
)

// Scan status constants
const (
	ScanRunning   = "RUNNING"   // Walk in progress
	ScanCompleted = "COMPLETED" // Walk finished and every row was stored
	ScanFailed    = "FAILED"    // Walk aborted; rows stored so far are kept
)

// Scan is one recorded listing of a root directory
type Scan struct {
	ID          string     `json:"id" yaml:"id"`
	Root        string     `json:"root" yaml:"root"`
	StartedAt   time.Time  `json:"started_at" yaml:"started_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty" yaml:"finished_at,omitempty"`
	FileCount   int        `json:"file_count" yaml:"file_count"`
	TotalBytes  int64      `json:"total_bytes" yaml:"total_bytes"`
	Skipped     int        `json:"skipped" yaml:"skipped"`
	Fingerprint string     `json:"fingerprint" yaml:"fingerprint"`
	Status      string     `json:"status" yaml:"status"`
	Error       string     `json:"error,omitempty" yaml:"error,omitempty"`
}

// Duration returns how long the scan ran, or 0 while it is still running
func (s *Scan) Duration() time.Duration {
	if s.FinishedAt == nil {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

// IsSuccessful reports whether the scan completed without error
func (s *Scan) IsSuccessful() bool {
	return s.Status == ScanCompleted
}

// ShortID returns the first 8 characters of the scan ID for display
func (s *Scan) ShortID() string {
	if len(s.ID) <= 8 {
		return s.ID
	}
	return s.ID[:8]
}

// ScanSummary aggregates the outcome of a single walk
type ScanSummary struct {
	Root     string        // Root path that was walked
	Files    int           // Number of files emitted
	Bytes    int64         // Sum of emitted file sizes
	Skipped  int           // Unreadable directories and vanished entries
	Duration time.Duration // Wall time of the walk
	Err      error         // Fatal error, if the walk aborted
}

// String renders the summary on one line
func (s ScanSummary) String() string {
	status := "complete"
	if s.Err != nil {
		status = "aborted"
	}
	return fmt.Sprintf("%s %s: %d files, %d bytes, %d skipped", s.Root, status, s.Files, s.Bytes, s.Skipped)
}
