package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScanDuration(t *testing.T) {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	finish := start.Add(1500 * time.Millisecond)

	tests := []struct {
		name string
		scan Scan
		want time.Duration
	}{
		{name: "running", scan: Scan{StartedAt: start}, want: 0},
		{name: "finished", scan: Scan{StartedAt: start, FinishedAt: &finish}, want: 1500 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.scan.Duration())
		})
	}
}

func TestScanIsSuccessful(t *testing.T) {
	assert.True(t, (&Scan{Status: ScanCompleted}).IsSuccessful())
	assert.False(t, (&Scan{Status: ScanFailed}).IsSuccessful())
	assert.False(t, (&Scan{Status: ScanRunning}).IsSuccessful())
}

func TestScanShortID(t *testing.T) {
	assert.Equal(t, "0123abcd", (&Scan{ID: "0123abcd-ef01-2345-6789-abcdef012345"}).ShortID())
	assert.Equal(t, "abc", (&Scan{ID: "abc"}).ShortID())
}

func TestScanSummaryString(t *testing.T) {
	ok := ScanSummary{Root: "/r", Files: 3, Bytes: 42, Skipped: 1}
	assert.Equal(t, "/r complete: 3 files, 42 bytes, 1 skipped", ok.String())

	failed := ScanSummary{Root: "/r", Files: 1, Bytes: 7, Err: errors.New("boom")}
	assert.Equal(t, "/r aborted: 1 files, 7 bytes, 0 skipped", failed.String())
}
