package logger

import (
	"github.com/harrison/bfswalk/internal/models"
	"github.com/harrison/bfswalk/internal/walker"
)

// Logger is implemented by every log destination.
type Logger interface {
	LogTrace(message string)
	LogDebug(message string)
	LogInfo(message string)
	LogWarn(message string)
	LogError(message string)
	LogScanStart(root string)
	LogFile(file walker.File)
	LogSkip(path string, err error)
	LogScanComplete(summary models.ScanSummary)
}

var (
	_ Logger = (*ConsoleLogger)(nil)
	_ Logger = (*FileLogger)(nil)
	_ Logger = (*NoOpLogger)(nil)
	_ Logger = MultiLogger(nil)
)

// NoOpLogger is a Logger that discards all messages.
type NoOpLogger struct{}

// NewNoOpLogger creates a new NoOpLogger instance.
func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{}
}

func (n *NoOpLogger) LogTrace(string) {}
func (n *NoOpLogger) LogDebug(string) {}
func (n *NoOpLogger) LogInfo(string) {}
func (n *NoOpLogger) LogWarn(string) {}
func (n *NoOpLogger) LogError(string) {}
func (n *NoOpLogger) LogScanStart(string) {}
func (n *NoOpLogger) LogFile(walker.File) {}
func (n *NoOpLogger) LogSkip(string, error) {}
func (n *NoOpLogger) LogScanComplete(models.ScanSummary) {}

// MultiLogger fans every call out to each logger in order.
type MultiLogger []Logger

func (m MultiLogger) LogTrace(message string) {
	for _, l := range m {
		l.LogTrace(message)
	}
}

func (m MultiLogger) LogDebug(message string) {
	for _, l := range m {
		l.LogDebug(message)
	}
}

func (m MultiLogger) LogInfo(message string) {
	for _, l := range m {
		l.LogInfo(message)
	}
}

func (m MultiLogger) LogWarn(message string) {
	for _, l := range m {
		l.LogWarn(message)
	}
}

func (m MultiLogger) LogError(message string) {
	for _, l := range m {
		l.LogError(message)
	}
}

func (m MultiLogger) LogScanStart(root string) {
	for _, l := range m {
		l.LogScanStart(root)
	}
}

func (m MultiLogger) LogFile(file walker.File) {
	for _, l := range m {
		l.LogFile(file)
	}
}

func (m MultiLogger) LogSkip(path string, err error) {
	for _, l := range m {
		l.LogSkip(path, err)
	}
}

func (m MultiLogger) LogScanComplete(summary models.ScanSummary) {
	for _, l := range m {
		l.LogScanComplete(summary)
	}
}
