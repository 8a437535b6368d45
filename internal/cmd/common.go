package cmd

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/harrison/bfswalk/internal/catalog"
	"github.com/harrison/bfswalk/internal/config"
	"github.com/harrison/bfswalk/internal/display"
	"github.com/harrison/bfswalk/internal/filelock"
	"github.com/harrison/bfswalk/internal/logger"
	"github.com/spf13/cobra"
)

// loadConfig reads the config file and applies the flags the user set.
// An explicit --config must exist; the default location may be absent.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
	} else {
		var err error
		path, err = config.GetConfigPath()
		if err != nil {
			return nil, fmt.Errorf("failed to locate config: %w", err)
		}
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	var logLevel, logDir, format *string
	if cmd.Flags().Changed("log-level") {
		v, _ := cmd.Flags().GetString("log-level")
		logLevel = &v
	}
	if cmd.Flags().Changed("log-dir") {
		v, _ := cmd.Flags().GetString("log-dir")
		logDir = &v
	}
	if f := cmd.Flags().Lookup("format"); f != nil && f.Changed {
		v := f.Value.String()
		format = &v
	}
	cfg.MergeWithFlags(nil, nil, logLevel, logDir, format)
	if f := cmd.Flags().Lookup("timeout"); f != nil && f.Changed {
		timeout, err := cmd.Flags().GetDuration("timeout")
		if err != nil {
			return nil, err
		}
		cfg.MergeWithFlags(nil, &timeout, nil, nil, nil)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newLogger logs to stderr and, when a log directory is configured, to a run log.
// The returned function closes the run log.
func newLogger(cmd *cobra.Command, cfg *config.Config) (logger.Logger, func(), error) {
	console := logger.NewConsoleLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	if cfg.LogDir == "" {
		return console, func() {}, nil
	}

	fileLogger, err := logger.NewFileLoggerWithDirAndLevel(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open run log: %w", err)
	}
	return logger.MultiLogger{console, fileLogger}, func() { fileLogger.Close() }, nil
}

// catalogPath resolves --db-path, then catalog.db_path, then the home default.
func catalogPath(cmd *cobra.Command, cfg *config.Config) (string, error) {
	if path, _ := cmd.Flags().GetString("db-path"); path != "" {
		return path, nil
	}
	if cfg.Catalog.DBPath != "" {
		return cfg.Catalog.DBPath, nil
	}
	path, err := config.GetCatalogDBPath()
	if err != nil {
		return "", fmt.Errorf("failed to get catalog database path: %w", err)
	}
	return path, nil
}

func openCatalog(cmd *cobra.Command, cfg *config.Config) (*catalog.Store, error) {
	path, err := catalogPath(cmd, cfg)
	if err != nil {
		return nil, err
	}
	store, err := catalog.NewStore(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	return store, nil
}

// withTimeout bounds ctx by the configured timeout; zero means no limit.
func withTimeout(ctx context.Context, cfg *config.Config) (context.Context, context.CancelFunc) {
	if cfg.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, cfg.Timeout)
}

func useColor(w io.Writer) bool {
	return display.IsTerminal(w)
}

// writeOutput writes data to path atomically, or to w when path is empty.
func writeOutput(w io.Writer, path string, data []byte) error {
	if path == "" {
		_, err := w.Write(data)
		return err
	}
	if err := filelock.LockAndWrite(path, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// renderTo renders into a buffer so a failed render never leaves a partial output file.
func renderTo(fn func(w io.Writer) error) ([]byte, error) {
	var buf bytes.Buffer
	if err := fn(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// confirmAction prompts the user for confirmation
func confirmAction(in io.Reader, output io.Writer) bool {
	scanner := bufio.NewScanner(in)

	fmt.Fprintf(output, "Continue? [y/N]: ")

	if !scanner.Scan() {
		return false
	}

	response := strings.TrimSpace(strings.ToLower(scanner.Text()))
	return response == "y" || response == "yes"
}
