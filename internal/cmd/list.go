package cmd

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/harrison/bfswalk/internal/config"
	"github.com/harrison/bfswalk/internal/display"
	"github.com/harrison/bfswalk/internal/logger"
	"github.com/harrison/bfswalk/internal/models"
	"github.com/harrison/bfswalk/internal/walker"
	"github.com/spf13/cobra"
)

// NewListCommand creates the 'bfswalk list' command
func NewListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list [path]",
		Short: "List every file below a directory",
		Long: `List every regular file below a directory, recursively.

Each row carries the file name, its absolute path, and its size in bytes.
Without a path the configured base_path is listed.

Examples:
  # List the default bucket
  bfswalk list

  # Machine-readable output, ordered by path
  bfswalk list /buckets/bfsdefault/default --format json --sort

  # Write a CSV file atomically
  bfswalk list /data --format csv --output listing.csv`,
		Args: cobra.MaximumNArgs(1),
		RunE: runList,
	}

	cmd.Flags().String("format", "table", "Output format (table|json|csv|yaml)")
	cmd.Flags().String("output", "", "Output file path (stdout if not specified)")
	cmd.Flags().Bool("sort", false, "Order rows by full path instead of walk order")
	cmd.Flags().Duration("timeout", 0, "Abort the listing after this long (e.g. 30s, 5m)")

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	format, err := display.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}

	log, closeLog, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	root := resolveRoot(args, cfg)

	ctx, cancel := withTimeout(cmd.Context(), cfg)
	defer cancel()

	files, skipped, walkErr := walkRoot(ctx, root, log)
	if walkErr != nil {
		walkErr = fmt.Errorf("listing %s: %w", root, walkErr)
		if len(files) == 0 {
			return walkErr
		}
	}

	if sortByPath, _ := cmd.Flags().GetBool("sort"); sortByPath {
		slices.SortFunc(files, func(a, b walker.File) int {
			return strings.Compare(a.Path, b.Path)
		})
	}

	// An aborted listing still shows the rows read so far, but never
	// replaces an --output file with them.
	output, _ := cmd.Flags().GetString("output")
	if walkErr != nil {
		output = ""
	}
	data, err := renderTo(func(w io.Writer) error {
		return display.RenderFiles(w, files, format, output == "" && useColor(cmd.OutOrStdout()))
	})
	if err != nil {
		return err
	}
	if err := writeOutput(cmd.OutOrStdout(), output, data); err != nil {
		return err
	}

	if len(skipped) > 0 && format == display.FormatTable {
		display.WarnSkipped(skipped).Display(cmd.ErrOrStderr())
	}
	return walkErr
}

// walkRoot produces the rows of a listing; tests replace it to simulate aborts.
var walkRoot = listFiles

// listFiles walks root, logging every row and skip. The walk stops at the
// next row once ctx is done.
func listFiles(ctx context.Context, root string, log logger.Logger) ([]walker.File, []string, error) {
	start := time.Now()
	log.LogScanStart(root)

	var (
		files   []walker.File
		skipped []string
		bytes   int64
	)
	w := walker.New(walker.Options{
		OnSkip: func(path string, err error) {
			skipped = append(skipped, path)
			log.LogSkip(path, err)
		},
	})
	err := w.Walk(root, walker.SinkFunc(func(name, path string, size int64) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		file := walker.File{Name: name, Path: path, Size: size}
		log.LogFile(file)
		files = append(files, file)
		bytes += size
		return nil
	}))

	log.LogScanComplete(models.ScanSummary{
		Root:     root,
		Files:    len(files),
		Bytes:    bytes,
		Skipped:  len(skipped),
		Duration: time.Since(start),
		Err:      err,
	})
	return files, skipped, err
}

// resolveRoot picks the path argument or the configured base path.
func resolveRoot(args []string, cfg *config.Config) string {
	if len(args) == 1 {
		return args[0]
	}
	return cfg.BasePath
}
