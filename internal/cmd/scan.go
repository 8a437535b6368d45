package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/harrison/bfswalk/internal/catalog"
	"github.com/harrison/bfswalk/internal/config"
	"github.com/harrison/bfswalk/internal/display"
	"github.com/harrison/bfswalk/internal/logger"
	"github.com/harrison/bfswalk/internal/models"
	"github.com/harrison/bfswalk/internal/walker"
	"github.com/spf13/cobra"
)

// NewScanCommand creates the 'bfswalk scan' command
func NewScanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [path]",
		Short: "List a directory and record the result in the catalog",
		Long: `List a directory like 'bfswalk list' and store every row in the catalog
under a new scan ID. The fingerprint of the listing is compared with the
previous completed scan of the same directory.

A listing that aborts is still recorded, marked FAILED, with the rows read
before the error. Old scans beyond catalog.keep_scans are pruned.

Examples:
  bfswalk scan
  bfswalk scan /data --progress 500`,
		Args: cobra.MaximumNArgs(1),
		RunE: runScan,
	}

	cmd.Flags().Int("progress", 0, "Print progress every N files (0 disables)")
	cmd.Flags().Duration("timeout", 0, "Abort the scan after this long")
	cmd.Flags().Bool("no-prune", false, "Keep old scans regardless of catalog.keep_scans")

	return cmd
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if !cfg.Catalog.Enabled {
		return errors.New("catalog is disabled (catalog.enabled: false in config)")
	}

	log, closeLog, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	root := resolveRoot(args, cfg)
	if root != "" {
		if abs, err := filepath.Abs(root); err == nil {
			root = abs
		}
	}

	store, err := openCatalog(cmd, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, cancel := withTimeout(cmd.Context(), cfg)
	defer cancel()

	if err := scanOnce(ctx, cmd, store, log, root); err != nil {
		return err
	}

	return pruneCatalog(ctx, cmd, store, cfg, log)
}

// pruneCatalog drops scans beyond catalog.keep_scans unless --no-prune is set.
func pruneCatalog(ctx context.Context, cmd *cobra.Command, store *catalog.Store, cfg *config.Config, log logger.Logger) error {
	if noPrune, _ := cmd.Flags().GetBool("no-prune"); noPrune {
		return nil
	}
	removed, err := store.Prune(ctx, cfg.Catalog.KeepScans)
	if err != nil {
		return fmt.Errorf("failed to prune catalog: %w", err)
	}
	if removed > 0 {
		log.LogDebug(fmt.Sprintf("Pruned %d old scan(s)", removed))
	}
	return nil
}

// scanOnce records one scan of root and reports how it compares with the
// previous completed scan.
func scanOnce(ctx context.Context, cmd *cobra.Command, store *catalog.Store, log logger.Logger, root string) error {
	previous, err := store.LatestScan(ctx, root)
	if err != nil && !errors.Is(err, catalog.ErrScanNotFound) {
		return err
	}

	out := cmd.OutOrStdout()
	every, _ := cmd.Flags().GetInt("progress")
	var progress *display.ProgressIndicator
	if every > 0 {
		progress = display.NewProgressIndicator(out, every)
		progress.Start(root)
	}

	var skipped []string
	start := time.Now()
	log.LogScanStart(root)
	scan, walkErr := store.RecordScan(ctx, root, catalog.RecordOptions{
		OnFile: func(f walker.File) {
			log.LogFile(f)
			if progress != nil {
				progress.Step(f)
			}
		},
		OnSkip: func(path string, err error) {
			skipped = append(skipped, path)
			log.LogSkip(path, err)
		},
	})
	if scan == nil {
		return walkErr
	}

	summary := models.ScanSummary{
		Root:     root,
		Files:    scan.FileCount,
		Bytes:    scan.TotalBytes,
		Skipped:  scan.Skipped,
		Duration: time.Since(start),
		Err:      walkErr,
	}
	log.LogScanComplete(summary)
	if progress != nil {
		progress.Complete(summary)
	}

	if walkErr != nil {
		return fmt.Errorf("scan %s recorded as %s: %w", scan.ShortID(), scan.Status, walkErr)
	}

	fmt.Fprintf(out, "Recorded scan %s: %d files, %s\n", scan.ID, scan.FileCount, display.HumanSize(scan.TotalBytes))
	switch {
	case previous == nil:
		fmt.Fprintf(out, "First completed scan of %s\n", root)
	case previous.Fingerprint == scan.Fingerprint:
		fmt.Fprintf(out, "Unchanged since scan %s\n", previous.ShortID())
	default:
		display.WarnFingerprintChanged(root, previous.ShortID()).Display(cmd.ErrOrStderr())
	}
	if len(skipped) > 0 {
		display.WarnSkipped(skipped).Display(cmd.ErrOrStderr())
	}
	return nil
}
