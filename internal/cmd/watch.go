package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/harrison/bfswalk/internal/watch"
	"github.com/spf13/cobra"
)

// NewWatchCommand creates the 'bfswalk watch' command
func NewWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [path]",
		Short: "Record a new scan whenever the directory changes",
		Long: `Record a scan like 'bfswalk scan', then keep watching the directory and
record another scan each time it settles after a change. A scan that fails
is reported and watching continues.

Stop with Ctrl-C, or pass --max-scans to stop after that many scans.

Examples:
  bfswalk watch /data
  bfswalk watch --debounce 2s --max-scans 10`,
		Args: cobra.MaximumNArgs(1),
		RunE: runWatch,
	}

	cmd.Flags().Duration("debounce", watch.DefaultDebounceDelay, "Quiet period before a change triggers a scan")
	cmd.Flags().Int("max-scans", 0, "Stop after this many scans, including the first (0 means no limit)")
	cmd.Flags().Int("progress", 0, "Print progress every N files (0 disables)")
	cmd.Flags().Duration("timeout", 0, "Abort each scan after this long")
	cmd.Flags().Bool("no-prune", false, "Keep old scans regardless of catalog.keep_scans")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
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

	debounce, _ := cmd.Flags().GetDuration("debounce")
	maxScans, _ := cmd.Flags().GetInt("max-scans")

	// Watch before the first scan so changes made during it are not missed
	var watcher *watch.Watcher
	if root != "" {
		watcher, err = watch.New(root, debounce)
		if err != nil {
			return fmt.Errorf("failed to watch %s: %w", root, err)
		}
		defer watcher.Close()
	}

	ctx := cmd.Context()
	scans := 0
	runOnce := func() error {
		scans++
		scanCtx, cancel := withTimeout(ctx, cfg)
		defer cancel()
		if err := scanOnce(scanCtx, cmd, store, log, root); err != nil {
			return err
		}
		return pruneCatalog(scanCtx, cmd, store, cfg, log)
	}

	// The first scan reports configuration errors such as a missing root
	if err := runOnce(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for maxScans <= 0 || scans < maxScans {
		fmt.Fprintf(out, "Watching %s for changes...\n", root)
		select {
		case <-ctx.Done():
			return nil
		case err := <-watcher.Errors():
			log.LogWarn(fmt.Sprintf("Watcher error: %v", err))
		case change := <-watcher.Changes():
			log.LogDebug(fmt.Sprintf("%d path(s) changed, first %s", len(change.Paths), change.Paths[0]))
			if err := runOnce(); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				log.LogError(err.Error())
			}
		}
	}
	return nil
}
