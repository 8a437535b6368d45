package cmd

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/harrison/bfswalk/internal/bucketfs"
	"github.com/harrison/bfswalk/internal/catalog"
	"github.com/harrison/bfswalk/internal/logger"
	"github.com/spf13/cobra"
)

// newBucketFS opens a listing session; tests replace it with a mock.
var newBucketFS = func(ctx context.Context, db *sql.DB, basePath string, log logger.Logger) (bucketfs.API, error) {
	return bucketfs.New(ctx, db, basePath, log)
}

// NewFindCommand creates the 'bfswalk find' command
func NewFindCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "find <file-name>",
		Short: "Print the absolute path of a file found by name",
		Long: `Search the base path for a file with the given name and print its
absolute path. When several directories contain such a file, the lowest
path in byte order wins.

With --scan the name is looked up in a recorded scan instead, without
listing the directory again.

Examples:
  bfswalk find exasol-virtual-schema-dist-10.5.0.jar
  bfswalk find settings.yml --path /data
  bfswalk find settings.yml --scan 0123abcd`,
		Args: cobra.ExactArgs(1),
		RunE: runFind,
	}

	cmd.Flags().String("path", "", "Directory to search (default: base_path from config)")
	cmd.Flags().String("scan", "", "Search a recorded scan (ID or unique prefix) instead of the directory")
	cmd.Flags().Duration("timeout", 0, "Abort the search after this long")
	cmd.MarkFlagsMutuallyExclusive("path", "scan")

	return cmd
}

func runFind(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if path, _ := cmd.Flags().GetString("path"); path != "" {
		cfg.MergeWithFlags(&path, nil, nil, nil, nil)
	}

	log, closeLog, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	store, err := openCatalog(cmd, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, cancel := withTimeout(cmd.Context(), cfg)
	defer cancel()

	if scanID, _ := cmd.Flags().GetString("scan"); scanID != "" {
		path, err := findInScan(ctx, store, scanID, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	}

	bfs, err := newBucketFS(ctx, store.DB(), cfg.BasePath, log)
	if err != nil {
		return err
	}
	defer bfs.Close()

	path, err := bfs.FindAbsolutePath(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

// findInScan returns the lowest path recorded for name in the given scan.
func findInScan(ctx context.Context, store *catalog.Store, scanID, name string) (string, error) {
	scan, err := store.GetScan(ctx, scanID)
	if err != nil {
		return "", err
	}
	files, err := store.FindByName(ctx, scan.ID, name)
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", fmt.Errorf("file %q not found in scan %s: %w", name, scan.ShortID(), bucketfs.ErrFileNotFound)
	}
	return files[0].Path, nil
}
