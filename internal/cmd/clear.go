package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// newClearCommand creates the 'bfswalk clear' command
func newClearCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear [scan-id]",
		Short: "Delete recorded scans",
		Long: `Delete one recorded scan or the entire catalog.

Examples:
  # Delete a single scan (requires confirmation)
  bfswalk clear 0f8fad5b

  # Delete every scan without prompting
  bfswalk clear --all --yes`,
		Args: func(cmd *cobra.Command, args []string) error {
			clearAll, _ := cmd.Flags().GetBool("all")
			if clearAll && len(args) > 0 {
				return fmt.Errorf("cannot specify scan ID when using --all flag")
			}
			if !clearAll && len(args) != 1 {
				return fmt.Errorf("requires scan ID argument or --all flag")
			}
			return nil
		},
		RunE: runClear,
	}

	cmd.Flags().Bool("all", false, "Delete every recorded scan")
	cmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")

	return cmd
}

func runClear(cmd *cobra.Command, args []string) error {
	output := cmd.OutOrStdout()
	clearAll, _ := cmd.Flags().GetBool("all")
	yes, _ := cmd.Flags().GetBool("yes")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	dbPath, err := catalogPath(cmd, cfg)
	if err != nil {
		return err
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Fprintf(output, "No catalog found at: %s\n", dbPath)
		return nil
	}

	store, err := openCatalog(cmd, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if clearAll {
		fmt.Fprintf(output, "WARNING: This will delete ALL recorded scans from %s.\n", dbPath)
	} else {
		scan, err := store.GetScan(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		args[0] = scan.ID
		fmt.Fprintf(output, "This will delete scan %s of %s (%d files).\n", scan.ID, scan.Root, scan.FileCount)
	}
	if !yes && !confirmAction(cmd.InOrStdin(), output) {
		fmt.Fprintf(output, "Operation cancelled.\n")
		return nil
	}

	deleted := 1
	if clearAll {
		deleted, err = store.Clear(cmd.Context())
	} else {
		err = store.DeleteScan(cmd.Context(), args[0])
	}
	if err != nil {
		return fmt.Errorf("delete scans: %w", err)
	}

	scanText := "scan"
	if deleted != 1 {
		scanText = "scans"
	}
	fmt.Fprintf(output, "Deleted %d %s.\n", deleted, scanText)
	return nil
}
