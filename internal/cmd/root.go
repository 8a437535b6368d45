package cmd

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for bfswalk
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bfswalk",
		Short: "Recursive file listing for BucketFS-style directory trees",
		Long: `bfswalk lists every regular file below a directory, recursively.

Directories that directly contain an "exaudf" directory hold an unpacked
language runtime and are left out together with everything below them.
Symbolic links are never followed, and unreadable directories are skipped.

Listings can be printed, exported, or recorded in a local catalog so that
later runs can be compared against earlier ones.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
				color.NoColor = true
			}
		},
	}

	flags := cmd.PersistentFlags()
	flags.String("config", "", "Path to config file (default: $BFSWALK_HOME/config.yaml)")
	flags.String("log-level", "", "Log level: trace, debug, info, warn, error (overrides config)")
	flags.String("log-dir", "", "Also write run logs to this directory (overrides config)")
	flags.Bool("no-color", false, "Disable coloured output")
	flags.String("db-path", "", "Path to the catalog database (default: $BFSWALK_HOME/catalog/scans.db)")

	cmd.AddCommand(NewListCommand())
	cmd.AddCommand(NewFindCommand())
	cmd.AddCommand(NewScanCommand())
	cmd.AddCommand(NewWatchCommand())
	cmd.AddCommand(NewHistoryCommand())
	cmd.AddCommand(NewShowCommand())
	cmd.AddCommand(newExportCommand())
	cmd.AddCommand(newClearCommand())
	cmd.AddCommand(NewReportCommand())
	cmd.AddCommand(NewValidateCommand())

	return cmd
}
