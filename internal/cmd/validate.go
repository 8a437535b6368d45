package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewValidateCommand creates and returns the validate subcommand
func NewValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration",
		Long: `Load the configuration file, apply command-line overrides, and check
every value. The effective settings are printed on success.

Exit code: 0 if valid, 1 if errors found`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Configuration valid\n")
			fmt.Fprintf(out, "  base_path: %s\n", cfg.BasePath)
			fmt.Fprintf(out, "  timeout:   %s\n", cfg.Timeout)
			fmt.Fprintf(out, "  log_level: %s\n", cfg.LogLevel)
			fmt.Fprintf(out, "  format:    %s\n", cfg.Format)
			fmt.Fprintf(out, "  catalog:   enabled=%t keep_scans=%d\n", cfg.Catalog.Enabled, cfg.Catalog.KeepScans)

			info, err := os.Stat(cfg.BasePath)
			switch {
			case err != nil:
				fmt.Fprintf(cmd.ErrOrStderr(), "Note: base_path is not accessible: %v\n", err)
			case !info.IsDir():
				fmt.Fprintf(cmd.ErrOrStderr(), "Note: base_path %s is not a directory\n", cfg.BasePath)
			}
			return nil
		},
	}

	return cmd
}
