package cmd

import (
	"github.com/harrison/bfswalk/internal/display"
	"github.com/spf13/cobra"
)

// NewHistoryCommand creates the 'bfswalk history' command
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded scans, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			format, err := display.ParseFormat(cfg.Format)
			if err != nil {
				return err
			}

			store, err := openCatalog(cmd, cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			limit, _ := cmd.Flags().GetInt("limit")
			scans, err := store.ListScans(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return display.RenderScans(cmd.OutOrStdout(), scans, format, useColor(cmd.OutOrStdout()))
		},
	}

	cmd.Flags().Int("limit", 20, "Maximum number of scans to show (0 = all)")
	cmd.Flags().String("format", "table", "Output format (table|json|csv|yaml)")

	return cmd
}
