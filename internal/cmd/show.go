package cmd

import (
	"fmt"

	"github.com/harrison/bfswalk/internal/display"
	"github.com/spf13/cobra"
)

// NewShowCommand creates the 'bfswalk show' command
func NewShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <scan-id>",
		Short: "Show the details of a recorded scan",
		Long: `Show the details of a recorded scan. The scan ID may be shortened to
any unique prefix, such as the 8 characters printed by 'bfswalk history'.

Examples:
  bfswalk show 0f8fad5b
  bfswalk show 0f8fad5b --files`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			store, err := openCatalog(cmd, cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			scan, err := store.GetScan(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorOutput := useColor(out)
			if err := display.WriteScanDetail(out, scan, colorOutput); err != nil {
				return err
			}

			if showFiles, _ := cmd.Flags().GetBool("files"); showFiles {
				files, err := store.GetFiles(cmd.Context(), scan.ID)
				if err != nil {
					return err
				}
				fmt.Fprintln(out)
				return display.RenderFiles(out, files, display.FormatTable, colorOutput)
			}
			return nil
		},
	}

	cmd.Flags().Bool("files", false, "Also list the recorded files")

	return cmd
}
