package cmd

import (
	"io"

	"github.com/harrison/bfswalk/internal/display"
	"github.com/spf13/cobra"
)

func newExportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <scan-id>",
		Short: "Export the rows of a recorded scan",
		Long: `Export the rows of a recorded scan, ordered by path.

If no output file is specified, data is written to stdout. Output files are
written atomically, so readers never see a partial export.

Examples:
  # Export to JSON file
  bfswalk export 0f8fad5b --format json --output scan.json

  # Export to stdout as CSV
  bfswalk export 0f8fad5b --format csv

Supported formats:
  - json: JSON array of {name, path, size}
  - csv: CSV with headers
  - yaml: YAML sequence
  - table: aligned text table`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			// Exports default to JSON rather than the configured display format.
			formatName, _ := cmd.Flags().GetString("format")
			format, err := display.ParseFormat(formatName)
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
			files, err := store.GetFiles(cmd.Context(), scan.ID)
			if err != nil {
				return err
			}

			data, err := renderTo(func(w io.Writer) error {
				return display.RenderFiles(w, files, format, false)
			})
			if err != nil {
				return err
			}
			output, _ := cmd.Flags().GetString("output")
			return writeOutput(cmd.OutOrStdout(), output, data)
		},
	}

	cmd.Flags().String("format", "json", "Export format (json|csv|yaml|table)")
	cmd.Flags().String("output", "", "Output file path (stdout if not specified)")

	return cmd
}
