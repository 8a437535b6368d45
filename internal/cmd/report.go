package cmd

import (
	"fmt"

	"github.com/harrison/bfswalk/internal/report"
	"github.com/spf13/cobra"
)

// NewReportCommand creates the 'bfswalk report' command
func NewReportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report <scan-id>",
		Short: "Summarize a recorded scan as Markdown or HTML",
		Long: `Summarize a recorded scan: totals, a per-directory breakdown, and the
largest files.

Examples:
  bfswalk report 0f8fad5b
  bfswalk report 0f8fad5b --html --output scan.html`,
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
			files, err := store.GetFiles(cmd.Context(), scan.ID)
			if err != nil {
				return err
			}

			top, _ := cmd.Flags().GetInt("top")
			data := []byte(report.Markdown(scan, files, report.Options{Top: top}))
			if asHTML, _ := cmd.Flags().GetBool("html"); asHTML {
				data, err = report.HTML(fmt.Sprintf("bfswalk scan %s", scan.ShortID()), string(data))
				if err != nil {
					return err
				}
			}

			output, _ := cmd.Flags().GetString("output")
			return writeOutput(cmd.OutOrStdout(), output, data)
		},
	}

	cmd.Flags().Bool("html", false, "Render the report as a standalone HTML page")
	cmd.Flags().Int("top", report.DefaultTop, "Number of largest files to list")
	cmd.Flags().String("output", "", "Output file path (stdout if not specified)")

	return cmd
}
