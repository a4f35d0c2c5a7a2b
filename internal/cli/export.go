package cli

import (
	"fmt"
	"path/filepath"

	"github.com/sadopc/tasktime/internal/export"
	"github.com/sadopc/tasktime/internal/report"
	"github.com/spf13/cobra"
)

func newExportCommand(a *App) *cobra.Command {
	var (
		filters filterFlags
		format  string
		out     string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export time entries to CSV, JSON or PDF",
		Long: `Export writes the entries matching the filters, one row per entry.
The PDF report groups them by project with subtotals.

Without --out the file is written to the export directory as
time-report-<from>-to-<to>.<format>. Use --out - to write to stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ft, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			prefs, err := a.Store.Preferences()
			if err != nil {
				return err
			}
			f, err := filters.filter(a.now(), report.ParseWeekStart(prefs.WeekStart))
			if err != nil {
				return err
			}
			entries, err := report.Load(cmd.Context(), a.Store, f)
			if err != nil {
				return err
			}

			if out == "-" {
				return export.Write(ft, cmd.OutOrStdout(), entries)
			}

			path := out
			if path == "" {
				path = filepath.Join(a.Config.ExportDir, export.FileName(ft, f.Start, f.End))
			}
			if err := export.ToFile(ft, entries, path); err != nil {
				return err
			}
			a.Log.Info().Str("path", path).Int("entries", len(entries)).Msg("report exported")
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Exported %d entries to %s\n", len(entries), path)
			return nil
		},
	}

	filters.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", string(export.FormatCSV), "Output format: csv, json or pdf")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output path, - for stdout")

	return cmd
}
