package cli

import (
	"fmt"
	"io"

	"github.com/sadopc/tasktime/internal/report"
	"github.com/spf13/cobra"
)

func newReportCommand(a *App) *cobra.Command {
	var (
		filters filterFlags
		by      string
		top     int
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show tracked hours grouped by a dimension",
		Long: `Report sums tracked time over a date range and groups it by project,
user, task, status, priority or date. Entries whose task has no value for
the chosen dimension are counted under "Unspecified".

Examples:
  tasktime report
  tasktime report --range last-week --by user
  tasktime report --from 2024-01-01 --to 2024-01-31 --project Web --by task`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dim, err := report.ParseDimension(by)
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
			if !cmd.Flags().Changed("top") {
				top = prefs.TopN
			}

			entries, err := report.Load(cmd.Context(), a.Store, f)
			if err != nil {
				return err
			}
			a.Log.Debug().Str("range", describeRange(f)).Int("entries", len(entries)).Msg("report loaded")

			var buckets []report.Bucket
			if dim == report.ByDate && !f.Start.IsZero() && !f.End.IsZero() {
				buckets = report.DailySeries(entries, f.Start, f.End)
			} else {
				buckets = report.TopN(report.Buckets(entries, dim), top)
			}
			return printReport(cmd.OutOrStdout(), f, dim, buckets, report.Summarize(entries))
		},
	}

	filters.register(cmd)
	cmd.Flags().StringVar(&by, "by", string(report.ByProject), "Group by: project, user, task, status, priority or date")
	cmd.Flags().IntVar(&top, "top", 0, "Show only the N largest groups (default from settings, 0 = all)")

	return cmd
}

func printReport(w io.Writer, f report.Filter, dim report.Dimension, buckets []report.Bucket, sum report.Summary) error {
	if _, err := fmt.Fprintf(w, "Hours by %s, %s\n\n", dim, describeRange(f)); err != nil {
		return err
	}
	if sum.Entries == 0 {
		_, err := fmt.Fprintln(w, "No time tracked in this period.")
		return err
	}

	width := len("Total")
	for _, b := range buckets {
		width = max(width, len(b.Key))
	}
	for _, b := range buckets {
		if _, err := fmt.Fprintf(w, "%-*s  %8.2f\n", width, b.Key, b.Hours()); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "\n%-*s  %8.2f  (%d entries, %d tasks)\n",
		width, "Total", report.Hours(sum.TotalSeconds), sum.Entries, sum.Tasks)
	return err
}
