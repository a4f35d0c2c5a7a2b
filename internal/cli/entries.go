package cli

import (
	"fmt"
	"io"

	"github.com/sadopc/tasktime/internal/report"
	"github.com/sadopc/tasktime/internal/tracking"
	"github.com/spf13/cobra"
)

func newEntriesCommand(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entries",
		Short: "List or delete recorded time entries",
	}
	cmd.AddCommand(newEntriesListCommand(a))
	cmd.AddCommand(newEntriesDeleteCommand(a))
	return cmd
}

func newEntriesListCommand(a *App) *cobra.Command {
	var (
		limit  int
		taskID int64
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List recent entries, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q := tracking.EntryQuery{Limit: limit}
			if taskID != 0 {
				q.TaskIDs = []int64{taskID}
			}
			entries, err := a.Store.QueryEntries(cmd.Context(), q)
			if err != nil {
				return err
			}
			enriched, err := report.Enrich(cmd.Context(), entries, a.Store)
			if err != nil {
				return err
			}
			return printEntries(cmd.OutOrStdout(), enriched)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum entries to show, 0 for all")
	cmd.Flags().Int64Var(&taskID, "task", 0, "Only entries for this task ID")

	return cmd
}

func printEntries(w io.Writer, entries []report.EnrichedEntry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No entries.")
		return err
	}
	for _, e := range entries {
		start := e.StartTime.Local()
		task := e.TaskTitle
		if task == "" {
			task = fmt.Sprintf("task #%d", e.TaskID)
		}
		if e.Project != "" {
			task = e.Project + " / " + task
		}
		line := fmt.Sprintf("%s  %s  %s  %6.2fh  %s",
			e.ID, start.Format(report.DateLayout), start.Format("15:04"), report.Hours(e.Duration), task)
		if e.Description != "" {
			line += "  " + e.Description
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func newEntriesDeleteCommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:     "delete ID",
		Aliases: []string{"rm"},
		Short:   "Delete an entry by ID",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.Store.GetEntry(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := a.Store.DeleteEntry(cmd.Context(), e.ID); err != nil {
				return err
			}
			a.Log.Info().Str("entry_id", e.ID).Int64("duration", e.Duration).Msg("entry deleted")
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted entry %s (%.2fh on %s)\n",
				e.ID, report.Hours(e.Duration), e.StartTime.Local().Format(report.DateLayout))
			return nil
		},
	}
}
