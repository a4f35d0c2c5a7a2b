package cli

import (
	"errors"
	"fmt"

	"github.com/sadopc/tasktime/internal/tracking"
	"github.com/spf13/cobra"
)

func newLogCommand(a *App) *cobra.Command {
	var m tracking.ManualEntry

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Log time worked without the timer",
		Long: `Log records time spent on a task after the fact. The entry ends now
and starts the logged duration earlier.

Examples:
  tasktime log --task 3 --hours 1 --minutes 30
  tasktime log --task 3 --minutes 45 --desc "code review"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("task") {
				return errors.New("--task is required, see 'tasktime tasks' for IDs")
			}
			info, err := a.Store.LookupTask(cmd.Context(), m.TaskID)
			if err != nil {
				return err
			}

			e, err := a.Timer.LogManual(cmd.Context(), m)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Logged %.2fh on %s / %s (%s)\n",
				float64(e.Duration)/3600, info.Project, info.Title, e.ID)
			return nil
		},
	}

	cmd.Flags().Int64VarP(&m.TaskID, "task", "t", 0, "Task ID")
	cmd.Flags().IntVarP(&m.Hours, "hours", "H", 0, "Whole hours")
	cmd.Flags().IntVarP(&m.Minutes, "minutes", "m", 0, "Minutes (0-59)")
	cmd.Flags().StringVarP(&m.Description, "desc", "d", "", "What you worked on")

	return cmd
}
