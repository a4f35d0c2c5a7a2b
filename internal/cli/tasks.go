package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTasksCommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tasks",
		Short: "List active tasks and their IDs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			projects, err := a.Store.ListProjects(false)
			if err != nil {
				return err
			}
			names := make(map[int64]string, len(projects))
			for _, p := range projects {
				names[p.ID] = p.Name
			}

			tasks, err := a.Store.ListAllTasks()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(tasks) == 0 {
				_, _ = fmt.Fprintln(w, "No tasks yet. Create them in the interactive tracker.")
				return nil
			}
			for _, t := range tasks {
				assignee := t.Assignee
				if assignee == "" {
					assignee = "-"
				}
				_, _ = fmt.Fprintf(w, "%4d  %-20s %-30s %-12s %-7s %s\n",
					t.ID, names[t.ProjectID], t.Title, assignee, t.Priority, t.Status)
			}
			return nil
		},
	}
}
