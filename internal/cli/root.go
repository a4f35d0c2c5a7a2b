// Package cli provides the command-line interface for tasktime.
package cli

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/sadopc/tasktime/internal/config"
	"github.com/sadopc/tasktime/internal/store"
	"github.com/sadopc/tasktime/internal/tracking"
	"github.com/sadopc/tasktime/internal/tui"
	"github.com/spf13/cobra"
)

// Command group IDs.
const (
	groupTrack  = "track"
	groupReport = "report"
	groupSetup  = "setup"
)

// App carries what commands need. main builds it once per process.
type App struct {
	Config     config.Config
	ConfigPath string
	Store      *store.Store
	Timer      *tracking.Controller
	Log        zerolog.Logger
	Now        func() time.Time
}

func (a *App) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}

// launchTUIFunc is a function variable for launching the TUI, allowing it to be mocked in tests.
var launchTUIFunc = launchTUI

func launchTUI(a *App) error {
	return tui.Run(a.Store, a.Timer, tui.Options{
		Log:       a.Log,
		ExportDir: a.Config.ExportDir,
		Now:       a.Now,
	})
}

// NewRootCommand creates the root command. Run without a subcommand it
// opens the interactive tracker.
func NewRootCommand(a *App, version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "tasktime",
		Short: "Track time against tasks and report on it",
		Long: `tasktime records the time you spend on tasks.

Run it without arguments to open the interactive tracker, where you can
start, pause and stop the timer, log time after the fact and browse
reports. The subcommands below report, export and log from the shell.`,
		Version: version,
		// SilenceUsage prevents usage from being printed on errors
		SilenceUsage: true,
		// SilenceErrors prevents Cobra from printing errors (we handle it in main)
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return launchTUIFunc(a)
		},
	}

	root.AddGroup(
		&cobra.Group{ID: groupTrack, Title: "Tracking:"},
		&cobra.Group{ID: groupReport, Title: "Reporting:"},
		&cobra.Group{ID: groupSetup, Title: "Setup:"},
	)

	for _, cmd := range []*cobra.Command{newLogCommand(a), newEntriesCommand(a), newTasksCommand(a)} {
		cmd.GroupID = groupTrack
		root.AddCommand(cmd)
	}
	for _, cmd := range []*cobra.Command{newReportCommand(a), newExportCommand(a)} {
		cmd.GroupID = groupReport
		root.AddCommand(cmd)
	}
	configCmd := newConfigCommand(a)
	configCmd.GroupID = groupSetup
	root.AddCommand(configCmd)

	return root
}
