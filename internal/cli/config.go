package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sadopc/tasktime/internal/config"
	"github.com/spf13/cobra"
)

// newConfigCommand creates the config command.
func newConfigCommand(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long: `Manage the tasktime configuration file.

Settings are read from config.toml, then from environment variables
prefixed with ` + config.EnvPrefix + `_ (for example ` + config.EnvPrefix + `_DB_PATH).
Tracking preferences such as the idle timeout live in the Settings tab.`,
		// No RunE: shows subcommand list when called without arguments
	}

	cmd.AddCommand(newConfigShowCommand(a))
	cmd.AddCommand(newConfigInitCommand(a))

	return cmd
}

func configPath(a *App) (string, error) {
	if a.ConfigPath != "" {
		return a.ConfigPath, nil
	}
	dir, err := config.DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, config.FileName), nil
}

func newConfigShowCommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := configPath(a)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()

			_, _ = fmt.Fprintln(w, "[Loaded from]")
			if _, err := os.Stat(path); err == nil {
				_, _ = fmt.Fprintf(w, "- %s\n", path)
			} else {
				_, _ = fmt.Fprintf(w, "- %s (not found)\n", path)
			}
			_, _ = fmt.Fprintln(w)

			_, _ = fmt.Fprintln(w, "[Effective Config]")
			body, err := config.Template(a.Config)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(w, body)
			return err
		},
	}
}

func newConfigInitCommand(a *App) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the current settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := configPath(a)
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists, use --force to overwrite", path)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}

			body, err := config.Template(a.Config)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return fmt.Errorf("create config directory: %w", err)
			}
			if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
				return fmt.Errorf("write config: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	return cmd
}
