package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/taskplan/internal/config"
	"github.com/felixgeelhaar/taskplan/internal/errors"
	"github.com/felixgeelhaar/taskplan/internal/ux"
)

func newConfigCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage taskplan configuration",
		Long: `Manage the settings taskplan reads from .taskplan/config.yaml,
~/.taskplan/config.yaml and TASKPLAN_* environment variables.`,
	}
	cmd.AddCommand(newConfigInitCmd(root), newConfigPathCmd(root))
	return cmd
}

func newConfigInitCmd(root *rootOptions) *cobra.Command {
	var (
		path  string
		force bool
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the effective configuration to a file",
		Long: `Init writes the configuration taskplan would use right now (defaults,
any config file and TASKPLAN_* variables) as YAML, ready to edit.`,
		Example: `  taskplan config init
  TASKPLAN_PLANNER_ACCOUNTING=cumulative taskplan config init --path ~/.taskplan/config.yaml`,
		Args: cobra.NoArgs,
	}
	cmd.RunE = root.instrument("config init", func(cmd *cobra.Command, _ []string) error {
		if _, err := os.Stat(path); err == nil && !force {
			return errors.New(errors.ErrCodeFileWriteFailed, fmt.Sprintf("%s already exists", path)).
				WithSuggestions("Pass --force to overwrite it")
		}
		if err := config.Save(root.cfg, path); err != nil {
			return errors.Wrap(errors.ErrCodeFileWriteFailed, "failed to write config", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ wrote %s\n", path)
		return nil
	})

	f := cmd.Flags()
	f.StringVar(&path, "path", filepath.Join(ux.DirName, "config.yaml"), "file to write")
	f.BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func newConfigPathCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "path",
		Short: "Show the config file in use",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = root.instrument("config path", func(cmd *cobra.Command, _ []string) error {
		if root.cfg.File == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "no config file; using defaults and environment")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), root.cfg.File)
		return nil
	})
	return cmd
}
