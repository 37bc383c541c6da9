package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/taskplan/internal/exitcode"
	"github.com/felixgeelhaar/taskplan/internal/graph"
	"github.com/felixgeelhaar/taskplan/internal/mission"
)

func newGraphCmd(root *rootOptions) *cobra.Command {
	o := &planOptions{rootOptions: root}
	var highlight bool
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Render a mission's task tree",
		Long: `Graph prints the task tree under the mission root, as Graphviz DOT or
as an indented tree. With --plan the selected plan is highlighted.`,
		Example: `  taskplan graph -f mission.yaml --format dot | dot -Tsvg > mission.svg
  taskplan graph -f mission.yaml --format tree --plan`,
		Args: cobra.NoArgs,
	}
	cmd.RunE = root.instrument("graph", func(cmd *cobra.Command, _ []string) error {
		write := graph.WriteDOT
		switch o.format {
		case "dot":
		case "tree":
			write = graph.WriteTree
		default:
			return exitcode.Usage(fmt.Errorf("unknown graph format: %s (supported: dot, tree)", o.format))
		}

		path, err := missionPath(o.file)
		if err != nil {
			return err
		}
		m, err := mission.Load(path)
		if err != nil {
			return err
		}
		if err := m.Validate(); err != nil {
			return err
		}
		entries, err := m.Tree.Enumerate(m.Root)
		if err != nil {
			return err
		}

		opts := graph.Options{Name: m.Name}
		if highlight {
			report, err := o.planMission(cmd, m, nil)
			if err != nil {
				return err
			}
			opts.Selected = graph.Select(append(report.Sequence, m.Root))
		}
		return write(cmd.OutOrStdout(), entries, opts)
	})

	f := cmd.Flags()
	f.StringVarP(&o.file, "file", "f", "", "mission file (default ./mission.yaml or .taskplan/mission.yaml)")
	f.StringVar(&o.format, "format", "dot", "graph format: dot, tree")
	f.BoolVar(&highlight, "plan", false, "plan the mission and highlight the selected nodes")
	f.Float64Var(&o.riskCeiling, "risk-ceiling", 0, "risk ceiling used with --plan")
	f.StringVar(&o.accounting, "accounting", "", "resource accounting used with --plan")
	return cmd
}
