package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/taskplan/internal/exitcode"
	"github.com/felixgeelhaar/taskplan/internal/explain"
	"github.com/felixgeelhaar/taskplan/internal/ux"
)

func newExplainCmd(root *rootOptions) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "explain <trace-file>",
		Short: "Explain a planning run from its trace",
		Long: `Explain reads a trace written by 'taskplan plan --trace-file' and shows,
for every decomposition, which options were accepted and why the others were
rejected. Traces holding several runs are explained for the last run.`,
		Example: `  taskplan plan -f mission.yaml --trace-file trace.jsonl
  taskplan explain trace.jsonl
  taskplan explain trace.jsonl --format markdown > explanation.md`,
		Args: cobra.ExactArgs(1),
	}
	cmd.RunE = root.instrument("explain", func(cmd *cobra.Command, args []string) error {
		events, err := explain.Load(args[0])
		if err != nil {
			return err
		}
		x, err := explain.Explain(events)
		if err != nil {
			return err
		}

		if format == "markdown" {
			_, err := fmt.Fprint(cmd.OutOrStdout(), x.Markdown())
			return err
		}
		formatter, err := ux.NewFormatter(format, &ux.FormatterOptions{Writer: cmd.OutOrStdout(), NoColor: root.noColor})
		if err != nil {
			return exitcode.Usage(err)
		}
		return formatter.Format(x)
	})
	cmd.Flags().StringVar(&format, "format", "text", "output format: text, json, yaml, markdown")
	return cmd
}
