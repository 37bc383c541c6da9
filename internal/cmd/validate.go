package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/taskplan/internal/domain"
	"github.com/felixgeelhaar/taskplan/internal/exitcode"
	"github.com/felixgeelhaar/taskplan/internal/mission"
	"github.com/felixgeelhaar/taskplan/internal/resource"
	"github.com/felixgeelhaar/taskplan/internal/ux"
)

// validationReport summarizes a mission that passed every structural check
type validationReport struct {
	Mission string        `json:"mission,omitempty" yaml:"mission,omitempty"`
	Path    string        `json:"path" yaml:"path"`
	Root    domain.NodeID `json:"root" yaml:"root"`
	Tasks   int           `json:"tasks" yaml:"tasks"`
	Leaves  int           `json:"leaves" yaml:"leaves"`
	Pool    resource.Pool `json:"pool" yaml:"pool"`
	Valid   bool          `json:"valid" yaml:"valid"`
}

func (r validationReport) RenderText(s ux.Styles) string {
	var b strings.Builder
	name := r.Path
	if r.Mission != "" {
		name = r.Mission
	}
	b.WriteString(s.Success.Render("✓ mission valid: " + name))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  %s%s\n", s.Label.Render("Root"), r.Root)
	fmt.Fprintf(&b, "  %s%d (%d leaves)\n", s.Label.Render("Tasks"), r.Tasks, r.Leaves)
	for _, name := range r.Pool.Names() {
		fmt.Fprintf(&b, "  %s%d\n", s.Label.Render(name), r.Pool[name])
	}
	return b.String()
}

func newValidateCmd(root *rootOptions) *cobra.Command {
	var file, format string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a mission for structural errors without planning",
		Long: `Validate parses a mission and runs the checks a planning run performs
before searching: known node references, well-formed edges, integer pool
capacities and acyclic decomposition under the root.`,
		Args: cobra.NoArgs,
	}
	cmd.RunE = root.instrument("validate", func(cmd *cobra.Command, _ []string) error {
		path, err := missionPath(file)
		if err != nil {
			return err
		}
		formatter, err := ux.NewFormatter(format, &ux.FormatterOptions{Writer: cmd.OutOrStdout(), NoColor: root.noColor})
		if err != nil {
			return exitcode.Usage(err)
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

		report := validationReport{
			Mission: m.Name,
			Path:    path,
			Root:    m.Root,
			Pool:    m.Pool,
			Valid:   true,
		}
		seen := make(map[domain.NodeID]bool, len(entries))
		for _, e := range entries {
			if seen[e.ID] {
				continue
			}
			seen[e.ID] = true
			report.Tasks++
			if e.IsLeaf {
				report.Leaves++
			}
		}
		root.logger.Debug("mission valid", "path", path, "tasks", report.Tasks)
		return formatter.Format(report)
	})

	cmd.Flags().StringVarP(&file, "file", "f", "", "mission file (default ./mission.yaml or .taskplan/mission.yaml)")
	cmd.Flags().StringVar(&format, "format", "text", "output format: text, json, yaml")
	return cmd
}
