package ux

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/felixgeelhaar/taskplan/internal/domain"
	"github.com/felixgeelhaar/taskplan/internal/planner"
	"github.com/felixgeelhaar/taskplan/internal/resource"
)

// PlanReport is the output of a successful planning run
type PlanReport struct {
	Mission string `json:"mission,omitempty" yaml:"mission,omitempty"`

	planner.Result `yaml:",inline"`

	// Steps are the atomic tasks of the plan in commit order
	Steps []domain.NodeID `json:"steps" yaml:"steps"`
	Pool  resource.Pool   `json:"pool" yaml:"pool"`
}

// RenderText implements TextRenderer
func (p PlanReport) RenderText(s Styles) string {
	var b strings.Builder

	title := "Plan"
	if p.Mission != "" {
		title += " for " + p.Mission
	}
	b.WriteString(s.Title.Render(title))
	b.WriteString("\n\n")

	row := func(label, value string) {
		b.WriteString(s.Label.Render(label))
		b.WriteString(s.Value.Render(value))
		b.WriteString("\n")
	}
	row("Root", p.Root.String())
	row("Cost", fmt.Sprintf("%g", p.Cost))
	row("Risk", fmt.Sprintf("%.2f", p.RiskFactor))
	row("Expansions", fmt.Sprintf("%d", p.Expansions))
	duration := p.Duration.Round(time.Microsecond).String()
	if p.Cached {
		duration += " (cached)"
	}
	row("Duration", duration)

	b.WriteString("\n")
	b.WriteString(s.Title.Render("Steps"))
	b.WriteString("\n")
	for i, id := range p.Steps {
		fmt.Fprintf(&b, "  %s %s\n", s.Muted.Render(fmt.Sprintf("%2d.", i+1)), id)
	}

	if len(p.ResourceUsage) > 0 {
		b.WriteString("\n")
		b.WriteString(s.Title.Render("Resources"))
		b.WriteString("\n")
		names := make([]string, 0, len(p.ResourceUsage))
		for name := range p.ResourceUsage {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			used := p.ResourceUsage[name]
			line := fmt.Sprintf("%d", used)
			if capacity, ok := p.Pool[name]; ok {
				line = fmt.Sprintf("%d / %d", used, capacity)
			}
			b.WriteString("  ")
			b.WriteString(s.Label.Render(name))
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(s.Success.Render("✓ feasible plan found"))
	return b.String()
}
