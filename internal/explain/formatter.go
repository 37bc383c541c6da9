package explain

import (
	"fmt"
	"sort"
	"strings"

	"github.com/felixgeelhaar/taskplan/internal/ux"
)

// RenderText implements ux.TextRenderer
func (x *Explanation) RenderText(s ux.Styles) string {
	var b strings.Builder

	b.WriteString(s.Title.Render("Search Explanation"))
	b.WriteString("\n\n")
	row := func(label, value string) {
		b.WriteString(s.Label.Render(label))
		b.WriteString(s.Value.Render(value))
		b.WriteString("\n")
	}
	row("Run", x.RunID)
	row("Root", x.Root)
	row("Outcome", x.Outcome)
	if x.Outcome == OutcomePlanned {
		row("Plan", strings.Join(x.Plan, " → "))
		row("Cost", fmt.Sprintf("%g", x.Cost))
		row("Risk", fmt.Sprintf("%.2f", x.Risk))
	} else if x.Reason != "" {
		row("Reason", x.Reason)
	}

	b.WriteString("\n")
	b.WriteString(s.Title.Render("Decisions"))
	b.WriteString("\n")
	for i, d := range x.Steps {
		fmt.Fprintf(&b, "%s %s %s\n",
			s.Muted.Render(fmt.Sprintf("%2d.", i+1)),
			d.Node,
			s.Muted.Render(fmt.Sprintf("(partial cost %g, risk %.2f)", d.Cost, d.Risk)))
		for _, o := range d.Accepted {
			fmt.Fprintf(&b, "    %s [%s] cost %g, risk %.2f\n",
				s.Success.Render("✓"), strings.Join(o.Nodes, ", "), o.Cost, o.Risk)
		}
		for _, o := range d.Rejected {
			fmt.Fprintf(&b, "    %s [%s] %s\n",
				s.Error.Render("✗"), strings.Join(o.Nodes, ", "), o.Reason)
		}
	}

	b.WriteString("\n")
	b.WriteString(s.Title.Render("Summary"))
	b.WriteString("\n")
	row("Decomposed", fmt.Sprintf("%d", x.Summary.Decompositions))
	row("Accepted", fmt.Sprintf("%d", x.Summary.Accepted))
	for _, rule := range sortedRules(x.Summary.Rejected) {
		row("Rejected", fmt.Sprintf("%d %s", x.Summary.Rejected[rule], rule))
	}
	row("Pruned", fmt.Sprintf("%d", x.Summary.Pruned))
	row("Plans found", fmt.Sprintf("%d", x.Summary.Improvements))
	return b.String()
}

// Markdown formats an explanation as Markdown
func (x *Explanation) Markdown() string {
	var b strings.Builder

	b.WriteString("# Search Explanation\n\n")
	fmt.Fprintf(&b, "**Run:** %s  \n", x.RunID)
	fmt.Fprintf(&b, "**Root:** %s  \n", x.Root)
	fmt.Fprintf(&b, "**Outcome:** %s  \n", x.Outcome)
	if x.Outcome == OutcomePlanned {
		fmt.Fprintf(&b, "**Plan:** %s  \n", strings.Join(x.Plan, " → "))
		fmt.Fprintf(&b, "**Cost:** %g  \n", x.Cost)
		fmt.Fprintf(&b, "**Risk:** %.2f  \n", x.Risk)
	} else if x.Reason != "" {
		fmt.Fprintf(&b, "**Reason:** %s  \n", x.Reason)
	}
	b.WriteString("\n## Decisions\n\n")

	for i, d := range x.Steps {
		fmt.Fprintf(&b, "### %d. %s\n\n", i+1, d.Node)
		if len(d.Accepted)+len(d.Rejected) == 0 {
			b.WriteString("No options.\n\n")
			continue
		}
		b.WriteString("| Option | Result | Detail |\n")
		b.WriteString("|--------|--------|--------|\n")
		for _, o := range d.Accepted {
			fmt.Fprintf(&b, "| %s | accepted | cost %g, risk %.2f |\n", strings.Join(o.Nodes, ", "), o.Cost, o.Risk)
		}
		for _, o := range d.Rejected {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", strings.Join(o.Nodes, ", "), o.Rule, o.Reason)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "- **Decompositions:** %d\n", x.Summary.Decompositions)
	fmt.Fprintf(&b, "- **Accepted options:** %d\n", x.Summary.Accepted)
	for _, rule := range sortedRules(x.Summary.Rejected) {
		fmt.Fprintf(&b, "- **Rejected (%s):** %d\n", rule, x.Summary.Rejected[rule])
	}
	fmt.Fprintf(&b, "- **Pruned:** %d\n", x.Summary.Pruned)
	fmt.Fprintf(&b, "- **Plans found:** %d\n", x.Summary.Improvements)
	return b.String()
}

func sortedRules(m map[string]int) []string {
	rules := make([]string, 0, len(m))
	for r := range m {
		rules = append(rules, r)
	}
	sort.Strings(rules)
	return rules
}
