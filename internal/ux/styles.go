package ux

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Styles contains the lipgloss styles used for text output
type Styles struct {
	Title   lipgloss.Style
	Label   lipgloss.Style
	Value   lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Muted   lipgloss.Style
}

// NewStyles returns styles bound to a renderer for w. Colors are dropped when
// w is not a terminal or noColor is set.
func NewStyles(w io.Writer, noColor bool) Styles {
	r := lipgloss.NewRenderer(w)
	if noColor {
		r.SetColorProfile(termenv.Ascii)
	}
	return Styles{
		Title: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63")), // Purple
		Label: r.NewStyle().
			Foreground(lipgloss.Color("99")).
			Width(12),
		Value: r.NewStyle().
			Foreground(lipgloss.Color("252")),
		Success: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("46")), // Green
		Error: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196")), // Red
		Warning: r.NewStyle().
			Foreground(lipgloss.Color("226")), // Yellow
		Muted: r.NewStyle().
			Foreground(lipgloss.Color("241")), // Gray
	}
}
