package ux

import (
	"strings"

	"github.com/felixgeelhaar/taskplan/internal/errors"
)

// ErrorReport is the rendered form of a failed command
type ErrorReport struct {
	Code        errors.ErrorCode `json:"code" yaml:"code"`
	Message     string           `json:"message" yaml:"message"`
	Suggestions []string         `json:"suggestions,omitempty" yaml:"suggestions,omitempty"`
	DocsURL     string           `json:"docs_url,omitempty" yaml:"docs_url,omitempty"`
}

// NewErrorReport describes err with the suggestions registered for its code
func NewErrorReport(err error) ErrorReport {
	te := errors.Describe(err)
	if te == nil {
		return ErrorReport{}
	}
	msg := te.Message
	if te.Cause != nil {
		msg += ": " + te.Cause.Error()
	}
	return ErrorReport{
		Code:        te.Code,
		Message:     msg,
		Suggestions: te.Suggestions,
		DocsURL:     te.DocsURL,
	}
}

// RenderText implements TextRenderer
func (r ErrorReport) RenderText(s Styles) string {
	var b strings.Builder
	b.WriteString(s.Error.Render("✗ " + string(r.Code)))
	b.WriteString(" ")
	b.WriteString(r.Message)

	if len(r.Suggestions) > 0 {
		b.WriteString("\n\n")
		b.WriteString(s.Warning.Render("Suggestions:"))
		for _, suggestion := range r.Suggestions {
			b.WriteString("\n  • ")
			b.WriteString(suggestion)
		}
	}
	if r.DocsURL != "" {
		b.WriteString("\n\n")
		b.WriteString(s.Muted.Render("Documentation: " + r.DocsURL))
	}
	return b.String()
}
