package graph

import (
	"io"
	"strings"

	"github.com/felixgeelhaar/taskplan/internal/domain"
	"github.com/felixgeelhaar/taskplan/internal/tree"
)

// WriteTree writes entries as an indented tree with box-drawing connectors.
// Nodes in opts.Selected are marked with a trailing asterisk.
func WriteTree(w io.Writer, entries []tree.Entry, opts Options) error {
	if len(entries) == 0 {
		return nil
	}

	children := make(map[domain.NodeID][]tree.Entry)
	for _, e := range entries[1:] {
		children[e.ParentID] = append(children[e.ParentID], e)
	}

	var b strings.Builder
	expanded := make(map[domain.NodeID]bool)

	label := func(e tree.Entry) string {
		s := e.ID.String() + " (" + e.Kind.String() + ")"
		if opts.Selected[e.ID] {
			s += " *"
		}
		return s
	}

	var walk func(e tree.Entry, prefix string)
	walk = func(e tree.Entry, prefix string) {
		// A shared node is listed under every parent but expanded once
		if expanded[e.ID] {
			return
		}
		expanded[e.ID] = true
		kids := children[e.ID]
		for i, c := range kids {
			connector, indent := "├── ", "│   "
			if i == len(kids)-1 {
				connector, indent = "└── ", "    "
			}
			b.WriteString(prefix + connector + label(c))
			if expanded[c.ID] && len(children[c.ID]) > 0 {
				b.WriteString(" ↑")
			}
			b.WriteString("\n")
			walk(c, prefix+indent)
		}
	}

	root := entries[0]
	b.WriteString(label(root) + "\n")
	walk(root, "")

	_, err := io.WriteString(w, b.String())
	return err
}
