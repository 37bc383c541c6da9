// Package graph renders the enumerated view of a task tree as Graphviz DOT or
// as an indented text tree.
package graph

import (
	"io"
	"strconv"

	"github.com/emicklei/dot"

	"github.com/felixgeelhaar/taskplan/internal/domain"
	"github.com/felixgeelhaar/taskplan/internal/tree"
)

// Options control rendering
type Options struct {
	// Name is the DOT graph identifier
	Name string
	// Selected nodes and the edges between them are highlighted
	Selected map[domain.NodeID]bool
}

// Select returns a Selected set from a plan sequence
func Select(ids []domain.NodeID) map[domain.NodeID]bool {
	out := make(map[domain.NodeID]bool, len(ids)+1)
	for _, id := range ids {
		out[id] = true
	}
	return out
}

// Build returns entries as a directed graph. Each node is declared once;
// shared nodes keep one edge per parent.
func Build(entries []tree.Entry, opts Options) *dot.Graph {
	name := opts.Name
	if name == "" {
		name = "mission"
	}

	g := dot.NewGraph(dot.Directed)
	g.ID(strconv.Quote(name))
	g.Attr("rankdir", "TB")

	nodes := make(map[domain.NodeID]dot.Node, len(entries))
	for _, e := range entries {
		if _, ok := nodes[e.ID]; ok {
			continue
		}
		n := g.Node(e.ID.String()).
			Label(e.ID.String() + "\n" + e.Kind.String()).
			Attr("fontname", "Helvetica")
		styleNode(n, e, opts.Selected[e.ID])
		nodes[e.ID] = n
	}

	for _, e := range entries {
		if e.ParentID == "" {
			continue
		}
		edge := g.Edge(nodes[e.ParentID], nodes[e.ID])
		if opts.Selected[e.ParentID] && opts.Selected[e.ID] {
			edge.Attr("color", "red").Attr("penwidth", "2")
		}
	}
	return g
}

// WriteDOT writes entries as Graphviz DOT
func WriteDOT(w io.Writer, entries []tree.Entry, opts Options) error {
	_, err := io.WriteString(w, Build(entries, opts).String())
	return err
}

func styleNode(n dot.Node, e tree.Entry, selected bool) {
	switch {
	case e.IsLeaf:
		n.Attr("shape", "ellipse").Attr("style", "filled").Attr("fillcolor", "lightgrey")
	case e.Kind == domain.KindAnd:
		n.Attr("shape", "box")
	case e.Kind == domain.KindOr:
		n.Attr("shape", "diamond")
	}
	if selected {
		n.Attr("color", "red").Attr("penwidth", "2")
	}
}
