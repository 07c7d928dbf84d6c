// Package view derives the visible subgraph from a full graph and a
// visibility selection.
package view

import (
	"github.com/ritzau/graph-explorer/pkg/model"
)

// Filter computes the subgraph visible under the given selection.
//
// An edge is included iff its experiment is explicitly selected
// (selection[tag] == true); absent or false entries hide it. A node is
// included iff it is incident to at least one included edge, so nodes
// with no visible edge never appear, even if present in the full graph.
//
// Filter is a pure function of its two inputs: it holds no state and
// recomputes the result fully on every call. Node and link order follow
// the full graph's order, so identical inputs produce identical output.
func Filter(g *model.FullGraph, selection model.Selection) *model.FilteredGraph {
	out := &model.FilteredGraph{
		Nodes: make([]model.Node, 0),
		Links: make([]model.Edge, 0),
	}
	if g == nil {
		return out
	}

	incident := make(map[string]bool)
	for _, edge := range g.Edges {
		if !selection[edge.Experiment] {
			continue
		}
		out.Links = append(out.Links, edge)
		incident[edge.Source] = true
		incident[edge.Target] = true
	}

	for _, node := range g.Nodes {
		if incident[node.ID] {
			out.Nodes = append(out.Nodes, node)
		}
	}
	return out
}

// InitialSelection marks every experiment of a freshly loaded graph
// visible. Tags not present in the graph get no entry.
func InitialSelection(g *model.FullGraph) model.Selection {
	selection := make(model.Selection)
	if g == nil {
		return selection
	}
	for _, tag := range g.Experiments {
		selection[tag] = true
	}
	return selection
}

// Toggle returns a copy of the selection with the named experiment's
// visibility inverted. Tags without an entry are left untouched:
// selection keys are created only when a graph is loaded, so toggling
// an unknown tag is a no-op rather than silently minting a new entry.
func Toggle(selection model.Selection, tag string) model.Selection {
	out := selection.Clone()
	if visible, ok := out[tag]; ok {
		out[tag] = !visible
	}
	return out
}
