package graph

import (
	"gonum.org/v1/gonum/graph/multi"

	"github.com/ritzau/graph-explorer/pkg/model"
)

// Index provides adjacency lookups over a full graph. Parallel edges
// between the same node pair are preserved, so it wraps a gonum
// directed multigraph.
type Index struct {
	graph  *multi.DirectedGraph
	ids    map[string]int64
	byID   map[int64]model.Node
	nextID int64
}

// NewIndex builds an adjacency index for the given graph.
func NewIndex(g *model.FullGraph) *Index {
	idx := &Index{
		graph: multi.NewDirectedGraph(),
		ids:   make(map[string]int64),
		byID:  make(map[int64]model.Node),
	}
	if g == nil {
		return idx
	}

	for _, node := range g.Nodes {
		idx.addNode(node)
	}
	for _, edge := range g.Edges {
		from, fromOK := idx.ids[edge.Source]
		to, toOK := idx.ids[edge.Target]
		if !fromOK || !toOK {
			// Endpoints always exist in a built graph; guard anyway.
			continue
		}
		idx.graph.SetLine(idx.graph.NewLine(multi.Node(from), multi.Node(to)))
	}
	return idx
}

func (idx *Index) addNode(node model.Node) {
	if _, exists := idx.ids[node.ID]; exists {
		return
	}
	id := idx.nextID
	idx.nextID++
	idx.ids[node.ID] = id
	idx.byID[id] = node
	idx.graph.AddNode(multi.Node(id))
}

// Contains reports whether a node id is present.
func (idx *Index) Contains(nodeID string) bool {
	_, ok := idx.ids[nodeID]
	return ok
}

// HasEdge reports whether at least one edge runs from source to target.
func (idx *Index) HasEdge(source, target string) bool {
	from, fromOK := idx.ids[source]
	to, toOK := idx.ids[target]
	if !fromOK || !toOK {
		return false
	}
	return idx.graph.HasEdgeFromTo(from, to)
}

// EdgeCount returns the number of parallel edges from source to target.
func (idx *Index) EdgeCount(source, target string) int {
	from, fromOK := idx.ids[source]
	to, toOK := idx.ids[target]
	if !fromOK || !toOK {
		return 0
	}
	count := 0
	lines := idx.graph.Lines(from, to)
	for lines.Next() {
		count++
	}
	return count
}

// Neighbors returns the nodes adjacent to the given node id in either
// direction. Unknown ids yield nil.
func (idx *Index) Neighbors(nodeID string) []model.Node {
	id, ok := idx.ids[nodeID]
	if !ok {
		return nil
	}

	added := make(map[int64]bool)
	var neighbors []model.Node

	out := idx.graph.From(id)
	for out.Next() {
		nid := out.Node().ID()
		if !added[nid] {
			added[nid] = true
			neighbors = append(neighbors, idx.byID[nid])
		}
	}
	in := idx.graph.To(id)
	for in.Next() {
		nid := in.Node().ID()
		if !added[nid] {
			added[nid] = true
			neighbors = append(neighbors, idx.byID[nid])
		}
	}
	return neighbors
}

// Degree returns the number of distinct neighbors of a node.
func (idx *Index) Degree(nodeID string) int {
	return len(idx.Neighbors(nodeID))
}
