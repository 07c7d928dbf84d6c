// Package graph materializes the full graph from normalized edge
// candidates and provides adjacency lookups over it.
package graph

import (
	"strings"

	"github.com/google/uuid"

	"github.com/ritzau/graph-explorer/pkg/model"
)

// Build derives the full graph from edge candidates in a single pass.
//
// Node ids are deduplicated in first-seen order. Each distinct
// experiment tag, also in first-seen order, is assigned a palette color
// round-robin; the assignment is stable within one build. Edges are not
// deduplicated: identical (source, target, relationship, experiment)
// candidates each become a distinct edge with a fresh id.
//
// An empty candidate slice yields an empty graph, not an error.
func Build(candidates []model.EdgeCandidate) *model.FullGraph {
	g := &model.FullGraph{
		Nodes:            make([]model.Node, 0),
		Edges:            make([]model.Edge, 0, len(candidates)),
		ExperimentColors: make(map[string]string),
	}

	seen := make(map[string]bool)
	nodeOrder := make([]string, 0)

	for _, c := range candidates {
		for _, id := range [2]string{c.Source, c.Target} {
			if !seen[id] {
				seen[id] = true
				nodeOrder = append(nodeOrder, id)
			}
		}
		if _, assigned := g.ExperimentColors[c.Experiment]; !assigned {
			g.ExperimentColors[c.Experiment] = model.Palette[len(g.Experiments)%len(model.Palette)]
			g.Experiments = append(g.Experiments, c.Experiment)
		}
	}

	for _, id := range nodeOrder {
		g.Nodes = append(g.Nodes, splitID(id))
	}

	for _, c := range candidates {
		g.Edges = append(g.Edges, model.Edge{
			ID:         uuid.New().String(),
			Source:     c.Source,
			Target:     c.Target,
			Label:      c.Relationship,
			Experiment: c.Experiment,
			Color:      g.ExperimentColors[c.Experiment],
		})
	}

	return g
}

// splitID reconstructs a node from its id. Only the first separator
// splits model from label; the rest stays embedded in the label.
func splitID(id string) model.Node {
	modelName, label, _ := strings.Cut(id, model.IDSeparator)
	return model.Node{ID: id, Label: label, Model: modelName}
}
