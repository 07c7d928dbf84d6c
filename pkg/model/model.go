package model

// IDSeparator joins a model name and a node name into a node id.
// Only the first occurrence is significant when splitting an id back
// apart; separators inside the node name stay in the label.
const IDSeparator = ":"

// UndefinedExperiment is the tag assigned to rows whose experiment field
// is empty or absent. It is a valid tag, not an error marker.
const UndefinedExperiment = "undefined"

// RawRow maps a header name to the string value of one parsed CSV row.
// Rows are ephemeral: produced by the CSV reader, consumed once by the
// normalizer.
type RawRow map[string]string

// HeaderConfig names the CSV columns the dataset is read from.
type HeaderConfig struct {
	Model        string `koanf:"model" json:"model"`
	FromNode     string `koanf:"from_node" json:"fromNode"`
	Relationship string `koanf:"relationship" json:"relationship"`
	ToNode       string `koanf:"to_node" json:"toNode"`
	Experiment   string `koanf:"experiment" json:"experiment"`
}

// DefaultHeaders returns the conventional column names.
func DefaultHeaders() HeaderConfig {
	return HeaderConfig{
		Model:        "model",
		FromNode:     "from_node",
		Relationship: "relationship",
		ToNode:       "to_node",
		Experiment:   "experiment",
	}
}

// EdgeCandidate is a validated row, ready for graph construction.
// Source and Target are derived node ids.
type EdgeCandidate struct {
	Source       string
	Target       string
	Relationship string
	Experiment   string
}

// Node is a vertex of the full graph. Immutable once built; its id is
// the (model, node-name) pair serialized as "model:node-name".
type Node struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Model string `json:"model"`
}

// Edge is a directed connection between two nodes. It references nodes
// by id only; nodes and edges are joined solely through the id relation.
type Edge struct {
	ID         string `json:"id"`
	Source     string `json:"source"`
	Target     string `json:"target"`
	Label      string `json:"label"`
	Experiment string `json:"experiment"`
	Color      string `json:"color"`
}

// FullGraph is the complete, unfiltered node/edge set derived from one
// load, together with the experiment color assignment for that load.
// Experiments preserves first-seen order, which fixes the palette
// assignment and the legend ordering.
type FullGraph struct {
	Nodes            []Node            `json:"nodes"`
	Edges            []Edge            `json:"edges"`
	ExperimentColors map[string]string `json:"experimentColorMap"`
	Experiments      []string          `json:"experiments"`
}

// IsEmpty reports whether the graph has no nodes and no edges.
func (g *FullGraph) IsEmpty() bool {
	return g == nil || (len(g.Nodes) == 0 && len(g.Edges) == 0)
}

// FilteredGraph is the subgraph induced by the current visibility
// selection. The rendering layer binds to the "links" field name.
type FilteredGraph struct {
	Nodes []Node `json:"nodes"`
	Links []Edge `json:"links"`
}

// Selection maps an experiment tag to its visibility. Absent entries
// hide the experiment: visibility is explicit opt-in.
type Selection map[string]bool

// Clone returns an independent copy of the selection.
func (s Selection) Clone() Selection {
	out := make(Selection, len(s))
	for tag, visible := range s {
		out[tag] = visible
	}
	return out
}
