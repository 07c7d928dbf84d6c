// Package pipeline sequences the load path (fetch -> parse -> normalize
// -> build) and owns the loaded graph and visibility selection.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/ritzau/graph-explorer/pkg/csvio"
	"github.com/ritzau/graph-explorer/pkg/fetch"
	"github.com/ritzau/graph-explorer/pkg/graph"
	"github.com/ritzau/graph-explorer/pkg/logging"
	"github.com/ritzau/graph-explorer/pkg/model"
	"github.com/ritzau/graph-explorer/pkg/normalize"
	"github.com/ritzau/graph-explorer/pkg/pubsub"
	"github.com/ritzau/graph-explorer/pkg/view"
)

// State identifies whether a graph has been loaded.
type State int

const (
	StateEmpty State = iota
	StateLoaded
)

func (s State) String() string {
	if s == StateLoaded {
		return "loaded"
	}
	return "empty"
}

// Pipeline is the orchestrator. The full graph is immutable once
// committed; only the selection changes between loads, and every change
// produces a new selection value. Loads carry a generation token so a
// stale, late-arriving load never overwrites a newer one.
type Pipeline struct {
	headers   model.HeaderConfig
	delimiter rune
	publisher pubsub.Publisher // optional

	mu         sync.RWMutex
	generation uint64
	graph      *model.FullGraph
	index      *graph.Index
	selection  model.Selection
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithPublisher attaches a publisher for load and view events.
func WithPublisher(p pubsub.Publisher) Option {
	return func(pl *Pipeline) { pl.publisher = p }
}

// WithDelimiter overrides the CSV field delimiter.
func WithDelimiter(d rune) Option {
	return func(pl *Pipeline) { pl.delimiter = d }
}

// New creates a pipeline with the given header configuration.
func New(headers model.HeaderConfig, opts ...Option) *Pipeline {
	p := &Pipeline{
		headers:   headers,
		delimiter: csvio.DefaultDelimiter,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Load fetches, parses and transforms the source, then commits the new
// graph with every experiment initially visible. On any failure the
// prior state is left untouched. Row-level problems are not failures: a
// dataset whose every row is invalid loads as a valid empty graph.
func (p *Pipeline) Load(ctx context.Context, source string) error {
	p.mu.Lock()
	p.generation++
	gen := p.generation
	p.mu.Unlock()

	p.publishStatus("loading", "Loading dataset...", source)

	data, err := fetch.Fetch(ctx, source)
	if err != nil {
		p.publishStatusIfCurrent(gen, "error", err.Error(), source)
		return err
	}

	rows, err := csvio.ReadRows(bytes.NewReader(data), p.delimiter)
	if err != nil {
		p.publishStatusIfCurrent(gen, "error", err.Error(), source)
		return fmt.Errorf("parsing %s: %w", source, err)
	}

	candidates := normalize.Rows(rows, p.headers)
	g := graph.Build(candidates)
	selection := view.InitialSelection(g)
	idx := graph.NewIndex(g)

	p.mu.Lock()
	if gen != p.generation {
		p.mu.Unlock()
		logging.Debug("discarding superseded load", "source", source)
		return nil
	}
	p.graph = g
	p.index = idx
	p.selection = selection
	p.mu.Unlock()

	logging.Info("dataset loaded",
		"source", source,
		"nodes", len(g.Nodes),
		"edges", len(g.Edges),
		"experiments", len(g.Experiments),
	)
	p.publishStatus("ready", "Dataset loaded", source)
	p.publishView("loaded")
	return nil
}

// Toggle inverts the visibility of the named experiment and returns the
// resulting selection. Toggling when no graph is loaded, or toggling a
// tag the loaded graph does not know, changes nothing.
func (p *Pipeline) Toggle(tag string) model.Selection {
	p.mu.Lock()
	if p.graph == nil {
		p.mu.Unlock()
		return nil
	}
	p.selection = view.Toggle(p.selection, tag)
	selection := p.selection
	p.mu.Unlock()

	p.publishView("toggled")
	return selection
}

// State reports whether a graph is loaded.
func (p *Pipeline) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.graph == nil {
		return StateEmpty
	}
	return StateLoaded
}

// Graph returns the current full graph, or nil before the first load.
func (p *Pipeline) Graph() *model.FullGraph {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.graph
}

// Selection returns the current visibility selection.
func (p *Pipeline) Selection() model.Selection {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.selection
}

// View derives the currently visible subgraph. Before the first load it
// is empty, just like a fully toggled-off selection; callers that need
// to tell the two apart check State.
func (p *Pipeline) View() *model.FilteredGraph {
	p.mu.RLock()
	g, selection := p.graph, p.selection
	p.mu.RUnlock()
	return view.Filter(g, selection)
}

// Neighbors returns the nodes adjacent to the given node in the full
// graph, in either edge direction.
func (p *Pipeline) Neighbors(nodeID string) []model.Node {
	p.mu.RLock()
	idx := p.index
	p.mu.RUnlock()
	if idx == nil {
		return nil
	}
	return idx.Neighbors(nodeID)
}

// publishStatusIfCurrent drops terminal status events from superseded
// loads. A stale failure must not become the replayed last event while
// a newer load holds a healthy graph.
func (p *Pipeline) publishStatusIfCurrent(gen uint64, state, message, source string) {
	p.mu.RLock()
	current := gen == p.generation
	p.mu.RUnlock()

	if current {
		p.publishStatus(state, message, source)
	}
}

func (p *Pipeline) publishStatus(state, message, source string) {
	if p.publisher == nil {
		return
	}
	err := p.publisher.Publish(pubsub.TopicLoadStatus, state, pubsub.LoadStatus{
		State:   state,
		Message: message,
		Source:  source,
	})
	if err != nil {
		logging.Warn("publishing load status", "error", err)
	}
}

func (p *Pipeline) publishView(eventType string) {
	if p.publisher == nil {
		return
	}
	v := p.View()
	g := p.Graph()
	err := p.publisher.Publish(pubsub.TopicView, eventType, pubsub.ViewSummary{
		Nodes:       len(v.Nodes),
		Links:       len(v.Links),
		Experiments: len(g.Experiments),
		Loaded:      true,
	})
	if err != nil {
		logging.Warn("publishing view summary", "error", err)
	}
}
