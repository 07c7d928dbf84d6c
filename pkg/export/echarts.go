// Package export renders the currently visible subgraph as a
// self-contained HTML page with a force-directed layout.
package export

import (
	"fmt"
	"io"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/ritzau/graph-explorer/pkg/model"
)

// Render writes an HTML force graph of the filtered view. Nodes take
// the color of the first visible edge touching them, so experiment
// groupings stay recognizable in the export.
func Render(w io.Writer, filtered *model.FilteredGraph, title string) error {
	nodeColor := make(map[string]string, len(filtered.Nodes))
	links := make([]opts.GraphLink, 0, len(filtered.Links))
	for _, edge := range filtered.Links {
		if _, ok := nodeColor[edge.Source]; !ok {
			nodeColor[edge.Source] = edge.Color
		}
		if _, ok := nodeColor[edge.Target]; !ok {
			nodeColor[edge.Target] = edge.Color
		}
		links = append(links, opts.GraphLink{
			Source: edge.Source,
			Target: edge.Target,
		})
	}

	nodes := make([]opts.GraphNode, 0, len(filtered.Nodes))
	for _, node := range filtered.Nodes {
		nodes = append(nodes, opts.GraphNode{
			Name:      node.ID,
			ItemStyle: &opts.ItemStyle{Color: nodeColor[node.ID]},
		})
	}

	graph := charts.NewGraph()
	graph.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: title,
			Height:    "100vh",
			Width:     "100vw",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(false),
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show: opts.Bool(true),
		}),
	)
	graph.AddSeries(
		"graph",
		nodes,
		links,
		charts.WithGraphChartOpts(
			opts.GraphChart{
				Draggable: opts.Bool(true),
				Roam:      opts.Bool(true),
				Force:     &opts.GraphForce{Repulsion: 400},
			},
		),
		charts.WithLabelOpts(opts.Label{
			Show:     opts.Bool(true),
			Color:    "black",
			Position: "top",
		}),
	)

	page := components.NewPage()
	page.AddCharts(graph)
	return page.Render(w)
}

// RenderToFile writes the export to the named file.
func RenderToFile(filename string, filtered *model.FilteredGraph, title string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("creating %s: %w", filename, err)
	}
	defer f.Close()

	return Render(f, filtered, title)
}
