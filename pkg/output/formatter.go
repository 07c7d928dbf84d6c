package output

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/ritzau/graph-explorer/pkg/model"
)

// PrintGraphReport prints a nicely formatted summary of a loaded graph
// and its current visibility selection.
func PrintGraphReport(source string, g *model.FullGraph, selection model.Selection) {
	// Color definitions
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	cyan := color.New(color.FgCyan)

	// Header
	bold.Println("Graph Explorer - Dataset Report")
	bold.Println("===============================")
	fmt.Printf("Source: %s\n", source)

	if g == nil || g.IsEmpty() {
		yellow.Println("No graph data (dataset had no usable rows)")
		return
	}

	fmt.Printf("Nodes: %d\n", len(g.Nodes))
	fmt.Printf("Edges: %d\n", len(g.Edges))
	fmt.Println()

	// Experiment legend in first-seen order
	bold.Printf("Experiments (%d):\n", len(g.Experiments))
	visible := 0
	for _, tag := range g.Experiments {
		marker := " "
		if selection[tag] {
			marker = "*"
			visible++
		}
		cyan.Printf("  [%s] %s", marker, tag)
		fmt.Printf(" (%s)\n", g.ExperimentColors[tag])
	}
	fmt.Println()

	if visible == len(g.Experiments) {
		green.Printf("Summary: all %d experiments visible\n", visible)
	} else {
		yellow.Printf("Summary: %d/%d experiments visible\n", visible, len(g.Experiments))
	}
}
