package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/groblegark/beadviz/internal/graph"
	"github.com/groblegark/beadviz/internal/layout"
	"github.com/groblegark/beadviz/internal/model"
	"github.com/groblegark/beadviz/internal/ui"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Lay out and print the dependency graph",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		direction, _ := cmd.Flags().GetString("direction")
		spacingX, _ := cmd.Flags().GetFloat64("spacing-x")
		spacingY, _ := cmd.Flags().GetFloat64("spacing-y")

		opts := layout.Options{NodeSpacingX: spacingX, NodeSpacingY: spacingY}
		switch direction {
		case "TB":
			opts.Direction = layout.TB
		case "LR":
			opts.Direction = layout.LR
		default:
			return fmt.Errorf("direction must be TB or LR, got %q", direction)
		}

		gw := newGateway()
		issues, err := gw.GetGraph(context.Background())
		if err != nil {
			return err
		}

		graphs := graph.BuildGraphs(issues)
		sort.Slice(graphs, func(i, j int) bool {
			return graphs[i].Root.ID < graphs[j].Root.ID
		})

		if jsonOutput {
			type laidOut struct {
				Root         *model.Issue        `json:"root"`
				Nodes        []*model.LayoutNode `json:"nodes"`
				Dependencies []*model.Dependency `json:"dependencies"`
			}
			out := make([]laidOut, 0, len(graphs))
			for _, g := range graphs {
				out = append(out, laidOut{
					Root:         g.Root,
					Nodes:        layout.Layout(g.Issues, g.Dependencies, opts),
					Dependencies: g.Dependencies,
				})
			}
			return printJSON(out)
		}

		for i, g := range graphs {
			if i > 0 {
				fmt.Println()
			}
			printGraphTable(g, opts)
		}
		fmt.Printf("\n%d graphs, %d issues\n", len(graphs), len(issues))
		return nil
	},
}

// printGraphTable prints one rooted graph as layers of issue IDs.
func printGraphTable(g *model.Graph, opts layout.Options) {
	nodes := layout.Layout(g.Issues, g.Dependencies, opts)

	byLayer := map[int][]*model.LayoutNode{}
	maxLayer := 0
	for _, n := range nodes {
		byLayer[n.Layer] = append(byLayer[n.Layer], n)
		if n.Layer > maxLayer {
			maxLayer = n.Layer
		}
	}

	fmt.Printf("%s %s\n", ui.RenderAccent(g.Root.ID), g.Root.Title)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for l := 0; l <= maxLayer; l++ {
		ids := make([]string, 0, len(byLayer[l]))
		for _, n := range byLayer[l] {
			id := n.Issue.ID
			if n.Issue.Status == model.StatusClosed {
				id = ui.RenderMuted(id)
			}
			ids = append(ids, id)
		}
		fmt.Fprintf(w, "  layer %d:\t%s\n", l, strings.Join(ids, "  "))
	}
	w.Flush()
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func init() {
	graphCmd.Flags().String("direction", "TB", "layout direction (TB or LR)")
	graphCmd.Flags().Float64("spacing-x", 0, "horizontal node spacing (0 = default)")
	graphCmd.Flags().Float64("spacing-y", 0, "vertical node spacing (0 = default)")
}
