package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/groblegark/beadviz/internal/graph"
	"github.com/groblegark/beadviz/internal/layout"
	"github.com/groblegark/beadviz/internal/model"
)

// IssueLister is the slice of the tracker gateway the exporter needs.
type IssueLister interface {
	ListIssues(ctx context.Context) ([]*model.Issue, error)
}

// header is the first JSONL record written by ExportJSONL.
type header struct {
	Version    string    `json:"version"`
	Type       string    `json:"type"`
	Timestamp  time.Time `json:"timestamp"`
	IssueCount int       `json:"issue_count"`
	GraphCount int       `json:"graph_count"`
}

// record wraps a single JSONL line with a type discriminator.
type record struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// graphData is one rooted graph with its computed layout.
type graphData struct {
	Root         *model.Issue        `json:"root"`
	Nodes        []*model.LayoutNode `json:"nodes"`
	Dependencies []*model.Dependency `json:"dependencies"`
}

// ExportJSONL writes every rooted graph, laid out top-to-bottom, as JSONL
// to w. Graphs are sorted by root ID so repeated exports of the same issue
// set produce identical output.
func ExportJSONL(ctx context.Context, lister IssueLister, w io.Writer) error {
	issues, err := lister.ListIssues(ctx)
	if err != nil {
		return fmt.Errorf("list issues: %w", err)
	}

	graphs := graph.BuildGraphs(issues)
	sort.Slice(graphs, func(i, j int) bool {
		return graphs[i].Root.ID < graphs[j].Root.ID
	})

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(header{
		Version:    "1",
		Type:       "header",
		Timestamp:  time.Now().UTC(),
		IssueCount: len(issues),
		GraphCount: len(graphs),
	}); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}

	for _, g := range graphs {
		nodes := layout.Layout(g.Issues, g.Dependencies, layout.Options{Direction: layout.TB})
		if err := enc.Encode(record{Type: "graph", Data: graphData{
			Root:         g.Root,
			Nodes:        nodes,
			Dependencies: g.Dependencies,
		}}); err != nil {
			return fmt.Errorf("encode graph %s: %w", g.Root.ID, err)
		}
	}

	return nil
}
