package server

import (
	"net/http"

	"github.com/groblegark/beadviz/internal/graph"
	"github.com/groblegark/beadviz/internal/layout"
	"github.com/groblegark/beadviz/internal/model"
)

// graphView is one rooted graph with its computed layout, as served over HTTP.
type graphView struct {
	Root         *model.Issue        `json:"root"`
	Nodes        []*model.LayoutNode `json:"nodes"`
	Dependencies []*model.Dependency `json:"dependencies"`
}

// handleGetGraph handles GET /v1/graph.
// Returns one laid-out graph per root. The optional direction query param
// selects the primary axis ("TB" default, "LR" for left-to-right).
func (s *VizServer) handleGetGraph(w http.ResponseWriter, r *http.Request) {
	dir := layout.TB
	switch r.URL.Query().Get("direction") {
	case "", "TB":
	case "LR":
		dir = layout.LR
	default:
		writeError(w, http.StatusBadRequest, "direction must be TB or LR")
		return
	}

	issues, err := s.tracker.GetGraph(r.Context())
	if err != nil {
		writeTrackerError(w, err)
		return
	}

	graphs := graph.BuildGraphs(issues)
	views := make([]graphView, 0, len(graphs))
	for _, g := range graphs {
		views = append(views, graphView{
			Root:         g.Root,
			Nodes:        layout.Layout(g.Issues, g.Dependencies, layout.Options{Direction: dir}),
			Dependencies: g.Dependencies,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"graphs": views,
		"total":  len(views),
	})
}
