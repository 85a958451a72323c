package model

// Graph is one rooted view over a shared issue set. A repository with
// multiple roots yields one Graph per root; Issues, Dependencies and
// IssueMap are shared across all of them — only Root varies, so a renderer
// may pick any entry point without re-querying.
type Graph struct {
	Root         *Issue            `json:"root"`
	Issues       []*Issue          `json:"issues"`
	Dependencies []*Dependency     `json:"dependencies"`
	IssueMap     map[string]*Issue `json:"issue_map"`
}

// LayoutNode is a graph node with assigned 2-D coordinates.
// Layer 0 is the root layer.
type LayoutNode struct {
	Issue *Issue  `json:"issue"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Layer int     `json:"layer"`
}
