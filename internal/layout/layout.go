// Package layout assigns 2-D coordinates to dependency-graph nodes using
// layered (hierarchical) placement: nodes are binned into layers by longest
// path from a source, then ordered within each layer by the median position
// of their parents to reduce edge crossings.
//
// Layout is a pure function: deterministic for a given input, total over
// malformed input (unknown edge endpoints are ignored, cycles are handled
// by dropping back-edges during layering), and never returns an error.
package layout

import (
	"sort"

	"github.com/groblegark/beadviz/internal/model"
)

// Direction selects the primary layout axis.
type Direction string

const (
	// TB lays layers out top-to-bottom: layer index grows along +y.
	TB Direction = "TB"
	// LR lays layers out left-to-right: layer index grows along +x.
	LR Direction = "LR"
)

// Default geometry applied when an Options field is zero.
const (
	DefaultNodeWidth    = 180.0
	DefaultNodeHeight   = 60.0
	DefaultNodeSpacingX = 40.0
	DefaultNodeSpacingY = 80.0
)

// Options configures node geometry and spacing. Zero values take defaults.
type Options struct {
	Direction    Direction
	NodeSpacingX float64
	NodeSpacingY float64
	NodeWidth    float64
	NodeHeight   float64
}

func (o Options) withDefaults() Options {
	if o.Direction != LR {
		o.Direction = TB
	}
	if o.NodeSpacingX <= 0 {
		o.NodeSpacingX = DefaultNodeSpacingX
	}
	if o.NodeSpacingY <= 0 {
		o.NodeSpacingY = DefaultNodeSpacingY
	}
	if o.NodeWidth <= 0 {
		o.NodeWidth = DefaultNodeWidth
	}
	if o.NodeHeight <= 0 {
		o.NodeHeight = DefaultNodeHeight
	}
	return o
}

// Layout positions every input node exactly once. Edges run from blocker
// (parent) to blocked issue (child); for any edge in the acyclic portion of
// the graph the child's primary-axis coordinate strictly exceeds the
// parent's. Isolated nodes land on layer 0 alongside the roots.
func Layout(nodes []*model.Issue, edges []*model.Dependency, opts Options) []*model.LayoutNode {
	opts = opts.withDefaults()
	if len(nodes) == 0 {
		return []*model.LayoutNode{}
	}

	ord := make(map[string]int, len(nodes))
	for i, n := range nodes {
		if _, dup := ord[n.ID]; !dup {
			ord[n.ID] = i
		}
	}

	children, parents := adjacency(nodes, edges, ord)
	layers := assignLayers(nodes, children)

	// Bin nodes by layer, preserving input order within each bin.
	maxLayer := 0
	for _, l := range layers {
		if l > maxLayer {
			maxLayer = l
		}
	}
	bins := make([][]*model.Issue, maxLayer+1)
	for _, n := range nodes {
		l := layers[n.ID]
		bins[l] = append(bins[l], n)
	}

	// Order each layer by the median position of parents in the previous
	// layer; nodes without such parents keep their input-order slot.
	pos := make(map[string]int, len(nodes))
	for i, n := range bins[0] {
		pos[n.ID] = i
	}
	for l := 1; l <= maxLayer; l++ {
		bin := bins[l]
		keys := make([]float64, len(bin))
		for i, n := range bin {
			keys[i] = float64(i)
			var parentPos []float64
			for _, p := range parents[n.ID] {
				if layers[p] == l-1 {
					parentPos = append(parentPos, float64(pos[p]))
				}
			}
			if len(parentPos) > 0 {
				keys[i] = median(parentPos)
			}
		}
		idx := make([]int, len(bin))
		for i := range idx {
			idx[i] = i
		}
		sort.SliceStable(idx, func(a, b int) bool { return keys[idx[a]] < keys[idx[b]] })
		ordered := make([]*model.Issue, len(bin))
		for i, j := range idx {
			ordered[i] = bin[j]
		}
		bins[l] = ordered
		for i, n := range ordered {
			pos[n.ID] = i
		}
	}

	primaryStep := opts.NodeHeight + opts.NodeSpacingY
	secondaryStep := opts.NodeWidth + opts.NodeSpacingX
	if opts.Direction == LR {
		primaryStep = opts.NodeWidth + opts.NodeSpacingX
		secondaryStep = opts.NodeHeight + opts.NodeSpacingY
	}

	out := make([]*model.LayoutNode, 0, len(nodes))
	for l, bin := range bins {
		primary := float64(l) * primaryStep
		center := float64(len(bin)-1) / 2
		for i, n := range bin {
			secondary := (float64(i) - center) * secondaryStep
			node := &model.LayoutNode{Issue: n, Layer: l}
			if opts.Direction == LR {
				node.X, node.Y = primary, secondary
			} else {
				node.X, node.Y = secondary, primary
			}
			out = append(out, node)
		}
	}
	return out
}

// adjacency builds parent→children and child→parents maps over edges whose
// endpoints both exist in the node set, deduplicated.
func adjacency(nodes []*model.Issue, edges []*model.Dependency, ord map[string]int) (children, parents map[string][]string) {
	children = make(map[string][]string, len(nodes))
	parents = make(map[string][]string, len(nodes))
	seen := make(map[[2]string]struct{}, len(edges))
	for _, e := range edges {
		parent, child := e.DependsOnID, e.IssueID
		if _, ok := ord[parent]; !ok {
			continue
		}
		if _, ok := ord[child]; !ok {
			continue
		}
		if parent == child {
			continue
		}
		key := [2]string{parent, child}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		children[parent] = append(children[parent], child)
		parents[child] = append(parents[child], parent)
	}
	return children, parents
}

// assignLayers computes each node's layer as the length of the longest path
// from any source, restricted to the acyclic portion discovered by a DFS
// that skips back-edges. Every node receives a finite layer, cycles included.
func assignLayers(nodes []*model.Issue, children map[string][]string) map[string]int {
	const (
		white = iota
		gray
		black
	)
	color := make(map[string]int, len(nodes))
	dagChildren := make(map[string][]string, len(nodes))
	dagIndegree := make(map[string]int, len(nodes))

	var visit func(id string)
	visit = func(id string) {
		color[id] = gray
		for _, c := range children[id] {
			if color[c] == gray {
				// Back-edge: ignore it so layering stays finite.
				continue
			}
			dagChildren[id] = append(dagChildren[id], c)
			dagIndegree[c]++
			if color[c] == white {
				visit(c)
			}
		}
		color[id] = black
	}
	for _, n := range nodes {
		if color[n.ID] == white {
			visit(n.ID)
		}
	}

	// Longest-path layering over the back-edge-free graph (Kahn order).
	layers := make(map[string]int, len(nodes))
	var queue []string
	for _, n := range nodes {
		if dagIndegree[n.ID] == 0 {
			queue = append(queue, n.ID)
		}
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, c := range dagChildren[id] {
			if l := layers[id] + 1; l > layers[c] {
				layers[c] = l
			}
			dagIndegree[c]--
			if dagIndegree[c] == 0 {
				queue = append(queue, c)
			}
		}
	}
	return layers
}

func median(vals []float64) float64 {
	sort.Float64s(vals)
	n := len(vals)
	if n%2 == 1 {
		return vals[n/2]
	}
	return (vals[n/2-1] + vals[n/2]) / 2
}
