package layout

import (
	"math"
	"reflect"
	"testing"

	"github.com/groblegark/beadviz/internal/model"
)

func node(id string) *model.Issue {
	return &model.Issue{ID: id, Title: id, Status: model.StatusOpen, Type: model.TypeTask}
}

func edge(parent, child string) *model.Dependency {
	// child is blocked by parent
	return &model.Dependency{IssueID: child, DependsOnID: parent, Type: model.DepBlocks}
}

func byID(nodes []*model.LayoutNode) map[string]*model.LayoutNode {
	m := make(map[string]*model.LayoutNode, len(nodes))
	for _, n := range nodes {
		m[n.Issue.ID] = n
	}
	return m
}

func TestLayoutPreservesNodeIdentity(t *testing.T) {
	nodes := []*model.Issue{node("a"), node("b"), node("c"), node("d")}
	out := Layout(nodes, []*model.Dependency{edge("a", "b"), edge("b", "c")}, Options{})

	if len(out) != len(nodes) {
		t.Fatalf("expected %d positioned nodes, got %d", len(nodes), len(out))
	}
	seen := make(map[string]int)
	for _, n := range out {
		seen[n.Issue.ID]++
		if math.IsNaN(n.X) || math.IsInf(n.X, 0) || math.IsNaN(n.Y) || math.IsInf(n.Y, 0) {
			t.Errorf("node %q has non-finite coordinates (%v, %v)", n.Issue.ID, n.X, n.Y)
		}
	}
	for _, in := range nodes {
		if seen[in.ID] != 1 {
			t.Errorf("node %q appears %d times, want exactly once", in.ID, seen[in.ID])
		}
	}
}

func TestLayoutDirectionInvariant(t *testing.T) {
	nodes := []*model.Issue{node("parent"), node("child")}
	edges := []*model.Dependency{edge("parent", "child")}

	tb := byID(Layout(nodes, edges, Options{Direction: TB}))
	if tb["child"].Y <= tb["parent"].Y {
		t.Errorf("TB: child.y=%v must strictly exceed parent.y=%v", tb["child"].Y, tb["parent"].Y)
	}

	lr := byID(Layout(nodes, edges, Options{Direction: LR}))
	if lr["child"].X <= lr["parent"].X {
		t.Errorf("LR: child.x=%v must strictly exceed parent.x=%v", lr["child"].X, lr["parent"].X)
	}
}

func TestLayoutDiamond(t *testing.T) {
	nodes := []*model.Issue{node("root"), node("left"), node("right"), node("bottom")}
	edges := []*model.Dependency{
		edge("root", "left"),
		edge("root", "right"),
		edge("left", "bottom"),
		edge("right", "bottom"),
	}
	out := byID(Layout(nodes, edges, Options{Direction: TB}))

	if out["left"].Y != out["right"].Y {
		t.Errorf("left.y=%v and right.y=%v should share a layer", out["left"].Y, out["right"].Y)
	}
	if !(out["root"].Y < out["left"].Y && out["left"].Y < out["bottom"].Y) {
		t.Errorf("want root.y < left.y < bottom.y, got %v, %v, %v",
			out["root"].Y, out["left"].Y, out["bottom"].Y)
	}
	if out["left"].Layer != 1 || out["bottom"].Layer != 2 {
		t.Errorf("unexpected layers: left=%d bottom=%d", out["left"].Layer, out["bottom"].Layer)
	}
}

func TestLayoutIsolatedNodesOnRootLayer(t *testing.T) {
	nodes := []*model.Issue{node("root"), node("child"), node("lonely")}
	out := byID(Layout(nodes, []*model.Dependency{edge("root", "child")}, Options{}))

	if out["lonely"].Layer != 0 {
		t.Errorf("isolated node on layer %d, want 0", out["lonely"].Layer)
	}
	if out["lonely"].Y != out["root"].Y {
		t.Errorf("isolated node should share the root layer's primary coordinate")
	}
}

func TestLayoutCycleStillFinite(t *testing.T) {
	nodes := []*model.Issue{node("x"), node("y"), node("z")}
	edges := []*model.Dependency{edge("x", "y"), edge("y", "z"), edge("z", "x")}
	out := Layout(nodes, edges, Options{})

	if len(out) != 3 {
		t.Fatalf("expected 3 nodes, got %d", len(out))
	}
	for _, n := range out {
		if n.Layer < 0 || n.Layer > 2 {
			t.Errorf("node %q got layer %d outside [0,2]", n.Issue.ID, n.Layer)
		}
	}
}

func TestLayoutIgnoresUnknownEdgeEndpoints(t *testing.T) {
	nodes := []*model.Issue{node("a"), node("b")}
	edges := []*model.Dependency{
		edge("a", "b"),
		edge("ghost", "b"),
		edge("a", "phantom"),
	}
	out := Layout(nodes, edges, Options{})
	if len(out) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(out))
	}
	m := byID(out)
	if m["b"].Layer != 1 {
		t.Errorf("b on layer %d, want 1", m["b"].Layer)
	}
}

func TestLayoutDeterministic(t *testing.T) {
	nodes := []*model.Issue{node("r"), node("m1"), node("m2"), node("m3"), node("leaf")}
	edges := []*model.Dependency{
		edge("r", "m1"), edge("r", "m2"), edge("r", "m3"),
		edge("m2", "leaf"),
	}
	first := Layout(nodes, edges, Options{Direction: LR})
	for range 10 {
		again := Layout(nodes, edges, Options{Direction: LR})
		if !reflect.DeepEqual(first, again) {
			t.Fatal("layout is not deterministic across runs")
		}
	}
}

func TestLayoutLongestPathWins(t *testing.T) {
	// leaf is reachable from root directly and through mid; the longer
	// path decides its layer.
	nodes := []*model.Issue{node("root"), node("mid"), node("leaf")}
	edges := []*model.Dependency{
		edge("root", "mid"),
		edge("root", "leaf"),
		edge("mid", "leaf"),
	}
	out := byID(Layout(nodes, edges, Options{}))
	if out["leaf"].Layer != 2 {
		t.Errorf("leaf on layer %d, want 2 (longest path)", out["leaf"].Layer)
	}
}

func TestLayoutSpacingOptions(t *testing.T) {
	nodes := []*model.Issue{node("p"), node("c")}
	edges := []*model.Dependency{edge("p", "c")}
	out := byID(Layout(nodes, edges, Options{Direction: TB, NodeHeight: 10, NodeSpacingY: 5}))

	if got := out["c"].Y - out["p"].Y; got != 15 {
		t.Errorf("layer step = %v, want nodeHeight+spacingY = 15", got)
	}
}
