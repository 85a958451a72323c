package graph

import (
	"testing"

	"github.com/groblegark/beadviz/internal/model"
)

func issue(id string, blockers ...string) *model.Issue {
	deps := make(model.DependencyList, 0, len(blockers))
	for _, b := range blockers {
		deps = append(deps, &model.Dependency{IssueID: id, DependsOnID: b, Type: model.DepBlocks})
	}
	return &model.Issue{ID: id, Title: id, Status: model.StatusOpen, Type: model.TypeTask, Dependencies: deps}
}

func TestBuildGraphsEmptyInput(t *testing.T) {
	graphs := BuildGraphs(nil)
	if graphs == nil {
		t.Fatal("expected non-nil empty slice")
	}
	if len(graphs) != 0 {
		t.Fatalf("expected 0 graphs, got %d", len(graphs))
	}
}

func TestBuildGraphsNoDependencies(t *testing.T) {
	issues := []*model.Issue{issue("A"), issue("B"), issue("C")}
	graphs := BuildGraphs(issues)

	if len(graphs) != 3 {
		t.Fatalf("expected one graph per issue, got %d", len(graphs))
	}
	for i, g := range graphs {
		if g.Root.ID != issues[i].ID {
			t.Errorf("graph %d rooted at %q, want %q", i, g.Root.ID, issues[i].ID)
		}
		if len(g.Issues) != 3 {
			t.Errorf("graph %d holds %d issues, want all 3", i, len(g.Issues))
		}
	}
}

func TestBuildGraphsChain(t *testing.T) {
	// A blocked by B, B blocked by C. C has no dependency and is the root.
	issues := []*model.Issue{issue("C"), issue("B", "C"), issue("A", "B")}
	graphs := BuildGraphs(issues)

	if len(graphs) != 1 {
		t.Fatalf("expected exactly 1 graph, got %d", len(graphs))
	}
	if graphs[0].Root.ID != "C" {
		t.Errorf("root is %q, want C", graphs[0].Root.ID)
	}
	if len(graphs[0].Dependencies) != 2 {
		t.Errorf("expected 2 edges, got %d", len(graphs[0].Dependencies))
	}
}

func TestBuildGraphsTwoCycleFallsBackToAllRoots(t *testing.T) {
	issues := []*model.Issue{issue("X", "Y"), issue("Y", "X")}
	graphs := BuildGraphs(issues)

	if len(graphs) != 2 {
		t.Fatalf("expected 2 graphs from all-roots fallback, got %d", len(graphs))
	}
}

func TestBuildGraphsSelfLoopTolerated(t *testing.T) {
	graphs := BuildGraphs([]*model.Issue{issue("A", "A")})
	if len(graphs) != 1 {
		t.Fatalf("expected 1 graph, got %d", len(graphs))
	}
	if graphs[0].Root.ID != "A" {
		t.Errorf("root is %q, want A", graphs[0].Root.ID)
	}
}

func TestBuildGraphsExternalBlockerIsNotARoot(t *testing.T) {
	// A references a blocker outside the input set, so it keeps a non-empty
	// dependency set and the fallback kicks in.
	graphs := BuildGraphs([]*model.Issue{issue("A", "ghost")})
	if len(graphs) != 1 {
		t.Fatalf("expected 1 graph, got %d", len(graphs))
	}
	if graphs[0].Root.ID != "A" {
		t.Errorf("fallback root is %q, want A", graphs[0].Root.ID)
	}
}

func TestBuildGraphsDeduplicatesEdges(t *testing.T) {
	a := issue("A", "B", "B")
	graphs := BuildGraphs([]*model.Issue{a, issue("B")})

	if got := len(graphs[0].Dependencies); got != 1 {
		t.Errorf("expected duplicate edge collapsed to 1, got %d", got)
	}
}

func TestBuildGraphsSharesIssueMap(t *testing.T) {
	issues := []*model.Issue{issue("A"), issue("B")}
	graphs := BuildGraphs(issues)

	if len(graphs) != 2 {
		t.Fatalf("expected 2 graphs, got %d", len(graphs))
	}
	for _, g := range graphs {
		if len(g.IssueMap) != len(issues) {
			t.Errorf("IssueMap has %d keys, want %d", len(g.IssueMap), len(issues))
		}
		for _, is := range issues {
			if g.IssueMap[is.ID] != is {
				t.Errorf("IssueMap missing %q", is.ID)
			}
		}
	}
}

func TestDependedByTransposesEdges(t *testing.T) {
	deps := []*model.Dependency{
		{IssueID: "A", DependsOnID: "B"},
		{IssueID: "C", DependsOnID: "B"},
	}
	rev := DependedBy(deps)
	if len(rev["B"]) != 2 {
		t.Fatalf("expected B to block 2 issues, got %v", rev["B"])
	}
}
