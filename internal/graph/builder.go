// Package graph assembles rooted dependency graphs from a flat issue list.
//
// Construction is total: any input, including empty, cyclic or partially
// dangling dependency data, produces a well-defined result without errors.
// Validation of the underlying relationships belongs to the tracker.
package graph

import "github.com/groblegark/beadviz/internal/model"

// BuildGraphs groups issues into one rooted Graph per root issue.
//
// A root is an issue whose dependency set is empty. When no issue
// qualifies — every issue sits in a cycle or references blockers outside
// the input set — every issue is treated as a root, guaranteeing at least
// one Graph for any non-empty input.
//
// All returned Graphs share the same Issues, Dependencies and IssueMap;
// only Root differs.
func BuildGraphs(issues []*model.Issue) []*model.Graph {
	if len(issues) == 0 {
		return []*model.Graph{}
	}

	issueMap := make(map[string]*model.Issue, len(issues))
	for _, issue := range issues {
		issueMap[issue.ID] = issue
	}

	// Flatten per-issue blocker edges, deduplicated by (blocked, blocker).
	seen := make(map[[2]string]struct{})
	var dependencies []*model.Dependency
	dependsOn := make(map[string]map[string]struct{}, len(issues))
	for _, issue := range issues {
		for _, dep := range issue.Dependencies {
			blocker := dep.DependsOnID
			if blocker == "" {
				continue
			}
			key := [2]string{issue.ID, blocker}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			dependencies = append(dependencies, &model.Dependency{
				IssueID:     issue.ID,
				DependsOnID: blocker,
				Type:        dep.Type,
			})
			set, ok := dependsOn[issue.ID]
			if !ok {
				set = make(map[string]struct{})
				dependsOn[issue.ID] = set
			}
			set[blocker] = struct{}{}
		}
	}
	if dependencies == nil {
		dependencies = []*model.Dependency{}
	}

	var roots []*model.Issue
	for _, issue := range issues {
		if len(dependsOn[issue.ID]) == 0 {
			roots = append(roots, issue)
		}
	}
	if len(roots) == 0 {
		// Everything is entangled in cycles or blocked on issues we cannot
		// see. Treat every issue as a root so consumers still get a graph.
		roots = issues
	}

	graphs := make([]*model.Graph, 0, len(roots))
	for _, root := range roots {
		graphs = append(graphs, &model.Graph{
			Root:         root,
			Issues:       issues,
			Dependencies: dependencies,
			IssueMap:     issueMap,
		})
	}
	return graphs
}

// DependedBy returns the transpose of the blocks relation for the given
// dependency set: blocker ID → IDs of issues it blocks.
func DependedBy(deps []*model.Dependency) map[string][]string {
	out := make(map[string][]string)
	for _, d := range deps {
		out[d.DependsOnID] = append(out[d.DependsOnID], d.IssueID)
	}
	return out
}
