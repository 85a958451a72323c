package model

import (
	"encoding/json"
	"fmt"
)

// DependencyType categorizes the relationship between two issues.
// Well-known constants are provided below, but dependency types are extensible.
type DependencyType string

const (
	DepBlocks      DependencyType = "blocks"
	DepParentChild DependencyType = "parent-child"
	DepRelated     DependencyType = "related"
	DepDiscovered  DependencyType = "discovered-from"
)

// IsValid reports whether the dependency type is a non-empty string.
// Dependency types are extensible, so any non-empty value is accepted.
func (d DependencyType) IsValid() bool {
	return d != ""
}

// Dependency is a directed "blocks" edge: the issue identified by IssueID
// is blocked until the issue identified by DependsOnID resolves.
type Dependency struct {
	IssueID     string         `json:"issue_id"`
	DependsOnID string         `json:"depends_on_id"`
	Type        DependencyType `json:"type"`
}

// DependencyList decodes the tracker's mixed dependency representations.
// An entry may be a bare blocker ID string or a full relationship object;
// both normalize to a Dependency with DependsOnID set. Self-loops and
// references outside the current issue set are kept as-is — validation
// belongs to the tracker.
type DependencyList []*Dependency

// UnmarshalJSON accepts an array whose entries are strings or objects.
func (l *DependencyList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("dependency list: %w", err)
	}

	deps := make([]*Dependency, 0, len(raw))
	for _, entry := range raw {
		if len(entry) > 0 && entry[0] == '"' {
			var id string
			if err := json.Unmarshal(entry, &id); err != nil {
				return fmt.Errorf("dependency entry: %w", err)
			}
			deps = append(deps, &Dependency{DependsOnID: id, Type: DepBlocks})
			continue
		}

		var dep Dependency
		if err := json.Unmarshal(entry, &dep); err != nil {
			return fmt.Errorf("dependency entry: %w", err)
		}
		if dep.Type == "" {
			dep.Type = DepBlocks
		}
		deps = append(deps, &dep)
	}

	*l = deps
	return nil
}
