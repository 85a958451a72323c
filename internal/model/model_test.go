package model

import (
	"encoding/json"
	"testing"
)

func TestDependencyListDecodesBareIDs(t *testing.T) {
	var issue Issue
	raw := `{"id":"bd-1","title":"t","status":"open","issue_type":"task","dependencies":["bd-2","bd-3"]}`
	if err := json.Unmarshal([]byte(raw), &issue); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if len(issue.Dependencies) != 2 {
		t.Fatalf("expected 2 dependencies, got %d", len(issue.Dependencies))
	}
	if issue.Dependencies[0].DependsOnID != "bd-2" {
		t.Errorf("got %q, want bd-2", issue.Dependencies[0].DependsOnID)
	}
	if issue.Dependencies[0].Type != DepBlocks {
		t.Errorf("bare entries should default to blocks, got %q", issue.Dependencies[0].Type)
	}
}

func TestDependencyListDecodesRecords(t *testing.T) {
	var issue Issue
	raw := `{"id":"bd-1","dependencies":[{"issue_id":"bd-1","depends_on_id":"bd-2","type":"discovered-from"},"bd-4"]}`
	if err := json.Unmarshal([]byte(raw), &issue); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if len(issue.Dependencies) != 2 {
		t.Fatalf("expected 2 dependencies, got %d", len(issue.Dependencies))
	}
	if got := issue.Dependencies[0].Type; got != DepDiscovered {
		t.Errorf("got type %q, want discovered-from", got)
	}
	if got := issue.Dependencies[1].DependsOnID; got != "bd-4" {
		t.Errorf("got %q, want bd-4", got)
	}
}

func TestDependencyListRecordWithoutTypeDefaultsToBlocks(t *testing.T) {
	var list DependencyList
	if err := json.Unmarshal([]byte(`[{"depends_on_id":"bd-9"}]`), &list); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if list[0].Type != DepBlocks {
		t.Errorf("got %q, want blocks", list[0].Type)
	}
}

func TestStatusIsValid(t *testing.T) {
	valid := []Status{StatusOpen, StatusInProgress, StatusClosed}
	for _, s := range valid {
		if !s.IsValid() {
			t.Errorf("%q should be valid", s)
		}
	}
	if Status("deferred").IsValid() {
		t.Error("unknown status should be invalid")
	}
}

func TestIssueTypeIsValid(t *testing.T) {
	valid := []IssueType{TypeTask, TypeBug, TypeFeature}
	for _, ty := range valid {
		if !ty.IsValid() {
			t.Errorf("%q should be valid", ty)
		}
	}
	if IssueType("epic").IsValid() {
		t.Error("unknown type should be invalid")
	}
}
