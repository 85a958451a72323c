package gitops

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// exitError fakes a subprocess exit status.
type exitError struct{ code int }

func (e *exitError) Error() string { return "exit status" }
func (e *exitError) ExitCode() int { return e.code }

type fakeGit struct {
	results map[string]error // first arg -> error to return
	calls   [][]string
}

func (f *fakeGit) run(_ context.Context, _ string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, args)
	return nil, f.results[args[0]]
}

func TestHasStagedChangesExitOne(t *testing.T) {
	f := &fakeGit{results: map[string]error{"diff": &exitError{code: 1}}}
	g := New("/repo", WithRunner(f.run))

	staged, err := g.HasStagedChanges(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !staged {
		t.Error("exit code 1 should mean staged changes exist")
	}
	if got := strings.Join(f.calls[0], " "); got != "diff --cached --quiet" {
		t.Errorf("args = %q", got)
	}
}

func TestHasStagedChangesExitZero(t *testing.T) {
	f := &fakeGit{results: map[string]error{}}
	g := New("/repo", WithRunner(f.run))

	staged, err := g.HasStagedChanges(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if staged {
		t.Error("exit code 0 should mean no staged changes")
	}
}

func TestHasStagedChangesOtherFailure(t *testing.T) {
	f := &fakeGit{results: map[string]error{"diff": errors.New("fatal: not a git repository")}}
	g := New("/repo", WithRunner(f.run))

	if _, err := g.HasStagedChanges(context.Background()); err == nil {
		t.Fatal("expected error for non-exit-1 failure")
	}
}

func TestAddAndCommitArgs(t *testing.T) {
	f := &fakeGit{results: map[string]error{}}
	g := New("/repo", WithRunner(f.run))

	if err := g.Add(context.Background(), ".beads"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := g.Commit(context.Background(), "bv: sync issue updates"); err != nil {
		t.Fatalf("commit: %v", err)
	}

	if got := strings.Join(f.calls[0], " "); got != "add .beads" {
		t.Errorf("add args = %q", got)
	}
	if got := strings.Join(f.calls[1], " "); got != "commit -m bv: sync issue updates" {
		t.Errorf("commit args = %q", got)
	}
}

func TestAddNoPathsIsNoop(t *testing.T) {
	f := &fakeGit{results: map[string]error{}}
	g := New("/repo", WithRunner(f.run))

	if err := g.Add(context.Background()); err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(f.calls) != 0 {
		t.Errorf("expected no subprocess calls, got %d", len(f.calls))
	}
}
