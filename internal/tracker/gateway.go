// Package tracker adapts the external issue-tracker CLI into typed Go
// operations. The binary owns the issue store; this gateway only shuttles
// requests and normalizes the tool's raw, possibly warning-prefixed output
// into typed results.
package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/groblegark/beadviz/internal/model"
)

// Gateway is the tracker collaborator contract. Implementations translate
// the external tool's output into typed results; callers treat failures as
// *Error values carrying a normalized Kind.
type Gateway interface {
	ListIssues(ctx context.Context) ([]*model.Issue, error)
	GetIssue(ctx context.Context, id string) (*model.Issue, error)
	CreateIssue(ctx context.Context, input CreateInput) (*model.Issue, error)
	UpdateIssue(ctx context.Context, id string, patch UpdatePatch) (*model.Issue, error)
	CloseIssue(ctx context.Context, id, reason string) (*model.Issue, error)
	AddDependency(ctx context.Context, blocked, blocker string) error
	RemoveDependency(ctx context.Context, blocked, blocker string) error
	GetGraph(ctx context.Context) ([]*model.Issue, error)
	Sync(ctx context.Context, opts SyncOptions) error
}

// CreateInput carries the fields for a new issue.
type CreateInput struct {
	Title       string
	Description string
	Type        model.IssueType
	Priority    *int
}

// UpdatePatch carries optional field updates; nil fields are untouched.
type UpdatePatch struct {
	Title       *string
	Description *string
	Status      *model.Status
	Assignee    *string
	Priority    *int
}

// SyncOptions configures the tracker's own pull/merge sync.
type SyncOptions struct {
	// ImportOnly pulls and merges the remote copy without exporting
	// local changes.
	ImportOnly bool
	// NoPush suppresses the tracker's push, for callers that apply a
	// credentialed push separately.
	NoPush bool
}

// Runner executes the tracker binary. Injectable for tests.
type Runner func(ctx context.Context, dir, name string, args ...string) (stdout, stderr []byte, err error)

// execRunner shells out for real.
func execRunner(ctx context.Context, dir, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// CLI is the subprocess-backed Gateway.
type CLI struct {
	bin string
	dir string
	run Runner
}

// Option configures a CLI gateway.
type Option func(*CLI)

// WithRunner replaces the subprocess runner (tests).
func WithRunner(r Runner) Option {
	return func(c *CLI) { c.run = r }
}

// NewCLI returns a Gateway backed by the tracker binary, executed with the
// given working directory.
func NewCLI(bin, dir string, opts ...Option) *CLI {
	c := &CLI{bin: bin, dir: dir, run: execRunner}
	for _, o := range opts {
		o(c)
	}
	return c
}

var _ Gateway = (*CLI)(nil)

// ListIssues runs `list --json`.
func (c *CLI) ListIssues(ctx context.Context) ([]*model.Issue, error) {
	out, err := c.exec(ctx, "list", "list", "--json")
	if err != nil {
		return nil, err
	}
	return decodeIssues("list", out)
}

// GetIssue runs `show <id> --json`.
func (c *CLI) GetIssue(ctx context.Context, id string) (*model.Issue, error) {
	if id == "" {
		return nil, validationError("show", "issue id is required")
	}
	out, err := c.exec(ctx, "show", "show", id, "--json")
	if err != nil {
		return nil, err
	}
	return decodeIssue("show", out)
}

// CreateIssue runs `create <title> [flags] --json`.
func (c *CLI) CreateIssue(ctx context.Context, input CreateInput) (*model.Issue, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, validationError("create", "title is required")
	}
	args := []string{"create", input.Title}
	if input.Description != "" {
		args = append(args, "--description", input.Description)
	}
	if input.Type != "" {
		args = append(args, "--type", input.Type.String())
	}
	if input.Priority != nil {
		args = append(args, "--priority", strconv.Itoa(*input.Priority))
	}
	args = append(args, "--json")

	out, err := c.exec(ctx, "create", args...)
	if err != nil {
		return nil, err
	}
	return decodeIssue("create", out)
}

// UpdateIssue runs `update <id> [fields] --json`.
func (c *CLI) UpdateIssue(ctx context.Context, id string, patch UpdatePatch) (*model.Issue, error) {
	if id == "" {
		return nil, validationError("update", "issue id is required")
	}
	args := []string{"update", id}
	if patch.Title != nil {
		args = append(args, "--title", *patch.Title)
	}
	if patch.Description != nil {
		args = append(args, "--description", *patch.Description)
	}
	if patch.Status != nil {
		args = append(args, "--status", patch.Status.String())
	}
	if patch.Assignee != nil {
		args = append(args, "--assignee", *patch.Assignee)
	}
	if patch.Priority != nil {
		args = append(args, "--priority", strconv.Itoa(*patch.Priority))
	}
	if len(args) == 2 {
		return nil, validationError("update", "at least one field is required")
	}
	args = append(args, "--json")

	out, err := c.exec(ctx, "update", args...)
	if err != nil {
		return nil, err
	}
	return decodeIssue("update", out)
}

// CloseIssue runs `close <id> [--reason] --json`.
func (c *CLI) CloseIssue(ctx context.Context, id, reason string) (*model.Issue, error) {
	if id == "" {
		return nil, validationError("close", "issue id is required")
	}
	args := []string{"close", id}
	if reason != "" {
		args = append(args, "--reason", reason)
	}
	args = append(args, "--json")

	out, err := c.exec(ctx, "close", args...)
	if err != nil {
		return nil, err
	}
	return decodeIssue("close", out)
}

// AddDependency runs `dep add <blocked> <blocker> --json`.
func (c *CLI) AddDependency(ctx context.Context, blocked, blocker string) error {
	if blocked == "" || blocker == "" {
		return validationError("dep add", "both issue ids are required")
	}
	_, err := c.exec(ctx, "dep add", "dep", "add", blocked, blocker, "--json")
	return err
}

// RemoveDependency runs `dep remove <blocked> <blocker> --json`.
func (c *CLI) RemoveDependency(ctx context.Context, blocked, blocker string) error {
	if blocked == "" || blocker == "" {
		return validationError("dep remove", "both issue ids are required")
	}
	_, err := c.exec(ctx, "dep remove", "dep", "remove", blocked, blocker, "--json")
	return err
}

// GetGraph runs `graph --all --json`, returning the full issue set with
// dependency records populated.
func (c *CLI) GetGraph(ctx context.Context) ([]*model.Issue, error) {
	out, err := c.exec(ctx, "graph", "graph", "--all", "--json")
	if err != nil {
		return nil, err
	}
	return decodeIssues("graph", out)
}

// Sync runs `sync`, delegating merge/conflict resolution to the tracker.
func (c *CLI) Sync(ctx context.Context, opts SyncOptions) error {
	args := []string{"sync"}
	if opts.ImportOnly {
		args = append(args, "--import-only")
	} else if opts.NoPush {
		args = append(args, "--no-push")
	}
	if _, err := c.exec(ctx, "sync", args...); err != nil {
		return &Error{Kind: KindSyncFailure, Op: "sync", Message: err.Error()}
	}
	return nil
}

// exec runs the tracker binary and applies the success contract: exit code
// zero with stderr not starting with "Error" signals success. On failure
// the stderr (or stdout) text is normalized into a typed *Error.
func (c *CLI) exec(ctx context.Context, op string, args ...string) ([]byte, error) {
	stdout, stderr, err := c.run(ctx, c.dir, c.bin, args...)
	errText := strings.TrimSpace(string(stderr))
	if err == nil && !strings.HasPrefix(errText, "Error") {
		return stdout, nil
	}

	message := errText
	if message == "" {
		message = strings.TrimSpace(string(stdout))
	}
	if message == "" && err != nil {
		message = err.Error()
	}
	return nil, Normalize(op, message)
}

// extractJSON locates the JSON payload in tracker output, skipping any
// leading warning text, by scanning for the first '{' or '['.
func extractJSON(out []byte) ([]byte, error) {
	if i := bytes.IndexAny(out, "{["); i >= 0 {
		return out[i:], nil
	}
	return nil, fmt.Errorf("no JSON payload in tracker output")
}

func decodeIssue(op string, out []byte) (*model.Issue, error) {
	payload, err := extractJSON(out)
	if err != nil {
		return nil, &Error{Kind: KindUnknown, Op: op, Message: err.Error()}
	}
	var issue model.Issue
	if err := json.Unmarshal(payload, &issue); err != nil {
		return nil, &Error{Kind: KindUnknown, Op: op, Message: fmt.Sprintf("decoding issue: %v", err)}
	}
	return &issue, nil
}

func decodeIssues(op string, out []byte) ([]*model.Issue, error) {
	payload, err := extractJSON(out)
	if err != nil {
		return nil, &Error{Kind: KindUnknown, Op: op, Message: err.Error()}
	}
	var issues []*model.Issue
	if err := json.Unmarshal(payload, &issues); err != nil {
		// Some tracker versions wrap the list in an envelope.
		var envelope struct {
			Issues []*model.Issue `json:"issues"`
		}
		if err2 := json.Unmarshal(payload, &envelope); err2 != nil {
			return nil, &Error{Kind: KindUnknown, Op: op, Message: fmt.Sprintf("decoding issues: %v", err)}
		}
		issues = envelope.Issues
	}
	if issues == nil {
		issues = []*model.Issue{}
	}
	return issues, nil
}
