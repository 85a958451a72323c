// Package gitops wraps the git binary for the narrow set of operations the
// sync controller needs: staging the tracker's storage, checking for a
// staged diff, and committing. Pull/merge/push of the issue store itself is
// delegated to the tracker's own sync.
package gitops

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes git. Injectable for tests.
type Runner func(ctx context.Context, dir string, args ...string) (output []byte, err error)

func execRunner(ctx context.Context, dir string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()
	return out.Bytes(), err
}

// Git operates on a single working directory.
type Git struct {
	dir string
	run Runner
}

// Option configures a Git gateway.
type Option func(*Git)

// WithRunner replaces the subprocess runner (tests).
func WithRunner(r Runner) Option {
	return func(g *Git) { g.run = r }
}

// New returns a Git gateway rooted at dir.
func New(dir string, opts ...Option) *Git {
	g := &Git{dir: dir, run: execRunner}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Dir returns the working directory this gateway operates on.
func (g *Git) Dir() string {
	return g.dir
}

// Add stages the given paths.
func (g *Git) Add(ctx context.Context, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	args := append([]string{"add"}, paths...)
	if out, err := g.run(ctx, g.dir, args...); err != nil {
		return fmt.Errorf("git add: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

// exitCoder matches *exec.ExitError and test doubles.
type exitCoder interface {
	ExitCode() int
}

// HasStagedChanges reports whether the index differs from HEAD.
// `git diff --cached --quiet` exits 1 when a staged diff exists.
func (g *Git) HasStagedChanges(ctx context.Context) (bool, error) {
	out, err := g.run(ctx, g.dir, "diff", "--cached", "--quiet")
	if err == nil {
		return false, nil
	}
	var ec exitCoder
	if errors.As(err, &ec) && ec.ExitCode() == 1 {
		return true, nil
	}
	return false, fmt.Errorf("git diff --cached: %w: %s", err, strings.TrimSpace(string(out)))
}

// Commit records staged changes with the given message.
func (g *Git) Commit(ctx context.Context, message string) error {
	if out, err := g.run(ctx, g.dir, "commit", "-m", message); err != nil {
		return fmt.Errorf("git commit: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}
