package syncer

import (
	"path/filepath"
	"sync"
)

// Factory builds a Controller for a canonicalized working directory.
type Factory func(dir string) *Controller

// Registry hands out exactly one Controller per working directory, keyed by
// canonical path, so two callers can never race to commit the same
// repository. Controllers are created lazily and reused. The registry is an
// explicit object owned by the composition root rather than package state,
// so tests can build and reset their own.
type Registry struct {
	mu          sync.Mutex
	factory     Factory
	controllers map[string]*Controller
}

// NewRegistry returns an empty registry using factory for lazy creation.
func NewRegistry(factory Factory) *Registry {
	return &Registry{
		factory:     factory,
		controllers: make(map[string]*Controller),
	}
}

// For returns the controller owning dir, creating it on first use.
// Different spellings of the same directory resolve to the same controller.
func (r *Registry) For(dir string) *Controller {
	key := canonicalPath(dir)

	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.controllers[key]; ok {
		return c
	}
	c := r.factory(key)
	r.controllers[key] = c
	return c
}

// Len reports how many controllers exist.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.controllers)
}

// Reset stops every controller's pending timer and forgets them all.
// In-flight flushes are not aborted.
func (r *Registry) Reset() {
	r.mu.Lock()
	controllers := r.controllers
	r.controllers = make(map[string]*Controller)
	r.mu.Unlock()

	for _, c := range controllers {
		c.Stop()
	}
}

// canonicalPath resolves dir to an absolute, symlink-free, cleaned path.
// Resolution failures fall back to the cleaned absolute form so a
// nonexistent directory still maps consistently.
func canonicalPath(dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return filepath.Clean(dir)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return filepath.Clean(abs)
}
