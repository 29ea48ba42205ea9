package watcher

import (
	"sync"

	"github.com/seenbyai/audit-console/internal/metrics"
)

// Factory builds a Watcher for a job id. The registry owns no wiring of its
// own; the caller decides fetcher, clock, and navigation.
type Factory func(jobID string) *Watcher

// Registry tracks at most one live watcher per job view. It is the console's
// only shared mutable state.
type Registry struct {
	mu       sync.Mutex
	factory  Factory
	watchers map[string]*Watcher
}

// NewRegistry constructs a Registry around the given factory.
func NewRegistry(factory Factory) *Registry {
	return &Registry{
		factory:  factory,
		watchers: make(map[string]*Watcher),
	}
}

// Open returns the watcher for jobID, starting one if none exists.
func (r *Registry) Open(jobID string) *Watcher {
	r.mu.Lock()
	defer r.mu.Unlock()
	if w, ok := r.watchers[jobID]; ok {
		return w
	}
	w := r.factory(jobID)
	r.watchers[jobID] = w
	metrics.SetActiveWatchers(len(r.watchers))
	return w
}

// Get returns the watcher for jobID if one is open.
func (r *Registry) Get(jobID string) (*Watcher, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.watchers[jobID]
	return w, ok
}

// Reset closes and forgets the watcher for jobID. The user's "create new
// audit" escape hatch lands here.
func (r *Registry) Reset(jobID string) {
	r.mu.Lock()
	w, ok := r.watchers[jobID]
	if ok {
		delete(r.watchers, jobID)
		metrics.SetActiveWatchers(len(r.watchers))
	}
	r.mu.Unlock()
	if ok {
		w.Close()
	}
}

// CloseAll stops every open watcher; used during shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	watchers := make([]*Watcher, 0, len(r.watchers))
	for _, w := range r.watchers {
		watchers = append(watchers, w)
	}
	r.watchers = make(map[string]*Watcher)
	metrics.SetActiveWatchers(0)
	r.mu.Unlock()
	for _, w := range watchers {
		w.Close()
	}
}
