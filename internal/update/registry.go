// Package update coordinates asynchronous per-entity refresh jobs: it
// deduplicates triggers, runs accepted jobs out of band and exposes their
// progress through a shared registry.
package update

import (
	"sort"
	"sync"

	"github.com/flowsignal/flowcast/schema"
)

// Registry is a concurrent map from update key to the most recent status
// for that key. The orchestrator is its sole writer; pollers read
// snapshots. Terminal entries are never removed automatically, only
// overwritten by the next trigger for the same key.
type Registry struct {
	mu      sync.RWMutex
	entries map[schema.UpdateKey]schema.UpdateStatus
}

// NewRegistry builds an empty registry. One instance is constructed at
// process start and shared by reference, so tests get isolated state.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[schema.UpdateKey]schema.UpdateStatus)}
}

// Set upserts the status for its key, last write wins.
func (r *Registry) Set(status schema.UpdateStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[status.Key()] = status
}

// TryAcquire marks the key Queued unless an active entry already holds
// it, in one atomic step. Returns false when the key is already queued or
// in progress, which makes concurrent triggers for the same key collapse
// into one.
func (r *Registry) TryAcquire(key schema.UpdateKey) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if status, ok := r.entries[key]; ok && status.Status.IsActive() {
		return false
	}
	r.entries[key] = schema.UpdateStatus{UpdateType: key.UpdateType, ID: key.ID, Status: schema.UpdateQueued}
	return true
}

// Get returns the most recent status for the key.
func (r *Registry) Get(key schema.UpdateKey) (schema.UpdateStatus, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	status, ok := r.entries[key]
	return status, ok
}

// IsActive reports whether the key currently holds a queued or in-progress
// entry.
func (r *Registry) IsActive(key schema.UpdateKey) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	status, ok := r.entries[key]
	return ok && status.Status.IsActive()
}

// GetActive returns a snapshot of all queued or in-progress entries,
// ordered by key for stable display.
func (r *Registry) GetActive() []schema.UpdateStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var active []schema.UpdateStatus
	for _, status := range r.entries {
		if status.Status.IsActive() {
			active = append(active, status)
		}
	}
	sort.Slice(active, func(i, j int) bool {
		return active[i].Key().String() < active[j].Key().String()
	})
	return active
}

// CountActive returns the number of queued or in-progress entries.
func (r *Registry) CountActive() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, status := range r.entries {
		if status.Status.IsActive() {
			count++
		}
	}
	return count
}

// All returns a snapshot of every entry, ordered by key.
func (r *Registry) All() []schema.UpdateStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]schema.UpdateStatus, 0, len(r.entries))
	for _, status := range r.entries {
		all = append(all, status)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].Key().String() < all[j].Key().String()
	})
	return all
}

// Summary derives the poller-facing view.
func (r *Registry) Summary() schema.UpdateStatusSummary {
	count := r.CountActive()
	return schema.UpdateStatusSummary{HasActiveUpdates: count > 0, ActiveCount: count}
}
