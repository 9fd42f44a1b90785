// Package measure provides a process-wide registry of named counters used
// to instrument the FMM solve pipeline (P2P/M2L/M2M/L2L call counts).
package measure

import "sync"

// Registry accumulates named uint64 counters under a single lock.
type Registry struct {
	mu     sync.Mutex
	counts map[string]uint64
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{counts: make(map[string]uint64)}
}

// Add increments the named counter by delta.
func (r *Registry) Add(name string, delta uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts[name] += delta
}

// Inc increments the named counter by one.
func (r *Registry) Inc(name string) {
	r.Add(name, 1)
}

// SnapshotAndReset returns a copy of the current counters and clears them.
func (r *Registry) SnapshotAndReset() map[string]uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]uint64, len(r.counts))
	for k, v := range r.counts {
		out[k] = v
	}
	r.counts = make(map[string]uint64)
	return out
}

// Snapshot returns a copy of the current counters without clearing them.
func (r *Registry) Snapshot() map[string]uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]uint64, len(r.counts))
	for k, v := range r.counts {
		out[k] = v
	}
	return out
}

// Global is the process-wide counter registry used by package fmm's
// operator-call instrumentation when a caller does not supply its own.
var Global = NewRegistry()
