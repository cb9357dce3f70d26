// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"sort"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// backendEntry is one registered HAL backend.
type backendEntry struct {
	name     string
	priority int // higher is tried first
	backend  gputypes.Backend
}

// namedBackend is a registry entry resolved to its HAL backend.
type namedBackend struct {
	name    string
	backend hal.Backend
}

// registry holds the backends New tries, keyed by name.
type registry struct {
	mu      sync.RWMutex
	entries map[string]backendEntry
}

var globalRegistry = &registry{}

// Register makes a HAL backend available to New. Platform files call it
// from init:
//
//	func init() {
//	    surface.Register("vulkan", 100, gputypes.BackendVulkan)
//	}
//
// Registering a name again replaces the previous entry.
func Register(name string, priority int, backend gputypes.Backend) {
	globalRegistry.register(name, priority, backend)
}

func (r *registry) register(name string, priority int, backend gputypes.Backend) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.entries == nil {
		r.entries = make(map[string]backendEntry)
	}
	r.entries[name] = backendEntry{name: name, priority: priority, backend: backend}
}

// names returns every registered name, highest priority first, whether
// or not its backend is linked.
func (r *registry) names() []string {
	entries := r.sorted()
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.name
	}
	return out
}

// backends resolves the registered entries against the HAL backend table,
// highest priority first. Entries whose backend is not linked are skipped.
func (r *registry) backends() []namedBackend {
	var out []namedBackend
	for _, e := range r.sorted() {
		if b, ok := hal.GetBackend(e.backend); ok {
			out = append(out, namedBackend{name: e.name, backend: b})
		}
	}
	return out
}

// sorted returns the entries by descending priority, ties broken by name.
func (r *registry) sorted() []backendEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]backendEntry, 0, len(r.entries))
	for _, e := range r.entries {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].priority != entries[j].priority {
			return entries[i].priority > entries[j].priority
		}
		return entries[i].name < entries[j].name
	})
	return entries
}
