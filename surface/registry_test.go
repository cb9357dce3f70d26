// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"errors"
	"strings"
	"testing"

	"github.com/gogpu/gputypes"
)

func TestRegistryOrder(t *testing.T) {
	r := &registry{}
	r.register("low", 10, gputypes.BackendVulkan)
	r.register("high", 100, gputypes.BackendVulkan)
	r.register("mid", 50, gputypes.BackendVulkan)
	r.register("also-high", 100, gputypes.BackendVulkan)

	got := r.names()
	want := []string{"also-high", "high", "mid", "low"}
	if len(got) != len(want) {
		t.Fatalf("names() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("names()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestRegistryReplace(t *testing.T) {
	r := &registry{}
	r.register("vk", 10, gputypes.BackendVulkan)
	r.register("vk", 90, gputypes.BackendMetal)

	entries := r.sorted()
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	if entries[0].priority != 90 || entries[0].backend != gputypes.BackendMetal {
		t.Errorf("entry = %+v, want priority 90 metal", entries[0])
	}
}

// Entries whose HAL backend is not compiled in are skipped, not errors.
func TestRegistrySkipsUnlinked(t *testing.T) {
	r := &registry{}
	r.register("metal", 200, gputypes.BackendMetal)

	if got := r.backends(); len(got) != 0 {
		t.Errorf("backends() = %d entries, want 0", len(got))
	}
	if got := r.names(); len(got) != 1 || got[0] != "metal" {
		t.Errorf("names() = %v, want [metal]", got)
	}
}

func TestGlobalRegistryHasVulkan(t *testing.T) {
	for _, name := range globalRegistry.names() {
		if name == "vulkan" {
			return
		}
	}
	t.Errorf("vulkan not registered, have %v", globalRegistry.names())
}

func TestNoBackendError(t *testing.T) {
	tests := []struct {
		name     string
		register []string
		want     string
	}{
		{"empty", nil, "none registered"},
		{"unlinked", []string{"metal", "dx12"}, "registered dx12, metal not linked"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &registry{}
			for _, n := range tt.register {
				r.register(n, 1, gputypes.BackendMetal)
			}
			err := noBackendError(r)
			if !errors.Is(err, ErrNoBackend) {
				t.Fatalf("error = %v, want ErrNoBackend", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}
