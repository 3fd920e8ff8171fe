// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package sched

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// =============================================================================
// HANDLE
// =============================================================================

// Handle is a stop-once cancellation handle for one unit of background
// work. Stop is safe to call from any goroutine and any number of times.
// IMPORTANT: Handles must be held as pointers; the mutex must not be
// copied when Bubble Tea returns model copies.
type Handle struct {
	mu      sync.Mutex
	id      string
	cancel  context.CancelFunc
	stopped bool
}

// NewHandle creates a handle wrapping ctx. The returned context is
// cancelled when the handle is stopped.
func NewHandle(ctx context.Context) (*Handle, context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	return &Handle{
		id:     uuid.NewString(),
		cancel: cancel,
	}, ctx
}

// ID returns the handle's unique identifier. Results arriving from
// goroutines carry this id so stale completions can be discarded.
func (h *Handle) ID() string {
	return h.id
}

// Stop cancels the underlying context. Subsequent calls are no-ops.
// Returns true on the call that performed the stop.
func (h *Handle) Stop() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		return false
	}
	h.stopped = true
	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
	return true
}

// Stopped reports whether Stop has been called.
func (h *Handle) Stopped() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stopped
}

// =============================================================================
// REGISTRY
// =============================================================================

// Registry tracks at most one live handle per slot. Starting a new
// handle for a slot stops whatever was running there before.
type Registry struct {
	mu      sync.Mutex
	handles map[string]*Handle
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{handles: make(map[string]*Handle)}
}

// Begin creates a handle for slot, stopping any prior handle first.
func (r *Registry) Begin(ctx context.Context, slot string) (*Handle, context.Context) {
	h, hctx := NewHandle(ctx)

	r.mu.Lock()
	prev := r.handles[slot]
	r.handles[slot] = h
	r.mu.Unlock()

	if prev != nil {
		prev.Stop()
	}
	return h, hctx
}

// Stop stops the handle for slot, if one is live. Returns true when a
// running handle was actually stopped.
func (r *Registry) Stop(slot string) bool {
	r.mu.Lock()
	h := r.handles[slot]
	delete(r.handles, slot)
	r.mu.Unlock()

	if h == nil {
		return false
	}
	return h.Stop()
}

// Finish removes the handle for slot if it matches id. A completion
// from a superseded handle leaves the current one in place.
func (r *Registry) Finish(slot, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h, ok := r.handles[slot]; ok && h.id == id {
		delete(r.handles, slot)
	}
}

// Active reports whether slot has a live, unstopped handle.
func (r *Registry) Active(slot string) bool {
	r.mu.Lock()
	h := r.handles[slot]
	r.mu.Unlock()
	return h != nil && !h.Stopped()
}

// Current returns the id of the live handle for slot, or "".
func (r *Registry) Current(slot string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h, ok := r.handles[slot]; ok {
		return h.id
	}
	return ""
}

// StopAll stops every live handle. Used on shutdown.
func (r *Registry) StopAll() {
	r.mu.Lock()
	handles := make([]*Handle, 0, len(r.handles))
	for _, h := range r.handles {
		handles = append(handles, h)
	}
	r.handles = make(map[string]*Handle)
	r.mu.Unlock()

	for _, h := range handles {
		h.Stop()
	}
}
