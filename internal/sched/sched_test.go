// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package sched

import (
	"context"
	"sync"
	"testing"
)

func TestHandleStopOnce(t *testing.T) {
	h, ctx := NewHandle(context.Background())

	if h.Stopped() {
		t.Error("new handle reports stopped")
	}
	if !h.Stop() {
		t.Error("first Stop returned false")
	}
	if h.Stop() {
		t.Error("second Stop returned true")
	}
	if !h.Stopped() {
		t.Error("handle not stopped after Stop")
	}

	select {
	case <-ctx.Done():
	default:
		t.Error("context not cancelled after Stop")
	}
}

func TestHandleStopConcurrent(t *testing.T) {
	h, _ := NewHandle(context.Background())

	var wg sync.WaitGroup
	var mu sync.Mutex
	stops := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if h.Stop() {
				mu.Lock()
				stops++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if stops != 1 {
		t.Errorf("Stop succeeded %d times, want 1", stops)
	}
}

func TestRegistryBeginSupersedes(t *testing.T) {
	r := NewRegistry()

	h1, ctx1 := r.Begin(context.Background(), "conv-1")
	h2, _ := r.Begin(context.Background(), "conv-1")

	if !h1.Stopped() {
		t.Error("prior handle not stopped by Begin")
	}
	select {
	case <-ctx1.Done():
	default:
		t.Error("prior context not cancelled")
	}
	if h2.Stopped() {
		t.Error("new handle stopped")
	}
	if got := r.Current("conv-1"); got != h2.ID() {
		t.Errorf("Current = %q, want %q", got, h2.ID())
	}
}

func TestRegistryStop(t *testing.T) {
	r := NewRegistry()

	if r.Stop("conv-1") {
		t.Error("Stop on empty slot returned true")
	}

	h, _ := r.Begin(context.Background(), "conv-1")
	if !r.Stop("conv-1") {
		t.Error("Stop on live slot returned false")
	}
	if !h.Stopped() {
		t.Error("handle not stopped")
	}
	if r.Active("conv-1") {
		t.Error("slot active after Stop")
	}
}

func TestRegistryFinishIgnoresStale(t *testing.T) {
	r := NewRegistry()

	old, _ := r.Begin(context.Background(), "conv-1")
	cur, _ := r.Begin(context.Background(), "conv-1")

	// A completion from the superseded handle must not evict the
	// current one.
	r.Finish("conv-1", old.ID())
	if got := r.Current("conv-1"); got != cur.ID() {
		t.Errorf("Current = %q after stale Finish, want %q", got, cur.ID())
	}

	r.Finish("conv-1", cur.ID())
	if r.Active("conv-1") {
		t.Error("slot active after matching Finish")
	}
}

func TestRegistryStopAll(t *testing.T) {
	r := NewRegistry()
	h1, _ := r.Begin(context.Background(), "a")
	h2, _ := r.Begin(context.Background(), "b")

	r.StopAll()

	if !h1.Stopped() || !h2.Stopped() {
		t.Error("handles survive StopAll")
	}
	if r.Active("a") || r.Active("b") {
		t.Error("slots active after StopAll")
	}
}

func TestRegistryIndependentSlots(t *testing.T) {
	r := NewRegistry()
	h1, _ := r.Begin(context.Background(), "a")
	_, _ = r.Begin(context.Background(), "b")

	if h1.Stopped() {
		t.Error("Begin on slot b stopped slot a")
	}
}
