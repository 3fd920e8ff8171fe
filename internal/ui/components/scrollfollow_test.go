// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import "testing"

func TestScrollFollowPinnedByDefault(t *testing.T) {
	s := NewScrollFollow(0)
	if !s.IsAtBottom() {
		t.Error("new controller not pinned")
	}
	if !s.ShouldAutoScroll() {
		t.Error("new controller should auto-scroll")
	}
	if s.ShowJumpAffordance() {
		t.Error("jump affordance shown while pinned")
	}
}

func TestScrollFollowThreshold(t *testing.T) {
	s := NewScrollFollow(50)

	s.Notify(51)
	if s.ShouldAutoScroll() {
		t.Error("auto-scroll still on past the threshold")
	}
	if !s.ShowJumpAffordance() {
		t.Error("jump affordance hidden while unpinned")
	}

	s.Notify(50)
	if !s.ShouldAutoScroll() {
		t.Error("auto-scroll off at the threshold boundary")
	}

	s.Notify(0)
	if !s.ShouldAutoScroll() {
		t.Error("auto-scroll off at the bottom")
	}
}

func TestScrollFollowStaysUnpinnedDuringReveal(t *testing.T) {
	s := NewScrollFollow(50)

	// Reader scrolls up past the threshold mid-reveal.
	s.Notify(120)

	// Two hundred reveal ticks arrive; none may re-pin the view.
	for i := 0; i < 200; i++ {
		if s.ShouldAutoScroll() {
			t.Fatalf("tick %d: view re-pinned without user action", i)
		}
	}
}

func TestScrollFollowJumpToBottom(t *testing.T) {
	s := NewScrollFollow(50)
	s.Notify(120)

	s.JumpToBottom()
	if !s.IsAtBottom() {
		t.Error("JumpToBottom did not pin")
	}
	if !s.ConsumeJump() {
		t.Error("jump request not pending")
	}
	// One-shot: consumed requests do not repeat.
	if s.ConsumeJump() {
		t.Error("jump request fired twice")
	}
}

func TestScrollFollowManualPinUnpin(t *testing.T) {
	s := NewScrollFollow(50)
	s.Unpin()
	if s.ShouldAutoScroll() {
		t.Error("Unpin did not take effect")
	}
	s.Pin()
	if !s.ShouldAutoScroll() {
		t.Error("Pin did not take effect")
	}
	if s.ConsumeJump() {
		t.Error("Pin requested a jump")
	}
}
