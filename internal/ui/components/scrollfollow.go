// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

// DefaultScrollThreshold is the distance from the bottom, in rows,
// within which the viewport counts as pinned.
const DefaultScrollThreshold = 50

// =============================================================================
// SCROLL FOLLOW
// =============================================================================

// ScrollFollow tracks whether the message viewport should auto-follow
// new content. Pinned by default; scrolling further than the threshold
// from the bottom unpins, returning within it re-pins. A reader who
// scrolled up is never yanked back down by reveal ticks.
type ScrollFollow struct {
	pinned    bool
	threshold int
	// jumpRequested is a one-shot flag set by JumpToBottom and consumed
	// by the renderer.
	jumpRequested bool
}

// NewScrollFollow creates a controller with the given threshold. A
// non-positive threshold falls back to DefaultScrollThreshold.
func NewScrollFollow(threshold int) *ScrollFollow {
	if threshold <= 0 {
		threshold = DefaultScrollThreshold
	}
	return &ScrollFollow{pinned: true, threshold: threshold}
}

// Notify records a scroll position as distance from the bottom in rows.
func (s *ScrollFollow) Notify(distanceFromBottom int) {
	s.pinned = distanceFromBottom <= s.threshold
}

// IsAtBottom reports whether the viewport is pinned to the bottom.
func (s *ScrollFollow) IsAtBottom() bool {
	return s.pinned
}

// ShouldAutoScroll reports whether new content may scroll the view.
// Consulted on every reveal tick and message insertion.
func (s *ScrollFollow) ShouldAutoScroll() bool {
	return s.pinned
}

// Pin forces the pinned state without scrolling.
func (s *ScrollFollow) Pin() {
	s.pinned = true
}

// Unpin forces the unpinned state.
func (s *ScrollFollow) Unpin() {
	s.pinned = false
}

// JumpToBottom force-pins and requests a single scroll-to-latest,
// independent of the automatic heuristic.
func (s *ScrollFollow) JumpToBottom() {
	s.pinned = true
	s.jumpRequested = true
}

// ConsumeJump returns and clears the pending jump request.
func (s *ScrollFollow) ConsumeJump() bool {
	requested := s.jumpRequested
	s.jumpRequested = false
	return requested
}

// ShowJumpAffordance reports whether the jump-to-bottom control should
// be visible: only while the reader is away from the bottom.
func (s *ScrollFollow) ShowJumpAffordance() bool {
	return !s.pinned
}
