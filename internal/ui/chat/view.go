// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the conversational view of the TUI.
//
// This file renders the chat layout:
//
//	header (1 line)
//	sidebar | transcript viewport
//	attachment strip (when files are staged)
//	input (3 lines, rounded border)
//	status bar (1 line)
//
// Toasts and the jump-to-latest affordance are drawn inside the
// transcript region so the total height always equals the terminal
// height.
package chat

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// MAIN RENDER
// =============================================================================

// View renders the complete chat view.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	header := m.header.View()
	input := m.renderInput()
	status := m.statusBar.View()

	var strip string
	if len(m.staged) > 0 {
		strip = m.strip.View(m.staged)
	}

	available := m.height - lipgloss.Height(header) - lipgloss.Height(input) - lipgloss.Height(status)
	if strip != "" {
		available -= lipgloss.Height(strip)
	}
	if available < 1 {
		available = 1
	}

	main := m.renderMain(available)

	sections := []string{header, main}
	if strip != "" {
		sections = append(sections, strip)
	}
	sections = append(sections, input, status)
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderMain renders the sidebar and transcript side by side, padded
// to exactly the given height.
func (m Model) renderMain(height int) string {
	transcript := m.renderTranscriptArea(height)
	if !m.sidebar.Visible() {
		return transcript
	}
	now := time.Now()
	side := m.sidebar.View(m.store.GroupedConversations(now), m.store.Selected(), now)
	side = fitHeight(side, height)
	return lipgloss.JoinHorizontal(lipgloss.Top, side, transcript)
}

// renderTranscriptArea draws the viewport with toasts overlaid at the
// top and the jump affordance at the bottom, fitted to height.
func (m Model) renderTranscriptArea(height int) string {
	lines := strings.Split(m.viewport.View(), "\n")

	if toasts := m.toasts.View(m.theme); toasts != "" {
		overlay := strings.Split(toasts, "\n")
		if len(overlay) > height {
			overlay = overlay[:height]
		}
		copy(lines, overlay)
	}

	if m.follow.ShowJumpAffordance() && len(lines) > 0 {
		lines[len(lines)-1] = m.theme.JumpButton.Render("End: jump to latest")
	}

	return fitHeight(strings.Join(lines, "\n"), height)
}

// renderInput draws the bordered prompt. The spinner replaces the
// prompt while a send is in flight.
func (m Model) renderInput() string {
	var line string
	if m.lifecycle.Sending(m.store.Selected()) {
		line = m.spin.View() + " waiting for reply"
	} else {
		line = m.input.View()
	}
	return m.theme.InputContainer.Width(m.width - 2).Render(line)
}

// =============================================================================
// HELPERS
// =============================================================================

// fitHeight pads or trims a block to exactly n lines.
func fitHeight(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[:n]
	}
	for len(lines) < n {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}
