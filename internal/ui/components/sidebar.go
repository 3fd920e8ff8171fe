// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"time"

	"github.com/jeranaias/flowvo-tui/internal/session"
	"github.com/jeranaias/flowvo-tui/internal/ui/styles"
	"github.com/jeranaias/flowvo-tui/internal/util"
)

// =============================================================================
// CONVERSATION SIDEBAR
// =============================================================================

// Sidebar lists conversations grouped by age. Cursor movement is
// independent of the selected conversation; Enter selects.
type Sidebar struct {
	Width   int
	Height  int
	theme   *styles.Theme
	cursor  int
	visible bool

	// flat is the cursor-addressable list rebuilt on every View.
	flat []string
}

// NewSidebar creates a sidebar, hidden by default on narrow terminals.
func NewSidebar(theme *styles.Theme) *Sidebar {
	return &Sidebar{Width: 28, theme: theme, visible: true}
}

// Toggle shows or hides the sidebar.
func (s *Sidebar) Toggle() {
	s.visible = !s.visible
}

// Visible reports whether the sidebar renders.
func (s *Sidebar) Visible() bool {
	return s.visible
}

// MoveCursor shifts the cursor by delta, clamped to the list.
func (s *Sidebar) MoveCursor(delta int) {
	s.cursor += delta
	if s.cursor < 0 {
		s.cursor = 0
	}
	if max := len(s.flat) - 1; s.cursor > max && max >= 0 {
		s.cursor = max
	}
}

// CursorConversation returns the conversation id under the cursor.
func (s *Sidebar) CursorConversation() string {
	if s.cursor >= 0 && s.cursor < len(s.flat) {
		return s.flat[s.cursor]
	}
	return ""
}

// View renders the grouped list with the active selection highlighted.
func (s *Sidebar) View(groups []session.ConversationGroup, selectedID string, now time.Time) string {
	if !s.visible {
		return ""
	}

	s.flat = s.flat[:0]
	var sb strings.Builder
	itemWidth := s.Width - 4

	for _, g := range groups {
		sb.WriteString(s.theme.SidebarGroupLabel.Render(string(g.Label)))
		sb.WriteString("\n")

		for _, conv := range g.Conversations {
			idx := len(s.flat)
			s.flat = append(s.flat, conv.ID)

			title := util.TruncateWidth(conv.GetTitle(), itemWidth)
			style := s.theme.SidebarItem
			switch {
			case idx == s.cursor:
				style = s.theme.SidebarItemSelected
			case conv.IsPlaceholder():
				style = s.theme.SidebarItemLocal
			}

			marker := " "
			if conv.ID == selectedID {
				marker = ">"
			}
			sb.WriteString(style.Render(marker + title))
			sb.WriteString("\n")
		}
	}

	if len(s.flat) == 0 {
		sb.WriteString(s.theme.SidebarItem.Render("no conversations"))
	}

	return s.theme.Sidebar.
		Width(s.Width).
		Height(s.Height).
		Render(sb.String())
}
