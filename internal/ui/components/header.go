// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/flowvo-tui/internal/ui/styles"
	"github.com/jeranaias/flowvo-tui/internal/util"
)

// =============================================================================
// HEADER COMPONENT
// =============================================================================

// Header is the title bar: brand, active conversation, draft marker.
type Header struct {
	Title       string
	Placeholder bool
	Width       int
	theme       *styles.Theme
}

// NewHeader creates a header.
func NewHeader(theme *styles.Theme) *Header {
	return &Header{
		Title: "flowvo",
		Width: 80,
		theme: theme,
	}
}

// SetConversation records the active conversation title and whether it
// is still an unsaved draft.
func (h *Header) SetConversation(title string, placeholder bool) {
	h.Title = title
	h.Placeholder = placeholder
}

// View renders the header line.
func (h *Header) View() string {
	brand := h.theme.Header.Render("flowvo")

	title := util.TruncateWidth(h.Title, h.Width/2)
	titleView := h.theme.HeaderTitle.Render(title)
	if h.Placeholder {
		titleView += " " + h.theme.HeaderSubtitle.Render("(draft)")
	}

	return lipgloss.JoinHorizontal(lipgloss.Center, brand, "  ", titleView)
}
