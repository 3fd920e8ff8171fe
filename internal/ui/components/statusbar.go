// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/flowvo-tui/internal/ui/styles"
)

// =============================================================================
// STATUS BAR COMPONENT
// =============================================================================

// Status is the activity shown at the left of the bar.
type Status int

const (
	// StatusReady accepts input
	StatusReady Status = iota
	// StatusSending awaits the server
	StatusSending
	// StatusRevealing is animating a reply
	StatusRevealing
	// StatusLoading fetches history or lists
	StatusLoading
	// StatusError shows the last failure
	StatusError
)

// String returns the display string for the status.
func (s Status) String() string {
	switch s {
	case StatusReady:
		return "Ready"
	case StatusSending:
		return "Sending..."
	case StatusRevealing:
		return "Replying..."
	case StatusLoading:
		return "Loading..."
	case StatusError:
		return "Error"
	default:
		return "Unknown"
	}
}

// StatusBar is the bottom bar: activity, model, agent, key hints.
type StatusBar struct {
	Status Status
	Model  string
	Agent  string
	Width  int
	theme  *styles.Theme
}

// NewStatusBar creates a status bar.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{Width: 80, theme: theme}
}

// shortcuts shown on the right, trimmed when the bar runs out of room.
var shortcuts = [][2]string{
	{"ctrl+n", "new"},
	{"esc", "stop"},
	{"ctrl+e", "export"},
	{"ctrl+c", "quit"},
}

// View renders the bar across the full width.
func (b *StatusBar) View() string {
	left := b.Status.String()
	if b.Model != "" {
		left += "  " + b.theme.StatusModel.Render(b.Model)
	}
	if b.Agent != "" {
		left += " " + b.theme.StatusAgent.Render("@"+b.Agent)
	}

	var hints []string
	for _, sc := range shortcuts {
		hints = append(hints,
			b.theme.ShortcutKey.Render(sc[0])+" "+b.theme.ShortcutDesc.Render(sc[1]))
	}
	right := strings.Join(hints, "  ")

	gap := b.Width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		right = ""
		gap = 1
	}

	return b.theme.StatusBar.Width(b.Width).Render(
		left + strings.Repeat(" ", gap) + right)
}
