// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/flowvo-tui/internal/model"
	"github.com/jeranaias/flowvo-tui/internal/ui/styles"
	"github.com/jeranaias/flowvo-tui/internal/util"
)

// =============================================================================
// MESSAGE RENDERER
// =============================================================================

// MessageRenderer renders message bubbles for the transcript viewport.
type MessageRenderer struct {
	theme    *styles.Theme
	markdown *MarkdownRenderer
	width    int
}

// NewMessageRenderer creates a renderer for the given width.
func NewMessageRenderer(theme *styles.Theme, width int) *MessageRenderer {
	return &MessageRenderer{
		theme:    theme,
		markdown: NewMarkdownRenderer(width - 8),
		width:    width,
	}
}

// SetWidth adjusts wrapping for a resized terminal.
func (r *MessageRenderer) SetWidth(width int) {
	r.width = width
	r.markdown.SetWidth(width - 8)
}

// Render renders one message. While revealing, the partially revealed
// prefix replaces the content and is rendered plain; running partial
// markdown through glamour flickers on half-closed fences.
func (r *MessageRenderer) Render(msg *model.Message, revealing bool, visible string) string {
	bubbleWidth := r.width - 8
	if bubbleWidth < 20 {
		bubbleWidth = 20
	}

	var body string
	switch {
	case revealing:
		body = visible
	case msg.Role == model.RoleAssistant:
		body = strings.TrimRight(r.markdown.Render(msg.Content), "\n")
	default:
		body = msg.Content
	}

	var bubble lipgloss.Style
	switch msg.Role {
	case model.RoleUser:
		bubble = r.theme.UserBubble
	case model.RoleAssistant:
		bubble = r.theme.AssistantBubble
	default:
		bubble = r.theme.SystemBubble
	}

	header := r.theme.MessageMeta.Render(msg.Role.DisplayName())
	if !msg.CreatedAt.IsZero() {
		header += " " + r.theme.MessageMeta.Render(util.FormatClock(msg.CreatedAt))
	}
	if msg.Status == model.StatusProcessing && msg.Role == model.RoleUser {
		header += " " + r.theme.MessagePending.Render("sending")
	}

	out := header + "\n" + bubble.MaxWidth(bubbleWidth).Render(body)

	if atts := MessageAttachmentLines(r.theme, msg.Attachments); atts != "" {
		out += "\n" + atts
	}
	return out
}

// RenderTranscript renders the whole message list, separating bubbles
// with blank lines. activeID and visible carry the in-flight reveal.
func (r *MessageRenderer) RenderTranscript(msgs []*model.Message, activeID, visible string) string {
	var parts []string
	for _, msg := range msgs {
		revealing := activeID != "" && msg.ID == activeID
		override := ""
		if revealing {
			override = visible
		}
		parts = append(parts, r.Render(msg, revealing, override))
	}
	return strings.Join(parts, "\n\n")
}
