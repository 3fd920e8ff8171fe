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
// ATTACHMENT STRIP
// =============================================================================

// kindIcon marks the attachment class in a chip.
func kindIcon(kind model.AttachmentKind) string {
	switch kind {
	case model.AttachmentImage:
		return "img"
	case model.AttachmentOffice:
		return "doc"
	case model.AttachmentCode:
		return "code"
	default:
		return "txt"
	}
}

// AttachmentStrip shows the draft's staged files above the input, one
// chip per file with name and size.
type AttachmentStrip struct {
	Width int
	theme *styles.Theme
}

// NewAttachmentStrip creates a strip.
func NewAttachmentStrip(theme *styles.Theme) *AttachmentStrip {
	return &AttachmentStrip{Width: 80, theme: theme}
}

// View renders the chips, or "" with no staged files.
func (s *AttachmentStrip) View(attachments []model.Attachment) string {
	if len(attachments) == 0 {
		return ""
	}

	var chips []string
	for _, att := range attachments {
		label := kindIcon(att.Kind) + " " +
			util.TruncateWidth(att.Name, 24) + " " +
			s.theme.AttachmentChipMeta.Render(util.FormatBytes(att.Size))
		chips = append(chips, s.theme.AttachmentChip.Render(label))
	}

	row := lipgloss.JoinHorizontal(lipgloss.Center, chips...)
	if lipgloss.Width(row) > s.Width {
		// Collapse to a count when the chips overflow the line.
		return s.theme.AttachmentChip.Render(
			util.IntToString(len(attachments)) + " files attached")
	}
	return row
}

// MessageAttachmentLines renders attachment summaries under a sent
// message bubble.
func MessageAttachmentLines(theme *styles.Theme, attachments []model.Attachment) string {
	if len(attachments) == 0 {
		return ""
	}
	var lines []string
	for _, att := range attachments {
		lines = append(lines, theme.MessageMeta.Render(
			"· "+kindIcon(att.Kind)+" "+att.Name+" ("+util.FormatBytes(att.Size)+")"))
	}
	return strings.Join(lines, "\n")
}
