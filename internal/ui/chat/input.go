// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the conversational view of the TUI.
package chat

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/flowvo-tui/internal/session"
	"github.com/jeranaias/flowvo-tui/internal/ui/components"
)

// =============================================================================
// SUBMIT
// =============================================================================

// submit dispatches the input line: slash commands run locally,
// anything else becomes a send with the staged attachments.
func (m Model) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if strings.HasPrefix(text, "/") {
		m.input.Reset()
		return m.runCommand(text)
	}
	if text == "" && len(m.staged) == 0 {
		return m, nil
	}

	selected := m.store.Selected()
	if selected == "" {
		conv := m.store.Create()
		selected = conv.ID
	}

	pending, err := m.lifecycle.Send(selected, text, m.staged)
	if err != nil {
		return m, m.toast(sendErrorText(err), components.ToastWarning)
	}

	m.input.Reset()
	m.staged = nil
	m.viewport.Height = m.transcriptHeight()
	m.follow.Pin()
	m.refreshTranscript()
	m.viewport.GotoBottom()
	m.refreshChrome()
	return m, tea.Batch(m.performCmd(pending), m.spin.Tick)
}

// sendErrorText maps send rejections to user-facing wording.
func sendErrorText(err error) string {
	switch {
	case errors.Is(err, session.ErrEmptyPayload):
		return "nothing to send"
	case errors.Is(err, session.ErrSendInFlight):
		return "still waiting for the previous reply"
	case errors.Is(err, session.ErrVisionUnsupported):
		return "the selected model cannot read images; pick a vision model with /model"
	default:
		return err.Error()
	}
}
