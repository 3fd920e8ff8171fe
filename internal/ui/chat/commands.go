// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the conversational view of the TUI.
//
// This file implements the slash commands typed into the input line.
package chat

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/flowvo-tui/internal/export"
	"github.com/jeranaias/flowvo-tui/internal/ui/components"
)

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// runCommand executes one slash command line.
func (m Model) runCommand(line string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(line)
	name := strings.TrimPrefix(fields[0], "/")
	args := fields[1:]

	switch name {
	case "new":
		m.store.Create()
		m.follow.Pin()
		m.refreshTranscript()
		m.refreshChrome()
		return m, nil

	case "rename":
		if len(args) == 0 {
			return m, m.toast("usage: /rename <title>", components.ToastWarning)
		}
		selected := m.store.Selected()
		if selected == "" {
			return m, m.toast("no conversation selected", components.ToastWarning)
		}
		return m, m.renameCmd(selected, strings.Join(args, " "))

	case "model":
		if len(args) == 0 {
			return m, m.toast(m.modelCatalogText(), components.ToastInfo)
		}
		selected := m.store.Selected()
		if selected == "" {
			return m, m.toast("no conversation selected", components.ToastWarning)
		}
		return m, m.setModelCmd(selected, args[0])

	case "models":
		return m, m.toast(m.modelCatalogText(), components.ToastInfo)

	case "agent":
		if len(args) == 0 {
			return m, m.toast(m.agentCatalogText(), components.ToastInfo)
		}
		selected := m.store.Selected()
		if selected == "" {
			return m, m.toast("no conversation selected", components.ToastWarning)
		}
		return m, m.setAgentCmd(selected, args[0])

	case "agents":
		return m, m.toast(m.agentCatalogText(), components.ToastInfo)

	case "attach":
		if len(args) == 0 {
			return m, m.toast("usage: /attach <path> [path...]", components.ToastWarning)
		}
		return m, m.attachCmd(args)

	case "clear":
		m.staged = nil
		m.viewport.Height = m.transcriptHeight()
		return m, m.toast("staged attachments cleared", components.ToastInfo)

	case "export":
		format := "markdown"
		if len(args) > 0 {
			format = args[0]
		}
		return m, m.exportCmd(format)

	case "delete":
		selected := m.store.Selected()
		if selected == "" {
			return m, m.toast("no conversation selected", components.ToastWarning)
		}
		m.confirmDelete = selected
		return m, m.toast("press y to delete this conversation", components.ToastWarning)

	case "stop":
		return m.stopSelected()

	case "help":
		return m, m.toast(helpText, components.ToastInfo)
	}

	return m, m.toast("unknown command: /"+name, components.ToastWarning)
}

const helpText = "/new /rename /model /agent /attach /clear /export /delete /stop"

// =============================================================================
// COMMAND HELPERS
// =============================================================================

func (m Model) modelCatalogText() string {
	if len(m.models) == 0 {
		return "no models available"
	}
	ids := make([]string, 0, len(m.models))
	for _, info := range m.models {
		id := info.ID
		if info.VisionSupported {
			id += " (vision)"
		}
		ids = append(ids, id)
	}
	return "models: " + strings.Join(ids, ", ")
}

func (m Model) agentCatalogText() string {
	if len(m.agents) == 0 {
		return "no agents available"
	}
	ids := make([]string, 0, len(m.agents))
	for _, info := range m.agents {
		ids = append(ids, info.Name)
	}
	return "agents: " + strings.Join(ids, ", ")
}

// exportCmd writes the selected conversation's transcript to disk.
func (m Model) exportCmd(format string) tea.Cmd {
	conv, ok := m.store.SelectedConversation()
	if !ok {
		return m.toast("no conversation selected", components.ToastWarning)
	}
	msgs := m.lifecycle.Messages(conv.ID)
	if len(msgs) == 0 {
		return m.toast("nothing to export", components.ToastWarning)
	}

	opts := export.DefaultOptions()
	if m.exportDir != "" {
		opts.OutputDir = m.exportDir
	}

	var exporter export.Exporter
	switch format {
	case "json":
		exporter = export.NewJSONExporter()
	case "markdown", "md":
		exporter = export.NewMarkdownExporter(opts)
	default:
		return m.toast("unknown export format: "+format, components.ToastWarning)
	}

	return func() tea.Msg {
		path, err := export.ExportToFile(exporter, opts, conv, msgs)
		return ExportDoneMsg{Path: path, Err: err}
	}
}
