// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the conversational view of the TUI.
package chat

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/flowvo-tui/internal/ingest"
	"github.com/jeranaias/flowvo-tui/internal/session"
	"github.com/jeranaias/flowvo-tui/internal/ui/components"
)

// =============================================================================
// COMMAND CREATORS
// =============================================================================

func sendSlot(tempID string) string {
	return "send:" + tempID
}

func (m Model) loadConversationsCmd() tea.Cmd {
	store := m.store
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), backendTimeout)
		defer cancel()
		return ConversationsLoadedMsg{Err: store.Load(ctx)}
	}
}

func (m Model) loadModelsCmd() tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), backendTimeout)
		defer cancel()
		models, err := backend.ListModels(ctx)
		return ModelsLoadedMsg{Models: models, Err: err}
	}
}

func (m Model) loadAgentsCmd() tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), backendTimeout)
		defer cancel()
		agents, err := backend.ListAgents(ctx)
		return AgentsLoadedMsg{Agents: agents, Err: err}
	}
}

func (m Model) selectCmd(id string) tea.Cmd {
	store := m.store
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), backendTimeout)
		defer cancel()
		return HistoryLoadedMsg{ConversationID: id, Err: store.Select(ctx, id)}
	}
}

// performCmd runs the send worker. The registry handle lets Esc cancel
// the worker's context; a superseded or stopped worker's outcome is
// discarded by Resolve.
func (m Model) performCmd(p *session.PendingSend) tea.Cmd {
	slot := sendSlot(p.TempID)
	handle, ctx := m.registry.Begin(context.Background(), slot)
	lifecycle, registry := m.lifecycle, m.registry
	tempID := p.TempID
	return func() tea.Msg {
		out := lifecycle.Perform(ctx, tempID)
		registry.Finish(slot, handle.ID())
		return SendOutcomeMsg{Outcome: out}
	}
}

func (m Model) revealTickCmd(conversationID string) tea.Cmd {
	return tea.Tick(m.engine.Interval(), func(time.Time) tea.Msg {
		return RevealTickMsg{ConversationID: conversationID}
	})
}

func (m Model) attachCmd(paths []string) tea.Cmd {
	pipeline := m.pipeline
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), backendTimeout)
		defer cancel()
		return IngestResultMsg{Results: pipeline.IngestAll(ctx, paths)}
	}
}

// watchCmd blocks on the drop folder channel and re-arms after each
// event. Open reports whether the channel is still live.
func watchCmd(w *ingest.Watcher) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-w.Events()
		return WatchEventMsg{Event: ev, Open: ok}
	}
}

func (m Model) renameCmd(id, title string) tea.Cmd {
	store := m.store
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), backendTimeout)
		defer cancel()
		return ConversationUpdatedMsg{Field: "title", Err: store.Rename(ctx, id, title)}
	}
}

func (m Model) setModelCmd(id, modelID string) tea.Cmd {
	store := m.store
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), backendTimeout)
		defer cancel()
		return ConversationUpdatedMsg{Field: "model", Err: store.SetModel(ctx, id, modelID)}
	}
}

func (m Model) setAgentCmd(id, agent string) tea.Cmd {
	store := m.store
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), backendTimeout)
		defer cancel()
		return ConversationUpdatedMsg{Field: "agent", Err: store.SetAgent(ctx, id, agent)}
	}
}

func (m Model) deleteCmd(id string) tea.Cmd {
	store := m.store
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), backendTimeout)
		defer cancel()
		return ConversationDeletedMsg{ConversationID: id, Err: store.Remove(ctx, id)}
	}
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles all Bubble Tea messages for the chat view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.handleResize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case ConversationsLoadedMsg:
		if msg.Err != nil {
			return m, m.toast("loading conversations failed: "+msg.Err.Error(), components.ToastError)
		}
		m.refreshChrome()
		if m.store.Selected() == "" {
			if convs := m.store.Conversations(); len(convs) > 0 {
				return m, m.selectCmd(convs[0].ID)
			}
		}
		return m, nil

	case HistoryLoadedMsg:
		if msg.Err != nil {
			return m, m.toast("loading messages failed: "+msg.Err.Error(), components.ToastError)
		}
		m.follow.Pin()
		m.refreshTranscript()
		m.viewport.GotoBottom()
		m.refreshChrome()
		return m, nil

	case ModelsLoadedMsg:
		if msg.Err != nil {
			return m, m.toast("loading models failed: "+msg.Err.Error(), components.ToastWarning)
		}
		m.models = msg.Models
		m.lifecycle.SetModels(msg.Models)
		return m, nil

	case AgentsLoadedMsg:
		if msg.Err == nil {
			m.agents = msg.Agents
		}
		return m, nil

	case SendOutcomeMsg:
		return m.handleOutcome(msg.Outcome)

	case RevealTickMsg:
		return m.handleRevealTick(msg.ConversationID)

	case IngestResultMsg:
		return m.handleIngestResults(msg.Results)

	case WatchEventMsg:
		return m.handleWatchEvent(msg)

	case ConversationUpdatedMsg:
		m.refreshChrome()
		if msg.Err != nil {
			return m, m.toast("updating "+msg.Field+" failed: "+msg.Err.Error(), components.ToastError)
		}
		return m, m.toast(msg.Field+" updated", components.ToastSuccess)

	case ConversationDeletedMsg:
		m.refreshTranscript()
		m.refreshChrome()
		if msg.Err != nil {
			return m, m.toast("deleting conversation failed: "+msg.Err.Error(), components.ToastError)
		}
		return m, m.toast("conversation deleted", components.ToastSuccess)

	case ExportDoneMsg:
		if msg.Err != nil {
			return m, m.toast("export failed: "+msg.Err.Error(), components.ToastError)
		}
		return m, m.toast("exported to "+msg.Path, components.ToastSuccess)

	case components.ToastExpiredMsg:
		m.toasts.Expire(msg.ID)
		return m, nil

	case spinner.TickMsg:
		if m.statusBar.Status == components.StatusSending {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// MESSAGE HANDLERS
// =============================================================================

func (m Model) handleOutcome(out session.Outcome) (tea.Model, tea.Cmd) {
	res := m.lifecycle.Resolve(out)
	m.refreshChrome()
	switch {
	case res.Discarded:
		return m, nil
	case res.RolledBack:
		m.refreshTranscript()
		return m, m.toast("send failed: "+res.Err.Error(), components.ToastError)
	default:
		m.refreshTranscript()
		if res.AssistantID != "" {
			return m, m.revealTickCmd(res.ConversationID)
		}
		return m, nil
	}
}

func (m Model) handleRevealTick(conversationID string) (tea.Model, tea.Cmd) {
	tick, ok := m.engine.Advance(conversationID)
	if !ok {
		m.refreshChrome()
		return m, nil
	}
	if conversationID == m.store.Selected() {
		m.refreshTranscript()
	}
	if tick.Done {
		m.refreshChrome()
		return m, nil
	}
	return m, m.revealTickCmd(conversationID)
}

func (m Model) handleIngestResults(results []ingest.Result) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	for _, res := range results {
		if res.Err != nil {
			cmds = append(cmds, m.toast(res.Path+": "+res.Err.Error(), components.ToastError))
			continue
		}
		m.staged = append(m.staged, res.Attachment)
	}
	m.viewport.Height = m.transcriptHeight()
	return m, tea.Batch(cmds...)
}

func (m Model) handleWatchEvent(msg WatchEventMsg) (tea.Model, tea.Cmd) {
	if !msg.Open {
		return m, nil
	}
	rearm := watchCmd(m.watcher)
	if msg.Event.Err != nil {
		return m, tea.Batch(rearm, m.toast(msg.Event.Path+": "+msg.Event.Err.Error(), components.ToastWarning))
	}
	m.staged = append(m.staged, msg.Event.Attachment)
	m.viewport.Height = m.transcriptHeight()
	return m, tea.Batch(rearm, m.toast("attached "+msg.Event.Attachment.Name, components.ToastInfo))
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// A pending delete intercepts everything until answered.
	if m.confirmDelete != "" {
		id := m.confirmDelete
		m.confirmDelete = ""
		if msg.String() == "y" {
			return m, m.deleteCmd(id)
		}
		return m, m.toast("deletion cancelled", components.ToastInfo)
	}

	switch {
	case key.Matches(msg, m.keyMap.Quit):
		m.quitting = true
		m.registry.StopAll()
		return m, tea.Quit

	case key.Matches(msg, m.keyMap.Stop):
		if m.focus == focusSidebar {
			m.focus = focusInput
			m.input.Focus()
			return m, nil
		}
		return m.stopSelected()

	case key.Matches(msg, m.keyMap.NewConv):
		m.store.Create()
		m.follow.Pin()
		m.refreshTranscript()
		m.refreshChrome()
		return m, nil

	case key.Matches(msg, m.keyMap.Export):
		return m, m.exportCmd("markdown")

	case key.Matches(msg, m.keyMap.Sidebar):
		m.sidebar.Toggle()
		if !m.sidebar.Visible() && m.focus == focusSidebar {
			m.focus = focusInput
			m.input.Focus()
		}
		m.handleResize(m.width, m.height)
		return m, nil

	case key.Matches(msg, m.keyMap.FocusNext):
		if m.sidebar.Visible() {
			if m.focus == focusInput {
				m.focus = focusSidebar
				m.input.Blur()
			} else {
				m.focus = focusInput
				m.input.Focus()
			}
		}
		return m, nil

	case key.Matches(msg, m.keyMap.PageUp):
		m.viewport.HalfViewUp()
		m.syncFollow()
		return m, nil

	case key.Matches(msg, m.keyMap.PageDown):
		m.viewport.HalfViewDown()
		m.syncFollow()
		return m, nil

	case key.Matches(msg, m.keyMap.JumpBottom):
		m.follow.JumpToBottom()
		m.follow.ConsumeJump()
		m.viewport.GotoBottom()
		return m, nil
	}

	if m.focus == focusSidebar {
		return m.handleSidebarKey(msg)
	}

	if key.Matches(msg, m.keyMap.Submit) {
		return m.submit()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		m.sidebar.MoveCursor(-1)
	case "down", "j":
		m.sidebar.MoveCursor(1)
	case "enter":
		if id := m.sidebar.CursorConversation(); id != "" && id != m.store.Selected() {
			return m, m.selectCmd(id)
		}
	case "d":
		if id := m.sidebar.CursorConversation(); id != "" {
			m.confirmDelete = id
			return m, m.toast("press y to delete this conversation", components.ToastWarning)
		}
	}
	return m, nil
}

// stopSelected applies the single stop control: an in-flight send is
// abandoned first, otherwise the active reveal settles.
func (m Model) stopSelected() (tea.Model, tea.Cmd) {
	selected := m.store.Selected()
	if selected == "" {
		return m, nil
	}
	tempID := m.lifecycle.SendingID(selected)
	switch m.lifecycle.Stop(selected) {
	case session.StopSend:
		if tempID != "" {
			m.registry.Stop(sendSlot(tempID))
		}
		m.refreshTranscript()
		m.refreshChrome()
		return m, m.toast("send stopped", components.ToastInfo)
	case session.StopReveal:
		// The next tick settles the full text; nothing to re-render yet.
		m.refreshChrome()
		return m, nil
	default:
		return m, nil
	}
}

func (m *Model) toast(message string, kind components.ToastKind) tea.Cmd {
	return m.toasts.Push(components.NewToast(message, kind))
}
