// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the conversational view of the TUI.
//
// This file defines all Bubble Tea message types used by the chat
// interface. Messages fall into the following categories:
//   - Backend: conversation list, history, model and agent catalogs
//   - Sending: send outcomes delivered from the worker goroutine
//   - Reveal: timer ticks driving incremental assistant replies
//   - Attachments: ingestion results and drop-folder events
//   - Maintenance: rename/model/agent updates, deletion, export
package chat

import (
	"github.com/jeranaias/flowvo-tui/internal/ingest"
	"github.com/jeranaias/flowvo-tui/internal/model"
	"github.com/jeranaias/flowvo-tui/internal/session"
)

// =============================================================================
// BACKEND MESSAGES
// =============================================================================

// ConversationsLoadedMsg carries the refreshed conversation list.
type ConversationsLoadedMsg struct {
	Err error
}

// HistoryLoadedMsg signals that a conversation's messages finished
// loading into the session layer.
type HistoryLoadedMsg struct {
	ConversationID string
	Err            error
}

// ModelsLoadedMsg carries the chat model catalog.
type ModelsLoadedMsg struct {
	Models []model.ModelInfo
	Err    error
}

// AgentsLoadedMsg carries the agent catalog.
type AgentsLoadedMsg struct {
	Agents []model.AgentInfo
	Err    error
}

// =============================================================================
// SEND AND REVEAL MESSAGES
// =============================================================================

// SendOutcomeMsg delivers the raw result of a send worker. The update
// loop resolves it against the lifecycle on the UI goroutine.
type SendOutcomeMsg struct {
	Outcome session.Outcome
}

// RevealTickMsg advances the incremental reveal of one conversation by
// a single step.
type RevealTickMsg struct {
	ConversationID string
}

// =============================================================================
// ATTACHMENT MESSAGES
// =============================================================================

// IngestResultMsg carries the per-file results of an attach command.
type IngestResultMsg struct {
	Results []ingest.Result
}

// WatchEventMsg carries one file picked up from the drop folder.
type WatchEventMsg struct {
	Event ingest.WatchEvent
	Open  bool
}

// =============================================================================
// MAINTENANCE MESSAGES
// =============================================================================

// ConversationUpdatedMsg reports a rename, model, or agent change.
type ConversationUpdatedMsg struct {
	Field string
	Err   error
}

// ConversationDeletedMsg reports the result of a deletion.
type ConversationDeletedMsg struct {
	ConversationID string
	Err            error
}

// ExportDoneMsg reports where a transcript export landed.
type ExportDoneMsg struct {
	Path string
	Err  error
}
