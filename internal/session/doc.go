// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session owns the canonical conversation and message state.
//
// Store holds the conversation list and the current selection. Lifecycle
// holds per-conversation message lists and runs the send state machine:
// optimistic insert, in-flight request, temp-id reconciliation or
// rollback, and handoff of the assistant reply to the reveal engine.
// All state is mutex-guarded; network calls run outside the locks.
package session
