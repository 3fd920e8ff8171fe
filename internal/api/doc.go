// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the FlowVo chat backend.
//
// The client covers the conversation, message, vision, model, and agent
// endpoints under /pixel_chat. Every call takes a context, attaches a
// bearer credential from the injected TokenSource, and classifies
// failures into the error kinds the session layer acts on (auth, server,
// network).
//
// The client never retries sends: a timed-out send surfaces as a network
// error and the caller rolls back, the same as any other failure.
package api
