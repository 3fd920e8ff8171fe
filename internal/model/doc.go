// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations, messages,
// and attachments.
//
// # Key Types
//
//   - Conversation: chat session metadata (title, model, agent, source)
//   - Message: single message with role, content, timestamp, attachments
//   - Attachment: ingested file carried by an outgoing message
//   - Role: message role enumeration (user, assistant, system)
//   - MessageStatus: delivery state (processing, completed, failed)
//
// # Identifier namespaces
//
// Identifiers are server-assigned. Entities created locally before the
// server has confirmed them (optimistic messages, placeholder
// conversations) use the disjoint "local-" namespace:
//
//	msg := model.NewUserMessage(convID, "Hello!", nil)
//	msg.IsLocal()        // true
//	msg.Reconcile("m42") // replace the local id with the server's
//
// A local id is never reused and never collides with a server id, so
// reconciliation can always match by id rather than by position.
package model
