// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations, messages,
// and attachments.
package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	case RoleSystem:
		return "System"
	default:
		return string(r)
	}
}

// Valid reports whether the role is one of the known variants.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// =============================================================================
// MESSAGE STATUS
// =============================================================================

// MessageStatus represents the delivery state of a message.
type MessageStatus string

const (
	// StatusProcessing: optimistically inserted, awaiting the server.
	StatusProcessing MessageStatus = "processing"

	// StatusCompleted: confirmed by the server (or fully revealed).
	StatusCompleted MessageStatus = "completed"

	// StatusFailed: the send failed; the message is about to be rolled back.
	StatusFailed MessageStatus = "failed"
)

// String returns the string representation of the status.
func (s MessageStatus) String() string {
	return string(s)
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// LocalIDPrefix marks identifiers generated on this client. The namespace
// is disjoint from server-assigned ids so reconciliation can match by id.
const LocalIDPrefix = "local-"

// Message represents a single message in a conversation.
//
// A message is never mutated after creation except for id reconciliation
// (Reconcile) and status transitions; content and attachments are fixed at
// insert time.
type Message struct {
	ID             string        `json:"id"`
	ConversationID string        `json:"conversationId"`
	Role           Role          `json:"role"`
	Content        string        `json:"content"`
	CreatedAt      time.Time     `json:"createdAt"`
	Status         MessageStatus `json:"-"`

	// Attachments carried by an outgoing user message, in selection order.
	Attachments []Attachment `json:"attachments,omitempty"`
}

// NewMessage creates a message with a freshly generated local id.
func NewMessage(conversationID string, role Role, content string) *Message {
	return &Message{
		ID:             NewLocalID(),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		CreatedAt:      time.Now(),
		Status:         StatusCompleted,
	}
}

// NewUserMessage creates an outgoing user message in the processing state.
// Attachment contents are stripped for display: the payload travels to the
// server, the UI only ever shows name and size.
func NewUserMessage(conversationID, content string, attachments []Attachment) *Message {
	msg := NewMessage(conversationID, RoleUser, content)
	msg.Status = StatusProcessing
	if len(attachments) > 0 {
		display := make([]Attachment, len(attachments))
		for i, att := range attachments {
			display[i] = att.WithoutPayload()
		}
		msg.Attachments = display
	}
	return msg
}

// NewAssistantMessage creates an assistant reply message.
func NewAssistantMessage(conversationID, content string) *Message {
	return NewMessage(conversationID, RoleAssistant, content)
}

// NewLocalID generates an identifier in the local namespace.
func NewLocalID() string {
	return LocalIDPrefix + uuid.NewString()
}

// IsLocalID reports whether id belongs to the local namespace.
func IsLocalID(id string) bool {
	return strings.HasPrefix(id, LocalIDPrefix)
}

// IsLocal reports whether the message still carries a local id.
func (m *Message) IsLocal() bool {
	return IsLocalID(m.ID)
}

// Reconcile replaces the message's local id with the server-assigned one.
// Reconciling an already-reconciled message is a no-op.
func (m *Message) Reconcile(serverID string) {
	if serverID == "" || !m.IsLocal() {
		return
	}
	m.ID = serverID
	m.Status = StatusCompleted
}

// Retarget moves the message to a different conversation id. Used once,
// when a placeholder conversation becomes durable before the first send.
func (m *Message) Retarget(conversationID string) {
	m.ConversationID = conversationID
}

// Preview returns a truncated single-line preview of the message content.
func (m *Message) Preview(maxRunes int) string {
	content := strings.ReplaceAll(m.Content, "\n", " ")
	runes := []rune(content)
	if len(runes) <= maxRunes {
		return content
	}
	if maxRunes <= 3 {
		return string(runes[:maxRunes])
	}
	return string(runes[:maxRunes-3]) + "..."
}

// IsEmpty reports whether the message has no content and no attachments.
func (m *Message) IsEmpty() bool {
	return strings.TrimSpace(m.Content) == "" && len(m.Attachments) == 0
}

// HasImageAttachment reports whether any attachment is an image.
func (m *Message) HasImageAttachment() bool {
	for _, att := range m.Attachments {
		if att.Kind == AttachmentImage {
			return true
		}
	}
	return false
}
