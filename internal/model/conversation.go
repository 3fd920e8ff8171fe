// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations, messages,
// and attachments.
package model

import (
	"time"
)

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// DefaultModel is the model preselected for new conversations.
const DefaultModel = "deepseek-chat"

// DefaultAgent is the agent preselected for new conversations.
const DefaultAgent = "default"

// SourceChat tags conversations created from the chat surface.
const SourceChat = "chat"

// Conversation holds chat session metadata. Messages are kept separately
// by the session store; a Conversation is list-level state only.
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Model     string    `json:"model,omitempty"`
	Agent     string    `json:"service,omitempty"`
	Source    string    `json:"source,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewPlaceholder creates a local placeholder conversation. It exists only
// in client state until the first message is sent; no network call is made.
func NewPlaceholder() Conversation {
	now := time.Now()
	return Conversation{
		ID:        NewLocalID(),
		Title:     "New Chat",
		Model:     DefaultModel,
		Agent:     DefaultAgent,
		Source:    SourceChat,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsPlaceholder reports whether the conversation has never been persisted.
func (c *Conversation) IsPlaceholder() bool {
	return IsLocalID(c.ID)
}

// GetTitle returns the conversation title or a default.
func (c *Conversation) GetTitle() string {
	if c.Title != "" {
		return c.Title
	}
	return "New Chat"
}

// =============================================================================
// MODEL AND AGENT TYPES
// =============================================================================

// ModelInfo describes a selectable chat model as reported by the server.
type ModelInfo struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description,omitempty"`
	Provider        string `json:"provider,omitempty"`
	VisionSupported bool   `json:"visionSupported"`
}

// AgentInfo describes a selectable agent/service.
type AgentInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Status      string `json:"status,omitempty"`
}

// =============================================================================
// DATE GROUPING
// =============================================================================

// DateGroup is a sidebar bucket for the conversation list.
type DateGroup string

const (
	GroupToday     DateGroup = "Today"
	GroupYesterday DateGroup = "Yesterday"
	GroupWeek      DateGroup = "Previous 7 days"
	GroupOlder     DateGroup = "Older"
)

// DateGroupOf buckets a creation time relative to now.
func DateGroupOf(t, now time.Time) DateGroup {
	day := func(t time.Time) time.Time {
		y, m, d := t.Local().Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
	}

	msgDay := day(t)
	today := day(now)

	switch {
	case msgDay.Equal(today):
		return GroupToday
	case msgDay.Equal(today.AddDate(0, 0, -1)):
		return GroupYesterday
	case !msgDay.Before(today.AddDate(0, 0, -7)):
		return GroupWeek
	default:
		return GroupOlder
	}
}

// GroupOrder is the display order of sidebar buckets.
var GroupOrder = []DateGroup{GroupToday, GroupYesterday, GroupWeek, GroupOlder}
