// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the FlowVo chat backend.
package api

import (
	"context"

	"github.com/jeranaias/flowvo-tui/internal/model"
)

// =============================================================================
// REQUEST / RESPONSE TYPES
// =============================================================================

// CreateConversationRequest is the payload for POST /pixel_chat/conversations.
type CreateConversationRequest struct {
	Title  string `json:"title"`
	Model  string `json:"model,omitempty"`
	Agent  string `json:"service,omitempty"`
	Source string `json:"source,omitempty"`
}

// UpdateConversationRequest is the payload for PUT
// /pixel_chat/conversations/{id}/title. The endpoint handles title, model,
// and agent updates; unset fields are left unchanged.
type UpdateConversationRequest struct {
	Title string `json:"title,omitempty"`
	Model string `json:"model,omitempty"`
	Agent string `json:"service,omitempty"`
}

// SendMessageRequest is the payload for POST /pixel_chat/send.
// Attachments travel as a JSON-encoded array string, matching the
// backend's ChatRequestDTO.
type SendMessageRequest struct {
	ConversationID string `json:"conversationId"`
	Message        string `json:"message"`
	Attachments    string `json:"attachments,omitempty"`
}

// SendMessageResponse is the agent reply for a general send.
type SendMessageResponse struct {
	AssistantReply string `json:"assistantReply"`

	// MessageID is the server id assigned to the user message, used to
	// reconcile the optimistic insert.
	MessageID string `json:"messageId,omitempty"`

	Status string `json:"status,omitempty"`
	Error  string `json:"error,omitempty"`
}

// VisionRequest describes an image recognition call. The image itself is
// sent as a multipart part alongside these fields.
type VisionRequest struct {
	ConversationID string
	Message        string
	Model          string

	// Image payload.
	FileName string
	MIME     string
	Data     []byte
}

// VisionResponse is the reply from POST /pixel_chat/vision/chat.
type VisionResponse struct {
	AssistantReply string `json:"assistantReply"`
	Model          string `json:"model,omitempty"`
	Success        bool   `json:"success"`
	Error          string `json:"error,omitempty"`
}

// apiErrorResponse is the backend's error body shape.
type apiErrorResponse struct {
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// =============================================================================
// CLIENT-FACING INTERFACE
// =============================================================================

// Backend is the surface the session layer consumes. *Client implements
// it; tests substitute fakes.
type Backend interface {
	ListConversations(ctx context.Context) ([]model.Conversation, error)
	CreateConversation(ctx context.Context, req CreateConversationRequest) (*model.Conversation, error)
	UpdateConversation(ctx context.Context, id string, req UpdateConversationRequest) (*model.Conversation, error)
	DeleteConversation(ctx context.Context, id string) error
	ListMessages(ctx context.Context, conversationID string) ([]*model.Message, error)
	SendMessage(ctx context.Context, req SendMessageRequest) (*SendMessageResponse, error)
	RecognizeImage(ctx context.Context, req VisionRequest) (*VisionResponse, error)
	ListModels(ctx context.Context) ([]model.ModelInfo, error)
	ListAgents(ctx context.Context) ([]model.AgentInfo, error)
}
