// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/jeranaias/flowvo-tui/internal/model"
)

// Configuration constants for the FlowVo API.
const (
	// DefaultTimeout is generous because replies wait on model generation.
	DefaultTimeout = 60 * time.Second

	// MaxResponseSize bounds response bodies to prevent memory exhaustion.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB

	// requestsPerSecond paces outgoing calls; bursts cover the startup
	// fan-out (conversations + models + agents).
	requestsPerSecond = 5
	requestBurst      = 10
)

// sharedHTTPClient pools connections across all FlowVo requests.
var sharedHTTPClient = &http.Client{
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	},
	Timeout: DefaultTimeout,
}

// TokenSource supplies the bearer credential attached to every call.
// Token lifecycle (login, refresh, storage) is owned elsewhere; the
// client only reads.
type TokenSource interface {
	Token() (string, error)
}

// Client is an HTTP client for the FlowVo chat backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	limiter    *rate.Limiter
}

// NewClient creates a client rooted at baseURL. The token source may be
// nil for anonymous deployments; calls then go out without a credential.
func NewClient(baseURL string, tokens TokenSource) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: sharedHTTPClient,
		tokens:     tokens,
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), requestBurst),
	}
}

// SetHTTPClient overrides the underlying HTTP client (tests).
func (c *Client) SetHTTPClient(hc *http.Client) {
	c.httpClient = hc
}

// =============================================================================
// CONVERSATION OPERATIONS
// =============================================================================

// ListConversations fetches every conversation visible to the user.
func (c *Client) ListConversations(ctx context.Context) ([]model.Conversation, error) {
	var out []model.Conversation
	if err := c.doJSON(ctx, http.MethodGet, "/pixel_chat/conversations", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateConversation durably creates a conversation and returns the
// server's record, including its assigned id.
func (c *Client) CreateConversation(ctx context.Context, req CreateConversationRequest) (*model.Conversation, error) {
	var out model.Conversation
	if err := c.doJSON(ctx, http.MethodPost, "/pixel_chat/conversations", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateConversation updates title, model, or agent on a persisted
// conversation.
func (c *Client) UpdateConversation(ctx context.Context, id string, req UpdateConversationRequest) (*model.Conversation, error) {
	var out model.Conversation
	path := "/pixel_chat/conversations/" + id + "/title"
	if err := c.doJSON(ctx, http.MethodPut, path, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteConversation removes a conversation server-side.
func (c *Client) DeleteConversation(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/pixel_chat/conversations/"+id, nil, nil)
}

// =============================================================================
// MESSAGE OPERATIONS
// =============================================================================

// ListMessages fetches the full history of a conversation.
func (c *Client) ListMessages(ctx context.Context, conversationID string) ([]*model.Message, error) {
	var out []*model.Message
	path := "/pixel_chat/conversations/" + conversationID + "/messages"
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	for _, msg := range out {
		msg.Status = model.StatusCompleted
	}
	return out, nil
}

// SendMessage submits a user message and returns the assistant reply.
func (c *Client) SendMessage(ctx context.Context, req SendMessageRequest) (*SendMessageResponse, error) {
	var out SendMessageResponse
	if err := c.doJSON(ctx, http.MethodPost, "/pixel_chat/send", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// =============================================================================
// VISION OPERATIONS
// =============================================================================

// RecognizeImage submits an image with an optional prompt and returns the
// assistant reply. The image travels as a multipart file part.
func (c *Client) RecognizeImage(ctx context.Context, req VisionRequest) (*VisionResponse, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("image", req.FileName)
	if err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := part.Write(req.Data); err != nil {
		return nil, fmt.Errorf("failed to write image part: %w", err)
	}

	fields := map[string]string{
		"conversationId": req.ConversationID,
		"message":        req.Message,
		"model":          req.Model,
	}
	for name, value := range fields {
		if value == "" {
			continue
		}
		if err := mw.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("failed to write field %s: %w", name, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish multipart body: %w", err)
	}

	httpReq, err := c.newRequest(ctx, http.MethodPost, "/pixel_chat/vision/chat", &body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())

	var out VisionResponse
	if err := c.execute(httpReq, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// =============================================================================
// MODEL / AGENT OPERATIONS
// =============================================================================

// ListModels fetches the selectable chat models.
func (c *Client) ListModels(ctx context.Context) ([]model.ModelInfo, error) {
	var out []model.ModelInfo
	if err := c.doJSON(ctx, http.MethodGet, "/pixel_chat/models", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListAgents fetches the selectable agents.
func (c *Client) ListAgents(ctx context.Context) ([]model.AgentInfo, error) {
	var out []model.AgentInfo
	if err := c.doJSON(ctx, http.MethodGet, "/pixel_chat/agents", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// =============================================================================
// TRANSPORT
// =============================================================================

// newRequest builds a request with the bearer credential attached.
func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	if c.baseURL == "" {
		return nil, ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	if c.tokens != nil {
		token, err := c.tokens.Token()
		if err != nil {
			return nil, fmt.Errorf("failed to read credential: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return req, nil
}

// doJSON runs a JSON round trip against path. A nil out discards the body.
func (c *Client) doJSON(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.execute(req, out)
}

// execute sends the request and decodes the response into out.
func (c *Client) execute(req *http.Request, out interface{}) error {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return classifyTransport(err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyTransport(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return classifyTransport(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseErrorResponse(resp.StatusCode, data)
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &Error{Kind: KindServer, Status: resp.StatusCode,
			Message: "malformed response body"}
	}
	return nil
}

// parseErrorResponse classifies a non-2xx response.
func parseErrorResponse(status int, body []byte) error {
	kind := KindServer
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		kind = KindAuth
	}

	msg := http.StatusText(status)
	var parsed apiErrorResponse
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Message != "" {
			msg = parsed.Message
		} else if parsed.Error != "" {
			msg = parsed.Error
		}
	}

	return &Error{Kind: kind, Status: status, Message: msg}
}
