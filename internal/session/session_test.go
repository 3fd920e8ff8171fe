// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/flowvo-tui/internal/api"
	"github.com/jeranaias/flowvo-tui/internal/model"
	"github.com/jeranaias/flowvo-tui/internal/reveal"
)

// =============================================================================
// FAKE BACKEND
// =============================================================================

// fakeBackend records calls and serves scripted responses.
type fakeBackend struct {
	mu sync.Mutex

	conversations []model.Conversation
	messages      map[string][]*model.Message

	createCalls int
	sendCalls   int
	visionCalls int
	updateCalls []string
	deleteCalls []string

	sendErr   error
	createErr error
	updateErr error
	reply     string
	replyID   string
	nextID    int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		messages: make(map[string][]*model.Message),
		reply:    "assistant reply",
		replyID:  "srv-msg-1",
	}
}

func (f *fakeBackend) ListConversations(ctx context.Context) ([]model.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Conversation{}, f.conversations...), nil
}

func (f *fakeBackend) CreateConversation(ctx context.Context, req api.CreateConversationRequest) (*model.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	conv := model.Conversation{
		ID:     fmt.Sprintf("srv-conv-%d", f.nextID),
		Title:  req.Title,
		Model:  req.Model,
		Agent:  req.Agent,
		Source: req.Source,
	}
	f.conversations = append(f.conversations, conv)
	return &conv, nil
}

func (f *fakeBackend) UpdateConversation(ctx context.Context, id string, req api.UpdateConversationRequest) (*model.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls = append(f.updateCalls, id)
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return &model.Conversation{ID: id, Title: req.Title}, nil
}

func (f *fakeBackend) DeleteConversation(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls = append(f.deleteCalls, id)
	return nil
}

func (f *fakeBackend) ListMessages(ctx context.Context, conversationID string) ([]*model.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.messages[conversationID], nil
}

func (f *fakeBackend) SendMessage(ctx context.Context, req api.SendMessageRequest) (*api.SendMessageResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sendCalls++
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	return &api.SendMessageResponse{AssistantReply: f.reply, MessageID: f.replyID}, nil
}

func (f *fakeBackend) RecognizeImage(ctx context.Context, req api.VisionRequest) (*api.VisionResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.visionCalls++
	return &api.VisionResponse{AssistantReply: f.reply, Success: true}, nil
}

func (f *fakeBackend) ListModels(ctx context.Context) ([]model.ModelInfo, error) {
	return nil, nil
}

func (f *fakeBackend) ListAgents(ctx context.Context) ([]model.AgentInfo, error) {
	return nil, nil
}

func (f *fakeBackend) calls() (create, send, vision int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.createCalls, f.sendCalls, f.visionCalls
}

// newSession builds a wired store/lifecycle pair over a fake backend.
func newSession(t *testing.T) (*fakeBackend, *Store, *Lifecycle, *reveal.Engine) {
	t.Helper()
	backend := newFakeBackend()
	engine := reveal.NewEngine(0, nil)
	store, lifecycle := New(backend, engine, "", "")
	return backend, store, lifecycle, engine
}

// runSend drives one send through the full state machine.
func runSend(t *testing.T, l *Lifecycle, convID, text string, atts []model.Attachment) Resolution {
	t.Helper()
	p, err := l.Send(convID, text, atts)
	require.NoError(t, err)
	outcome := l.Perform(context.Background(), p.TempID)
	return l.Resolve(outcome)
}

func pngAttachment() model.Attachment {
	return model.Attachment{
		ID:     "file-1",
		Name:   "pic.png",
		Size:   2048,
		MIME:   "image/png",
		Kind:   model.AttachmentImage,
		Base64: "data:image/png;base64,iVBORw0KGgo=",
	}
}

// =============================================================================
// SEND STATE MACHINE
// =============================================================================

func TestSendReconcilesTempIDExactlyOnce(t *testing.T) {
	_, store, lifecycle, _ := newSession(t)
	conv := store.Create()

	p, err := lifecycle.Send(conv.ID, "hello", nil)
	require.NoError(t, err)
	assert.True(t, model.IsLocalID(p.TempID))

	// Optimistic insert is visible before any network call.
	msgs := lifecycle.Messages(conv.ID)
	require.Len(t, msgs, 1)
	assert.Equal(t, p.TempID, msgs[0].ID)
	assert.Equal(t, model.StatusProcessing, msgs[0].Status)

	outcome := lifecycle.Perform(context.Background(), p.TempID)
	res := lifecycle.Resolve(outcome)
	require.NoError(t, res.Err)

	serverConvID := store.Selected()
	msgs = lifecycle.Messages(serverConvID)
	require.Len(t, msgs, 2)

	// The temp id appears exactly once, replaced by the server id.
	assert.Equal(t, "srv-msg-1", msgs[0].ID)
	assert.Equal(t, model.StatusCompleted, msgs[0].Status)
	for _, m := range msgs {
		assert.NotEqual(t, p.TempID, m.ID)
	}
	assert.Equal(t, model.RoleAssistant, msgs[1].Role)
	assert.Equal(t, "assistant reply", msgs[1].Content)
}

func TestSendEmptyPayloadRejected(t *testing.T) {
	backend, store, lifecycle, _ := newSession(t)
	conv := store.Create()

	_, err := lifecycle.Send(conv.ID, "   \n ", nil)
	assert.ErrorIs(t, err, ErrEmptyPayload)

	create, send, vision := backend.calls()
	assert.Zero(t, create+send+vision, "validation failure must not touch the network")
	assert.Empty(t, lifecycle.Messages(conv.ID))
}

func TestSendVisionUnsupportedRejectedWithoutNetwork(t *testing.T) {
	backend, store, lifecycle, _ := newSession(t)
	conv := store.Create()

	lifecycle.SetModels([]model.ModelInfo{
		{ID: conv.Model, Name: "Chat", VisionSupported: false},
	})

	_, err := lifecycle.Send(conv.ID, "what is this", []model.Attachment{pngAttachment()})
	assert.ErrorIs(t, err, ErrVisionUnsupported)

	create, send, vision := backend.calls()
	assert.Zero(t, create+send+vision)
	assert.Empty(t, lifecycle.Messages(conv.ID))
}

func TestSendImageWithUnknownModelRejected(t *testing.T) {
	_, store, lifecycle, _ := newSession(t)
	conv := store.Create()

	// No capability table loaded; unknown models cannot claim vision.
	_, err := lifecycle.Send(conv.ID, "look", []model.Attachment{pngAttachment()})
	assert.ErrorIs(t, err, ErrVisionUnsupported)
}

func TestSendVisionRoutesToVisionEndpoint(t *testing.T) {
	backend, store, lifecycle, engine := newSession(t)
	conv := store.Create()
	lifecycle.SetModels([]model.ModelInfo{
		{ID: conv.Model, VisionSupported: true},
	})

	res := runSend(t, lifecycle, conv.ID, "what is this", []model.Attachment{pngAttachment()})
	require.NoError(t, res.Err)

	_, send, vision := backend.calls()
	assert.Zero(t, send, "vision send must not use the general endpoint")
	assert.Equal(t, 1, vision)

	// The reply reveals through the engine like any other.
	assert.True(t, engine.Active(res.ConversationID))
	assert.Equal(t, res.AssistantID, engine.ActiveMessageID(res.ConversationID))
}

func TestFailedSendRollsBack(t *testing.T) {
	backend, store, lifecycle, _ := newSession(t)
	conv := store.Create()
	runSend(t, lifecycle, conv.ID, "first", nil)
	serverConvID := store.Selected()
	before := lifecycle.Messages(serverConvID)

	backend.sendErr = &api.Error{Kind: api.KindServer, Status: 500, Message: "boom"}
	p, err := lifecycle.Send(serverConvID, "second", nil)
	require.NoError(t, err)
	res := lifecycle.Resolve(lifecycle.Perform(context.Background(), p.TempID))

	assert.True(t, res.RolledBack)
	require.Error(t, res.Err)
	assert.Equal(t, api.KindServer, api.KindOf(res.Err))

	// The list after rollback equals the list before the send.
	after := lifecycle.Messages(serverConvID)
	require.Len(t, after, len(before))
	for i := range before {
		assert.Equal(t, before[i].ID, after[i].ID)
	}
}

func TestFailedCreateRollsBackOnPlaceholder(t *testing.T) {
	backend, store, lifecycle, _ := newSession(t)
	conv := store.Create()
	backend.createErr = errors.New("connection refused")

	p, err := lifecycle.Send(conv.ID, "hello", nil)
	require.NoError(t, err)
	res := lifecycle.Resolve(lifecycle.Perform(context.Background(), p.TempID))

	assert.True(t, res.RolledBack)
	assert.Empty(t, lifecycle.Messages(conv.ID))
	// The placeholder stays local and can retry later.
	got, ok := store.Conversation(conv.ID)
	require.True(t, ok)
	assert.True(t, got.IsPlaceholder())
}

func TestPlaceholderPersistedExactlyOnce(t *testing.T) {
	backend, store, lifecycle, _ := newSession(t)
	conv := store.Create()

	runSend(t, lifecycle, conv.ID, "first", nil)
	serverConvID := store.Selected()
	assert.False(t, model.IsLocalID(serverConvID))

	runSend(t, lifecycle, serverConvID, "second", nil)

	create, send, _ := backend.calls()
	assert.Equal(t, 1, create, "placeholder must be created exactly once")
	assert.Equal(t, 2, send)

	// Both user messages live under the server conversation id.
	msgs := lifecycle.Messages(serverConvID)
	assert.Len(t, msgs, 4)
	for _, m := range msgs {
		assert.Equal(t, serverConvID, m.ConversationID)
	}
}

func TestSecondSendWhileInFlightRejected(t *testing.T) {
	_, store, lifecycle, _ := newSession(t)
	conv := store.Create()

	_, err := lifecycle.Send(conv.ID, "first", nil)
	require.NoError(t, err)

	_, err = lifecycle.Send(conv.ID, "second", nil)
	assert.ErrorIs(t, err, ErrSendInFlight)
}

// =============================================================================
// STOP CONTROLS
// =============================================================================

func TestStopSendingDiscardsLateOutcome(t *testing.T) {
	_, store, lifecycle, _ := newSession(t)
	conv := store.Create()

	p, err := lifecycle.Send(conv.ID, "hello", nil)
	require.NoError(t, err)
	require.True(t, lifecycle.Sending(conv.ID))

	// User stops while the request is in flight.
	assert.Equal(t, StopSend, lifecycle.Stop(conv.ID))
	assert.Empty(t, lifecycle.Messages(conv.ID))
	assert.False(t, lifecycle.Sending(conv.ID))

	// The request resolves anyway; its effect is discarded post-hoc.
	res := lifecycle.Resolve(lifecycle.Perform(context.Background(), p.TempID))
	assert.True(t, res.Discarded)
	assert.Empty(t, lifecycle.Messages(conv.ID))
}

func TestStopDispatchesToRevealWhenNotSending(t *testing.T) {
	_, store, lifecycle, engine := newSession(t)
	conv := store.Create()

	res := runSend(t, lifecycle, conv.ID, "hello", nil)
	convID := res.ConversationID
	engine.Advance(convID)

	assert.Equal(t, StopReveal, lifecycle.Stop(convID))
	tick, ok := engine.Advance(convID)
	require.True(t, ok)
	assert.True(t, tick.Done)
	assert.Equal(t, "assistant reply", tick.Visible)

	assert.Equal(t, StopNone, lifecycle.Stop(convID))
}

// =============================================================================
// STORE OPERATIONS
// =============================================================================

func TestCreateSelectsPlaceholder(t *testing.T) {
	backend, store, _, _ := newSession(t)
	conv := store.Create()

	assert.True(t, conv.IsPlaceholder())
	assert.Equal(t, conv.ID, store.Selected())
	assert.Equal(t, model.DefaultModel, conv.Model)

	create, send, vision := backend.calls()
	assert.Zero(t, create+send+vision, "create is local until first send")
}

func TestSelectPlaceholderLoadsEmptyHistory(t *testing.T) {
	_, store, lifecycle, _ := newSession(t)
	conv := store.Create()

	require.NoError(t, store.Select(context.Background(), conv.ID))
	assert.Empty(t, lifecycle.Messages(conv.ID))
}

func TestSelectLoadsServerHistory(t *testing.T) {
	backend, store, lifecycle, _ := newSession(t)
	backend.conversations = []model.Conversation{{ID: "srv-conv-9", Title: "Old"}}
	backend.messages["srv-conv-9"] = []*model.Message{
		{ID: "m-1", ConversationID: "srv-conv-9", Role: model.RoleUser, Content: "hi"},
	}
	require.NoError(t, store.Load(context.Background()))

	require.NoError(t, store.Select(context.Background(), "srv-conv-9"))
	assert.Equal(t, "srv-conv-9", store.Selected())
	msgs := lifecycle.Messages("srv-conv-9")
	require.Len(t, msgs, 1)
	assert.Equal(t, "m-1", msgs[0].ID)
}

func TestRenameOnPlaceholderIsLocal(t *testing.T) {
	backend, store, _, _ := newSession(t)
	conv := store.Create()

	require.NoError(t, store.Rename(context.Background(), conv.ID, "My Chat"))
	got, _ := store.Conversation(conv.ID)
	assert.Equal(t, "My Chat", got.Title)
	assert.Empty(t, backend.updateCalls)
}

func TestRenameAfterSendTargetsServerID(t *testing.T) {
	backend, store, lifecycle, _ := newSession(t)
	conv := store.Create()
	placeholderID := conv.ID

	runSend(t, lifecycle, conv.ID, "hello", nil)
	serverConvID := store.Selected()

	require.NoError(t, store.Rename(context.Background(), serverConvID, "Renamed"))

	require.Len(t, backend.updateCalls, 1)
	assert.Equal(t, serverConvID, backend.updateCalls[0])
	assert.NotEqual(t, placeholderID, backend.updateCalls[0])
}

func TestRenameFailureKeepsLocalState(t *testing.T) {
	backend, store, lifecycle, _ := newSession(t)
	conv := store.Create()
	runSend(t, lifecycle, conv.ID, "hello", nil)
	serverConvID := store.Selected()

	backend.updateErr = errors.New("server error")
	err := store.Rename(context.Background(), serverConvID, "Nope")
	require.Error(t, err)

	got, _ := store.Conversation(serverConvID)
	assert.NotEqual(t, "Nope", got.Title)
}

func TestRemoveSelectedClearsState(t *testing.T) {
	backend, store, lifecycle, _ := newSession(t)
	conv := store.Create()
	runSend(t, lifecycle, conv.ID, "hello", nil)
	serverConvID := store.Selected()

	require.NoError(t, store.Remove(context.Background(), serverConvID))

	assert.Empty(t, store.Selected())
	assert.Empty(t, lifecycle.Messages(serverConvID))
	_, ok := store.Conversation(serverConvID)
	assert.False(t, ok)
	assert.Equal(t, []string{serverConvID}, backend.deleteCalls)
}

func TestRemovePlaceholderSkipsNetwork(t *testing.T) {
	backend, store, _, _ := newSession(t)
	conv := store.Create()

	require.NoError(t, store.Remove(context.Background(), conv.ID))
	assert.Empty(t, backend.deleteCalls)
}
