// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/flowvo-tui/internal/api"
	"github.com/jeranaias/flowvo-tui/internal/ingest"
	"github.com/jeranaias/flowvo-tui/internal/model"
	"github.com/jeranaias/flowvo-tui/internal/reveal"
	"github.com/jeranaias/flowvo-tui/internal/session"
)

// =============================================================================
// FAKE BACKEND
// =============================================================================

type fakeBackend struct {
	reply   string
	sendErr error

	sendCalls   int
	deleteCalls int
}

func (f *fakeBackend) ListConversations(ctx context.Context) ([]model.Conversation, error) {
	return nil, nil
}

func (f *fakeBackend) CreateConversation(ctx context.Context, req api.CreateConversationRequest) (*model.Conversation, error) {
	return &model.Conversation{ID: "srv-conv-1", Title: req.Title, Model: req.Model, Agent: req.Agent}, nil
}

func (f *fakeBackend) UpdateConversation(ctx context.Context, id string, req api.UpdateConversationRequest) (*model.Conversation, error) {
	return &model.Conversation{ID: id, Title: req.Title}, nil
}

func (f *fakeBackend) DeleteConversation(ctx context.Context, id string) error {
	f.deleteCalls++
	return nil
}

func (f *fakeBackend) ListMessages(ctx context.Context, conversationID string) ([]*model.Message, error) {
	return nil, nil
}

func (f *fakeBackend) SendMessage(ctx context.Context, req api.SendMessageRequest) (*api.SendMessageResponse, error) {
	f.sendCalls++
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	return &api.SendMessageResponse{AssistantReply: f.reply, MessageID: "srv-msg-1"}, nil
}

func (f *fakeBackend) RecognizeImage(ctx context.Context, req api.VisionRequest) (*api.VisionResponse, error) {
	return &api.VisionResponse{AssistantReply: f.reply, Success: true}, nil
}

func (f *fakeBackend) ListModels(ctx context.Context) ([]model.ModelInfo, error) {
	return nil, nil
}

func (f *fakeBackend) ListAgents(ctx context.Context) ([]model.AgentInfo, error) {
	return nil, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func newChatModel(t *testing.T) (*fakeBackend, Model) {
	t.Helper()
	backend := &fakeBackend{reply: "hello back"}
	engine := reveal.NewEngine(0, nil)
	store, lifecycle := session.New(backend, engine, "", "")
	m := New(Options{
		Backend:   backend,
		Store:     store,
		Lifecycle: lifecycle,
		Engine:    engine,
		Pipeline:  ingest.NewPipeline(),
	})
	m.handleResize(100, 30)
	return backend, m
}

// submitText drives one line through submit and returns the updated model.
func submitText(t *testing.T, m Model, text string) (Model, tea.Cmd) {
	t.Helper()
	m.input.SetValue(text)
	next, cmd := m.submit()
	return next.(Model), cmd
}

// =============================================================================
// SUBMIT
// =============================================================================

func TestSubmitCreatesDraftConversation(t *testing.T) {
	_, m := newChatModel(t)
	require.Empty(t, m.store.Selected())

	m, cmd := submitText(t, m, "first message")
	require.NotNil(t, cmd)

	selected := m.store.Selected()
	require.NotEmpty(t, selected)
	assert.True(t, m.lifecycle.Sending(selected))
	assert.Empty(t, m.input.Value(), "input resets on submit")
}

func TestSubmitBlankIsIgnored(t *testing.T) {
	_, m := newChatModel(t)
	_, cmd := submitText(t, m, "   ")
	assert.Nil(t, cmd)
	assert.Empty(t, m.store.Selected())
}

func TestSubmitClearsStagedAttachments(t *testing.T) {
	_, m := newChatModel(t)
	m.staged = []model.Attachment{{ID: "file-1", Name: "notes.txt", Kind: model.AttachmentDocument, Text: "notes"}}

	m, _ = submitText(t, m, "see attached")
	assert.Empty(t, m.staged)
}

func TestSecondSubmitWhileInFlightWarns(t *testing.T) {
	_, m := newChatModel(t)
	m, _ = submitText(t, m, "first")

	m, _ = submitText(t, m, "second")
	assert.Equal(t, "second", m.input.Value(), "rejected input is preserved")
	assert.False(t, m.toasts.Empty())
}

// =============================================================================
// OUTCOME AND REVEAL
// =============================================================================

func TestOutcomeStartsRevealLoop(t *testing.T) {
	_, m := newChatModel(t)
	m, _ = submitText(t, m, "hi")
	selected := m.store.Selected()

	p := m.lifecycle.SendingID(selected)
	require.NotEmpty(t, p)
	out := m.lifecycle.Perform(context.Background(), p)

	next, cmd := m.handleOutcome(out)
	m = next.(Model)
	require.NotNil(t, cmd, "a reveal tick is scheduled")
	assert.True(t, m.engine.Active(m.store.Selected()))

	// Drive ticks until the reveal settles.
	conv := m.store.Selected()
	for i := 0; i < 1000; i++ {
		var tickCmd tea.Cmd
		next, tickCmd = m.handleRevealTick(conv)
		m = next.(Model)
		if tickCmd == nil {
			break
		}
	}
	assert.False(t, m.engine.Active(conv))
	assert.Contains(t, m.viewport.View(), "hello back")
}

func TestFailedSendRollsBackAndToasts(t *testing.T) {
	backend, m := newChatModel(t)
	backend.sendErr = errors.New("boom")

	m, _ = submitText(t, m, "doomed")
	selected := m.store.Selected()
	out := m.lifecycle.Perform(context.Background(), m.lifecycle.SendingID(selected))

	next, cmd := m.handleOutcome(out)
	m = next.(Model)
	require.NotNil(t, cmd)
	assert.False(t, m.toasts.Empty())
	assert.Empty(t, m.lifecycle.Messages(m.store.Selected()))
}

func TestStopWithNothingRunningIsQuiet(t *testing.T) {
	_, m := newChatModel(t)
	m.store.Create()
	_, cmd := m.stopSelected()
	assert.Nil(t, cmd)
}

// =============================================================================
// COMMANDS
// =============================================================================

func TestUnknownCommandToasts(t *testing.T) {
	_, m := newChatModel(t)
	next, cmd := m.runCommand("/frobnicate")
	m = next.(Model)
	require.NotNil(t, cmd)
	assert.Contains(t, m.toasts.View(m.theme), "unknown command")
}

func TestRenameWithoutSelectionWarns(t *testing.T) {
	_, m := newChatModel(t)
	next, cmd := m.runCommand("/rename New Title")
	m = next.(Model)
	require.NotNil(t, cmd)
	assert.False(t, m.toasts.Empty())
}

func TestClearCommandDropsStaged(t *testing.T) {
	_, m := newChatModel(t)
	m.staged = []model.Attachment{{ID: "file-1", Name: "a.txt"}}
	next, _ := m.runCommand("/clear")
	m = next.(Model)
	assert.Empty(t, m.staged)
}

func TestNewCommandCreatesPlaceholder(t *testing.T) {
	_, m := newChatModel(t)
	next, _ := m.runCommand("/new")
	m = next.(Model)
	conv, ok := m.store.SelectedConversation()
	require.True(t, ok)
	assert.True(t, conv.IsPlaceholder())
}

// =============================================================================
// ATTACHMENT STAGING
// =============================================================================

func TestIngestResultsStageSuccessesAndToastFailures(t *testing.T) {
	_, m := newChatModel(t)
	results := []ingest.Result{
		{Path: "a.txt", Attachment: model.Attachment{ID: "file-1", Name: "a.txt"}},
		{Path: "b.bin", Err: ingest.ErrUnsupportedType},
	}
	next, cmd := m.handleIngestResults(results)
	m = next.(Model)
	require.NotNil(t, cmd)
	require.Len(t, m.staged, 1)
	assert.Equal(t, "a.txt", m.staged[0].Name)
	assert.False(t, m.toasts.Empty())
}

// =============================================================================
// DELETE CONFIRMATION
// =============================================================================

func TestDeleteRequiresConfirmation(t *testing.T) {
	backend, m := newChatModel(t)
	m.store.Create()

	next, _ := m.runCommand("/delete")
	m = next.(Model)
	require.NotEmpty(t, m.confirmDelete)

	// Any key other than y cancels.
	next, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	m = next.(Model)
	assert.Empty(t, m.confirmDelete)
	assert.Equal(t, 0, backend.deleteCalls)
}

func TestDeleteConfirmedRunsCommand(t *testing.T) {
	_, m := newChatModel(t)
	m.store.Create()

	next, _ := m.runCommand("/delete")
	m = next.(Model)
	next, cmd := m.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'y'}})
	m = next.(Model)
	require.NotNil(t, cmd)
	assert.Empty(t, m.confirmDelete)
}

// =============================================================================
// VIEW
// =============================================================================

func TestViewFillsTerminalHeight(t *testing.T) {
	_, m := newChatModel(t)
	m.store.Create()
	m.refreshTranscript()
	m.refreshChrome()

	view := m.View()
	assert.Equal(t, 30, lipgloss.Height(view))
}

func TestViewShowsJumpAffordanceWhenUnpinned(t *testing.T) {
	_, m := newChatModel(t)
	m.store.Create()
	m.follow.Notify(200)
	require.False(t, m.follow.IsAtBottom())

	view := m.View()
	assert.True(t, strings.Contains(view, "jump to latest"))
}
