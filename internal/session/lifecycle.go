// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/jeranaias/flowvo-tui/internal/api"
	"github.com/jeranaias/flowvo-tui/internal/model"
	"github.com/jeranaias/flowvo-tui/internal/reveal"
	"github.com/jeranaias/flowvo-tui/internal/util"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrEmptyPayload rejects a send with no text and no attachments.
	ErrEmptyPayload = errors.New("empty payload")
	// ErrVisionUnsupported rejects an image send when the selected
	// model cannot accept vision input.
	ErrVisionUnsupported = errors.New("selected model does not support images")
	// ErrUnknownConversation rejects operations on a conversation that
	// is not in the store.
	ErrUnknownConversation = errors.New("unknown conversation")
	// ErrSendInFlight rejects a second send for a conversation whose
	// first send is still awaiting the server.
	ErrSendInFlight = errors.New("a send is already in flight")
)

// =============================================================================
// LIFECYCLE
// =============================================================================

// ConversationDirectory is the slice of conversation state the send
// path needs from the store.
type ConversationDirectory interface {
	Conversation(id string) (model.Conversation, bool)
	ReplacePlaceholder(localID string, persisted model.Conversation)
}

// PendingSend is one optimistic send awaiting its server outcome.
type PendingSend struct {
	TempID         string
	ConversationID string
	Text           string
	Vision         bool

	// attachments carry the full payloads for the wire; the message in
	// the list holds stripped display copies.
	attachments []model.Attachment
	abandoned   bool
}

// Outcome is the raw result of performing a pending send.
type Outcome struct {
	TempID          string
	ConversationID  string
	Reply           string
	ServerMessageID string
	Err             error
}

// Resolution describes what Resolve did with an outcome.
type Resolution struct {
	// Discarded is true when the send was stopped before the outcome
	// arrived; its effects were dropped.
	Discarded bool
	// RolledBack is true when a failure removed the optimistic message.
	RolledBack bool
	// Err is the failure that caused the rollback.
	Err error
	// AssistantID identifies the appended assistant message whose
	// reveal session was started.
	AssistantID    string
	ConversationID string
	Reply          string
}

// StopOutcome reports which operation a stop affected.
type StopOutcome int

const (
	// StopNone means nothing was running.
	StopNone StopOutcome = iota
	// StopSend means an in-flight send was abandoned and rolled back.
	StopSend
	// StopReveal means an active reveal was cancelled.
	StopReveal
)

// Lifecycle runs the send state machine and owns per-conversation
// message lists. Hold as a pointer; the mutex must not be copied.
type Lifecycle struct {
	mu       sync.Mutex
	backend  api.Backend
	dir      ConversationDirectory
	engine   *reveal.Engine
	messages map[string][]*model.Message
	pending  map[string]*PendingSend
	models   map[string]model.ModelInfo

	// persistMu serializes placeholder creation so a placeholder is
	// durably created at most once.
	persistMu sync.Mutex
}

// NewLifecycle creates a controller over the given backend, directory,
// and reveal engine.
func NewLifecycle(backend api.Backend, dir ConversationDirectory, engine *reveal.Engine) *Lifecycle {
	return &Lifecycle{
		backend:  backend,
		dir:      dir,
		engine:   engine,
		messages: make(map[string][]*model.Message),
		pending:  make(map[string]*PendingSend),
		models:   make(map[string]model.ModelInfo),
	}
}

// SetModels records the capability table used for vision checks.
func (l *Lifecycle) SetModels(models []model.ModelInfo) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.models = make(map[string]model.ModelInfo, len(models))
	for _, m := range models {
		l.models[m.ID] = m
	}
}

// supportsVision reports whether the model accepts image input. Unknown
// models are treated as non-vision; rejecting locally is cheaper than a
// guaranteed server error.
func (l *Lifecycle) supportsVision(modelID string) bool {
	m, ok := l.models[modelID]
	return ok && m.VisionSupported
}

// =============================================================================
// SEND STATE MACHINE
// =============================================================================

// Send validates the payload and performs the optimistic insert. No
// network traffic happens here; the caller runs Perform with the
// returned pending send and feeds the outcome to Resolve.
func (l *Lifecycle) Send(conversationID, text string, attachments []model.Attachment) (*PendingSend, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	conv, ok := l.dir.Conversation(conversationID)
	if !ok {
		return nil, ErrUnknownConversation
	}

	msg := model.NewUserMessage(conversationID, text, attachments)
	if msg.IsEmpty() {
		return nil, ErrEmptyPayload
	}
	if msg.HasImageAttachment() && !l.supportsVision(conv.Model) {
		return nil, fmt.Errorf("%w: %s", ErrVisionUnsupported, conv.Model)
	}
	for _, p := range l.pending {
		if p.ConversationID == conversationID && !p.abandoned {
			return nil, ErrSendInFlight
		}
	}

	l.messages[conversationID] = append(l.messages[conversationID], msg)

	p := &PendingSend{
		TempID:         msg.ID,
		ConversationID: conversationID,
		Text:           text,
		Vision:         msg.HasImageAttachment(),
		attachments:    attachments,
	}
	l.pending[msg.ID] = p
	return p, nil
}

// Perform runs the network half of a send. Safe to call from a
// goroutine; state mutation happens only through mutex-guarded helpers.
func (l *Lifecycle) Perform(ctx context.Context, tempID string) Outcome {
	l.mu.Lock()
	p, ok := l.pending[tempID]
	if !ok || p.abandoned {
		l.mu.Unlock()
		return Outcome{TempID: tempID}
	}
	conversationID := p.ConversationID
	text := p.Text
	vision := p.Vision
	attachments := p.attachments
	l.mu.Unlock()

	conversationID, err := l.ensurePersisted(ctx, conversationID, text)
	if err != nil {
		return Outcome{TempID: tempID, ConversationID: conversationID, Err: err}
	}

	if vision {
		return l.performVision(ctx, tempID, conversationID, text, attachments)
	}
	return l.performSend(ctx, tempID, conversationID, text, attachments)
}

// ensurePersisted durably creates a placeholder conversation before its
// first send and re-targets local state to the server id. Exactly one
// create call happens per placeholder; concurrent senders serialize
// here and the second one sees the persisted conversation.
func (l *Lifecycle) ensurePersisted(ctx context.Context, conversationID, firstText string) (string, error) {
	l.persistMu.Lock()
	defer l.persistMu.Unlock()

	conv, ok := l.dir.Conversation(conversationID)
	if !ok || !conv.IsPlaceholder() {
		return conversationID, nil
	}

	title := conv.Title
	if title == "" {
		title = util.TruncateRunes(util.OneLine(firstText), 30)
	}
	created, err := l.backend.CreateConversation(ctx, api.CreateConversationRequest{
		Title:  title,
		Model:  conv.Model,
		Agent:  conv.Agent,
		Source: conv.Source,
	})
	if err != nil {
		return conversationID, err
	}

	l.retarget(conversationID, *created)
	l.dir.ReplacePlaceholder(conversationID, *created)
	return created.ID, nil
}

// retarget moves message and pending state from a placeholder id to the
// server-assigned conversation id.
func (l *Lifecycle) retarget(localID string, persisted model.Conversation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msgs := l.messages[localID]
	delete(l.messages, localID)
	for _, m := range msgs {
		m.Retarget(persisted.ID)
	}
	l.messages[persisted.ID] = append(l.messages[persisted.ID], msgs...)

	for _, p := range l.pending {
		if p.ConversationID == localID {
			p.ConversationID = persisted.ID
		}
	}
}

// performSend routes through the general send endpoint.
func (l *Lifecycle) performSend(ctx context.Context, tempID, conversationID, text string, attachments []model.Attachment) Outcome {
	req := api.SendMessageRequest{
		ConversationID: conversationID,
		Message:        text,
	}
	if len(attachments) > 0 {
		data, err := json.Marshal(attachments)
		if err != nil {
			return Outcome{TempID: tempID, ConversationID: conversationID,
				Err: fmt.Errorf("failed to encode attachments: %w", err)}
		}
		req.Attachments = string(data)
	}

	resp, err := l.backend.SendMessage(ctx, req)
	if err != nil {
		return Outcome{TempID: tempID, ConversationID: conversationID, Err: err}
	}
	return Outcome{
		TempID:          tempID,
		ConversationID:  conversationID,
		Reply:           resp.AssistantReply,
		ServerMessageID: resp.MessageID,
	}
}

// performVision routes through the vision endpoint with the first image
// attachment; the backend accepts one image per call.
func (l *Lifecycle) performVision(ctx context.Context, tempID, conversationID, text string, attachments []model.Attachment) Outcome {
	var image *model.Attachment
	for i := range attachments {
		if attachments[i].Kind == model.AttachmentImage {
			image = &attachments[i]
			break
		}
	}
	if image == nil {
		return Outcome{TempID: tempID, ConversationID: conversationID,
			Err: fmt.Errorf("no image attachment for vision send")}
	}

	mimeType, data, err := util.DecodeDataURI(image.Base64)
	if err != nil {
		return Outcome{TempID: tempID, ConversationID: conversationID,
			Err: fmt.Errorf("failed to decode image payload: %w", err)}
	}

	conv, _ := l.dir.Conversation(conversationID)
	resp, err := l.backend.RecognizeImage(ctx, api.VisionRequest{
		ConversationID: conversationID,
		Message:        text,
		Model:          conv.Model,
		FileName:       image.Name,
		MIME:           mimeType,
		Data:           data,
	})
	if err != nil {
		return Outcome{TempID: tempID, ConversationID: conversationID, Err: err}
	}
	return Outcome{
		TempID:         tempID,
		ConversationID: conversationID,
		Reply:          resp.AssistantReply,
	}
}

// Resolve applies an outcome: reconcile on success, roll back on
// failure, discard if the send was stopped while in flight. On success
// the assistant reply is appended and its reveal session started.
func (l *Lifecycle) Resolve(o Outcome) Resolution {
	l.mu.Lock()

	p, ok := l.pending[o.TempID]
	delete(l.pending, o.TempID)
	if !ok || p.abandoned {
		l.mu.Unlock()
		return Resolution{Discarded: true}
	}

	if o.Err != nil {
		l.removeMessageLocked(o.ConversationID, o.TempID)
		// The placeholder id may still hold the optimistic message if
		// the failure happened before persistence.
		if o.ConversationID != p.ConversationID {
			l.removeMessageLocked(p.ConversationID, o.TempID)
		}
		l.mu.Unlock()
		return Resolution{RolledBack: true, Err: o.Err, ConversationID: o.ConversationID}
	}

	// Reconciliation matches by the temp id, never by position.
	for _, m := range l.messages[o.ConversationID] {
		if m.ID == o.TempID {
			if o.ServerMessageID != "" {
				m.Reconcile(o.ServerMessageID)
			} else {
				m.Status = model.StatusCompleted
			}
			break
		}
	}

	assistant := model.NewAssistantMessage(o.ConversationID, o.Reply)
	l.messages[o.ConversationID] = append(l.messages[o.ConversationID], assistant)
	l.mu.Unlock()

	l.engine.Start(o.ConversationID, assistant.ID, o.Reply)
	return Resolution{
		AssistantID:    assistant.ID,
		ConversationID: o.ConversationID,
		Reply:          o.Reply,
	}
}

// =============================================================================
// STOP CONTROLS
// =============================================================================

// StopSending abandons the in-flight send for a conversation and rolls
// back its optimistic insert. The network request is not cancelled at
// the transport level; its outcome is discarded on arrival.
func (l *Lifecycle) StopSending(conversationID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, p := range l.pending {
		if p.ConversationID != conversationID || p.abandoned {
			continue
		}
		p.abandoned = true
		l.removeMessageLocked(conversationID, p.TempID)
		return true
	}
	return false
}

// StopRevealing cancels the active reveal for a conversation.
func (l *Lifecycle) StopRevealing(conversationID string) bool {
	return l.engine.Cancel(conversationID)
}

// Stop is the single user-facing stop control. Stopping the send wins
// when both could apply; sending and revealing never overlap for one
// message, so the race can only involve distinct messages.
func (l *Lifecycle) Stop(conversationID string) StopOutcome {
	if l.StopSending(conversationID) {
		return StopSend
	}
	if l.StopRevealing(conversationID) {
		return StopReveal
	}
	return StopNone
}

// Sending reports whether a send is awaiting the server for the
// conversation.
func (l *Lifecycle) Sending(conversationID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, p := range l.pending {
		if p.ConversationID == conversationID && !p.abandoned {
			return true
		}
	}
	return false
}

// SendingID returns the temp id of the in-flight send for the
// conversation, or "" when none is pending.
func (l *Lifecycle) SendingID(conversationID string) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, p := range l.pending {
		if p.ConversationID == conversationID && !p.abandoned {
			return p.TempID
		}
	}
	return ""
}

// =============================================================================
// MESSAGE LIST
// =============================================================================

// Messages returns a copy of the conversation's message list in
// insertion order.
func (l *Lifecycle) Messages(conversationID string) []*model.Message {
	l.mu.Lock()
	defer l.mu.Unlock()
	msgs := l.messages[conversationID]
	out := make([]*model.Message, len(msgs))
	copy(out, msgs)
	return out
}

// SetHistory replaces the conversation's message list with server
// history.
func (l *Lifecycle) SetHistory(conversationID string, msgs []*model.Message) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages[conversationID] = msgs
}

// DropConversation discards message, pending, and reveal state for a
// deleted conversation.
func (l *Lifecycle) DropConversation(conversationID string) {
	l.mu.Lock()
	delete(l.messages, conversationID)
	for id, p := range l.pending {
		if p.ConversationID == conversationID {
			p.abandoned = true
			delete(l.pending, id)
		}
	}
	l.mu.Unlock()

	l.engine.Drop(conversationID)
}

// removeMessageLocked deletes one message by id. Caller holds l.mu.
func (l *Lifecycle) removeMessageLocked(conversationID, messageID string) {
	msgs := l.messages[conversationID]
	for i, m := range msgs {
		if m.ID == messageID {
			l.messages[conversationID] = append(msgs[:i], msgs[i+1:]...)
			return
		}
	}
}
