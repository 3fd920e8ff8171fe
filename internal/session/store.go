// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jeranaias/flowvo-tui/internal/api"
	"github.com/jeranaias/flowvo-tui/internal/model"
	"github.com/jeranaias/flowvo-tui/internal/reveal"
)

// =============================================================================
// STORE
// =============================================================================

// Store holds the conversation list and the current selection. Hold as
// a pointer; the mutex must not be copied.
type Store struct {
	mu            sync.Mutex
	backend       api.Backend
	lifecycle     *Lifecycle
	conversations []model.Conversation
	selected      string
	defaultModel  string
	defaultAgent  string
}

// New wires a Store and Lifecycle over one backend and reveal engine.
func New(backend api.Backend, engine *reveal.Engine, defaultModel, defaultAgent string) (*Store, *Lifecycle) {
	if defaultModel == "" {
		defaultModel = model.DefaultModel
	}
	if defaultAgent == "" {
		defaultAgent = model.DefaultAgent
	}
	s := &Store{
		backend:      backend,
		defaultModel: defaultModel,
		defaultAgent: defaultAgent,
	}
	l := NewLifecycle(backend, s, engine)
	s.lifecycle = l
	return s, l
}

// Load fetches the conversation list from the server, newest first.
func (s *Store) Load(ctx context.Context) error {
	convs, err := s.backend.ListConversations(ctx)
	if err != nil {
		return err
	}
	sort.SliceStable(convs, func(i, j int) bool {
		return convs[i].CreatedAt.After(convs[j].CreatedAt)
	})

	s.mu.Lock()
	s.conversations = convs
	s.mu.Unlock()
	return nil
}

// Conversations returns a copy of the list in display order.
func (s *Store) Conversations() []model.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Conversation, len(s.conversations))
	copy(out, s.conversations)
	return out
}

// Conversation looks up one conversation by id.
func (s *Store) Conversation(id string) (model.Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.conversations {
		if c.ID == id {
			return c, true
		}
	}
	return model.Conversation{}, false
}

// Selected returns the selected conversation id, or "".
func (s *Store) Selected() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// SelectedConversation returns the selected conversation, if any.
func (s *Store) SelectedConversation() (model.Conversation, bool) {
	s.mu.Lock()
	id := s.selected
	s.mu.Unlock()
	if id == "" {
		return model.Conversation{}, false
	}
	return s.Conversation(id)
}

// =============================================================================
// OPERATIONS
// =============================================================================

// Create produces a local placeholder conversation with the session
// defaults and selects it. No network call happens until the first
// send persists it.
func (s *Store) Create() model.Conversation {
	conv := model.NewPlaceholder()
	conv.Model = s.defaultModel
	conv.Agent = s.defaultAgent

	s.mu.Lock()
	s.conversations = append([]model.Conversation{conv}, s.conversations...)
	s.selected = conv.ID
	s.mu.Unlock()

	s.lifecycle.SetHistory(conv.ID, nil)
	return conv
}

// Select switches to a conversation and loads its history. Selecting a
// placeholder loads an empty history without a network call.
func (s *Store) Select(ctx context.Context, id string) error {
	conv, ok := s.Conversation(id)
	if !ok {
		return ErrUnknownConversation
	}

	if conv.IsPlaceholder() {
		s.mu.Lock()
		s.selected = id
		s.mu.Unlock()
		s.lifecycle.SetHistory(id, nil)
		return nil
	}

	msgs, err := s.backend.ListMessages(ctx, id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.selected = id
	s.mu.Unlock()
	s.lifecycle.SetHistory(id, msgs)
	return nil
}

// Rename updates a conversation title. Placeholders mutate only local
// state; persisted conversations update locally only after the server
// accepts.
func (s *Store) Rename(ctx context.Context, id, title string) error {
	return s.update(ctx, id, api.UpdateConversationRequest{Title: title}, func(c *model.Conversation) {
		c.Title = title
	})
}

// SetModel changes the selected model for a conversation.
func (s *Store) SetModel(ctx context.Context, id, modelID string) error {
	return s.update(ctx, id, api.UpdateConversationRequest{Model: modelID}, func(c *model.Conversation) {
		c.Model = modelID
	})
}

// SetAgent changes the selected agent for a conversation.
func (s *Store) SetAgent(ctx context.Context, id, agent string) error {
	return s.update(ctx, id, api.UpdateConversationRequest{Agent: agent}, func(c *model.Conversation) {
		c.Agent = agent
	})
}

// update applies a mutation locally for placeholders, or server-first
// for persisted conversations. Renames are low-frequency; consistency
// beats latency here, so there is no optimistic update.
func (s *Store) update(ctx context.Context, id string, req api.UpdateConversationRequest, apply func(*model.Conversation)) error {
	conv, ok := s.Conversation(id)
	if !ok {
		return ErrUnknownConversation
	}

	if !conv.IsPlaceholder() {
		if _, err := s.backend.UpdateConversation(ctx, id, req); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.conversations {
		if s.conversations[i].ID == id {
			apply(&s.conversations[i])
			s.conversations[i].UpdatedAt = time.Now()
			return nil
		}
	}
	return nil
}

// Remove deletes a conversation. A selected conversation clears the
// selection and its message state. Placeholders are removed locally
// without a network call.
func (s *Store) Remove(ctx context.Context, id string) error {
	conv, ok := s.Conversation(id)
	if !ok {
		return ErrUnknownConversation
	}

	if !conv.IsPlaceholder() {
		if err := s.backend.DeleteConversation(ctx, id); err != nil {
			return err
		}
	}

	s.mu.Lock()
	for i := range s.conversations {
		if s.conversations[i].ID == id {
			s.conversations = append(s.conversations[:i], s.conversations[i+1:]...)
			break
		}
	}
	if s.selected == id {
		s.selected = ""
	}
	s.mu.Unlock()

	s.lifecycle.DropConversation(id)
	return nil
}

// ReplacePlaceholder swaps a placeholder entry for its server record,
// keeping selection stable. Called by the lifecycle after the first
// successful create.
func (s *Store) ReplacePlaceholder(localID string, persisted model.Conversation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.conversations {
		if s.conversations[i].ID == localID {
			s.conversations[i] = persisted
			break
		}
	}
	if s.selected == localID {
		s.selected = persisted.ID
	}
}

// =============================================================================
// SIDEBAR GROUPING
// =============================================================================

// GroupedConversations buckets the list by age for the sidebar, in
// display order: today, yesterday, previous 7 days, older.
func (s *Store) GroupedConversations(now time.Time) []ConversationGroup {
	convs := s.Conversations()

	byGroup := make(map[model.DateGroup][]model.Conversation)
	for _, c := range convs {
		g := model.DateGroupOf(c.CreatedAt, now)
		byGroup[g] = append(byGroup[g], c)
	}

	var out []ConversationGroup
	for _, g := range model.GroupOrder {
		if members, ok := byGroup[g]; ok {
			out = append(out, ConversationGroup{Label: g, Conversations: members})
		}
	}
	return out
}

// ConversationGroup is one labeled bucket of the sidebar.
type ConversationGroup struct {
	Label         model.DateGroup
	Conversations []model.Conversation
}
