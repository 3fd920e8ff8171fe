// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package reveal

import (
	"strings"
	"sync"
	"time"
)

// DefaultInterval is the delay between revealed characters.
const DefaultInterval = 30 * time.Millisecond

// =============================================================================
// SESSION
// =============================================================================

// session tracks one in-progress reveal. All fields are guarded by the
// engine mutex.
type session struct {
	messageID string
	full      []rune
	cursor    int
	cancelled bool
}

// Tick is the outcome of advancing one session by one step.
type Tick struct {
	// MessageID identifies the assistant message being revealed.
	MessageID string
	// Visible is the prefix to display after this tick.
	Visible string
	// Done is true when the session finished on this tick.
	Done bool
}

// =============================================================================
// ENGINE
// =============================================================================

// CompleteFunc is called exactly once when a session finishes,
// naturally or by cancellation. Called without the engine lock held.
type CompleteFunc func(conversationID, messageID string)

// Engine manages reveal sessions, at most one per conversation.
// IMPORTANT: hold as a pointer; the mutex must not be copied when
// Bubble Tea returns model copies.
type Engine struct {
	mu       sync.Mutex
	sessions map[string]*session
	// revealed remembers finished message ids so a repeated Start for
	// the same message is a no-op.
	revealed map[string]bool
	interval time.Duration
	complete CompleteFunc
}

// NewEngine creates an engine ticking at interval. A non-positive
// interval falls back to DefaultInterval.
func NewEngine(interval time.Duration, complete CompleteFunc) *Engine {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Engine{
		sessions: make(map[string]*session),
		revealed: make(map[string]bool),
		interval: interval,
		complete: complete,
	}
}

// Interval returns the tick interval.
func (e *Engine) Interval() time.Duration {
	return e.interval
}

// Start begins revealing fullText for an assistant message. A session
// already running in the conversation is finalized first: its text
// jumps to full and its completion fires. Starting a message that
// already finished revealing is a no-op; the second return is false.
func (e *Engine) Start(conversationID, messageID, fullText string) (Tick, bool) {
	e.mu.Lock()

	if e.revealed[sessionKey(conversationID, messageID)] {
		e.mu.Unlock()
		return Tick{}, false
	}

	var finished *session
	if prev, ok := e.sessions[conversationID]; ok {
		finished = prev
		e.revealed[sessionKey(conversationID, prev.messageID)] = true
		delete(e.sessions, conversationID)
	}

	s := &session{messageID: messageID, full: []rune(fullText)}
	e.sessions[conversationID] = s
	e.mu.Unlock()

	if finished != nil && e.complete != nil {
		e.complete(conversationID, finished.messageID)
	}
	return Tick{MessageID: messageID, Visible: ""}, true
}

// Advance moves the session for conversationID forward one step. A
// cancelled session jumps to the full text and finishes. The second
// return is false when no session is active.
func (e *Engine) Advance(conversationID string) (Tick, bool) {
	e.mu.Lock()
	s, ok := e.sessions[conversationID]
	if !ok {
		e.mu.Unlock()
		return Tick{}, false
	}

	if s.cancelled {
		s.cursor = len(s.full)
	} else if s.cursor < len(s.full) {
		s.cursor++
	}

	tick := Tick{
		MessageID: s.messageID,
		Visible:   string(s.full[:s.cursor]),
		Done:      s.cursor >= len(s.full),
	}

	var fireComplete bool
	if tick.Done {
		e.revealed[sessionKey(conversationID, s.messageID)] = true
		delete(e.sessions, conversationID)
		fireComplete = true
	}
	e.mu.Unlock()

	if fireComplete && e.complete != nil {
		e.complete(conversationID, s.messageID)
	}
	return tick, true
}

// Cancel flags the active session so its next tick jumps to the full
// text. Idempotent; returns true when a running session was flagged.
func (e *Engine) Cancel(conversationID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.sessions[conversationID]
	if !ok || s.cancelled {
		return false
	}
	s.cancelled = true
	return true
}

// Active reports whether a session is running for the conversation.
func (e *Engine) Active(conversationID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.sessions[conversationID]
	return ok
}

// ActiveMessageID returns the message id being revealed, or "".
func (e *Engine) ActiveMessageID(conversationID string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if s, ok := e.sessions[conversationID]; ok {
		return s.messageID
	}
	return ""
}

// Visible returns the currently revealed prefix for the conversation's
// session, or "" when none is active.
func (e *Engine) Visible(conversationID string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if s, ok := e.sessions[conversationID]; ok {
		return string(s.full[:s.cursor])
	}
	return ""
}

// Drop discards any session state for a conversation without firing
// completion. Used when the conversation itself is deleted. The
// revealed-message entries go too, so the map stays bounded by the
// conversations still alive.
func (e *Engine) Drop(conversationID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.sessions, conversationID)
	prefix := conversationID + "/"
	for key := range e.revealed {
		if strings.HasPrefix(key, prefix) {
			delete(e.revealed, key)
		}
	}
}

func sessionKey(conversationID, messageID string) string {
	return conversationID + "/" + messageID
}
