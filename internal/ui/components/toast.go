// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Non-blocking toast notifications. Toasts appear above the status bar
// and auto-dismiss; rejected files and failed sends surface here without
// stealing focus from the input.
package components

import (
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/flowvo-tui/internal/ui/styles"
)

// =============================================================================
// TOAST TYPES
// =============================================================================

// ToastKind is the severity of a toast notification.
type ToastKind int

const (
	// ToastInfo is an informational toast
	ToastInfo ToastKind = iota
	// ToastSuccess is a success toast
	ToastSuccess
	// ToastWarning is a warning toast
	ToastWarning
	// ToastError is an error toast
	ToastError
)

const (
	// DefaultToastDuration auto-dismisses info and success toasts.
	DefaultToastDuration = 4 * time.Second
	// WarningToastDuration gives warnings a little longer.
	WarningToastDuration = 6 * time.Second
	// ErrorToastDuration gives errors the longest read time.
	ErrorToastDuration = 8 * time.Second
)

var toastCounter int64

// Toast is one notification.
type Toast struct {
	ID        int64
	Message   string
	Kind      ToastKind
	CreatedAt time.Time
	Duration  time.Duration
}

// NewToast creates a toast with the duration matching its kind.
func NewToast(message string, kind ToastKind) Toast {
	d := DefaultToastDuration
	switch kind {
	case ToastWarning:
		d = WarningToastDuration
	case ToastError:
		d = ErrorToastDuration
	}
	return Toast{
		ID:        atomic.AddInt64(&toastCounter, 1),
		Message:   message,
		Kind:      kind,
		CreatedAt: time.Now(),
		Duration:  d,
	}
}

// ToastExpiredMsg asks the model to drop a dismissed toast.
type ToastExpiredMsg struct {
	ID int64
}

// =============================================================================
// TOAST STACK
// =============================================================================

// ToastStack holds the visible toasts, newest last.
type ToastStack struct {
	toasts []Toast
}

// Push adds a toast and returns the command that expires it.
func (s *ToastStack) Push(t Toast) tea.Cmd {
	s.toasts = append(s.toasts, t)
	return tea.Tick(t.Duration, func(time.Time) tea.Msg {
		return ToastExpiredMsg{ID: t.ID}
	})
}

// Expire removes a toast by id.
func (s *ToastStack) Expire(id int64) {
	for i, t := range s.toasts {
		if t.ID == id {
			s.toasts = append(s.toasts[:i], s.toasts[i+1:]...)
			return
		}
	}
}

// DismissAll clears every toast.
func (s *ToastStack) DismissAll() {
	s.toasts = nil
}

// Empty reports whether there is nothing to show.
func (s *ToastStack) Empty() bool {
	return len(s.toasts) == 0
}

// View renders the stack, one toast per line.
func (s *ToastStack) View(theme *styles.Theme) string {
	if len(s.toasts) == 0 {
		return ""
	}

	out := ""
	for i, t := range s.toasts {
		style := theme.ToastInfo
		switch t.Kind {
		case ToastSuccess:
			style = theme.ToastSuccess
		case ToastWarning:
			style = theme.ToastWarning
		case ToastError:
			style = theme.ToastError
		}
		if i > 0 {
			out += "\n"
		}
		out += style.Render(t.Message)
	}
	return out
}
