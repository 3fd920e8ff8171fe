// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the conversational view of the TUI.
package chat

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/flowvo-tui/internal/api"
	"github.com/jeranaias/flowvo-tui/internal/ingest"
	"github.com/jeranaias/flowvo-tui/internal/model"
	"github.com/jeranaias/flowvo-tui/internal/reveal"
	"github.com/jeranaias/flowvo-tui/internal/sched"
	"github.com/jeranaias/flowvo-tui/internal/session"
	"github.com/jeranaias/flowvo-tui/internal/ui/components"
	"github.com/jeranaias/flowvo-tui/internal/ui/styles"
)

// =============================================================================
// FOCUS
// =============================================================================

// focusArea identifies which pane receives key input.
type focusArea int

const (
	focusInput focusArea = iota
	focusSidebar
)

// backendTimeout bounds the maintenance calls issued from the UI.
const backendTimeout = 15 * time.Second

// =============================================================================
// CHAT MODEL
// =============================================================================

// Options wires the session layer and attachment machinery into the
// chat model.
type Options struct {
	Theme     *styles.Theme
	Backend   api.Backend
	Store     *session.Store
	Lifecycle *session.Lifecycle
	Engine    *reveal.Engine
	Pipeline  *ingest.Pipeline
	// Watcher is optional; nil disables the drop folder.
	Watcher *ingest.Watcher

	ScrollThreshold int
	ExportDir       string
}

// Model is the Bubble Tea model for the chat view.
type Model struct {
	theme  *styles.Theme
	width  int
	height int

	// Session layer
	backend   api.Backend
	store     *session.Store
	lifecycle *session.Lifecycle
	engine    *reveal.Engine

	// registry tracks in-flight send workers so Esc can cancel them.
	// Pointer to avoid copying its mutex when Bubble Tea copies the model.
	registry *sched.Registry

	// Attachments
	pipeline *ingest.Pipeline
	watcher  *ingest.Watcher
	staged   []model.Attachment

	// Catalogs
	models []model.ModelInfo
	agents []model.AgentInfo

	// UI components. Pointers: several carry internal state that must
	// survive Bubble Tea's model copies.
	header    *components.Header
	sidebar   *components.Sidebar
	statusBar *components.StatusBar
	strip     *components.AttachmentStrip
	renderer  *components.MessageRenderer
	toasts    *components.ToastStack
	follow    *components.ScrollFollow

	viewport viewport.Model
	input    textinput.Model
	spin     spinner.Model

	keyMap KeyMap
	focus  focusArea

	// confirmDelete holds the conversation pending a y/n answer.
	confirmDelete string

	exportDir string
	quitting  bool
}

// New builds the chat model. Backend data arrives through Init commands.
func New(opts Options) Model {
	theme := opts.Theme
	if theme == nil {
		theme = styles.NewTheme()
	}

	ti := textinput.New()
	ti.Placeholder = "Type a message, or / for commands"
	ti.Prompt = "> "
	ti.PromptStyle = theme.InputPrompt
	ti.PlaceholderStyle = theme.InputPlaceholder
	ti.CharLimit = 0
	ti.Focus()

	vp := viewport.New(80, 20)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Spinner

	threshold := opts.ScrollThreshold
	if threshold <= 0 {
		threshold = components.DefaultScrollThreshold
	}

	return Model{
		theme:     theme,
		backend:   opts.Backend,
		store:     opts.Store,
		lifecycle: opts.Lifecycle,
		engine:    opts.Engine,
		registry:  sched.NewRegistry(),
		pipeline:  opts.Pipeline,
		watcher:   opts.Watcher,
		header:    components.NewHeader(theme),
		sidebar:   components.NewSidebar(theme),
		statusBar: components.NewStatusBar(theme),
		strip:     components.NewAttachmentStrip(theme),
		renderer:  components.NewMessageRenderer(theme, 72),
		toasts:    &components.ToastStack{},
		follow:    components.NewScrollFollow(threshold),
		viewport:  vp,
		input:     ti,
		spin:      sp,
		keyMap:    DefaultKeyMap(),
		exportDir: opts.ExportDir,
	}
}

// Init loads the conversation list and catalogs, and arms the drop
// folder listener when one is configured.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.loadConversationsCmd(),
		m.loadModelsCmd(),
		m.loadAgentsCmd(),
		textinput.Blink,
	}
	if m.watcher != nil {
		cmds = append(cmds, watchCmd(m.watcher))
	}
	return tea.Batch(cmds...)
}

// =============================================================================
// LAYOUT
// =============================================================================

// Fixed component heights used to size the viewport. renderChat
// measures the real heights and trims if they drift.
const (
	headerHeight = 1
	inputHeight  = 3
	statusHeight = 1
)

func (m *Model) handleResize(width, height int) {
	m.width = width
	m.height = height
	m.theme.SetSize(width, height)

	m.header.Width = width
	m.statusBar.Width = width

	sidebarWidth := 0
	if m.sidebar.Visible() {
		sidebarWidth = m.sidebar.Width
	}
	m.sidebar.Height = height - headerHeight - statusHeight

	transcriptWidth := width - sidebarWidth
	if transcriptWidth < 20 {
		transcriptWidth = 20
	}
	m.renderer.SetWidth(transcriptWidth)
	m.viewport.Width = transcriptWidth
	m.viewport.Height = m.transcriptHeight()
	m.input.Width = transcriptWidth - 8

	m.refreshTranscript()
}

// transcriptHeight is the viewport height given the current chrome.
func (m *Model) transcriptHeight() int {
	h := m.height - headerHeight - inputHeight - statusHeight
	if len(m.staged) > 0 {
		h--
	}
	if h < 1 {
		h = 1
	}
	return h
}

// =============================================================================
// TRANSCRIPT STATE
// =============================================================================

// refreshTranscript re-renders the selected conversation into the
// viewport, honoring the active reveal session and the follow pin.
func (m *Model) refreshTranscript() {
	selected := m.store.Selected()
	if selected == "" {
		m.viewport.SetContent("")
		return
	}
	msgs := m.lifecycle.Messages(selected)
	activeID := m.engine.ActiveMessageID(selected)
	visible := m.engine.Visible(selected)
	m.viewport.SetContent(m.renderer.RenderTranscript(msgs, activeID, visible))
	if m.follow.ShouldAutoScroll() {
		m.viewport.GotoBottom()
	}
}

// syncFollow reports the viewport position to the follow controller
// after any manual scroll.
func (m *Model) syncFollow() {
	distance := m.viewport.TotalLineCount() - m.viewport.YOffset - m.viewport.Height
	if distance < 0 {
		distance = 0
	}
	m.follow.Notify(distance)
}

// refreshChrome updates the header and status bar from session state.
func (m *Model) refreshChrome() {
	conv, ok := m.store.SelectedConversation()
	if !ok {
		m.header.SetConversation("", false)
		m.statusBar.Model = ""
		m.statusBar.Agent = ""
		m.statusBar.Status = components.StatusReady
		return
	}
	m.header.SetConversation(conv.GetTitle(), conv.IsPlaceholder())
	m.statusBar.Model = conv.Model
	m.statusBar.Agent = conv.Agent
	switch {
	case m.lifecycle.Sending(conv.ID):
		m.statusBar.Status = components.StatusSending
	case m.engine.Active(conv.ID):
		m.statusBar.Status = components.StatusRevealing
	default:
		m.statusBar.Status = components.StatusReady
	}
}
