// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the non-TUI command surface.
//
// This file implements the plain line-mode chat used when the program
// runs without a usable terminal for the full-screen UI, or when
// invoked as `flowvo chat`. It drives the same session layer as the
// TUI; replies print whole instead of revealing.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/jeranaias/flowvo-tui/internal/api"
	"github.com/jeranaias/flowvo-tui/internal/config"
	"github.com/jeranaias/flowvo-tui/internal/export"
	"github.com/jeranaias/flowvo-tui/internal/ingest"
	"github.com/jeranaias/flowvo-tui/internal/model"
	"github.com/jeranaias/flowvo-tui/internal/reveal"
	"github.com/jeranaias/flowvo-tui/internal/session"
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// lineReader wraps liner with persistent history.
// USABILITY: Supports arrow keys for history navigation and line editing.
type lineReader struct {
	line        *liner.State
	historyFile string
}

func newLineReader() *lineReader {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	dir, err := config.ConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	r := &lineReader{
		line:        line,
		historyFile: filepath.Join(dir, "chat_history"),
	}
	if f, err := os.Open(r.historyFile); err == nil {
		r.line.ReadHistory(f)
		f.Close()
	}
	return r
}

func (r *lineReader) read(prompt string) (string, error) {
	input, err := r.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		r.line.AppendHistory(input)
	}
	return input, nil
}

func (r *lineReader) close() {
	if f, err := os.OpenFile(r.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
		r.line.WriteHistory(f)
		f.Close()
	}
	r.line.Close()
}

// =============================================================================
// PLAIN CHAT LOOP
// =============================================================================

// plainChat holds the state of one line-mode session.
type plainChat struct {
	cfg       *config.Config
	backend   api.Backend
	store     *session.Store
	lifecycle *session.Lifecycle
	engine    *reveal.Engine
	pipeline  *ingest.Pipeline
	staged    []model.Attachment
	reader    *lineReader
}

// HandleChat runs the plain line-mode chat loop.
func HandleChat(cfg *config.Config, backend api.Backend) error {
	engine := reveal.NewEngine(0, nil)
	store, lifecycle := session.New(backend, engine, cfg.Chat.DefaultModel, cfg.Chat.DefaultAgent)

	ctx := context.Background()
	if err := store.Load(ctx); err != nil {
		return fmt.Errorf("loading conversations: %w", err)
	}
	if convs := store.Conversations(); len(convs) > 0 {
		if err := store.Select(ctx, convs[0].ID); err != nil {
			return fmt.Errorf("loading messages: %w", err)
		}
	} else {
		store.Create()
	}

	c := &plainChat{
		cfg:       cfg,
		backend:   backend,
		store:     store,
		lifecycle: lifecycle,
		engine:    engine,
		pipeline:  ingest.NewPipeline(),
		reader:    newLineReader(),
	}
	defer c.reader.close()

	if models, err := backend.ListModels(ctx); err == nil {
		lifecycle.SetModels(models)
	}

	fmt.Println("flowvo line mode. /help lists commands, /quit exits.")
	return c.loop(ctx)
}

func (c *plainChat) loop(ctx context.Context) error {
	for {
		input, err := c.reader.read("> ")
		if err == liner.ErrPromptAborted {
			return nil
		}
		if err != nil {
			return nil
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if strings.HasPrefix(input, "/") {
			if quit := c.runCommand(ctx, input); quit {
				return nil
			}
			continue
		}
		c.send(ctx, input)
	}
}

// send drives one message through the full lifecycle and prints the
// reply whole.
func (c *plainChat) send(ctx context.Context, text string) {
	selected := c.store.Selected()
	pending, err := c.lifecycle.Send(selected, text, c.staged)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return
	}
	c.staged = nil

	outcome := c.lifecycle.Perform(ctx, pending.TempID)
	res := c.lifecycle.Resolve(outcome)
	if res.Err != nil {
		fmt.Fprintln(os.Stderr, "error:", res.Err)
		return
	}
	fmt.Println()
	fmt.Println(res.Reply)
	fmt.Println()

	// Settle the reveal session the TUI would have ticked through.
	conv := res.ConversationID
	c.engine.Cancel(conv)
	c.engine.Advance(conv)
}

// =============================================================================
// COMMANDS
// =============================================================================

// runCommand executes one slash command; the return value reports
// whether the loop should exit.
func (c *plainChat) runCommand(ctx context.Context, input string) bool {
	fields := strings.Fields(input)
	name := strings.TrimPrefix(fields[0], "/")
	args := fields[1:]

	switch name {
	case "quit", "exit", "q":
		return true

	case "new":
		conv := c.store.Create()
		fmt.Println("started", conv.GetTitle())

	case "list":
		for i, conv := range c.store.Conversations() {
			marker := " "
			if conv.ID == c.store.Selected() {
				marker = ">"
			}
			fmt.Printf("%s %2d  %s\n", marker, i+1, conv.GetTitle())
		}

	case "select":
		if len(args) == 0 {
			fmt.Fprintln(os.Stderr, "usage: /select <number>")
			break
		}
		convs := c.store.Conversations()
		idx := parseIndex(args[0], len(convs))
		if idx < 0 {
			fmt.Fprintln(os.Stderr, "no such conversation")
			break
		}
		if err := c.store.Select(ctx, convs[idx].ID); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			break
		}
		c.printHistory()

	case "model":
		if len(args) == 0 {
			fmt.Fprintln(os.Stderr, "usage: /model <id>")
			break
		}
		if err := c.store.SetModel(ctx, c.store.Selected(), args[0]); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
		}

	case "models":
		models, err := c.backend.ListModels(ctx)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			break
		}
		for _, info := range models {
			suffix := ""
			if info.VisionSupported {
				suffix = " (vision)"
			}
			fmt.Println(info.ID + suffix)
		}

	case "attach":
		if len(args) == 0 {
			fmt.Fprintln(os.Stderr, "usage: /attach <path> [path...]")
			break
		}
		for _, res := range c.pipeline.IngestAll(ctx, args) {
			if res.Err != nil {
				fmt.Fprintln(os.Stderr, res.Path+":", res.Err)
				continue
			}
			c.staged = append(c.staged, res.Attachment)
			fmt.Println("attached", res.Attachment.Name)
		}

	case "export":
		c.exportTranscript(args)

	case "help":
		fmt.Println("/new /list /select /model /models /attach /export /quit")

	default:
		fmt.Fprintln(os.Stderr, "unknown command: /"+name)
	}
	return false
}

func (c *plainChat) printHistory() {
	for _, msg := range c.lifecycle.Messages(c.store.Selected()) {
		fmt.Printf("[%s] %s\n", msg.Role.DisplayName(), msg.Content)
	}
}

func (c *plainChat) exportTranscript(args []string) {
	conv, ok := c.store.SelectedConversation()
	if !ok {
		fmt.Fprintln(os.Stderr, "no conversation selected")
		return
	}
	opts := export.DefaultOptions()

	var exporter export.Exporter
	if len(args) > 0 && args[0] == "json" {
		exporter = export.NewJSONExporter()
	} else {
		exporter = export.NewMarkdownExporter(opts)
	}

	path, err := export.ExportToFile(exporter, opts, conv, c.lifecycle.Messages(conv.ID))
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return
	}
	fmt.Println("exported to", path)
}

// parseIndex converts a 1-based list number, returning -1 when out of
// range.
func parseIndex(s string, n int) int {
	idx := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return -1
		}
		idx = idx*10 + int(r-'0')
	}
	idx--
	if idx < 0 || idx >= n {
		return -1
	}
	return idx
}
