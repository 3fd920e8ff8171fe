// flowvo - a terminal client for the FlowVo chat backend.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/flowvo-tui/internal/api"
	"github.com/jeranaias/flowvo-tui/internal/auth"
	"github.com/jeranaias/flowvo-tui/internal/cli"
	"github.com/jeranaias/flowvo-tui/internal/config"
	"github.com/jeranaias/flowvo-tui/internal/ingest"
	"github.com/jeranaias/flowvo-tui/internal/reveal"
	"github.com/jeranaias/flowvo-tui/internal/session"
	"github.com/jeranaias/flowvo-tui/internal/ui/chat"
	"github.com/jeranaias/flowvo-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse(os.Args[1:])

	switch cmd {
	case cli.CmdVersion:
		cli.HandleVersion()
		return
	case cli.CmdHelp:
		cli.HandleHelp()
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fatal(err)
	}

	tokenStore, err := tokenStoreFor(cfg)
	if err != nil {
		fatal(err)
	}

	switch cmd {
	case cli.CmdLogin:
		if err := cli.HandleLogin(tokenStore, args); err != nil {
			fatal(err)
		}
		return
	case cli.CmdLogout:
		if err := cli.HandleLogout(tokenStore); err != nil {
			fatal(err)
		}
		return
	}

	client := api.NewClient(cfg.Server.BaseURL, tokenSource(tokenStore))

	// Piped stdin or stdout drops into plain line mode.
	if cmd == cli.CmdChat || !cli.Interactive() {
		if err := cli.HandleChat(cfg, client); err != nil {
			fatal(err)
		}
		return
	}

	if err := runTUI(cfg, client); err != nil {
		fatal(err)
	}
}

// =============================================================================
// WIRING
// =============================================================================

func tokenStoreFor(cfg *config.Config) (*auth.FileTokenStore, error) {
	path := cfg.Server.TokenPath
	if path == "" {
		var err error
		path, err = auth.DefaultTokenPath()
		if err != nil {
			return nil, fmt.Errorf("resolving token path: %w", err)
		}
	}
	return auth.NewFileTokenStore(path), nil
}

// tokenSource prefers the FLOWVO_TOKEN environment variable over the
// stored token, so CI and one-off runs need no login.
func tokenSource(store *auth.FileTokenStore) api.TokenSource {
	if token := os.Getenv("FLOWVO_TOKEN"); token != "" {
		return auth.StaticToken(token)
	}
	return store
}

func runTUI(cfg *config.Config, client *api.Client) error {
	engine := reveal.NewEngine(time.Duration(cfg.Chat.RevealIntervalMS)*time.Millisecond, nil)
	store, lifecycle := session.New(client, engine, cfg.Chat.DefaultModel, cfg.Chat.DefaultAgent)
	pipeline := ingest.NewPipeline()

	var watcher *ingest.Watcher
	if dir := cfg.Attachments.DropFolder; dir != "" {
		w, err := ingest.NewWatcher(pipeline, dir)
		if err != nil {
			fmt.Fprintln(os.Stderr, "warning: drop folder disabled:", err)
		} else if err := w.Watch(); err != nil {
			fmt.Fprintln(os.Stderr, "warning: drop folder disabled:", err)
			w.Close()
		} else {
			watcher = w
			defer watcher.Close()
		}
	}

	m := chat.New(chat.Options{
		Theme:           styles.NewTheme(),
		Backend:         client,
		Store:           store,
		Lifecycle:       lifecycle,
		Engine:          engine,
		Pipeline:        pipeline,
		Watcher:         watcher,
		ScrollThreshold: cfg.Chat.ScrollThreshold,
	})

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "flowvo:", err)
	os.Exit(1)
}
