// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the non-TUI command surface.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/jeranaias/flowvo-tui/internal/auth"
)

// Version information (set at build time)
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// =============================================================================
// CREDENTIAL COMMANDS
// =============================================================================

// HandleLogin stores the backend token. The token comes from the
// --token flag or an echo-free prompt.
func HandleLogin(store *auth.FileTokenStore, args []string) error {
	parser := NewArgParser(args)

	token := parser.Flag("token")
	if token == "" {
		fmt.Print("Token: ")
		var err error
		token, err = ReadSecret()
		fmt.Println()
		if err != nil {
			return fmt.Errorf("reading token: %w", err)
		}
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("empty token")
	}

	if err := store.Save(token); err != nil {
		return fmt.Errorf("saving token: %w", err)
	}
	fmt.Println("Token saved.")
	return nil
}

// HandleLogout removes the stored token.
func HandleLogout(store *auth.FileTokenStore) error {
	if !store.Exists() {
		fmt.Println("No token stored.")
		return nil
	}
	if err := store.Clear(); err != nil {
		return fmt.Errorf("clearing token: %w", err)
	}
	fmt.Println("Token removed.")
	return nil
}

// HandleVersion prints version information.
func HandleVersion() {
	fmt.Printf("flowvo %s (%s, built %s)\n", Version, GitCommit, BuildDate)
}

// HandleHelp prints command usage.
func HandleHelp() {
	fmt.Fprintln(os.Stderr, `flowvo - terminal client for the FlowVo chat backend

Usage:
  flowvo            launch the full-screen UI
  flowvo chat       plain line-mode chat (also used when piped)
  flowvo login      store the backend token (--token <value> to skip the prompt)
  flowvo logout     remove the stored token
  flowvo version    print version information`)
}
