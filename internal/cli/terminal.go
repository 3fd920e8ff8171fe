// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the non-TUI command surface: argument
// parsing, the plain line-mode chat, and credential commands.
package cli

import (
	"os"

	"golang.org/x/term"
)

// =============================================================================
// TERMINAL DETECTION
// =============================================================================

// StdinIsTerminal reports whether stdin is attached to a terminal.
func StdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// StdoutIsTerminal reports whether stdout is attached to a terminal.
func StdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// Interactive reports whether the full-screen TUI can run. Piped
// stdin or stdout drops the program into plain line mode.
func Interactive() bool {
	return StdinIsTerminal() && StdoutIsTerminal()
}

// ReadSecret reads a line without echo when stdin is a terminal, so
// tokens stay out of scrollback.
func ReadSecret() (string, error) {
	if !StdinIsTerminal() {
		return readLine(os.Stdin)
	}
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func readLine(f *os.File) (string, error) {
	var out []byte
	buf := make([]byte, 1)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			if buf[0] == '\n' {
				break
			}
			if buf[0] != '\r' {
				out = append(out, buf[0])
			}
		}
		if err != nil {
			if len(out) > 0 {
				break
			}
			return "", err
		}
	}
	return string(out), nil
}
