// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the non-TUI command surface.
package cli

import (
	"strings"
)

// =============================================================================
// COMMAND ROUTING
// =============================================================================

// Command identifies the top-level command to run.
type Command string

const (
	CmdTUI     Command = "tui"
	CmdChat    Command = "chat"
	CmdLogin   Command = "login"
	CmdLogout  Command = "logout"
	CmdVersion Command = "version"
	CmdHelp    Command = "help"
)

// Parse splits the process arguments into a command and its args.
// No arguments launches the TUI.
func Parse(argv []string) (Command, []string) {
	if len(argv) == 0 {
		return CmdTUI, nil
	}
	switch argv[0] {
	case "chat":
		return CmdChat, argv[1:]
	case "login":
		return CmdLogin, argv[1:]
	case "logout":
		return CmdLogout, argv[1:]
	case "version", "--version", "-v":
		return CmdVersion, argv[1:]
	case "help", "--help", "-h":
		return CmdHelp, argv[1:]
	}
	return CmdTUI, argv
}

// =============================================================================
// FLAG PARSING
// =============================================================================

// ArgParser handles the flag formats used across commands:
//
//	--flag value    long flag with space-separated value
//	--flag=value    long flag with equals sign
//	--flag          boolean flag
type ArgParser struct {
	flags      map[string]string
	boolFlags  map[string]bool
	positional []string
}

// NewArgParser parses raw arguments into flags and positionals.
func NewArgParser(raw []string) *ArgParser {
	p := &ArgParser{
		flags:     make(map[string]string),
		boolFlags: make(map[string]bool),
	}
	for i := 0; i < len(raw); i++ {
		arg := raw[i]
		if !strings.HasPrefix(arg, "-") {
			p.positional = append(p.positional, arg)
			continue
		}
		name := strings.TrimLeft(arg, "-")
		if eq := strings.Index(name, "="); eq >= 0 {
			p.flags[name[:eq]] = name[eq+1:]
			continue
		}
		if i+1 < len(raw) && !strings.HasPrefix(raw[i+1], "-") {
			p.flags[name] = raw[i+1]
			i++
			continue
		}
		p.boolFlags[name] = true
	}
	return p
}

// Flag returns a string flag's value, or "" when absent.
func (p *ArgParser) Flag(name string) string {
	return p.flags[name]
}

// BoolFlag reports whether a boolean flag was given.
func (p *ArgParser) BoolFlag(name string) bool {
	if p.boolFlags[name] {
		return true
	}
	// A valued flag still counts as present.
	_, ok := p.flags[name]
	return ok
}

// Positional returns the positional arguments.
func (p *ArgParser) Positional() []string {
	return p.positional
}
