// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes conversations to files in portable formats.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jeranaias/flowvo-tui/internal/model"
	"github.com/jeranaias/flowvo-tui/internal/util"
)

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter converts a conversation and its messages to a target format.
type Exporter interface {
	// Export renders the conversation and returns the file content.
	Export(conv model.Conversation, msgs []*model.Message) ([]byte, error)

	// FileExtension returns the output extension (e.g., ".md").
	FileExtension() string
}

// Options configures export behavior.
type Options struct {
	// OutputDir is where files are saved. Default: current directory.
	OutputDir string

	// IncludeMetadata includes a metadata header (model, agent, dates).
	IncludeMetadata bool

	// IncludeTimestamps includes per-message timestamps.
	IncludeTimestamps bool
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{
		OutputDir:         ".",
		IncludeMetadata:   true,
		IncludeTimestamps: true,
	}
}

// =============================================================================
// FILE OUTPUT
// =============================================================================

// ExportToFile renders the conversation and writes it next to the
// working directory, returning the output path.
func ExportToFile(e Exporter, opts *Options, conv model.Conversation, msgs []*model.Message) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	content, err := e.Export(conv, msgs)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	name := fmt.Sprintf("%s-%s%s",
		sanitizeFilename(conv.GetTitle()),
		time.Now().Format("20060102-150405"),
		e.FileExtension())
	path := filepath.Join(opts.OutputDir, name)

	if err := util.AtomicWriteFile(path, content, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	return path, nil
}

// sanitizeFilename keeps a title usable as a filename across platforms.
func sanitizeFilename(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		title = "conversation"
	}
	var sb strings.Builder
	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			sb.WriteRune('-')
		}
	}
	out := strings.Trim(sb.String(), "-")
	if out == "" {
		out = "conversation"
	}
	if runes := []rune(out); len(runes) > 48 {
		out = string(runes[:48])
	}
	return out
}
