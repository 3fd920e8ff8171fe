// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"time"

	"github.com/jeranaias/flowvo-tui/internal/model"
)

// =============================================================================
// JSON EXPORTER
// =============================================================================

// JSONExporter exports the complete conversation as JSON. Options do
// not filter JSON output; the export is a faithful dump.
type JSONExporter struct{}

// NewJSONExporter creates a JSON exporter.
func NewJSONExporter() *JSONExporter {
	return &JSONExporter{}
}

// jsonDocument is the export file layout.
type jsonDocument struct {
	Conversation model.Conversation `json:"conversation"`
	Messages     []*model.Message   `json:"messages"`
	ExportedAt   time.Time          `json:"exportedAt"`
	Generator    string             `json:"generator"`
}

// Export converts a conversation to indented JSON.
func (e *JSONExporter) Export(conv model.Conversation, msgs []*model.Message) ([]byte, error) {
	doc := jsonDocument{
		Conversation: conv,
		Messages:     msgs,
		ExportedAt:   time.Now(),
		Generator:    "flowvo-tui",
	}
	return json.MarshalIndent(doc, "", "  ")
}

// FileExtension returns the JSON extension.
func (e *JSONExporter) FileExtension() string {
	return ".json"
}
