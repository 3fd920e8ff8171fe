// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ingest

import (
	"path/filepath"
	"strings"

	"github.com/jeranaias/flowvo-tui/internal/model"
)

// =============================================================================
// TYPE TABLES
// =============================================================================

// imageMIMEs are image types sent as inline base64 and offered to the
// vision endpoint.
var imageMIMEs = map[string]bool{
	"image/jpeg":    true,
	"image/jpg":     true,
	"image/png":     true,
	"image/gif":     true,
	"image/webp":    true,
	"image/svg+xml": true,
	"image/bmp":     true,
}

// officeMIMEs are document types the backend parses server-side.
var officeMIMEs = map[string]bool{
	"application/pdf":          true,
	"application/msword":       true,
	"application/vnd.ms-excel": true,
	"application/vnd.ms-powerpoint": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         true,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": true,
}

// textMIMEs are types read inline as text.
var textMIMEs = map[string]bool{
	"text/plain":               true,
	"text/markdown":            true,
	"text/csv":                 true,
	"text/javascript":          true,
	"text/typescript":          true,
	"text/css":                 true,
	"text/html":                true,
	"text/xml":                 true,
	"application/json":         true,
	"application/x-typescript": true,
	"text/x-java-source":       true,
	"text/x-python":            true,
	"text/x-c":                 true,
	"text/x-c++":               true,
	"text/x-csharp":            true,
	"text/x-php":               true,
	"text/x-ruby":              true,
	"text/x-go":                true,
	"text/x-rust":              true,
	"text/x-swift":             true,
	"text/x-kotlin":            true,
	"text/x-scala":             true,
	"text/x-shell":             true,
	"text/x-sql":               true,
	"text/x-yaml":              true,
}

var imageExts = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "gif": true,
	"webp": true, "svg": true, "bmp": true,
}

var officeExts = map[string]bool{
	"doc": true, "docx": true, "xls": true, "xlsx": true,
	"ppt": true, "pptx": true, "pdf": true,
}

var textExts = map[string]bool{
	"txt": true, "md": true, "js": true, "ts": true, "jsx": true,
	"tsx": true, "vue": true, "py": true, "java": true, "cpp": true,
	"c": true, "h": true, "cs": true, "php": true, "rb": true,
	"go": true, "rs": true, "swift": true, "kt": true, "scala": true,
	"sh": true, "sql": true, "yml": true, "yaml": true, "json": true,
	"xml": true, "css": true, "html": true, "csv": true,
}

// codeExts is the subset of textExts classified as code for display.
var codeExts = map[string]bool{
	"js": true, "ts": true, "jsx": true, "tsx": true, "vue": true,
	"py": true, "java": true, "cpp": true, "c": true, "h": true,
	"cs": true, "php": true, "rb": true, "go": true, "rs": true,
	"swift": true, "kt": true, "scala": true, "sh": true, "sql": true,
	"yml": true, "yaml": true, "json": true, "xml": true,
	"css": true, "html": true,
}

// extMIME maps known extensions to a declared type when the caller
// provides none.
var extMIME = map[string]string{
	"jpg": "image/jpeg", "jpeg": "image/jpeg", "png": "image/png",
	"gif": "image/gif", "webp": "image/webp", "svg": "image/svg+xml",
	"bmp": "image/bmp",
	"pdf": "application/pdf",
	"doc": "application/msword",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"xls":  "application/vnd.ms-excel",
	"xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"ppt":  "application/vnd.ms-powerpoint",
	"pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	"txt":  "text/plain", "md": "text/markdown", "csv": "text/csv",
	"json": "application/json", "html": "text/html", "css": "text/css",
	"js": "text/javascript", "ts": "text/typescript", "xml": "text/xml",
	"py": "text/x-python", "go": "text/x-go", "rs": "text/x-rust",
	"sh": "text/x-shell", "sql": "text/x-sql",
	"yml": "text/x-yaml", "yaml": "text/x-yaml",
}

// =============================================================================
// CLASSIFICATION
// =============================================================================

// extOf returns the lowercased extension of name without the dot.
func extOf(name string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
}

// DetectKind classifies a file by declared MIME type first, then by
// extension. Unknown files come back as AttachmentBinary.
func DetectKind(name, mimeType string) model.AttachmentKind {
	switch {
	case imageMIMEs[mimeType]:
		return model.AttachmentImage
	case officeMIMEs[mimeType]:
		return model.AttachmentOffice
	case textMIMEs[mimeType]:
		if codeExts[extOf(name)] {
			return model.AttachmentCode
		}
		return model.AttachmentDocument
	}

	ext := extOf(name)
	switch {
	case imageExts[ext]:
		return model.AttachmentImage
	case officeExts[ext]:
		return model.AttachmentOffice
	case codeExts[ext]:
		return model.AttachmentCode
	case textExts[ext]:
		return model.AttachmentDocument
	}
	return model.AttachmentBinary
}

// DetectMIME resolves the declared type for a file, falling back to the
// extension table, then to application/octet-stream.
func DetectMIME(name, declared string) string {
	if declared != "" {
		return declared
	}
	if m, ok := extMIME[extOf(name)]; ok {
		return m
	}
	return "application/octet-stream"
}

// Supported reports whether the file passes the type allow-list by
// either declared MIME or extension.
func Supported(name, mimeType string) bool {
	return DetectKind(name, mimeType) != model.AttachmentBinary
}
