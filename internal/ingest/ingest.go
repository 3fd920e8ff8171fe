// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ingest

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"github.com/jeranaias/flowvo-tui/internal/model"
	"github.com/jeranaias/flowvo-tui/internal/util"
)

// =============================================================================
// LIMITS AND ERRORS
// =============================================================================

const (
	// MaxFileSize is the hard ceiling for any attachment.
	MaxFileSize = 50 * 1024 * 1024 // 50MB

	// MaxTextRead bounds inline text reads; larger files keep only
	// metadata plus a placeholder.
	MaxTextRead = 1 * 1024 * 1024 // 1MB
)

var (
	// ErrUnsupportedType rejects files failing the type allow-list.
	ErrUnsupportedType = errors.New("unsupported file type")
	// ErrTooLarge rejects files over MaxFileSize.
	ErrTooLarge = errors.New("file too large")
	// ErrReadFailed wraps filesystem read failures.
	ErrReadFailed = errors.New("file read failed")
)

// =============================================================================
// PIPELINE
// =============================================================================

// Pipeline turns files into attachments. It holds no mutable state and
// is safe for concurrent use; a single zero-cost value serves the whole
// session.
type Pipeline struct {
	maxFileSize int64
	maxTextRead int64
}

// NewPipeline creates a pipeline with the default limits.
func NewPipeline() *Pipeline {
	return &Pipeline{
		maxFileSize: MaxFileSize,
		maxTextRead: MaxTextRead,
	}
}

// Result pairs one input path with its outcome. Rejections are
// per-file; a failed file never aborts the batch.
type Result struct {
	Path       string
	Attachment model.Attachment
	Err        error
}

// Ingest reads and classifies a single file. The declared MIME type may
// be empty; the extension table fills it in.
func (p *Pipeline) Ingest(ctx context.Context, path, declaredMIME string) (model.Attachment, error) {
	if err := ctx.Err(); err != nil {
		return model.Attachment{}, err
	}

	name := filepath.Base(path)
	mimeType := DetectMIME(name, declaredMIME)

	if !Supported(name, declaredMIME) {
		return model.Attachment{}, fmt.Errorf("%w: %s", ErrUnsupportedType, name)
	}

	info, err := os.Stat(path)
	if err != nil {
		return model.Attachment{}, fmt.Errorf("%w: %s: %v", ErrReadFailed, name, err)
	}
	if info.Size() > p.maxFileSize {
		return model.Attachment{}, fmt.Errorf("%w: %s (%s, max %s)",
			ErrTooLarge, name, util.FormatBytes(info.Size()), util.FormatBytes(p.maxFileSize))
	}

	att := model.Attachment{
		ID:   "file-" + uuid.NewString(),
		Name: name,
		Size: info.Size(),
		MIME: mimeType,
		Kind: DetectKind(name, declaredMIME),
	}

	switch att.Kind {
	case model.AttachmentImage:
		data, err := os.ReadFile(path)
		if err != nil {
			return model.Attachment{}, fmt.Errorf("%w: %s: %v", ErrReadFailed, name, err)
		}
		att.Base64 = dataURI(mimeType, data)

	case model.AttachmentOffice:
		// The backend extracts office content; we ship bytes plus a
		// human-readable stand-in for the transcript.
		data, err := os.ReadFile(path)
		if err != nil {
			return model.Attachment{}, fmt.Errorf("%w: %s: %v", ErrReadFailed, name, err)
		}
		att.Base64 = dataURI(mimeType, data)
		att.Text = fmt.Sprintf("[%s] - office document uploaded for server-side parsing. Size: %s",
			name, util.FormatBytes(info.Size()))
		att.Placeholder = true

	case model.AttachmentDocument, model.AttachmentCode:
		if info.Size() > p.maxTextRead {
			att.Text = fmt.Sprintf("[%s] - large file (%s), content not read to keep memory bounded.",
				name, util.FormatBytes(info.Size()))
			att.Placeholder = true
			break
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return model.Attachment{}, fmt.Errorf("%w: %s: %v", ErrReadFailed, name, err)
		}
		text := norm.NFC.String(string(data))
		if HasGibberish(text) {
			att.Text = fmt.Sprintf("[%s] - content looks like binary or corrupted data and was not read.", name)
			att.Placeholder = true
			break
		}
		att.Text = text
	}

	return att, nil
}

// IngestAll processes paths one at a time so attachment order matches
// selection order. Per-file failures are reported in the results and do
// not stop the batch.
func (p *Pipeline) IngestAll(ctx context.Context, paths []string) []Result {
	results := make([]Result, 0, len(paths))
	for _, path := range paths {
		att, err := p.Ingest(ctx, path, "")
		results = append(results, Result{Path: path, Attachment: att, Err: err})
	}
	return results
}

// dataURI encodes raw bytes as a browser-style data URI, matching what
// the backend expects in base64Content.
func dataURI(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// =============================================================================
// GIBBERISH DETECTION
// =============================================================================

// HasGibberish reports whether text looks like binary misdetected as
// text. Control characters over 10% of the text, or control plus
// replacement characters over 5%, fail the read.
func HasGibberish(text string) bool {
	if len(text) == 0 {
		return false
	}

	runes := []rune(text)
	total := len(runes)

	var control, special int
	for _, r := range runes {
		if isControl(r) {
			control++
			special++
		} else if r == '�' {
			special++
		}
	}

	if float64(control)/float64(total) > 0.10 {
		return true
	}
	if float64(special)/float64(total) > 0.05 {
		return true
	}
	return false
}

// isControl matches control characters excluding tab, newline, and
// carriage return.
func isControl(r rune) bool {
	switch {
	case r >= 0x00 && r <= 0x08:
		return true
	case r == 0x0B || r == 0x0C:
		return true
	case r >= 0x0E && r <= 0x1F:
		return true
	case r == 0x7F:
		return true
	}
	return false
}
