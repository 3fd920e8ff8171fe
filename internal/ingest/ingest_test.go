// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ingest

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jeranaias/flowvo-tui/internal/model"
)

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	return path
}

func TestIngestTextFile(t *testing.T) {
	path := writeTemp(t, "notes.txt", []byte("hello world\nsecond line\n"))

	p := NewPipeline()
	att, err := p.Ingest(context.Background(), path, "")
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if att.Kind != model.AttachmentDocument {
		t.Errorf("Kind = %v, want document", att.Kind)
	}
	if att.Text != "hello world\nsecond line\n" {
		t.Errorf("Text = %q", att.Text)
	}
	if att.Base64 != "" {
		t.Error("text attachment carries base64 payload")
	}
	if att.Placeholder {
		t.Error("Placeholder set for readable text")
	}
	if att.MIME != "text/plain" {
		t.Errorf("MIME = %q", att.MIME)
	}
}

func TestIngestCodeFile(t *testing.T) {
	path := writeTemp(t, "main.go", []byte("package main\n"))

	att, err := NewPipeline().Ingest(context.Background(), path, "")
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if att.Kind != model.AttachmentCode {
		t.Errorf("Kind = %v, want code", att.Kind)
	}
}

func TestIngestImage(t *testing.T) {
	png := []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}
	path := writeTemp(t, "pic.png", png)

	att, err := NewPipeline().Ingest(context.Background(), path, "")
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if att.Kind != model.AttachmentImage {
		t.Errorf("Kind = %v, want image", att.Kind)
	}
	if !strings.HasPrefix(att.Base64, "data:image/png;base64,") {
		t.Errorf("Base64 = %q, want data URI prefix", att.Base64)
	}
	if att.Text != "" {
		t.Error("image attachment carries extracted text")
	}
}

func TestIngestOfficeDocument(t *testing.T) {
	path := writeTemp(t, "report.pdf", []byte("%PDF-1.4 fake"))

	att, err := NewPipeline().Ingest(context.Background(), path, "")
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if att.Kind != model.AttachmentOffice {
		t.Errorf("Kind = %v, want office", att.Kind)
	}
	if att.Base64 == "" {
		t.Error("office attachment missing base64 payload for server parsing")
	}
	if !att.Placeholder {
		t.Error("office attachment not marked as placeholder text")
	}
	if !strings.Contains(att.Text, "report.pdf") {
		t.Errorf("placeholder text %q does not name the file", att.Text)
	}
}

func TestIngestUnsupportedType(t *testing.T) {
	path := writeTemp(t, "program.exe", []byte{0x4d, 0x5a})

	_, err := NewPipeline().Ingest(context.Background(), path, "")
	if !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("err = %v, want ErrUnsupportedType", err)
	}
}

func TestIngestTooLarge(t *testing.T) {
	path := writeTemp(t, "big.txt", []byte("x"))

	p := NewPipeline()
	p.maxFileSize = 0 // force the ceiling below the file size
	_, err := p.Ingest(context.Background(), path, "")
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("err = %v, want ErrTooLarge", err)
	}
}

func TestIngestMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gone.txt")

	_, err := NewPipeline().Ingest(context.Background(), path, "")
	if !errors.Is(err, ErrReadFailed) {
		t.Errorf("err = %v, want ErrReadFailed", err)
	}
}

func TestIngestLargeTextBecomesPlaceholder(t *testing.T) {
	// 2MB of plain text crosses the inline-read ceiling.
	path := writeTemp(t, "dump.txt", bytes.Repeat([]byte("a"), 2*1024*1024))

	att, err := NewPipeline().Ingest(context.Background(), path, "")
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if !att.Placeholder {
		t.Error("oversized text not marked as placeholder")
	}
	if strings.Contains(att.Text, "aaaa") {
		t.Error("placeholder contains raw file content")
	}
	if !strings.Contains(att.Text, "dump.txt") {
		t.Errorf("placeholder %q does not name the file", att.Text)
	}
}

func TestIngestGibberishBecomesPlaceholder(t *testing.T) {
	// 20% control characters, well past the 10% ceiling.
	var buf bytes.Buffer
	for i := 0; i < 100; i++ {
		if i%5 == 0 {
			buf.WriteByte(0x01)
		} else {
			buf.WriteByte('a')
		}
	}
	path := writeTemp(t, "weird.txt", buf.Bytes())

	att, err := NewPipeline().Ingest(context.Background(), path, "")
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if !att.Placeholder {
		t.Error("gibberish content not replaced with placeholder")
	}
	if strings.ContainsRune(att.Text, 0x01) {
		t.Error("placeholder leaks control characters")
	}
}

func TestIngestAllKeepsOrderAndContinues(t *testing.T) {
	dir := t.TempDir()
	good1 := filepath.Join(dir, "a.txt")
	bad := filepath.Join(dir, "b.exe")
	good2 := filepath.Join(dir, "c.md")
	for _, p := range []string{good1, bad, good2} {
		if err := os.WriteFile(p, []byte("content"), 0600); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
	}

	results := NewPipeline().IngestAll(context.Background(), []string{good1, bad, good2})
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if results[0].Err != nil || results[2].Err != nil {
		t.Errorf("good files failed: %v, %v", results[0].Err, results[2].Err)
	}
	if !errors.Is(results[1].Err, ErrUnsupportedType) {
		t.Errorf("results[1].Err = %v, want ErrUnsupportedType", results[1].Err)
	}
	if results[0].Attachment.Name != "a.txt" || results[2].Attachment.Name != "c.md" {
		t.Error("result order does not match input order")
	}
}

func TestHasGibberish(t *testing.T) {
	cases := []struct {
		name string
		text string
		want bool
	}{
		{"empty", "", false},
		{"plain", "hello world", false},
		{"whitespace ok", "a\tb\nc\r\n", false},
		{"unicode ok", "héllo wörld 你好", false},
		{"heavy control", strings.Repeat("\x01", 20) + strings.Repeat("a", 80), true},
		{"replacement chars", strings.Repeat("�", 6) + strings.Repeat("a", 94), true},
		{"sparse control", "\x01" + strings.Repeat("a", 99), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := HasGibberish(tc.text); got != tc.want {
				t.Errorf("HasGibberish = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestDetectKind(t *testing.T) {
	cases := []struct {
		name, mime string
		want       model.AttachmentKind
	}{
		{"pic.png", "image/png", model.AttachmentImage},
		{"pic.png", "", model.AttachmentImage},
		{"doc.pdf", "", model.AttachmentOffice},
		{"slides.pptx", "", model.AttachmentOffice},
		{"readme.md", "", model.AttachmentDocument},
		{"main.rs", "", model.AttachmentCode},
		{"script", "text/x-shell", model.AttachmentDocument},
		{"query.sql", "text/x-sql", model.AttachmentCode},
		{"blob.bin", "", model.AttachmentBinary},
		{"noext", "", model.AttachmentBinary},
	}
	for _, tc := range cases {
		if got := DetectKind(tc.name, tc.mime); got != tc.want {
			t.Errorf("DetectKind(%q, %q) = %v, want %v", tc.name, tc.mime, got, tc.want)
		}
	}
}
