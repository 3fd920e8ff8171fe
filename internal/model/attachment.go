// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations, messages,
// and attachments.
package model

// =============================================================================
// ATTACHMENT KIND
// =============================================================================

// AttachmentKind classifies an ingested file.
type AttachmentKind string

const (
	// AttachmentImage: raster/vector image, carried inline as base64.
	AttachmentImage AttachmentKind = "image"

	// AttachmentDocument: plain text or markup read as text.
	AttachmentDocument AttachmentKind = "document"

	// AttachmentCode: source code read as text.
	AttachmentCode AttachmentKind = "code"

	// AttachmentOffice: office/PDF document, carried as base64 for
	// server-side parsing.
	AttachmentOffice AttachmentKind = "office"

	// AttachmentBinary: unsupported binary content.
	AttachmentBinary AttachmentKind = "binary"
)

// String returns the string representation of the kind.
func (k AttachmentKind) String() string {
	return string(k)
}

// =============================================================================
// ATTACHMENT TYPE
// =============================================================================

// Attachment is an ingested file attached to exactly one outgoing message.
// It is immutable after creation.
//
// The payload representation depends on the kind: Base64 for images,
// Text for small text/code files, neither for rejected reads. Office
// documents carry both, Base64 with the raw bytes for server-side
// parsing and Text with a human-readable stand-in for the transcript.
type Attachment struct {
	ID   string         `json:"id"`
	Name string         `json:"fileName"`
	Size int64          `json:"fileSize"`
	MIME string         `json:"fileType"`
	Kind AttachmentKind `json:"-"`

	// Base64 holds a data-URI encoded payload for images and office docs.
	Base64 string `json:"base64Content,omitempty"`

	// Text holds extracted text for documents/code under the read ceiling.
	Text string `json:"fileContent,omitempty"`

	// Placeholder marks Text as a stand-in description rather than the
	// file's actual content (oversized, office deferred to the server,
	// corrupted).
	Placeholder bool `json:"-"`
}

// WithoutPayload returns a copy suitable for display: metadata only, with
// the base64 kept for image thumbnails but extracted text dropped.
func (a Attachment) WithoutPayload() Attachment {
	copy := a
	copy.Text = ""
	if copy.Kind != AttachmentImage {
		copy.Base64 = ""
	}
	return copy
}

// HasContent reports whether the attachment carries a real payload rather
// than only a placeholder description.
func (a Attachment) HasContent() bool {
	return a.Base64 != "" || a.Text != ""
}
