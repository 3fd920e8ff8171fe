// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ingest classifies, validates, and reads user-selected files
// into message attachments.
//
// The pipeline is a pure transformer: it returns attachments or
// rejections and never touches conversation state. Images and office
// documents travel as base64 for the backend; plain text and code are
// read inline below a size ceiling; anything else is rejected.
package ingest
