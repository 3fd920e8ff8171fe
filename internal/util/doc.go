// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small shared helpers for flowvo-tui.
//
// The helpers fall into three groups:
//
//   - Atomic file writes (AtomicWriteFile) used for anything persisted
//     locally, such as the bearer token file
//   - Rune- and width-aware string truncation for terminal rendering
//   - Display formatting for byte sizes and timestamps
package util
