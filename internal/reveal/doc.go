// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package reveal animates assistant replies as if they were arriving
// incrementally.
//
// The engine holds at most one session per conversation. Ticks are
// driven externally; each tick extends the visible prefix by one
// character. Cancelling jumps the next tick straight to the full text.
// Completion fires exactly once per session, whether natural or
// cancelled.
package reveal
