// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package sched provides cancellable handles for timer-driven and
// in-flight work.
//
// The chat view runs two kinds of background activity: network requests
// (sends, vision calls) and repeating display timers (character reveal).
// Both need stop-once cancellation that is safe to invoke from the
// update loop and from goroutines.
package sched
