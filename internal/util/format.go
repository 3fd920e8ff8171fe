// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small shared helpers for flowvo-tui.
package util

import (
	"strconv"
	"time"
)

// FormatBytes formats a byte count for display: "0 B", "2.50 KB", "1.20 MB".
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return strconv.FormatInt(n, 10) + " B"
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	value := strconv.FormatFloat(float64(n)/float64(div), 'f', 2, 64)
	return value + " " + []string{"KB", "MB", "GB", "TB"}[exp]
}

// FormatClock renders a timestamp as a local wall-clock time for the
// message gutter.
func FormatClock(t time.Time) string {
	return t.Local().Format("15:04:05")
}

// IntToString converts an int to string.
func IntToString(i int) string {
	return strconv.Itoa(i)
}
