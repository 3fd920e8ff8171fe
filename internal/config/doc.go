// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads the flowvo configuration from disk.
//
// Configuration sources, in order of precedence:
//   - FLOWVO_* environment variables
//   - ~/.flowvo/config.toml
//   - Built-in defaults
package config
