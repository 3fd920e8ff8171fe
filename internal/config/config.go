// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/flowvo-tui/internal/model"
	"github.com/jeranaias/flowvo-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete flowvo configuration.
type Config struct {
	// Server settings
	Server ServerConfig `toml:"server"`

	// Chat settings
	Chat ChatConfig `toml:"chat"`

	// Attachments settings
	Attachments AttachmentsConfig `toml:"attachments"`

	// UI configuration
	UI UIConfig `toml:"ui"`
}

// ServerConfig contains FlowVo backend connection settings.
type ServerConfig struct {
	// BaseURL is the root URL of the FlowVo backend
	BaseURL string `toml:"base_url"`
	// TimeoutSecs is the per-request timeout in seconds
	TimeoutSecs int `toml:"timeout_secs"`
	// TokenPath is the path to the bearer token file (empty = ~/.flowvo/token)
	TokenPath string `toml:"token_path"`
}

// ChatConfig contains conversation defaults.
type ChatConfig struct {
	// DefaultModel is the model selected for new conversations
	DefaultModel string `toml:"default_model"`
	// DefaultAgent is the agent selected for new conversations
	DefaultAgent string `toml:"default_agent"`
	// RevealIntervalMS is the delay between revealed characters when
	// displaying an assistant reply, in milliseconds
	RevealIntervalMS int `toml:"reveal_interval_ms"`
	// ScrollThreshold is the distance from the bottom, in rows, within
	// which the view is considered pinned
	ScrollThreshold int `toml:"scroll_threshold"`
}

// AttachmentsConfig contains file ingestion settings.
type AttachmentsConfig struct {
	// DropFolder is an optional directory watched for new files; files
	// appearing there are attached to the draft automatically
	DropFolder string `toml:"drop_folder"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme"`
	// CompactMode uses a more compact layout
	CompactMode bool `toml:"compact_mode"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			BaseURL:     "http://127.0.0.1:8000",
			TimeoutSecs: 60,
		},
		Chat: ChatConfig{
			DefaultModel:     model.DefaultModel,
			DefaultAgent:     model.DefaultAgent,
			RevealIntervalMS: 30,
			ScrollThreshold:  50,
		},
		UI: UIConfig{
			Theme: "dark",
		},
	}
}

// ConfigDir returns ~/.flowvo.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".flowvo"), nil
}

// ConfigPath returns ~/.flowvo/config.toml.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads the config file, applies environment overrides, and
// validates. A missing config file falls back to defaults.
func Load() (*Config, error) {
	cfg := Default()

	path, err := ConfigPath()
	if err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			if err := LoadTOML(cfg, path); err != nil {
				return nil, fmt.Errorf("failed to load config: %w", err)
			}
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML loads configuration from a TOML file into cfg.
func LoadTOML(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse TOML: %w", err)
	}
	return nil
}

// LoadFromPath loads configuration from an explicit path, with env
// overrides and validation applied.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if err := LoadTOML(cfg, path); err != nil {
		return nil, err
	}
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to ~/.flowvo/config.toml.
// RELIABILITY: Atomic write with fsync prevents data loss on crash
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var buf strings.Builder
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, []byte(buf.String()), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// ENV OVERRIDES / VALIDATION
// =============================================================================

// ApplyEnvOverrides applies FLOWVO_* environment variables on top of
// the loaded values.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("FLOWVO_BASE_URL"); v != "" {
		c.Server.BaseURL = v
	}
	if v := os.Getenv("FLOWVO_TOKEN_PATH"); v != "" {
		c.Server.TokenPath = v
	}
	if v := os.Getenv("FLOWVO_MODEL"); v != "" {
		c.Chat.DefaultModel = v
	}
	if v := os.Getenv("FLOWVO_AGENT"); v != "" {
		c.Chat.DefaultAgent = v
	}
	if v := os.Getenv("FLOWVO_DROP_FOLDER"); v != "" {
		c.Attachments.DropFolder = v
	}
	if v := os.Getenv("FLOWVO_THEME"); v != "" {
		c.UI.Theme = v
	}
	if v := os.Getenv("FLOWVO_TIMEOUT_SECS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			c.Server.TimeoutSecs = secs
		}
	}
}

// SetDefaults fills zero values left by a partial config file.
func (c *Config) SetDefaults() {
	def := Default()
	if c.Server.BaseURL == "" {
		c.Server.BaseURL = def.Server.BaseURL
	}
	if c.Server.TimeoutSecs <= 0 {
		c.Server.TimeoutSecs = def.Server.TimeoutSecs
	}
	if c.Chat.DefaultModel == "" {
		c.Chat.DefaultModel = def.Chat.DefaultModel
	}
	if c.Chat.DefaultAgent == "" {
		c.Chat.DefaultAgent = def.Chat.DefaultAgent
	}
	if c.Chat.RevealIntervalMS <= 0 {
		c.Chat.RevealIntervalMS = def.Chat.RevealIntervalMS
	}
	if c.Chat.ScrollThreshold <= 0 {
		c.Chat.ScrollThreshold = def.Chat.ScrollThreshold
	}
	if c.UI.Theme == "" {
		c.UI.Theme = def.UI.Theme
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Server.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("server.base_url %q is not a valid URL", c.Server.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("server.base_url scheme %q must be http or https", u.Scheme)
	}

	switch c.UI.Theme {
	case "dark", "light", "auto":
	default:
		return fmt.Errorf("ui.theme %q must be dark, light, or auto", c.UI.Theme)
	}

	if c.Chat.RevealIntervalMS > 1000 {
		return fmt.Errorf("chat.reveal_interval_ms %d exceeds maximum of 1000", c.Chat.RevealIntervalMS)
	}
	return nil
}
