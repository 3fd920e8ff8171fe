// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config failed validation: %v", err)
	}
	if cfg.Chat.RevealIntervalMS != 30 {
		t.Errorf("RevealIntervalMS = %d, want 30", cfg.Chat.RevealIntervalMS)
	}
	if cfg.Chat.ScrollThreshold != 50 {
		t.Errorf("ScrollThreshold = %d, want 50", cfg.Chat.ScrollThreshold)
	}
}

func TestLoadFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[server]
base_url = "https://flowvo.example.com"

[chat]
default_model = "gpt-4o"
reveal_interval_ms = 15
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if cfg.Server.BaseURL != "https://flowvo.example.com" {
		t.Errorf("BaseURL = %q", cfg.Server.BaseURL)
	}
	if cfg.Chat.DefaultModel != "gpt-4o" {
		t.Errorf("DefaultModel = %q", cfg.Chat.DefaultModel)
	}
	if cfg.Chat.RevealIntervalMS != 15 {
		t.Errorf("RevealIntervalMS = %d, want 15", cfg.Chat.RevealIntervalMS)
	}
	// Unset keys keep their defaults.
	if cfg.Chat.DefaultAgent != "default" {
		t.Errorf("DefaultAgent = %q, want default", cfg.Chat.DefaultAgent)
	}
	if cfg.Chat.ScrollThreshold != 50 {
		t.Errorf("ScrollThreshold = %d, want 50", cfg.Chat.ScrollThreshold)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("FLOWVO_BASE_URL", "http://10.0.0.5:9000")
	t.Setenv("FLOWVO_MODEL", "deepseek-reasoner")
	t.Setenv("FLOWVO_TIMEOUT_SECS", "120")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Server.BaseURL != "http://10.0.0.5:9000" {
		t.Errorf("BaseURL = %q", cfg.Server.BaseURL)
	}
	if cfg.Chat.DefaultModel != "deepseek-reasoner" {
		t.Errorf("DefaultModel = %q", cfg.Chat.DefaultModel)
	}
	if cfg.Server.TimeoutSecs != 120 {
		t.Errorf("TimeoutSecs = %d", cfg.Server.TimeoutSecs)
	}
}

func TestEnvOverrideBadTimeoutIgnored(t *testing.T) {
	t.Setenv("FLOWVO_TIMEOUT_SECS", "not-a-number")

	cfg := Default()
	cfg.ApplyEnvOverrides()
	if cfg.Server.TimeoutSecs != 60 {
		t.Errorf("TimeoutSecs = %d, want default 60", cfg.Server.TimeoutSecs)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty url", func(c *Config) { c.Server.BaseURL = "" }},
		{"bad scheme", func(c *Config) { c.Server.BaseURL = "ftp://host" }},
		{"bad theme", func(c *Config) { c.UI.Theme = "solarized" }},
		{"huge reveal interval", func(c *Config) { c.Chat.RevealIntervalMS = 5000 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate accepted invalid config")
			}
		})
	}
}

func TestSetDefaultsFillsZeroValues(t *testing.T) {
	cfg := &Config{}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("filled config failed validation: %v", err)
	}
	if cfg.Chat.DefaultModel != "deepseek-chat" {
		t.Errorf("DefaultModel = %q", cfg.Chat.DefaultModel)
	}
}
