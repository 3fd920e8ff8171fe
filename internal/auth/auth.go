// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth stores the FlowVo API credential on disk.
//
// The token file lives under the user's config directory with restricted
// permissions (0600). The store satisfies api.TokenSource so the HTTP
// client can read the credential without owning its lifecycle.
package auth

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jeranaias/flowvo-tui/internal/util"
)

// =============================================================================
// FILE TOKEN STORE
// =============================================================================

// FileTokenStore persists a single bearer token in a file.
type FileTokenStore struct {
	mu   sync.RWMutex
	path string

	// cached avoids re-reading the file on every request.
	cached string
	loaded bool
}

// NewFileTokenStore creates a store backed by the given path.
func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

// DefaultTokenPath returns ~/.flowvo/token, or an error when the home
// directory cannot be resolved.
func DefaultTokenPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".flowvo", "token"), nil
}

// Token returns the stored credential, or "" when no token file exists.
func (s *FileTokenStore) Token() (string, error) {
	s.mu.RLock()
	if s.loaded {
		token := s.cached
		s.mu.RUnlock()
		return token, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return s.cached, nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.cached = ""
			s.loaded = true
			return "", nil
		}
		return "", fmt.Errorf("failed to read token file: %w", err)
	}

	s.cached = strings.TrimSpace(string(data))
	s.loaded = true
	return s.cached, nil
}

// Save writes the token to disk with restricted permissions.
// RELIABILITY: Atomic write with fsync prevents data loss on crash
func (s *FileTokenStore) Save(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	if err := util.AtomicWriteFile(s.path, []byte(token+"\n"), 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}

	s.cached = token
	s.loaded = true
	return nil
}

// Clear removes the token file. Missing files are not an error.
func (s *FileTokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove token file: %w", err)
	}
	s.cached = ""
	s.loaded = true
	return nil
}

// Exists reports whether a token file is present on disk.
func (s *FileTokenStore) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// =============================================================================
// STATIC TOKEN SOURCE
// =============================================================================

// StaticToken is a fixed credential, used when the token arrives via
// environment variable or flag instead of the token file.
type StaticToken string

// Token returns the fixed credential.
func (s StaticToken) Token() (string, error) {
	return string(s), nil
}
