// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bot360/bot360-tui/internal/util"
)

// ErrNoSession indicates that no token pair is stored; the user must log in.
var ErrNoSession = errors.New("no stored session, run 'bot360 login'")

const credentialsFile = "credentials.json"

// Tokens is the persisted authentication pair.
type Tokens struct {
	Access  string `json:"access_token"`
	Refresh string `json:"refresh_token"`
}

// Store persists the token pair under ~/.bot360/credentials.json with an
// in-memory cache. All methods are safe for concurrent use; the streaming
// client reads tokens from a goroutine while the UI may trigger a refresh.
type Store struct {
	mu     sync.RWMutex
	path   string
	cached *Tokens
	loaded bool
}

// NewStore creates a store rooted at dir. An empty dir resolves to the
// default ~/.bot360 directory.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home directory: %w", err)
		}
		dir = filepath.Join(home, ".bot360")
	}
	return &Store{path: filepath.Join(dir, credentialsFile)}, nil
}

// Tokens returns the stored pair, loading from disk on first call.
// Returns ErrNoSession when no credentials exist or the access token is
// empty.
func (s *Store) Tokens() (Tokens, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(); err != nil {
		return Tokens{}, err
	}
	if s.cached == nil || s.cached.Access == "" {
		return Tokens{}, ErrNoSession
	}
	return *s.cached, nil
}

// SetPair stores a fresh access/refresh pair. Used by login and register.
func (s *Store) SetPair(access, refresh string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cached = &Tokens{Access: access, Refresh: refresh}
	s.loaded = true
	return s.saveLocked()
}

// SetAccess replaces only the access token, keeping the refresh token.
// Used by the refresh flow.
func (s *Store) SetAccess(access string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loadLocked(); err != nil {
		return err
	}
	if s.cached == nil {
		return ErrNoSession
	}
	s.cached.Access = access
	return s.saveLocked()
}

// Clear removes both tokens from memory and disk. A failed refresh or a
// second authorization failure forces this; the next protected call then
// reports ErrNoSession.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cached = nil
	s.loaded = true
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove credentials: %w", err)
	}
	return nil
}

// Path returns the credentials file location, for diagnostics.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) loadLocked() error {
	if s.loaded {
		return nil
	}
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.loaded = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read credentials: %w", err)
	}

	var t Tokens
	if err := json.Unmarshal(data, &t); err != nil {
		// A corrupt credentials file is treated as no session rather
		// than a hard failure; the user can simply log in again.
		s.loaded = true
		return nil
	}
	s.cached = &t
	s.loaded = true
	return nil
}

func (s *Store) saveLocked() error {
	data, err := json.MarshalIndent(s.cached, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}
	// SECURITY: 0600 - tokens grant full account access.
	return util.AtomicWriteFile(s.path, data, 0600)
}
