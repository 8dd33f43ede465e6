// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/store.go
// Summary: Preferences store loaded once at startup and saved once at exit.

package config

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Store owns the preferences document at Path.
type Store struct {
	Path string

	log    *zap.Logger
	mu     sync.RWMutex
	doc    Config
	loaded bool
}

// NewStore creates a store for path. Nothing is read until Load.
func NewStore(path string, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{Path: path, log: log}
}

// Load reads the document. A missing or malformed file yields the built-in
// defaults as a whole; the returned error reports the malformed case only.
func (s *Store) Load() (Config, error) {
	cfg, exists, err := readConfig(s.Path)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = true

	switch {
	case err != nil:
		s.log.Warn("preferences unreadable, using defaults", zap.String("path", s.Path), zap.Error(err))
		s.doc = Defaults()
		return Clone(s.doc), fmt.Errorf("load preferences %s: %w", s.Path, err)
	case !exists:
		s.log.Info("no preferences file, using defaults", zap.String("path", s.Path))
		s.doc = Defaults()
	default:
		s.log.Info("preferences loaded", zap.String("path", s.Path))
		s.doc = cfg
	}
	return Clone(s.doc), nil
}

// Set replaces the in-memory document.
func (s *Store) Set(cfg Config) {
	if cfg == nil {
		cfg = make(Config)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = Clone(cfg)
	s.loaded = true
}

// Save writes the current document verbatim as indented JSON.
func (s *Store) Save() error {
	s.mu.RLock()
	doc := s.doc
	if !s.loaded {
		doc = Defaults()
	}
	err := writeConfig(s.Path, doc)
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("save preferences %s: %w", s.Path, err)
	}
	s.log.Info("preferences saved", zap.String("path", s.Path))
	return nil
}
