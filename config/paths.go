// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/paths.go
// Summary: Default locations of the shell's state files.

package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths locates every file the shell reads or writes.
type Paths struct {
	Root        string
	Preferences string
	Programs    string
	History     string
	Log         string
}

// DefaultRoot returns the per-user state directory.
func DefaultRoot() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config directory: %w", err)
	}
	return filepath.Join(configDir, "texelshell"), nil
}

// PathsFor lays out the state files below root.
func PathsFor(root string) Paths {
	return Paths{
		Root:        root,
		Preferences: filepath.Join(root, "preferences.json"),
		Programs:    filepath.Join(root, "programs"),
		History:     filepath.Join(root, "history.db"),
		Log:         filepath.Join(root, "texelshell.log"),
	}
}

// EnsureRoot creates the state directory.
func (p Paths) EnsureRoot() error {
	return os.MkdirAll(p.Root, 0o755)
}
