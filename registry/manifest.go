// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: registry/manifest.go
// Summary: Program manifest structure and loading.
// Usage: Every program directory carries an index.json describing the
// program's script, icon and taskbar texts.

package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ManifestFile is the manifest name inside a program directory.
const ManifestFile = "index.json"

var (
	// ErrManifestUnreadable means index.json could not be read.
	ErrManifestUnreadable = errors.New("manifest unreadable")
	// ErrManifestInvalid means index.json is malformed or lacks a field.
	ErrManifestInvalid = errors.New("manifest invalid")
)

// Manifest describes one installed program. It is immutable after loading.
type Manifest struct {
	// Name is shown in the taskbar and passed to the program.
	Name string
	// ExecutablePath is the script path relative to Dir.
	ExecutablePath string
	// IconPath is the icon file path relative to Dir.
	IconPath string
	// HoverText is the taskbar label shown while hovering the button.
	HoverText string
	// Description is shown in the program info popup.
	Description string
	// ProgramData is arbitrary JSON handed to the program at run time.
	ProgramData interface{}

	// Dir is the program directory the manifest was loaded from.
	Dir string
	// Icon is the glyph drawn on the taskbar button.
	Icon string
}

type manifestFile struct {
	Name           *string         `json:"name"`
	ExecutablePath *string         `json:"executablePath"`
	IconPath       *string         `json:"iconPath"`
	HoverText      *string         `json:"hoverText"`
	Description    *string         `json:"description"`
	ProgramData    json.RawMessage `json:"programData"`
}

// LoadManifest reads and validates dir/index.json. It never returns a partial
// manifest.
func LoadManifest(dir string) (*Manifest, error) {
	path := filepath.Join(dir, ManifestFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrManifestUnreadable, path, err)
	}

	var raw manifestFile
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrManifestInvalid, path, err)
	}

	required := []struct {
		field string
		value *string
	}{
		{"name", raw.Name},
		{"executablePath", raw.ExecutablePath},
		{"iconPath", raw.IconPath},
		{"hoverText", raw.HoverText},
		{"description", raw.Description},
	}
	for _, r := range required {
		if r.value == nil {
			return nil, fmt.Errorf("%w: %s: missing field %q", ErrManifestInvalid, path, r.field)
		}
	}
	if len(raw.ProgramData) == 0 {
		return nil, fmt.Errorf("%w: %s: missing field %q", ErrManifestInvalid, path, "programData")
	}

	var programData interface{}
	if err := json.Unmarshal(raw.ProgramData, &programData); err != nil {
		return nil, fmt.Errorf("%w: %s: programData: %v", ErrManifestInvalid, path, err)
	}

	return &Manifest{
		Name:           *raw.Name,
		ExecutablePath: *raw.ExecutablePath,
		IconPath:       *raw.IconPath,
		HoverText:      *raw.HoverText,
		Description:    *raw.Description,
		ProgramData:    programData,
		Dir:            dir,
	}, nil
}

// ExecutableFile returns the script path resolved against the program directory.
func (m *Manifest) ExecutableFile() string {
	return m.resolve(m.ExecutablePath)
}

// IconFile returns the icon path resolved against the program directory.
func (m *Manifest) IconFile() string {
	return m.resolve(m.IconPath)
}

func (m *Manifest) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.Dir, p)
}
