// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: registry/registry.go
// Summary: Discovers installed programs in a programs directory.
// Usage: The taskbar scans the catalog on load and whenever the watcher
// reports a change.

package registry

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// FallbackIcon is drawn for programs whose icon file cannot be read.
const FallbackIcon = "◆"

// LoadFailure records a program directory that could not be loaded.
type LoadFailure struct {
	Dir string
	Err error
}

func (f LoadFailure) Error() string {
	return fmt.Sprintf("%s: %v", f.Dir, f.Err)
}

// Catalog is the ordered list of programs found by one scan.
type Catalog struct {
	Dir      string
	Programs []*Manifest
	Failures []LoadFailure
}

// Scan loads every subdirectory of dir in lexicographic order. A missing
// directory yields an empty catalog; per-program failures are recorded and
// never abort the scan.
func Scan(dir string, log *zap.Logger) (*Catalog, error) {
	if log == nil {
		log = zap.NewNop()
	}
	cat := &Catalog{Dir: dir}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Info("programs directory does not exist", zap.String("dir", dir))
			return cat, nil
		}
		return nil, fmt.Errorf("read programs directory: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		programDir := filepath.Join(dir, entry.Name())
		m, err := LoadManifest(programDir)
		if err != nil {
			log.Warn("failed to load program", zap.String("dir", programDir), zap.Error(err))
			cat.Failures = append(cat.Failures, LoadFailure{Dir: programDir, Err: err})
			continue
		}
		icon, err := readIcon(m.IconFile())
		if err != nil {
			log.Warn("failed to load program icon", zap.String("program", m.Name), zap.Error(err))
			icon = FallbackIcon
		}
		m.Icon = icon
		cat.Programs = append(cat.Programs, m)
	}

	log.Info("programs scanned",
		zap.String("dir", dir), zap.Int("loaded", len(cat.Programs)), zap.Int("failed", len(cat.Failures)))
	return cat, nil
}

// readIcon returns the first non-blank line of an icon file.
func readIcon(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			return line, nil
		}
	}
	if err := sc.Err(); err != nil {
		return "", err
	}
	return "", fmt.Errorf("icon %s is empty", path)
}

// Len returns the number of loaded programs.
func (c *Catalog) Len() int { return len(c.Programs) }

// Lookup finds a program by name.
func (c *Catalog) Lookup(name string) (*Manifest, bool) {
	for _, m := range c.Programs {
		if m.Name == name {
			return m, true
		}
	}
	return nil, false
}

// Names returns program names in catalog order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.Programs))
	for i, m := range c.Programs {
		out[i] = m.Name
	}
	return out
}
