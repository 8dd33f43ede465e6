// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: defaults/embedded.go
// Summary: Embedded default preferences document.

package defaults

import "embed"

//go:embed preferences.json
var fs embed.FS

// Preferences returns the embedded default preferences JSON.
func Preferences() ([]byte, error) {
	return fs.ReadFile("preferences.json")
}
