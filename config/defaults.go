// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/defaults.go
// Summary: Preference sections, keys and default values.

package config

// Sections and keys of the preferences document.
const (
	SectionAuth    = "auth"
	SectionDisplay = "display"
	SectionStartup = "startup"

	KeyUsers       = "users"
	KeyTitle       = "title"
	KeyFrameRate   = "frame_rate"
	KeyClockFormat = "clock_format"
	KeyDateFormat  = "date_format"
	KeyFadeEasing  = "fade_easing"
	KeyInjector    = "injector"
)

// Fallbacks used when the embedded defaults cannot be parsed and by getters.
const (
	DefaultTitle       = "texelshell"
	DefaultFrameRate   = 60
	DefaultClockFormat = "%I:%M:%S"
	DefaultDateFormat  = "%A, %B %Y"
	DefaultFadeEasing  = "linear"
	DefaultInjector    = "shell.log('No startup injector found.');"
)

// Defaults returns a fresh copy of the default preferences document.
func Defaults() Config {
	if cfg, err := embeddedDefaults(); err == nil && cfg != nil {
		return Clone(cfg)
	}
	return Config{
		SectionAuth: Section{
			KeyUsers: Section{"admin": "admin"},
		},
		SectionDisplay: Section{
			KeyTitle:       DefaultTitle,
			KeyFrameRate:   DefaultFrameRate,
			KeyClockFormat: DefaultClockFormat,
			KeyDateFormat:  DefaultDateFormat,
			KeyFadeEasing:  DefaultFadeEasing,
		},
		SectionStartup: Section{
			KeyInjector: DefaultInjector,
		},
	}
}
