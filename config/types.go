// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/types.go
// Summary: Typed access helpers for preference data.

package config

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Section returns the named section or nil if missing. An empty name
// addresses the top level.
func (c Config) Section(sectionName string) Section {
	if c == nil {
		return nil
	}
	if sectionName == "" {
		return Section(c)
	}
	return asSection(c[sectionName])
}

func asSection(raw interface{}) Section {
	switch v := raw.(type) {
	case Section:
		return v
	case map[string]interface{}:
		return Section(v)
	}
	return nil
}

func (c Config) lookup(sectionName, key string) (interface{}, bool) {
	section := c.Section(sectionName)
	if section == nil {
		return nil, false
	}
	val, ok := section[key]
	return val, ok
}

// Set stores value under section.key, creating the section if needed.
func (c Config) Set(sectionName, key string, value interface{}) {
	if sectionName == "" {
		c[key] = value
		return
	}
	section := c.Section(sectionName)
	if section == nil {
		section = make(Section)
		c[sectionName] = section
	}
	section[key] = value
}

// GetString retrieves a string value from the document.
func (c Config) GetString(sectionName, key, defaultValue string) string {
	if val, ok := c.lookup(sectionName, key); ok {
		if s, ok := val.(string); ok {
			return s
		}
	}
	return defaultValue
}

// GetFloat retrieves a float value from the document.
func (c Config) GetFloat(sectionName, key string, defaultValue float64) float64 {
	if val, ok := c.lookup(sectionName, key); ok {
		if f, ok := toFloat(val); ok {
			return f
		}
	}
	return defaultValue
}

// GetInt retrieves an integer value from the document.
func (c Config) GetInt(sectionName, key string, defaultValue int) int {
	if val, ok := c.lookup(sectionName, key); ok {
		switch v := val.(type) {
		case int:
			return v
		case string:
			if parsed, err := strconv.Atoi(v); err == nil {
				return parsed
			}
		default:
			if f, ok := toFloat(v); ok {
				return int(f)
			}
		}
	}
	return defaultValue
}

// GetBool retrieves a boolean value from the document.
func (c Config) GetBool(sectionName, key string, defaultValue bool) bool {
	if val, ok := c.lookup(sectionName, key); ok {
		switch v := val.(type) {
		case bool:
			return v
		case string:
			if parsed, err := strconv.ParseBool(v); err == nil {
				return parsed
			}
		default:
			if f, ok := toFloat(v); ok {
				return f != 0
			}
		}
	}
	return defaultValue
}

// GetStringMap retrieves a nested object as string pairs. Non-string values
// are formatted with %v.
func (c Config) GetStringMap(sectionName, key string) map[string]string {
	val, ok := c.lookup(sectionName, key)
	if !ok {
		return nil
	}
	var src map[string]interface{}
	switch v := val.(type) {
	case map[string]string:
		out := make(map[string]string, len(v))
		for k, s := range v {
			out[k] = s
		}
		return out
	case Section:
		src = v
	case map[string]interface{}:
		src = v
	default:
		return nil
	}
	out := make(map[string]string, len(src))
	for k, raw := range src {
		if s, ok := raw.(string); ok {
			out[k] = s
		} else {
			out[k] = fmt.Sprintf("%v", raw)
		}
	}
	return out
}

func toFloat(val interface{}) (float64, bool) {
	switch v := val.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	}
	return 0, false
}
