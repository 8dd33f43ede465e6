// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/clone.go
// Summary: Deep copy helpers for preference documents.

package config

// Clone returns a deep copy of the document. Nested objects become Sections
// and arrays are copied element by element.
func Clone(cfg Config) Config {
	if cfg == nil {
		return nil
	}
	clone := make(Config, len(cfg))
	for key, value := range cfg {
		clone[key] = cloneValue(value)
	}
	return clone
}

func cloneValue(value interface{}) interface{} {
	switch v := value.(type) {
	case Section:
		return cloneMap(v)
	case map[string]interface{}:
		return cloneMap(v)
	case map[string]string:
		out := make(Section, len(v))
		for k, s := range v {
			out[k] = s
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}

func cloneMap(m map[string]interface{}) Section {
	out := make(Section, len(m))
	for k, item := range m {
		out[k] = cloneValue(item)
	}
	return out
}
