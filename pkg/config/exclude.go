package config

import (
	"path"
	"strings"
)

// Normalize lower-cases exclude patterns and drops empty entries so
// matching is a straight comparison later.
func (c *Config) Normalize() {
	if c == nil {
		return
	}

	normalized := make([]string, 0, len(c.ExcludeTables))
	for _, raw := range c.ExcludeTables {
		if p := canonicalName(raw); p != "" {
			normalized = append(normalized, p)
		}
	}
	c.ExcludeTables = normalized
}

// IsTableExcluded reports whether a table name matches any exclude
// pattern. Matching is case-insensitive; patterns may use path-style
// globs, and a pattern that does not compile falls back to an exact
// comparison.
func (c *Config) IsTableExcluded(table string) bool {
	if c == nil {
		return false
	}
	name := canonicalName(table)
	if name == "" {
		return false
	}

	for _, raw := range c.ExcludeTables {
		pattern := canonicalName(raw)
		if pattern == "" {
			continue
		}
		if matched, err := path.Match(pattern, name); err == nil {
			if matched {
				return true
			}
			continue
		}
		if pattern == name {
			return true
		}
	}
	return false
}

func canonicalName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
