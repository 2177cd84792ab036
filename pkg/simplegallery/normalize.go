package simplegallery

import (
	"strings"
	"unicode"
)

// Defaults applied when a field is missing or a partition is normalized.
const (
	DefaultTheme    = "dark"
	DefaultAccent   = "6366f1"
	DefaultViewMode = "grid"
	DefaultIcon     = "📁"
	DefaultColor    = "6366f1"
)

// ValidUsername reports whether name is 2–20 characters with no whitespace.
// Usernames are case-sensitive; no folding happens anywhere.
func ValidUsername(name string) bool {
	n := len([]rune(name))
	if n < 2 || n > 20 {
		return false
	}
	for _, r := range name {
		if unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

// ValidHexColor reports whether c is exactly six hex digits (no leading '#').
func ValidHexColor(c string) bool {
	if len(c) != 6 {
		return false
	}
	for _, r := range c {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

// ValidTheme reports whether t is a known theme.
func ValidTheme(t string) bool {
	return t == "dark" || t == "light"
}

// ValidViewMode reports whether v is a known view mode.
func ValidViewMode(v string) bool {
	return v == "grid" || v == "list"
}

// NormalizeColor lowercases a hex color and strips a leading '#'.
func NormalizeColor(c string) string {
	return strings.ToLower(strings.TrimPrefix(c, "#"))
}
