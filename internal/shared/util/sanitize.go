package util

import "strings"

// SanitizeSegment makes s safe to use as a single path segment of a storage
// key. Anything outside [A-Za-z0-9_-] becomes "_", and leading or trailing
// underscores are trimmed, so traversal patterns reduce to "".
func SanitizeSegment(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, s)
	return strings.Trim(s, "_")
}
