package stage

import (
	"strings"
	"unicode"
)

// NormalizeKey turns any stage-identifying string into the canonical
// comparison key: lower-cased with whitespace, hyphens, and underscores
// removed. "Not Contacted", "not-contacted", and "NOTCONTACTED" all
// normalize to the same key. Empty input normalizes to the empty key,
// which matches nothing.
//
// Every stage-equality comparison in the engine goes through this
// function; raw strings are never compared directly.
func NormalizeKey(raw string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '-' || r == '_' {
			return -1
		}
		return unicode.ToLower(r)
	}, raw)
}
