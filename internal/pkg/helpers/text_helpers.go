package helpers

import (
	"strings"
	"unicode"
)

// CanonicalText is the normalization used by every "already exists by name" check.
// It trims the value and removes all internal whitespace. Case is preserved.
func CanonicalText(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// SplitList splits a delimited list into trimmed, non-empty, de-duplicated
// entries in first-seen order. Empty entries are dropped silently.
func SplitList(raw, delimiter string) []string {
	if delimiter == "" {
		delimiter = ","
	}

	parts := strings.Split(raw, delimiter)
	seen := make(map[string]struct{}, len(parts))
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		if _, dup := seen[item]; dup {
			continue
		}
		seen[item] = struct{}{}
		items = append(items, item)
	}
	return items
}
