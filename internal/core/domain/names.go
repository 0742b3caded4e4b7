package domain

import (
	"strings"

	"golang.org/x/text/cases"
)

// NameKey is the comparison key for item, list and tag names.
func NameKey(name string) string {
	// A Caser is stateful, so a fresh one per call keeps this safe for
	// concurrent use.
	return cases.Fold().String(strings.TrimSpace(name))
}

// SameName reports whether a and b collide under the uniqueness rule.
func SameName(a, b string) bool {
	return NameKey(a) == NameKey(b)
}

func normalizeTags(tags []string) []string {
	if tags == nil {
		return nil
	}

	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		key := NameKey(t)
		if t != "" && seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}
