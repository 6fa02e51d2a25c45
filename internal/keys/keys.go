// Package keys canonicalizes record identifiers and field values so every
// comparison in the repository happens on the same normalized form.
package keys

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var upper = cases.Upper(language.Und)

// Normalize trims surrounding whitespace and upper-cases the value using
// Unicode case mapping. Empty or whitespace-only input normalizes to the
// empty string, which is never a valid key; callers must filter it out
// before inserting into any set or queue.
func Normalize(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	return upper.String(trimmed)
}

// FoldType collapses a type literal for family comparison: lower-cased with
// all whitespace, punctuation, and symbol runes removed. "Relo App",
// "relo-app", and "Relo. App" all fold to "reloapp".
func FoldType(value string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(value)) {
		if unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Equal reports whether two raw values normalize to the same key.
func Equal(a, b string) bool {
	return Normalize(a) == Normalize(b)
}
