package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes to NFD, removes combining marks, and recomposes.
// "São Paulo" becomes "Sao Paulo".
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Key canonicalizes a display name into the form used for all name
// comparisons: lowercased, diacritics stripped, trimmed, with internal
// whitespace runs collapsed to a single space.
//
// Key is pure and idempotent: Key(Key(s)) == Key(s). Two names are
// considered the same entity within a parent scope iff their keys are equal.
func Key(s string) string {
	stripped, _, err := transform.String(stripMarks, s)
	if err != nil {
		// The transform chain cannot fail on valid UTF-8; on malformed
		// input fall back to the raw string so Key never errors.
		stripped = s
	}

	lowered := strings.ToLower(stripped)

	// Fields splits on any whitespace run, which both trims and collapses.
	return strings.Join(strings.Fields(lowered), " ")
}

// Equal reports whether two names canonicalize to the same key.
func Equal(a, b string) bool {
	return Key(a) == Key(b)
}
