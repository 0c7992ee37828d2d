package index

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold lower-cases s and strips diacritics, so "Beyoncé" and "beyonce" compare equal.
func Fold(s string) string {
	// transform.Chain keeps state between calls; build one per call.
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

// Tokenize splits s into folded word tokens. Apostrophes are dropped inside
// words ("don't" -> "dont"); every other non letter/digit rune separates tokens.
func Tokenize(s string) []string {
	s = strings.NewReplacer("'", "", "’", "").Replace(Fold(s))
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
