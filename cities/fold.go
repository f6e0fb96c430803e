package cities

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold lower-cases s, strips diacritics and collapses whitespace so that
// "  São  Paulo" and "sao paulo" compare equal.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}

// tokens splits a query on whitespace and commas.
func tokens(s string) []string {
	return strings.FieldsFunc(Fold(s), func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
}
