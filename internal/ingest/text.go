package ingest

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize folds s for loose key matching across languages: lower case,
// trimmed, combining marks removed after NFD decomposition and whitespace
// runs collapsed to one space. Letters without a decomposition (ø, æ) are kept.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	folded, _, err := transform.String(t, strings.ToLower(s))
	if err != nil {
		folded = strings.ToLower(s)
	}
	return strings.Join(strings.Fields(folded), " ")
}

// normalizeFieldName treats underscores as word separators before folding.
func normalizeFieldName(s string) string {
	return Normalize(strings.ReplaceAll(s, "_", " "))
}
