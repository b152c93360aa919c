// Package normalize provides the text folding applied to caller-supplied
// labels before table lookups. Zone names and period codes arrive with
// mixed case, accents, curly apostrophes and underscore/hyphen variants
// depending on which front end or CSV export produced them.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold removes diacritics and normalizes apostrophes. Input that is not
// valid UTF-8 is returned trimmed but otherwise untouched.
func Fold(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "’", "'")
	folded, _, err := transform.String(stripMarks, s)
	if err != nil {
		return s
	}
	return folded
}

// Key folds s and uppercases it: the canonical form used as a lookup key
// for zone labels.
func Key(s string) string {
	return strings.ToUpper(Fold(s))
}

// Code folds s, lowercases it and collapses underscore/hyphen/space runs
// to single spaces: the canonical form used for period codes.
func Code(s string) string {
	s = strings.ToLower(Fold(s))
	s = strings.Map(func(r rune) rune {
		if r == '_' || r == '-' {
			return ' '
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}
